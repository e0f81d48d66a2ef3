// Package sign places the two-party signature block beneath the attachment
// area. The block floats: whenever image layout expanded the area, the block
// moves down with it, keeping the configured gap and never writing into a
// row the attachments claimed.
package sign

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	otdoc "github.com/sasamuel24/otdoc"
	"github.com/sasamuel24/otdoc/imaging"
	"github.com/sasamuel24/otdoc/layout"
	"github.com/sasamuel24/otdoc/sheet"
)

// imagePadPx keeps signature strokes off the cell borders.
const imagePadPx = 4

// Placer writes signature names and images relative to a layout plan.
type Placer struct {
	gapRows int
	log     *zap.Logger
}

// NewPlacer builds a placer. gapRows is the minimum margin kept between the
// attachment area's end and the block.
func NewPlacer(gapRows int, log *zap.Logger) *Placer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Placer{gapRows: gapRows, log: log}
}

// Place writes the signature block and returns the row the names landed on.
// The base row is the template's nominal signature row when no images were
// placed, and plan.AreaEndRow + the gap otherwise. A missing signature image
// leaves its half blank; the name is still written. Undecodable signature
// images are logged and skipped, never fatal.
func (p *Placer) Place(w *sheet.Writer, plan *layout.Plan, data otdoc.SignatureData) (int, error) {
	sec := w.Schema().Sections

	base := sec.SignatureBaseRow
	if len(plan.Images) > 0 {
		base = plan.AreaEndRow + p.gapRows
	}
	if base <= plan.AreaEndRow {
		return 0, fmt.Errorf("sign: base row %d does not clear attachment area ending at %d", base, plan.AreaEndRow)
	}

	if err := p.writeName(w, sec.SignatureTechCol, base, data.TechnicianName); err != nil {
		return 0, err
	}
	if err := p.writeName(w, sec.SignatureClientCol, base, data.ClientName); err != nil {
		return 0, err
	}

	imageRow := base + 1
	grid := w.Schema().Grid
	boxW := sec.SignatureColSpan*grid.ColWidthPx - 2*imagePadPx
	boxH := sec.SignatureImageRows*grid.RowHeightPx - 2*imagePadPx

	p.placeImage(w, sec.SignatureTechCol, imageRow, "firma-tecnico", data.TechnicianImage, boxW, boxH)
	p.placeImage(w, sec.SignatureClientCol, imageRow, "firma-cliente", data.ClientImage, boxW, boxH)

	return base, nil
}

func (p *Placer) writeName(w *sheet.Writer, col, row int, name string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("sign: name cell: %w", err)
	}
	return w.WriteCell(cell, name)
}

// placeImage renders and inserts one signature image horizontally centered
// within its half of the block. Decode failures only cost the image.
func (p *Placer) placeImage(w *sheet.Writer, col, row int, name string, data []byte, boxW, boxH int) {
	if len(data) == 0 {
		return
	}
	rendered, err := imaging.Render(name+imaging.Ext, data, boxW, boxH)
	if err != nil {
		p.log.Warn("skipping unreadable signature image",
			zap.String("signature", name), zap.Error(err))
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		p.log.Warn("signature image cell out of range",
			zap.Int("col", col), zap.Int("row", row), zap.Error(err))
		return
	}
	blockW := boxW + 2*imagePadPx
	offsetX := (blockW - rendered.Width) / 2
	if offsetX < 0 {
		offsetX = 0
	}
	if err := w.InsertImage(cell, rendered.Data, imaging.Ext, offsetX, imagePadPx); err != nil {
		p.log.Warn("inserting signature image failed",
			zap.String("signature", name), zap.Error(err))
	}
}
