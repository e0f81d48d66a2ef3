package compose

import (
	"context"
	"errors"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	otdoc "github.com/sasamuel24/otdoc"
	"github.com/sasamuel24/otdoc/imaging"
	"github.com/sasamuel24/otdoc/layout"
)

// requestImagePadPx is the margin the request photo keeps inside its frame.
const requestImagePadPx = 6

// placeImages runs the images stage: the fixed request-image slot, the
// planned attachment grid, and the text-only listing for anything the plan
// could not place. A single unreadable image never fails the stage.
func (c *Composer) placeImages(ctx context.Context, doc *Document, in Input) error {
	if err := doc.advance(StageFieldsFilled, StageImagesPlaced); err != nil {
		return err
	}

	if in.RequestImage != nil {
		c.placeRequestImage(doc, in.RequestImage)
	}

	// Only attachments that decode participate in planning; the planner
	// works from aspect ratios alone.
	var (
		infos     []layout.Image
		decodable []otdoc.Attachment
	)
	for _, att := range in.Attachments {
		w, h, err := imaging.Dimensions(att.Filename, att.Data)
		if err != nil || h == 0 {
			c.log.Warn("skipping unreadable attachment",
				zap.String("filename", att.Filename), zap.Error(err))
			continue
		}
		infos = append(infos, layout.Image{Filename: att.Filename, Aspect: float64(w) / float64(h)})
		decodable = append(decodable, att)
	}

	plan, err := c.planner.Plan(infos)
	if err != nil {
		// Overflow is recoverable: the plan already demoted what did not
		// fit to the text listing.
		var overflow *otdoc.LayoutOverflowError
		if !errors.As(err, &overflow) {
			return err
		}
		c.log.Warn("attachment area overflow, remainder listed as text",
			zap.Strings("omitted", overflow.Omitted))
	}
	doc.plan = plan
	c.log.Debug("attachment layout planned",
		zap.String("archetype", plan.Archetype),
		zap.Int("placed", len(plan.Images)),
		zap.Int("areaEndRow", plan.AreaEndRow),
		zap.Bool("expanded", plan.Expanded))

	if err := c.insertPlanned(ctx, doc, plan, decodable); err != nil {
		return err
	}
	return c.listOmitted(doc, plan)
}

// insertPlanned renders the planned images on the bounded worker pool and
// anchors each at its planned cell, centered within its grid block.
func (c *Composer) insertPlanned(ctx context.Context, doc *Document, plan *layout.Plan, decodable []otdoc.Attachment) error {
	if len(plan.Images) == 0 {
		return nil
	}
	jobs := make([]imaging.Job, len(plan.Images))
	for i, pl := range plan.Images {
		jobs[i] = imaging.Job{
			Filename: decodable[i].Filename,
			Data:     decodable[i].Data,
			TargetW:  pl.WidthPx,
			TargetH:  pl.HeightPx,
		}
	}
	results, err := imaging.RenderAll(ctx, jobs, c.cfg.DecodeWorkers)
	if err != nil {
		return err
	}
	for i, res := range results {
		if res.Err != nil {
			c.log.Warn("skipping attachment that failed to render",
				zap.String("filename", res.Job.Filename), zap.Error(res.Err))
			continue
		}
		pl := plan.Images[i]
		cell, err := excelize.CoordinatesToCellName(pl.Col, pl.Row)
		if err != nil {
			return err
		}
		offsetX := pl.OffsetXPx + (pl.WidthPx-res.Rendered.Width)/2
		offsetY := pl.OffsetYPx + (pl.HeightPx-res.Rendered.Height)/2
		if offsetX < 0 {
			offsetX = 0
		}
		if offsetY < 0 {
			offsetY = 0
		}
		if err := doc.writer.InsertImage(cell, res.Rendered.Data, imaging.Ext, offsetX, offsetY); err != nil {
			return err
		}
	}
	return nil
}

// placeRequestImage fills the fixed original-request slot.
func (c *Composer) placeRequestImage(doc *Document, att *otdoc.Attachment) {
	sec := c.schema.Sections
	if sec.RequestImageCell == "" || sec.RequestImageMerge == "" {
		return
	}
	cols, rows := rangeSpan(sec.RequestImageMerge)
	boxW := cols*c.schema.Grid.ColWidthPx - 2*requestImagePadPx
	boxH := rows*c.schema.Grid.RowHeightPx - 2*requestImagePadPx
	rendered, err := imaging.Render(att.Filename, att.Data, boxW, boxH)
	if err != nil {
		c.log.Warn("skipping unreadable request image",
			zap.String("filename", att.Filename), zap.Error(err))
		return
	}
	offsetX := requestImagePadPx + (boxW-rendered.Width)/2
	offsetY := requestImagePadPx + (boxH-rendered.Height)/2
	if err := doc.writer.InsertImage(sec.RequestImageCell, rendered.Data, imaging.Ext, offsetX, offsetY); err != nil {
		c.log.Warn("inserting request image failed",
			zap.String("filename", att.Filename), zap.Error(err))
	}
}

// listOmitted writes the filenames that were not placed visually into the
// first gap row under the attachment area.
func (c *Composer) listOmitted(doc *Document, plan *layout.Plan) error {
	if len(plan.Omitted) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(c.schema.Sections.AttachmentFirstCol, plan.AreaEndRow+1)
	if err != nil {
		return err
	}
	return doc.writer.WriteCell(cell, "Adjuntos no incluidos: "+strings.Join(plan.Omitted, ", "))
}

// rangeSpan reports the column and row span of a range like "B21:G26".
func rangeSpan(rng string) (cols, rows int) {
	i := strings.IndexByte(rng, ':')
	if i <= 0 {
		return 1, 1
	}
	c1, r1, err1 := excelize.CellNameToCoordinates(rng[:i])
	c2, r2, err2 := excelize.CellNameToCoordinates(rng[i+1:])
	if err1 != nil || err2 != nil {
		return 1, 1
	}
	return c2 - c1 + 1, r2 - r1 + 1
}
