// Package compose fills the work-order template: record fields, the dynamic
// attachment image layout, and the signature block, in that fixed order.
// Composition is best-effort where the inputs are soft (images that fail to
// decode are skipped, blank record fields render blank) and strict where the
// template is concerned (stage order, merge anchors, the signature floor).
package compose

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	otdoc "github.com/sasamuel24/otdoc"
	"github.com/sasamuel24/otdoc/doctpl"
	"github.com/sasamuel24/otdoc/layout"
	"github.com/sasamuel24/otdoc/sign"
)

// Input is everything one composition consumes. All bytes arrive already
// resolved; the composer performs no I/O of its own.
type Input struct {
	Record otdoc.WorkOrderRecord

	// RequestImage is the original request photo, placed in its own fixed
	// slot. Optional.
	RequestImage *otdoc.Attachment

	// Attachments are the work-order evidence photos routed through the
	// layout planner.
	Attachments []otdoc.Attachment

	Signatures otdoc.SignatureData
}

// Composer builds documents from one immutable template schema. It is safe
// for concurrent use; every Compose call works on its own Document.
type Composer struct {
	schema  *doctpl.Schema
	cfg     otdoc.Config
	planner *layout.Planner
	placer  *sign.Placer
	log     *zap.Logger
}

// New builds a composer for the given schema.
func New(schema *doctpl.Schema, opts ...otdoc.Option) (*Composer, error) {
	cfg := otdoc.Apply(opts...)
	sec := schema.Sections
	planner, err := layout.NewPlanner(layout.Geometry{
		StartRow:      sec.AttachmentStartRow,
		DefaultEndRow: sec.AttachmentEndRow,
		MaxRows:       sec.AttachmentMaxRows,
		FirstCol:      sec.AttachmentFirstCol,
		LastCol:       sec.AttachmentLastCol,
		ColWidthPx:    schema.Grid.ColWidthPx,
		RowHeightPx:   schema.Grid.RowHeightPx,
	}, cfg.MaxAttachmentImages)
	if err != nil {
		return nil, otdoc.NewOpError("NewComposer", err)
	}
	return &Composer{
		schema:  schema,
		cfg:     cfg,
		planner: planner,
		placer:  sign.NewPlacer(cfg.MinSignatureGapRows, cfg.Logger),
		log:     cfg.Logger,
	}, nil
}

// Compose runs the full pipeline and returns the finalized document.
func (c *Composer) Compose(ctx context.Context, in Input) (*Document, error) {
	doc, err := newDocument(c.schema)
	if err != nil {
		return nil, otdoc.NewOpError("Compose", err)
	}
	if err := c.fillFields(doc, in.Record); err != nil {
		doc.Close()
		return nil, otdoc.NewOpError("Compose", err)
	}
	if err := c.placeImages(ctx, doc, in); err != nil {
		doc.Close()
		return nil, otdoc.NewOpError("Compose", err)
	}
	if err := c.placeSignatures(doc, in.Signatures); err != nil {
		doc.Close()
		return nil, otdoc.NewOpError("Compose", err)
	}
	if err := c.finalize(doc); err != nil {
		doc.Close()
		return nil, otdoc.NewOpError("Compose", err)
	}
	return doc, nil
}

// fillFields writes every record field into its slot. Short fields go
// through plain cell writes, long free-text fields through the text fitter.
// A record field with no slot in the schema is ignored with a warning, never
// silently mis-mapped.
func (c *Composer) fillFields(doc *Document, rec otdoc.WorkOrderRecord) error {
	if err := doc.advance(StageInitialized, StageFieldsFilled); err != nil {
		return err
	}
	w := doc.writer
	for _, field := range rec.Fields() {
		slot, ok := c.schema.Slot(field.Slot)
		if !ok {
			c.log.Warn("record field has no template slot, skipping",
				zap.String("field", field.Slot))
			continue
		}
		if slot.Long {
			minHeight := 2 * c.schema.Grid.RowHeightPt
			if _, err := w.FitLongText(field.Slot, field.Value, minHeight, c.cfg.CharsPerWrappedLine); err != nil {
				return err
			}
			continue
		}
		if err := w.WriteField(field.Slot, field.Value); err != nil {
			return err
		}
	}
	c.placeFolioBarcode(doc, rec.Folio)
	return nil
}

func (c *Composer) placeSignatures(doc *Document, data otdoc.SignatureData) error {
	if err := doc.advance(StageImagesPlaced, StageSignaturesPlaced); err != nil {
		return err
	}
	row, err := c.placer.Place(doc.writer, doc.plan, data)
	if err != nil {
		return err
	}
	doc.signatureRow = row
	c.log.Debug("signature block placed",
		zap.Int("row", row),
		zap.Bool("areaExpanded", doc.plan.Expanded))
	return nil
}

// finalize pins the print area to the composed extent and freezes the
// document.
func (c *Composer) finalize(doc *Document) error {
	if err := doc.advance(StageSignaturesPlaced, StageFinalized); err != nil {
		return err
	}
	lastRow := doc.signatureRow + c.schema.Sections.SignatureImageRows + 1
	lastCol, err := excelize.ColumnNumberToName(c.schema.Grid.LastCol)
	if err != nil {
		return err
	}
	printArea := excelize.DefinedName{
		Name:     "_xlnm.Print_Area",
		RefersTo: fmt.Sprintf("'%s'!$A$1:$%s$%d", c.schema.Sheet, lastCol, lastRow),
		Scope:    c.schema.Sheet,
	}
	if err := doc.file.SetDefinedName(&printArea); err != nil {
		return fmt.Errorf("setting print area: %w", err)
	}
	return nil
}
