// Package sheet writes values into the work-order workbook. All writes are
// merge-aware: a field targeting a merged range only ever touches the range's
// anchor cell, so the template's visual design is never disturbed.
package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	otdoc "github.com/sasamuel24/otdoc"
	"github.com/sasamuel24/otdoc/doctpl"
)

// Writer performs cell writes against one open workbook. It is bound to a
// single composition and is not safe for concurrent use.
type Writer struct {
	f      *excelize.File
	schema *doctpl.Schema

	wrapStyle int // lazily created, 0 until first long-text write
	heights   map[int]float64
}

// NewWriter binds a writer to an open workbook and the schema it was built
// from.
func NewWriter(f *excelize.File, schema *doctpl.Schema) *Writer {
	return &Writer{
		f:       f,
		schema:  schema,
		heights: make(map[int]float64),
	}
}

// File exposes the underlying workbook.
func (w *Writer) File() *excelize.File {
	return w.f
}

// Schema returns the template schema the writer was built against.
func (w *Writer) Schema() *doctpl.Schema {
	return w.schema
}

// WriteField writes a value into the named slot's anchor cell. Only the
// value is written; the cell keeps its template style. An unknown slot name
// yields a FieldNotFoundError.
func (w *Writer) WriteField(name, value string) error {
	slot, ok := w.schema.Slot(name)
	if !ok {
		return &otdoc.FieldNotFoundError{Field: name}
	}
	if err := w.f.SetCellStr(w.schema.Sheet, slot.Anchor(), value); err != nil {
		return fmt.Errorf("sheet: writing field %q: %w", name, err)
	}
	return nil
}

// WriteCell writes a value at an explicit cell reference. Used for
// positions that only exist at composition time, such as the overflow
// attachment listing and the signature names.
func (w *Writer) WriteCell(cell, value string) error {
	if err := w.f.SetCellStr(w.schema.Sheet, cell, value); err != nil {
		return fmt.Errorf("sheet: writing cell %s: %w", cell, err)
	}
	return nil
}

// InsertImage anchors an encoded image at the given cell with a pixel
// offset inside it. The picture moves with the cell but never resizes it.
func (w *Writer) InsertImage(cell string, data []byte, ext string, offsetX, offsetY int) error {
	err := w.f.AddPictureFromBytes(w.schema.Sheet, cell, &excelize.Picture{
		Extension: ext,
		File:      data,
		Format: &excelize.GraphicOptions{
			OffsetX:     offsetX,
			OffsetY:     offsetY,
			Positioning: "oneCell",
		},
	})
	if err != nil {
		return fmt.Errorf("sheet: inserting image at %s: %w", cell, err)
	}
	return nil
}

// EnsureRowHeight grows a row to at least height points. Heights never
// shrink: a later, smaller request is a no-op.
func (w *Writer) EnsureRowHeight(row int, height float64) error {
	if prev, ok := w.heights[row]; ok && height <= prev {
		return nil
	}
	current, err := w.f.GetRowHeight(w.schema.Sheet, row)
	if err != nil {
		return fmt.Errorf("sheet: reading height of row %d: %w", row, err)
	}
	if height <= current {
		w.heights[row] = current
		return nil
	}
	if err := w.f.SetRowHeight(w.schema.Sheet, row, height); err != nil {
		return fmt.Errorf("sheet: growing row %d: %w", row, err)
	}
	w.heights[row] = height
	return nil
}

// RowHeight reports the current height of a row in points.
func (w *Writer) RowHeight(row int) (float64, error) {
	return w.f.GetRowHeight(w.schema.Sheet, row)
}
