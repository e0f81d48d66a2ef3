package sheet

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	otdoc "github.com/sasamuel24/otdoc"
)

// wrappedLinePt is the height one wrapped line of the template's body font
// occupies, in points.
const wrappedLinePt = 13.0

// FitLongText writes a free-text value into the named slot, turns on text
// wrapping with top alignment for its range, and grows the slot's row to fit
// the estimated number of wrapped lines. The applied height is returned.
//
// Row heights only ever grow: if an earlier call left the row taller than
// this text needs, that height stands.
func (w *Writer) FitLongText(name, text string, minHeight float64, charsPerLine int) (float64, error) {
	slot, ok := w.schema.Slot(name)
	if !ok {
		return 0, &otdoc.FieldNotFoundError{Field: name}
	}
	anchor := slot.Anchor()
	if err := w.f.SetCellStr(w.schema.Sheet, anchor, text); err != nil {
		return 0, fmt.Errorf("sheet: writing long text %q: %w", name, err)
	}

	if err := w.applyWrapStyle(slot.Cell, slot.Merge); err != nil {
		return 0, err
	}

	_, row, err := excelize.CellNameToCoordinates(anchor)
	if err != nil {
		return 0, fmt.Errorf("sheet: slot %q anchor: %w", name, err)
	}
	height := estimateHeight(text, charsPerLine)
	if height < minHeight {
		height = minHeight
	}
	if err := w.EnsureRowHeight(row, height); err != nil {
		return 0, err
	}
	applied, err := w.RowHeight(row)
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// estimateHeight predicts the row height a wrapped text needs. Explicit
// newlines always start a new line; everything else wraps every charsPerLine
// characters.
func estimateHeight(text string, charsPerLine int) float64 {
	if charsPerLine <= 0 {
		charsPerLine = 1
	}
	lines := 0
	for _, seg := range strings.Split(text, "\n") {
		n := utf8.RuneCountInString(seg)
		lines += (n + charsPerLine - 1) / charsPerLine
		if n == 0 {
			lines++
		}
	}
	if lines < 1 {
		lines = 1
	}
	return float64(lines) * wrappedLinePt
}

func (w *Writer) applyWrapStyle(cell, merge string) error {
	if w.wrapStyle == 0 {
		id, err := w.f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Size: 9},
			Alignment: &excelize.Alignment{
				Horizontal: "left",
				Vertical:   "top",
				WrapText:   true,
			},
			Border: []excelize.Border{
				{Type: "left", Color: "9BA8B5", Style: 1},
				{Type: "right", Color: "9BA8B5", Style: 1},
				{Type: "top", Color: "9BA8B5", Style: 1},
				{Type: "bottom", Color: "9BA8B5", Style: 1},
			},
		})
		if err != nil {
			return fmt.Errorf("sheet: creating wrap style: %w", err)
		}
		w.wrapStyle = id
	}
	first, last := cell, cell
	if merge != "" {
		if a, b, ok := splitRange(merge); ok {
			first, last = a, b
		}
	}
	if err := w.f.SetCellStyle(w.schema.Sheet, first, last, w.wrapStyle); err != nil {
		return fmt.Errorf("sheet: applying wrap style: %w", err)
	}
	return nil
}

func splitRange(rng string) (first, last string, ok bool) {
	i := strings.IndexByte(rng, ':')
	if i <= 0 || i >= len(rng)-1 {
		return "", "", false
	}
	return rng[:i], rng[i+1:], true
}
