package doctpl

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// buildWorkbook materializes the template definition as an xlsx workbook:
// column widths, merged ranges, static labels, section headings, and the A4
// fit-to-width print setup. The returned bytes are the pristine template
// every composition starts from.
func buildWorkbook(s *Schema) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", s.Sheet); err != nil {
		return nil, err
	}

	firstCol, err := excelize.ColumnNumberToName(s.Grid.FirstCol)
	if err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(s.Grid.LastCol)
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(s.Sheet, firstCol, lastCol, s.Grid.ColWidth); err != nil {
		return nil, err
	}

	styles, err := newStyleSet(f)
	if err != nil {
		return nil, err
	}

	if err := buildHeader(f, s, styles); err != nil {
		return nil, err
	}
	for _, h := range s.Headings {
		if err := buildHeading(f, s, styles, h); err != nil {
			return nil, err
		}
	}
	for _, slot := range s.Slots {
		if err := buildSlot(f, s, styles, slot); err != nil {
			return nil, fmt.Errorf("slot %q: %w", slot.Name, err)
		}
	}

	// The request-image frame is a single merged box.
	if m := s.Sections.RequestImageMerge; m != "" {
		a, b, ok := splitRange(m)
		if !ok {
			return nil, fmt.Errorf("request image merge %q", m)
		}
		if err := f.MergeCell(s.Sheet, a, b); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(s.Sheet, a, b, styles.frame); err != nil {
			return nil, err
		}
	}

	// A4 portrait, content fitted to page width, free to span pages in
	// height.
	size, orientation := 9, "portrait"
	fitW, fitH := 1, 0
	if err := f.SetPageLayout(s.Sheet, &excelize.PageLayoutOptions{
		Size:        &size,
		Orientation: &orientation,
		FitToWidth:  &fitW,
		FitToHeight: &fitH,
	}); err != nil {
		return nil, err
	}
	fitToPage := true
	if err := f.SetSheetProps(s.Sheet, &excelize.SheetPropsOptions{FitToPage: &fitToPage}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type styleSet struct {
	title   int
	heading int
	label   int
	value   int
	frame   int
}

func newStyleSet(f *excelize.File) (*styleSet, error) {
	var (
		s   styleSet
		err error
	)
	thin := []excelize.Border{
		{Type: "left", Color: "9BA8B5", Style: 1},
		{Type: "right", Color: "9BA8B5", Style: 1},
		{Type: "top", Color: "9BA8B5", Style: 1},
		{Type: "bottom", Color: "9BA8B5", Style: 1},
	}
	s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "1F3864"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	s.heading, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F3864"}},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	s.label, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 9},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DCE6F1"}},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    thin,
	})
	if err != nil {
		return nil, err
	}
	s.value, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 9},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    thin,
	})
	if err != nil {
		return nil, err
	}
	s.frame, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thin,
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func buildHeader(f *excelize.File, s *Schema, styles *styleSet) error {
	// Document title spans the left of the header band; the folio slot and
	// its barcode occupy the right.
	if err := f.MergeCell(s.Sheet, "A1", "E2"); err != nil {
		return err
	}
	if err := f.SetCellStr(s.Sheet, "A1", s.Title); err != nil {
		return err
	}
	return f.SetCellStyle(s.Sheet, "A1", "E2", styles.title)
}

func buildHeading(f *excelize.File, s *Schema, styles *styleSet, h Heading) error {
	first, err := excelize.CoordinatesToCellName(s.Grid.FirstCol, h.Row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(s.Grid.LastCol, h.Row)
	if err != nil {
		return err
	}
	if err := f.MergeCell(s.Sheet, first, last); err != nil {
		return err
	}
	if err := f.SetCellStr(s.Sheet, first, h.Text); err != nil {
		return err
	}
	return f.SetCellStyle(s.Sheet, first, last, styles.heading)
}

func buildSlot(f *excelize.File, s *Schema, styles *styleSet, slot FieldSlot) error {
	if slot.Merge != "" {
		a, b, ok := splitRange(slot.Merge)
		if !ok {
			return fmt.Errorf("bad merge range %q", slot.Merge)
		}
		if err := f.MergeCell(s.Sheet, a, b); err != nil {
			return err
		}
		if err := f.SetCellStyle(s.Sheet, a, b, styles.value); err != nil {
			return err
		}
	} else {
		if err := f.SetCellStyle(s.Sheet, slot.Cell, slot.Cell, styles.value); err != nil {
			return err
		}
	}
	if slot.Label != nil {
		if err := f.SetCellStr(s.Sheet, slot.Label.Cell, slot.Label.Text); err != nil {
			return err
		}
		if err := f.SetCellStyle(s.Sheet, slot.Label.Cell, slot.Label.Cell, styles.label); err != nil {
			return err
		}
	}
	return nil
}

func splitRange(rng string) (first, last string, ok bool) {
	for i := 0; i < len(rng); i++ {
		if rng[i] == ':' {
			return rng[:i], rng[i+1:], i > 0 && i < len(rng)-1
		}
	}
	return "", "", false
}
