package doctpl

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestLoadEmbeddedSchema(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Sheet == "" {
		t.Fatal("schema has no sheet name")
	}
	for _, name := range []string{"folio", "title", "description", "technician_notes"} {
		if _, ok := s.Slot(name); !ok {
			t.Errorf("slot %q missing from schema", name)
		}
	}
	if got := len(s.Pristine()); got == 0 {
		t.Fatal("pristine workbook is empty")
	}
}

func TestSlotAnchorsMatchMerges(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for _, slot := range s.Slots {
		if slot.Merge == "" {
			continue
		}
		if got := MergeAnchor(slot.Merge); got != slot.Cell {
			t.Errorf("slot %q: anchor %s, cell %s", slot.Name, got, slot.Cell)
		}
	}
}

func TestPristineWorkbookOpens(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(s.Pristine()))
	if err != nil {
		t.Fatalf("pristine workbook does not open: %v", err)
	}
	defer f.Close()

	merges, err := f.GetMergeCells(s.Sheet)
	if err != nil {
		t.Fatalf("GetMergeCells: %v", err)
	}
	byAnchor := make(map[string]bool, len(merges))
	for _, m := range merges {
		byAnchor[m.GetStartAxis()] = true
	}
	for _, slot := range s.Slots {
		if slot.Merge != "" && !byAnchor[slot.Cell] {
			t.Errorf("slot %q: merge %s not present in workbook", slot.Name, slot.Merge)
		}
	}

	// Static labels survive the build.
	title, err := f.GetCellValue(s.Sheet, "A1")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if title != s.Title {
		t.Errorf("title cell = %q, want %q", title, s.Title)
	}
}

func TestParseRejectsBrokenDefinitions(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"anchor mismatch", `
sheet: OT
grid: {firstCol: 1, lastCol: 8, colWidth: 11.5, colWidthPx: 85, rowHeightPt: 15, rowHeightPx: 20}
sections: {attachmentStartRow: 10, attachmentEndRow: 20, attachmentMaxRows: 30, attachmentFirstCol: 2, attachmentLastCol: 7, signatureBaseRow: 23, signatureImageRows: 4, signatureTechCol: 2, signatureClientCol: 6, signatureColSpan: 3}
slots:
  - {name: folio, cell: B1, merge: "A1:C1"}
`},
		{"signature inside area", `
sheet: OT
grid: {firstCol: 1, lastCol: 8, colWidth: 11.5, colWidthPx: 85, rowHeightPt: 15, rowHeightPx: 20}
sections: {attachmentStartRow: 10, attachmentEndRow: 20, attachmentMaxRows: 30, attachmentFirstCol: 2, attachmentLastCol: 7, signatureBaseRow: 15, signatureImageRows: 4, signatureTechCol: 2, signatureClientCol: 6, signatureColSpan: 3}
slots:
  - {name: folio, cell: A1}
`},
		{"duplicate slot", `
sheet: OT
grid: {firstCol: 1, lastCol: 8, colWidth: 11.5, colWidthPx: 85, rowHeightPt: 15, rowHeightPx: 20}
sections: {attachmentStartRow: 10, attachmentEndRow: 20, attachmentMaxRows: 30, attachmentFirstCol: 2, attachmentLastCol: 7, signatureBaseRow: 23, signatureImageRows: 4, signatureTechCol: 2, signatureClientCol: 6, signatureColSpan: 3}
slots:
  - {name: folio, cell: A1}
  - {name: folio, cell: A2}
`},
	}
	for _, tc := range cases {
		if _, err := Parse([]byte(tc.yaml)); err == nil {
			t.Errorf("%s: Parse accepted a broken definition", tc.name)
		}
	}
}
