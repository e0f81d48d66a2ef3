// Package doctpl describes the fixed corporate work-order template: named
// field slots, merged ranges, and the section boundaries the layout engine
// works against. The schema is declared in an embedded YAML file, validated
// and frozen at load time, and shared read-only across concurrent
// compositions. Pristine returns the template workbook itself, built once.
package doctpl

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

//go:embed template.yaml
var templateYAML []byte

// Grid describes the uniform column/row geometry of the template sheet.
// Pixel sizes are what excelize reports for the chosen widths and are the
// basis for all image-box arithmetic.
type Grid struct {
	FirstCol    int     `yaml:"firstCol"`
	LastCol     int     `yaml:"lastCol"`
	ColWidth    float64 `yaml:"colWidth"`
	ColWidthPx  int     `yaml:"colWidthPx"`
	RowHeightPt float64 `yaml:"rowHeightPt"`
	RowHeightPx int     `yaml:"rowHeightPx"`
}

// Sections fixes the boundaries of the variable regions of the sheet.
type Sections struct {
	AttachmentStartRow int    `yaml:"attachmentStartRow"`
	AttachmentEndRow   int    `yaml:"attachmentEndRow"` // nominal end, before expansion
	AttachmentMaxRows  int    `yaml:"attachmentMaxRows"`
	AttachmentFirstCol int    `yaml:"attachmentFirstCol"`
	AttachmentLastCol  int    `yaml:"attachmentLastCol"`
	SignatureBaseRow   int    `yaml:"signatureBaseRow"` // nominal, used when no images are placed
	SignatureImageRows int    `yaml:"signatureImageRows"`
	SignatureTechCol   int    `yaml:"signatureTechCol"`
	SignatureClientCol int    `yaml:"signatureClientCol"`
	SignatureColSpan   int    `yaml:"signatureColSpan"`
	RequestImageCell   string `yaml:"requestImageCell"`
	RequestImageMerge  string `yaml:"requestImageMerge"`
	BarcodeCell        string `yaml:"barcodeCell"`
}

// AttachmentCols returns the column span of the attachment area.
func (s Sections) AttachmentCols() int {
	return s.AttachmentLastCol - s.AttachmentFirstCol + 1
}

// Label is static text printed next to a field slot.
type Label struct {
	Cell string `yaml:"cell"`
	Text string `yaml:"text"`
}

// FieldSlot is one named destination for a record field.
type FieldSlot struct {
	Name  string `yaml:"name"`
	Cell  string `yaml:"cell"`
	Merge string `yaml:"merge,omitempty"`
	Long  bool   `yaml:"long,omitempty"` // free-text field, goes through the text fitter
	Label *Label `yaml:"label,omitempty"`
}

// Anchor returns the cell a value write must target: the top-left cell of
// the merged range if one is declared, the plain cell otherwise.
func (fs FieldSlot) Anchor() string {
	if fs.Merge != "" {
		return MergeAnchor(fs.Merge)
	}
	return fs.Cell
}

// MergeAnchor returns the top-left cell of a range like "B4:D4".
func MergeAnchor(rng string) string {
	if i := strings.IndexByte(rng, ':'); i > 0 {
		return rng[:i]
	}
	return rng
}

// Heading is a full-width section heading row.
type Heading struct {
	Row  int    `yaml:"row"`
	Text string `yaml:"text"`
}

// Schema is the loaded, immutable template description.
type Schema struct {
	Sheet    string      `yaml:"sheet"`
	Title    string      `yaml:"title"`
	Grid     Grid        `yaml:"grid"`
	Sections Sections    `yaml:"sections"`
	Headings []Heading   `yaml:"headings"`
	Slots    []FieldSlot `yaml:"slots"`

	byName   map[string]int
	pristine []byte
}

// Load parses and validates the embedded template definition and builds the
// pristine workbook. Call once at process start; the result is safe for
// concurrent use.
func Load() (*Schema, error) {
	return Parse(templateYAML)
}

// Parse builds a Schema from a YAML definition.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("doctpl: parsing template definition: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("doctpl: invalid template definition: %w", err)
	}
	s.byName = make(map[string]int, len(s.Slots))
	for i, slot := range s.Slots {
		s.byName[slot.Name] = i
	}
	pristine, err := buildWorkbook(&s)
	if err != nil {
		return nil, fmt.Errorf("doctpl: building pristine workbook: %w", err)
	}
	s.pristine = pristine
	return &s, nil
}

// Slot looks up a field slot by name.
func (s *Schema) Slot(name string) (FieldSlot, bool) {
	i, ok := s.byName[name]
	if !ok {
		return FieldSlot{}, false
	}
	return s.Slots[i], ok
}

// Pristine returns the unfilled template workbook bytes. Callers must treat
// the slice as read-only; every composition opens its own copy.
func (s *Schema) Pristine() []byte {
	return s.pristine
}

// AreaWidthPx returns the pixel width of the attachment area.
func (s *Schema) AreaWidthPx() int {
	return s.Sections.AttachmentCols() * s.Grid.ColWidthPx
}

func (s *Schema) validate() error {
	if s.Sheet == "" {
		return fmt.Errorf("sheet name is empty")
	}
	if s.Grid.LastCol <= s.Grid.FirstCol {
		return fmt.Errorf("grid columns %d..%d", s.Grid.FirstCol, s.Grid.LastCol)
	}
	if s.Grid.ColWidthPx <= 0 || s.Grid.RowHeightPx <= 0 {
		return fmt.Errorf("grid pixel sizes must be positive")
	}
	sec := s.Sections
	if sec.AttachmentStartRow <= 0 || sec.AttachmentEndRow < sec.AttachmentStartRow {
		return fmt.Errorf("attachment area rows %d..%d", sec.AttachmentStartRow, sec.AttachmentEndRow)
	}
	if sec.AttachmentMaxRows < sec.AttachmentEndRow-sec.AttachmentStartRow+1 {
		return fmt.Errorf("attachmentMaxRows %d smaller than nominal area", sec.AttachmentMaxRows)
	}
	if sec.AttachmentFirstCol < s.Grid.FirstCol || sec.AttachmentLastCol > s.Grid.LastCol {
		return fmt.Errorf("attachment columns %d..%d outside grid", sec.AttachmentFirstCol, sec.AttachmentLastCol)
	}
	if sec.SignatureBaseRow <= sec.AttachmentEndRow {
		return fmt.Errorf("signature base row %d inside attachment area", sec.SignatureBaseRow)
	}
	if sec.SignatureTechCol <= 0 || sec.SignatureClientCol <= sec.SignatureTechCol || sec.SignatureColSpan <= 0 {
		return fmt.Errorf("signature block columns %d/%d span %d",
			sec.SignatureTechCol, sec.SignatureClientCol, sec.SignatureColSpan)
	}
	seen := make(map[string]bool, len(s.Slots))
	for _, slot := range s.Slots {
		if slot.Name == "" || slot.Cell == "" {
			return fmt.Errorf("slot %+v missing name or cell", slot)
		}
		if seen[slot.Name] {
			return fmt.Errorf("duplicate slot %q", slot.Name)
		}
		seen[slot.Name] = true
		if slot.Merge != "" && MergeAnchor(slot.Merge) != slot.Cell {
			return fmt.Errorf("slot %q: cell %s is not the anchor of %s", slot.Name, slot.Cell, slot.Merge)
		}
		if _, _, err := excelize.CellNameToCoordinates(slot.Cell); err != nil {
			return fmt.Errorf("slot %q: %w", slot.Name, err)
		}
	}
	return nil
}
