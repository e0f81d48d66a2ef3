package compose

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	otdoc "github.com/sasamuel24/otdoc"
	"github.com/sasamuel24/otdoc/doctpl"
	"github.com/sasamuel24/otdoc/layout"
	"github.com/sasamuel24/otdoc/sheet"
)

// Stage is a step of the one-way composition state machine.
type Stage int

const (
	StageInitialized Stage = iota
	StageFieldsFilled
	StageImagesPlaced
	StageSignaturesPlaced
	StageFinalized
)

func (s Stage) String() string {
	switch s {
	case StageInitialized:
		return "initialized"
	case StageFieldsFilled:
		return "fields-filled"
	case StageImagesPlaced:
		return "images-placed"
	case StageSignaturesPlaced:
		return "signatures-placed"
	case StageFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Document is one filled template instance. It is owned by the composer for
// the duration of a single request and becomes immutable once finalized.
type Document struct {
	file   *excelize.File
	writer *sheet.Writer
	stage  Stage

	plan         *layout.Plan
	signatureRow int
}

// newDocument opens a fresh copy of the pristine template. Every
// composition starts from pristine bytes; documents are never reused.
func newDocument(schema *doctpl.Schema) (*Document, error) {
	f, err := excelize.OpenReader(bytes.NewReader(schema.Pristine()))
	if err != nil {
		return nil, fmt.Errorf("opening pristine template: %w", err)
	}
	return &Document{
		file:   f,
		writer: sheet.NewWriter(f, schema),
		stage:  StageInitialized,
	}, nil
}

// advance moves the state machine forward one step. Running a stage out of
// order, or after finalization, is rejected.
func (d *Document) advance(from, to Stage) error {
	if d.stage != from {
		return fmt.Errorf("%w: at %s, cannot run %s", otdoc.ErrStageOrder, d.stage, to)
	}
	d.stage = to
	return nil
}

// Stage reports how far composition has progressed.
func (d *Document) Stage() Stage {
	return d.stage
}

// Plan returns the layout plan the images stage produced, nil before that
// stage ran.
func (d *Document) Plan() *layout.Plan {
	return d.plan
}

// SignatureRow returns the row the signature names were written to, zero
// before that stage ran.
func (d *Document) SignatureRow() int {
	return d.signatureRow
}

// Writer exposes the cell writer for stages. After finalization all
// mutation attempts are rejected with ErrFinalized.
func (d *Document) Writer() (*sheet.Writer, error) {
	if d.stage == StageFinalized {
		return nil, otdoc.ErrFinalized
	}
	return d.writer, nil
}

// Bytes serializes the finalized workbook.
func (d *Document) Bytes() ([]byte, error) {
	if d.stage != StageFinalized {
		return nil, fmt.Errorf("%w: document at %s", otdoc.ErrStageOrder, d.stage)
	}
	buf, err := d.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Close releases the underlying workbook.
func (d *Document) Close() error {
	return d.file.Close()
}
