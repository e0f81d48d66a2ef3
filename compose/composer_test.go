package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	otdoc "github.com/sasamuel24/otdoc"
	"github.com/sasamuel24/otdoc/doctpl"
)

func testSchema(t *testing.T) *doctpl.Schema {
	t.Helper()
	s, err := doctpl.Load()
	if err != nil {
		t.Fatalf("loading schema: %v", err)
	}
	return s
}

func testRecord() otdoc.WorkOrderRecord {
	return otdoc.WorkOrderRecord{
		Folio:           "1950",
		Title:           "Cambio de luminaria",
		State:           "Cerrada",
		Category:        "Eléctrico",
		Subcategory:     "Iluminación",
		Priority:        "Alta",
		MaintenanceType: "Correctivo",
		Site:            "Planta Norte",
		Building:        "B",
		Floor:           "2",
		Space:           "Sala 204",
		Technician:      "J. Morales",
		VisitDate:       "2024-03-11",
		Requester:       "L. Ortiz",
		Description:     "La luminaria del pasillo parpadea y se apaga de forma intermitente.",
		TechnicianNotes: "Se reemplazó el balastro y el tubo. Se verificó el encendido.",
	}
}

func imageFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func compose(t *testing.T, in Input, opts ...otdoc.Option) *Document {
	t.Helper()
	c, err := New(testSchema(t), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	doc, err := c.Compose(context.Background(), in)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	t.Cleanup(func() { doc.Close() })
	return doc
}

// Scenario: a plain work order with no attachments keeps the nominal
// geometry, fills every field, and still produces a document.
func TestComposeNoAttachments(t *testing.T) {
	doc := compose(t, Input{Record: testRecord()})

	if doc.Stage() != StageFinalized {
		t.Fatalf("stage = %v", doc.Stage())
	}
	schema := testSchema(t)
	if doc.Plan().Expanded {
		t.Fatal("area expanded with zero attachments")
	}
	if doc.SignatureRow() != schema.Sections.SignatureBaseRow {
		t.Fatalf("signature row = %d, want nominal %d", doc.SignatureRow(), schema.Sections.SignatureBaseRow)
	}

	// Spot-check fields at their merge anchors.
	f := doc.file
	checks := map[string]string{
		"folio": "1950",
		"title": "Cambio de luminaria",
		"state": "Cerrada",
	}
	for name, want := range checks {
		slot, _ := schema.Slot(name)
		got, err := f.GetCellValue(schema.Sheet, slot.Anchor())
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}

	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatal("output is not an xlsx archive")
	}
}

// Scenario: two tall photos stack, the area grows, and the signature block
// moves down by exactly the expansion.
func TestComposeVerticalPairShiftsSignatures(t *testing.T) {
	tall := imageFixture(t, 200, 400)
	doc := compose(t, Input{
		Record: testRecord(),
		Attachments: []otdoc.Attachment{
			{Filename: "antes.png", Data: tall},
			{Filename: "despues.png", Data: tall},
		},
		Signatures: otdoc.SignatureData{TechnicianName: "T", ClientName: "C"},
	})

	plan := doc.Plan()
	if plan.Archetype != "pair-stacked" {
		t.Fatalf("archetype = %q", plan.Archetype)
	}
	if !plan.Expanded {
		t.Fatal("area did not expand for stacked verticals")
	}
	want := plan.AreaEndRow + 3
	if doc.SignatureRow() != want {
		t.Fatalf("signature row = %d, want %d", doc.SignatureRow(), want)
	}
}

// Scenario: five submitted with a cap of three — exactly three placed, the
// other two written as text, and nothing touches the signature block.
func TestComposeCapsAndListsOverflow(t *testing.T) {
	img := imageFixture(t, 300, 300)
	var atts []otdoc.Attachment
	for i := 1; i <= 5; i++ {
		atts = append(atts, otdoc.Attachment{Filename: fmt.Sprintf("foto%d.png", i), Data: img})
	}
	doc := compose(t, Input{Record: testRecord(), Attachments: atts},
		otdoc.WithMaxAttachmentImages(3))

	plan := doc.Plan()
	if len(plan.Images) != 3 {
		t.Fatalf("placed %d images, want 3", len(plan.Images))
	}
	if diff := cmp.Diff([]string{"foto4.png", "foto5.png"}, plan.Omitted); diff != "" {
		t.Fatalf("omitted (-want +got):\n%s", diff)
	}

	schema := testSchema(t)
	cell, _ := excelize.CoordinatesToCellName(schema.Sections.AttachmentFirstCol, plan.AreaEndRow+1)
	listing, err := doc.file.GetCellValue(schema.Sheet, cell)
	if err != nil {
		t.Fatal(err)
	}
	if listing == "" || !bytes.Contains([]byte(listing), []byte("foto4.png")) {
		t.Fatalf("overflow listing = %q", listing)
	}
	if plan.AreaEndRow+1 >= doc.SignatureRow() {
		t.Fatal("listing row collides with the signature block")
	}
}

// Scenario: one of three attachments is corrupt — the other two are placed
// and composition still succeeds.
func TestComposeSkipsCorruptAttachment(t *testing.T) {
	img := imageFixture(t, 320, 240)
	doc := compose(t, Input{
		Record: testRecord(),
		Attachments: []otdoc.Attachment{
			{Filename: "ok1.png", Data: img},
			{Filename: "rota.png", Data: []byte("corrupted bytes")},
			{Filename: "ok2.png", Data: img},
		},
	})
	if got := len(doc.Plan().Images); got != 2 {
		t.Fatalf("placed %d images, want 2", got)
	}
	if _, err := doc.Bytes(); err != nil {
		t.Fatalf("Bytes: %v", err)
	}
}

func TestComposeRequestImageAndSignatures(t *testing.T) {
	doc := compose(t, Input{
		Record:       testRecord(),
		RequestImage: &otdoc.Attachment{Filename: "solicitud.png", Data: imageFixture(t, 640, 480)},
		Signatures: otdoc.SignatureData{
			TechnicianName:  "J. Morales",
			ClientName:      "L. Ortiz",
			TechnicianImage: imageFixture(t, 240, 80),
		},
	})
	schema := testSchema(t)
	cell, _ := excelize.CoordinatesToCellName(schema.Sections.SignatureTechCol, doc.SignatureRow())
	name, err := doc.file.GetCellValue(schema.Sheet, cell)
	if err != nil {
		t.Fatal(err)
	}
	if name != "J. Morales" {
		t.Fatalf("technician name = %q", name)
	}
}

// Composing the same input twice yields identical cell values everywhere a
// field slot exists.
func TestComposeIdempotentCellValues(t *testing.T) {
	in := Input{
		Record: testRecord(),
		Attachments: []otdoc.Attachment{
			{Filename: "a.png", Data: imageFixture(t, 300, 200)},
		},
		Signatures: otdoc.SignatureData{TechnicianName: "T", ClientName: "C"},
	}
	first := compose(t, in)
	second := compose(t, in)

	schema := testSchema(t)
	for _, slot := range schema.Slots {
		a, err := first.file.GetCellValue(schema.Sheet, slot.Anchor())
		if err != nil {
			t.Fatal(err)
		}
		b, err := second.file.GetCellValue(schema.Sheet, slot.Anchor())
		if err != nil {
			t.Fatal(err)
		}
		if a != b {
			t.Errorf("slot %q differs between runs: %q vs %q", slot.Name, a, b)
		}
	}
}

func TestFinalizedDocumentRejectsMutation(t *testing.T) {
	doc := compose(t, Input{Record: testRecord()})
	if _, err := doc.Writer(); !errors.Is(err, otdoc.ErrFinalized) {
		t.Fatalf("Writer after finalize = %v, want ErrFinalized", err)
	}
}

func TestStageOrderIsOneWay(t *testing.T) {
	schema := testSchema(t)
	doc, err := newDocument(schema)
	if err != nil {
		t.Fatal(err)
	}
	defer doc.Close()

	c, err := New(schema)
	if err != nil {
		t.Fatal(err)
	}
	// Images before fields is out of order.
	err = c.placeImages(context.Background(), doc, Input{})
	if !errors.Is(err, otdoc.ErrStageOrder) {
		t.Fatalf("err = %v, want ErrStageOrder", err)
	}
}
