package layout

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	otdoc "github.com/sasamuel24/otdoc"
)

// testGeom mirrors the embedded template: rows 28..39 nominal, up to 40
// rows, columns B..G at 85px, 20px rows.
func testGeom() Geometry {
	return Geometry{
		StartRow:      28,
		DefaultEndRow: 39,
		MaxRows:       40,
		FirstCol:      2,
		LastCol:       7,
		ColWidthPx:    85,
		RowHeightPx:   20,
	}
}

func mustPlanner(t *testing.T, maxImages int) *Planner {
	t.Helper()
	p, err := NewPlanner(testGeom(), maxImages)
	if err != nil {
		t.Fatalf("NewPlanner: %v", err)
	}
	return p
}

func TestClassify(t *testing.T) {
	cases := []struct {
		aspect float64
		want   Orientation
	}{
		{0.5, Vertical},
		{0.79, Vertical},
		{0.8, Square},
		{1.0, Square},
		{1.2, Square},
		{1.21, Horizontal},
		{1.78, Horizontal},
	}
	for _, tc := range cases {
		if got := Classify(tc.aspect); got != tc.want {
			t.Errorf("Classify(%v) = %v, want %v", tc.aspect, got, tc.want)
		}
	}
}

func TestPlanEmptyKeepsNominalArea(t *testing.T) {
	p := mustPlanner(t, 3)
	plan, err := p.Plan(nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Images) != 0 || plan.Expanded {
		t.Fatalf("empty plan placed images or expanded: %+v", plan)
	}
	if plan.AreaEndRow != testGeom().DefaultEndRow {
		t.Fatalf("AreaEndRow = %d, want nominal %d", plan.AreaEndRow, testGeom().DefaultEndRow)
	}
}

// Signature floor invariant: for every small image count and a spread of
// aspect ratios, the area end plus the gap stays at or above where signatures
// will go, and every placement stays inside the (possibly expanded) area.
func TestPlanSignatureFloorInvariant(t *testing.T) {
	const gap = 3
	aspects := []float64{0.4, 0.75, 1.0, 1.5, 2.2}
	p := mustPlanner(t, 3)
	for n := 0; n <= 3; n++ {
		for _, a := range aspects {
			imgs := make([]Image, n)
			for i := range imgs {
				imgs[i] = Image{Filename: fmt.Sprintf("img%d.jpg", i), Aspect: a}
			}
			plan, err := p.Plan(imgs)
			if err != nil {
				t.Fatalf("n=%d aspect=%v: %v", n, a, err)
			}
			// The base row the signature placer will use: the nominal
			// template row when nothing was placed, the expanded floor
			// otherwise.
			base := 42
			if len(plan.Images) > 0 {
				base = plan.AreaEndRow + gap
			}
			if plan.AreaEndRow+gap > base {
				t.Fatalf("n=%d aspect=%v: area end %d + gap breaches signature base %d",
					n, a, plan.AreaEndRow, base)
			}
			for _, pl := range plan.Images {
				if pl.Row < plan.AreaStartRow || pl.Row > plan.AreaEndRow {
					t.Fatalf("n=%d aspect=%v: placement row %d outside area %d..%d",
						n, a, pl.Row, plan.AreaStartRow, plan.AreaEndRow)
				}
				if pl.Col < testGeom().FirstCol || pl.Col > testGeom().LastCol {
					t.Fatalf("placement col %d outside area columns", pl.Col)
				}
			}
		}
	}
}

// Two tall images stack vertically, centered, and push the area end (and
// with it the signature block) down by a deterministic row count.
func TestPlanPairStackedExpandsDeterministically(t *testing.T) {
	p := mustPlanner(t, 3)
	imgs := []Image{
		{Filename: "a.jpg", Aspect: 0.5},
		{Filename: "b.jpg", Aspect: 0.5},
	}
	plan, err := p.Plan(imgs)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Archetype != "pair-stacked" {
		t.Fatalf("archetype = %q, want pair-stacked", plan.Archetype)
	}
	// Each 300px band spans 15 rows of 20px; two bands need 30 rows against
	// the nominal 12, so the area ends 18 rows lower.
	wantEnd := 28 + 30 - 1
	if plan.AreaEndRow != wantEnd || !plan.Expanded {
		t.Fatalf("AreaEndRow = %d (expanded=%v), want %d expanded", plan.AreaEndRow, plan.Expanded, wantEnd)
	}
	if len(plan.Images) != 2 {
		t.Fatalf("placed %d images", len(plan.Images))
	}
	if plan.Images[1].Row != plan.Images[0].Row+15 {
		t.Fatalf("second band at row %d, first at %d", plan.Images[1].Row, plan.Images[0].Row)
	}
	for _, pl := range plan.Images {
		if pl.OffsetXPx != (pl.BlockWPx-pl.WidthPx)/2 {
			t.Fatalf("image %s not centered: offset %d, block %d, width %d",
				pl.Filename, pl.OffsetXPx, pl.BlockWPx, pl.WidthPx)
		}
	}

	// Re-planning the same input is deterministic.
	again, err := p.Plan(imgs)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(plan, again); diff != "" {
		t.Fatalf("plan not deterministic (-first +second):\n%s", diff)
	}
}

func TestPlanSideBySideFitsNominalArea(t *testing.T) {
	p := mustPlanner(t, 3)
	plan, err := p.Plan([]Image{
		{Filename: "a.jpg", Aspect: 1.6},
		{Filename: "b.jpg", Aspect: 1.6},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Archetype != "pair-side-by-side" {
		t.Fatalf("archetype = %q", plan.Archetype)
	}
	if plan.Expanded {
		t.Fatalf("two landscape images should fit the nominal area, got end %d", plan.AreaEndRow)
	}
	if plan.Images[0].Row != plan.Images[1].Row {
		t.Fatal("side-by-side images on different rows")
	}
	if plan.Images[0].Col == plan.Images[1].Col {
		t.Fatal("side-by-side images in the same column")
	}
}

func TestPlanTriangularThree(t *testing.T) {
	p := mustPlanner(t, 3)
	plan, err := p.Plan([]Image{
		{Filename: "a.jpg", Aspect: 1.0},
		{Filename: "b.jpg", Aspect: 1.0},
		{Filename: "c.jpg", Aspect: 1.0},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Archetype != "triangular" {
		t.Fatalf("archetype = %q", plan.Archetype)
	}
	if plan.Images[0].Row != plan.Images[1].Row {
		t.Fatal("top band rows differ")
	}
	if plan.Images[2].Row <= plan.Images[0].Row {
		t.Fatal("bottom image not below the top band")
	}
	// The lone bottom image is centered across the area columns.
	top, bottom := plan.Images[0], plan.Images[2]
	if bottom.BlockWPx <= top.BlockWPx {
		t.Fatalf("bottom block %dpx not wider than top %dpx", bottom.BlockWPx, top.BlockWPx)
	}
}

// Five submitted, three allowed: exactly three placed, two demoted to text.
func TestPlanCapsVisualImages(t *testing.T) {
	p := mustPlanner(t, 3)
	var imgs []Image
	for i := 0; i < 5; i++ {
		imgs = append(imgs, Image{Filename: fmt.Sprintf("f%d.jpg", i), Aspect: 1.0})
	}
	plan, err := p.Plan(imgs)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Images) != 3 {
		t.Fatalf("placed %d, want 3", len(plan.Images))
	}
	want := []string{"f3.jpg", "f4.jpg"}
	if diff := cmp.Diff(want, plan.Omitted); diff != "" {
		t.Fatalf("omitted (-want +got):\n%s", diff)
	}
}

// With a tiny expansion allowance the planner trims what cannot fit instead
// of overlapping protected rows, and reports the overflow.
func TestPlanOverflowDemotesToText(t *testing.T) {
	geom := testGeom()
	geom.MaxRows = geom.defaultRows() // no expansion allowed
	p, err := NewPlanner(geom, 3)
	if err != nil {
		t.Fatal(err)
	}
	plan, err := p.Plan([]Image{
		{Filename: "a.jpg", Aspect: 0.5},
		{Filename: "b.jpg", Aspect: 0.5},
	})
	var overflow *otdoc.LayoutOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("err = %v, want LayoutOverflowError", err)
	}
	if len(plan.Images) > 1 {
		t.Fatalf("placed %d images into a 12-row area", len(plan.Images))
	}
	if plan.AreaEndRow > geom.StartRow+geom.MaxRows-1 {
		t.Fatalf("area end %d past the hard limit", plan.AreaEndRow)
	}
	if len(overflow.Omitted) == 0 {
		t.Fatal("overflow error names no images")
	}
}
