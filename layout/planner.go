// Package layout plans the placement of a variable number of attachment
// images inside the template's reserved evidence area. Planning is pure
// geometry: it needs only aspect ratios, mutates nothing, and emits a Plan
// the composer executes. When the chosen arrangement needs more rows than
// the nominal area offers, the area is expanded downward and everything
// below it (the signature block) shifts by the same amount.
package layout

import (
	"fmt"

	otdoc "github.com/sasamuel24/otdoc"
)

// cellPadPx is the breathing room kept on every side of an image inside its
// grid cell.
const cellPadPx = 6

// hardImageCap is the most images any archetype can arrange.
const hardImageCap = 8

// Image is a planner input: one attachment that decoded successfully.
type Image struct {
	Filename string
	Aspect   float64 // width / height
}

// Placement positions one image: the anchor cell coordinates plus the pixel
// box the rendered image must fit into, and the offset of that box inside
// its cell block.
type Placement struct {
	Filename  string
	Row, Col  int
	WidthPx   int
	HeightPx  int
	OffsetXPx int
	OffsetYPx int
	BlockWPx  int // pixel width of the whole cell block, for final centering
	BlockHPx  int
}

// Plan is the planner's result. AreaEndRow is the binding floor for the
// signature block: signatures are placed at AreaEndRow + the configured gap
// whenever Images is non-empty.
type Plan struct {
	Archetype    string
	Images       []Placement
	AreaStartRow int
	AreaEndRow   int
	Expanded     bool
	Omitted      []string // attachments demoted to a text-only listing
}

// Geometry is the slice of the template schema the planner needs.
type Geometry struct {
	StartRow      int
	DefaultEndRow int
	MaxRows       int // hard expansion limit, in rows from StartRow
	FirstCol      int
	LastCol       int
	ColWidthPx    int
	RowHeightPx   int
}

func (g Geometry) cols() int        { return g.LastCol - g.FirstCol + 1 }
func (g Geometry) defaultRows() int { return g.DefaultEndRow - g.StartRow + 1 }

// Planner computes layout plans for one template geometry.
type Planner struct {
	geom      Geometry
	maxImages int
}

// NewPlanner builds a planner. maxImages caps how many attachments are laid
// out visually; the rest are reported in Plan.Omitted.
func NewPlanner(geom Geometry, maxImages int) (*Planner, error) {
	if geom.StartRow <= 0 || geom.DefaultEndRow < geom.StartRow {
		return nil, fmt.Errorf("layout: bad area rows %d..%d", geom.StartRow, geom.DefaultEndRow)
	}
	if geom.RowHeightPx <= 0 || geom.ColWidthPx <= 0 || geom.cols() <= 0 {
		return nil, fmt.Errorf("layout: bad grid geometry")
	}
	if geom.MaxRows < geom.defaultRows() {
		return nil, fmt.Errorf("layout: max rows %d below nominal area %d", geom.MaxRows, geom.defaultRows())
	}
	if maxImages < 0 {
		maxImages = 0
	}
	if maxImages > hardImageCap {
		maxImages = hardImageCap
	}
	return &Planner{geom: geom, maxImages: maxImages}, nil
}

// Plan arranges the given images. It always returns a usable plan; the error
// is non-nil only when the area's maximal expansion could not hold every
// image, in which case it is a *otdoc.LayoutOverflowError naming the images
// demoted to Plan.Omitted.
func (p *Planner) Plan(images []Image) (*Plan, error) {
	plan := &Plan{
		AreaStartRow: p.geom.StartRow,
		AreaEndRow:   p.geom.DefaultEndRow,
	}
	if len(images) == 0 {
		return plan, nil
	}

	placed := images
	if len(placed) > p.maxImages {
		for _, img := range placed[p.maxImages:] {
			plan.Omitted = append(plan.Omitted, img.Filename)
		}
		placed = placed[:p.maxImages]
	}
	if len(placed) == 0 {
		return plan, nil
	}

	majority := Majority(placed)
	arch := archetypeFor(len(placed), majority)
	plan.Archetype = arch.name

	bandRows := (arch.cellHeightPx + p.geom.RowHeightPx - 1) / p.geom.RowHeightPx

	// Fill bands in order; a trailing band may be partial, unused bands are
	// dropped.
	bands := fillBands(arch.bands, len(placed))

	// Trim whole bands from the bottom if even maximal expansion cannot
	// hold them. The trimmed images join the text-only listing.
	var overflow []string
	for len(bands) > 0 && len(bands)*bandRows > p.geom.MaxRows {
		last := bands[len(bands)-1]
		bands = bands[:len(bands)-1]
		kept := 0
		for _, n := range bands {
			kept += n
		}
		for _, img := range placed[kept : kept+last] {
			overflow = append(overflow, img.Filename)
		}
		placed = placed[:kept]
	}

	if len(bands) > 0 {
		span := len(bands) * bandRows
		if end := p.geom.StartRow + span - 1; end > plan.AreaEndRow {
			plan.AreaEndRow = end
			plan.Expanded = true
		}
		p.placeBands(plan, placed, bands, arch, bandRows)
	}

	var err error
	if len(overflow) > 0 {
		plan.Omitted = append(overflow, plan.Omitted...)
		err = &otdoc.LayoutOverflowError{Omitted: overflow, MaxRows: p.geom.MaxRows}
	}
	return plan, err
}

// fillBands distributes count images over the archetype's band pattern.
func fillBands(pattern []int, count int) []int {
	var bands []int
	for _, n := range pattern {
		if count <= 0 {
			break
		}
		if n > count {
			n = count
		}
		bands = append(bands, n)
		count -= n
	}
	return bands
}

func (p *Planner) placeBands(plan *Plan, placed []Image, bands []int, arch archetype, bandRows int) {
	idx := 0
	for bandNo, cells := range bands {
		row := p.geom.StartRow + bandNo*bandRows
		colsPerCell := p.geom.cols() / cells
		if colsPerCell < 1 {
			colsPerCell = 1
		}
		// Center a band that does not use the full column span.
		lead := (p.geom.cols() - colsPerCell*cells) / 2

		blockW := colsPerCell * p.geom.ColWidthPx
		boxW := blockW - 2*cellPadPx
		if arch.maxCellWidthPx > 0 && boxW > arch.maxCellWidthPx {
			boxW = arch.maxCellWidthPx
		}
		boxH := arch.cellHeightPx - 2*cellPadPx

		for j := 0; j < cells; j++ {
			col := p.geom.FirstCol + lead + j*colsPerCell
			plan.Images = append(plan.Images, Placement{
				Filename:  placed[idx].Filename,
				Row:       row,
				Col:       col,
				WidthPx:   boxW,
				HeightPx:  boxH,
				OffsetXPx: (blockW - boxW) / 2,
				OffsetYPx: cellPadPx,
				BlockWPx:  blockW,
				BlockHPx:  bandRows * p.geom.RowHeightPx,
			})
			idx++
		}
	}
}
