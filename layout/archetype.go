package layout

// Orientation classifies an image by aspect ratio (width / height).
type Orientation int

const (
	Square Orientation = iota
	Vertical
	Horizontal
)

func (o Orientation) String() string {
	switch o {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	default:
		return "square"
	}
}

// Classification thresholds. Anything between them counts as square.
const (
	verticalBelow   = 0.8
	horizontalAbove = 1.2
)

// Classify buckets an aspect ratio into an orientation.
func Classify(aspect float64) Orientation {
	switch {
	case aspect <= 0:
		return Square
	case aspect < verticalBelow:
		return Vertical
	case aspect > horizontalAbove:
		return Horizontal
	default:
		return Square
	}
}

// Majority returns the dominant orientation of a set of images. Ties
// resolve to square, which picks the neutral archetype variants.
func Majority(images []Image) Orientation {
	var v, h, s int
	for _, img := range images {
		switch Classify(img.Aspect) {
		case Vertical:
			v++
		case Horizontal:
			h++
		default:
			s++
		}
	}
	switch {
	case v > h && v > s:
		return Vertical
	case h > v && h > s:
		return Horizontal
	default:
		return Square
	}
}

// archetype is one named arrangement strategy: bands of equally sized cells
// stacked top to bottom. cellHeightPx is the height of every cell;
// maxCellWidthPx caps how wide a cell may grow when a band holds few images.
type archetype struct {
	name           string
	bands          []int // images per band, top to bottom
	cellHeightPx   int
	maxCellWidthPx int
}

// archetypeFor picks the arrangement for a visual image count and the
// majority orientation. Vertical majorities get taller (or stacked) cells,
// horizontal majorities wider ones.
func archetypeFor(count int, majority Orientation) archetype {
	switch {
	case count <= 1:
		switch majority {
		case Vertical:
			return archetype{"single", []int{1}, 340, 300}
		case Horizontal:
			return archetype{"single", []int{1}, 240, 510}
		default:
			return archetype{"single", []int{1}, 280, 400}
		}
	case count == 2:
		if majority == Vertical {
			return archetype{"pair-stacked", []int{1, 1}, 300, 360}
		}
		return archetype{"pair-side-by-side", []int{2}, 200, 255}
	case count == 3:
		switch majority {
		case Vertical:
			return archetype{"triangular", []int{2, 1}, 260, 255}
		case Horizontal:
			return archetype{"triangular", []int{2, 1}, 170, 255}
		default:
			return archetype{"triangular", []int{2, 1}, 200, 255}
		}
	case count == 4:
		if majority == Vertical {
			return archetype{"grid-2x2", []int{2, 2}, 240, 255}
		}
		return archetype{"grid-2x2", []int{2, 2}, 170, 255}
	case count <= 6:
		if majority == Vertical {
			return archetype{"grid-3x2", []int{3, 3}, 200, 170}
		}
		return archetype{"grid-3x2", []int{3, 3}, 150, 170}
	default:
		if majority == Vertical {
			return archetype{"grid-compact", []int{4, 4}, 160, 127}
		}
		return archetype{"grid-compact", []int{4, 4}, 120, 127}
	}
}
