package encoding

import "fmt"

const (
	// receptiveField is the side length of a square grid cell in pixels.
	receptiveField = 4

	// detectorsPerCell is the number of feature neurons reserved per cell.
	detectorsPerCell = 4
)

// VisualEncoder encodes grayscale images (pixel values in [0, 1]) on a grid
// of 4x4 receptive fields. A cell whose mean intensity exceeds 0.5 activates
// its first detector.
type VisualEncoder struct {
	width, height int
}

// NewVisualEncoder returns an encoder for width x height images.
func NewVisualEncoder(width, height int) (*VisualEncoder, error) {
	if width < receptiveField || height < receptiveField {
		return nil, fmt.Errorf("visual encoder: image must be at least %dx%d, got %dx%d",
			receptiveField, receptiveField, width, height)
	}
	return &VisualEncoder{width: width, height: height}, nil
}

func (e *VisualEncoder) Kind() Kind { return KindVisual }

func (e *VisualEncoder) RequiredNeurons() int {
	return e.gridW() * e.gridH() * detectorsPerCell
}

func (e *VisualEncoder) gridW() int { return e.width / receptiveField }
func (e *VisualEncoder) gridH() int { return e.height / receptiveField }

// Encode accepts a [][]float64 of height rows and width columns.
func (e *VisualEncoder) Encode(stimulus any) ([]int, error) {
	img, ok := stimulus.([][]float64)
	if !ok {
		return nil, typeError(KindVisual, stimulus)
	}
	if len(img) != e.height {
		return nil, fmt.Errorf("visual encoder: %w: %d rows, want %d", ErrStimulusShape, len(img), e.height)
	}
	for y, row := range img {
		if len(row) != e.width {
			return nil, fmt.Errorf("visual encoder: %w: row %d has %d columns, want %d", ErrStimulusShape, y, len(row), e.width)
		}
	}

	var out []int
	gw, gh := e.gridW(), e.gridH()
	for gy := 0; gy < gh; gy++ {
		for gx := 0; gx < gw; gx++ {
			sum := 0.0
			for y := gy * receptiveField; y < (gy+1)*receptiveField; y++ {
				for x := gx * receptiveField; x < (gx+1)*receptiveField; x++ {
					sum += img[y][x]
				}
			}
			if sum/(receptiveField*receptiveField) > 0.5 {
				out = append(out, (gy*gw+gx)*detectorsPerCell)
			}
		}
	}
	return out, nil
}
