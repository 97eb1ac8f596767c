package surface

import (
	"image"
	"math"

	"github.com/aretw0/lousa/pkg/domain"
)

// Placement describes where a source image lands on the board.
type Placement struct {
	Scale float64
	X, Y  float64
	W, H  float64
}

// Fit computes the uniform scale that makes a srcW x srcH image as large as possible
// while fitting the board, centered on both axes.
func Fit(srcW, srcH int) (Placement, error) {
	if srcW <= 0 || srcH <= 0 {
		return Placement{}, domain.ErrInvalidGeometry
	}
	scale := math.Min(float64(domain.Width)/float64(srcW), float64(domain.Height)/float64(srcH))
	w := float64(srcW) * scale
	h := float64(srcH) * scale
	return Placement{
		Scale: scale,
		X:     (float64(domain.Width) - w) / 2,
		Y:     (float64(domain.Height) - h) / 2,
		W:     w,
		H:     h,
	}, nil
}

// Rect returns the destination rectangle in whole pixels.
// Edges are rounded independently so adjacent placements never overlap by a pixel.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(
		int(math.Round(p.X)),
		int(math.Round(p.Y)),
		int(math.Round(p.X+p.W)),
		int(math.Round(p.Y+p.H)),
	)
}
