package input

import (
	"fmt"

	"github.com/aretw0/lousa/pkg/domain"
)

// Rect is the rendered box of the board element in display space.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Touch is a single contact point of a touch event.
type Touch struct {
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
}

// PointerEvent is a mouse, pen or touch event in display coordinates.
// When Touches is non-empty the first touch wins over ClientX/ClientY.
type PointerEvent struct {
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
	Touches []Touch `json:"touches,omitempty"`
}

// ToBuffer rescales a display-space event into board coordinates.
func ToBuffer(ev PointerEvent, rect Rect) (domain.Point, error) {
	if rect.Width <= 0 || rect.Height <= 0 {
		return domain.Point{}, fmt.Errorf("%w: element is %vx%v", domain.ErrInvalidGeometry, rect.Width, rect.Height)
	}
	cx, cy := ev.ClientX, ev.ClientY
	if len(ev.Touches) > 0 {
		cx, cy = ev.Touches[0].ClientX, ev.Touches[0].ClientY
	}
	return domain.Point{
		X: (cx - rect.Left) / rect.Width * domain.Width,
		Y: (cy - rect.Top) / rect.Height * domain.Height,
	}, nil
}
