package domain

import "fmt"

// Point is a coordinate in board space (0..Width, 0..Height).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Mode selects how a stroke is composited onto the board.
type Mode int

const (
	// ModeInk paints the opaque ink colour over existing content.
	ModeInk Mode = iota
	// ModeErase removes content, revealing the background and grid.
	ModeErase
)

func (m Mode) String() string {
	switch m {
	case ModeInk:
		return "ink"
	case ModeErase:
		return "erase"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps the wire names "ink"/"pen" and "erase"/"eraser" to a Mode.
// An empty string is ink.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "ink", "pen":
		return ModeInk, nil
	case "erase", "eraser":
		return ModeErase, nil
	default:
		return ModeInk, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Stroke is a completed pen path in board coordinates.
// It is transient: the board consumes it into buffer mutations and drops it.
type Stroke struct {
	Points []Point `json:"points"`
	Width  float64 `json:"width"`
	Mode   Mode    `json:"mode"`
}
