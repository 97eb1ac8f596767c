package domain

import "image/color"

// Board geometry in logical units. The raster buffer is exactly this size.
const (
	Width     = 900
	Height    = 600
	GridPitch = 30
)

// DefaultPenWidth is the pen size used when a client does not send one.
const DefaultPenWidth = 4.0

// Palette used by the surface.
var (
	Background = color.RGBA{R: 0x0b, G: 0x0f, B: 0x19, A: 0xff}
	GridLine   = color.RGBA{R: 0x1b, G: 0x23, B: 0x36, A: 0xff}
	Ink        = color.RGBA{R: 0xe6, G: 0xed, B: 0xf7, A: 0xff}
)
