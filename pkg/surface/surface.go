package surface

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"

	"github.com/aretw0/lousa/pkg/domain"
	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

var bounds = image.Rect(0, 0, domain.Width, domain.Height)

// Surface is the board raster plus the transient state of the stroke being drawn.
type Surface struct {
	buf  *image.RGBA
	base *image.RGBA // background + grid, revealed by erase strokes

	mask    *gg.Context
	maskImg *image.RGBA

	active bool
	last   domain.Point
	width  float64
	mode   domain.Mode

	encoder png.Encoder
}

// New creates a Surface already reset to background and grid.
func New() *Surface {
	mask := gg.NewContext(domain.Width, domain.Height)
	s := &Surface{
		buf:     image.NewRGBA(bounds),
		base:    renderBase(),
		mask:    mask,
		maskImg: mask.Image().(*image.RGBA),
		encoder: png.Encoder{CompressionLevel: png.BestSpeed},
	}
	s.Reset()
	return s
}

func renderBase() *image.RGBA {
	dc := gg.NewContext(domain.Width, domain.Height)
	dc.SetColor(domain.Background)
	dc.Clear()

	dc.SetColor(domain.GridLine)
	dc.SetLineWidth(1)
	for x := 0; x < domain.Width; x += domain.GridPitch {
		dc.DrawLine(float64(x), 0, float64(x), domain.Height)
		dc.Stroke()
	}
	for y := 0; y < domain.Height; y += domain.GridPitch {
		dc.DrawLine(0, float64(y), domain.Width, float64(y))
		dc.Stroke()
	}

	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, dc.Image(), image.Point{}, draw.Src)
	return out
}

// Reset fills the buffer with the background colour and the grid.
// Any stroke in progress is dropped.
func (s *Surface) Reset() {
	draw.Draw(s.buf, bounds, s.base, image.Point{}, draw.Src)
	s.active = false
}

// BeginStroke starts a path at p with the given pen width and mode.
func (s *Surface) BeginStroke(p domain.Point, width float64, mode domain.Mode) error {
	if width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPen, width)
	}
	if mode != domain.ModeInk && mode != domain.ModeErase {
		return fmt.Errorf("%w: %v", domain.ErrInvalidMode, mode)
	}
	s.active = true
	s.last = p
	s.width = width
	s.mode = mode
	return nil
}

// ExtendStroke paints the segment from the previous point to p immediately.
// It is a no-op when no stroke is active.
func (s *Surface) ExtendStroke(p domain.Point) {
	if !s.active {
		return
	}
	s.paintSegment(s.last, p)
	s.last = p
}

// EndStroke closes the current path.
func (s *Surface) EndStroke() {
	s.active = false
}

// Drawing reports whether a stroke is in progress.
func (s *Surface) Drawing() bool {
	return s.active
}

func (s *Surface) paintSegment(a, b domain.Point) {
	r := segmentBounds(a, b, s.width).Intersect(bounds)
	if r.Empty() {
		return
	}

	// Rasterise coverage into the scratch mask, limited to the dirty rectangle.
	draw.Draw(s.maskImg, r, image.Transparent, image.Point{}, draw.Src)
	s.mask.SetRGBA(1, 1, 1, 1)
	if a == b {
		s.mask.DrawCircle(a.X, a.Y, s.width/2)
		s.mask.Fill()
	} else {
		s.mask.SetLineWidth(s.width)
		s.mask.SetLineCapRound()
		s.mask.SetLineJoinRound()
		s.mask.MoveTo(a.X, a.Y)
		s.mask.LineTo(b.X, b.Y)
		s.mask.Stroke()
	}

	var src image.Image = image.NewUniform(domain.Ink)
	if s.mode == domain.ModeErase {
		src = s.base
	}
	draw.DrawMask(s.buf, r, src, r.Min, s.maskImg, r.Min, draw.Over)
}

func segmentBounds(a, b domain.Point, width float64) image.Rectangle {
	pad := width/2 + 2
	return image.Rect(
		int(math.Floor(math.Min(a.X, b.X)-pad)),
		int(math.Floor(math.Min(a.Y, b.Y)-pad)),
		int(math.Ceil(math.Max(a.X, b.X)+pad)),
		int(math.Ceil(math.Max(a.Y, b.Y)+pad)),
	)
}

// CompositeImage clears to background and grid, then draws img scaled by Fit.
// srcW and srcH are the source dimensions the caller decoded; invalid geometry
// is rejected before the buffer is touched.
func (s *Surface) CompositeImage(img image.Image, srcW, srcH int) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", domain.ErrInvalidGeometry)
	}
	p, err := Fit(srcW, srcH)
	if err != nil {
		return fmt.Errorf("%w: source %dx%d", err, srcW, srcH)
	}

	s.Reset()
	xdraw.CatmullRom.Scale(s.buf, p.Rect(), img, img.Bounds(), draw.Over, nil)
	return nil
}

// ExportImage serialises the buffer losslessly as PNG.
func (s *Surface) ExportImage() ([]byte, error) {
	var out bytes.Buffer
	if err := s.encoder.Encode(&out, s.buf); err != nil {
		return nil, fmt.Errorf("failed to encode board: %w", err)
	}
	return out.Bytes(), nil
}

// Restore redraws the whole buffer from a PNG produced by ExportImage.
func (s *Surface) Restore(data []byte) error {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUndecodable, err)
	}
	b := img.Bounds()
	if b.Dx() != domain.Width || b.Dy() != domain.Height {
		return fmt.Errorf("%w: snapshot is %dx%d", domain.ErrInvalidGeometry, b.Dx(), b.Dy())
	}
	draw.Draw(s.buf, bounds, img, b.Min, draw.Src)
	s.active = false
	return nil
}

// Image returns a copy of the current buffer.
func (s *Surface) Image() *image.RGBA {
	out := image.NewRGBA(bounds)
	copy(out.Pix, s.buf.Pix)
	return out
}
