package input

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"

	"github.com/aretw0/lousa/internal/logging"
	"github.com/aretw0/lousa/pkg/domain"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultMaxUpload bounds the number of bytes read from an upload.
const DefaultMaxUpload = 10 << 20

// Normalizer decodes uploads and camera frames into images ready for compositing.
type Normalizer struct {
	maxUpload int64
	logger    *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithMaxUpload overrides the upload size limit.
func WithMaxUpload(limit int64) Option {
	return func(n *Normalizer) {
		if limit > 0 {
			n.maxUpload = limit
		}
	}
}

// WithLogger configures a logger for the Normalizer.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// NewNormalizer creates a Normalizer with default limits.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		maxUpload: DefaultMaxUpload,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Upload decodes an uploaded file into an image.
func (n *Normalizer) Upload(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, n.maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > n.maxUpload {
		return nil, fmt.Errorf("%w: upload exceeds %d bytes", domain.ErrUndecodable, n.maxUpload)
	}
	return n.decode(data)
}

func (n *Normalizer) decode(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUndecodable, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: decoded image is %dx%d", domain.ErrInvalidGeometry, b.Dx(), b.Dy())
	}
	n.logger.Debug("image decoded", "format", format, "width", b.Dx(), "height", b.Dy())
	return img, nil
}

// Capture grabs the current frame of stream at its native resolution, encodes it
// and decodes it back so it can follow the upload composite path.
func (n *Normalizer) Capture(ctx context.Context, stream Stream) (image.Image, error) {
	if stream == nil {
		return nil, domain.ErrCameraClosed
	}
	frame, err := stream.Frame(ctx)
	if err != nil {
		return nil, err
	}

	// The frame decides the raster size; Size is only what the device reported on open.
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	if sw, sh := stream.Size(); (sw > 0 && sw != w) || (sh > 0 && sh != h) {
		n.logger.Debug("camera frame size changed", "reported_width", sw, "reported_height", sh, "width", w, "height", h)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: camera frame is %dx%d", domain.ErrInvalidGeometry, w, h)
	}

	// 1. Intermediate raster at the camera's native size.
	raster := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(raster, raster.Bounds(), frame, b.Min, draw.Src)

	// 2. Encode, then decode back like any other upload.
	var buf bytes.Buffer
	if err := png.Encode(&buf, raster); err != nil {
		return nil, fmt.Errorf("failed to encode camera frame: %w", err)
	}
	return n.decode(buf.Bytes())
}
