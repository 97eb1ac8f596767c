package board

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/lousa/internal/logging"
	"github.com/aretw0/lousa/pkg/domain"
	"github.com/aretw0/lousa/pkg/history"
	"github.com/aretw0/lousa/pkg/input"
	"github.com/aretw0/lousa/pkg/surface"
)

// Operation names reported to the observer.
const (
	OpStroke    = "stroke"
	OpClear     = "clear"
	OpUndo      = "undo"
	OpComposite = "composite"
	OpCapture   = "capture"
)

// Board is a drawing board with bounded undo.
type Board struct {
	mu sync.Mutex

	surface    *surface.Surface
	history    *history.Manager
	normalizer *input.Normalizer

	nextGen uint64 // last generation handed to a load
	applied uint64 // generation of the last applied composite

	stream input.Stream

	historyLimit int
	logger       *slog.Logger
	observe      func(op string)
}

// Option configures a Board.
type Option func(*Board)

// WithHistoryLimit bounds the undo depth, floor included.
func WithHistoryLimit(n int) Option {
	return func(b *Board) {
		b.historyLimit = n
	}
}

// WithNormalizer replaces the default input normalizer.
func WithNormalizer(n *input.Normalizer) Option {
	return func(b *Board) {
		if n != nil {
			b.normalizer = n
		}
	}
}

// WithLogger configures a logger for the Board.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Board) {
		b.logger = logger
	}
}

// WithObserver registers a callback invoked after each successful operation.
func WithObserver(fn func(op string)) Option {
	return func(b *Board) {
		b.observe = fn
	}
}

// New creates a board reset to background and grid, with the floor snapshot recorded.
func New(opts ...Option) (*Board, error) {
	b := &Board{
		logger:       logging.NewNop(),
		historyLimit: history.DefaultLimit,
		observe:      func(string) {},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.normalizer == nil {
		b.normalizer = input.NewNormalizer(input.WithLogger(b.logger))
	}

	b.surface = surface.New()
	b.history = history.New(b.surface, history.WithLimit(b.historyLimit))
	if err := b.history.Record(); err != nil {
		return nil, fmt.Errorf("failed to record initial snapshot: %w", err)
	}
	return b, nil
}

// Stroke paints a complete stroke in buffer coordinates and records it.
func (b *Board) Stroke(s domain.Stroke) error {
	if len(s.Points) == 0 {
		return fmt.Errorf("%w: stroke has no points", domain.ErrInvalidGeometry)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.surface.BeginStroke(s.Points[0], s.Width, s.Mode); err != nil {
		return err
	}
	for _, p := range s.Points[1:] {
		b.surface.ExtendStroke(p)
	}
	b.surface.EndStroke()
	return b.record(OpStroke)
}

// Begin starts a stroke from a pointer event in display space.
func (b *Board) Begin(ev input.PointerEvent, rect input.Rect, width float64, mode domain.Mode) error {
	p, err := input.ToBuffer(ev, rect)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surface.BeginStroke(p, width, mode)
}

// Move extends the active stroke. Without one it does nothing.
func (b *Board) Move(ev input.PointerEvent, rect input.Rect) error {
	p, err := input.ToBuffer(ev, rect)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.surface.ExtendStroke(p)
	return nil
}

// End completes the active stroke and records it. Without one it does nothing.
func (b *Board) End() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.surface.Drawing() {
		return nil
	}
	b.surface.EndStroke()
	return b.record(OpStroke)
}

// Clear resets the buffer and records the blank board.
func (b *Board) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.surface.Reset()
	return b.record(OpClear)
}

// Undo restores the previous snapshot. It reports false at the floor.
func (b *Board) Undo() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.surface.EndStroke()
	ok, err := b.history.Undo()
	if err != nil {
		return false, err
	}
	if ok {
		b.observe(OpUndo)
	}
	return ok, nil
}

// LoadImage composites an already decoded image onto the board.
func (b *Board) LoadImage(img image.Image) error {
	b.mu.Lock()
	gen := b.issue()
	b.mu.Unlock()

	return b.apply(gen, img, OpComposite)
}

// Upload decodes r asynchronously and composites the result.
func (b *Board) Upload(ctx context.Context, r io.Reader) *Task {
	b.mu.Lock()
	t := newTask(b.issue())
	b.mu.Unlock()

	go func() {
		img, err := b.normalizer.Upload(r)
		if err != nil {
			t.finish(err)
			return
		}
		if err := ctx.Err(); err != nil {
			t.finish(err)
			return
		}
		t.finish(b.apply(t.gen, img, OpComposite))
	}()
	return t
}

// OpenCamera acquires a stream from cam. An already open stream is closed first.
func (b *Board) OpenCamera(ctx context.Context, cam input.Camera) error {
	b.mu.Lock()
	prev := b.stream
	b.stream = nil
	b.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			b.logger.Warn("failed to close previous camera stream", "error", err)
		}
	}

	stream, err := cam.Open(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.stream = stream
	b.mu.Unlock()
	return nil
}

// CloseCamera stops the open stream, if any.
func (b *Board) CloseCamera() error {
	b.mu.Lock()
	stream := b.stream
	b.stream = nil
	b.mu.Unlock()

	if stream == nil {
		return nil
	}
	return stream.Close()
}

// CameraOpen reports whether a stream is held.
func (b *Board) CameraOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stream != nil
}

// Capture grabs a frame from the open camera asynchronously and composites it.
func (b *Board) Capture(ctx context.Context) *Task {
	b.mu.Lock()
	gen := b.issue()
	stream := b.stream
	b.mu.Unlock()

	if stream == nil {
		return finished(gen, domain.ErrCameraClosed)
	}

	t := newTask(gen)
	go func() {
		img, err := b.normalizer.Capture(ctx, stream)
		if err != nil {
			t.finish(err)
			return
		}
		t.finish(b.apply(t.gen, img, OpCapture))
	}()
	return t
}

// Export returns the lossless encoding of the current buffer.
func (b *Board) Export() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surface.ExportImage()
}

// Image returns a copy of the current buffer.
func (b *Board) Image() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surface.Image()
}

// Snapshots returns the number of undo snapshots, floor included.
func (b *Board) Snapshots() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.Len()
}

// Close releases the camera stream.
func (b *Board) Close() error {
	return b.CloseCamera()
}

// issue hands out the next load generation. Caller holds b.mu.
func (b *Board) issue() uint64 {
	b.nextGen++
	return b.nextGen
}

func (b *Board) apply(gen uint64, img image.Image, op string) error {
	if img == nil {
		return fmt.Errorf("%w: no image", domain.ErrInvalidGeometry)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if gen < b.applied {
		b.logger.Debug("discarding stale image load", "generation", gen, "applied", b.applied)
		return domain.ErrStaleLoad
	}

	size := img.Bounds().Size()
	if err := b.surface.CompositeImage(img, size.X, size.Y); err != nil {
		return err
	}
	b.applied = gen
	return b.record(op)
}

// record snapshots the surface. Caller holds b.mu.
func (b *Board) record(op string) error {
	if err := b.history.Record(); err != nil {
		return err
	}
	b.observe(op)
	return nil
}
