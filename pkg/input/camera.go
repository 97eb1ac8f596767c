package input

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/lousa/pkg/domain"
)

// Camera acquires a live stream. Acquisition failures return a *CameraError.
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is an open camera. It must be closed to release the device.
type Stream interface {
	// Frame returns the current video frame.
	Frame(ctx context.Context) (image.Image, error)
	// Size returns the native resolution of the stream, or zeros when unknown.
	Size() (w, h int)
	Close() error
}

// CameraError reports why a camera could not be acquired.
// It matches domain.ErrCameraUnavailable with errors.Is.
type CameraError struct {
	Reason string
	Err    error
}

func (e *CameraError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("camera unavailable: %s: %v", e.Reason, e.Err)
	}
	return "camera unavailable: " + e.Reason
}

func (e *CameraError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrCameraUnavailable}
	}
	return []error{domain.ErrCameraUnavailable, e.Err}
}

// StaticCamera always serves the same frame. Err, when set, is returned by Open.
type StaticCamera struct {
	Image image.Image
	Err   error
}

// Open returns a stream over the static frame.
func (c *StaticCamera) Open(ctx context.Context) (Stream, error) {
	if c.Err != nil {
		var camErr *CameraError
		if errors.As(c.Err, &camErr) {
			return nil, camErr
		}
		return nil, &CameraError{Reason: c.Err.Error()}
	}
	if c.Image == nil {
		return nil, &CameraError{Reason: "no device"}
	}
	return &staticStream{img: c.Image}, nil
}

type staticStream struct {
	mu     sync.Mutex
	img    image.Image
	closed bool
}

func (s *staticStream) Frame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrCameraClosed
	}
	return s.img, nil
}

func (s *staticStream) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *staticStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// HTTPCamera reads stills from a snapshot URL, as exposed by IP cameras and
// phone camera apps.
type HTTPCamera struct {
	URL    string
	Client *http.Client
}

// NewHTTPCamera creates a snapshot camera with a short request timeout.
func NewHTTPCamera(url string) *HTTPCamera {
	return &HTTPCamera{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Open fetches a first frame to verify the device is reachable and learn its size.
func (c *HTTPCamera) Open(ctx context.Context) (Stream, error) {
	if c.URL == "" {
		return nil, &CameraError{Reason: "no device configured"}
	}
	s := &httpStream{cam: c}
	img, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	s.w, s.h = b.Dx(), b.Dy()
	return s, nil
}

type httpStream struct {
	cam    *HTTPCamera
	mu     sync.Mutex
	w, h   int
	closed bool
}

func (s *httpStream) fetch(ctx context.Context) (image.Image, error) {
	client := s.cam.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cam.URL, nil)
	if err != nil {
		return nil, &CameraError{Reason: "invalid snapshot URL", Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &CameraError{Reason: "device unreachable", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &CameraError{Reason: "permission denied"}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &CameraError{Reason: "no device at snapshot URL"}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &CameraError{Reason: fmt.Sprintf("device answered %d", resp.StatusCode)}
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, DefaultMaxUpload))
	if err != nil {
		return nil, &CameraError{Reason: "unreadable frame", Err: err}
	}
	return img, nil
}

func (s *httpStream) Frame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, domain.ErrCameraClosed
	}
	return s.fetch(ctx)
}

func (s *httpStream) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}

func (s *httpStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
