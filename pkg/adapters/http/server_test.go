package http

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/lousa/internal/metrics"
	"github.com/aretw0/lousa/pkg/adapters/memory"
	"github.com/aretw0/lousa/pkg/board"
	"github.com/aretw0/lousa/pkg/domain"
	"github.com/aretw0/lousa/pkg/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSolver records the last request and answers with Content or Err.
type MockSolver struct {
	Last    relay.Request
	Content string
	Err     error
}

func (m *MockSolver) Solve(ctx context.Context, req relay.Request) (*relay.Response, error) {
	m.Last = req
	if m.Err != nil {
		return nil, m.Err
	}
	return &relay.Response{Content: m.Content}, nil
}

type fakeArchive struct {
	saved []domain.Solution
}

func (f *fakeArchive) Archive(ctx context.Context, sol domain.Solution) (string, error) {
	sol.ID = "sol-1"
	f.saved = append(f.saved, sol)
	return sol.ID, nil
}

func (f *fakeArchive) Get(ctx context.Context, id string) (domain.Solution, error) {
	for _, s := range f.saved {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Solution{}, domain.ErrSolutionNotFound
}

func (f *fakeArchive) List(ctx context.Context) ([]string, error) {
	ids := []string{}
	for _, s := range f.saved {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

type fixture struct {
	handler http.Handler
	solver  *MockSolver
	archive *fakeArchive
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		solver:  &MockSolver{Content: "**Answer**: $x = 2$"},
		archive: &fakeArchive{},
		metrics: metrics.New(),
	}
	srv, err := NewServer(f.solver, memory.NewStore(), append([]Option{
		WithBoards(board.NewManager()),
		WithArchive(f.archive),
		WithMetrics(f.metrics),
		WithVersion("1.2.3\n"),
	}, opts...)...)
	require.NoError(t, err)
	f.handler = srv.Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (f *fixture) createBoard(t *testing.T) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/boards", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[boardState](t, rec).ID
}

func TestLoadSpec(t *testing.T) {
	doc, err := LoadSpec(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", doc.Info.Version)
	assert.Contains(t, doc.Components.Schemas, "SolveRequest")
}

func TestHealthAndInfo(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	info := decode[map[string]string](t, f.do(t, http.MethodGet, "/info", ""))
	assert.Equal(t, "lousa-http", info["app"])
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "0.1.0", info["api_version"])

	rec = f.do(t, http.MethodGet, "/openapi.yaml", "")
	assert.Contains(t, rec.Body.String(), "openapi: 3.0.3")
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodOptions, "/api/solve", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSolve(t *testing.T) {
	f := newFixture(t)

	t.Run("Forwards", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/solve",
			`{"provider":"openai","model":"gpt-4o-mini","temperature":0.2,"dataUrl":"data:image/png;base64,AA==","prompt":"solve"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "**Answer**: $x = 2$", decode[relay.Response](t, rec).Content)
		assert.Equal(t, "solve", f.solver.Last.Prompt)
		assert.Equal(t, "data:image/png;base64,AA==", f.solver.Last.DataURL)
	})

	t.Run("Rejects Client Credentials", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/solve", `{"provider":"openai","dataUrl":"x","prompt":"y","apiKey":"sk-123"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid request body", decode[errorBody](t, rec).Error)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/solve", `{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Relay Error Keeps Status", func(t *testing.T) {
		f.solver.Err = &relay.Error{Status: http.StatusUnauthorized, Message: "openai API error: 401", Details: `{"error":"bad key"}`}
		defer func() { f.solver.Err = nil }()

		rec := f.do(t, http.MethodPost, "/api/solve", `{"provider":"openai","dataUrl":"x","prompt":"y"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decode[errorBody](t, rec)
		assert.Equal(t, "openai API error: 401", body.Error)
		assert.Equal(t, `{"error":"bad key"}`, body.Details)
	})
}

func TestCheck(t *testing.T) {
	f := newFixture(t)

	got := decode[checkResponse](t, f.do(t, http.MethodPost, "/api/check", `{"lhs":"(x+1)^2","rhs":"x^2+2x+1"}`))
	assert.Equal(t, "equivalent", got.Verdict)
	assert.Equal(t, "✅ The expressions look equivalent.", got.Message)

	got = decode[checkResponse](t, f.do(t, http.MethodPost, "/api/check", `{"lhs":"x+1","rhs":"x+2"}`))
	assert.Equal(t, "different", got.Verdict)
	assert.Equal(t, "-1", got.Residual)

	got = decode[checkResponse](t, f.do(t, http.MethodPost, "/api/check", `{"lhs":"","rhs":"x"}`))
	assert.Equal(t, "error", got.Verdict)

	rec := httptest.NewRecorder()
	f.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `lousa_checks_total{verdict="equivalent"} 1`)
}

func TestSettings(t *testing.T) {
	f := newFixture(t)

	got := decode[map[string]any](t, f.do(t, http.MethodGet, "/api/settings", ""))
	assert.Equal(t, "openai", got["provider"])

	rec := f.do(t, http.MethodPut, "/api/settings", `{"provider":"openrouter","temperature":0.7}`)
	require.Equal(t, http.StatusOK, rec.Code)

	got = decode[map[string]any](t, f.do(t, http.MethodGet, "/api/settings", ""))
	assert.Equal(t, "openrouter", got["provider"])
	assert.Equal(t, 0.7, got["temperature"])
	assert.Equal(t, "gpt-4o-mini", got["model"], "absent fields are kept")

	rec = f.do(t, http.MethodPut, "/api/settings", `{"color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/settings", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	got = decode[map[string]any](t, f.do(t, http.MethodGet, "/api/settings", ""))
	assert.Equal(t, "openai", got["provider"])
}

func TestBoardLifecycle(t *testing.T) {
	f := newFixture(t)
	id := f.createBoard(t)

	// Display box is half the board size, so every coordinate doubles.
	stroke := `{"points":[{"clientX":50,"clientY":50},{"clientX":150,"clientY":50}],
		"rect":{"left":0,"top":0,"width":450,"height":300},"width":6,"mode":"pen"}`
	rec := f.do(t, http.MethodPost, "/api/boards/"+id+"/strokes", stroke)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[boardState](t, rec).Snapshots)

	rec = f.do(t, http.MethodGet, "/api/boards/"+id+"/image.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, domain.Width, domain.Height), img.Bounds())
	assert.Equal(t, domain.Ink, color.RGBAModel.Convert(img.At(200, 100)))

	rec = f.do(t, http.MethodPost, "/api/boards/"+id+"/undo", "")
	st := decode[boardState](t, rec)
	require.NotNil(t, st.Undone)
	assert.True(t, *st.Undone)
	assert.Equal(t, 1, st.Snapshots)

	rec = f.do(t, http.MethodPost, "/api/boards/"+id+"/undo", "")
	st = decode[boardState](t, rec)
	assert.False(t, *st.Undone, "floor")

	rec = f.do(t, http.MethodPost, "/api/boards/"+id+"/clear", "")
	assert.Equal(t, 2, decode[boardState](t, rec).Snapshots)

	rec = f.do(t, http.MethodDelete, "/api/boards/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/boards/"+id+"/clear", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStrokeValidation(t *testing.T) {
	f := newFixture(t)
	id := f.createBoard(t)

	cases := map[string]string{
		"zero rect":    `{"points":[{"clientX":1,"clientY":1}],"rect":{"width":0,"height":300}}`,
		"bad mode":     `{"points":[{"clientX":1,"clientY":1}],"rect":{"width":10,"height":10},"mode":"spray"}`,
		"no points":    `{"points":[],"rect":{"width":10,"height":10}}`,
		"negative pen": `{"points":[{"clientX":1,"clientY":1}],"rect":{"width":10,"height":10},"width":-1}`,
		"missing rect": `{"points":[{"clientX":1,"clientY":1}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/boards/"+id+"/strokes", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 200, 0, 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadImage(t *testing.T) {
	f := newFixture(t)
	id := f.createBoard(t)

	t.Run("Raw Body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/boards/"+id+"/image", bytes.NewReader(testPNG(t, 400, 200)))
		req.Header.Set("Content-Type", "image/png")
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 2, decode[boardState](t, rec).Snapshots)
	})

	t.Run("Multipart", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", "photo.png")
		require.NoError(t, err)
		part.Write(testPNG(t, 30, 20))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/boards/"+id+"/image", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 3, decode[boardState](t, rec).Snapshots)
	})

	t.Run("Undecodable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/boards/"+id+"/image", strings.NewReader("not an image"))
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Oversized Raw Body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/boards/"+id+"/image", bytes.NewReader(make([]byte, MaxBodyBytes+1)))
		req.Header.Set("Content-Type", "image/png")
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	})

	t.Run("Oversized Multipart", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", "huge.png")
		require.NoError(t, err)
		part.Write(make([]byte, MaxBodyBytes+1))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/boards/"+id+"/image", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		assert.Contains(t, []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge}, rec.Code, rec.Body.String())
	})

	f.do(t, http.MethodPost, "/api/boards/"+id+"/undo", "")
	rec := f.do(t, http.MethodPost, "/api/boards/"+id+"/undo", "")
	assert.Equal(t, 1, decode[boardState](t, rec).Snapshots, "rejected uploads recorded nothing")
}

func snapshotCamera(t *testing.T) *httptest.Server {
	t.Helper()
	cam := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/denied" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(testPNG(t, 64, 48))
	}))
	t.Cleanup(cam.Close)
	return cam
}

func TestCaptureFrame(t *testing.T) {
	cam := snapshotCamera(t)
	f := newFixture(t, WithCameraURLs(cam.URL+"/snap.png", cam.URL+"/denied"))
	id := f.createBoard(t)

	rec := f.do(t, http.MethodPost, "/api/boards/"+id+"/capture", "")
	assert.Equal(t, http.StatusConflict, rec.Code, "no camera open yet")

	rec = f.do(t, http.MethodPost, "/api/boards/"+id+"/capture", `{"url":"`+cam.URL+`/snap.png"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[boardState](t, rec).Snapshots)

	rec = f.do(t, http.MethodPost, "/api/boards/"+id+"/capture", `{"url":"`+cam.URL+`/denied"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error, "permission denied")
}

func TestCaptureFrame_RejectsUnlistedURL(t *testing.T) {
	var fetched bool
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetched = true
		w.Write(testPNG(t, 8, 8))
	}))
	defer internal.Close()

	cam := snapshotCamera(t)
	f := newFixture(t, WithCameraURLs(cam.URL+"/snap.png"))
	id := f.createBoard(t)

	for _, url := range []string{internal.URL + "/secret.png", "http://169.254.169.254/latest/meta-data"} {
		rec := f.do(t, http.MethodPost, "/api/boards/"+id+"/capture", `{"url":"`+url+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, url)
		assert.Equal(t, "camera url not allowed", decode[errorBody](t, rec).Error)
	}
	assert.False(t, fetched)

	t.Run("Single configured camera is the default", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/boards/"+id+"/capture", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 2, decode[boardState](t, rec).Snapshots)
	})
}

func TestCaptureFrame_NoCamerasConfigured(t *testing.T) {
	cam := snapshotCamera(t)
	f := newFixture(t)
	id := f.createBoard(t)

	rec := f.do(t, http.MethodPost, "/api/boards/"+id+"/capture", `{"url":"`+cam.URL+`/snap.png"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSolveBoard(t *testing.T) {
	f := newFixture(t)
	id := f.createBoard(t)

	rec := f.do(t, http.MethodPost, "/api/boards/"+id+"/solve", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[solveResponse](t, rec)

	assert.Equal(t, "**Answer**: $x = 2$", out.Content)
	assert.Contains(t, out.HTML, "<strong>Answer</strong>")
	assert.Equal(t, "sol-1", out.SolutionID)

	assert.Equal(t, "openai", f.solver.Last.Provider)
	assert.True(t, strings.HasPrefix(f.solver.Last.DataURL, "data:image/png;base64,"))

	require.Len(t, f.archive.saved, 1)
	assert.Equal(t, id, f.archive.saved[0].BoardID)
	assert.NotEmpty(t, f.archive.saved[0].Image)

	rec = f.do(t, http.MethodGet, "/api/solutions/sol-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/solutions/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportPDF(t *testing.T) {
	f := newFixture(t)
	id := f.createBoard(t)

	rec := f.do(t, http.MethodPost, "/api/boards/"+id+"/report.pdf", `{"solution":"**Answer**: 4"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestUnknownBoard(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/boards/nope/image.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "board not found: nope", decode[errorBody](t, rec).Error)
}
