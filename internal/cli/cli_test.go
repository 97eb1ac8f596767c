package cli

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/lousa/pkg/adapters/memory"
	"github.com/aretw0/lousa/pkg/equiv"
	"github.com/aretw0/lousa/pkg/relay"
	"github.com/aretw0/lousa/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSolver struct {
	last    relay.Request
	content string
	err     error
}

func (s *stubSolver) Solve(ctx context.Context, req relay.Request) (*relay.Response, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &relay.Response{Content: s.content}, nil
}

func writePNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		img.Set(x, 10, color.Black)
	}
	path := filepath.Join(dir, "photo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestRunCheck(t *testing.T) {
	t.Run("Equivalent", func(t *testing.T) {
		var out bytes.Buffer
		v := RunCheck(&out, "(x+1)^2", "x^2+2*x+1", CheckOptions{})
		assert.Equal(t, equiv.Equivalent, v.Kind)
		assert.Equal(t, "✅ The expressions look equivalent.\n", out.String())
	})

	t.Run("Different with graph", func(t *testing.T) {
		var out bytes.Buffer
		v := RunCheck(&out, "x+1", "x", CheckOptions{Graph: true})
		assert.Equal(t, equiv.Different, v.Kind)
		assert.True(t, strings.HasPrefix(out.String(), "⚠️ Symbolic difference: 1\n"))
		assert.Contains(t, out.String(), "graph TD")
		assert.Contains(t, out.String(), `subgraph residual["residual"]`)
	})

	t.Run("Error skips graph", func(t *testing.T) {
		var out bytes.Buffer
		v := RunCheck(&out, "", "x", CheckOptions{Graph: true})
		assert.Equal(t, equiv.Error, v.Kind)
		assert.NotContains(t, out.String(), "graph TD")
	})
}

func TestSetSettings(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	s, err := SetSettings(ctx, store, []string{"model=gpt-4o", "temperature=0.7"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", s.Model)
	assert.InDelta(t, 0.7, s.Temperature, 1e-9)
	assert.Equal(t, settings.DefaultPrompt, s.Prompt)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)

	_, err = SetSettings(ctx, store, []string{"color=red"})
	assert.Error(t, err)
	_, err = SetSettings(ctx, store, []string{"model"})
	assert.Error(t, err)
	_, err = SetSettings(ctx, store, nil)
	assert.Error(t, err)

	var out bytes.Buffer
	require.NoError(t, ShowSettings(ctx, &out, store))
	assert.Contains(t, out.String(), `"model": "gpt-4o"`)
}

func TestRunSolve(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	img := writePNG(t, dir)
	pdfPath := filepath.Join(dir, "report.pdf")
	pngPath := filepath.Join(dir, "board.png")

	solver := &stubSolver{content: "**Answer** 42"}
	var out bytes.Buffer
	resp, err := RunSolve(ctx, &out, SolveOptions{
		Image:    img,
		Prompt:   "solve it",
		PDFPath:  pdfPath,
		PNGPath:  pngPath,
		Solver:   solver,
		Settings: memory.NewStore(),
		Now:      func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	assert.Equal(t, "**Answer** 42", resp.Content)
	assert.Contains(t, out.String(), "**Answer** 42")

	assert.Equal(t, settings.DefaultProvider, solver.last.Provider)
	assert.Equal(t, "solve it", solver.last.Prompt)
	assert.True(t, strings.HasPrefix(solver.last.DataURL, "data:image/png;base64,"))

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	data, err = os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestRunSolve_FailurePrintedInline(t *testing.T) {
	dir := t.TempDir()
	solver := &stubSolver{err: errors.New("connection refused")}

	var out bytes.Buffer
	resp, err := RunSolve(context.Background(), &out, SolveOptions{
		Image:    writePNG(t, dir),
		Solver:   solver,
		Settings: memory.NewStore(),
	})
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, out.String(), "❌ Error: connection refused")
}

func TestRunSolve_MissingImage(t *testing.T) {
	_, err := RunSolve(context.Background(), &bytes.Buffer{}, SolveOptions{
		Image:    filepath.Join(t.TempDir(), "nope.png"),
		Solver:   &stubSolver{},
		Settings: memory.NewStore(),
	})
	assert.Error(t, err)
}
