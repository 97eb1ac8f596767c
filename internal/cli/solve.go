package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/lousa/internal/logging"
	"github.com/aretw0/lousa/internal/presentation/tui"
	"github.com/aretw0/lousa/pkg/board"
	"github.com/aretw0/lousa/pkg/ports"
	"github.com/aretw0/lousa/pkg/relay"
	"github.com/aretw0/lousa/pkg/report"
)

// SolveOptions configures RunSolve.
type SolveOptions struct {
	Image    string // path of the photo or sketch to solve
	Prompt   string // replaces the stored prompt when set
	PDFPath  string // writes a report when set
	PNGPath  string // writes the board export when set
	Solver   relay.Solver
	Settings ports.SettingsStore
	Boards   []board.Option
	Logger   *slog.Logger
	Now      func() time.Time
}

// RunSolve composites an image onto a fresh board, relays it and prints the answer.
// A failed relay call prints the failure text in place of the answer; the returned
// error is non-nil only when nothing could be sent.
func RunSolve(ctx context.Context, w io.Writer, opts SolveOptions) (*relay.Response, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	// 1. Settings
	cfg, err := opts.Settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if opts.Prompt != "" {
		cfg.Prompt = opts.Prompt
	}

	// 2. Board
	f, err := os.Open(opts.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	b, err := board.New(opts.Boards...)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	if err := b.Upload(ctx, f).Wait(ctx); err != nil {
		return nil, err
	}
	img, err := report.PNG(b)
	if err != nil {
		return nil, err
	}
	if opts.PNGPath != "" {
		if err := os.WriteFile(opts.PNGPath, img, 0644); err != nil {
			return nil, fmt.Errorf("failed to write image: %w", err)
		}
	}

	// 3. Relay
	printSystemMessage(w, "Solving with %s/%s...", cfg.Provider, cfg.Model)
	resp, solveErr := opts.Solver.Solve(ctx, relay.Request{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		DataURL:     relay.DataURL(img),
		Prompt:      cfg.Prompt,
	})
	var text string
	if solveErr != nil {
		logger.Warn("solve failed", "error", solveErr)
		text = relay.FailureMessage(solveErr)
	} else {
		text = resp.Content
	}
	if err := tui.WriteMarkdown(w, text); err != nil {
		return resp, err
	}

	// 4. Report
	if opts.PDFPath != "" {
		if err := writePDF(opts.PDFPath, report.Report{Image: img, Timestamp: now(), Solution: text}); err != nil {
			return resp, err
		}
		printSystemMessage(w, "Report written to %s", opts.PDFPath)
	}
	return resp, nil
}

func writePDF(path string, r report.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := report.PDF(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
