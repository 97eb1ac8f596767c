package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer(width int) func(string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TermWidth returns the terminal width of w, or 0 when unknown.
func TermWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// WriteMarkdown renders markdown with glamour on a terminal and writes it verbatim otherwise.
func WriteMarkdown(w io.Writer, markdown string) error {
	if !IsTerminal(w) {
		_, err := io.WriteString(w, markdown+"\n")
		return err
	}
	out, err := NewRenderer(TermWidth(w))(markdown)
	if err != nil {
		out = markdown + "\n"
	}
	_, err = io.WriteString(w, out)
	return err
}

// Status colours a one-line status for the terminal.
// Kind is "equivalent", "different" or "error".
func Status(kind, line string) string {
	p := termenv.ColorProfile()
	switch kind {
	case "equivalent":
		return termenv.String(line).Foreground(p.Color("#4ade80")).String()
	case "different":
		return termenv.String(line).Foreground(p.Color("#facc15")).String()
	default:
		return termenv.String(line).Foreground(p.Color("#f87171")).String()
	}
}
