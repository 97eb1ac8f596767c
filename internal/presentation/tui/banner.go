package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the lousa banner with the version underneath.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{" _", "#38bdf8"},
		{"| |    ___  _   _ ___  __ _", "#60a5fa"},
		{"| |   / _ \\| | | / __|/ _` |", "#818cf8"},
		{"| |__| (_) | |_| \\__ \\ (_| |", "#a78bfa"},
		{"|_____\\___/ \\__,_|___/\\__,_|", "#c084fc"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  sketch, solve, check  v"+version).Faint())
	fmt.Fprintln(w)
}
