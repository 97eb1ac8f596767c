package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/lousa/internal/presentation/graph"
	"github.com/aretw0/lousa/internal/presentation/tui"
	"github.com/aretw0/lousa/pkg/equiv"
)

// CheckOptions controls RunCheck output.
type CheckOptions struct {
	// Graph appends a Mermaid flowchart of both sides and the residual.
	Graph bool
	// Color styles the status line for a terminal.
	Color bool
}

// RunCheck checks lhs against rhs and prints the status line.
func RunCheck(w io.Writer, lhs, rhs string, opts CheckOptions) equiv.Verdict {
	v := equiv.Check(lhs, rhs)

	line := v.Message()
	if opts.Color {
		line = tui.Status(v.Kind.String(), line)
	}
	fmt.Fprintln(w, line)
	if v.Sampled {
		printSystemMessage(w, "decided by numeric sampling over %d points", equiv.Trials)
	}

	if opts.Graph && v.Kind != equiv.Error {
		fmt.Fprint(w, checkGraph(lhs, rhs))
	}
	return v
}

func checkGraph(lhs, rhs string) string {
	l, err := equiv.Parse(lhs)
	if err != nil {
		return ""
	}
	r, err := equiv.Parse(rhs)
	if err != nil {
		return ""
	}

	var overlay *graph.Overlay
	if residual := equiv.Simplify(equiv.Sub(l, r)); !equiv.IsZero(residual) {
		overlay = &graph.Overlay{Residual: residual}
	}
	return graph.GenerateMermaid(map[string]equiv.Node{"lhs": l, "rhs": r}, overlay)
}
