package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/lousa/pkg/equiv"
)

// Overlay highlights parts of the rendered tree.
type Overlay struct {
	// Residual marks the simplified difference as a separate subgraph.
	Residual equiv.Node
}

// GenerateMermaid produces a Mermaid flowchart of one or more expression trees.
// It applies semantic styling:
// - Operator: ((Circle))
// - Function call: [[Subroutine]]
// - Variable: [/Parallelogram/]
// - Number: [Rectangle]
func GenerateMermaid(trees map[string]equiv.Node, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	w := &writer{sb: &sb}
	for _, name := range sortedKeys(trees) {
		w.subgraph(name, trees[name])
	}

	if overlay != nil && overlay.Residual != nil {
		w.subgraph("residual", overlay.Residual)
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef residual fill:#ffeb3b,stroke:#fbc02d,stroke-width:2px,color:#000;\n")
		sb.WriteString("    class residual residual;\n")
	}

	return sb.String()
}

type writer struct {
	sb *strings.Builder
	n  int
}

func (w *writer) subgraph(name string, root equiv.Node) {
	fmt.Fprintf(w.sb, "    subgraph %s[\"%s\"]\n", sanitizeMermaidID(name), name)
	w.node(root)
	w.sb.WriteString("    end\n")
}

// node writes n and its edges, returning its Mermaid ID.
func (w *writer) node(n equiv.Node) string {
	w.n++
	id := fmt.Sprintf("n%d", w.n)

	opener, closer, label := "[", "]", equiv.String(n)
	var children []equiv.Node

	switch v := n.(type) {
	case equiv.Var:
		opener, closer = "[/", "/]"
	case equiv.Call:
		opener, closer, label = "[[", "]]", v.Func
		children = []equiv.Node{v.Arg}
	case equiv.Neg:
		opener, closer, label = "((", "))", "neg"
		children = []equiv.Node{v.X}
	case equiv.Bin:
		opener, closer, label = "((", "))", string(v.Op)
		children = []equiv.Node{v.L, v.R}
	}

	// Escape double quotes in labels
	label = strings.ReplaceAll(label, "\"", "'")
	fmt.Fprintf(w.sb, "        %s%s\"%s\"%s\n", id, opener, label, closer)

	for i, c := range children {
		childID := w.node(c)
		arrow := "-->"
		if len(children) == 2 {
			arrow = fmt.Sprintf("-- %s -->", []string{"L", "R"}[i])
		}
		fmt.Fprintf(w.sb, "        %s %s %s\n", id, arrow, childID)
	}
	return id
}

func sortedKeys(m map[string]equiv.Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
