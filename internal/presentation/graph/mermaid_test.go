package graph

import (
	"strings"
	"testing"

	"github.com/aretw0/lousa/pkg/equiv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMermaid(t *testing.T) {
	lhs, err := equiv.Parse("sin(x)^2")
	require.NoError(t, err)
	rhs, err := equiv.Parse("2")
	require.NoError(t, err)

	out := GenerateMermaid(map[string]equiv.Node{"rhs": rhs, "lhs": lhs}, nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Less(t, strings.Index(out, "subgraph lhs"), strings.Index(out, "subgraph rhs"))
	assert.Contains(t, out, `n1(("^"))`)
	assert.Contains(t, out, `n2[["sin"]]`)
	assert.Contains(t, out, `n3[/"x"/]`)
	assert.Contains(t, out, `n4["2"]`)
	assert.Contains(t, out, "n1 -- L --> n2")
	assert.Contains(t, out, "n2 --> n3")
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Residual(t *testing.T) {
	x, err := equiv.Parse("x")
	require.NoError(t, err)

	out := GenerateMermaid(map[string]equiv.Node{"lhs": x}, &Overlay{Residual: equiv.Int(-1)})
	assert.Contains(t, out, `subgraph residual["residual"]`)
	assert.Contains(t, out, `["-1"]`)
	assert.Contains(t, out, "class residual residual;")
}
