package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMarkdown_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, "**Answer**: $x = 2$"))
	assert.Equal(t, "**Answer**: $x = 2$\n", buf.String())
}

func TestNewRenderer(t *testing.T) {
	out, err := NewRenderer(60)("# Title\n\nSome *text*.")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "text")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0")
	assert.True(t, strings.Contains(buf.String(), "v0.1.0"))
}

func TestStatus(t *testing.T) {
	for _, kind := range []string{"equivalent", "different", "error"} {
		assert.Contains(t, Status(kind, "line"), "line")
	}
}
