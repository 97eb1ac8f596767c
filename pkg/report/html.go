package report

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// mathSpan matches $$…$$, \[…\], \(…\) and $…$ segments.
var mathSpan = regexp.MustCompile(`(?s)\$\$.+?\$\$|\\\[.+?\\\]|\\\(.+?\\\)|\$[^$\n]+?\$`)

const placeholder = "LOUSAMATH%dX"

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	policy   = bluemonday.UGCPolicy()
)

// HTML renders a Markdown solution to sanitised HTML.
func HTML(source string) (string, error) {
	// 1. Shield math from Markdown emphasis and escapes
	var spans []string
	shielded := mathSpan.ReplaceAllStringFunc(source, func(m string) string {
		spans = append(spans, m)
		return fmt.Sprintf(placeholder, len(spans)-1)
	})

	// 2. Render and sanitise
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(shielded), &buf); err != nil {
		return "", fmt.Errorf("markdown render failed: %w", err)
	}
	out := policy.Sanitize(buf.String())

	// 3. Restore math as escaped text
	for i := len(spans) - 1; i >= 0; i-- {
		out = strings.ReplaceAll(out, "LOUSAMATH"+strconv.Itoa(i)+"X", html.EscapeString(spans[i]))
	}
	return out, nil
}
