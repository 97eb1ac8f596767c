package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Page geometry in PDF points (A4 at 72 dpi).
const (
	PageWidth   = 595
	PageHeight  = 842
	Margin      = 40
	LineSpacing = 14

	// Title is printed at the top of the first page.
	Title = "Image Solver — Report"

	// pages are rasterised at this multiple of 72 dpi
	oversample = 2
)

// Report is the content of a PDF export.
type Report struct {
	Image     []byte // PNG
	Timestamp time.Time
	Solution  string
}

type faces struct {
	title font.Face
	body  font.Face
}

func loadFaces() (faces, error) {
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return faces{}, fmt.Errorf("failed to parse font: %w", err)
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return faces{}, fmt.Errorf("failed to parse font: %w", err)
	}
	opts := func(size float64) *truetype.Options {
		return &truetype.Options{Size: size, DPI: 72 * oversample, Hinting: font.HintingFull}
	}
	return faces{
		title: truetype.NewFace(bold, opts(16)),
		body:  truetype.NewFace(regular, opts(11)),
	}, nil
}

// Pages lays the report out and returns one raster per A4 page.
func Pages(r Report) ([]image.Image, error) {
	ff, err := loadFaces()
	if err != nil {
		return nil, err
	}

	var board image.Image
	if len(r.Image) > 0 {
		board, err = png.Decode(bytes.NewReader(r.Image))
		if err != nil {
			return nil, fmt.Errorf("failed to decode board image: %w", err)
		}
	}

	contentW := float64(PageWidth - 2*Margin)
	bottom := float64(PageHeight - Margin)

	var pages []image.Image
	dc := newPage()

	// 1. Header
	y := float64(Margin)
	dc.SetFontFace(ff.title)
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(Title, px(Margin), px(y), 0, 1)
	y += 22

	dc.SetFontFace(ff.body)
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	dc.DrawStringAnchored(ts.Format("2006-01-02 15:04:05"), px(Margin), px(y), 0, 1)
	y += 20

	// 2. Board image at content width, 3:2
	if board != nil {
		imgH := contentW * 2 / 3
		sx := contentW / float64(board.Bounds().Dx())
		sy := imgH / float64(board.Bounds().Dy())
		dc.Push()
		dc.Translate(px(Margin), px(y))
		dc.Scale(px(sx), px(sy))
		dc.DrawImage(board, 0, 0)
		dc.Pop()
		y += imgH + 20
	}

	// 3. Solution text, wrapped, paginated
	for _, line := range wrap(dc, r.Solution, contentW) {
		if y+LineSpacing > bottom {
			pages = append(pages, dc.Image())
			dc = newPage()
			dc.SetFontFace(ff.body)
			dc.SetColor(color.Black)
			y = Margin
		}
		dc.DrawStringAnchored(line, px(Margin), px(y), 0, 1)
		y += LineSpacing
	}

	return append(pages, dc.Image()), nil
}

func newPage() *gg.Context {
	dc := gg.NewContext(PageWidth*oversample, PageHeight*oversample)
	dc.SetColor(color.White)
	dc.Clear()
	return dc
}

// px converts a layout position in points to raster pixels.
func px(v float64) float64 {
	return v * oversample
}

// wrap splits s on newlines and word-wraps every paragraph to width.
// Blank lines are preserved.
func wrap(dc *gg.Context, s string, width float64) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []string
	for _, para := range strings.Split(s, "\n") {
		if strings.TrimSpace(para) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, dc.WordWrap(para, px(width))...)
	}
	return out
}

// PDF writes the report as a multi-page A4 document to w.
func PDF(w io.Writer, r Report) error {
	pages, err := Pages(r)
	if err != nil {
		return err
	}

	readers := make([]io.Reader, 0, len(pages))
	for i, page := range pages {
		var buf bytes.Buffer
		if err := png.Encode(&buf, page); err != nil {
			return fmt.Errorf("failed to encode page %d: %w", i+1, err)
		}
		readers = append(readers, &buf)
	}

	imp, err := api.Import("form:A4, pos:full", types.POINTS)
	if err != nil {
		return fmt.Errorf("pdf import config: %w", err)
	}
	if err := api.ImportImages(nil, w, readers, imp, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("pdf assembly failed: %w", err)
	}
	return nil
}
