package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Line is one paragraph of text to draw.
type Line struct {
	Text    string
	Heading bool
	Align   string
}

// Job describes a single card render.
type Job struct {
	Width      int
	Height     int
	PixelRatio float64
	// Grow extends the canvas downwards when the text does not fit.
	Grow       bool
	Background string
	Foreground string
	Accent     string
	FontData   []byte
	FontSize   float64
	Lines      []Line
}

// Rasterizer turns a Job into an encoded image.
type Rasterizer interface {
	Render(ctx context.Context, job Job) ([]byte, error)
}

// PNGRasterizer draws text onto an RGBA canvas and encodes it as PNG.
type PNGRasterizer struct{}

const margin = 32

// Render draws job at its logical size and scales the result by the pixel
// ratio.
func (PNGRasterizer) Render(ctx context.Context, job Job) ([]byte, error) {
	if job.Width <= 0 || job.Height <= 0 {
		return nil, fmt.Errorf("export: invalid canvas %dx%d", job.Width, job.Height)
	}
	face, err := faceFor(job)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	lineHeight := face.Metrics().Height.Ceil() + 4
	wrapped := layout(face, job.Lines, job.Width-2*margin)
	height := job.Height
	if need := 2*margin + len(wrapped)*lineHeight; job.Grow && need > height {
		height = need
	}

	canvas := image.NewRGBA(image.Rect(0, 0, job.Width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(parseColor(job.Background, color.White)), image.Point{}, draw.Src)

	fg := image.NewUniform(parseColor(job.Foreground, color.Black))
	accent := image.NewUniform(parseColor(job.Accent, color.Black))
	y := margin + face.Metrics().Ascent.Ceil()
	for _, wl := range wrapped {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if y > height-margin/2 {
			break
		}
		src := fg
		if wl.heading {
			src = accent
		}
		d := font.Drawer{Dst: canvas, Src: src, Face: face}
		w := d.MeasureString(wl.text).Ceil()
		x := margin
		switch wl.align {
		case "center":
			x = (job.Width - w) / 2
		case "right":
			x = job.Width - margin - w
		}
		d.Dot = fixed.P(x, y)
		d.DrawString(wl.text)
		y += lineHeight
	}

	var out image.Image = canvas
	if r := job.PixelRatio; r > 0 && r != 1 {
		scaled := image.NewRGBA(image.Rect(0, 0, int(float64(job.Width)*r), int(float64(height)*r)))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
		out = scaled
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("export: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func faceFor(job Job) (font.Face, error) {
	if len(job.FontData) == 0 {
		return basicfont.Face7x13, nil
	}
	f, err := opentype.Parse(job.FontData)
	if err != nil {
		return nil, fmt.Errorf("export: parse font: %w", err)
	}
	size := job.FontSize
	if size <= 0 {
		size = 16
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("export: font face: %w", err)
	}
	return face, nil
}

type wrappedLine struct {
	text    string
	heading bool
	align   string
}

// layout breaks every line to fit width. Breaks fall between runes, so CJK
// text without spaces wraps as well.
func layout(face font.Face, lines []Line, width int) []wrappedLine {
	var out []wrappedLine
	for _, l := range lines {
		text := strings.TrimSpace(l.Text)
		if text == "" {
			out = append(out, wrappedLine{})
			continue
		}
		for _, para := range strings.Split(text, "\n") {
			var cur []rune
			for _, r := range para {
				next := append(cur, r)
				if len(cur) > 0 && font.MeasureString(face, string(next)).Ceil() > width {
					out = append(out, wrappedLine{text: string(cur), heading: l.Heading, align: l.Align})
					cur = []rune{r}
					continue
				}
				cur = next
			}
			out = append(out, wrappedLine{text: string(cur), heading: l.Heading, align: l.Align})
		}
	}
	return out
}

// parseColor accepts #rgb and #rrggbb. Anything else yields fallback.
func parseColor(s string, fallback color.Color) color.Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
