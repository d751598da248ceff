// Package export renders cards to PNG images and Markdown text.
package export

import (
	"context"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/starford/cardsmith/internal/apperr"
	"github.com/starford/cardsmith/internal/models"
	"github.com/starford/cardsmith/internal/richtext"
)

// Filename builds the download name of an exported card image:
// {封面|长文}-{title|未命名}-{names|无}.png.
func Filename(mode, title string, names []string) string {
	prefix := "封面"
	if mode == models.ModeLongText {
		prefix = "长文"
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "未命名"
	}
	suffix := "无"
	if len(names) > 0 {
		suffix = strings.Join(names, ",")
	}
	return prefix + "-" + sanitizeName(title) + "-" + sanitizeName(suffix) + ".png"
}

var unsafeName = strings.NewReplacer("/", "_", `\`, "_", "\n", " ", "\r", " ", `"`, "'")

func sanitizeName(s string) string {
	return unsafeName.Replace(s)
}

// Settings are the canvas defaults taken from configuration.
type Settings struct {
	Width      int
	Height     int
	PixelRatio float64
	Background string
	FontData   []byte
}

// JobFor lays out a card for rendering. The card's own background wins
// over the configured one.
func JobFor(s models.CoverState, cfg Settings) Job {
	bg := s.BackgroundColor
	if bg == "" {
		bg = cfg.Background
	}
	job := Job{
		Width:      cfg.Width,
		Height:     cfg.Height,
		PixelRatio: cfg.PixelRatio,
		Grow:       s.Mode == models.ModeLongText,
		Background: bg,
		Foreground: s.TextColor,
		Accent:     s.AccentColor,
		FontData:   cfg.FontData,
		FontSize:   16,
	}
	if t := strings.TrimSpace(s.Title); t != "" {
		job.Lines = append(job.Lines, Line{Text: t, Heading: true, Align: "center"})
	}
	if st := strings.TrimSpace(s.Subtitle); st != "" {
		job.Lines = append(job.Lines, Line{Text: st, Align: "center"})
	}
	for _, doc := range []string{s.BodyText, s.SecondaryBodyText} {
		if strings.TrimSpace(doc) == "" {
			continue
		}
		job.Lines = append(job.Lines, Line{})
		for _, u := range richtext.Parse(doc).Units {
			job.Lines = append(job.Lines, Line{Text: u.PlainText, Align: unitAlign(u)})
		}
	}
	if a := strings.TrimSpace(s.Author); a != "" {
		job.Lines = append(job.Lines, Line{}, Line{Text: a, Align: "right"})
	}
	return job
}

func unitAlign(u richtext.Unit) string {
	if u.Synthetic {
		return ""
	}
	root := richtext.Fragment(u.Markup).Children().First()
	raw, _ := root.Attr("style")
	v, _ := richtext.ParseStyle(raw).Get("text-align")
	return strings.ToLower(v)
}

// Gate admits one export at a time.
type Gate struct {
	sem *semaphore.Weighted
}

// NewGate creates an open gate.
func NewGate() *Gate {
	return &Gate{sem: semaphore.NewWeighted(1)}
}

// Do runs fn unless another export holds the gate, in which case it returns
// apperr.ErrBusy without waiting.
func (g *Gate) Do(fn func() error) error {
	if !g.sem.TryAcquire(1) {
		return apperr.ErrBusy
	}
	defer g.sem.Release(1)
	return fn()
}

// Exporter renders cards through a Rasterizer, one at a time.
type Exporter struct {
	r    Rasterizer
	gate *Gate
	cfg  Settings
}

// NewExporter creates an exporter. A nil rasterizer selects PNGRasterizer.
func NewExporter(r Rasterizer, cfg Settings) *Exporter {
	if r == nil {
		r = PNGRasterizer{}
	}
	if cfg.Width <= 0 {
		cfg.Width = 600
	}
	if cfg.Height <= 0 {
		cfg.Height = 800
	}
	if cfg.PixelRatio <= 0 {
		cfg.PixelRatio = 1
	}
	return &Exporter{r: r, gate: NewGate(), cfg: cfg}
}

// Image renders a card and returns its filename and PNG bytes.
func (e *Exporter) Image(ctx context.Context, c models.Card, names []string) (string, []byte, error) {
	var data []byte
	err := e.gate.Do(func() error {
		var err error
		data, err = e.r.Render(ctx, JobFor(c.State, e.cfg))
		return err
	})
	if err != nil {
		return "", nil, err
	}
	return Filename(c.State.Mode, c.State.Title, names), data, nil
}
