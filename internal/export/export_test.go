package export

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/starford/cardsmith/internal/apperr"
	"github.com/starford/cardsmith/internal/models"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		mode, title string
		names       []string
		want        string
	}{
		{models.ModeCover, "江湖", []string{"张三", "李四"}, "封面-江湖-张三,李四.png"},
		{models.ModeLongText, "", nil, "长文-未命名-无.png"},
		{"", "  ", []string{}, "封面-未命名-无.png"},
		{models.ModeCover, "a/b", nil, "封面-a_b-无.png"},
	}
	for _, tt := range tests {
		if got := Filename(tt.mode, tt.title, tt.names); got != tt.want {
			t.Errorf("Filename(%q, %q, %v) = %q, want %q", tt.mode, tt.title, tt.names, got, tt.want)
		}
	}
}

func TestJobFor(t *testing.T) {
	s := models.NewCoverState()
	s.Title = "Title"
	s.BodyText = `<div style="text-align:center">one</div><div>two</div>`
	job := JobFor(s, Settings{Width: 300, Height: 400, Background: "#000000"})

	if job.Background != s.BackgroundColor {
		t.Errorf("background = %q", job.Background)
	}
	if job.Grow {
		t.Error("cover cards must not grow")
	}
	var texts []string
	for _, l := range job.Lines {
		texts = append(texts, l.Text)
	}
	if strings.Join(texts, "|") != "Title||one|two" {
		t.Errorf("lines = %q", texts)
	}
	if job.Lines[2].Align != "center" || job.Lines[3].Align != "" {
		t.Errorf("aligns = %q, %q", job.Lines[2].Align, job.Lines[3].Align)
	}
}

func TestPNGRasterizer_Render(t *testing.T) {
	job := Job{
		Width: 120, Height: 80, PixelRatio: 2,
		Background: "#f5f0e8", Foreground: "#2c2c2c",
		Lines: []Line{{Text: "Hello", Heading: true, Align: "center"}, {Text: strings.Repeat("wrap me ", 10)}},
	}
	data, err := PNGRasterizer{}.Render(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 240 || b.Dy() != 160 {
		t.Errorf("bounds = %v", b)
	}
}

func TestPNGRasterizer_Grow(t *testing.T) {
	var lines []Line
	for i := 0; i < 40; i++ {
		lines = append(lines, Line{Text: "line"})
	}
	data, err := PNGRasterizer{}.Render(context.Background(), Job{Width: 100, Height: 100, Grow: true, Lines: lines})
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dy() <= 100 {
		t.Errorf("height = %d, want grown canvas", img.Bounds().Dy())
	}
}

func TestPNGRasterizer_Errors(t *testing.T) {
	if _, err := (PNGRasterizer{}).Render(context.Background(), Job{}); err == nil {
		t.Error("expected error for empty canvas")
	}
	if _, err := (PNGRasterizer{}).Render(context.Background(), Job{Width: 10, Height: 10, FontData: []byte("nope")}); err == nil {
		t.Error("expected error for bad font")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (PNGRasterizer{}).Render(ctx, Job{Width: 100, Height: 100, Lines: []Line{{Text: "x"}}}); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled err = %v", err)
	}
}

type blockingRasterizer struct {
	started chan struct{}
	release chan struct{}
}

func (b blockingRasterizer) Render(ctx context.Context, _ Job) ([]byte, error) {
	close(b.started)
	<-b.release
	return []byte("png"), nil
}

func TestExporter_RejectsConcurrentExport(t *testing.T) {
	br := blockingRasterizer{started: make(chan struct{}), release: make(chan struct{})}
	e := NewExporter(br, Settings{})
	card := models.Card{State: models.CoverState{Title: "T", Mode: models.ModeCover}}

	done := make(chan error, 1)
	go func() {
		_, _, err := e.Image(context.Background(), card, nil)
		done <- err
	}()

	select {
	case <-br.started:
	case <-time.After(time.Second):
		t.Fatal("first export did not start")
	}
	if _, _, err := e.Image(context.Background(), card, nil); !errors.Is(err, apperr.ErrBusy) {
		t.Errorf("concurrent export err = %v, want ErrBusy", err)
	}
	close(br.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestExporter_Image(t *testing.T) {
	e := NewExporter(nil, Settings{Width: 60, Height: 40})
	card := models.Card{State: models.CoverState{Title: "江湖", Mode: models.ModeLongText, BodyText: "<div>x</div>"}}
	name, data, err := e.Image(context.Background(), card, []string{"张三"})
	if err != nil {
		t.Fatal(err)
	}
	if name != "长文-江湖-张三.png" {
		t.Errorf("name = %q", name)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("not a PNG")
	}
}

func TestMarkdown(t *testing.T) {
	s := models.CoverState{
		Title:             "Title",
		BodyText:          `<div>Hello <span style="font-weight:bold">World</span></div><div>Next</div>`,
		SecondaryBodyText: "<div>After</div>",
	}
	md := Markdown(s)
	for _, want := range []string{"# Title", "**World**", "Next", "---", "After"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "<span") {
		t.Errorf("markup leaked:\n%s", md)
	}
}
