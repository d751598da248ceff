package transform

import (
	"strings"
	"testing"

	"github.com/starford/cardsmith/internal/match"
	"github.com/starford/cardsmith/internal/models"
	"github.com/starford/cardsmith/internal/richtext"
)

const twoUnits = "<div>Hello world</div><div>Goodbye</div>"

func TestApplyAlignment_SelectedOnly(t *testing.T) {
	out := ApplyAlignment(twoUnits, []int{0}, AlignCenter)
	want := `<div style="text-align:center">Hello world</div><div>Goodbye</div>`
	if out != want {
		t.Errorf("out = %q, want %q", out, want)
	}
}

func TestApplyAlignment_Idempotent(t *testing.T) {
	once := ApplyAlignment(twoUnits, []int{0, 1}, AlignRight)
	twice := ApplyAlignment(once, []int{0, 1}, AlignRight)
	if once != twice {
		t.Errorf("not idempotent:\n%q\n%q", once, twice)
	}
	a, b := richtext.Parse(once), richtext.Parse(twice)
	for i := range a.Units {
		if a.Units[i].PlainText != b.Units[i].PlainText {
			t.Errorf("unit %d text changed", i)
		}
	}
}

func TestApplyAlignment_PromotesFallbackUnit(t *testing.T) {
	out := ApplyAlignment("just text", []int{0}, AlignCenter)
	if out != `<div style="text-align:center">just text</div>` {
		t.Errorf("out = %q", out)
	}
	if got := richtext.Parse(out).Units[0].PlainText; got != "just text" {
		t.Errorf("text after promotion = %q", got)
	}
}

func TestApplyAlignment_KeepsExistingStyle(t *testing.T) {
	out := ApplyAlignment(`<div style="color:#c0392b">Hello</div>`, []int{0}, AlignCenter)
	want := `<div style="color:#c0392b;text-align:center">Hello</div>`
	if out != want {
		t.Errorf("out = %q, want %q", out, want)
	}
}

func TestApplyAlignment_InvalidInputs(t *testing.T) {
	if out := ApplyAlignment(twoUnits, []int{0}, "diagonal"); out != twoUnits {
		t.Errorf("invalid alignment changed document: %q", out)
	}
	out := ApplyAlignment(twoUnits, []int{-1, 9, 1}, AlignLeft)
	if !strings.HasPrefix(out, "<div>Hello world</div>") || !strings.Contains(out, `text-align:left">Goodbye`) {
		t.Errorf("out-of-range indices should be skipped: %q", out)
	}
}

func TestIsolation_UnselectedUnitsByteIdentical(t *testing.T) {
	src := "<p style=\"color: red\">keep &amp; me</p>\n<div>alpha beta</div>\n<div>alpha</div>"
	before := richtext.Parse(src)
	outs := []string{
		ApplyAlignment(src, []int{1}, AlignCenter),
		ApplyMatchStyle(src, []int{1}, match.Query{Text: "alpha"}, models.FormattingStyles{Color: "blue"}),
		ApplyParagraphStyle(src, []int{1}, models.FormattingStyles{FontSize: 20}),
		ApplyThreeColumnRow(src, 1, "a", "b", "c"),
	}
	for _, out := range outs {
		after := richtext.Parse(out)
		if after.Len() != before.Len() {
			t.Fatalf("unit count changed: %q", out)
		}
		for _, i := range []int{0, 2} {
			if after.Units[i].Markup != before.Units[i].Markup {
				t.Errorf("unit %d changed in %q", i, out)
			}
		}
	}
}

func TestApplyMatchStyle_WrapsEveryOccurrence(t *testing.T) {
	src := `<div>Zhang met zhang</div>`
	out := ApplyMatchStyle(src, []int{0}, match.Query{Text: "zhang"}, models.FormattingStyles{Color: "#c0392b", FontSize: 16})
	want := `<div><span style="color:#c0392b;font-size:16px">Zhang</span> met <span style="color:#c0392b;font-size:16px">zhang</span></div>`
	if out != want {
		t.Errorf("out = %q\nwant %q", out, want)
	}
}

func TestApplyMatchStyle_SkipsTagSyntax(t *testing.T) {
	src := `<div class="color" style="color:red">color <span title="color">x</span></div>`
	out := ApplyMatchStyle(src, []int{0}, match.Query{Text: "color"}, models.FormattingStyles{Color: "blue"})
	want := `<div class="color" style="color:red"><span style="color:blue">color</span> <span title="color">x</span></div>`
	if out != want {
		t.Errorf("out = %q\nwant %q", out, want)
	}
}

func TestApplyMatchStyle_NestsOnRepeat(t *testing.T) {
	f := models.FormattingStyles{Color: "red"}
	q := match.Query{Text: "hi"}
	once := ApplyMatchStyle("<div>hi</div>", []int{0}, q, f)
	twice := ApplyMatchStyle(once, []int{0}, q, f)
	if strings.Count(twice, "<span") != 2 {
		t.Errorf("expected nested spans, got %q", twice)
	}
	if richtext.Parse(twice).Units[0].PlainText != "hi" {
		t.Error("text changed by nesting")
	}
}

func TestApplyMatchStyle_RegexAndEscaping(t *testing.T) {
	src := "<div>a &lt;b&gt; 123 c</div>"
	out := ApplyMatchStyle(src, []int{0}, match.Query{Text: `\d+`, Mode: match.Regex}, models.FormattingStyles{IsBold: true})
	want := `<div>a &lt;b&gt; <span style="font-weight:bold">123</span> c</div>`
	if out != want {
		t.Errorf("out = %q\nwant %q", out, want)
	}
	if got := ApplyMatchStyle(src, []int{0}, match.Query{Text: "(", Mode: match.Regex}, models.FormattingStyles{IsBold: true}); got != src {
		t.Errorf("invalid regex changed document: %q", got)
	}
	if got := ApplyMatchStyle(src, []int{0}, match.Query{Text: "a*", Mode: match.Regex}, models.FormattingStyles{IsBold: true}); strings.Count(got, "<span") != 1 {
		t.Errorf("zero-length matches must be skipped: %q", got)
	}
}

func TestApplyMatchStyle_AcrossInlineMarkup(t *testing.T) {
	red := models.FormattingStyles{Color: "red"}
	tests := []struct {
		name string
		src  string
		q    match.Query
		want string
	}{
		{
			name: "literal",
			src:  `<div>Zhang <b>San</b> said</div>`,
			q:    match.Query{Text: "Zhang San"},
			want: `<div><span style="color:red">Zhang </span><b><span style="color:red">San</span></b> said</div>`,
		},
		{
			name: "range",
			src:  `<div>开始 <span style="color:blue">中间</span> 结束</div>`,
			q:    match.Range("开始", "结束"),
			want: `<div><span style="color:red">开始 </span><span style="color:blue"><span style="color:red">中间</span></span><span style="color:red"> 结束</span></div>`,
		},
		{
			name: "already wrapped",
			src:  `<div><span style="color:blue">Zhang</span> San</div>`,
			q:    match.Query{Text: "Zhang San"},
			want: `<div><span style="color:blue"><span style="color:red">Zhang</span></span><span style="color:red"> San</span></div>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := match.Find(richtext.Parse(tt.src).Units, tt.q)
			if len(found.Indices) != 1 {
				t.Fatalf("find = %v", found.Indices)
			}
			out := ApplyMatchStyle(tt.src, found.Indices, tt.q, red)
			if out != tt.want {
				t.Errorf("out = %q\nwant %q", out, tt.want)
			}
			if richtext.Parse(out).Units[0].PlainText != richtext.Parse(tt.src).Units[0].PlainText {
				t.Error("plain text changed")
			}
		})
	}
}

func TestApplyMatchStyle_AnchorsToUnitStart(t *testing.T) {
	src := `<div>◎ a <b>◎ b</b></div>`
	out := ApplyMatchStyle(src, []int{0}, match.Query{Text: "^◎", Mode: match.Regex}, models.FormattingStyles{Color: "red"})
	want := `<div><span style="color:red">◎</span> a <b>◎ b</b></div>`
	if out != want {
		t.Errorf("out = %q\nwant %q", out, want)
	}
}

func TestApplyThreeColumnRow(t *testing.T) {
	out := ApplyThreeColumnRow(twoUnits, 1, "By A", "", "2024 <x>")
	want := `<div>Hello world</div>` +
		`<div style="display:flex;width:100%">` +
		`<div style="flex:1;text-align:left">By A</div>` +
		`<div style="flex:1;text-align:center">&nbsp;</div>` +
		`<div style="flex:1;text-align:right">2024 &lt;x&gt;</div></div>`
	if out != want {
		t.Errorf("out = %q\nwant %q", out, want)
	}
	if got := ApplyThreeColumnRow(twoUnits, 5, "a", "b", "c"); got != twoUnits {
		t.Errorf("out-of-range target changed document: %q", got)
	}
}

func TestWrapRange(t *testing.T) {
	src := "<div>ab<b>cd</b>ef</div><div>x</div>"
	out := WrapRange(src, 0, 1, 5, models.FormattingStyles{Color: "red"})
	want := `<div>a<span style="color:red">b</span><b><span style="color:red">cd</span></b><span style="color:red">e</span>f</div><div>x</div>`
	if out != want {
		t.Errorf("out = %q\nwant %q", out, want)
	}
	for _, r := range [][2]int{{-1, 2}, {3, 3}, {4, 2}, {0, 99}} {
		if got := WrapRange(src, 0, r[0], r[1], models.FormattingStyles{Color: "red"}); got != src {
			t.Errorf("range %v should be a no-op: %q", r, got)
		}
	}
	if got := WrapRange(src, 7, 0, 1, models.FormattingStyles{Color: "red"}); got != src {
		t.Errorf("unknown unit changed document: %q", got)
	}
}

func TestApplyParagraphStyle(t *testing.T) {
	out := ApplyParagraphStyle(twoUnits, []int{1}, models.FormattingStyles{Color: "#c0392b", IsBold: true})
	want := `<div>Hello world</div><div style="color:#c0392b;font-weight:bold">Goodbye</div>`
	if out != want {
		t.Errorf("out = %q", out)
	}
	if got := ApplyParagraphStyle(twoUnits, []int{1}, models.FormattingStyles{}); got != twoUnits {
		t.Errorf("empty formatting changed document: %q", got)
	}
}

func TestParseAlignment(t *testing.T) {
	if a, ok := ParseAlignment(" Center "); !ok || a != AlignCenter {
		t.Errorf("ParseAlignment = %q, %v", a, ok)
	}
	if _, ok := ParseAlignment("middle"); ok {
		t.Error("middle should be rejected")
	}
}
