package richtext

import (
	"testing"

	"github.com/starford/cardsmith/internal/models"
)

func TestParseStyle_SetAndString(t *testing.T) {
	st := ParseStyle("color: red; Font-Size: 12px")
	if v, _ := st.Get("font-size"); v != "12px" {
		t.Errorf("font-size = %q", v)
	}
	st.Set("color", "#000")
	st.Set("text-align", "center")
	if got := st.String(); got != "color:#000;font-size:12px;text-align:center" {
		t.Errorf("String = %q", got)
	}
	st.Delete("color")
	if _, ok := st.Get("color"); ok {
		t.Error("color should be deleted")
	}
}

func TestParseStyle_KeepsUnterminatedDeclaration(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"color:#c0392b", "color:#c0392b"},
		{"color:#c0392b;font-weight:700", "color:#c0392b;font-weight:700"},
		{"color:#c0392b;font-weight:700;", "color:#c0392b;font-weight:700"},
		{"  font-size: 16px  ", "font-size:16px"},
	}
	for _, tt := range tests {
		if got := ParseStyle(tt.in).String(); got != tt.want {
			t.Errorf("ParseStyle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStyle_Formatting(t *testing.T) {
	tests := []struct {
		style string
		want  models.FormattingStyles
	}{
		{"color:#c0392b;font-weight:700", models.FormattingStyles{Color: "#c0392b", IsBold: true}},
		{"font-weight:bold;font-style:italic", models.FormattingStyles{IsBold: true, IsItalic: true}},
		{"font-weight:400;font-size:18px", models.FormattingStyles{FontSize: 18}},
		{"text-align:center", models.FormattingStyles{TextAlign: "center"}},
		{"text-align:justify", models.FormattingStyles{}},
	}
	for _, tt := range tests {
		if got := ParseStyle(tt.style).Formatting(); got != tt.want {
			t.Errorf("Formatting(%q) = %+v, want %+v", tt.style, got, tt.want)
		}
	}
}

func TestDeclarations(t *testing.T) {
	f := models.FormattingStyles{Color: "red", FontSize: 16, IsBold: true}
	if got := Declarations(f).String(); got != "color:red;font-size:16px;font-weight:bold" {
		t.Errorf("Declarations = %q", got)
	}
	if Declarations(models.FormattingStyles{}).Len() != 0 {
		t.Error("zero formatting should produce no declarations")
	}
}

func TestSetBlockStyle(t *testing.T) {
	var patch Style
	patch.Set("text-align", "center")

	got := SetBlockStyle("<div>Hello world</div>", patch)
	if got != `<div style="text-align:center">Hello world</div>` {
		t.Errorf("SetBlockStyle = %q", got)
	}
	again := SetBlockStyle(got, patch)
	if again != got {
		t.Errorf("second application changed markup: %q", again)
	}
	merged := SetBlockStyle(`<p style="color: red">x</p>`, patch)
	if merged != `<p style="color:red;text-align:center">x</p>` {
		t.Errorf("merged = %q", merged)
	}
	if out := SetBlockStyle("bare", patch); out != "bare" {
		t.Errorf("text without element = %q", out)
	}
}
