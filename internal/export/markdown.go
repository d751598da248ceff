package export

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"

	"github.com/starford/cardsmith/internal/models"
	"github.com/starford/cardsmith/internal/richtext"
)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// Markdown renders the text of a card as a Markdown document. Bold and
// italic inline styles become emphasis; other styling is dropped.
func Markdown(s models.CoverState) string {
	var parts []string
	if t := strings.TrimSpace(s.Title); t != "" {
		parts = append(parts, "# "+t)
	}
	if st := strings.TrimSpace(s.Subtitle); st != "" {
		parts = append(parts, "_"+st+"_")
	}
	if body := documentMarkdown(s.BodyText); body != "" {
		parts = append(parts, body)
	}
	if sec := documentMarkdown(s.SecondaryBodyText); sec != "" {
		parts = append(parts, "---", sec)
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func documentMarkdown(doc string) string {
	if strings.TrimSpace(doc) == "" {
		return ""
	}
	prepared := emphasize(doc)
	md, err := mdConverter.ConvertString(prepared)
	if err != nil || strings.TrimSpace(md) == "" {
		// Fall back to the plain text, one unit per paragraph.
		var lines []string
		for _, u := range richtext.Parse(doc).Units {
			if t := strings.TrimSpace(u.PlainText); t != "" {
				lines = append(lines, t)
			}
		}
		return strings.Join(lines, "\n\n")
	}
	return strings.TrimSpace(md)
}

// emphasize wraps the content of bold and italic styled elements in strong
// and em so the converter can see them.
func emphasize(doc string) string {
	root := richtext.Fragment(doc)
	root.Find("[style]").Each(func(_ int, el *goquery.Selection) {
		raw, _ := el.Attr("style")
		f := richtext.ParseStyle(raw).Formatting()
		if f.IsItalic {
			el.WrapInnerHtml("<em></em>")
		}
		if f.IsBold {
			el.WrapInnerHtml("<strong></strong>")
		}
	})
	return richtext.Render(root)
}
