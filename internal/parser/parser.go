// Package parser decodes card records and imports Markdown manuscripts with
// YAML frontmatter into card state.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/cardsmith/internal/checksum"
	"github.com/starford/cardsmith/internal/models"
	"github.com/starford/cardsmith/internal/richtext"
)

// Result holds the output of parsing a card record.
type Result struct {
	Card  models.Card
	Title string
	// Text is the plain text of every text field, used for search.
	Text string
}

// Parse decodes a stored card record. Missing presentation fields are
// filled with defaults and the checksum is computed over data.
func Parse(data []byte) (*Result, error) {
	var c models.Card
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parser: decode card: %w", err)
	}
	c.State.FillDefaults()
	c.Checksum = checksum.Sum(data)
	return &Result{
		Card:  c,
		Title: c.State.Title,
		Text:  searchText(c.State),
	}, nil
}

func searchText(s models.CoverState) string {
	parts := []string{s.Subtitle, richtext.TextOf(s.BodyText), richtext.TextOf(s.SecondaryBodyText)}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// Frontmatter is the recognised header of a Markdown manuscript.
type Frontmatter struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Author   string `yaml:"author"`
	Category string `yaml:"category"`
	Mode     string `yaml:"mode"`
}

// FromMarkdown builds card state from a manuscript. Every non-blank line of
// the body becomes one paragraph div. A "---" line on its own splits the
// body from the secondary body. Without a frontmatter title the first H1
// heading is used.
func FromMarkdown(data []byte) models.CoverState {
	fm, body := splitFrontmatter(data)
	s := models.NewCoverState()
	s.Subtitle = fm.Subtitle
	s.Author = fm.Author
	if fm.Category != "" {
		s.Category = fm.Category
	}
	if fm.Mode == models.ModeLongText {
		s.Mode = models.ModeLongText
	}

	title, body := takeTitle(fm.Title, body)
	s.Title = title

	main, secondary, _ := strings.Cut(body, "\n---\n")
	s.BodyText = paragraphs(main)
	s.SecondaryBodyText = paragraphs(secondary)
	return s
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the body. Without valid frontmatter the entire content is body.
func splitFrontmatter(data []byte) (Frontmatter, string) {
	const delim = "---"
	var fm Frontmatter
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return fm, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return Frontmatter{}, string(data)
	}
	return fm, body
}

// takeTitle returns the frontmatter title when set, otherwise the first H1
// heading, which is then removed from the body.
func takeTitle(fmTitle, body string) (string, string) {
	if fmTitle != "" {
		return fmTitle, body
	}
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			rest := append(lines[:i:i], lines[i+1:]...)
			return strings.TrimSpace(trimmed[2:]), strings.Join(rest, "\n")
		}
	}
	return "", body
}

func paragraphs(text string) string {
	var sb strings.Builder
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sb.WriteString("<div>")
		sb.WriteString(html.EscapeString(line))
		sb.WriteString("</div>")
	}
	return sb.String()
}
