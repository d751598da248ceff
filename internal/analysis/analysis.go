// Package analysis asks a language model for the character names that
// appear in a card's text. Names feed the export filename.
package analysis

import (
	"context"
	"regexp"
	"strings"

	"github.com/starford/cardsmith/internal/models"
	"github.com/starford/cardsmith/internal/richtext"
)

// none is the reply that means "no names found".
const none = "无"

// NameExtractor returns the distinct names mentioned in a card. An empty
// result is valid; implementations never fail on a bad or missing reply.
type NameExtractor interface {
	Names(ctx context.Context, s models.CoverState) []string
}

// Noop is used when no analysis service is configured.
type Noop struct{}

// Names always returns an empty list.
func (Noop) Names(context.Context, models.CoverState) []string { return []string{} }

// Prompt builds the instruction sent to the model for text.
func Prompt(text string) string {
	return "请从以下文稿内容中提取出所有出现的人名、主角名或角色名。只返回名字，用逗号分隔。如果没有名字请返回“无”。文稿：" + text
}

// FullText is the plain text of both document fields.
func FullText(s models.CoverState) string {
	return strings.TrimSpace(richtext.TextOf(s.BodyText) + " " + richtext.TextOf(s.SecondaryBodyText))
}

var separators = regexp.MustCompile(`[,，]`)

// ParseNames splits a model reply into names. Blank entries and the
// "none" marker are dropped; first occurrence order is kept.
func ParseNames(reply string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, name := range separators.Split(reply, -1) {
		name = strings.TrimSpace(name)
		if name == "" || name == none {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
