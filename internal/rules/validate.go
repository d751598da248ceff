package rules

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/cardsmith/internal/models"
)

var cssColor = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+|rgba?\([0-9.,\s%]+\))$`)

// Validate checks a rule before it is persisted.
func Validate(r models.TransformationRule) error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&r.Scope, validation.Required, validation.In(models.ScopeMatch, models.ScopeParagraph)),
	); err != nil {
		return err
	}
	f := r.Formatting
	if err := validation.ValidateStruct(&f,
		validation.Field(&f.Color, validation.Match(cssColor)),
		validation.Field(&f.FontSize, validation.Min(0), validation.Max(200)),
		validation.Field(&f.TextAlign, validation.In("left", "center", "right", "justify")),
	); err != nil {
		return fmt.Errorf("formatting: %w", err)
	}
	if r.IsRegex {
		if _, ok := Query(r).Compile(); !ok && r.Pattern != "" {
			return fmt.Errorf("pattern: invalid regular expression %q", r.Pattern)
		}
	}
	return nil
}

// ValidateAll validates every rule, reporting the first failure by position.
func ValidateAll(list []models.TransformationRule) error {
	for i, r := range list {
		if err := Validate(r); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}
