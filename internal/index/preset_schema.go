package index

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/starford/cardsmith/internal/apperr"
)

//go:embed preset.schema.json
var presetSchemaJSON []byte

var presetSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(presetSchemaJSON))
})

// ValidatePreset checks a serialized preset against the embedded schema.
// Violations are reported as apperr.ErrInvalidInput.
func ValidatePreset(payload []byte) error {
	schema, err := presetSchema()
	if err != nil {
		return fmt.Errorf("index: load preset schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("preset: %v: %w", err, apperr.ErrInvalidInput)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("preset: %s: %w", strings.Join(msgs, "; "), apperr.ErrInvalidInput)
}
