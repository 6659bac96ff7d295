package structured

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

var (
	compiledSchema *jsonschema.Schema
	schemaErr      error
	schemaOnce     sync.Once
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("structured_data.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("structured_data.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// Validate checks backend structured data against the known entity shapes.
// It returns one message per violation; an empty result means the data conforms.
func Validate(data map[string]any) []string {
	schema, err := loadSchema()
	if err != nil {
		return []string{err.Error()}
	}
	if err := schema.Validate(data); err != nil {
		verr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return []string{err.Error()}
		}
		return flatten(verr)
	}
	return nil
}

// flatten collects the leaf causes of a validation error
func flatten(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		return []string{fmt.Sprintf("%s: %s", verr.InstanceLocation, verr.Message)}
	}
	var out []string
	for _, c := range verr.Causes {
		out = append(out, flatten(c)...)
	}
	return out
}
