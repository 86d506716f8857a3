package persistence

import (
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	schemaOnce     sync.Once
	resolvedSchema *jsonschema.Resolved
	schemaErr      error
)

func intPtr(n int) *int { return &n }

// recordSchema describes the accepted record layout. "nodes" and "edges" are
// required, "colors" is optional, and no other top-level field is allowed.
// Subschemas must form a tree, so every property gets its own copy.
func recordSchema() *jsonschema.Schema {
	pair := func() *jsonschema.Schema {
		return &jsonschema.Schema{
			Type:     "array",
			Items:    &jsonschema.Schema{Type: "string"},
			MinItems: intPtr(2),
			MaxItems: intPtr(2),
		}
	}
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"nodes", "edges"},
		Properties: map[string]*jsonschema.Schema{
			"nodes":  {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			"edges":  {Type: "array", Items: pair()},
			"colors": {Type: "array", Items: pair()},
		},
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
}

// resolvedRecordSchema resolves the record schema once. A failure here is a
// programming error, not bad input.
func resolvedRecordSchema() (*jsonschema.Resolved, error) {
	schemaOnce.Do(func() {
		resolvedSchema, schemaErr = recordSchema().Resolve(nil)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("resolve record schema: %w", schemaErr)
		}
	})
	return resolvedSchema, schemaErr
}
