// Package schema translates backend JSON-Schema tool definitions into native
// Go representations and back, validates arguments against input schemas, and
// derives schemas from Go struct types for custom tool registration.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// FromJSON converts a JSON-Schema document into the native Schema
// representation used by the MCP tooling.
func FromJSON(doc map[string]any) (*jsonschema.Schema, error) {
	if doc == nil {
		return nil, nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema document: %w", err)
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal schema document: %w", err)
	}
	return &s, nil
}

// ToJSON converts a native Schema back into a JSON-Schema document. The
// round-trip through FromJSON preserves structure: required fields, property
// types, and descriptions survive unchanged.
func ToJSON(s *jsonschema.Schema) (map[string]any, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal native schema: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal native schema: %w", err)
	}
	return doc, nil
}

// Clone deep-copies a schema document so modifier hooks can rewrite their
// copy without mutating the resolved definition.
func Clone(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
