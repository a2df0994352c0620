package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Reflect derives a JSON-Schema document from a Go struct type. Field tags
// drive the output: `json` names the property, `jsonschema:"required"` marks
// it required, and `jsonschema:"description=..."` documents it. The result is
// self-contained, with no $ref indirection.
func Reflect[T any]() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	s := reflector.Reflect(&v)

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal reflected schema: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal reflected schema: %w", err)
	}

	// The reflected document carries metadata keys that have no place in a
	// tool input schema.
	delete(doc, "$schema")
	delete(doc, "$id")
	return doc, nil
}
