package schema

import (
	"encoding/json"
	"fmt"

	jsv "github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidateArguments checks a set of tool arguments against an input schema.
// A nil or empty schema accepts any arguments.
func ValidateArguments(inputSchema map[string]any, args map[string]any) error {
	if len(inputSchema) == 0 {
		return nil
	}

	compiled, err := compile(inputSchema)
	if err != nil {
		return fmt.Errorf("compile input schema: %w", err)
	}

	// Normalize through JSON so numeric types match what the validator
	// expects regardless of how the caller built the map.
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshal arguments: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal arguments: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	return compiled.Validate(doc)
}

// CheckSchema verifies that an input schema compiles, without validating any
// arguments. Registration paths use it to reject schemas that would otherwise
// fail at execution time.
func CheckSchema(inputSchema map[string]any) error {
	if len(inputSchema) == 0 {
		return nil
	}
	_, err := compile(inputSchema)
	return err
}

func compile(inputSchema map[string]any) (*jsv.Schema, error) {
	// Round-trip through JSON to get the plain document form the compiler
	// accepts as a resource.
	data, err := json.Marshal(inputSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := jsv.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}
