// Package provider defines the contract between the execution engine and
// the framework adapters that hand tools to an LLM. An adapter converts
// resolved tool definitions into its framework's native format and routes
// tool calls back through an ExecuteFunc.
package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/composiohq/composio-go/pkg/tool"
)

// ExecuteFunc dispatches one tool call. Adapters hold one and never talk to
// the backend directly.
type ExecuteFunc func(ctx context.Context, slug string, req tool.ExecuteRequest) (tool.ExecuteResponse, error)

// Provider is implemented by every framework adapter.
type Provider interface {
	Name() string
}

// RenderResult serializes an execution envelope to the JSON text adapters
// feed back to the model.
func RenderResult(res tool.ExecuteResponse) (string, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("encoding execution result: %w", err)
	}
	return string(data), nil
}

// DecodeArguments parses a framework's raw tool-call arguments into the map
// the engine validates. Empty input yields an empty map.
func DecodeArguments(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decoding tool arguments: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
