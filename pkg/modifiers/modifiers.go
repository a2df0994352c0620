// Package modifiers composes caller-supplied transformation hooks around
// catalog resolution and execution. Hooks run as an explicit ordered chain
// with identity defaults, so the stage ordering is enforceable and testable
// in isolation.
package modifiers

import (
	"context"
	"fmt"

	"github.com/composiohq/composio-go/pkg/schema"
	"github.com/composiohq/composio-go/pkg/tool"
)

// ToolContext identifies the tool a hook is running for. Hooks receive the
// slug through this context rather than through the mutable document, so a
// hook cannot change the slug.
type ToolContext struct {
	Slug        string
	ToolkitSlug string
}

// SchemaModifier rewrites a tool's input schema immediately after resolution,
// before the schema reaches a provider adapter.
type SchemaModifier func(ctx context.Context, tc ToolContext, doc map[string]any) (map[string]any, error)

// BeforeExecute rewrites execution arguments immediately before dispatch.
// Returning an error aborts the execution; it is not retried.
type BeforeExecute func(ctx context.Context, tc ToolContext, params map[string]any) (map[string]any, error)

// AfterExecute rewrites the result envelope after dispatch. It may redact
// fields but should preserve the Successful flag unless deliberately
// overriding it.
type AfterExecute func(ctx context.Context, tc ToolContext, res tool.ExecuteResponse) (tool.ExecuteResponse, error)

// Pipeline holds the three hook stages. Hooks within a stage run
// sequentially in registration order; an empty stage is the identity.
type Pipeline struct {
	schemaHooks []SchemaModifier
	beforeHooks []BeforeExecute
	afterHooks  []AfterExecute
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// UseSchema appends a schema modifier.
func (p *Pipeline) UseSchema(m SchemaModifier) {
	p.schemaHooks = append(p.schemaHooks, m)
}

// UseBefore appends a before-execute hook.
func (p *Pipeline) UseBefore(m BeforeExecute) {
	p.beforeHooks = append(p.beforeHooks, m)
}

// UseAfter appends an after-execute hook.
func (p *Pipeline) UseAfter(m AfterExecute) {
	p.afterHooks = append(p.afterHooks, m)
}

// ApplySchema runs the schema stage over a resolved tool and returns the
// tool with the rewritten input schema. The resolved definition is never
// mutated; hooks work on a deep copy.
func (p *Pipeline) ApplySchema(ctx context.Context, t tool.Tool) (tool.Tool, error) {
	if len(p.schemaHooks) == 0 {
		return t, nil
	}

	tc := ToolContext{Slug: t.Slug, ToolkitSlug: t.ToolkitSlug}
	doc := schema.Clone(t.InputSchema)
	for i, hook := range p.schemaHooks {
		next, err := hook(ctx, tc, doc)
		if err != nil {
			return tool.Tool{}, fmt.Errorf("schema modifier %d for %s: %w", i, t.Slug, err)
		}
		doc = next
	}
	t.InputSchema = doc
	return t, nil
}

// ApplyBefore runs the before-execute stage over the arguments.
func (p *Pipeline) ApplyBefore(ctx context.Context, tc ToolContext, params map[string]any) (map[string]any, error) {
	for i, hook := range p.beforeHooks {
		next, err := hook(ctx, tc, params)
		if err != nil {
			return nil, fmt.Errorf("before-execute hook %d for %s: %w", i, tc.Slug, err)
		}
		params = next
	}
	return params, nil
}

// ApplyAfter runs the after-execute stage over the result envelope. The
// stage runs whether dispatch succeeded or failed, receiving the raw
// envelope either way.
func (p *Pipeline) ApplyAfter(ctx context.Context, tc ToolContext, res tool.ExecuteResponse) (tool.ExecuteResponse, error) {
	for i, hook := range p.afterHooks {
		next, err := hook(ctx, tc, res)
		if err != nil {
			return tool.ExecuteResponse{}, fmt.Errorf("after-execute hook %d for %s: %w", i, tc.Slug, err)
		}
		res = next
	}
	return res, nil
}
