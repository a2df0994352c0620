// Package registry provides the in-process custom tool registry. Each client
// instance owns its own registry, so independent clients in one process never
// share custom tools.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/composiohq/composio-go/pkg/schema"
	"github.com/composiohq/composio-go/pkg/tool"
)

// Registry stores custom tools keyed by slug. Registration is last-write-wins
// on slug collision; the overwrite is logged at warning level. The registry
// holds each tool's execution closure exclusively for the lifetime of the
// process and never serializes it.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]tool.CustomTool
	logger *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger falls back to
// slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]tool.CustomTool),
		logger: logger,
	}
}

// Register adds a custom tool. The slug and toolkit slug are required and the
// execution closure must be non-nil. Re-registering a slug replaces the
// previous entry.
func (r *Registry) Register(ct tool.CustomTool) error {
	if ct.Slug == "" {
		return fmt.Errorf("custom tool slug is required")
	}
	if ct.ToolkitSlug == "" {
		return fmt.Errorf("custom tool %s: toolkit slug is required", ct.Slug)
	}
	if ct.Execute == nil {
		return fmt.Errorf("custom tool %s: execute closure is required", ct.Slug)
	}
	if err := schema.CheckSchema(ct.InputSchema); err != nil {
		return fmt.Errorf("custom tool %s: invalid input schema: %w", ct.Slug, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[ct.Slug]; exists {
		r.logger.Warn("custom tool re-registered, replacing previous entry",
			"slug", ct.Slug,
			"toolkit", ct.ToolkitSlug,
		)
	}
	r.tools[ct.Slug] = ct
	return nil
}

// RegisterFunc derives the input schema from the Args struct type and
// registers the tool. Args field tags drive the schema the same way they do
// for any reflected type.
func RegisterFunc[Args any](r *Registry, ct tool.CustomTool, fn func(ctx context.Context, args Args, in tool.CustomToolInput) (tool.ExecuteResponse, error)) error {
	doc, err := schema.Reflect[Args]()
	if err != nil {
		return fmt.Errorf("custom tool %s: reflect input schema: %w", ct.Slug, err)
	}
	ct.InputSchema = doc
	ct.Execute = func(ctx context.Context, in tool.CustomToolInput) (tool.ExecuteResponse, error) {
		var args Args
		if err := decodeArguments(in.Arguments, &args); err != nil {
			return tool.ExecuteResponse{}, fmt.Errorf("decode arguments for %s: %w", ct.Slug, err)
		}
		return fn(ctx, args, in)
	}
	return r.Register(ct)
}

// Get retrieves a custom tool by slug.
func (r *Registry) Get(slug string) (tool.CustomTool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ct, ok := r.tools[slug]
	return ct, ok
}

// All returns every registered custom tool, ordered by slug.
func (r *Registry) All() []tool.CustomTool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]tool.CustomTool, 0, len(r.tools))
	for _, ct := range r.tools {
		result = append(result, ct)
	}
	sortBySlug(result)
	return result
}

// Match returns the custom tools selected by a query, in caller order for
// slug queries and slug order otherwise. Scope-filtered queries never match
// custom tools: custom tools carry no backend scopes.
func (r *Registry) Match(q tool.Query) []tool.CustomTool {
	if len(q.Scopes) > 0 {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	switch {
	case len(q.Slugs) > 0:
		result := make([]tool.CustomTool, 0, len(q.Slugs))
		for _, slug := range q.Slugs {
			if ct, ok := r.tools[slug]; ok {
				result = append(result, ct)
			}
		}
		return result

	case len(q.Toolkits) > 0:
		wanted := make(map[string]bool, len(q.Toolkits))
		for _, tk := range q.Toolkits {
			wanted[strings.ToLower(tk)] = true
		}
		var result []tool.CustomTool
		for _, ct := range r.tools {
			if wanted[strings.ToLower(ct.ToolkitSlug)] {
				result = append(result, ct)
			}
		}
		sortBySlug(result)
		return result

	case q.Search != "":
		needle := strings.ToLower(q.Search)
		var result []tool.CustomTool
		for _, ct := range r.tools {
			if q.SearchToolkit != "" && !strings.EqualFold(ct.ToolkitSlug, q.SearchToolkit) {
				continue
			}
			haystack := strings.ToLower(ct.Slug + " " + ct.Name + " " + ct.Description)
			if strings.Contains(haystack, needle) {
				result = append(result, ct)
			}
		}
		sortBySlug(result)
		return result
	}
	return nil
}

// Len returns the number of registered custom tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

func sortBySlug(tools []tool.CustomTool) {
	sort.Slice(tools, func(i, j int) bool { return tools[i].Slug < tools[j].Slug })
}

func decodeArguments(args map[string]any, out any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
