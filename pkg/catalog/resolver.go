// Package catalog resolves tool queries against the backend catalog, merging
// in locally registered custom tools and applying version resolution and
// schema modifiers.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/composiohq/composio-go/pkg/modifiers"
	"github.com/composiohq/composio-go/pkg/registry"
	"github.com/composiohq/composio-go/pkg/tool"
	"github.com/composiohq/composio-go/pkg/version"
)

// Params is the wire-level shape of a catalog query sent to the backend.
type Params struct {
	Slugs         []string
	Toolkits      []string
	Search        string
	SearchToolkit string
	Scopes        []string
	Limit         int

	// Versions pins each queried toolkit to a resolved version.
	Versions map[string]string
}

// Backend is the catalog port. The backend owns the authoritative tool
// definitions and relevance ordering.
type Backend interface {
	ListTools(ctx context.Context, params Params) ([]tool.Tool, error)
	GetTool(ctx context.Context, slug, toolkitVersion string) (*tool.Tool, error)
	ListToolkits(ctx context.Context) ([]tool.Toolkit, error)
	GetToolkit(ctx context.Context, slug string) (*tool.Toolkit, error)
	ListToolkitVersions(ctx context.Context, toolkitSlug string) ([]tool.ToolkitVersion, error)
}

// Resolver answers tool queries. Results merge the remote catalog with the
// custom tool registry; custom tools take precedence on slug collision
// within a single resolution, logged at warning level.
type Resolver struct {
	backend  Backend
	registry *registry.Registry
	versions *version.Resolver
	pipeline *modifiers.Pipeline
	logger   *slog.Logger
}

// NewResolver creates a Resolver. registry, versions, and pipeline may be
// nil, in which case the corresponding stage is skipped.
func NewResolver(backend Backend, reg *registry.Registry, versions *version.Resolver, pipeline *modifiers.Pipeline, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		backend:  backend,
		registry: reg,
		versions: versions,
		pipeline: pipeline,
		logger:   logger,
	}
}

// Resolve returns the tool definitions selected by q. userID may be empty:
// definitions are still returned for introspection, but execution requires a
// user and a connected account. Slug queries preserve caller order; toolkit
// and search queries keep backend relevance order and are truncated to the
// query's effective limit.
func (r *Resolver) Resolve(ctx context.Context, userID string, q tool.Query) ([]tool.Tool, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	_ = userID // resolution is identical with or without a user

	params := Params{
		Slugs:         q.Slugs,
		Toolkits:      q.Toolkits,
		Search:        q.Search,
		SearchToolkit: q.SearchToolkit,
		Scopes:        q.Scopes,
		Limit:         q.EffectiveLimit(),
	}
	if r.versions != nil && len(q.Toolkits) > 0 {
		params.Versions = make(map[string]string, len(q.Toolkits))
		for _, tk := range q.Toolkits {
			v, err := r.versions.Resolve(tk, "")
			if err != nil {
				return nil, err
			}
			params.Versions[tk] = v
		}
	}

	var custom []tool.CustomTool
	if r.registry != nil {
		custom = r.registry.Match(q)
	}

	remote, err := r.listRemote(ctx, params, custom)
	if err != nil {
		return nil, err
	}

	merged := r.merge(q, remote, custom)
	return r.applySchemaStage(ctx, merged)
}

// ResolveSlug is the single-slug fast path used by the execution engine. The
// custom tool registry wins over the remote catalog.
func (r *Resolver) ResolveSlug(ctx context.Context, slug, toolkitVersion string) (tool.Tool, error) {
	if r.registry != nil {
		if ct, ok := r.registry.Get(slug); ok {
			return r.applySchema(ctx, ct.Definition())
		}
	}
	remote, err := r.backend.GetTool(ctx, slug, toolkitVersion)
	if err != nil {
		return tool.Tool{}, fmt.Errorf("resolving tool %s: %w", slug, err)
	}
	return r.applySchema(ctx, *remote)
}

// Toolkits lists catalog toolkits.
func (r *Resolver) Toolkits(ctx context.Context) ([]tool.Toolkit, error) {
	return r.backend.ListToolkits(ctx)
}

// GetToolkit fetches one toolkit's catalog metadata.
func (r *Resolver) GetToolkit(ctx context.Context, slug string) (*tool.Toolkit, error) {
	return r.backend.GetToolkit(ctx, slug)
}

// ToolkitVersions lists a toolkit's published versions, newest first.
func (r *Resolver) ToolkitVersions(ctx context.Context, toolkitSlug string) ([]tool.ToolkitVersion, error) {
	return r.backend.ListToolkitVersions(ctx, toolkitSlug)
}

// listRemote queries the backend, skipping the round trip when every
// requested slug is served by the custom registry.
func (r *Resolver) listRemote(ctx context.Context, params Params, custom []tool.CustomTool) ([]tool.Tool, error) {
	if len(params.Slugs) > 0 {
		covered := make(map[string]bool, len(custom))
		for _, ct := range custom {
			covered[ct.Slug] = true
		}
		var missing []string
		for _, slug := range params.Slugs {
			if !covered[slug] {
				missing = append(missing, slug)
			}
		}
		if len(missing) == 0 {
			return nil, nil
		}
		params.Slugs = missing
	}

	remote, err := r.backend.ListTools(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("querying tool catalog: %w", err)
	}
	return remote, nil
}

// merge combines remote and custom results. Custom definitions replace
// remote definitions with the same slug; the shadowing is reported, not
// silent.
func (r *Resolver) merge(q tool.Query, remote []tool.Tool, custom []tool.CustomTool) []tool.Tool {
	if len(custom) == 0 {
		if len(q.Slugs) > 0 {
			remote = reorderBySlugs(q.Slugs, remote)
		}
		return truncate(q, remote)
	}

	customBySlug := make(map[string]tool.Tool, len(custom))
	for _, ct := range custom {
		customBySlug[ct.Slug] = ct.Definition()
	}

	merged := make([]tool.Tool, 0, len(remote)+len(custom))
	seen := make(map[string]bool, len(remote))
	for _, t := range remote {
		if def, ok := customBySlug[t.Slug]; ok {
			r.logger.Warn("custom tool shadows catalog tool with the same slug",
				"slug", t.Slug,
				"toolkit", def.ToolkitSlug,
				"catalog_toolkit", t.ToolkitSlug,
			)
			t = def
		}
		merged = append(merged, t)
		seen[t.Slug] = true
	}
	for _, ct := range custom {
		if !seen[ct.Slug] {
			merged = append(merged, ct.Definition())
		}
	}

	if len(q.Slugs) > 0 {
		merged = reorderBySlugs(q.Slugs, merged)
	}
	return truncate(q, merged)
}

func (r *Resolver) applySchemaStage(ctx context.Context, defs []tool.Tool) ([]tool.Tool, error) {
	out := make([]tool.Tool, 0, len(defs))
	for _, def := range defs {
		applied, err := r.applySchema(ctx, def)
		if err != nil {
			return nil, err
		}
		out = append(out, applied)
	}
	return out, nil
}

func (r *Resolver) applySchema(ctx context.Context, def tool.Tool) (tool.Tool, error) {
	if r.pipeline == nil {
		return def, nil
	}
	return r.pipeline.ApplySchema(ctx, def)
}

func truncate(q tool.Query, defs []tool.Tool) []tool.Tool {
	if len(q.Slugs) > 0 {
		// Slug queries are bounded by the request itself.
		return defs
	}
	if limit := q.EffectiveLimit(); len(defs) > limit {
		return defs[:limit]
	}
	return defs
}

func reorderBySlugs(slugs []string, defs []tool.Tool) []tool.Tool {
	bySlug := make(map[string]tool.Tool, len(defs))
	for _, def := range defs {
		bySlug[def.Slug] = def
	}
	out := make([]tool.Tool, 0, len(defs))
	for _, slug := range slugs {
		if def, ok := bySlug[slug]; ok {
			out = append(out, def)
		}
	}
	return out
}
