// Package version resolves the effective toolkit version for an execution.
// Resolution is a pure precedence walk over configured sources, so it is
// deterministic and testable without network access.
package version

import (
	"os"
	"strings"

	"github.com/composiohq/composio-go/pkg/tool"
)

const (
	// EnvGlobalVersion pins every toolkit to one version.
	EnvGlobalVersion = "COMPOSIO_TOOLKIT_VERSION"

	// EnvToolkitVersionPrefix pins a single toolkit, e.g.
	// COMPOSIO_TOOLKIT_VERSION_GITHUB.
	EnvToolkitVersionPrefix = "COMPOSIO_TOOLKIT_VERSION_"

	// Latest is the sentinel the backend interprets as the newest stable
	// toolkit version.
	Latest = "latest"
)

// Resolver picks the effective version for a toolkit. Precedence, highest
// first: per-execution override, SDK-level pin, toolkit-specific environment
// variable, global environment variable, latest sentinel.
type Resolver struct {
	pins   map[string]string
	lookup func(string) (string, bool)
	latest string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPins sets SDK-level per-toolkit version pins, keyed by toolkit slug.
func WithPins(pins map[string]string) Option {
	return func(r *Resolver) {
		for k, v := range pins {
			r.pins[strings.ToLower(k)] = v
		}
	}
}

// WithLookup replaces the environment lookup, for tests.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(r *Resolver) { r.lookup = lookup }
}

// WithoutLatestFallback disables the latest sentinel. Resolution then fails
// with a VersionResolutionError when no explicit source yields a version.
func WithoutLatestFallback() Option {
	return func(r *Resolver) { r.latest = "" }
}

// NewResolver creates a Resolver reading the process environment.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		pins:   make(map[string]string),
		lookup: os.LookupEnv,
		latest: Latest,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the effective version for toolkitSlug. override is the
// per-execution version request and wins over every other source. Resolve
// never performs I/O beyond the injected environment lookup.
func (r *Resolver) Resolve(toolkitSlug, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if v, ok := r.pins[strings.ToLower(toolkitSlug)]; ok && v != "" {
		return v, nil
	}
	if v, ok := r.lookup(EnvKey(toolkitSlug)); ok && v != "" {
		return v, nil
	}
	if v, ok := r.lookup(EnvGlobalVersion); ok && v != "" {
		return v, nil
	}
	if r.latest != "" {
		return r.latest, nil
	}
	return "", &tool.VersionResolutionError{
		ToolkitSlug: toolkitSlug,
		Message:     "no version source configured for toolkit " + toolkitSlug,
	}
}

// EnvKey returns the toolkit-specific environment variable name for a slug.
// Slugs are uppercased and non-alphanumeric runes become underscores.
func EnvKey(toolkitSlug string) string {
	var b strings.Builder
	b.WriteString(EnvToolkitVersionPrefix)
	for _, r := range strings.ToUpper(toolkitSlug) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
