package version

import (
	"errors"
	"testing"

	"github.com/composiohq/composio-go/pkg/tool"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestResolvePrecedence(t *testing.T) {
	env := map[string]string{
		"COMPOSIO_TOOLKIT_VERSION_GITHUB": "v3",
		"COMPOSIO_TOOLKIT_VERSION":        "v4",
	}
	r := NewResolver(
		WithPins(map[string]string{"github": "v2"}),
		WithLookup(mapLookup(env)),
	)

	// All sources set: per-execution override wins.
	got, err := r.Resolve("github", "v1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "v1" {
		t.Errorf("Resolve() = %q, want %q", got, "v1")
	}

	// Remove the override: SDK-level pin wins.
	if got, _ = r.Resolve("github", ""); got != "v2" {
		t.Errorf("Resolve() = %q, want %q", got, "v2")
	}

	// Remove the pin: toolkit env var wins.
	r = NewResolver(WithLookup(mapLookup(env)))
	if got, _ = r.Resolve("github", ""); got != "v3" {
		t.Errorf("Resolve() = %q, want %q", got, "v3")
	}

	// Remove the toolkit env var: global env var wins.
	delete(env, "COMPOSIO_TOOLKIT_VERSION_GITHUB")
	if got, _ = r.Resolve("github", ""); got != "v4" {
		t.Errorf("Resolve() = %q, want %q", got, "v4")
	}

	// Nothing set: latest sentinel.
	delete(env, "COMPOSIO_TOOLKIT_VERSION")
	if got, _ = r.Resolve("github", ""); got != Latest {
		t.Errorf("Resolve() = %q, want %q", got, Latest)
	}
}

func TestResolveNoSourceNoSentinel(t *testing.T) {
	r := NewResolver(
		WithLookup(mapLookup(nil)),
		WithoutLatestFallback(),
	)

	_, err := r.Resolve("github", "")
	var vre *tool.VersionResolutionError
	if !errors.As(err, &vre) {
		t.Fatalf("Resolve() error = %v, want VersionResolutionError", err)
	}
	if vre.ToolkitSlug != "github" {
		t.Errorf("ToolkitSlug = %q, want %q", vre.ToolkitSlug, "github")
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	r := NewResolver(WithLookup(mapLookup(map[string]string{
		"COMPOSIO_TOOLKIT_VERSION_SLACK_BETA": "v9",
	})))

	for range 3 {
		got, err := r.Resolve("slack-beta", "")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != "v9" {
			t.Errorf("Resolve() = %q, want %q", got, "v9")
		}
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		slug string
		want string
	}{
		{"github", "COMPOSIO_TOOLKIT_VERSION_GITHUB"},
		{"slack-beta", "COMPOSIO_TOOLKIT_VERSION_SLACK_BETA"},
		{"ms365.mail", "COMPOSIO_TOOLKIT_VERSION_MS365_MAIL"},
	}
	for _, tt := range tests {
		if got := EnvKey(tt.slug); got != tt.want {
			t.Errorf("EnvKey(%q) = %q, want %q", tt.slug, got, tt.want)
		}
	}
}
