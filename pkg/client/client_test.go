package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/composiohq/composio-go/pkg/connection"
	"github.com/composiohq/composio-go/pkg/modifiers"
	"github.com/composiohq/composio-go/pkg/tool"
)

// fakeBackend is a minimal HTTP double for the hosted backend.
func fakeBackend(t *testing.T) (*httptest.Server, *Composio) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/tools", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{{
			"slug":         "GITHUB_GET_REPO",
			"toolkit_slug": "github",
			"name":         "Get Repo",
			"description":  "Fetch a repository",
			"input_parameters": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"owner": map[string]any{"type": "string"},
					"repo":  map[string]any{"type": "string"},
				},
				"required": []any{"owner", "repo"},
			},
			"version": "20250101_00",
		}}})
	})
	mux.HandleFunc("GET /api/v3/tools/GITHUB_GET_REPO", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"slug":         "GITHUB_GET_REPO",
			"toolkit_slug": "github",
			"name":         "Get Repo",
			"input_parameters": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"owner": map[string]any{"type": "string"},
					"repo":  map[string]any{"type": "string"},
				},
				"required": []any{"owner", "repo"},
			},
			"version": "20250101_00",
		})
	})
	mux.HandleFunc("POST /api/v3/tools/execute/GITHUB_GET_REPO", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":       map[string]any{"stars": 42},
			"successful": true,
		})
	})
	mux.HandleFunc("GET /api/v3/connected_accounts", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(
		WithAPIKey("ck_test"),
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return srv, c
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	_, err := New()
	require.Error(t, err)
}

func TestNewReadsAPIKeyFromEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "ck_env")
	c, err := New()
	require.NoError(t, err)
	assert.NotNil(t, c.Connections())
}

func TestToolsResolvesDefinitions(t *testing.T) {
	_, c := fakeBackend(t)

	defs, err := c.Tools(context.Background(), "user-1", tool.Query{Toolkits: []string{"github"}})
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "GITHUB_GET_REPO", defs[0].Slug)
}

func TestExecuteEndToEnd(t *testing.T) {
	_, c := fakeBackend(t)

	resp, err := c.Execute(context.Background(), "GITHUB_GET_REPO", tool.ExecuteRequest{
		UserID:    "user-1",
		Arguments: map[string]any{"owner": "acme", "repo": "widgets"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Successful)
	assert.Equal(t, float64(42), resp.Data["stars"])
}

func TestExecuteValidatesBeforeDispatch(t *testing.T) {
	_, c := fakeBackend(t)

	_, err := c.Execute(context.Background(), "GITHUB_GET_REPO", tool.ExecuteRequest{
		UserID:    "user-1",
		Arguments: map[string]any{"owner": "acme"},
	})
	var invalid *tool.ArgumentValidationError
	require.ErrorAs(t, err, &invalid)
}

func TestRegisterToolFuncAndExecute(t *testing.T) {
	_, c := fakeBackend(t)

	type echoArgs struct {
		Text string `json:"text" jsonschema:"required"`
	}
	err := RegisterToolFunc(c, tool.CustomTool{
		Slug:        "MY_ECHO",
		ToolkitSlug: "mytools",
		Name:        "My Echo",
	}, func(_ context.Context, args echoArgs, _ tool.CustomToolInput) (tool.ExecuteResponse, error) {
		return tool.ExecuteResponse{
			Data:       map[string]any{"echo": args.Text},
			Successful: true,
		}, nil
	})
	require.NoError(t, err)

	resp, err := c.Execute(context.Background(), "MY_ECHO", tool.ExecuteRequest{
		UserID:    "user-1",
		Arguments: map[string]any{"text": "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Data["echo"])
}

func TestModifierHooksApply(t *testing.T) {
	_, c := fakeBackend(t)

	c.UseSchemaModifier(func(_ context.Context, _ modifiers.ToolContext, doc map[string]any) (map[string]any, error) {
		doc["description"] = "modified"
		return doc, nil
	})
	c.UseAfterExecute(func(_ context.Context, _ modifiers.ToolContext, res tool.ExecuteResponse) (tool.ExecuteResponse, error) {
		res.Data["touched"] = true
		return res, nil
	})

	defs, err := c.Tools(context.Background(), "", tool.Query{Slugs: []string{"GITHUB_GET_REPO"}})
	require.NoError(t, err)
	assert.Equal(t, "modified", defs[0].InputSchema["description"])

	resp, err := c.Execute(context.Background(), "GITHUB_GET_REPO", tool.ExecuteRequest{
		UserID:    "user-1",
		Arguments: map[string]any{"owner": "acme", "repo": "widgets"},
	})
	require.NoError(t, err)
	assert.Equal(t, true, resp.Data["touched"])
}

func TestManagersShareTransport(t *testing.T) {
	_, c := fakeBackend(t)

	accounts, err := c.Connections().List(context.Background(), connection.ListFilters{})
	require.NoError(t, err)
	assert.Empty(t, accounts)
	assert.NotNil(t, c.Triggers())
	assert.NotNil(t, c.ToolRouter())
	assert.NotNil(t, c.WebhookHandler("whsec_x"))
}
