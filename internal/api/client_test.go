package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/composiohq/composio-go/pkg/catalog"
	"github.com/composiohq/composio-go/pkg/connection"
	"github.com/composiohq/composio-go/pkg/router"
	"github.com/composiohq/composio-go/pkg/tool"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "ck_test", WithHTTPClient(srv.Client()))
}

func TestRequestCarriesAPIKey(t *testing.T) {
	var gotKey string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		_ = json.NewEncoder(w).Encode(toolkitListResponse{})
	}))

	_, err := c.ListToolkits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ck_test", gotKey)
}

func TestListToolsQueryEncoding(t *testing.T) {
	var gotQuery map[string][]string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(toolListResponse{Items: []toolItem{{
			Slug:        "GITHUB_GET_REPO",
			ToolkitSlug: "github",
			InputSchema: map[string]any{"type": "object"},
		}}})
	}))

	tools, err := c.ListTools(context.Background(), catalog.Params{
		Toolkits: []string{"github", "slack"},
		Versions: map[string]string{"github": "20250101_00"},
		Limit:    20,
	})
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "GITHUB_GET_REPO", tools[0].Slug)
	assert.Equal(t, []string{"github@20250101_00,slack"}, gotQuery["toolkits"])
	assert.Equal(t, []string{"20"}, gotQuery["limit"])
}

func TestGetToolPathAndVersion(t *testing.T) {
	var gotPath, gotVersion string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotVersion = r.URL.Query().Get("toolkit_version")
		_ = json.NewEncoder(w).Encode(toolItem{Slug: "GITHUB_GET_REPO", ToolkitSlug: "github"})
	}))

	got, err := c.GetTool(context.Background(), "GITHUB_GET_REPO", "20250101_00")
	require.NoError(t, err)
	assert.Equal(t, "/api/v3/tools/GITHUB_GET_REPO", gotPath)
	assert.Equal(t, "20250101_00", gotVersion)
	assert.Equal(t, "github", got.ToolkitSlug)
}

func TestErrorResponseDecodesTypedError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":       "UNAUTHORIZED",
			"message":    "invalid api key",
			"request_id": "req_123",
		})
	}))

	_, err := c.ListToolkits(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "req_123")
}

func TestNoRetryOnServerError(t *testing.T) {
	var calls int
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.ListToolkits(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, calls, "a failed request must not be retried")
}

func TestCreateConnectedAccount(t *testing.T) {
	var gotBody createAccountRequest
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v3/connected_accounts", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(createAccountResponse{
			ID:          "ca_1",
			RedirectURL: "https://auth.example.com/flow",
			Status:      connection.StatusInitiated,
		})
	}))

	res, err := c.CreateConnectedAccount(context.Background(), "user-1", "ac_gh", connection.InitiateOptions{
		CallbackURL: "https://app.example.com/done",
	})
	require.NoError(t, err)
	assert.Equal(t, "ca_1", res.ID)
	assert.Equal(t, connection.StatusInitiated, res.Status)
	assert.Equal(t, "user-1", gotBody.UserID)
	assert.Equal(t, "https://app.example.com/done", gotBody.CallbackURL)
}

func TestListConnectedAccountsFilters(t *testing.T) {
	var gotQuery map[string][]string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(accountListResponse{})
	}))

	_, err := c.ListConnectedAccounts(context.Background(), connection.ListFilters{
		UserIDs:  []string{"user-1"},
		Statuses: []connection.Status{connection.StatusActive, connection.StatusFailed},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, gotQuery["user_ids"])
	assert.Equal(t, []string{"ACTIVE,FAILED"}, gotQuery["statuses"])
}

func TestExecuteTool(t *testing.T) {
	var gotBody executeRequest
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/tools/execute/GITHUB_GET_REPO", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(tool.ExecuteResponse{
			Data:       map[string]any{"stars": float64(42)},
			Successful: true,
		})
	}))

	resp, err := c.ExecuteTool(context.Background(), "GITHUB_GET_REPO", tool.ExecuteRequest{
		UserID:    "user-1",
		Arguments: map[string]any{"owner": "acme", "repo": "widgets"},
		Version:   "20250101_00",
	})
	require.NoError(t, err)
	assert.True(t, resp.Successful)
	assert.Equal(t, float64(42), resp.Data["stars"])
	assert.Equal(t, "acme", gotBody.Arguments["owner"])
	assert.Equal(t, "20250101_00", gotBody.Version)
}

func TestExecuteProxy(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/tools/execute/proxy", r.URL.Path)
		var req tool.ProxyRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "GET", req.Method)
		_ = json.NewEncoder(w).Encode(tool.ExecuteResponse{Successful: true})
	}))

	resp, err := c.ExecuteProxy(context.Background(), tool.ProxyRequest{
		Endpoint: "https://api.github.com/user",
		Method:   "GET",
	})
	require.NoError(t, err)
	assert.True(t, resp.Successful)
}

func TestCreateSession(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/tool_router/sessions", r.URL.Path)
		var req createSessionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, []string{"github"}, req.EnabledToolkits)
		_ = json.NewEncoder(w).Encode(sessionResponse{
			ID:     "trs_1",
			UserID: req.UserID,
			URL:    "https://router.example.com/mcp/trs_1",
		})
	}))

	state, err := c.CreateSession(context.Background(), router.SessionRequest{
		UserID: "user-1",
		Config: router.SessionConfig{EnabledToolkits: []string{"github"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "trs_1", state.ID)
	assert.Equal(t, "https://router.example.com/mcp/trs_1", state.URL)
}

func TestTriggerInstanceStatusRoundTrip(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody instanceStatusRequest
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.SetTriggerInstanceStatus(context.Background(), "ti_1", false))
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/api/v3/trigger_instances/ti_1/status", gotPath)
	assert.False(t, gotBody.Enabled)
}

func TestDownloadFile(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/files/f_1/download", r.URL.Path)
		_, _ = w.Write([]byte("payload-bytes"))
	}))

	rc, err := c.DownloadFile(context.Background(), "f_1")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	buf := make([]byte, 32)
	n, _ := rc.Read(buf)
	assert.Equal(t, "payload-bytes", string(buf[:n]))
}
