package triggers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func signedRequest(t *testing.T, event Event, ts time.Time) *http.Request {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)

	stamp := strconv.FormatInt(ts.Unix(), 10)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set(HeaderWebhookID, event.ID)
	req.Header.Set(HeaderWebhookTimestamp, stamp)
	req.Header.Set(HeaderWebhookSignature, "v1,"+ComputeSignature([]byte(testSecret), event.ID, stamp, body))
	return req
}

func TestWebhookDispatchesValidDelivery(t *testing.T) {
	m := NewManager(nil, nil)
	var received []Event
	m.Subscribe(Filter{}, func(_ context.Context, e Event) { received = append(received, e) })

	h := NewWebhookHandler(testSecret, m)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, githubStarEvent("user-1"), time.Now()))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, received, 1)
	assert.Equal(t, "GITHUB_STAR_ADDED_EVENT", received[0].TriggerSlug)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	m := NewManager(nil, nil)
	var count int
	m.Subscribe(Filter{}, func(context.Context, Event) { count++ })

	h := NewWebhookHandler(testSecret, m)
	req := signedRequest(t, githubStarEvent("user-1"), time.Now())
	req.Header.Set(HeaderWebhookSignature, "v1,AAAAinvalid")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, count)
}

func TestWebhookRejectsWrongSecret(t *testing.T) {
	h := NewWebhookHandler("whsec_other", NewManager(nil, nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, githubStarEvent("user-1"), time.Now()))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookRejectsStaleTimestamp(t *testing.T) {
	h := NewWebhookHandler(testSecret, NewManager(nil, nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, githubStarEvent("user-1"), time.Now().Add(-10*time.Minute)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookRejectsMissingHeaders(t *testing.T) {
	h := NewWebhookHandler(testSecret, NewManager(nil, nil))
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookAcceptsSecondarySignature(t *testing.T) {
	m := NewManager(nil, nil)
	var count int
	m.Subscribe(Filter{}, func(context.Context, Event) { count++ })

	h := NewWebhookHandler(testSecret, m)
	req := signedRequest(t, githubStarEvent("user-1"), time.Now())
	// Key rotation sends the old and new signature in one header.
	req.Header.Set(HeaderWebhookSignature, "v1,staleoldkey "+req.Header.Get(HeaderWebhookSignature))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, count)
}

func TestWebhookRejectsNonPost(t *testing.T) {
	h := NewWebhookHandler(testSecret, NewManager(nil, nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
