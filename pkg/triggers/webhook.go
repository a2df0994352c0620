package triggers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Webhook signature headers.
const (
	HeaderWebhookID        = "webhook-id"
	HeaderWebhookTimestamp = "webhook-timestamp"
	HeaderWebhookSignature = "webhook-signature"
)

// DefaultWebhookTolerance is the maximum accepted clock skew between the
// signed timestamp and the receiver. Deliveries outside the window are
// rejected to bound replay.
const DefaultWebhookTolerance = 5 * time.Minute

// WebhookHandler verifies signed webhook deliveries and dispatches them to a
// Manager. Implements http.Handler.
type WebhookHandler struct {
	secret    []byte
	manager   *Manager
	tolerance time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// WebhookOption configures a WebhookHandler.
type WebhookOption func(*WebhookHandler)

// WithWebhookTolerance overrides the replay window.
func WithWebhookTolerance(d time.Duration) WebhookOption {
	return func(h *WebhookHandler) { h.tolerance = d }
}

// WithWebhookLogger sets the handler's logger.
func WithWebhookLogger(logger *slog.Logger) WebhookOption {
	return func(h *WebhookHandler) { h.logger = logger }
}

// NewWebhookHandler creates a webhook receiver. secret is the signing key
// configured on the backend for this project.
func NewWebhookHandler(secret string, manager *Manager, opts ...WebhookOption) *WebhookHandler {
	h := &WebhookHandler{
		secret:    []byte(secret),
		manager:   manager,
		tolerance: DefaultWebhookTolerance,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	id := r.Header.Get(HeaderWebhookID)
	ts := r.Header.Get(HeaderWebhookTimestamp)
	sig := r.Header.Get(HeaderWebhookSignature)
	if err := h.verify(id, ts, sig, body); err != nil {
		h.logger.Warn("webhook rejected", "error", err, "webhook_id", id)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}
	if event.ID == "" {
		event.ID = id
	}

	h.manager.Dispatch(r.Context(), event)
	w.WriteHeader(http.StatusNoContent)
}

// verify checks the delivery signature scheme: each candidate in the
// space-separated signature header has the form
// "v1,<base64 HMAC-SHA256 of "{id}.{timestamp}.{body}">".
func (h *WebhookHandler) verify(id, timestamp, signature string, body []byte) error {
	if id == "" || timestamp == "" || signature == "" {
		return fmt.Errorf("missing signature headers")
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed timestamp: %w", err)
	}
	skew := h.now().Sub(time.Unix(unix, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > h.tolerance {
		return fmt.Errorf("timestamp outside tolerance window")
	}

	expected := ComputeSignature(h.secret, id, timestamp, body)
	for _, candidate := range strings.Fields(signature) {
		version, mac, ok := strings.Cut(candidate, ",")
		if !ok || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(mac), []byte(expected)) {
			return nil
		}
	}
	return fmt.Errorf("no matching signature")
}

// ComputeSignature returns the base64 HMAC-SHA256 of "{id}.{timestamp}.{body}".
func ComputeSignature(secret []byte, id, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
