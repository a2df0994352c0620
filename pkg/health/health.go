// Package health tracks bridge readiness and serves HTTP probe endpoints.
package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Readiness phases. A bridge starts in phaseStarting, moves to phaseReady
// once its tools are registered, and to phaseDraining when shutdown begins.
const (
	phaseStarting int32 = iota
	phaseReady
	phaseDraining
)

// Probe tracks the readiness phase of a running bridge.
// It is safe for concurrent use.
type Probe struct {
	phase atomic.Int32
	tools atomic.Int64
}

// NewProbe creates a Probe in the starting phase.
func NewProbe() *Probe {
	return &Probe{}
}

// SetReady marks the bridge ready, recording how many tools it serves.
func (p *Probe) SetReady(toolCount int) {
	p.tools.Store(int64(toolCount))
	p.phase.Store(phaseReady)
}

// SetDraining marks the bridge as shutting down.
func (p *Probe) SetDraining() {
	p.phase.Store(phaseDraining)
}

// IsReady reports whether the bridge is in the ready phase.
func (p *Probe) IsReady() bool {
	return p.phase.Load() == phaseReady
}

// Phase returns the current phase as a string.
func (p *Probe) Phase() string {
	switch p.phase.Load() {
	case phaseReady:
		return "ready"
	case phaseDraining:
		return "draining"
	default:
		return "starting"
	}
}

type probeResponse struct {
	Status string `json:"status"`
	Tools  *int64 `json:"tools,omitempty"`
}

// LivenessHandler responds 200 OK regardless of phase. Suitable for a
// livenessProbe on /healthz.
func (*Probe) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, probeResponse{Status: "ok"})
	}
}

// ReadinessHandler responds 200 when the bridge is ready and 503 while it
// is starting or draining. Suitable for a readinessProbe on /readyz.
func (p *Probe) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := probeResponse{Status: p.Phase()}
		if !p.IsReady() {
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		n := p.tools.Load()
		resp.Tools = &n
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, code int, v probeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
