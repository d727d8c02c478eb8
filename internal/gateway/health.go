package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Character     string `json:"character"`
	Model         string `json:"model"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// handleHealth returns an http.HandlerFunc for GET /health. The process has
// no degraded state worth a 503: the LLM backend is probed lazily per
// message, so health here means "the loop is up".
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{
			Status:        "ok",
			Character:     s.character,
			Model:         s.model,
			UptimeSeconds: int64(time.Since(s.startedAt) / time.Second),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
