package gateway

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Authorizer decides whether a request may subscribe to an event's
// channel. It runs before the websocket upgrade.
type Authorizer interface {
	CanAccessEvent(r *http.Request, eventID int64) bool
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(r *http.Request, eventID int64) bool

func (f AuthorizerFunc) CanAccessEvent(r *http.Request, eventID int64) bool {
	return f(r, eventID)
}

// RequireToken authorizes any request presenting a non-empty token.
// Real deployments swap in a checker backed by their auth system.
func RequireToken() Authorizer {
	return AuthorizerFunc(func(r *http.Request, _ int64) bool {
		return r.URL.Query().Get("token") != ""
	})
}

// WebSocketHandler handles upgrade requests for event subscriptions
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	authorizer        Authorizer
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager, authorizer Authorizer) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		authorizer:        authorizer,
	}
}

// HandleEventConnection handles WebSocket connections for a race event
func (h *WebSocketHandler) HandleEventConnection(w http.ResponseWriter, r *http.Request) {
	eventIDStr := r.URL.Query().Get("event_id")
	if eventIDStr == "" {
		http.Error(w, "event_id is required", http.StatusBadRequest)
		return
	}

	eventID, err := strconv.ParseInt(eventIDStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid event_id format", http.StatusBadRequest)
		return
	}

	if !h.authorizer.CanAccessEvent(r, eventID) {
		log.Warn().
			Int64("event_id", eventID).
			Str("remote_addr", r.RemoteAddr).
			Msg("subscription rejected")
		http.Error(w, "not authorized for this event", http.StatusForbidden)
		return
	}

	if err := h.connectionManager.UpgradeConnection(w, r, eventID); err != nil {
		log.Error().
			Err(err).
			Int64("event_id", eventID).
			Msg("failed to upgrade WebSocket connection")
		return
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	total, activeEvents := h.connectionManager.GetConnectionStats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"total_connections":%d,"active_events":%d}`, total, activeEvents)
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/event", h.HandleEventConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}
