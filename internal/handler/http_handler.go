package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/snigenigmatic/QuadChat/internal/domain"
	"github.com/snigenigmatic/QuadChat/internal/presence"
	"github.com/snigenigmatic/QuadChat/internal/store"
)

// HTTPHandler serves the small read-only HTTP API next to the WebSocket
// endpoint.
type HTTPHandler struct {
	registry *presence.Registry
	messages store.MessageStore
}

func NewHTTPHandler(registry *presence.Registry, messages store.MessageStore) *HTTPHandler {
	return &HTTPHandler{registry: registry, messages: messages}
}

// GetHealth handles GET /health
func (h *HTTPHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// GetPresence handles GET /api/presence and returns the online snapshot.
func (h *HTTPHandler) GetPresence(w http.ResponseWriter, r *http.Request) {
	snapshot := h.registry.Snapshot()
	users := make([]domain.OnlineUser, len(snapshot))
	for i, id := range snapshot {
		users[i] = domain.OnlineUser{ID: id.ID, Name: id.Name}
	}

	writeJSON(w, map[string]interface{}{
		"online": users,
		"count":  len(users),
	})
}

// GetUnread handles GET /api/users/{user_id}/unread
func (h *HTTPHandler) GetUnread(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	count, err := h.messages.CountUnread(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to count unread messages", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{"unread_count": count})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// RegisterRoutes mounts the HTTP API endpoints.
func (h *HTTPHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/presence", h.GetPresence).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{user_id}/unread", h.GetUnread).Methods(http.MethodGet)
}
