package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duelhub/duelhub/internal/api/request"
	"github.com/duelhub/duelhub/internal/api/response"
	"github.com/duelhub/duelhub/internal/model"
	"github.com/duelhub/duelhub/internal/presence"
)

// PresenceHandler lets the chat-platform adapter push reachability updates
type PresenceHandler struct {
	presence *presence.Memory
}

// NewPresenceHandler creates a new presence handler
func NewPresenceHandler(presenceSrc *presence.Memory) *PresenceHandler {
	return &PresenceHandler{presence: presenceSrc}
}

// Set handles PUT /api/v1/presence/{participant_id}
func (h *PresenceHandler) Set(w http.ResponseWriter, r *http.Request) {
	id := model.ParticipantID(mux.Vars(r)["participant_id"])

	var req request.PresenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	h.presence.SetReachable(id, req.Reachable)
	response.NoContent(w)
}

// Get handles GET /api/v1/presence/{participant_id}
func (h *PresenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.ParticipantID(mux.Vars(r)["participant_id"])
	response.JSON(w, http.StatusOK, map[string]bool{"reachable": h.presence.IsReachable(r.Context(), id)})
}
