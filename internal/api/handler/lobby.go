package handler

import (
	"encoding/json"
	"net/http"

	"github.com/duelhub/duelhub/internal/api/request"
	"github.com/duelhub/duelhub/internal/api/response"
	"github.com/duelhub/duelhub/internal/model"
	"github.com/duelhub/duelhub/internal/services/lobby"
)

// LobbyHandler handles lobby queue endpoints
type LobbyHandler struct {
	queue *lobby.Queue
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(queue *lobby.Queue) *LobbyHandler {
	return &LobbyHandler{queue: queue}
}

// Get handles GET /api/v1/lobby
func (h *LobbyHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.LobbyFromModel(h.queue.Entries(), h.queue.RecentLogs()))
}

// Logs handles GET /api/v1/lobby/logs
func (h *LobbyHandler) Logs(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.LobbyFromModel(h.queue.Entries(), h.queue.ExtendedLogs()))
}

// Join handles POST /api/v1/lobby/join
func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.LobbyJoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Participant.ID == "" {
		WriteError(w, NewInvalidRequestError("participant.id is required"))
		return
	}

	p := model.Participant{
		ID:          model.ParticipantID(req.Participant.ID),
		DisplayName: req.Participant.DisplayName,
	}
	if err := h.queue.Join(p); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LobbyFromModel(h.queue.Entries(), h.queue.RecentLogs()))
}

// Leave handles POST /api/v1/lobby/leave
func (h *LobbyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req request.LobbyLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.queue.Leave(model.ParticipantID(req.ParticipantID)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Reset handles POST /api/v1/lobby/reset
func (h *LobbyHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req request.LobbyResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.queue.ResetTimeout(model.ParticipantID(req.ParticipantID)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
