package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/duelhub/duelhub/internal/api/request"
	"github.com/duelhub/duelhub/internal/api/response"
	"github.com/duelhub/duelhub/internal/model"
	"github.com/duelhub/duelhub/internal/services/match"
	"github.com/duelhub/duelhub/internal/storage"
)

// MatchHandler handles match lifecycle endpoints
type MatchHandler struct {
	engine  *match.Engine
	storage storage.Storage
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(engine *match.Engine, store storage.Storage) *MatchHandler {
	return &MatchHandler{engine: engine, storage: store}
}

func participantFromRequest(p request.Participant) model.Participant {
	return model.Participant{
		ID:          model.ParticipantID(p.ID),
		DisplayName: p.DisplayName,
	}
}

func matchID(r *http.Request) (model.MatchID, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, NewInvalidRequestError("invalid match id")
	}
	return model.MatchID(id), nil
}

// Create handles POST /api/v1/matches
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Owner.ID == "" {
		WriteError(w, NewInvalidRequestError("owner.id is required"))
		return
	}

	invited := make([]model.Participant, len(req.Invited))
	for i, p := range req.Invited {
		invited[i] = participantFromRequest(p)
	}

	m, err := h.engine.Create(r.Context(), participantFromRequest(req.Owner), invited)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.MatchFromModel(m, h.engine.TimeoutConfig().TimeoutThreshold))
}

// List handles GET /api/v1/matches
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	threshold := h.engine.TimeoutConfig().TimeoutThreshold
	matches := h.engine.List()
	out := make([]response.Match, len(matches))
	for i, m := range matches {
		out[i] = response.MatchFromModel(m, threshold)
	}
	response.JSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/matches/{id}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := matchID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	m, err := h.engine.Get(id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(m, h.engine.TimeoutConfig().TimeoutThreshold))
}

// Invite handles POST /api/v1/matches/{id}/invite
func (h *MatchHandler) Invite(w http.ResponseWriter, r *http.Request) {
	id, err := matchID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.MatchInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.engine.Invite(r.Context(), id, participantFromRequest(req.Participant)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Decline handles POST /api/v1/matches/{id}/decline
func (h *MatchHandler) Decline(w http.ResponseWriter, r *http.Request) {
	id, err := matchID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.MatchDeclineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.engine.DeclineInvite(r.Context(), id, model.ParticipantID(req.ParticipantID)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Join handles POST /api/v1/matches/{id}/join
func (h *MatchHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, err := matchID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.MatchJoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.engine.Join(r.Context(), id, participantFromRequest(req.Participant)); err != nil {
		WriteError(w, err)
		return
	}

	m, err := h.engine.Get(id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(m, h.engine.TimeoutConfig().TimeoutThreshold))
}

// Leave handles POST /api/v1/matches/{id}/leave
func (h *MatchHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id, err := matchID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.MatchLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.engine.Leave(r.Context(), id, model.ParticipantID(req.ParticipantID)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// End handles DELETE /api/v1/matches/{id}
func (h *MatchHandler) End(w http.ResponseWriter, r *http.Request) {
	id, err := matchID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.engine.End(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Record handles GET /api/v1/matches/{id}/record
func (h *MatchHandler) Record(w http.ResponseWriter, r *http.Request) {
	id, err := matchID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	record, err := h.storage.GetMatchRecord(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchRecordFromModel(record))
}
