package handler

import (
	"encoding/json"
	"net/http"

	"github.com/duelhub/duelhub/internal/api/request"
	"github.com/duelhub/duelhub/internal/api/response"
	"github.com/duelhub/duelhub/internal/model"
	"github.com/duelhub/duelhub/internal/services/pool"
)

// AccountsHandler handles shared account pool endpoints
type AccountsHandler struct {
	pool *pool.Service
}

// NewAccountsHandler creates a new accounts handler
func NewAccountsHandler(accountPool *pool.Service) *AccountsHandler {
	return &AccountsHandler{pool: accountPool}
}

// Info handles GET /api/v1/accounts
func (h *AccountsHandler) Info(w http.ResponseWriter, r *http.Request) {
	available, busy, holders := h.pool.Info()
	response.JSON(w, http.StatusOK, response.AccountsInfoFromPool(available, busy, holders))
}

// Acquire handles POST /api/v1/accounts/acquire
func (h *AccountsHandler) Acquire(w http.ResponseWriter, r *http.Request) {
	var req request.AcquireAccountRequest
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
	account, err := h.pool.Acquire(r.Context(), p)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(account))
}

// Release handles POST /api/v1/accounts/release
func (h *AccountsHandler) Release(w http.ResponseWriter, r *http.Request) {
	var req request.ReleaseAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.pool.Release(r.Context(), model.AccountID(req.AccountID)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
