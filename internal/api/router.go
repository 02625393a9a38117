package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duelhub/duelhub/internal/api/handler"
	"github.com/duelhub/duelhub/internal/api/middleware"
	"github.com/duelhub/duelhub/internal/presence"
	"github.com/duelhub/duelhub/internal/services/lobby"
	"github.com/duelhub/duelhub/internal/services/match"
	"github.com/duelhub/duelhub/internal/services/pool"
	"github.com/duelhub/duelhub/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	LobbyQueue  *lobby.Queue
	MatchEngine *match.Engine
	AccountPool *pool.Service
	Presence    *presence.Memory
	Storage     storage.Storage
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	lobbyHandler := handler.NewLobbyHandler(cfg.LobbyQueue)
	matchHandler := handler.NewMatchHandler(cfg.MatchEngine, cfg.Storage)
	accountsHandler := handler.NewAccountsHandler(cfg.AccountPool)
	presenceHandler := handler.NewPresenceHandler(cfg.Presence)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Lobby routes
	api.HandleFunc("/lobby", lobbyHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/lobby/logs", lobbyHandler.Logs).Methods(http.MethodGet)
	api.HandleFunc("/lobby/join", lobbyHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/lobby/leave", lobbyHandler.Leave).Methods(http.MethodPost)
	api.HandleFunc("/lobby/reset", lobbyHandler.Reset).Methods(http.MethodPost)

	// Match routes
	api.HandleFunc("/matches", matchHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/matches", matchHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", matchHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", matchHandler.End).Methods(http.MethodDelete)
	api.HandleFunc("/matches/{id}/invite", matchHandler.Invite).Methods(http.MethodPost)
	api.HandleFunc("/matches/{id}/decline", matchHandler.Decline).Methods(http.MethodPost)
	api.HandleFunc("/matches/{id}/join", matchHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/matches/{id}/leave", matchHandler.Leave).Methods(http.MethodPost)
	api.HandleFunc("/matches/{id}/record", matchHandler.Record).Methods(http.MethodGet)

	// Account pool routes
	api.HandleFunc("/accounts", accountsHandler.Info).Methods(http.MethodGet)
	api.HandleFunc("/accounts/acquire", accountsHandler.Acquire).Methods(http.MethodPost)
	api.HandleFunc("/accounts/release", accountsHandler.Release).Methods(http.MethodPost)

	// Presence routes
	api.HandleFunc("/presence/{participant_id}", presenceHandler.Set).Methods(http.MethodPut)
	api.HandleFunc("/presence/{participant_id}", presenceHandler.Get).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
