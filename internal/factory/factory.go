package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/duelhub/duelhub/internal/channel"
	"github.com/duelhub/duelhub/internal/dependencies/clock"
	"github.com/duelhub/duelhub/internal/notify"
	"github.com/duelhub/duelhub/internal/presence"
	"github.com/duelhub/duelhub/internal/services/lobby"
	"github.com/duelhub/duelhub/internal/services/match"
	"github.com/duelhub/duelhub/internal/services/pool"
	"github.com/duelhub/duelhub/internal/storage"
	"github.com/duelhub/duelhub/internal/storage/memory"
	redisstorage "github.com/duelhub/duelhub/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Storage storage.Storage

	// External dependencies
	Clock    clock.Clock
	Channels channel.Provider
	Notifier notify.Sender
	Presence *presence.Memory

	// Services
	AccountPool *pool.Service
	LobbyQueue  *lobby.Queue
	MatchEngine *match.Engine
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// LobbyConfig holds lobby queue settings
	// If zero value, defaults to lobby.DefaultConfig()
	LobbyConfig lobby.Config
	// MatchConfig holds match engine settings
	// If zero value, defaults to match.DefaultConfig()
	MatchConfig match.Config
	// Channels is the session channel provider (optional)
	// If nil, an in-memory provider is used
	Channels channel.Provider
	// Notifier is the notification sender (optional)
	// If nil, notices go to the log
	Notifier notify.Sender
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	lobbyCfg := cfg.LobbyConfig
	if lobbyCfg.Timeout == 0 {
		lobbyCfg = lobby.DefaultConfig()
	}
	matchCfg := cfg.MatchConfig
	if matchCfg.TimeoutThreshold == 0 {
		matchCfg = match.DefaultConfig()
	}

	channels := cfg.Channels
	if channels == nil {
		channels = channel.NewMemory()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NewLogSender(logger)
	}

	return newWithDependencies(store, clock.New(), channels, notifier, matchCfg, lobbyCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	channels channel.Provider,
	notifier notify.Sender,
	matchCfg match.Config,
	lobbyCfg lobby.Config,
	logger *slog.Logger,
) *App {
	presenceSrc := presence.NewMemory()
	accountPool := pool.New(store, clk, notifier, logger)
	lobbyQueue := lobby.New(lobbyCfg, clk, notifier, logger)
	matchEngine := match.NewEngine(matchCfg, store, clk, channels, notifier, presenceSrc, accountPool, lobbyQueue, logger)

	// The queue consults the engine so a participant is never queued and in
	// a match at the same time
	lobbyQueue.SetMatchChecker(matchEngine)

	return &App{
		Storage:     store,
		Clock:       clk,
		Channels:    channels,
		Notifier:    notifier,
		Presence:    presenceSrc,
		AccountPool: accountPool,
		LobbyQueue:  lobbyQueue,
		MatchEngine: matchEngine,
	}
}
