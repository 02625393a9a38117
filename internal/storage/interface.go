package storage

import (
	"context"

	"github.com/duelhub/duelhub/internal/model"
)

// Storage defines the interface for durable persistence. In-memory state is
// the source of truth for liveness; the store is a best-effort audit except
// for the match-id seed read at startup.
type Storage interface {
	// Match records
	SaveMatchRecord(ctx context.Context, record *model.MatchRecord) error
	GetMatchRecord(ctx context.Context, id model.MatchID) (*model.MatchRecord, error)
	// LatestMatchID returns the highest stored match id, or 0 when no
	// records exist. Used once at startup to seed the id counter.
	LatestMatchID(ctx context.Context) (model.MatchID, error)

	// Account roster
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]*model.Account, error)
	DeleteAccount(ctx context.Context, id model.AccountID) error

	// Usage audit
	AppendAccountUsage(ctx context.Context, usage *model.AccountUsage) error
	ListAccountUsage(ctx context.Context, participantID model.ParticipantID) ([]*model.AccountUsage, error)
}
