package memory

import (
	"context"
	"sync"

	"github.com/duelhub/duelhub/internal/model"
	"github.com/duelhub/duelhub/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	matchRecords  map[model.MatchID]*model.MatchRecord
	latestMatchID model.MatchID
	accounts      map[model.AccountID]*model.Account
	usage         map[model.ParticipantID][]*model.AccountUsage
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		matchRecords: make(map[model.MatchID]*model.MatchRecord),
		accounts:     make(map[model.AccountID]*model.Account),
		usage:        make(map[model.ParticipantID][]*model.AccountUsage),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Match records

func (s *Storage) SaveMatchRecord(ctx context.Context, record *model.MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matchRecords[record.ID] = record
	if record.ID > s.latestMatchID {
		s.latestMatchID = record.ID
	}
	return nil
}

func (s *Storage) GetMatchRecord(ctx context.Context, id model.MatchID) (*model.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.matchRecords[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return record, nil
}

func (s *Storage) LatestMatchID(ctx context.Context) (model.MatchID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestMatchID, nil
}

// Account roster

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account, nil
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]*model.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	return nil
}

// Usage audit

func (s *Storage) AppendAccountUsage(ctx context.Context, usage *model.AccountUsage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage[usage.ParticipantID] = append(s.usage[usage.ParticipantID], usage)
	return nil
}

func (s *Storage) ListAccountUsage(ctx context.Context, participantID model.ParticipantID) ([]*model.AccountUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.AccountUsage{}, s.usage[participantID]...), nil
}
