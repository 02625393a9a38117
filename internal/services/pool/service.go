package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/duelhub/duelhub/internal/dependencies/clock"
	"github.com/duelhub/duelhub/internal/model"
	"github.com/duelhub/duelhub/internal/notify"
	"github.com/duelhub/duelhub/internal/storage"
)

// Service owns the pool of lendable accounts, partitioned into available and
// busy. All mutation goes through Acquire and Release.
type Service struct {
	mu        sync.Mutex
	available map[model.AccountID]*model.Account
	busy      map[model.AccountID]*model.Account

	storage  storage.Storage
	clock    clock.Clock
	notifier notify.Sender
	logger   *slog.Logger
}

// New creates a new account pool. Call Load before use.
func New(storage storage.Storage, clk clock.Clock, notifier notify.Sender, logger *slog.Logger) *Service {
	return &Service{
		available: make(map[model.AccountID]*model.Account),
		busy:      make(map[model.AccountID]*model.Account),
		storage:   storage,
		clock:     clk,
		notifier:  notifier,
		logger:    logger,
	}
}

// Load populates the pool from the external source of truth. Accounts with an
// unresolved in-game identity are dropped and reported to the operator
// channel rather than pooled.
func (s *Service) Load(ctx context.Context) error {
	accounts, err := s.storage.ListAccounts(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := 0
	for _, account := range accounts {
		if account.IngameID == 0 {
			msg := fmt.Sprintf("Account ID: %d has a missing character! Dropping account object...", account.ID)
			s.logger.Warn("dropping account with unresolved identity", slog.Int("account_id", int(account.ID)))
			if err := s.notifier.Send(ctx, notify.TargetOperator, msg, notify.Options{}); err != nil {
				s.logger.Error("operator notice failed", slog.String("error", err.Error()))
			}
			continue
		}
		acc := *account
		if acc.Holder != "" {
			s.busy[acc.ID] = &acc
		} else {
			s.available[acc.ID] = &acc
		}
		loaded++
	}

	s.logger.Info("accounts loaded", slog.Int("count", loaded))
	return nil
}

// Acquire hands out an account to the requesting participant, preferring the
// account the participant has used the most, then the account with the fewest
// distinct holders. Returns ErrNoAccountsAvailable when the pool is empty.
// This is a greedy heuristic, not an optimal assignment.
func (s *Service) Acquire(ctx context.Context, requester model.Participant) (*model.Account, error) {
	s.mu.Lock()

	if len(s.available) == 0 {
		s.mu.Unlock()
		return nil, model.ErrNoAccountsAvailable
	}

	chosen := s.pick(requester.ID)

	delete(s.available, chosen.ID)
	s.busy[chosen.ID] = chosen
	chosen.Holder = requester.ID
	chosen.UsageHistory = append(chosen.UsageHistory, requester.ID)
	snapshot := *chosen

	s.mu.Unlock()

	s.logger.Info("account acquired",
		slog.Int("account_id", int(snapshot.ID)),
		slog.String("participant_id", string(requester.ID)),
		slog.String("participant_name", requester.DisplayName),
	)

	// Durable writes are best-effort audit: failures are surfaced to the
	// operator channel, never to the requester
	s.persist(ctx, &snapshot)
	usage := &model.AccountUsage{
		AccountID:     snapshot.ID,
		ParticipantID: requester.ID,
		DisplayName:   requester.DisplayName,
		Date:          s.clock.Now(),
	}
	if err := s.storage.AppendAccountUsage(ctx, usage); err != nil {
		s.reportWriteFailure(ctx, "usage audit write failed", snapshot.ID, err)
	}

	return &snapshot, nil
}

// pick selects the best available account for the requester. Caller must hold
// s.mu. Candidates are ordered by occurrences of the requester in the usage
// history (more is better), then by distinct-holder count (fewer is better);
// with no prior usage anywhere this reduces to the fewest-distinct-holders
// cold-start rule.
func (s *Service) pick(requester model.ParticipantID) *model.Account {
	ids := make([]int, 0, len(s.available))
	for id := range s.available {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	var best *model.Account
	bestUsages, bestDistinct := -1, 0
	for _, id := range ids {
		acc := s.available[model.AccountID(id)]
		usages := acc.UsageCount(requester)
		distinct := acc.DistinctHolders()
		if usages > bestUsages || (usages == bestUsages && distinct < bestDistinct) {
			best = acc
			bestUsages = usages
			bestDistinct = distinct
		}
	}
	return best
}

// Release returns an account to the pool. The usage history is permanent and
// is not mutated.
func (s *Service) Release(ctx context.Context, id model.AccountID) error {
	s.mu.Lock()

	account, ok := s.busy[id]
	if !ok {
		s.mu.Unlock()
		return model.ErrAccountNotBusy
	}

	delete(s.busy, id)
	account.Holder = ""
	s.available[id] = account
	snapshot := *account

	s.mu.Unlock()

	s.logger.Info("account released", slog.Int("account_id", int(id)))
	s.persist(ctx, &snapshot)
	return nil
}

// ReleaseFor releases whatever account the participant currently holds.
// Returns the released account id and true, or false if none was held.
func (s *Service) ReleaseFor(ctx context.Context, participantID model.ParticipantID) (model.AccountID, bool) {
	s.mu.Lock()
	var id model.AccountID
	found := false
	for _, account := range s.busy {
		if account.Holder == participantID {
			id = account.ID
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return 0, false
	}
	if err := s.Release(ctx, id); err != nil {
		return 0, false
	}
	return id, true
}

// HasAccount reports whether the participant currently holds an account
func (s *Service) HasAccount(participantID model.ParticipantID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.busy {
		if account.Holder == participantID {
			return true
		}
	}
	return false
}

// Holder pairs a busy account with its current holder
type Holder struct {
	AccountID     model.AccountID
	ParticipantID model.ParticipantID
}

// Info returns the available and busy counts plus the current holder of each
// busy account, sorted by account id
func (s *Service) Info() (available, busy int, holders []Holder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range s.busy {
		holders = append(holders, Holder{AccountID: account.ID, ParticipantID: account.Holder})
	}
	sort.Slice(holders, func(i, j int) bool { return holders[i].AccountID < holders[j].AccountID })
	return len(s.available), len(s.busy), holders
}

func (s *Service) persist(ctx context.Context, account *model.Account) {
	if err := s.storage.SaveAccount(ctx, account); err != nil {
		s.reportWriteFailure(ctx, "account state write failed", account.ID, err)
	}
}

func (s *Service) reportWriteFailure(ctx context.Context, what string, id model.AccountID, err error) {
	s.logger.Error(what,
		slog.Int("account_id", int(id)),
		slog.String("error", err.Error()),
	)
	msg := fmt.Sprintf("%s for account [%d]: %v", what, id, err)
	if nerr := s.notifier.Send(ctx, notify.TargetOperator, msg, notify.Options{}); nerr != nil {
		s.logger.Error("operator notice failed", slog.String("error", nerr.Error()))
	}
}
