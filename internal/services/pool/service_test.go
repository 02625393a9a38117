package pool

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/duelhub/duelhub/internal/dependencies/mocks"
	"github.com/duelhub/duelhub/internal/model"
	"github.com/duelhub/duelhub/internal/notify"
	"github.com/duelhub/duelhub/internal/storage/memory"
	"github.com/duelhub/duelhub/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	notifier *notify.Recorder
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.notifier = notify.NewRecorder()
	s.service = New(s.storage, s.clock, s.notifier, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) seedAccounts(accounts ...*model.Account) {
	for _, account := range accounts {
		s.Require().NoError(s.storage.SaveAccount(s.ctx, account))
	}
	s.Require().NoError(s.service.Load(s.ctx))
}

func participant(id string) model.Participant {
	return model.Participant{ID: model.ParticipantID(id), DisplayName: "P " + id}
}

func (s *ServiceSuite) TestAcquireEmptyPool() {
	s.seedAccounts()

	_, err := s.service.Acquire(s.ctx, participant("p-1"))
	s.ErrorIs(err, model.ErrNoAccountsAvailable)
}

func (s *ServiceSuite) TestAcquireMovesToBusy() {
	s.seedAccounts(&model.Account{ID: 1, IngameID: 101})

	account, err := s.service.Acquire(s.ctx, participant("p-1"))
	s.Require().NoError(err)
	s.Equal(model.AccountID(1), account.ID)
	s.Equal(model.ParticipantID("p-1"), account.Holder)

	available, busy, holders := s.service.Info()
	s.Equal(0, available)
	s.Equal(1, busy)
	s.Require().Len(holders, 1)
	s.Equal(model.ParticipantID("p-1"), holders[0].ParticipantID)

	// Pool exhausted until release
	_, err = s.service.Acquire(s.ctx, participant("p-2"))
	s.ErrorIs(err, model.ErrNoAccountsAvailable)
}

func (s *ServiceSuite) TestReleaseReturnsToAvailable() {
	s.seedAccounts(&model.Account{ID: 1, IngameID: 101})

	account, _ := s.service.Acquire(s.ctx, participant("p-1"))
	s.Require().NoError(s.service.Release(s.ctx, account.ID))

	available, busy, _ := s.service.Info()
	s.Equal(1, available)
	s.Equal(0, busy)

	// History is permanent
	again, err := s.service.Acquire(s.ctx, participant("p-2"))
	s.Require().NoError(err)
	s.Equal([]model.ParticipantID{"p-1", "p-2"}, again.UsageHistory)
}

func (s *ServiceSuite) TestReleaseNotBusy() {
	s.seedAccounts(&model.Account{ID: 1, IngameID: 101})

	s.ErrorIs(s.service.Release(s.ctx, 1), model.ErrAccountNotBusy)
	s.ErrorIs(s.service.Release(s.ctx, 99), model.ErrAccountNotBusy)
}

func (s *ServiceSuite) TestAcquirePrefersPreviouslyUsed() {
	s.seedAccounts(
		&model.Account{ID: 1, IngameID: 101, UsageHistory: []model.ParticipantID{"p-2", "p-3"}},
		&model.Account{ID: 2, IngameID: 102, UsageHistory: []model.ParticipantID{"p-1"}},
		&model.Account{ID: 3, IngameID: 103},
	)

	account, err := s.service.Acquire(s.ctx, participant("p-1"))
	s.Require().NoError(err)
	s.Equal(model.AccountID(2), account.ID)
}

func (s *ServiceSuite) TestAcquirePicksMostUsedByRequester() {
	s.seedAccounts(
		&model.Account{ID: 1, IngameID: 101, UsageHistory: []model.ParticipantID{"p-1"}},
		&model.Account{ID: 2, IngameID: 102, UsageHistory: []model.ParticipantID{"p-1", "p-9", "p-1"}},
	)

	account, err := s.service.Acquire(s.ctx, participant("p-1"))
	s.Require().NoError(err)
	s.Equal(model.AccountID(2), account.ID)
}

func (s *ServiceSuite) TestAcquireTieBreaksOnFewestDistinctHolders() {
	// Both used once by p-1; account 2 has fewer distinct holders
	s.seedAccounts(
		&model.Account{ID: 1, IngameID: 101, UsageHistory: []model.ParticipantID{"p-1", "p-2", "p-3"}},
		&model.Account{ID: 2, IngameID: 102, UsageHistory: []model.ParticipantID{"p-1", "p-2"}},
	)

	account, err := s.service.Acquire(s.ctx, participant("p-1"))
	s.Require().NoError(err)
	s.Equal(model.AccountID(2), account.ID)
}

func (s *ServiceSuite) TestColdStartSpread() {
	const n = 5
	accounts := make([]*model.Account, n)
	for i := range accounts {
		accounts[i] = &model.Account{ID: model.AccountID(i + 1), IngameID: int64(100 + i)}
	}
	s.seedAccounts(accounts...)

	// n distinct requesters acquire and release in turn; usage should
	// spread so no account's distinct-holder count exceeds the minimum
	// by more than one
	for i := 0; i < n; i++ {
		account, err := s.service.Acquire(s.ctx, participant(fmt.Sprintf("p-%d", i)))
		s.Require().NoError(err)
		s.Require().NoError(s.service.Release(s.ctx, account.ID))
	}

	counts := make(map[model.AccountID]int)
	for i := 0; i < n; i++ {
		account, err := s.storage.GetAccount(s.ctx, model.AccountID(i+1))
		s.Require().NoError(err)
		counts[account.ID] = account.DistinctHolders()
	}
	min, max := counts[1], counts[1]
	for _, c := range counts {
		if c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}
	s.LessOrEqual(max, min+1)
}

func (s *ServiceSuite) TestHasAccount() {
	s.seedAccounts(&model.Account{ID: 1, IngameID: 101})

	s.False(s.service.HasAccount("p-1"))
	_, _ = s.service.Acquire(s.ctx, participant("p-1"))
	s.True(s.service.HasAccount("p-1"))

	_, ok := s.service.ReleaseFor(s.ctx, "p-1")
	s.True(ok)
	s.False(s.service.HasAccount("p-1"))

	_, ok = s.service.ReleaseFor(s.ctx, "p-1")
	s.False(ok)
}

func (s *ServiceSuite) TestAcquireWritesUsageAudit() {
	s.seedAccounts(&model.Account{ID: 1, IngameID: 101})

	_, err := s.service.Acquire(s.ctx, participant("p-1"))
	s.Require().NoError(err)

	usages, err := s.storage.ListAccountUsage(s.ctx, "p-1")
	s.Require().NoError(err)
	s.Require().Len(usages, 1)
	s.Equal(model.AccountID(1), usages[0].AccountID)
	s.Equal("P p-1", usages[0].DisplayName)
	s.Equal(s.clock.Now(), usages[0].Date)
}

func (s *ServiceSuite) TestAcquireProceedsWhenAuditWriteFails() {
	s.seedAccounts(&model.Account{ID: 1, IngameID: 101})
	failing := &failingUsageStorage{Storage: s.storage}
	s.service = New(failing, s.clock, s.notifier, testutil.NopLogger())
	s.Require().NoError(s.service.Load(s.ctx))

	account, err := s.service.Acquire(s.ctx, participant("p-1"))
	s.Require().NoError(err)
	s.Equal(model.ParticipantID("p-1"), account.Holder)

	// Failure surfaced to the operator channel, not the requester
	s.NotEmpty(s.notifier.MessagesFor(notify.TargetOperator))
}

func (s *ServiceSuite) TestLoadDropsUnresolvedIdentity() {
	s.Require().NoError(s.storage.SaveAccount(s.ctx, &model.Account{ID: 1, IngameID: 0}))
	s.Require().NoError(s.storage.SaveAccount(s.ctx, &model.Account{ID: 2, IngameID: 102}))
	s.Require().NoError(s.service.Load(s.ctx))

	available, busy, _ := s.service.Info()
	s.Equal(1, available)
	s.Equal(0, busy)
	s.NotEmpty(s.notifier.MessagesFor(notify.TargetOperator))
}

func (s *ServiceSuite) TestLoadRestoresBusyPartition() {
	s.seedAccounts(
		&model.Account{ID: 1, IngameID: 101, Holder: "p-1", UsageHistory: []model.ParticipantID{"p-1"}},
		&model.Account{ID: 2, IngameID: 102},
	)

	available, busy, holders := s.service.Info()
	s.Equal(1, available)
	s.Equal(1, busy)
	s.Require().Len(holders, 1)
	s.Equal(model.ParticipantID("p-1"), holders[0].ParticipantID)
	s.True(s.service.HasAccount("p-1"))
}

// failingUsageStorage wraps a storage and fails every usage audit write
type failingUsageStorage struct {
	*memory.Storage
}

func (f *failingUsageStorage) AppendAccountUsage(ctx context.Context, usage *model.AccountUsage) error {
	return errors.New("sheet unavailable")
}
