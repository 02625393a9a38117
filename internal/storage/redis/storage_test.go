package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/duelhub/duelhub/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Match record tests

func (s *StorageSuite) TestSaveAndGetMatchRecord() {
	record := &model.MatchRecord{
		ID:           4,
		Owner:        "p-1",
		Participants: []model.ParticipantID{"p-1", "p-2"},
		StartedAt:    time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC),
		EndedAt:      time.Date(2024, 3, 1, 18, 40, 0, 0, time.UTC),
	}

	err := s.storage.SaveMatchRecord(s.ctx, record)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetMatchRecord(s.ctx, 4)
	s.Require().NoError(err)
	s.Equal(record.Owner, retrieved.Owner)
	s.Equal(record.Participants, retrieved.Participants)
	s.True(record.EndedAt.Equal(retrieved.EndedAt))
}

func (s *StorageSuite) TestGetMatchRecordNotFound() {
	_, err := s.storage.GetMatchRecord(s.ctx, 99)
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *StorageSuite) TestLatestMatchIDEmpty() {
	id, err := s.storage.LatestMatchID(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.MatchID(0), id)
}

func (s *StorageSuite) TestLatestMatchIDTracksHighest() {
	_ = s.storage.SaveMatchRecord(s.ctx, &model.MatchRecord{ID: 3})
	_ = s.storage.SaveMatchRecord(s.ctx, &model.MatchRecord{ID: 12})
	_ = s.storage.SaveMatchRecord(s.ctx, &model.MatchRecord{ID: 5})

	id, err := s.storage.LatestMatchID(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.MatchID(12), id)
}

// Account tests

func (s *StorageSuite) TestSaveAndGetAccount() {
	account := &model.Account{
		ID:           3,
		Username:     "acc3",
		Password:     "hunter2",
		IngameName:   "Pilot3",
		IngameID:     103,
		UsageHistory: []model.ParticipantID{"p-1", "p-2", "p-1"},
	}

	err := s.storage.SaveAccount(s.ctx, account)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetAccount(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal(account.Username, retrieved.Username)
	s.Equal(account.UsageHistory, retrieved.UsageHistory)
}

func (s *StorageSuite) TestListAccounts() {
	_ = s.storage.SaveAccount(s.ctx, &model.Account{ID: 1, IngameID: 101})
	_ = s.storage.SaveAccount(s.ctx, &model.Account{ID: 2, IngameID: 102})

	accounts, err := s.storage.ListAccounts(s.ctx)
	s.Require().NoError(err)
	s.Len(accounts, 2)
}

func (s *StorageSuite) TestDeleteAccountRemovesFromIndex() {
	_ = s.storage.SaveAccount(s.ctx, &model.Account{ID: 1, IngameID: 101})

	err := s.storage.DeleteAccount(s.ctx, 1)
	s.Require().NoError(err)

	accounts, err := s.storage.ListAccounts(s.ctx)
	s.Require().NoError(err)
	s.Empty(accounts)
}

// Usage audit tests

func (s *StorageSuite) TestAppendAndListAccountUsage() {
	_ = s.storage.AppendAccountUsage(s.ctx, &model.AccountUsage{AccountID: 1, ParticipantID: "p-1", DisplayName: "Alice"})
	_ = s.storage.AppendAccountUsage(s.ctx, &model.AccountUsage{AccountID: 2, ParticipantID: "p-1", DisplayName: "Alice"})

	usages, err := s.storage.ListAccountUsage(s.ctx, "p-1")
	s.Require().NoError(err)
	s.Len(usages, 2)
	s.Equal(model.AccountID(1), usages[0].AccountID)
	s.Equal(model.AccountID(2), usages[1].AccountID)
}
