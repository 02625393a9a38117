package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/duelhub/duelhub/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(s.app.MatchEngine.Start(s.ctx))
}

func (s *IntegrationSuite) participant(id, name string) model.Participant {
	return model.Participant{ID: model.ParticipantID(id), DisplayName: name}
}

// Test: full duel flow from lobby to archived record
func (s *IntegrationSuite) TestCompleteDuelFlow() {
	// Seed two shared accounts
	s.Require().NoError(s.app.Storage.SaveAccount(s.ctx, &model.Account{ID: 1, Username: "acct-1", IngameID: 101}))
	s.Require().NoError(s.app.Storage.SaveAccount(s.ctx, &model.Account{ID: 2, Username: "acct-2", IngameID: 102}))
	s.Require().NoError(s.app.AccountPool.Load(s.ctx))

	alice := s.participant("alice", "Alice")
	bob := s.participant("bob", "Bob")

	// Both queue up in the lobby
	s.Require().NoError(s.app.LobbyQueue.Join(alice))
	s.Require().NoError(s.app.LobbyQueue.Join(bob))

	// Alice challenges Bob; both leave the lobby on the way in
	m, err := s.app.MatchEngine.Create(s.ctx, alice, []model.Participant{bob})
	s.Require().NoError(err)
	s.False(s.app.LobbyQueue.Contains(alice.ID))
	s.Require().NoError(s.app.MatchEngine.Join(s.ctx, m.ID, bob))
	s.False(s.app.LobbyQueue.Contains(bob.ID))

	// Both borrow accounts
	a1, err := s.app.AccountPool.Acquire(s.ctx, alice)
	s.Require().NoError(err)
	a2, err := s.app.AccountPool.Acquire(s.ctx, bob)
	s.Require().NoError(err)
	s.NotEqual(a1.ID, a2.ID)

	// Once someone comes online the match is live
	s.app.Presence.SetReachable(alice.ID, true)
	s.Require().NoError(s.app.MatchEngine.Tick(s.ctx, m.ID))
	got, err := s.app.MatchEngine.Get(m.ID)
	s.Require().NoError(err)
	s.Equal(model.MatchStatePlaying, got.State)

	// End: accounts come back, the record lands in storage
	s.Require().NoError(s.app.MatchEngine.End(s.ctx, m.ID))
	available, busy, _ := s.app.AccountPool.Info()
	s.Equal(2, available)
	s.Equal(0, busy)

	record, err := s.app.Storage.GetMatchRecord(s.ctx, m.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]model.ParticipantID{"alice", "bob"}, record.Participants)

	// Both can queue again
	s.Require().NoError(s.app.LobbyQueue.Join(alice))
}

// Test: queueing while in a match is rejected through the wired checker
func (s *IntegrationSuite) TestLobbyRejectsActiveParticipants() {
	alice := s.participant("alice", "Alice")
	bob := s.participant("bob", "Bob")

	m, err := s.app.MatchEngine.Create(s.ctx, alice, []model.Participant{bob})
	s.Require().NoError(err)
	s.Require().NoError(s.app.MatchEngine.Join(s.ctx, m.ID, bob))

	s.ErrorIs(s.app.LobbyQueue.Join(alice), model.ErrAlreadyInMatch)
	s.ErrorIs(s.app.LobbyQueue.Join(bob), model.ErrAlreadyInMatch)
}

// Test: lobby warn/evict and match timeout driven by the same mock clock
func (s *IntegrationSuite) TestTimeoutsAcrossServices() {
	carol := s.participant("carol", "Carol")
	s.Require().NoError(s.app.LobbyQueue.Join(carol))

	s.app.MockClock.Advance(26 * time.Minute)
	s.app.LobbyQueue.Sweep(s.ctx)
	s.True(s.app.LobbyQueue.Contains(carol.ID))

	s.app.MockClock.Advance(5 * time.Minute)
	s.app.LobbyQueue.Sweep(s.ctx)
	s.False(s.app.LobbyQueue.Contains(carol.ID))

	alice := s.participant("alice", "Alice")
	bob := s.participant("bob", "Bob")
	m, err := s.app.MatchEngine.Create(s.ctx, alice, []model.Participant{bob})
	s.Require().NoError(err)
	s.Require().NoError(s.app.MatchEngine.Join(s.ctx, m.ID, bob))

	s.app.MockClock.Advance(6 * time.Minute)
	s.app.MatchEngine.TickAll(s.ctx)
	s.app.MockClock.Advance(11 * time.Minute)
	s.app.MatchEngine.TickAll(s.ctx)

	got, err := s.app.MatchEngine.Get(m.ID)
	s.Require().NoError(err)
	s.True(got.Ended())
}
