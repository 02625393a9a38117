package match

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/duelhub/duelhub/internal/channel"
	"github.com/duelhub/duelhub/internal/dependencies/mocks"
	"github.com/duelhub/duelhub/internal/model"
	"github.com/duelhub/duelhub/internal/notify"
	"github.com/duelhub/duelhub/internal/presence"
	"github.com/duelhub/duelhub/internal/services/lobby"
	"github.com/duelhub/duelhub/internal/services/pool"
	"github.com/duelhub/duelhub/internal/storage"
	"github.com/duelhub/duelhub/internal/storage/memory"
	"github.com/duelhub/duelhub/internal/testutil"
)

// countingStorage counts durable match record writes
type countingStorage struct {
	*memory.Storage
	recordWrites int
}

func (c *countingStorage) SaveMatchRecord(ctx context.Context, record *model.MatchRecord) error {
	c.recordWrites++
	return c.Storage.SaveMatchRecord(ctx, record)
}

type EngineSuite struct {
	suite.Suite
	storage  *countingStorage
	clock    *mocks.MockClock
	notifier *notify.Recorder
	channels *channel.Memory
	presence *presence.Memory
	pool     *pool.Service
	queue    *lobby.Queue
	engine   *Engine
	ctx      context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.storage = &countingStorage{Storage: memory.New()}
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.notifier = notify.NewRecorder()
	s.channels = channel.NewMemory()
	s.presence = presence.NewMemory()

	logger := testutil.NopLogger()
	s.pool = pool.New(s.storage, s.clock, s.notifier, logger)
	s.queue = lobby.New(lobby.DefaultConfig(), s.clock, s.notifier, logger)

	cfg := DefaultConfig()
	cfg.EndGraceDelay = 0

	s.engine = NewEngine(cfg, s.storage, s.clock, s.channels, s.notifier, s.presence, s.pool, s.queue, logger)
	s.queue.SetMatchChecker(s.engine)
	s.ctx = context.Background()

	s.Require().NoError(s.engine.Start(s.ctx))
}

func participant(id string) model.Participant {
	return model.Participant{ID: model.ParticipantID(id), DisplayName: "P " + id}
}

// createMatch opens a match between p-1 (owner) and p-2 with the invite
// already accepted
func (s *EngineSuite) createMatch() *model.Match {
	m, err := s.engine.Create(s.ctx, participant("p-1"), []model.Participant{participant("p-2")})
	s.Require().NoError(err)
	s.Require().NoError(s.engine.Join(s.ctx, m.ID, participant("p-2")))
	return m
}

func (s *EngineSuite) TestCreateValidation() {
	_, err := s.engine.Create(s.ctx, participant("p-1"), nil)
	s.ErrorIs(err, model.ErrNoInvitees)

	_, err = s.engine.Create(s.ctx, participant("p-1"), []model.Participant{participant("p-1")})
	s.ErrorIs(err, model.ErrSelfInvite)
}

func (s *EngineSuite) TestCreateOpensChannelAndStartsInviting() {
	m, err := s.engine.Create(s.ctx, participant("p-1"), []model.Participant{participant("p-2")})
	s.Require().NoError(err)

	s.Equal(model.MatchID(1), m.ID)
	s.Equal(model.MatchStateInviting, m.State)
	s.Equal([]model.Participant{participant("p-1")}, m.Roster)
	s.True(m.IsInvited("p-2"))

	ch := s.channels.Get(channel.Handle(m.Channel))
	s.Require().NotNil(ch)
	s.True(ch.Members["p-1"])
	s.True(ch.Members["p-2"])
}

func (s *EngineSuite) TestCreateEvictsOwnerFromLobby() {
	s.Require().NoError(s.queue.Join(participant("p-1")))

	_, err := s.engine.Create(s.ctx, participant("p-1"), []model.Participant{participant("p-2")})
	s.Require().NoError(err)

	s.False(s.queue.Contains("p-1"))
}

func (s *EngineSuite) TestCreateWhileAlreadyInMatch() {
	s.createMatch()

	_, err := s.engine.Create(s.ctx, participant("p-1"), []model.Participant{participant("p-3")})
	s.ErrorIs(err, model.ErrAlreadyInMatch)
}

func (s *EngineSuite) TestJoinRequiresInvite() {
	m, err := s.engine.Create(s.ctx, participant("p-1"), []model.Participant{participant("p-2")})
	s.Require().NoError(err)

	s.ErrorIs(s.engine.Join(s.ctx, m.ID, participant("p-3")), model.ErrNotInvited)
}

func (s *EngineSuite) TestJoinMovesInviteeToRoster() {
	m := s.createMatch()

	got, err := s.engine.Get(m.ID)
	s.Require().NoError(err)
	s.True(got.InRoster("p-2"))
	s.False(got.IsInvited("p-2"))
	s.Equal(model.MatchStateGettingReady, got.State)
}

func (s *EngineSuite) TestJoinEvictsInviteeFromLobby() {
	s.Require().NoError(s.queue.Join(participant("p-2")))

	s.createMatch()
	s.False(s.queue.Contains("p-2"))
}

func (s *EngineSuite) TestJoinWhileInAnotherMatch() {
	s.createMatch()

	m2, err := s.engine.Create(s.ctx, participant("p-3"), []model.Participant{participant("p-2")})
	s.Require().NoError(err)

	s.ErrorIs(s.engine.Join(s.ctx, m2.ID, participant("p-2")), model.ErrAlreadyInMatch)
}

func (s *EngineSuite) TestDeclineInvite() {
	m, err := s.engine.Create(s.ctx, participant("p-1"), []model.Participant{participant("p-2")})
	s.Require().NoError(err)

	s.Require().NoError(s.engine.DeclineInvite(s.ctx, m.ID, "p-2"))
	s.Require().NoError(s.engine.DeclineInvite(s.ctx, m.ID, "p-2"))

	got, err := s.engine.Get(m.ID)
	s.Require().NoError(err)
	s.False(got.IsInvited("p-2"))
	s.ErrorIs(s.engine.Join(s.ctx, m.ID, participant("p-2")), model.ErrNotInvited)
}

func (s *EngineSuite) TestStateFollowsPresence() {
	m := s.createMatch()

	s.presence.SetReachable("p-1", true)
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))
	got, err := s.engine.Get(m.ID)
	s.Require().NoError(err)
	s.Equal(model.MatchStatePlaying, got.State)

	s.presence.SetReachable("p-1", false)
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))
	got, err = s.engine.Get(m.ID)
	s.Require().NoError(err)
	s.Equal(model.MatchStateGettingReady, got.State)
}

func (s *EngineSuite) TestLeaveReleasesAccount() {
	s.Require().NoError(s.storage.SaveAccount(s.ctx, &model.Account{ID: 1, IngameID: 101}))
	s.Require().NoError(s.pool.Load(s.ctx))

	m := s.createMatch()
	_, err := s.pool.Acquire(s.ctx, participant("p-2"))
	s.Require().NoError(err)
	s.Require().True(s.pool.HasAccount("p-2"))

	s.Require().NoError(s.engine.Leave(s.ctx, m.ID, "p-2"))

	s.False(s.pool.HasAccount("p-2"))
	available, busy, _ := s.pool.Info()
	s.Equal(1, available)
	s.Equal(0, busy)
}

func (s *EngineSuite) TestLeaveNotInMatch() {
	m := s.createMatch()
	s.ErrorIs(s.engine.Leave(s.ctx, m.ID, "p-9"), model.ErrNotInMatch)
}

func (s *EngineSuite) TestLastLeaveEndsMatch() {
	m := s.createMatch()

	s.Require().NoError(s.engine.Leave(s.ctx, m.ID, "p-2"))
	got, err := s.engine.Get(m.ID)
	s.Require().NoError(err)
	s.False(got.Ended())

	s.Require().NoError(s.engine.Leave(s.ctx, m.ID, "p-1"))
	got, err = s.engine.Get(m.ID)
	s.Require().NoError(err)
	s.True(got.Ended())
	s.Equal(model.MatchStateEnded, got.State)
	s.Equal(1, s.storage.recordWrites)
}

func (s *EngineSuite) TestEndIsIdempotent() {
	m := s.createMatch()

	s.Require().NoError(s.engine.End(s.ctx, m.ID))
	s.Require().NoError(s.engine.End(s.ctx, m.ID))

	s.Equal(1, s.storage.recordWrites)

	got, err := s.engine.Get(m.ID)
	s.Require().NoError(err)
	s.True(got.Ended())
	s.Empty(got.Roster)
}

func (s *EngineSuite) TestEndReleasesAccountsAndDeletesChannel() {
	s.Require().NoError(s.storage.SaveAccount(s.ctx, &model.Account{ID: 1, IngameID: 101}))
	s.Require().NoError(s.pool.Load(s.ctx))

	m := s.createMatch()
	_, err := s.pool.Acquire(s.ctx, participant("p-1"))
	s.Require().NoError(err)

	s.Require().NoError(s.engine.End(s.ctx, m.ID))

	s.False(s.pool.HasAccount("p-1"))
	ch := s.channels.Get(channel.Handle(m.Channel))
	s.Require().NotNil(ch)
	s.True(ch.Deleted)
	s.Equal("Match Ended", ch.DeletedReason)
}

func (s *EngineSuite) TestJoinAfterEndFails() {
	m := s.createMatch()
	s.Require().NoError(s.engine.Leave(s.ctx, m.ID, "p-2"))
	s.Require().NoError(s.engine.End(s.ctx, m.ID))

	s.ErrorIs(s.engine.Join(s.ctx, m.ID, participant("p-2")), model.ErrMatchEnded)
}

func (s *EngineSuite) TestRecordKeepsDepartedParticipants() {
	m := s.createMatch()
	s.Require().NoError(s.engine.Leave(s.ctx, m.ID, "p-2"))
	s.Require().NoError(s.engine.End(s.ctx, m.ID))

	record, err := s.storage.GetMatchRecord(s.ctx, m.ID)
	s.Require().NoError(err)
	s.Equal(model.ParticipantID("p-1"), record.Owner)
	s.ElementsMatch([]model.ParticipantID{"p-1", "p-2"}, record.Participants)
}

func (s *EngineSuite) TestTimeoutWarnsOnceThenEnds() {
	m := s.createMatch()

	// Too young for timeout supervision
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))
	s.Empty(s.warnNotices())

	// Past the grace period the timeout window opens but no warning fires yet
	s.clock.Advance(301 * time.Second)
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))
	s.Empty(s.warnNotices())

	// Warn threshold into the window: exactly one warning however often ticked
	s.clock.Advance(300 * time.Second)
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))
	s.Len(s.warnNotices(), 1)

	// Timeout threshold: the match ends
	s.clock.Advance(300 * time.Second)
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))

	got, err := s.engine.Get(m.ID)
	s.Require().NoError(err)
	s.True(got.Ended())
	s.Equal(1, s.storage.recordWrites)
	s.Len(s.warnNotices(), 1)
}

func (s *EngineSuite) TestPresenceResetClearsTimeout() {
	m := s.createMatch()

	s.clock.Advance(301 * time.Second)
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))
	s.clock.Advance(300 * time.Second)
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))
	s.Len(s.warnNotices(), 1)

	// A participant coming back online resets the whole window
	s.presence.SetReachable("p-1", true)
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))

	got, err := s.engine.Get(m.ID)
	s.Require().NoError(err)
	s.Nil(got.TimeoutSince)
	s.False(got.TimeoutWarned)
	s.False(got.Ended())

	// Going dark again restarts from scratch, warning a second time
	s.presence.SetReachable("p-1", false)
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))
	s.clock.Advance(300 * time.Second)
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))
	s.Len(s.warnNotices(), 2)
}

func (s *EngineSuite) TestSummaryEditedOnlyOnChange() {
	m, err := s.engine.Create(s.ctx, participant("p-1"), []model.Participant{participant("p-2")})
	s.Require().NoError(err)

	before := len(s.editsFor(notify.Target(m.Channel)))
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))
	s.Require().NoError(s.engine.Tick(s.ctx, m.ID))
	s.Len(s.editsFor(notify.Target(m.Channel)), before)

	s.Require().NoError(s.engine.Join(s.ctx, m.ID, participant("p-2")))
	s.Len(s.editsFor(notify.Target(m.Channel)), before+1)
}

func (s *EngineSuite) TestIDCounterSurvivesRestart() {
	s.Require().NoError(s.storage.SaveMatchRecord(s.ctx, &model.MatchRecord{ID: 7, Owner: "p-9"}))

	restarted := NewEngine(DefaultConfig(), s.storage, s.clock, s.channels, s.notifier, s.presence, s.pool, s.queue, testutil.NopLogger())
	s.Require().NoError(restarted.Start(s.ctx))

	m, err := restarted.Create(s.ctx, participant("p-1"), []model.Participant{participant("p-2")})
	s.Require().NoError(err)
	s.Equal(model.MatchID(8), m.ID)
}

func (s *EngineSuite) TestRecentArchiveIsBounded() {
	cfg := DefaultConfig()
	cfg.EndGraceDelay = 0
	cfg.RecentLimit = 2
	engine := NewEngine(cfg, s.storage, s.clock, s.channels, s.notifier, s.presence, nil, nil, testutil.NopLogger())
	s.Require().NoError(engine.Start(s.ctx))

	var ids []model.MatchID
	for i := 0; i < 3; i++ {
		owner := participant("o-" + string(rune('a'+i)))
		m, err := engine.Create(s.ctx, owner, []model.Participant{participant("i-" + string(rune('a'+i)))})
		s.Require().NoError(err)
		s.Require().NoError(engine.End(s.ctx, m.ID))
		ids = append(ids, m.ID)
	}

	_, err := engine.Get(ids[0])
	s.ErrorIs(err, model.ErrMatchNotFound)
	for _, id := range ids[1:] {
		_, err := engine.Get(id)
		s.NoError(err)
	}
}

func (s *EngineSuite) TestListOrdersByID() {
	m1, err := s.engine.Create(s.ctx, participant("p-1"), []model.Participant{participant("p-2")})
	s.Require().NoError(err)
	m2, err := s.engine.Create(s.ctx, participant("p-3"), []model.Participant{participant("p-4")})
	s.Require().NoError(err)

	matches := s.engine.List()
	s.Require().Len(matches, 2)
	s.Equal(m1.ID, matches[0].ID)
	s.Equal(m2.ID, matches[1].ID)
}

func (s *EngineSuite) TestTickAllSweepsEveryLiveMatch() {
	m1 := s.createMatch()
	m2, err := s.engine.Create(s.ctx, participant("p-3"), []model.Participant{participant("p-4")})
	s.Require().NoError(err)
	s.Require().NoError(s.engine.Join(s.ctx, m2.ID, participant("p-4")))

	s.clock.Advance(301 * time.Second)
	s.engine.TickAll(s.ctx)
	s.clock.Advance(601 * time.Second)
	s.engine.TickAll(s.ctx)

	for _, id := range []model.MatchID{m1.ID, m2.ID} {
		got, err := s.engine.Get(id)
		s.Require().NoError(err)
		s.True(got.Ended())
	}
}

func (s *EngineSuite) warnNotices() []notify.Message {
	var out []notify.Message
	for _, msg := range s.notifier.Messages() {
		if !msg.Edited && msg.Opts.DeleteAfter > 0 && containsWarn(msg.Content) {
			out = append(out, msg)
		}
	}
	return out
}

func (s *EngineSuite) editsFor(target notify.Target) []notify.Message {
	var out []notify.Message
	for _, msg := range s.notifier.MessagesFor(target) {
		if msg.Edited {
			out = append(out, msg)
		}
	}
	return out
}

func containsWarn(content string) bool {
	return strings.Contains(content, "will timeout")
}

var _ storage.Storage = (*countingStorage)(nil)
