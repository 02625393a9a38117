package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/duelhub/duelhub/internal/channel"
	"github.com/duelhub/duelhub/internal/dependencies/clock"
	"github.com/duelhub/duelhub/internal/model"
	"github.com/duelhub/duelhub/internal/notify"
	"github.com/duelhub/duelhub/internal/presence"
	"github.com/duelhub/duelhub/internal/services/lobby"
	"github.com/duelhub/duelhub/internal/services/pool"
	"github.com/duelhub/duelhub/internal/storage"
)

// Config holds match engine settings
type Config struct {
	// WarnThreshold is the timeout age at which the one-time warning fires
	WarnThreshold time.Duration
	// TimeoutThreshold is the timeout age at which the match is ended
	TimeoutThreshold time.Duration
	// EndGraceDelay is how long the termination notice stays readable
	// before the roster is drained and the channel deleted
	EndGraceDelay time.Duration
	// RecentLimit bounds the archive of recently-ended matches
	RecentLimit int
}

// DefaultConfig returns the default match engine configuration
func DefaultConfig() Config {
	return Config{
		WarnThreshold:    300 * time.Second,
		TimeoutThreshold: 600 * time.Second,
		EndGraceDelay:    10 * time.Second,
		RecentLimit:      50,
	}
}

// liveMatch pairs a match with its single-writer lock and the cached summary
// text used to suppress redundant display edits
type liveMatch struct {
	mu      sync.Mutex
	m       *model.Match
	summary string
}

// Engine owns the set of live matches. Mutation on one match is sequential
// (per-entity lock); matches never block each other.
type Engine struct {
	mu          sync.RWMutex
	live        map[model.MatchID]*liveMatch
	recent      map[model.MatchID]*model.Match
	recentOrder []model.MatchID
	lastID      model.MatchID

	cfg      Config
	storage  storage.Storage
	clock    clock.Clock
	channels channel.Provider
	notifier notify.Sender
	presence presence.Source
	pool     *pool.Service
	lobby    *lobby.Queue
	logger   *slog.Logger
}

// NewEngine creates a new match engine. Call Start before creating matches.
func NewEngine(
	cfg Config,
	storage storage.Storage,
	clk clock.Clock,
	channels channel.Provider,
	notifier notify.Sender,
	presenceSrc presence.Source,
	accountPool *pool.Service,
	lobbyQueue *lobby.Queue,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		live:     make(map[model.MatchID]*liveMatch),
		recent:   make(map[model.MatchID]*model.Match),
		cfg:      cfg,
		storage:  storage,
		clock:    clk,
		channels: channels,
		notifier: notifier,
		presence: presenceSrc,
		pool:     accountPool,
		lobby:    lobbyQueue,
		logger:   logger,
	}
}

var _ lobby.MatchChecker = (*Engine)(nil)

// Start seeds the match id counter from the highest stored record so ids stay
// monotonic across restarts
func (e *Engine) Start(ctx context.Context) error {
	latest, err := e.storage.LatestMatchID(ctx)
	if err != nil {
		return fmt.Errorf("seed match id counter: %w", err)
	}

	e.mu.Lock()
	e.lastID = latest
	e.mu.Unlock()

	e.logger.Info("match id counter seeded", slog.Int64("last_id", int64(latest)))
	return nil
}

// Create opens a new match owned by the given participant with pending
// invites. The owner leaves the lobby if queued; invitees join via Join once
// they accept.
func (e *Engine) Create(ctx context.Context, owner model.Participant, invited []model.Participant) (*model.Match, error) {
	if len(invited) == 0 {
		return nil, model.ErrNoInvitees
	}
	for _, p := range invited {
		if p.ID == owner.ID {
			return nil, model.ErrSelfInvite
		}
	}
	if e.InMatch(owner.ID) {
		return nil, model.ErrAlreadyInMatch
	}

	// A participant is never simultaneously queued and in a match
	if e.lobby != nil {
		if err := e.lobby.Leave(owner.ID); err != nil && !errors.Is(err, model.ErrNotInLobby) {
			return nil, err
		}
	}

	e.mu.Lock()
	e.lastID++
	id := e.lastID
	e.mu.Unlock()

	now := e.clock.Now()
	m := &model.Match{
		ID:        id,
		Owner:     owner,
		Invited:   append([]model.Participant{}, invited...),
		Roster:    []model.Participant{owner},
		CreatedAt: now,
	}
	m.State = model.DeriveMatchState(len(m.Roster), 0, false)

	participantIDs := []model.ParticipantID{owner.ID}
	for _, p := range invited {
		participantIDs = append(participantIDs, p.ID)
	}
	handle, err := e.channels.Create(ctx, fmt.Sprintf("match-%d", id), participantIDs)
	if err != nil {
		e.reportExternalFailure(ctx, id, "session channel creation failed", err)
	} else {
		m.Channel = string(handle)
	}

	lm := &liveMatch{m: m}
	e.appendLog(m, fmt.Sprintf("Owner: %s[%s]", owner.DisplayName, owner.ID))

	e.mu.Lock()
	e.live[id] = lm
	e.mu.Unlock()

	lm.mu.Lock()
	e.refreshSummary(ctx, lm)
	e.sendToMatch(ctx, m, fmt.Sprintf("%s invited %s to match: %d.", owner.DisplayName, joinNames(invited), id), notify.Options{})
	snapshot := copyMatch(m)
	lm.mu.Unlock()

	return snapshot, nil
}

// Invite adds a pending invite; idempotent
func (e *Engine) Invite(ctx context.Context, id model.MatchID, p model.Participant) error {
	lm, err := e.liveMatchByID(id)
	if err != nil {
		return err
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	if lm.m.Ended() {
		return model.ErrMatchEnded
	}
	if p.ID == lm.m.Owner.ID {
		return model.ErrSelfInvite
	}
	if lm.m.IsInvited(p.ID) || lm.m.InRoster(p.ID) {
		return nil
	}
	lm.m.Invited = append(lm.m.Invited, p)
	e.appendLog(lm.m, fmt.Sprintf("%s was invited to the match", p.DisplayName))
	return nil
}

// DeclineInvite removes a pending invite; idempotent
func (e *Engine) DeclineInvite(ctx context.Context, id model.MatchID, participantID model.ParticipantID) error {
	lm, err := e.liveMatchByID(id)
	if err != nil {
		return err
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	for i, p := range lm.m.Invited {
		if p.ID == participantID {
			lm.m.Invited = append(lm.m.Invited[:i], lm.m.Invited[i+1:]...)
			e.appendLog(lm.m, fmt.Sprintf("%s declined the match invitation", p.DisplayName))
			break
		}
	}
	return nil
}

// Join accepts a pending invite, moving the participant onto the roster
func (e *Engine) Join(ctx context.Context, id model.MatchID, p model.Participant) error {
	if e.inOtherMatch(p.ID, id) {
		return model.ErrAlreadyInMatch
	}

	lm, err := e.liveMatchByID(id)
	if err != nil {
		return err
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	if lm.m.Ended() {
		return model.ErrMatchEnded
	}
	if lm.m.InRoster(p.ID) {
		return model.ErrAlreadyInMatch
	}
	if !lm.m.IsInvited(p.ID) {
		return model.ErrNotInvited
	}

	for i, inv := range lm.m.Invited {
		if inv.ID == p.ID {
			lm.m.Invited = append(lm.m.Invited[:i], lm.m.Invited[i+1:]...)
			break
		}
	}
	lm.m.Roster = append(lm.m.Roster, p)

	if e.lobby != nil {
		if err := e.lobby.Leave(p.ID); err != nil && !errors.Is(err, model.ErrNotInLobby) {
			e.logger.Error("lobby eviction on match join failed", slog.String("error", err.Error()))
		}
	}

	if lm.m.Channel != "" {
		if err := e.channels.SetVisibility(ctx, channel.Handle(lm.m.Channel), p.ID, true); err != nil {
			e.reportExternalFailure(ctx, id, "channel access grant failed", err)
		}
	}

	e.appendLog(lm.m, fmt.Sprintf("%s joined the match", p.DisplayName))
	e.deriveState(ctx, lm.m)
	e.refreshSummary(ctx, lm)
	return nil
}

// Leave removes a participant from the active roster. The departing
// participant's account (if any) is released, and an empty roster ends the
// match.
func (e *Engine) Leave(ctx context.Context, id model.MatchID, participantID model.ParticipantID) error {
	lm, err := e.liveMatchByID(id)
	if err != nil {
		return err
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	if err := e.leaveLocked(ctx, lm, participantID); err != nil {
		return err
	}
	e.deriveState(ctx, lm.m)
	e.refreshSummary(ctx, lm)
	return nil
}

// End terminates a match. Idempotent: ending an already-ended match is a
// no-op.
func (e *Engine) End(ctx context.Context, id model.MatchID) error {
	lm, err := e.liveMatchByID(id)
	if err != nil {
		e.mu.RLock()
		_, archived := e.recent[id]
		e.mu.RUnlock()
		if archived {
			return nil
		}
		return err
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	e.endLocked(ctx, lm)
	return nil
}

// Tick advances one match's timeout supervision and state
func (e *Engine) Tick(ctx context.Context, id model.MatchID) error {
	lm, err := e.liveMatchByID(id)
	if err != nil {
		return err
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	e.tickLocked(ctx, lm)
	return nil
}

// TickAll ticks every live match. Invoked on a fixed interval by the
// supervisor; tick calls are idempotent and side-effect-bounded.
func (e *Engine) TickAll(ctx context.Context) {
	e.mu.RLock()
	lms := make([]*liveMatch, 0, len(e.live))
	for _, lm := range e.live {
		lms = append(lms, lm)
	}
	e.mu.RUnlock()

	for _, lm := range lms {
		lm.mu.Lock()
		if !lm.m.Ended() {
			e.tickLocked(ctx, lm)
		}
		lm.mu.Unlock()
	}
}

// Get returns a snapshot of a live or recently-ended match
func (e *Engine) Get(id model.MatchID) (*model.Match, error) {
	lm, err := e.liveMatchByID(id)
	if err == nil {
		lm.mu.Lock()
		defer lm.mu.Unlock()
		return copyMatch(lm.m), nil
	}

	e.mu.RLock()
	m, ok := e.recent[id]
	e.mu.RUnlock()
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return copyMatch(m), nil
}

// List returns snapshots of all live matches ordered by id
func (e *Engine) List() []*model.Match {
	e.mu.RLock()
	lms := make([]*liveMatch, 0, len(e.live))
	for _, lm := range e.live {
		lms = append(lms, lm)
	}
	e.mu.RUnlock()

	matches := make([]*model.Match, 0, len(lms))
	for _, lm := range lms {
		lm.mu.Lock()
		matches = append(matches, copyMatch(lm.m))
		lm.mu.Unlock()
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches
}

// InMatch reports whether the participant is on any live match's roster
func (e *Engine) InMatch(id model.ParticipantID) bool {
	return e.inOtherMatch(id, 0)
}

// TimeoutConfig exposes the warn/timeout thresholds for summary rendering
func (e *Engine) TimeoutConfig() Config {
	return e.cfg
}

// inOtherMatch reports roster membership in any live match except the given
// one. Never holds e.mu while taking a per-match lock.
func (e *Engine) inOtherMatch(id model.ParticipantID, exclude model.MatchID) bool {
	e.mu.RLock()
	lms := make([]*liveMatch, 0, len(e.live))
	for mid, lm := range e.live {
		if mid != exclude {
			lms = append(lms, lm)
		}
	}
	e.mu.RUnlock()

	for _, lm := range lms {
		lm.mu.Lock()
		in := lm.m.InRoster(id)
		lm.mu.Unlock()
		if in {
			return true
		}
	}
	return false
}

func (e *Engine) liveMatchByID(id model.MatchID) (*liveMatch, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	lm, ok := e.live[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return lm, nil
}

// leaveLocked removes a participant from the roster. Caller must hold lm.mu.
func (e *Engine) leaveLocked(ctx context.Context, lm *liveMatch, participantID model.ParticipantID) error {
	m := lm.m

	idx := -1
	for i, p := range m.Roster {
		if p.ID == participantID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.ErrNotInMatch
	}

	p := m.Roster[idx]
	m.Roster = append(m.Roster[:idx], m.Roster[idx+1:]...)
	m.Departed = append(m.Departed, p)

	if m.Channel != "" {
		if err := e.channels.SetVisibility(ctx, channel.Handle(m.Channel), p.ID, false); err != nil {
			e.reportExternalFailure(ctx, m.ID, "channel access revoke failed", err)
		}
	}

	if e.pool != nil {
		if accountID, ok := e.pool.ReleaseFor(ctx, p.ID); ok {
			e.appendLog(m, fmt.Sprintf("account [%d] released by %s", accountID, p.DisplayName))
		}
	}

	e.appendLog(m, fmt.Sprintf("%s left the match", p.DisplayName))
	e.sendToMatch(ctx, m, fmt.Sprintf("%s has left the match.", p.DisplayName), notify.Options{DeleteAfter: 30 * time.Second})

	if len(m.Roster) == 0 && !m.Ended() {
		e.endLocked(ctx, lm)
	}
	return nil
}

// endLocked runs the full termination sequence. Once started it runs to
// completion; late joins fail because the end stamp is already set. Caller
// must hold lm.mu.
func (e *Engine) endLocked(ctx context.Context, lm *liveMatch) {
	m := lm.m
	if m.Ended() {
		return
	}

	now := e.clock.Now()
	m.EndedAt = &now
	m.State = model.MatchStateEnded

	e.sendToMatch(ctx, m, fmt.Sprintf("Match ID: %d Ended, closing match channel...", m.ID), notify.Options{})

	// Leave the termination notice readable before tearing the channel down
	if e.cfg.EndGraceDelay > 0 {
		time.Sleep(e.cfg.EndGraceDelay)
	}

	// Drain remaining participants through the normal leave path so account
	// release and logging stay consistent
	for len(m.Roster) > 0 {
		if err := e.leaveLocked(ctx, lm, m.Roster[0].ID); err != nil {
			break
		}
	}

	if m.Channel != "" {
		if err := e.channels.Delete(ctx, channel.Handle(m.Channel), "Match Ended"); err != nil {
			e.reportExternalFailure(ctx, m.ID, "channel deletion failed", err)
		}
	}

	e.appendLog(m, "Match Ended")

	record := &model.MatchRecord{
		ID:           m.ID,
		Owner:        m.Owner.ID,
		Participants: m.AllParticipantIDs(),
		StartedAt:    m.CreatedAt,
		EndedAt:      *m.EndedAt,
		Log:          append([]model.LogEntry{}, m.Log...),
	}
	if err := e.storage.SaveMatchRecord(ctx, record); err != nil {
		e.reportExternalFailure(ctx, m.ID, "match record write failed", err)
	}

	e.mu.Lock()
	delete(e.live, m.ID)
	e.recent[m.ID] = m
	e.recentOrder = append(e.recentOrder, m.ID)
	if e.cfg.RecentLimit > 0 && len(e.recentOrder) > e.cfg.RecentLimit {
		oldest := e.recentOrder[0]
		e.recentOrder = e.recentOrder[1:]
		delete(e.recent, oldest)
	}
	e.mu.Unlock()
}

// tickLocked advances timeout supervision and recomputes state. Caller must
// hold lm.mu.
func (e *Engine) tickLocked(ctx context.Context, lm *liveMatch) {
	m := lm.m
	reachable := e.countReachable(ctx, m)

	if reachable >= 1 || e.clock.Since(m.CreatedAt) < e.cfg.WarnThreshold {
		m.TimeoutSince = nil
		m.TimeoutWarned = false
	} else if m.TimeoutSince == nil {
		now := e.clock.Now()
		m.TimeoutSince = &now
	} else {
		age := e.clock.Since(*m.TimeoutSince)
		switch {
		case age >= e.cfg.TimeoutThreshold:
			e.appendLog(m, "Match timed out for inactivity...")
			e.sendToMatch(ctx, m, fmt.Sprintf("%s Match is being closed due to inactivity", joinNames(m.Roster)), notify.Options{})
			e.endLocked(ctx, lm)
			return
		case age >= e.cfg.WarnThreshold && !m.TimeoutWarned:
			m.TimeoutWarned = true
			deadline := m.TimeoutSince.Add(e.cfg.TimeoutThreshold)
			msg := fmt.Sprintf("%s No online players detected, match will timeout at %s! Log in or reset!",
				joinNames(m.Roster), deadline.Format(time.Kitchen))
			e.sendToMatch(ctx, m, msg, notify.Options{DeleteAfter: 30 * time.Second, Mentions: mentionIDs(m.Roster)})
		}
	}

	e.deriveState(ctx, m)
	e.refreshSummary(ctx, lm)
}

// deriveState recomputes the match state from current counts
func (e *Engine) deriveState(ctx context.Context, m *model.Match) {
	m.State = model.DeriveMatchState(len(m.Roster), e.countReachable(ctx, m), m.Ended())
}

// countReachable polls the presence source for every roster member. Results
// are never cached beyond one evaluation.
func (e *Engine) countReachable(ctx context.Context, m *model.Match) int {
	n := 0
	for _, p := range m.Roster {
		if e.presence.IsReachable(ctx, p.ID) {
			n++
		}
	}
	return n
}

// refreshSummary edits the match's summary display only when its content
// actually changed. Caller must hold lm.mu.
func (e *Engine) refreshSummary(ctx context.Context, lm *liveMatch) {
	summary := renderSummary(lm.m, e.cfg.TimeoutThreshold)
	if summary == lm.summary {
		return
	}
	lm.summary = summary
	if err := e.notifier.Edit(ctx, e.targetFor(lm.m), summary, notify.Options{}); err != nil {
		e.logger.Error("summary update failed",
			slog.Int64("match_id", int64(lm.m.ID)),
			slog.String("error", err.Error()),
		)
	}
}

// appendLog records a match log entry; entries are strictly ordered by the
// order operations were applied
func (e *Engine) appendLog(m *model.Match, message string) {
	m.Log = append(m.Log, model.LogEntry{Timestamp: e.clock.Now(), Message: message})
	e.logger.Info("match log",
		slog.Int64("match_id", int64(m.ID)),
		slog.String("message", message),
	)
}

// sendToMatch delivers a notification to the match channel (or the operator
// channel when no session channel exists). Fire-and-forget.
func (e *Engine) sendToMatch(ctx context.Context, m *model.Match, message string, opts notify.Options) {
	if err := e.notifier.Send(ctx, e.targetFor(m), message, opts); err != nil {
		e.logger.Error("match notice failed",
			slog.Int64("match_id", int64(m.ID)),
			slog.String("error", err.Error()),
		)
	}
}

func (e *Engine) targetFor(m *model.Match) notify.Target {
	if m.Channel == "" {
		return notify.TargetOperator
	}
	return notify.Target(m.Channel)
}

func (e *Engine) reportExternalFailure(ctx context.Context, id model.MatchID, what string, err error) {
	e.logger.Error(what,
		slog.Int64("match_id", int64(id)),
		slog.String("error", err.Error()),
	)
	msg := fmt.Sprintf("%s for match [%d]: %v", what, id, err)
	if nerr := e.notifier.Send(ctx, notify.TargetOperator, msg, notify.Options{}); nerr != nil {
		e.logger.Error("operator notice failed", slog.String("error", nerr.Error()))
	}
}

// renderSummary builds the match info display text
func renderSummary(m *model.Match, timeoutThreshold time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Match %d [%s]\n", m.ID, m.State)
	fmt.Fprintf(&b, "Owner: %s\n", m.Owner.DisplayName)
	fmt.Fprintf(&b, "Players: %s\n", joinNames(m.Roster))
	if len(m.Invited) > 0 {
		fmt.Fprintf(&b, "Invited: %s\n", joinNames(m.Invited))
	}
	if deadline := m.TimeoutAt(timeoutThreshold); deadline != nil {
		fmt.Fprintf(&b, "Times out at %s\n", deadline.Format(time.Kitchen))
	}
	return b.String()
}

func joinNames(participants []model.Participant) string {
	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = p.DisplayName
	}
	return strings.Join(names, ", ")
}

func mentionIDs(participants []model.Participant) []string {
	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = string(p.ID)
	}
	return ids
}

func copyMatch(m *model.Match) *model.Match {
	c := *m
	c.Invited = append([]model.Participant{}, m.Invited...)
	c.Roster = append([]model.Participant{}, m.Roster...)
	c.Departed = append([]model.Participant{}, m.Departed...)
	c.Log = append([]model.LogEntry{}, m.Log...)
	if m.EndedAt != nil {
		t := *m.EndedAt
		c.EndedAt = &t
	}
	if m.TimeoutSince != nil {
		t := *m.TimeoutSince
		c.TimeoutSince = &t
	}
	return &c
}
