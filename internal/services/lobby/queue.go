package lobby

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/duelhub/duelhub/internal/dependencies/clock"
	"github.com/duelhub/duelhub/internal/model"
	"github.com/duelhub/duelhub/internal/notify"
)

// Config holds lobby queue settings
type Config struct {
	// Timeout is how long a participant may idle in the lobby before
	// eviction
	Timeout time.Duration
	// WarnWindow is how long before eviction the warning fires
	WarnWindow time.Duration
	// RecentLogLength and ExtendedLogLength bound the two activity log
	// views (recent < extended)
	RecentLogLength   int
	ExtendedLogLength int
}

// DefaultConfig returns the default lobby configuration
func DefaultConfig() Config {
	return Config{
		Timeout:           30 * time.Minute,
		WarnWindow:        5 * time.Minute,
		RecentLogLength:   8,
		ExtendedLogLength: 25,
	}
}

// MatchChecker reports whether a participant is attached to a live match.
// A participant can never be simultaneously queued and in a match.
type MatchChecker interface {
	InMatch(id model.ParticipantID) bool
}

// Queue is the ordered set of participants waiting to be matched
type Queue struct {
	mu      sync.Mutex
	entries []*model.LobbyEntry
	logs    []model.LogEntry

	cfg      Config
	clock    clock.Clock
	notifier notify.Sender
	logger   *slog.Logger
	matches  MatchChecker
}

// New creates a new lobby queue
func New(cfg Config, clk clock.Clock, notifier notify.Sender, logger *slog.Logger) *Queue {
	return &Queue{
		cfg:      cfg,
		clock:    clk,
		notifier: notifier,
		logger:   logger,
	}
}

// SetMatchChecker wires the match engine in after construction (the engine
// also references the queue, so one side is set late)
func (q *Queue) SetMatchChecker(m MatchChecker) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.matches = m
}

func (q *Queue) matchChecker() MatchChecker {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.matches
}

// Join adds a participant to the queue with the current timestamp
func (q *Queue) Join(p model.Participant) error {
	// Checked before taking q.mu: the engine takes its own locks and may in
	// turn call back into the queue
	if m := q.matchChecker(); m != nil && m.InMatch(p.ID) {
		return model.ErrAlreadyInMatch
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.indexOf(p.ID) >= 0 {
		return model.ErrAlreadyInLobby
	}

	q.entries = append(q.entries, &model.LobbyEntry{
		Participant: p,
		LobbiedAt:   q.clock.Now(),
	})
	q.log(fmt.Sprintf("%s joined the lobby.", p.DisplayName))
	return nil
}

// Leave removes a participant from the queue
func (q *Queue) Leave(id model.ParticipantID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexOf(id)
	if i < 0 {
		return model.ErrNotInLobby
	}
	name := q.entries[i].Participant.DisplayName
	q.remove(i)
	q.log(fmt.Sprintf("%s left the lobby.", name))
	return nil
}

// ResetTimeout refreshes a participant's lobbied-since timestamp and clears
// any pending warning
func (q *Queue) ResetTimeout(id model.ParticipantID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexOf(id)
	if i < 0 {
		return model.ErrNotInLobby
	}
	q.entries[i].LobbiedAt = q.clock.Now()
	q.entries[i].Warned = false
	return nil
}

// Contains reports whether the participant is currently queued
func (q *Queue) Contains(id model.ParticipantID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.indexOf(id) >= 0
}

// Sweep evaluates every entry against the two-stage warn/evict policy and
// refreshes the dashboard display. Invoked on a fixed interval.
func (q *Queue) Sweep(ctx context.Context) {
	q.mu.Lock()

	now := q.clock.Now()
	var warned, evicted []model.Participant
	kept := q.entries[:0]
	for _, entry := range q.entries {
		age := now.Sub(entry.LobbiedAt)
		switch {
		case age >= q.cfg.Timeout:
			evicted = append(evicted, entry.Participant)
			q.log(fmt.Sprintf("%s was removed from the lobby by timeout.", entry.Participant.DisplayName))
		case age >= q.cfg.Timeout-q.cfg.WarnWindow && !entry.Warned:
			entry.Warned = true
			warned = append(warned, entry.Participant)
			q.log(fmt.Sprintf("%s will soon be timed out of the lobby", entry.Participant.DisplayName))
			kept = append(kept, entry)
		default:
			kept = append(kept, entry)
		}
	}
	q.entries = kept
	dashboard := q.renderDashboard()

	q.mu.Unlock()

	// Notifications are fire-and-forget; failures never block the sweep
	for _, p := range evicted {
		msg := fmt.Sprintf("%s you have been removed from the lobby by timeout!", p.DisplayName)
		if err := q.notifier.Send(ctx, notify.TargetDashboard, msg, notify.Options{DeleteAfter: 30 * time.Second}); err != nil {
			q.logger.Error("timeout notice failed", slog.String("error", err.Error()))
		}
	}
	for _, p := range warned {
		msg := fmt.Sprintf("%s you will soon be timed out from the lobby, reset to stay.", p.DisplayName)
		if err := q.notifier.Send(ctx, notify.TargetDashboard, msg, notify.Options{DeleteAfter: 30 * time.Second}); err != nil {
			q.logger.Error("timeout warning failed", slog.String("error", err.Error()))
		}
	}
	if err := q.notifier.Edit(ctx, notify.TargetDashboard, dashboard, notify.Options{}); err != nil {
		q.logger.Error("dashboard update failed", slog.String("error", err.Error()))
	}
}

// Entries returns a snapshot of the queue in join order
func (q *Queue) Entries() []model.LobbyEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := make([]model.LobbyEntry, len(q.entries))
	for i, entry := range q.entries {
		entries[i] = *entry
	}
	return entries
}

// RecentLogs returns the most recent activity log entries
func (q *Queue) RecentLogs() []model.LogEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tail(q.cfg.RecentLogLength)
}

// ExtendedLogs returns the larger activity history window
func (q *Queue) ExtendedLogs() []model.LogEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tail(q.cfg.ExtendedLogLength)
}

// indexOf returns the entry index for the participant, or -1. Caller must
// hold q.mu.
func (q *Queue) indexOf(id model.ParticipantID) int {
	for i, entry := range q.entries {
		if entry.Participant.ID == id {
			return i
		}
	}
	return -1
}

// remove deletes the entry at i preserving order. Caller must hold q.mu.
func (q *Queue) remove(i int) {
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
}

// log appends to the bounded activity log. Caller must hold q.mu.
func (q *Queue) log(message string) {
	q.logs = append(q.logs, model.LogEntry{Timestamp: q.clock.Now(), Message: message})
	if len(q.logs) > q.cfg.ExtendedLogLength {
		q.logs = q.logs[len(q.logs)-q.cfg.ExtendedLogLength:]
	}
	q.logger.Info("lobby", slog.String("message", message))
}

// tail returns a copy of the last n log entries. Caller must hold q.mu.
func (q *Queue) tail(n int) []model.LogEntry {
	if n > len(q.logs) {
		n = len(q.logs)
	}
	return append([]model.LogEntry{}, q.logs[len(q.logs)-n:]...)
}

// renderDashboard builds the dashboard summary text. Caller must hold q.mu.
func (q *Queue) renderDashboard() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lobby: %d waiting\n", len(q.entries))
	for _, entry := range q.entries {
		fmt.Fprintf(&b, "- %s (since %s)\n", entry.Participant.DisplayName, entry.LobbiedAt.Format(time.Kitchen))
	}
	for _, entry := range q.tail(q.cfg.RecentLogLength) {
		fmt.Fprintf(&b, "%s %s\n", entry.Timestamp.Format(time.Kitchen), entry.Message)
	}
	return b.String()
}
