package model

import "time"

// MatchID is a monotonically increasing match identifier. It persists across
// process restarts by seeding the counter from the highest stored record.
type MatchID int64

// MatchState represents the current phase of a match
type MatchState string

const (
	MatchStateInviting     MatchState = "inviting"      // Waiting for an invite to be accepted
	MatchStateGettingReady MatchState = "getting_ready" // Waiting for participants to come online
	MatchStatePlaying      MatchState = "playing"       // Currently playing
	MatchStateEnded        MatchState = "ended"         // Terminal
)

// DeriveMatchState computes the match state from current counts. The state is
// never stored as independently-settable truth; it is recomputed on every
// mutation and tick.
func DeriveMatchState(rosterSize, reachableCount int, ended bool) MatchState {
	switch {
	case ended:
		return MatchStateEnded
	case rosterSize < 2:
		return MatchStateInviting
	case reachableCount < 1:
		return MatchStateGettingReady
	default:
		return MatchStatePlaying
	}
}

// LogEntry is one timestamped message in a match or lobby log
type LogEntry struct {
	Timestamp time.Time
	Message   string
}

// Match is the state machine for one 1v1 session
type Match struct {
	ID    MatchID
	Owner Participant
	State MatchState

	// Invited holds pending invitees; acceptance moves them to the roster
	Invited []Participant
	// Roster holds currently-active participants
	Roster []Participant
	// Departed is append-only, for record keeping
	Departed []Participant

	CreatedAt time.Time
	EndedAt   *time.Time

	// TimeoutSince is set when the match first had fewer than one reachable
	// participant past the warn threshold; nil otherwise
	TimeoutSince *time.Time
	// TimeoutWarned is true once the warn-threshold notice has been emitted
	// for the current timeout window
	TimeoutWarned bool

	Log []LogEntry

	// Channel is the external session channel handle ("" if creation failed)
	Channel string
}

// InRoster reports whether the participant is currently active in the match
func (m *Match) InRoster(id ParticipantID) bool {
	for _, p := range m.Roster {
		if p.ID == id {
			return true
		}
	}
	return false
}

// IsInvited reports whether the participant has a pending invite
func (m *Match) IsInvited(id ParticipantID) bool {
	for _, p := range m.Invited {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Ended reports whether the match has reached its terminal state
func (m *Match) Ended() bool {
	return m.EndedAt != nil
}

// AllParticipantIDs returns the union of active and previously-departed
// participant ids, preserving first-seen order
func (m *Match) AllParticipantIDs() []ParticipantID {
	seen := make(map[ParticipantID]bool)
	var ids []ParticipantID
	for _, p := range append(append([]Participant{}, m.Roster...), m.Departed...) {
		if !seen[p.ID] {
			seen[p.ID] = true
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// TimeoutAt returns the instant the match will time out, or nil if no timeout
// window is open
func (m *Match) TimeoutAt(timeoutThreshold time.Duration) *time.Time {
	if m.TimeoutSince == nil {
		return nil
	}
	at := m.TimeoutSince.Add(timeoutThreshold)
	return &at
}

// MatchRecord is the durable form of a completed match
type MatchRecord struct {
	ID           MatchID
	Owner        ParticipantID
	Participants []ParticipantID
	StartedAt    time.Time
	EndedAt      time.Time
	Log          []LogEntry
}
