package response

import (
	"time"

	"github.com/duelhub/duelhub/internal/model"
	"github.com/duelhub/duelhub/internal/services/pool"
)

// Participant represents a participant in API responses
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// ParticipantFromModel converts a model.Participant
func ParticipantFromModel(p model.Participant) Participant {
	return Participant{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
	}
}

func participantsFromModel(ps []model.Participant) []Participant {
	out := make([]Participant, len(ps))
	for i, p := range ps {
		out[i] = ParticipantFromModel(p)
	}
	return out
}

// LogEntry is one timestamped log line
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

func logFromModel(entries []model.LogEntry) []LogEntry {
	out := make([]LogEntry, len(entries))
	for i, e := range entries {
		out[i] = LogEntry{Timestamp: e.Timestamp, Message: e.Message}
	}
	return out
}

// LobbyEntry represents one queued participant
type LobbyEntry struct {
	Participant Participant `json:"participant"`
	LobbiedAt   time.Time   `json:"lobbied_at"`
	Warned      bool        `json:"warned"`
}

// Lobby is the lobby view: queue order plus recent activity
type Lobby struct {
	Entries []LobbyEntry `json:"entries"`
	Logs    []LogEntry   `json:"logs,omitempty"`
}

// LobbyFromModel builds the lobby view
func LobbyFromModel(entries []model.LobbyEntry, logs []model.LogEntry) Lobby {
	out := Lobby{
		Entries: make([]LobbyEntry, len(entries)),
		Logs:    logFromModel(logs),
	}
	for i, e := range entries {
		out.Entries[i] = LobbyEntry{
			Participant: ParticipantFromModel(e.Participant),
			LobbiedAt:   e.LobbiedAt,
			Warned:      e.Warned,
		}
	}
	return out
}

// Match represents a match in API responses
type Match struct {
	ID         int64         `json:"id"`
	State      string        `json:"state"`
	Owner      Participant   `json:"owner"`
	Roster     []Participant `json:"roster"`
	Invited    []Participant `json:"invited,omitempty"`
	Departed   []Participant `json:"departed,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	EndedAt    *time.Time    `json:"ended_at,omitempty"`
	TimesOutAt *time.Time    `json:"times_out_at,omitempty"`
	Log        []LogEntry    `json:"log,omitempty"`
}

// MatchFromModel converts a model.Match. The timeout threshold is needed to
// project the deadline from the timeout stamp.
func MatchFromModel(m *model.Match, timeoutThreshold time.Duration) Match {
	return Match{
		ID:         int64(m.ID),
		State:      string(m.State),
		Owner:      ParticipantFromModel(m.Owner),
		Roster:     participantsFromModel(m.Roster),
		Invited:    participantsFromModel(m.Invited),
		Departed:   participantsFromModel(m.Departed),
		CreatedAt:  m.CreatedAt,
		EndedAt:    m.EndedAt,
		TimesOutAt: m.TimeoutAt(timeoutThreshold),
		Log:        logFromModel(m.Log),
	}
}

// MatchRecord represents a completed match record
type MatchRecord struct {
	ID           int64      `json:"id"`
	Owner        string     `json:"owner"`
	Participants []string   `json:"participants"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      time.Time  `json:"ended_at"`
	Log          []LogEntry `json:"log,omitempty"`
}

// MatchRecordFromModel converts a model.MatchRecord
func MatchRecordFromModel(r *model.MatchRecord) MatchRecord {
	participants := make([]string, len(r.Participants))
	for i, id := range r.Participants {
		participants[i] = string(id)
	}
	return MatchRecord{
		ID:           int64(r.ID),
		Owner:        string(r.Owner),
		Participants: participants,
		StartedAt:    r.StartedAt,
		EndedAt:      r.EndedAt,
		Log:          logFromModel(r.Log),
	}
}

// AccountHolder pairs an account with its current holder
type AccountHolder struct {
	AccountID     int    `json:"account_id"`
	ParticipantID string `json:"participant_id"`
}

// AccountsInfo summarises the shared account pool
type AccountsInfo struct {
	Available int             `json:"available"`
	Busy      int             `json:"busy"`
	Holders   []AccountHolder `json:"holders,omitempty"`
}

// AccountsInfoFromPool builds the pool summary
func AccountsInfoFromPool(available, busy int, holders []pool.Holder) AccountsInfo {
	out := AccountsInfo{Available: available, Busy: busy}
	for _, h := range holders {
		out.Holders = append(out.Holders, AccountHolder{
			AccountID:     int(h.AccountID),
			ParticipantID: string(h.ParticipantID),
		})
	}
	return out
}

// Account is the credential payload handed to a borrower
type Account struct {
	ID         int    `json:"id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	IngameName string `json:"ingame_name"`
	IngameID   int64  `json:"ingame_id"`
}

// AccountFromModel converts a model.Account
func AccountFromModel(a *model.Account) Account {
	return Account{
		ID:         int(a.ID),
		Username:   a.Username,
		Password:   a.Password,
		IngameName: a.IngameName,
		IngameID:   a.IngameID,
	}
}
