package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Lobby:
		o.printLobby(v)
	case Match:
		o.printMatch(v)
	case []Match:
		o.printMatches(v)
	case MatchRecord:
		o.printMatchRecord(v)
	case AccountsInfo:
		o.printAccountsInfo(v)
	case Account:
		o.printAccount(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Participant response type (matches API)
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// LobbyEntry response type
type LobbyEntry struct {
	Participant Participant `json:"participant"`
	LobbiedAt   time.Time   `json:"lobbied_at"`
	Warned      bool        `json:"warned"`
}

// LogEntry response type
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Lobby response type
type Lobby struct {
	Entries []LobbyEntry `json:"entries"`
	Logs    []LogEntry   `json:"logs,omitempty"`
}

// Match response type
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

// MatchRecord response type
type MatchRecord struct {
	ID           int64      `json:"id"`
	Owner        string     `json:"owner"`
	Participants []string   `json:"participants"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      time.Time  `json:"ended_at"`
	Log          []LogEntry `json:"log,omitempty"`
}

// AccountHolder response type
type AccountHolder struct {
	AccountID     int    `json:"account_id"`
	ParticipantID string `json:"participant_id"`
}

// AccountsInfo response type
type AccountsInfo struct {
	Available int             `json:"available"`
	Busy      int             `json:"busy"`
	Holders   []AccountHolder `json:"holders,omitempty"`
}

// Account response type
type Account struct {
	ID         int    `json:"id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	IngameName string `json:"ingame_name"`
	IngameID   int64  `json:"ingame_id"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func formatParticipants(ps []Participant) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = fmt.Sprintf("%s (%s)", p.DisplayName, p.ID)
	}
	return strings.Join(names, ", ")
}

func (o *Output) printLobby(l Lobby) {
	fmt.Printf("Lobby (%d queued):\n", len(l.Entries))
	for _, e := range l.Entries {
		warned := ""
		if e.Warned {
			warned = " [warned]"
		}
		fmt.Printf("  - %s (%s) since %s%s\n",
			e.Participant.DisplayName, e.Participant.ID,
			e.LobbiedAt.Format(time.Kitchen), warned)
	}
	if len(l.Logs) > 0 {
		fmt.Println("Recent activity:")
		for _, entry := range l.Logs {
			fmt.Printf("  %s  %s\n", entry.Timestamp.Format(time.Kitchen), entry.Message)
		}
	}
}

func (o *Output) printMatch(m Match) {
	fmt.Printf("Match: %d\n", m.ID)
	fmt.Printf("State: %s\n", m.State)
	fmt.Printf("Owner: %s (%s)\n", m.Owner.DisplayName, m.Owner.ID)
	fmt.Printf("Roster: %s\n", formatParticipants(m.Roster))
	if len(m.Invited) > 0 {
		fmt.Printf("Invited: %s\n", formatParticipants(m.Invited))
	}
	if len(m.Departed) > 0 {
		fmt.Printf("Departed: %s\n", formatParticipants(m.Departed))
	}
	if m.EndedAt != nil {
		fmt.Printf("Ended: %s\n", m.EndedAt.Format(time.RFC3339))
	}
	if m.TimesOutAt != nil {
		fmt.Printf("Times out at: %s\n", m.TimesOutAt.Format(time.Kitchen))
	}
	if len(m.Log) > 0 {
		fmt.Println("Log:")
		for _, entry := range m.Log {
			fmt.Printf("  %s  %s\n", entry.Timestamp.Format(time.Kitchen), entry.Message)
		}
	}
}

func (o *Output) printMatches(matches []Match) {
	fmt.Printf("Matches (%d):\n", len(matches))
	for _, m := range matches {
		fmt.Printf("  %d  %-14s owner=%s roster=%d\n", m.ID, m.State, m.Owner.ID, len(m.Roster))
	}
}

func (o *Output) printMatchRecord(r MatchRecord) {
	fmt.Printf("Match: %d\n", r.ID)
	fmt.Printf("Owner: %s\n", r.Owner)
	fmt.Printf("Participants: %s\n", strings.Join(r.Participants, ", "))
	fmt.Printf("Started: %s\n", r.StartedAt.Format(time.RFC3339))
	fmt.Printf("Ended: %s\n", r.EndedAt.Format(time.RFC3339))
	if len(r.Log) > 0 {
		fmt.Println("Log:")
		for _, entry := range r.Log {
			fmt.Printf("  %s  %s\n", entry.Timestamp.Format(time.Kitchen), entry.Message)
		}
	}
}

func (o *Output) printAccountsInfo(info AccountsInfo) {
	fmt.Printf("Available: %d\n", info.Available)
	fmt.Printf("In use: %d\n", info.Busy)
	for _, h := range info.Holders {
		fmt.Printf("  account %d -> %s\n", h.AccountID, h.ParticipantID)
	}
}

func (o *Output) printAccount(a Account) {
	fmt.Printf("Account: %d\n", a.ID)
	fmt.Printf("Username: %s\n", a.Username)
	fmt.Printf("Password: %s\n", a.Password)
	if a.IngameName != "" {
		fmt.Printf("Ingame: %s (%d)\n", a.IngameName, a.IngameID)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
