package model

import "time"

// AccountID uniquely identifies a pooled credential
type AccountID int

// Account is a shared external login lent to one participant at a time.
// Accounts are loaded once at startup from the external source of truth and
// never created at runtime.
type Account struct {
	ID AccountID
	// Username and Password are the credential itself, opaque to the core
	Username string
	Password string
	// IngameName is the in-game identity tied to this credential
	IngameName string
	// IngameID is the resolved in-game identifier; 0 means the identity
	// mapping is unresolved and the account must be dropped at load
	IngameID int64
	// Holder is the participant currently borrowing the account ("" when
	// the account is available)
	Holder ParticipantID
	// UsageHistory records every holder in acquisition order. It is
	// permanent: release never mutates it.
	UsageHistory []ParticipantID
}

// UsageCount returns how many times the given participant has held this
// account
func (a *Account) UsageCount(id ParticipantID) int {
	n := 0
	for _, h := range a.UsageHistory {
		if h == id {
			n++
		}
	}
	return n
}

// DistinctHolders returns the number of distinct participants that have ever
// held this account
func (a *Account) DistinctHolders() int {
	seen := make(map[ParticipantID]bool, len(a.UsageHistory))
	for _, h := range a.UsageHistory {
		seen[h] = true
	}
	return len(seen)
}

// AccountUsage is one durable audit entry written when an account is handed
// out
type AccountUsage struct {
	AccountID     AccountID
	ParticipantID ParticipantID
	DisplayName   string
	Date          time.Time
}
