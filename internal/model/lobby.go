package model

import "time"

// LobbyEntry represents a participant waiting in the lobby queue
type LobbyEntry struct {
	Participant Participant
	// LobbiedAt is refreshed by a timeout reset
	LobbiedAt time.Time
	// Warned is true only if a timeout warning has been emitted since the
	// last reset
	Warned bool
}
