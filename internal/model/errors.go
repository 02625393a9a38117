package model

import "errors"

// Common errors used across the application
var (
	// Lobby errors
	ErrAlreadyInLobby = errors.New("participant is already in the lobby")
	ErrNotInLobby     = errors.New("participant is not in the lobby")

	// Match errors
	ErrMatchNotFound  = errors.New("match not found")
	ErrMatchEnded     = errors.New("match has ended")
	ErrNotInvited     = errors.New("participant is not invited to this match")
	ErrNotInMatch     = errors.New("participant is not in this match")
	ErrAlreadyInMatch = errors.New("participant is already in a match")
	ErrSelfInvite     = errors.New("owner cannot invite themselves")
	ErrNoInvitees     = errors.New("a match needs at least one invitee")

	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountNotBusy      = errors.New("account is not currently lent out")
	ErrNoAccountsAvailable = errors.New("no accounts available")
)
