package request

// Participant identifies a participant in request bodies
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// LobbyJoinRequest is the request body for joining the lobby
type LobbyJoinRequest struct {
	Participant Participant `json:"participant"`
}

// LobbyLeaveRequest is the request body for leaving the lobby
type LobbyLeaveRequest struct {
	ParticipantID string `json:"participant_id"`
}

// LobbyResetRequest is the request body for refreshing a lobby timeout
type LobbyResetRequest struct {
	ParticipantID string `json:"participant_id"`
}

// CreateMatchRequest is the request body for creating a match
type CreateMatchRequest struct {
	Owner   Participant   `json:"owner"`
	Invited []Participant `json:"invited"`
}

// MatchInviteRequest is the request body for inviting a participant
type MatchInviteRequest struct {
	Participant Participant `json:"participant"`
}

// MatchJoinRequest is the request body for accepting an invite
type MatchJoinRequest struct {
	Participant Participant `json:"participant"`
}

// MatchDeclineRequest is the request body for declining an invite
type MatchDeclineRequest struct {
	ParticipantID string `json:"participant_id"`
}

// MatchLeaveRequest is the request body for leaving a match
type MatchLeaveRequest struct {
	ParticipantID string `json:"participant_id"`
}

// AcquireAccountRequest is the request body for borrowing an account
type AcquireAccountRequest struct {
	Participant Participant `json:"participant"`
}

// ReleaseAccountRequest is the request body for returning an account
type ReleaseAccountRequest struct {
	AccountID int `json:"account_id"`
}

// PresenceRequest is the request body for reporting reachability
type PresenceRequest struct {
	Reachable bool `json:"reachable"`
}
