package model

// ParticipantID uniquely identifies a registered community member
type ParticipantID string

// Participant represents a registered community member. Registration itself
// happens outside this service; callers supply identity and display name.
type Participant struct {
	ID          ParticipantID
	DisplayName string
}
