package channel

import (
	"context"

	"github.com/duelhub/duelhub/internal/model"
)

// Handle identifies a session channel on the hosting chat platform
type Handle string

// Provider creates and tears down per-match session channels. The real
// chat-platform adapter implements this interface outside the core; the core
// never inspects concrete platform types.
type Provider interface {
	// Create provisions a channel visible to the given participants and
	// returns its handle
	Create(ctx context.Context, name string, participants []model.ParticipantID) (Handle, error)

	// SetVisibility grants or revokes a participant's access to a channel
	SetVisibility(ctx context.Context, handle Handle, participant model.ParticipantID, visible bool) error

	// Delete removes a channel, recording the reason
	Delete(ctx context.Context, handle Handle, reason string) error
}
