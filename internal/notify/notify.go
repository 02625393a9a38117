package notify

import (
	"context"
	"time"
)

// Target identifies where a notification goes: a session channel handle, the
// lobby dashboard, or the operator log channel
type Target string

const (
	// TargetOperator is the operator-facing log channel
	TargetOperator Target = "operator"
	// TargetDashboard is the lobby dashboard display
	TargetDashboard Target = "dashboard"
)

// Options control delivery of a notification
type Options struct {
	// Ephemeral messages are visible only to the addressed participant
	Ephemeral bool
	// DeleteAfter removes the message after the given duration (0 = keep)
	DeleteAfter time.Duration
	// Mentions lists participants the message should ping
	Mentions []string
}

// Sender delivers messages to targets. Delivery is fire-and-forget from the
// core's perspective: failures are logged, never allowed to block a state
// transition. Edit updates a target's persistent summary display in place.
type Sender interface {
	Send(ctx context.Context, target Target, message string, opts Options) error
	Edit(ctx context.Context, target Target, message string, opts Options) error
}
