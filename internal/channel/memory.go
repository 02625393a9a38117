package channel

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/duelhub/duelhub/internal/model"
)

// Channel is the in-memory record of one provisioned channel
type Channel struct {
	Handle        Handle
	Name          string
	Members       map[model.ParticipantID]bool
	Deleted       bool
	DeletedReason string
}

// Memory is an in-memory Provider, used in tests and standalone deployments
type Memory struct {
	mu       sync.Mutex
	channels map[Handle]*Channel
}

// NewMemory creates a new in-memory channel provider
func NewMemory() *Memory {
	return &Memory{
		channels: make(map[Handle]*Channel),
	}
}

var _ Provider = (*Memory)(nil)

func (m *Memory) Create(ctx context.Context, name string, participants []model.ParticipantID) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	handle := Handle(uuid.NewString())
	members := make(map[model.ParticipantID]bool, len(participants))
	for _, p := range participants {
		members[p] = true
	}
	m.channels[handle] = &Channel{
		Handle:  handle,
		Name:    name,
		Members: members,
	}
	return handle, nil
}

func (m *Memory) SetVisibility(ctx context.Context, handle Handle, participant model.ParticipantID, visible bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.channels[handle]
	if !ok {
		return ErrChannelNotFound
	}
	if visible {
		ch.Members[participant] = true
	} else {
		delete(ch.Members, participant)
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, handle Handle, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.channels[handle]
	if !ok {
		return ErrChannelNotFound
	}
	ch.Deleted = true
	ch.DeletedReason = reason
	return nil
}

// Get returns a snapshot of a channel, or nil if it does not exist. Intended
// for tests and diagnostics.
func (m *Memory) Get(handle Handle) *Channel {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.channels[handle]
	if !ok {
		return nil
	}
	members := make(map[model.ParticipantID]bool, len(ch.Members))
	for k, v := range ch.Members {
		members[k] = v
	}
	return &Channel{
		Handle:        ch.Handle,
		Name:          ch.Name,
		Members:       members,
		Deleted:       ch.Deleted,
		DeletedReason: ch.DeletedReason,
	}
}
