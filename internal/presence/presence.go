package presence

import (
	"context"
	"sync"

	"github.com/duelhub/duelhub/internal/model"
)

// Source reports whether a participant is currently reachable for a match.
// It abstracts the platform's online/login signal; results are polled fresh
// on every evaluation and never cached by the core.
type Source interface {
	IsReachable(ctx context.Context, id model.ParticipantID) bool
}

// Static is a Source that reports the same value for every participant
type Static struct {
	Reachable bool
}

var _ Source = (*Static)(nil)

func (s *Static) IsReachable(ctx context.Context, id model.ParticipantID) bool {
	return s.Reachable
}

// Memory is a Source with per-participant reachability that can be updated
// at runtime (by the platform adapter, or by tests)
type Memory struct {
	mu        sync.RWMutex
	reachable map[model.ParticipantID]bool
}

// NewMemory creates a Memory source with everyone unreachable
func NewMemory() *Memory {
	return &Memory{
		reachable: make(map[model.ParticipantID]bool),
	}
}

var _ Source = (*Memory)(nil)

func (m *Memory) IsReachable(ctx context.Context, id model.ParticipantID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reachable[id]
}

// SetReachable updates a participant's reachability
func (m *Memory) SetReachable(id model.ParticipantID, reachable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if reachable {
		m.reachable[id] = true
	} else {
		delete(m.reachable, id)
	}
}
