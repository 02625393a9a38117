package notify

import (
	"context"
	"sync"
)

// Message is one recorded notification
type Message struct {
	Target  Target
	Content string
	Opts    Options
	Edited  bool
}

// Recorder is an in-memory Sender that records everything it is asked to
// deliver. Used in tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// NewRecorder creates a new recording sender
func NewRecorder() *Recorder {
	return &Recorder{}
}

var _ Sender = (*Recorder)(nil)

func (r *Recorder) Send(ctx context.Context, target Target, message string, opts Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Target: target, Content: message, Opts: opts})
	return nil
}

func (r *Recorder) Edit(ctx context.Context, target Target, message string, opts Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Target: target, Content: message, Opts: opts, Edited: true})
	return nil
}

// Messages returns a copy of all recorded messages
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message{}, r.messages...)
}

// MessagesFor returns recorded messages addressed to the given target
func (r *Recorder) MessagesFor(target Target) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, m := range r.messages {
		if m.Target == target {
			out = append(out, m)
		}
	}
	return out
}

// Reset discards all recorded messages
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
