package bus

import (
	"context"
	"sync"

	"github.com/yungbote/crm-backend/internal/realtime"
)

// Memory is an in-process bus. It keeps every published event and fans them
// out to subscribers synchronously.
type Memory struct {
	mu     sync.Mutex
	events []realtime.Event
	subs   []func(realtime.Event)
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Publish(ctx context.Context, evt realtime.Event) error {
	m.mu.Lock()
	m.events = append(m.events, evt)
	subs := append([]func(realtime.Event){}, m.subs...)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(evt)
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, onEvent func(evt realtime.Event)) error {
	m.mu.Lock()
	m.subs = append(m.subs, onEvent)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }

// Events returns a copy of everything published so far.
func (m *Memory) Events() []realtime.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]realtime.Event(nil), m.events...)
}

// Types lists the event types published so far, in order.
func (m *Memory) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}
