// Package sockettest provides in-process stand-ins for the Socket.IO server.
package sockettest

import (
	"encoding/json"
	"sync"

	"classbattle-client/internal/domain"
	"classbattle-client/internal/socket"
)

// Emitted is one recorded outbound event.
type Emitted struct {
	Event   string
	Payload json.RawMessage
}

type entry struct {
	id uint64
	fn socket.Handler
}

// Bus implements socket.Emitter without a network. Deliver plays the server.
type Bus struct {
	mu        sync.Mutex
	handlers  map[string][]entry
	nextID    uint64
	emitted   []Emitted
	connected bool

	// OnEmit, when set, runs after each successful emit (outside the lock),
	// which lets tests answer requests.
	OnEmit func(event string, payload json.RawMessage)
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]entry), connected: true}
}

func (b *Bus) Emit(event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b.mu.Lock()
	if !b.connected {
		b.mu.Unlock()
		return domain.ErrNotConnected
	}
	b.emitted = append(b.emitted, Emitted{Event: event, Payload: raw})
	hook := b.OnEmit
	b.mu.Unlock()
	if hook != nil {
		hook(event, raw)
	}
	return nil
}

func (b *Bus) On(event string, h socket.Handler) socket.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers[event] = append(b.handlers[event], entry{id: b.nextID, fn: h})
	return &sub{bus: b, event: event, id: b.nextID}
}

func (b *Bus) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

// Deliver marshals payload and runs the handlers for event.
func (b *Bus) Deliver(event string, payload any) {
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	b.mu.Lock()
	entries := append([]entry(nil), b.handlers[event]...)
	b.mu.Unlock()
	for _, e := range entries {
		e.fn(raw)
	}
}

// SetConnected flips the link state and delivers connect/disconnect.
func (b *Bus) SetConnected(up bool) {
	b.mu.Lock()
	b.connected = up
	b.mu.Unlock()
	if up {
		b.Deliver(socket.EventConnect, nil)
	} else {
		b.Deliver(socket.EventDisconnect, "transport close")
	}
}

// Emitted returns a copy of the recorded emits, optionally filtered by event.
func (b *Bus) Emitted(event string) []Emitted {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Emitted, 0, len(b.emitted))
	for _, e := range b.emitted {
		if event == "" || e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// Handlers counts live handlers for event.
func (b *Bus) Handlers(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[event])
}

type sub struct {
	bus   *Bus
	event string
	id    uint64
	once  sync.Once
}

func (s *sub) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()
		entries := s.bus.handlers[s.event]
		for i, e := range entries {
			if e.id == s.id {
				s.bus.handlers[s.event] = append(entries[:i:i], entries[i+1:]...)
				break
			}
		}
	})
}
