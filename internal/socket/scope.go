package socket

import "sync"

// Scope ties a group of subscriptions to the lifetime of one screen or flow.
// Close releases all of them; handlers registered after Close are dropped at once.
type Scope struct {
	src Emitter

	mu     sync.Mutex
	subs   []Subscription
	closed bool
}

func NewScope(src Emitter) *Scope {
	return &Scope{src: src}
}

// On subscribes through the scope.
func (s *Scope) On(event string, h Handler) {
	sub := s.src.On(event, h)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		sub.Unsubscribe()
		return
	}
	s.subs = append(s.subs, sub)
}

// Emit forwards to the underlying emitter.
func (s *Scope) Emit(event string, payload any) error {
	return s.src.Emit(event, payload)
}

// Connected reports the underlying link state.
func (s *Scope) Connected() bool {
	return s.src.Connected()
}

// Close is idempotent.
func (s *Scope) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.closed = true
	s.mu.Unlock()
	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
