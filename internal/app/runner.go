package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"classbattle-client/internal/domain"
	"classbattle-client/internal/socket"
	"go.uber.org/zap"
)

// SessionOptions tune the game runners.
type SessionOptions struct {
	QuestionDuration time.Duration
	Feedback         time.Duration
	Podium           time.Duration
	TickEvery        time.Duration
	Now              func() time.Time
	Logger           *zap.Logger
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.QuestionDuration <= 0 {
		o.QuestionDuration = 20 * time.Second
	}
	if o.Feedback <= 0 {
		o.Feedback = 2 * time.Second
	}
	if o.Podium <= 0 {
		o.Podium = 5 * time.Second
	}
	if o.TickEvery <= 0 {
		o.TickEvery = 250 * time.Millisecond
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

type command[E any] struct {
	ev    E
	reply chan error
}

// runner owns one machine state. Socket handlers, the ticker and user actions
// post events to the inbox; a single goroutine applies them in arrival order,
// runs the effects and broadcasts the new state.
type runner[S, E, F any] struct {
	apply  func(S, E) (S, []F, error)
	exec   func(F)
	tick   E
	scope  *socket.Scope
	logger *zap.Logger
	every  time.Duration

	inbox     chan command[E]
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	mu          sync.RWMutex
	state       S
	subscribers map[chan S]struct{}
	timers      map[uint64]*time.Timer
	nextTimer   uint64
}

func newRunner[S, E, F any](em socket.Emitter, initial S, apply func(S, E) (S, []F, error), tick E, opts SessionOptions) *runner[S, E, F] {
	return &runner[S, E, F]{
		apply:       apply,
		tick:        tick,
		scope:       socket.NewScope(em),
		logger:      opts.Logger,
		every:       opts.TickEvery,
		inbox:       make(chan command[E], 64),
		done:        make(chan struct{}),
		state:       initial,
		subscribers: make(map[chan S]struct{}),
		timers:      make(map[uint64]*time.Timer),
	}
}

func (r *runner[S, E, F]) start(ctx context.Context) {
	r.wg.Add(1)
	go r.loop(ctx)
}

func (r *runner[S, E, F]) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-r.done:
			return
		case <-ticker.C:
			r.step(r.tick)
		case cmd := <-r.inbox:
			err := r.step(cmd.ev)
			if cmd.reply != nil {
				cmd.reply <- err
			}
		}
	}
}

func (r *runner[S, E, F]) step(ev E) error {
	r.mu.RLock()
	current := r.state
	r.mu.RUnlock()

	next, effects, err := r.apply(current, ev)
	if err != nil {
		r.logger.Debug("event rejected", zap.String("event", eventName(ev)), zap.Error(err))
		return err
	}

	r.mu.Lock()
	r.state = next
	r.broadcastLocked()
	r.mu.Unlock()

	for _, fx := range effects {
		r.exec(fx)
	}
	return nil
}

// post queues an event without waiting. Used from socket handlers and timers.
func (r *runner[S, E, F]) post(ev E) {
	select {
	case r.inbox <- command[E]{ev: ev}:
	case <-r.done:
	}
}

// send queues an event and waits for the transition, returning the reason
// when the machine rejects it.
func (r *runner[S, E, F]) send(ctx context.Context, ev E) error {
	reply := make(chan error, 1)
	select {
	case r.inbox <- command[E]{ev: ev, reply: reply}:
	case <-r.done:
		return domain.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return domain.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// after posts ev once d elapses, unless the runner closes first. A fired
// timer drops itself from the pending set.
func (r *runner[S, E, F]) after(d time.Duration, ev E) {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.done:
		return
	default:
	}
	r.nextTimer++
	id := r.nextTimer
	r.timers[id] = time.AfterFunc(d, func() {
		r.mu.Lock()
		delete(r.timers, id)
		r.mu.Unlock()
		r.post(ev)
	})
}

func (r *runner[S, E, F]) pendingTimers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.timers)
}

// Snapshot returns the current state.
func (r *runner[S, E, F]) Snapshot() S {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Current is Snapshot for callers that only need JSON.
func (r *runner[S, E, F]) Current() any {
	return r.Snapshot()
}

// Subscribe returns a channel that receives state updates, starting with
// the current one. Slow readers only miss intermediate states. The caller
// must invoke the returned cancel function to avoid leaks.
func (r *runner[S, E, F]) Subscribe() (<-chan S, func()) {
	ch := make(chan S, 8)

	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	// sent under the lock so a concurrent broadcast cannot land first
	ch <- r.state
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

// Watch is Subscribe with the state type erased, for transports that only
// encode JSON.
func (r *runner[S, E, F]) Watch() (<-chan any, func()) {
	typed, cancel := r.Subscribe()
	out := make(chan any, 1)
	go func() {
		defer close(out)
		for st := range typed {
			select {
			case out <- st:
			default:
				select {
				case <-out:
				default:
				}
				out <- st
			}
		}
	}()
	return out, cancel
}

func (r *runner[S, E, F]) broadcastLocked() {
	for ch := range r.subscribers {
		select {
		case ch <- r.state:
		default:
			// drop the oldest so a slow reader never blocks the loop
			select {
			case <-ch:
			default:
			}
			ch <- r.state
		}
	}
}

// Close releases socket listeners, stops timers and ends subscriptions. It is
// idempotent.
func (r *runner[S, E, F]) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
		r.scope.Close()
		r.mu.Lock()
		for id, t := range r.timers {
			t.Stop()
			delete(r.timers, id)
		}
		for ch := range r.subscribers {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	})
}

// Wait blocks until the loop goroutine exits.
func (r *runner[S, E, F]) Wait() {
	r.wg.Wait()
}

func (r *runner[S, E, F]) emit(event string, payload any) {
	if err := r.scope.Emit(event, payload); err != nil {
		r.logger.Warn("emit failed", zap.String("event", event), zap.Error(err))
	}
}

func eventName(ev any) string {
	return fmt.Sprintf("%T", ev)
}
