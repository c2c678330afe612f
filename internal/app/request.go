package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"classbattle-client/internal/domain"
	"classbattle-client/internal/protocol"
	"classbattle-client/internal/socket"
	"github.com/pkg/errors"
)

// Reply is the event that settled a request.
type Reply struct {
	Event   string
	Payload json.RawMessage
}

// matcher decides whether an inbound event settles the exchange. Returning
// done=false keeps waiting.
type matcher func(event string, payload json.RawMessage) (done bool, err error)

// await registers listeners, emits, then waits for the first of: a matching
// event, the timeout, or ctx. Listeners are released before it returns and
// the outcome is decided exactly once.
func await(ctx context.Context, em socket.Emitter, event string, payload any, listen []string, match matcher, timeout time.Duration) (Reply, error) {
	scope := socket.NewScope(em)
	defer scope.Close()

	type outcome struct {
		reply Reply
		err   error
	}
	done := make(chan outcome, 1)
	var once sync.Once
	settle := func(o outcome) {
		once.Do(func() { done <- o })
	}

	for _, name := range listen {
		name := name
		scope.On(name, func(raw json.RawMessage) {
			ok, err := match(name, raw)
			if !ok && err == nil {
				return
			}
			settle(outcome{reply: Reply{Event: name, Payload: raw}, err: err})
		})
	}

	if err := scope.Emit(event, payload); err != nil {
		return Reply{}, errors.Wrapf(err, "emit %s", event)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case o := <-done:
		return o.reply, o.err
	case <-timer.C:
		once.Do(func() {})
		return Reply{}, domain.ErrTimeout
	case <-ctx.Done():
		once.Do(func() {})
		return Reply{}, ctx.Err()
	}
}

// Request emits event and waits for one of replies. An event from failures
// settles it with domain.ErrRejected carrying the server message.
func Request(ctx context.Context, em socket.Emitter, event string, payload any, replies, failures []string, timeout time.Duration) (Reply, error) {
	failed := make(map[string]bool, len(failures))
	for _, f := range failures {
		failed[f] = true
	}
	listen := append(append([]string(nil), replies...), failures...)
	return await(ctx, em, event, payload, listen, func(name string, raw json.RawMessage) (bool, error) {
		if failed[name] {
			msg := protocol.DecodeError(raw)
			if msg == "" {
				msg = domain.MsgRequestFailed
			}
			return true, &RejectedError{Event: name, Message: msg}
		}
		return true, nil
	}, timeout)
}

// RejectedError is the server's answer on an error event. It matches
// domain.ErrRejected with errors.Is.
type RejectedError struct {
	Event   string
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

func (e *RejectedError) Is(target error) bool { return target == domain.ErrRejected }
