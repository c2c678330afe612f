// Package countdown tracks the seconds left in a round against an absolute
// deadline instead of decrementing a counter, so a suspended process shows the
// right value on its next tick.
package countdown

import "time"

// Countdown is a value type; the zero value is already expired.
type Countdown struct {
	deadline time.Time
	now      func() time.Time
}

// Start begins a countdown of d from now. The deadline keeps the monotonic
// reading of now(), so wall clock jumps do not affect it.
func Start(d time.Duration, now func() time.Time) Countdown {
	if now == nil {
		now = time.Now
	}
	if d < 0 {
		d = 0
	}
	return Countdown{deadline: now().Add(d), now: now}
}

// Until converts a server wall-clock deadline into a monotonic one once, at
// receipt time.
func Until(endsAt time.Time, now func() time.Time) Countdown {
	if now == nil {
		now = time.Now
	}
	return Start(endsAt.Sub(now()), now)
}

// Remaining returns whole seconds left, rounded up, never negative.
func (c Countdown) Remaining() int {
	if c.now == nil {
		return 0
	}
	left := c.deadline.Sub(c.now())
	if left <= 0 {
		return 0
	}
	secs := int(left / time.Second)
	if left%time.Second != 0 {
		secs++
	}
	return secs
}

// Expired reports whether the deadline passed.
func (c Countdown) Expired() bool {
	return c.Remaining() == 0
}

// Deadline exposes the absolute deadline.
func (c Countdown) Deadline() time.Time {
	return c.deadline
}
