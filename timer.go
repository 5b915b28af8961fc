// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import "time"

// maxRetransmitDuration caps RetransmitTimer's exponential backoff.
const maxRetransmitDuration = 60 * time.Second

// minRemaining is the socket-timer divergence guard: any computed
// remaining duration under this is reported as already expired, since
// a caller's own poll granularity can't reliably distinguish it from
// zero.
const minRemaining = 15 * time.Millisecond

// RetransmitTimer is a host-polled, exponentially backed-off
// retransmission timer. There is no internal goroutine: callers learn
// whether the timer is expired by calling IsExpired(now) from their
// own event loop, typically driven by DatagramBIO.SetNextTimeout.
//
// A zero RetransmitTimer is Stopped.
type RetransmitTimer struct {
	nextFire time.Time
	duration time.Duration
}

// Stopped reports whether the timer is currently disarmed.
func (t *RetransmitTimer) Stopped() bool {
	return t.nextFire.IsZero()
}

// Start arms the timer with an initial duration if it is currently
// Stopped; it is a no-op otherwise, so repeated calls at the same now
// are idempotent. initial defaults to 1s if zero or negative.
func (t *RetransmitTimer) Start(now time.Time, initial time.Duration) {
	if !t.Stopped() {
		return
	}

	if initial <= 0 {
		initial = time.Second
	}

	t.duration = initial
	t.nextFire = now.Add(t.duration)
}

// Stop disarms the timer, clearing its duration.
func (t *RetransmitTimer) Stop() {
	t.nextFire = time.Time{}
	t.duration = 0
}

// IsExpired reports whether the timer has fired by now. A Stopped
// timer never reports expired. Remaining time under minRemaining is
// treated as zero, so a caller polling slightly early still sees an
// expired timer.
func (t *RetransmitTimer) IsExpired(now time.Time) bool {
	if t.Stopped() {
		return false
	}

	remaining := t.nextFire.Sub(now)
	if remaining < minRemaining {
		remaining = 0
	}

	return remaining <= 0
}

// Double doubles the retransmit duration, capped at
// maxRetransmitDuration, and re-arms the timer from now regardless of
// its prior state. Called once per observed timeout.
func (t *RetransmitTimer) Double(now time.Time) {
	d := t.duration * 2
	if d <= 0 || d > maxRetransmitDuration {
		d = maxRetransmitDuration
	}

	t.duration = d
	t.nextFire = now.Add(d)
}

// Restart re-arms the timer from now using its current duration,
// without doubling it. Used when the host has disabled retransmit
// backoff.
func (t *RetransmitTimer) Restart(now time.Time) {
	if t.duration <= 0 {
		t.duration = time.Second
	}

	t.nextFire = now.Add(t.duration)
}

// Duration returns the timer's current retransmit duration, 0 if
// Stopped.
func (t *RetransmitTimer) Duration() time.Duration {
	return t.duration
}

// NextFire returns the wallclock time the timer is due to fire. The
// zero time means Stopped.
func (t *RetransmitTimer) NextFire() time.Time {
	return t.nextFire
}
