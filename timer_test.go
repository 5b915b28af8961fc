// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"testing"
	"time"
)

func TestRetransmitTimerZeroValueIsStopped(t *testing.T) {
	var timer RetransmitTimer

	if !timer.Stopped() {
		t.Fatal("zero RetransmitTimer must be Stopped")
	}
	if timer.IsExpired(time.Now()) {
		t.Fatal("a Stopped timer must never report expired")
	}
}

func TestRetransmitTimerStartIsIdempotent(t *testing.T) {
	var timer RetransmitTimer

	now := time.Now()
	timer.Start(now, time.Second)
	first := timer.NextFire()

	timer.Start(now, 10*time.Second)
	second := timer.NextFire()

	if !first.Equal(second) {
		t.Fatalf("two Start(now) calls while armed produced different next_fire: %v vs %v", first, second)
	}
}

func TestRetransmitTimerStartDefaultsInitialDuration(t *testing.T) {
	var timer RetransmitTimer

	now := time.Now()
	timer.Start(now, 0)

	if timer.Duration() != time.Second {
		t.Fatalf("Duration() = %v, want the 1s default", timer.Duration())
	}
}

func TestRetransmitTimerIsExpiredHonorsDivergenceGuard(t *testing.T) {
	var timer RetransmitTimer

	now := time.Now()
	timer.Start(now, time.Second)

	if timer.IsExpired(now.Add(time.Second - minRemaining - time.Millisecond)) {
		t.Fatal("timer reported expired well before next_fire")
	}
	if !timer.IsExpired(now.Add(time.Second - minRemaining/2)) {
		t.Fatal("timer should report expired once within the divergence guard of next_fire")
	}
}

func TestRetransmitTimerDoubleCapsAtMax(t *testing.T) {
	var timer RetransmitTimer

	now := time.Now()
	timer.Start(now, 40*time.Second)
	timer.Double(now)

	if timer.Duration() != maxRetransmitDuration {
		t.Fatalf("Duration() = %v, want the %v cap", timer.Duration(), maxRetransmitDuration)
	}
}

func TestRetransmitTimerDoubleRearmsRegardlessOfPriorState(t *testing.T) {
	var timer RetransmitTimer

	now := time.Now()
	timer.Double(now)

	if timer.Stopped() {
		t.Fatal("Double() must arm a Stopped timer")
	}
	if timer.Duration() != maxRetransmitDuration {
		t.Fatalf("Duration() = %v, want %v (doubling from zero saturates at the cap)", timer.Duration(), maxRetransmitDuration)
	}
}

func TestRetransmitTimerRestartDoesNotDouble(t *testing.T) {
	var timer RetransmitTimer

	now := time.Now()
	timer.Start(now, 2*time.Second)
	timer.Restart(now.Add(time.Second))

	if timer.Duration() != 2*time.Second {
		t.Fatalf("Duration() = %v, want unchanged 2s", timer.Duration())
	}
	if want := now.Add(time.Second).Add(2 * time.Second); !timer.NextFire().Equal(want) {
		t.Fatalf("NextFire() = %v, want %v", timer.NextFire(), want)
	}
}

func TestRetransmitTimerStop(t *testing.T) {
	var timer RetransmitTimer

	timer.Start(time.Now(), time.Second)
	timer.Stop()

	if !timer.Stopped() {
		t.Fatal("Stop() must leave the timer Stopped")
	}
	if timer.Duration() != 0 {
		t.Fatalf("Duration() = %v after Stop(), want 0", timer.Duration())
	}
}
