// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"errors"
	"time"
)

// GetTimeout reports the duration until the connection's
// RetransmitTimer next fires, for a host event loop that wants to
// arm its own wakeup (the ctrl GET_TIMEOUT dispatch). The second
// return value is false if no timer is armed or the transport is a
// reliable datagram transport that suppresses retransmission
// entirely.
func (conn *Connection) GetTimeout(now time.Time) (time.Duration, bool) {
	if conn.Transport.IsReliableDatagram() || conn.Timer.Stopped() {
		return 0, false
	}

	remaining := conn.Timer.NextFire().Sub(now)
	if remaining < minRemaining {
		remaining = 0
	}
	if remaining < 0 {
		remaining = 0
	}

	return remaining, true
}

// HandleTimeout is the RetransmitController's single entry point (the
// ctrl HANDLE_TIMEOUT dispatch): the host calls it whenever its event
// loop believes the retransmit timer may have fired. It returns 1 once
// a timeout has been handled (retransmitting the buffered flight
// through Handshake, when one is set), 0 if there was nothing to do or
// the retransmit would have blocked (the timer stays re-armed), or -1
// with ErrReadTimeoutExpired once the connection has timed out too
// many times in a row to be worth retrying.
func (conn *Connection) HandleTimeout(now time.Time) (int, error) {
	if conn.Transport.IsReliableDatagram() {
		return 0, nil
	}

	if !conn.Timer.IsExpired(now) {
		return 0, nil
	}

	if conn.config.DisableRetransmitBackoff {
		conn.Timer.Restart(now)
	} else {
		conn.Timer.Double(now)
	}
	conn.numTimeouts++

	if conn.numTimeouts > 2 && !conn.Options.Has(OptionNoQueryMTU) {
		if fallback := conn.MTU.FallbackCandidate(conn.Transport); fallback < conn.MTU.LinkMTU() {
			if err := conn.MTU.SetLinkMTU(fallback); err != nil {
				conn.log.Debugf("retransmit: fallback MTU %d rejected: %v", fallback, err)
			}
		}
	}

	if conn.numTimeouts > conn.config.alertCount() {
		return -1, ErrReadTimeoutExpired
	}

	conn.numReadsSinceLastTimer++
	if conn.numReadsSinceLastTimer > conn.config.readCount() {
		conn.numReadsSinceLastTimer = 1
	}

	if conn.Handshake == nil {
		return 1, nil
	}

	if err := conn.Handshake.RetransmitBufferedMessages(conn); err != nil {
		if errors.Is(err, ErrWouldBlock) {
			return 0, nil
		}

		return -1, err
	}

	return 1, nil
}
