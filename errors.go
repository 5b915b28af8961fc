// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"errors"

	"github.com/crossbuild/dtls/pkg/protocol"
)

// FatalError indicates that the endpoint is no longer usable; it is
// mainly caused by host misconfiguration or a protocol violation by
// the peer.
type FatalError = protocol.FatalError

// InternalError indicates a bug in this implementation, or use of an
// unimplemented feature.
type InternalError = protocol.InternalError

// TemporaryError indicates that the endpoint is still usable, but the
// current operation failed and may succeed if retried.
type TemporaryError = protocol.TemporaryError

// TimeoutError indicates that an operation exceeded its deadline.
type TimeoutError = protocol.TimeoutError

// ErrWouldBlock is returned by a DatagramBIO operation that cannot
// complete without blocking. It is not itself fatal: StatelessListener
// and RetransmitController both treat it as "try again later".
var ErrWouldBlock = errors.New("dtls: operation would block")

// Typed errors, see the error taxonomy in the design notes.
var (
	errShortRead = &TemporaryError{Err: errors.New("short read while parsing wire data")}
	errInternal  = &InternalError{Err: errors.New("internal error")}

	errCookieGenFailure = &FatalError{Err: errors.New("cookie generator failed")}
	errNoCookieVerifier = &FatalError{Err: errors.New("no cookie verifier configured")}
	errNoCookieMinter   = &FatalError{Err: errors.New("no cookie generator configured")}

	// ErrReadTimeoutExpired is returned by HandleTimeout once the
	// number of consecutive timeouts exceeds Config.AlertCount.
	ErrReadTimeoutExpired = &FatalError{Err: errors.New("handshake read timeout expired")}

	errMtuTooSmall   = &TemporaryError{Err: errors.New("requested MTU is below the minimum allowed")}
	errNoConfig      = &FatalError{Err: errors.New("no config provided")}
	errNoTransport   = &FatalError{Err: errors.New("no transport configured")}
	errCookieTooLong = &FatalError{Err: errors.New("cookie must not be longer than 255 bytes")}
)
