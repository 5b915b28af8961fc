// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"fmt"
	"time"

	"github.com/pion/logging"

	"github.com/crossbuild/dtls/pkg/protocol"
)

// DTLS1_TMO_ALERT_COUNT / DTLS1_TMO_READ_COUNT equivalents; mirrors the
// defaults OpenSSL ships in ssl/d1_lib.c.
const (
	defaultAlertCount uint32 = 12
	defaultReadCount  uint32 = 50

	defaultFlightInterval = time.Second
)

// CookieGeneratorFunc mints a fresh cookie for the connection. It must
// return at most 255 bytes.
type CookieGeneratorFunc func(conn *Connection) ([]byte, error)

// CookieVerifierFunc reports whether cookie is a valid cookie
// previously minted for conn.
type CookieVerifierFunc func(conn *Connection, cookie []byte) (bool, error)

// Config carries the host-supplied policy for a Connection: which DTLS
// versions it will accept, how cookies are minted and checked, MTU
// knobs, and the retransmission backoff schedule.
//
// A Config is validated once, at Connection construction time, and
// treated as immutable afterwards.
type Config struct {
	// Versions lists the DTLS versions this endpoint accepts. An empty
	// slice means "DTLS 1.2 only". A zero-value Version in the list
	// selects the version-flexible ANY method used by listeners that
	// haven't yet negotiated a version.
	Versions []protocol.Version

	// LoggerFactory builds the leveled logger each Connection logs
	// through. Defaults to logging.NewDefaultLoggerFactory().
	LoggerFactory logging.LoggerFactory

	// CookieGenerator and CookieVerifier implement the host side of
	// the stateless cookie exchange. CookieVerifier must be set for a
	// server; a missing verifier is fatal the first time Listen needs
	// to check a cookie (CookieEngine.Verify), not at construction
	// time — NewConnection does not inspect Role against these fields.
	CookieGenerator CookieGeneratorFunc
	CookieVerifier  CookieVerifierFunc

	// MTU is the initial link MTU hint, in bytes. Zero means "query
	// the transport".
	MTU int

	// NoQueryMTU disables path MTU discovery; MtuController then only
	// ever uses the configured or probed MTU.
	NoQueryMTU bool

	// CiscoAnyConnectCompat enables the AnyConnect interop option bit;
	// it does not otherwise change listener or timer behavior in this
	// package.
	CiscoAnyConnectCompat bool

	// FlightInterval holds an initial retransmit duration. Connection
	// does not apply it: the initial duration is the argument the host
	// passes to RetransmitTimer.Start, which uses 1s when given zero.
	FlightInterval time.Duration

	// DisableRetransmitBackoff makes HandleTimeout re-arm
	// RetransmitTimer with its current duration instead of doubling it
	// on every timeout.
	DisableRetransmitBackoff bool

	// AlertCount is the number of consecutive retransmit timeouts
	// tolerated before HandleTimeout fails with
	// ErrReadTimeoutExpired. Defaults to 12 (DTLS1_TMO_ALERT_COUNT).
	AlertCount uint32

	// ReadCount bounds num_reads_since_last_timer before it wraps.
	// Defaults to 50 (DTLS1_TMO_READ_COUNT).
	ReadCount uint32
}

func (c *Config) loggerFactory() logging.LoggerFactory {
	if c.LoggerFactory != nil {
		return c.LoggerFactory
	}

	return logging.NewDefaultLoggerFactory()
}

func (c *Config) flightInterval() time.Duration {
	if c.FlightInterval > 0 {
		return c.FlightInterval
	}

	return defaultFlightInterval
}

func (c *Config) alertCount() uint32 {
	if c.AlertCount > 0 {
		return c.AlertCount
	}

	return defaultAlertCount
}

func (c *Config) readCount() uint32 {
	if c.ReadCount > 0 {
		return c.ReadCount
	}

	return defaultReadCount
}

// validateConfig rejects configurations that can never produce a
// working Connection, eagerly rather than failing deep inside a
// listen loop.
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return errNoConfig
	}

	for _, v := range cfg.Versions {
		if v.Equal(protocol.Version{}) {
			continue
		}
		if !v.Equal(protocol.Version1_0) && !v.Equal(protocol.Version1_2) {
			return &FatalError{Err: fmt.Errorf("unsupported protocol version %s", v)}
		}
	}

	return nil
}
