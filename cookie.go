// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

// maxCookieLength is the RFC 6347 Section 4.2.1 cookie size limit: the
// wire field is a single length byte.
const maxCookieLength = 255

// CookieEngine delegates cookie minting and verification to the
// host-supplied callbacks on Config. Per RFC 6347, an invalid cookie
// is treated identically to an absent one by the caller
// (StatelessListener): both result in a fresh HelloVerifyRequest, not
// an alert.
type CookieEngine struct {
	cfg *Config
}

// NewCookieEngine builds a CookieEngine bound to cfg's callbacks.
func NewCookieEngine(cfg *Config) *CookieEngine {
	return &CookieEngine{cfg: cfg}
}

// Mint asks the host to produce a fresh cookie for conn. A missing
// generator, a generator error, or a cookie over 255 bytes are all
// fatal to the listen attempt.
func (e *CookieEngine) Mint(conn *Connection) ([]byte, error) {
	if e.cfg.CookieGenerator == nil {
		return nil, errNoCookieMinter
	}

	cookie, err := e.cfg.CookieGenerator(conn)
	if err != nil {
		return nil, &FatalError{Err: err}
	}

	if len(cookie) > maxCookieLength {
		return nil, errCookieGenFailure
	}

	return cookie, nil
}

// Verify asks the host whether cookie is valid for conn. A missing
// verifier is fatal; the host must configure one to run as a server.
func (e *CookieEngine) Verify(conn *Connection, cookie []byte) (bool, error) {
	if e.cfg.CookieVerifier == nil {
		return false, errNoCookieVerifier
	}

	valid, err := e.cfg.CookieVerifier(conn, cookie)
	if err != nil {
		return false, &FatalError{Err: err}
	}

	return valid, nil
}
