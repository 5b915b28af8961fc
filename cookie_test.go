// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"bytes"
	"errors"
	"testing"
)

func newTestConnection(t *testing.T, cfg *Config) *Connection {
	t.Helper()

	conn, err := NewConnection(RoleServer, &fakeTransport{}, cfg)
	if err != nil {
		t.Fatalf("NewConnection() err = %v", err)
	}

	return conn
}

func TestCookieEngineMintRoundTrip(t *testing.T) {
	want := []byte("a cookie")

	cfg := &Config{
		CookieGenerator: func(conn *Connection) ([]byte, error) { return want, nil },
		CookieVerifier: func(conn *Connection, cookie []byte) (bool, error) {
			return bytes.Equal(cookie, want), nil
		},
	}
	conn := newTestConnection(t, cfg)

	got, err := conn.cookies.Mint(conn)
	if err != nil {
		t.Fatalf("Mint() err = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Mint() = %q, want %q", got, want)
	}

	valid, err := conn.cookies.Verify(conn, got)
	if err != nil || !valid {
		t.Fatalf("Verify() = %v, %v, want true, nil", valid, err)
	}

	valid, err = conn.cookies.Verify(conn, []byte("wrong"))
	if err != nil || valid {
		t.Fatalf("Verify(wrong) = %v, %v, want false, nil", valid, err)
	}
}

func TestCookieEngineMissingCallbacksAreFatal(t *testing.T) {
	conn := newTestConnection(t, &Config{})

	if _, err := conn.cookies.Mint(conn); !errors.Is(err, errNoCookieMinter) {
		t.Fatalf("Mint() err = %v, want errNoCookieMinter", err)
	}

	if _, err := conn.cookies.Verify(conn, []byte("x")); !errors.Is(err, errNoCookieVerifier) {
		t.Fatalf("Verify() err = %v, want errNoCookieVerifier", err)
	}
}

func TestCookieEngineOversizeCookieIsFatal(t *testing.T) {
	cfg := &Config{
		CookieGenerator: func(conn *Connection) ([]byte, error) {
			return make([]byte, maxCookieLength+1), nil
		},
	}
	conn := newTestConnection(t, cfg)

	if _, err := conn.cookies.Mint(conn); !errors.Is(err, errCookieGenFailure) {
		t.Fatalf("Mint() err = %v, want errCookieGenFailure", err)
	}
}

func TestCookieEngineGeneratorErrorIsWrappedFatal(t *testing.T) {
	inner := errors.New("boom")
	cfg := &Config{
		CookieGenerator: func(conn *Connection) ([]byte, error) { return nil, inner },
	}
	conn := newTestConnection(t, cfg)

	_, err := conn.cookies.Mint(conn)

	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("Mint() err = %v, want a *FatalError", err)
	}
	if !errors.Is(err, inner) {
		t.Fatalf("Mint() err does not unwrap to the generator's error")
	}
}
