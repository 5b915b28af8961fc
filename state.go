// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package dtls implements the stateless listener and retransmission
// core of a DTLS 1.0/1.2 endpoint: cookie-based ClientHello
// verification (RFC 6347 Section 4.2.1) plus the handshake flight
// retransmission timer. Record-layer encryption, the handshake state
// machine, cipher negotiation and key derivation are external
// collaborators, consumed only through the interfaces in
// interfaces.go.
package dtls

import (
	"net"

	"github.com/pion/logging"

	"github.com/crossbuild/dtls/pkg/protocol"
)

// Role distinguishes the two DTLS endpoint roles. The stateless
// listener and cookie exchange only apply to servers; clients never
// run StatelessListener.
type Role byte

// Roles.
const (
	RoleClient Role = iota
	RoleServer
)

func (r Role) String() string {
	if r == RoleServer {
		return "server"
	}

	return "client"
}

// Options is the connection-level bitset from spec.md section 3:
// NO_QUERY_MTU, COOKIE_EXCHANGE, CISCO_ANYCONNECT.
type Options uint32

// Option bits.
const (
	OptionNoQueryMTU Options = 1 << iota
	OptionCookieExchange
	OptionCiscoAnyConnect
)

// Has reports whether all bits of o are set.
func (opts Options) Has(o Options) bool { return opts&o == o }

// Connection is the per-endpoint state shared by StatelessListener,
// RetransmitTimer and RetransmitController. It gathers the data model
// from spec.md section 3 plus the ambient host configuration and the
// external collaborator handles those components call into.
type Connection struct {
	// Version is the negotiated or preferred DTLS version; the zero
	// value selects the version-flexible ANY method.
	Version protocol.Version
	Role    Role

	// Cookie is opaque server-side state, present only during listen.
	Cookie []byte

	BufferedOutgoing *FlightBuffer
	BufferedIncoming *FlightBuffer

	HandshakeReadSeq      uint16
	HandshakeWriteSeq     uint16
	NextHandshakeWriteSeq uint16

	Timer RetransmitTimer
	MTU   MtuController

	numTimeouts            uint32
	numReadsSinceLastTimer uint32

	Options Options

	// peer is the datagram source address learned during listen,
	// exposed to the embedder once the handshake is committed.
	peer net.Addr

	config    *Config
	log       logging.LeveledLogger
	cookies   *CookieEngine
	Transport DatagramBIO
	Record    RecordLayerWriter
	Handshake HandshakeStateMachine
}

// NewConnection builds a Connection for role over transport, using
// cfg for policy. cfg is validated eagerly; transport must be
// non-nil.
func NewConnection(role Role, transport DatagramBIO, cfg *Config) (*Connection, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, errNoTransport
	}

	conn := &Connection{
		Role:             role,
		BufferedOutgoing: NewFlightBuffer(),
		BufferedIncoming: NewFlightBuffer(),
		config:           cfg,
		log:              cfg.loggerFactory().NewLogger("dtls"),
		Transport:        transport,
	}
	conn.cookies = NewCookieEngine(cfg)

	if cfg.NoQueryMTU {
		conn.Options |= OptionNoQueryMTU
	}
	if cfg.CiscoAnyConnectCompat {
		conn.Options |= OptionCiscoAnyConnect
	}

	if cfg.MTU > 0 {
		if err := conn.MTU.SetLinkMTU(uint32(cfg.MTU)); err != nil {
			return nil, err
		}
	}

	switch len(cfg.Versions) {
	case 0:
		conn.Version = protocol.Version1_2
	case 1:
		conn.Version = cfg.Versions[0]
	default:
		conn.Version = protocol.Version{}
	}

	return conn, nil
}

// Peer returns the datagram source address learned during the last
// successful Listen call.
func (conn *Connection) Peer() net.Addr { return conn.peer }

// isAnyVersion reports whether conn negotiates the version-flexible
// ANY method (the zero Version).
func (conn *Connection) isAnyVersion() bool {
	return conn.Version.Equal(protocol.Version{})
}
