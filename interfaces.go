// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"net"
	"time"

	"github.com/crossbuild/dtls/pkg/protocol"
	"github.com/crossbuild/dtls/pkg/protocol/handshake"
)

// DatagramBIO is the datagram transport StatelessListener and
// RetransmitController are built against. It is borrowed, never
// owned: callers are responsible for the underlying socket's
// lifetime. The package transport provides the default
// implementation, PacketTransport, wrapping a net.PacketConn.
//
// Read/Write return (0, ErrWouldBlock) rather than blocking; this
// package never blocks on I/O.
type DatagramBIO interface {
	Read(buf []byte) (int, error)
	Write(buf []byte) (int, error)
	Flush() error

	// SetPeekMode toggles whether Read consumes the next datagram or
	// leaves it available for a subsequent Read. Peek mode is a
	// transport-global mode; callers must restore it on every exit
	// path.
	SetPeekMode(peek bool)

	Peer() net.Addr
	SetPeer(addr net.Addr)

	// QueryMTU asks the transport for the current path MTU.
	QueryMTU() (int, error)
	// FallbackMTU is used by RetransmitController once repeated
	// timeouts suggest the current MTU is too large.
	FallbackMTU() int
	// MTUOverhead is the number of bytes of framing the transport adds
	// below the DTLS record layer.
	MTUOverhead() int

	// IsReliableDatagram reports whether retransmission is the
	// transport's job already (e.g. SCTP), suppressing RetransmitTimer.
	IsReliableDatagram() bool

	// SetNextTimeout informs the transport when the host's event loop
	// should next invoke HandleTimeout, for transports that can arm
	// their own wakeup.
	SetNextTimeout(at time.Time)
}

// HandshakeStateMachine is the stateful handshake driver that takes
// over once StatelessListener commits a connection. It is an external
// collaborator: this package only calls it, never implements it.
type HandshakeStateMachine interface {
	HelloVerifyDone(conn *Connection)
	SetInHandshake(conn *Connection) bool
	BufferMessage(conn *Connection, msg *handshake.Handshake)
	DoWrite(conn *Connection, contentType protocol.ContentType) (int, error)
	RetransmitBufferedMessages(conn *Connection) error
	ClearRecordBuffer(conn *Connection)
}

// RecordLayerWriter is the record-layer encryption/MAC collaborator.
// Named RecordLayerWriter, rather than RecordLayer, to avoid colliding
// with the pkg/protocol/recordlayer package.
type RecordLayerWriter interface {
	New(conn *Connection)
	Free(conn *Connection)
	Clear(conn *Connection)
	SetWriteSequence(conn *Connection, seq uint64)
	WriteBytes(conn *Connection, contentType protocol.ContentType, buf []byte) (int, error)
}
