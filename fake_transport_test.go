// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"net"
	"time"

	"github.com/crossbuild/dtls/pkg/protocol"
)

// fakeTransport is a minimal in-memory DatagramBIO for unit tests that
// only need a Connection to exist, not to actually exchange
// datagrams. Tests exercising Listen's wire behavior use
// scriptedTransport instead.
type fakeTransport struct {
	peer     net.Addr
	peekMode bool
	reliable bool
}

func (f *fakeTransport) Read(buf []byte) (int, error)  { return 0, ErrWouldBlock }
func (f *fakeTransport) Write(buf []byte) (int, error) { return len(buf), nil }
func (f *fakeTransport) Flush() error                  { return nil }
func (f *fakeTransport) SetPeekMode(peek bool)         { f.peekMode = peek }
func (f *fakeTransport) Peer() net.Addr                { return f.peer }
func (f *fakeTransport) SetPeer(addr net.Addr)         { f.peer = addr }
func (f *fakeTransport) QueryMTU() (int, error)        { return 1500, nil }
func (f *fakeTransport) FallbackMTU() int              { return 576 }
func (f *fakeTransport) MTUOverhead() int              { return 48 }
func (f *fakeTransport) IsReliableDatagram() bool       { return f.reliable }
func (f *fakeTransport) SetNextTimeout(at time.Time)   {}

// scriptedTransport plays back a scripted queue of inbound datagrams
// and records every outbound write, for testing StatelessListener
// end to end without a real socket. Read in peek mode replays the
// same datagram; Read in non-peek mode (as discardPeeked uses)
// advances to the next one.
type scriptedTransport struct {
	fakeTransport

	inbound [][]byte
	pos     int

	outbound [][]byte
}

func (s *scriptedTransport) Read(buf []byte) (int, error) {
	if s.pos >= len(s.inbound) {
		return 0, ErrWouldBlock
	}

	n := copy(buf, s.inbound[s.pos])

	if !s.peekMode {
		s.pos++
	}

	return n, nil
}

func (s *scriptedTransport) Write(buf []byte) (int, error) {
	cp := append([]byte(nil), buf...)
	s.outbound = append(s.outbound, cp)

	return len(buf), nil
}

// recordLayerStub is a minimal RecordLayerWriter that records the last
// write sequence number it was given, for tests that need to observe
// Connection.Listen wiring a successful cookie exchange through to the
// record layer.
type recordLayerStub struct {
	writeSeq uint64
}

func (r *recordLayerStub) New(conn *Connection)   {}
func (r *recordLayerStub) Free(conn *Connection)  {}
func (r *recordLayerStub) Clear(conn *Connection) {}

func (r *recordLayerStub) SetWriteSequence(conn *Connection, seq uint64) {
	r.writeSeq = seq
}

func (r *recordLayerStub) WriteBytes(conn *Connection, contentType protocol.ContentType, buf []byte) (int, error) {
	return len(buf), nil
}
