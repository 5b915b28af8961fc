// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package transport provides the default datagram transport used by a
// stateless DTLS endpoint: a net.PacketConn-backed DatagramBIO with
// peek-mode reads, peer mirroring and MTU queries.
package transport

import (
	"errors"
	"net"
	"sync"
	"time"

	pxnet "github.com/pion/transport/v3"
	"github.com/pion/transport/v3/stdnet"

	"github.com/crossbuild/dtls"
)

// peekedDatagram is the one-packet lookahead PacketTransport keeps
// while in peek mode: a UDP socket offers no native way to "unread" a
// datagram, so the transport buffers it itself and replays it to every
// Read while peek mode is on; the first Read after peek mode is
// cleared returns it once more and drops it.
type peekedDatagram struct {
	data []byte
	addr net.Addr
}

// PacketTransport is the default dtls.DatagramBIO, wrapping a
// pion/transport Net (ordinarily stdnet, a thin wrapper over the real
// OS socket API; swapping in a vnet.Net lets a test run an endpoint
// without a real socket). Read waits at most a millisecond: it sets a
// 1ms read deadline internally and translates a timeout into
// dtls.ErrWouldBlock. Write sets no deadline.
type PacketTransport struct {
	mu   sync.Mutex
	conn net.PacketConn

	peekMode bool
	peeked   *peekedDatagram

	peer net.Addr

	linkMTU  int
	overhead int
}

// defaultMTUOverhead approximates the UDP+IP framing below the DTLS
// record layer for the common IPv4 case.
const defaultMTUOverhead = 28

// NewPacketTransport binds network/address using vnet (or the real OS
// sockets, if vnet is nil).
func NewPacketTransport(vnet pxnet.Net, network, address string) (*PacketTransport, error) {
	if vnet == nil {
		n, err := stdnet.NewNet()
		if err != nil {
			return nil, err
		}

		vnet = n
	}

	laddr, err := net.ResolveUDPAddr(network, address)
	if err != nil {
		return nil, err
	}

	conn, err := vnet.ListenUDP(network, laddr)
	if err != nil {
		return nil, err
	}

	return &PacketTransport{conn: conn, overhead: defaultMTUOverhead}, nil
}

// Read implements dtls.DatagramBIO.
func (t *PacketTransport) Read(buf []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.peeked != nil {
		n := copy(buf, t.peeked.data)
		t.peer = t.peeked.addr

		if !t.peekMode {
			t.peeked = nil
		}

		return n, nil
	}

	// A deadline already in the past fails the read before the socket
	// is even checked, so allow a short wait for a queued datagram.
	if err := t.conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return 0, err
	}

	n, addr, err := t.conn.ReadFrom(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, dtls.ErrWouldBlock
		}

		return 0, err
	}

	t.peer = addr

	if t.peekMode {
		t.peeked = &peekedDatagram{data: append([]byte(nil), buf[:n]...), addr: addr}
	}

	return n, nil
}

// Write implements dtls.DatagramBIO by handing buf straight to the
// socket, addressed to the current peer, with no deadline; UDP writes
// do not block in practice.
func (t *PacketTransport) Write(buf []byte) (int, error) {
	t.mu.Lock()
	peer := t.peer
	t.mu.Unlock()

	if peer == nil {
		return 0, errNoPeer
	}

	return t.conn.WriteTo(buf, peer)
}

// Flush is a no-op: Write already hands the datagram to the OS.
func (t *PacketTransport) Flush() error { return nil }

// SetPeekMode implements dtls.DatagramBIO.
func (t *PacketTransport) SetPeekMode(peek bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.peekMode = peek
}

// Peer implements dtls.DatagramBIO.
func (t *PacketTransport) Peer() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.peer
}

// SetPeer implements dtls.DatagramBIO.
func (t *PacketTransport) SetPeer(addr net.Addr) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.peer = addr
}

// QueryMTU implements dtls.DatagramBIO by looking up the local
// interface's link MTU, the same value a socket-level IP_MTU query
// would return absent a more specific path MTU estimate.
func (t *PacketTransport) QueryMTU() (int, error) {
	local, ok := t.conn.LocalAddr().(*net.UDPAddr)
	if !ok || local == nil {
		return 0, errNoLocalAddr
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return 0, err
	}

	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}

			if ipNet.IP.Equal(local.IP) {
				return iface.MTU, nil
			}
		}
	}

	return 0, errNoLocalAddr
}

// FallbackMTU implements dtls.DatagramBIO with the conservative
// IPv4-minimum-reassembly-buffer size, the same floor OpenSSL falls
// back to once repeated timeouts suggest path fragmentation.
func (t *PacketTransport) FallbackMTU() int { return 576 }

// MTUOverhead implements dtls.DatagramBIO.
func (t *PacketTransport) MTUOverhead() int { return t.overhead }

// IsReliableDatagram implements dtls.DatagramBIO. UDP is never
// reliable; PacketTransport always enables RetransmitTimer.
func (t *PacketTransport) IsReliableDatagram() bool { return false }

// SetNextTimeout implements dtls.DatagramBIO. PacketTransport has no
// event loop of its own to arm; the embedder is expected to schedule
// its own call to Connection.HandleTimeout at, at the latest, at.
func (t *PacketTransport) SetNextTimeout(at time.Time) {}

// Close releases the underlying socket.
func (t *PacketTransport) Close() error {
	return t.conn.Close()
}

var (
	errNoPeer      = errors.New("transport: no peer address set")
	errNoLocalAddr = errors.New("transport: local address not bound to a known interface")
)
