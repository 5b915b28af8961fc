// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"errors"
	"time"

	"github.com/crossbuild/dtls/pkg/protocol"
	"github.com/crossbuild/dtls/pkg/protocol/handshake"
	"github.com/crossbuild/dtls/pkg/protocol/recordlayer"
)

// maxDatagramLength bounds a single Listen read. A ClientHello could
// in principle be as large as the maximum plaintext fragment
// (2^14 bytes); anything that size or larger while still unverified
// is treated the same as any other malformed input, not specially
// rejected.
const maxDatagramLength = 16384

func versionOrdinal(v protocol.Version) uint16 {
	return uint16(v.Major)<<8 | uint16(v.Minor)
}

// discardPeeked drops the datagram currently sitting at the front of
// the peeked read queue by reading it in non-peek mode. If repeek is
// true, peek mode is restored afterwards so the caller can continue
// looking at subsequent datagrams in the same Listen call.
func (conn *Connection) discardPeeked(repeek bool) {
	conn.Transport.SetPeekMode(false)

	scratch := make([]byte, maxDatagramLength)
	if _, err := conn.Transport.Read(scratch); err != nil {
		conn.log.Tracef("listen: discard read failed: %v", err)
	}

	if repeek {
		conn.Transport.SetPeekMode(true)
	}
}

// parsedClientHello bundles what StatelessListener needs out of one
// candidate datagram.
type parsedClientHello struct {
	record *recordlayer.Header
	hello  *handshake.MessageClientHello
}

// parseClientHello implements spec.md section 4.F steps 3-5: the
// listen-specific record and handshake header checks, followed by the
// ClientHello body. Any failure here means "discard silently",
// returned as ok=false with no error.
func (conn *Connection) parseClientHello(buf []byte) (*parsedClientHello, bool) {
	record := &recordlayer.Header{}
	if err := record.Unmarshal(buf); err != nil {
		return nil, false
	}

	if record.ContentType != protocol.ContentTypeHandshake {
		return nil, false
	}
	if record.Version.Major != protocol.Version1_2.Major {
		return nil, false
	}
	// Epoch is the top two bytes of the 8-byte sequence; an initial
	// ClientHello must be sent at epoch 0.
	if record.Epoch != 0 {
		return nil, false
	}
	if int(record.Length) != len(buf)-recordlayer.HeaderSize {
		return nil, false
	}

	msg := buf[recordlayer.HeaderSize:]

	hsHeader := &handshake.Header{}
	if err := hsHeader.Unmarshal(msg); err != nil {
		return nil, false
	}

	if hsHeader.Type != handshake.TypeClientHello {
		return nil, false
	}
	if hsHeader.MessageSequence > 2 {
		return nil, false
	}
	if hsHeader.FragmentOffset != 0 || hsHeader.FragmentLength != hsHeader.Length {
		return nil, false
	}

	body := msg[handshake.HeaderLength:]
	if uint32(len(body)) < hsHeader.Length {
		return nil, false
	}

	hello := &handshake.MessageClientHello{}
	if err := hello.Unmarshal(body[:hsHeader.Length]); err != nil {
		return nil, false
	}

	if !conn.isAnyVersion() && versionOrdinal(hello.Version) > versionOrdinal(conn.Version) {
		return nil, false
	}

	return &parsedClientHello{record: record, hello: hello}, true
}

// buildHelloVerifyRequest implements spec.md section 6.4: the wire
// HelloVerifyRequest a SendVerify response emits. The record sequence
// number is copied verbatim from the triggering ClientHello.
func (conn *Connection) buildHelloVerifyRequest(recordSeq uint64, cookie []byte) ([]byte, error) {
	wireVersion := conn.Version
	if conn.isAnyVersion() {
		wireVersion = protocol.Version1_0
	}

	record := &recordlayer.RecordLayer{
		Header: recordlayer.Header{
			Version:        wireVersion,
			SequenceNumber: recordSeq,
		},
		Content: &handshake.Handshake{
			Header: handshake.Header{MessageSequence: 0},
			Message: &handshake.MessageHelloVerifyRequest{
				Version: protocol.Version1_0,
				Cookie:  cookie,
			},
		},
	}

	return record.Marshal()
}

// sendVerify implements spec.md section 4.F step 7: discard the
// peeked ClientHello, mint a cookie, and emit a HelloVerifyRequest
// back to the peer address observed on read.
func (conn *Connection) sendVerify(ch *parsedClientHello) error {
	conn.discardPeeked(true)

	cookie, err := conn.cookies.Mint(conn)
	if err != nil {
		return err
	}

	raw, err := conn.buildHelloVerifyRequest(ch.record.SequenceNumber, cookie)
	if err != nil {
		return err
	}

	if _, err := conn.Transport.Write(raw); err != nil {
		if errors.Is(err, ErrWouldBlock) {
			return ErrWouldBlock
		}

		return err
	}

	if err := conn.Transport.Flush(); err != nil {
		if errors.Is(err, ErrWouldBlock) {
			return ErrWouldBlock
		}

		return err
	}

	return nil
}

// Listen implements StatelessListener (spec.md section 4.F / the ctrl
// LISTEN dispatch): it consumes peeked ClientHello datagrams until one
// carries a valid cookie, emitting HelloVerifyRequests for the rest,
// and holds no per-connection state until that happens.
//
// Return values follow the C convention the rest of this package's
// control surface uses: 1 on success, 0 if the caller should retry
// later (would-block, or a malformed datagram was discarded), -1 on a
// fatal error.
func (conn *Connection) Listen(now time.Time) (int, error) {
	if conn.Role != RoleServer {
		return -1, errInternal
	}

	conn.Transport.SetPeekMode(true)

	for {
		buf := make([]byte, maxDatagramLength)

		n, err := conn.Transport.Read(buf)
		if errors.Is(err, ErrWouldBlock) {
			conn.Transport.SetPeekMode(false)

			return 0, nil
		}
		if err != nil {
			conn.Transport.SetPeekMode(false)

			return -1, err
		}

		ch, ok := conn.parseClientHello(buf[:n])
		if !ok {
			conn.log.Tracef("listen: discarding malformed datagram")
			conn.discardPeeked(false)

			return 0, nil
		}

		valid := false
		if len(ch.hello.Cookie) > 0 {
			var verr error
			valid, verr = conn.cookies.Verify(conn, ch.hello.Cookie)
			if verr != nil {
				conn.Transport.SetPeekMode(false)

				return -1, verr
			}
		}

		if !valid {
			if err := conn.sendVerify(ch); err != nil {
				conn.Transport.SetPeekMode(false)

				if errors.Is(err, ErrWouldBlock) {
					return 0, nil
				}

				return -1, err
			}

			continue
		}

		conn.HandshakeReadSeq = 1
		conn.HandshakeWriteSeq = 1
		conn.NextHandshakeWriteSeq = 1

		if conn.Record != nil {
			conn.Record.SetWriteSequence(conn, ch.record.SequenceNumber)
		}

		conn.Options |= OptionCookieExchange

		if conn.Handshake != nil {
			conn.Handshake.HelloVerifyDone(conn)
		}

		conn.peer = conn.Transport.Peer()
		conn.Transport.SetPeekMode(false)

		return 1, nil
	}
}
