// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"encoding/binary"

	"github.com/crossbuild/dtls/pkg/protocol"
)

// MessageClientHello is the body of a ClientHello, RFC 6347 Section
// 4.2.2. Only the fields a stateless listener inspects (Version,
// Cookie) are interpreted further up the stack; cipher suites,
// compression methods and extensions are decoded and re-encoded
// unchanged since negotiation is out of scope here.
type MessageClientHello struct {
	Version protocol.Version
	Random  [32]byte

	SessionID []byte
	Cookie    []byte

	CipherSuiteIDs     []uint16
	CompressionMethods []byte

	// Extensions holds the raw, unparsed extensions block, if present.
	Extensions []byte
}

// MsgType implements Message.
func (m *MessageClientHello) MsgType() MsgType {
	return TypeClientHello
}

// Marshal encodes m into its wire form.
func (m *MessageClientHello) Marshal() ([]byte, error) {
	if len(m.Cookie) > 255 {
		return nil, errCookieTooLong
	}

	out := make([]byte, 0, 2+32+1+len(m.SessionID)+1+len(m.Cookie)+2+2*len(m.CipherSuiteIDs)+1+len(m.CompressionMethods)+len(m.Extensions))

	out = append(out, m.Version.Major, m.Version.Minor)
	out = append(out, m.Random[:]...)

	out = append(out, byte(len(m.SessionID)))
	out = append(out, m.SessionID...)

	out = append(out, byte(len(m.Cookie)))
	out = append(out, m.Cookie...)

	cs := make([]byte, 2+2*len(m.CipherSuiteIDs))
	binary.BigEndian.PutUint16(cs, uint16(2*len(m.CipherSuiteIDs)))
	for i, id := range m.CipherSuiteIDs {
		binary.BigEndian.PutUint16(cs[2+2*i:], id)
	}
	out = append(out, cs...)

	out = append(out, byte(len(m.CompressionMethods)))
	out = append(out, m.CompressionMethods...)

	out = append(out, m.Extensions...)

	return out, nil
}

// Unmarshal decodes m from data.
func (m *MessageClientHello) Unmarshal(data []byte) error {
	if len(data) < 2+32+1 {
		return errBufferTooSmall
	}

	m.Version = protocol.Version{Major: data[0], Minor: data[1]}
	copy(m.Random[:], data[2:34])

	offset := 34

	sessIDLen := int(data[offset])
	offset++
	if len(data) < offset+sessIDLen+1 {
		return errLengthMismatch
	}
	m.SessionID = append([]byte{}, data[offset:offset+sessIDLen]...)
	offset += sessIDLen

	cookieLen := int(data[offset])
	offset++
	if len(data) < offset+cookieLen+2 {
		return errLengthMismatch
	}
	if cookieLen > 255 {
		return errCookieTooLong
	}
	m.Cookie = append([]byte{}, data[offset:offset+cookieLen]...)
	offset += cookieLen

	if len(data) < offset+2 {
		return errLengthMismatch
	}
	csLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	if csLen%2 != 0 || len(data) < offset+csLen+1 {
		return errLengthMismatch
	}
	m.CipherSuiteIDs = make([]uint16, csLen/2)
	for i := range m.CipherSuiteIDs {
		m.CipherSuiteIDs[i] = binary.BigEndian.Uint16(data[offset+2*i:])
	}
	offset += csLen

	compLen := int(data[offset])
	offset++
	if len(data) < offset+compLen {
		return errLengthMismatch
	}
	m.CompressionMethods = append([]byte{}, data[offset:offset+compLen]...)
	offset += compLen

	m.Extensions = append([]byte{}, data[offset:]...)

	return nil
}
