// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "github.com/crossbuild/dtls/pkg/protocol"

// MessageHelloVerifyRequest is the body of a HelloVerifyRequest, RFC
// 6347 Section 4.2.1. The Version field is conventionally
// Version1_0 regardless of the negotiated version, for compatibility
// with older clients that key their reply on the HVR's wire version.
type MessageHelloVerifyRequest struct {
	Version protocol.Version
	Cookie  []byte
}

// MsgType implements Message.
func (m *MessageHelloVerifyRequest) MsgType() MsgType {
	return TypeHelloVerifyRequest
}

// Marshal encodes m into its wire form.
func (m *MessageHelloVerifyRequest) Marshal() ([]byte, error) {
	if len(m.Cookie) > 255 {
		return nil, errCookieTooLong
	}

	out := make([]byte, 0, 2+1+len(m.Cookie))
	out = append(out, m.Version.Major, m.Version.Minor)
	out = append(out, byte(len(m.Cookie)))
	out = append(out, m.Cookie...)

	return out, nil
}

// Unmarshal decodes m from data.
func (m *MessageHelloVerifyRequest) Unmarshal(data []byte) error {
	if len(data) < 3 {
		return errBufferTooSmall
	}

	m.Version = protocol.Version{Major: data[0], Minor: data[1]}

	cookieLen := int(data[2])
	if len(data) < 3+cookieLen {
		return errLengthMismatch
	}
	m.Cookie = append([]byte{}, data[3:3+cookieLen]...)

	return nil
}
