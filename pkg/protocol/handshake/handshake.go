// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package handshake implements the DTLS handshake layer: the 12-byte
// fragment header and the two message types a stateless listener
// needs to speak, ClientHello and HelloVerifyRequest.
package handshake

import (
	"encoding/binary"

	"github.com/crossbuild/dtls/pkg/protocol"
)

// HeaderLength is the length in bytes of the handshake fragment
// header.
const HeaderLength = 12

// MsgType is the handshake message type, RFC 6347 Section 4.2.2.
type MsgType byte

// Handshake message types. Only the two a stateless listener parses
// or generates are used by this module; the rest are declared for
// completeness.
const (
	TypeHelloRequest       MsgType = 0
	TypeClientHello        MsgType = 1
	TypeServerHello        MsgType = 2
	TypeHelloVerifyRequest MsgType = 3
	TypeCertificate        MsgType = 11
	TypeServerKeyExchange  MsgType = 12
	TypeCertificateRequest MsgType = 13
	TypeServerHelloDone    MsgType = 14
	TypeCertificateVerify  MsgType = 15
	TypeClientKeyExchange  MsgType = 16
	TypeFinished           MsgType = 20
)

func (t MsgType) String() string {
	switch t {
	case TypeHelloRequest:
		return "HelloRequest"
	case TypeClientHello:
		return "ClientHello"
	case TypeServerHello:
		return "ServerHello"
	case TypeHelloVerifyRequest:
		return "HelloVerifyRequest"
	case TypeCertificate:
		return "Certificate"
	case TypeServerKeyExchange:
		return "ServerKeyExchange"
	case TypeCertificateRequest:
		return "CertificateRequest"
	case TypeServerHelloDone:
		return "ServerHelloDone"
	case TypeCertificateVerify:
		return "CertificateVerify"
	case TypeClientKeyExchange:
		return "ClientKeyExchange"
	case TypeFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// Header is the 12-byte fragment header carried by every handshake
// message:
//
//	msg_type(1) | length(3) | message_seq(2) | fragment_offset(3) | fragment_length(3)
type Header struct {
	Type            MsgType
	Length          uint32 // 24-bit
	MessageSequence uint16
	FragmentOffset  uint32 // 24-bit
	FragmentLength  uint32 // 24-bit
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

func uint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// Marshal encodes h into its 12-byte wire form.
func (h *Header) Marshal() ([]byte, error) {
	out := make([]byte, HeaderLength)
	out[0] = byte(h.Type)
	putUint24(out[1:4], h.Length)
	binary.BigEndian.PutUint16(out[4:6], h.MessageSequence)
	putUint24(out[6:9], h.FragmentOffset)
	putUint24(out[9:12], h.FragmentLength)

	return out, nil
}

// Unmarshal decodes h from the leading 12 bytes of data.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < HeaderLength {
		return errBufferTooSmall
	}

	h.Type = MsgType(data[0])
	h.Length = uint24(data[1:4])
	h.MessageSequence = binary.BigEndian.Uint16(data[4:6])
	h.FragmentOffset = uint24(data[6:9])
	h.FragmentLength = uint24(data[9:12])

	return nil
}

// Message is a single handshake message body, exclusive of the
// fragment header.
type Message interface {
	MsgType() MsgType
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// Handshake couples a fragment Header with its decoded Message and
// satisfies recordlayer.Content, so a Handshake can sit directly
// inside a recordlayer.RecordLayer.
type Handshake struct {
	Header  Header
	Message Message
}

// ContentType implements recordlayer.Content.
func (h *Handshake) ContentType() protocol.ContentType {
	return protocol.ContentTypeHandshake
}

// Marshal encodes the fragment header followed by the message body,
// filling in Header.Type/Length/FragmentLength from the message. This
// module never fragments outgoing messages across multiple records:
// FragmentOffset is always 0 and FragmentLength always equals Length.
func (h *Handshake) Marshal() ([]byte, error) {
	if h.Message == nil {
		return nil, errHandshakeMessageUnset
	}

	body, err := h.Message.Marshal()
	if err != nil {
		return nil, err
	}

	h.Header.Type = h.Message.MsgType()
	h.Header.Length = uint32(len(body))
	h.Header.FragmentOffset = 0
	h.Header.FragmentLength = uint32(len(body))

	header, err := h.Header.Marshal()
	if err != nil {
		return nil, err
	}

	return append(header, body...), nil
}

// Unmarshal decodes the fragment header from data, then decodes the
// remaining bytes into h.Message, which must already hold a concrete
// Message implementation matching the wire Type.
//
// Reassembly of fragments spanning multiple records is not performed
// here; it is the HandshakeStateMachine's concern, and a fragmented
// header is rejected with errUnableToMarshalFragmented.
func (h *Handshake) Unmarshal(data []byte) error {
	if err := h.Header.Unmarshal(data); err != nil {
		return err
	}

	if h.Header.FragmentOffset != 0 || h.Header.FragmentLength != h.Header.Length {
		return errUnableToMarshalFragmented
	}

	body := data[HeaderLength:]
	if uint32(len(body)) < h.Header.Length {
		return errLengthMismatch
	}

	if h.Message == nil {
		return errHandshakeMessageUnset
	}

	return h.Message.Unmarshal(body[:h.Header.Length])
}
