// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import (
	"encoding/binary"

	"github.com/crossbuild/dtls/pkg/protocol"
)

// HeaderSize is the length in bytes of the fixed DTLS record header.
const HeaderSize = 13

// MaxSequenceNumber is the largest value the 48-bit sequence number
// field can carry.
const MaxSequenceNumber = (uint64(1) << 48) - 1

// Header is the 13-byte record layer header described by RFC 6347
// Section 4.1:
//
//	content_type(1) | version(2) | epoch(2) | sequence_number(6) | length(2)
type Header struct {
	ContentType    protocol.ContentType
	Version        protocol.Version
	Epoch          uint16
	SequenceNumber uint64
	Length         uint16
}

// Marshal encodes h into its 13-byte wire form.
func (h *Header) Marshal() ([]byte, error) {
	if h.SequenceNumber > MaxSequenceNumber {
		return nil, errSequenceNumberOverflow
	}

	out := make([]byte, HeaderSize)
	out[0] = byte(h.ContentType)
	out[1] = h.Version.Major
	out[2] = h.Version.Minor
	binary.BigEndian.PutUint16(out[3:5], h.Epoch)

	seq := make([]byte, 8)
	binary.BigEndian.PutUint64(seq, h.SequenceNumber)
	copy(out[5:11], seq[2:])

	binary.BigEndian.PutUint16(out[11:13], h.Length)

	return out, nil
}

// Unmarshal decodes h from the leading 13 bytes of data.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < HeaderSize {
		return ErrInvalidPacketLength
	}

	h.ContentType = protocol.ContentType(data[0])
	h.Version = protocol.Version{Major: data[1], Minor: data[2]}
	h.Epoch = binary.BigEndian.Uint16(data[3:5])

	seq := make([]byte, 8)
	copy(seq[2:], data[5:11])
	h.SequenceNumber = binary.BigEndian.Uint64(seq)

	h.Length = binary.BigEndian.Uint16(data[11:13])

	return nil
}

// Content is a payload that can sit inside a RecordLayer, e.g. a
// handshake.Handshake. It mirrors how the handshake package implements
// its own Message interface.
type Content interface {
	ContentType() protocol.ContentType
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// RecordLayer is a full DTLS record: the fixed header plus its
// content.
type RecordLayer struct {
	Header  Header
	Content Content
}

// Marshal encodes the record, filling in Header.ContentType and
// Header.Length from the content.
func (r *RecordLayer) Marshal() ([]byte, error) {
	if r.Content == nil {
		return nil, errBufferTooSmall
	}

	payload, err := r.Content.Marshal()
	if err != nil {
		return nil, err
	}

	r.Header.ContentType = r.Content.ContentType()
	r.Header.Length = uint16(len(payload))

	header, err := r.Header.Marshal()
	if err != nil {
		return nil, err
	}

	return append(header, payload...), nil
}

// Unmarshal decodes a record from data into r.Content, which must be
// pre-populated with a concrete Content implementation so Unmarshal
// knows what to decode the payload as.
func (r *RecordLayer) Unmarshal(data []byte) error {
	if err := r.Header.Unmarshal(data); err != nil {
		return err
	}

	if r.Header.ContentType != protocol.ContentTypeHandshake {
		return errInvalidContentType
	}

	if len(data) < HeaderSize+int(r.Header.Length) {
		return ErrInvalidPacketLength
	}

	return r.Content.Unmarshal(data[HeaderSize : HeaderSize+int(r.Header.Length)])
}
