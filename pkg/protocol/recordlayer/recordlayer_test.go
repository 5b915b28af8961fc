// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import (
	"errors"
	"reflect"
	"testing"

	"github.com/crossbuild/dtls/pkg/protocol"
	"github.com/crossbuild/dtls/pkg/protocol/handshake"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := &Header{
		ContentType:    protocol.ContentTypeHandshake,
		Version:        protocol.Version1_2,
		Epoch:          3,
		SequenceNumber: 0x0000deadbeef12,
		Length:         77,
	}

	raw, err := h.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != HeaderSize {
		t.Fatalf("got length %d, want %d", len(raw), HeaderSize)
	}

	parsed := &Header{}
	if err := parsed.Unmarshal(raw); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(h, parsed) {
		t.Errorf("got %#v, want %#v", parsed, h)
	}
}

func TestHeaderSequenceNumberOverflow(t *testing.T) {
	h := &Header{SequenceNumber: MaxSequenceNumber + 1}
	if _, err := h.Marshal(); !errors.Is(err, errSequenceNumberOverflow) {
		t.Fatalf("got error %v, want errSequenceNumberOverflow", err)
	}
}

func TestHeaderShort(t *testing.T) {
	h := &Header{}
	if err := h.Unmarshal(make([]byte, 4)); !errors.Is(err, ErrInvalidPacketLength) {
		t.Fatalf("got error %v, want ErrInvalidPacketLength", err)
	}
}

func TestRecordLayerRoundTrip(t *testing.T) {
	record := &RecordLayer{
		Header: Header{Version: protocol.Version1_2, Epoch: 0, SequenceNumber: 1},
		Content: &handshake.Handshake{
			Header: handshake.Header{MessageSequence: 1},
			Message: &handshake.MessageHelloVerifyRequest{
				Version: protocol.Version1_0,
				Cookie:  []byte{9, 8, 7, 6},
			},
		},
	}

	raw, err := record.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	parsed := &RecordLayer{
		Content: &handshake.Handshake{Message: &handshake.MessageHelloVerifyRequest{}},
	}
	if err := parsed.Unmarshal(raw); err != nil {
		t.Fatal(err)
	}

	if parsed.Header.ContentType != protocol.ContentTypeHandshake {
		t.Errorf("got content type %s, want Handshake", parsed.Header.ContentType)
	}
	if parsed.Header.Length != record.Header.Length {
		t.Errorf("got length %d, want %d", parsed.Header.Length, record.Header.Length)
	}
}

func TestRecordLayerWrongContentType(t *testing.T) {
	raw := make([]byte, HeaderSize)
	raw[0] = byte(protocol.ContentTypeAlert)

	parsed := &RecordLayer{Content: &handshake.Handshake{Message: &handshake.MessageHelloVerifyRequest{}}}
	if err := parsed.Unmarshal(raw); !errors.Is(err, errInvalidContentType) {
		t.Fatalf("got error %v, want errInvalidContentType", err)
	}
}
