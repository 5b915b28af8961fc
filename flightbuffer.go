// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"sort"
	"sync"

	"github.com/crossbuild/dtls/pkg/protocol/handshake"
)

// HandshakeFragment is one fragment of a buffered handshake message,
// per spec.md section 3. Invariant: FragOffset+FragLen <= TotalLen;
// every fragment sharing a MsgSeq shares the same MsgType and
// TotalLen.
type HandshakeFragment struct {
	MsgType    handshake.MsgType
	MsgSeq     uint16
	FragOffset uint32
	FragLen    uint32
	TotalLen   uint32
	Payload    []byte
}

type fragmentKey struct {
	msgSeq     uint16
	fragOffset uint32
}

// FlightBuffer is an ordered container of HandshakeFragment, keyed by
// (msg_seq, frag_offset), used both for outgoing messages awaiting
// retransmission and incoming out-of-order fragments awaiting
// reassembly by the HandshakeStateMachine. It provides stable
// iteration order under concurrent insertion of late fragments;
// reassembly itself is the state machine's concern.
type FlightBuffer struct {
	mu    sync.Mutex
	items map[fragmentKey]HandshakeFragment
	order []fragmentKey
}

// NewFlightBuffer returns an empty FlightBuffer.
func NewFlightBuffer() *FlightBuffer {
	return &FlightBuffer{items: make(map[fragmentKey]HandshakeFragment)}
}

// Push inserts or replaces the fragment at (f.MsgSeq, f.FragOffset).
func (b *FlightBuffer) Push(f HandshakeFragment) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := fragmentKey{f.MsgSeq, f.FragOffset}
	if _, exists := b.items[key]; !exists {
		b.order = append(b.order, key)
	}
	b.items[key] = f
}

// PopSmallest removes and returns the fragment with the smallest
// (msg_seq, frag_offset) key. The second return value is false if the
// buffer is empty.
func (b *FlightBuffer) PopSmallest() (HandshakeFragment, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.order) == 0 {
		return HandshakeFragment{}, false
	}

	sort.Slice(b.order, func(i, j int) bool {
		return keyLess(b.order[i], b.order[j])
	})

	key := b.order[0]
	b.order = b.order[1:]
	f := b.items[key]
	delete(b.items, key)

	return f, true
}

// Len reports how many fragments are currently buffered.
func (b *FlightBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.order)
}

// Clear drops every buffered fragment.
func (b *FlightBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = make(map[fragmentKey]HandshakeFragment)
	b.order = nil
}

// All returns every buffered fragment in (msg_seq, frag_offset) order,
// without removing them.
func (b *FlightBuffer) All() []HandshakeFragment {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := append([]fragmentKey(nil), b.order...)
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })

	out := make([]HandshakeFragment, 0, len(keys))
	for _, k := range keys {
		out = append(out, b.items[k])
	}

	return out
}

func keyLess(a, b fragmentKey) bool {
	if a.msgSeq != b.msgSeq {
		return a.msgSeq < b.msgSeq
	}

	return a.fragOffset < b.fragOffset
}
