// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

// mtuProbeLadder is the fallback MTU ladder a connection falls
// through after repeated retransmit timeouts, largest first. Mirrors
// OpenSSL's g_probable_mtu.
var mtuProbeLadder = [...]uint32{1500, 512, 256}

// maxRecordOverhead approximates OpenSSL's DTLS1_MAX_MTU_OVERHEAD: the
// worst-case bytes the record layer (header, MAC, block padding) adds
// on top of the plaintext a caller asks to send.
const maxRecordOverhead = 48

// MtuController tracks the link MTU and the MTU effectively available
// to the record layer once the transport's reported overhead is
// subtracted.
type MtuController struct {
	linkMTU      uint32
	effectiveMTU uint32
}

// LinkMinMTU is the smallest MTU this controller will ever fall back
// to: the last, smallest entry of the probe ladder.
func LinkMinMTU() uint32 {
	return mtuProbeLadder[len(mtuProbeLadder)-1]
}

// SetLinkMTU sets the link MTU hint. Rejected if n is below the probe
// ladder floor.
func (m *MtuController) SetLinkMTU(n uint32) error {
	if n < LinkMinMTU() {
		return errMtuTooSmall
	}

	m.linkMTU = n

	return nil
}

// SetMTU sets the effective MTU directly, bypassing Query. Rejected if
// n is below the minimum the record layer can work with.
func (m *MtuController) SetMTU(n uint32) error {
	if n < LinkMinMTU()-maxRecordOverhead {
		return errMtuTooSmall
	}

	m.effectiveMTU = n

	return nil
}

// LinkMTU returns the current link MTU hint, or 0 if unset.
func (m *MtuController) LinkMTU() uint32 { return m.linkMTU }

// EffectiveMTU returns the MTU currently available to the record
// layer.
func (m *MtuController) EffectiveMTU() uint32 { return m.effectiveMTU }

// Query derives the effective MTU for transport. If a link MTU is
// already set, the effective MTU is derived from it directly by
// subtracting the transport's own reported overhead; otherwise,
// unless NO_QUERY_MTU is set, the transport is asked for the path
// MTU, which becomes the new link MTU and is clamped to LinkMinMTU
// with no overhead subtracted (the transport hasn't framed anything
// yet at that point, only reported what it can carry).
func (m *MtuController) Query(transport DatagramBIO, opts Options) error {
	if m.linkMTU > 0 {
		m.effectiveMTU = effectiveFromLinkMTU(m.linkMTU, uint32(transport.MTUOverhead()))

		return nil
	}

	if opts.Has(OptionNoQueryMTU) {
		return nil
	}

	mtu, err := transport.QueryMTU()
	if err != nil {
		return err
	}

	m.linkMTU = clampMTU(uint32(mtu), LinkMinMTU())

	return nil
}

// effectiveFromLinkMTU subtracts the transport's reported per-datagram
// overhead from linkMTU, floored so the record layer is never told it
// has less than LinkMinMTU−maxRecordOverhead to work with.
func effectiveFromLinkMTU(linkMTU, transportOverhead uint32) uint32 {
	var floor uint32
	if LinkMinMTU() > maxRecordOverhead {
		floor = LinkMinMTU() - maxRecordOverhead
	}

	if transportOverhead >= linkMTU {
		return floor
	}

	return clampMTU(linkMTU-transportOverhead, floor)
}

// clampMTU returns n, or floor if n is below it.
func clampMTU(n, floor uint32) uint32 {
	if n < floor {
		return floor
	}

	return n
}

// FallbackCandidate consults transport for a fallback MTU after
// repeated retransmit timeouts, without adopting it. The caller
// (RetransmitController) decides whether to adopt the result via
// SetLinkMTU.
func (m *MtuController) FallbackCandidate(transport DatagramBIO) uint32 {
	fallback := uint32(transport.FallbackMTU())

	for _, rung := range mtuProbeLadder {
		if rung < m.linkMTU && rung >= fallback {
			return rung
		}
	}

	return fallback
}
