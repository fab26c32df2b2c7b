// Package types holds the shared value types of fluere: flow keys, TCP
// flag sets and the flow record aggregate that is exported to CSV.
package types

import (
	"fmt"
	"net/netip"
)

// MacAddr is a 6-byte link layer address. The zero value acts as the
// "no MAC" marker used when MAC keying is disabled, so that keys collapse
// across L2 domains.
type MacAddr [6]byte

// String returns the canonical colon-separated hex representation
func (m MacAddr) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// IsZero reports whether the address is the all-zero address
func (m MacAddr) IsZero() bool {
	return m == MacAddr{}
}

// FlowKey is the hashable identity of a flow's forward direction. For
// protocols without transport ports the port fields carry per-protocol
// surrogates (ICMP type/code, SPI halves, tunnel/session IDs, ...), which
// keeps independent sessions apart while the key stays comparable.
type FlowKey struct {
	SrcIP   netip.Addr
	DstIP   netip.Addr
	SrcPort uint16
	DstPort uint16
	Proto   uint8
	SrcMac  MacAddr
	DstMac  MacAddr
}

// Reverse returns the key of the opposite direction (src/dst swapped)
func (k FlowKey) Reverse() FlowKey {
	return FlowKey{
		SrcIP:   k.DstIP,
		DstIP:   k.SrcIP,
		SrcPort: k.DstPort,
		DstPort: k.SrcPort,
		Proto:   k.Proto,
		SrcMac:  k.DstMac,
		DstMac:  k.SrcMac,
	}
}

// StripMacs zeroes both MAC addresses. Used when MAC keying is disabled
// so that the same 5-tuple observed behind different gateways aggregates
// into a single flow.
func (k *FlowKey) StripMacs() {
	k.SrcMac = MacAddr{}
	k.DstMac = MacAddr{}
}

// String renders the key for logging / table output
func (k FlowKey) String() string {
	return fmt.Sprintf("%s:%d->%s:%d/%d", k.SrcIP, k.SrcPort, k.DstIP, k.DstPort, k.Proto)
}
