// Package decode turns raw link-layer frames into flow keys and
// per-packet metrics.
//
// The decoder is a dispatching tree: the link layer (Ethernet II, VLAN
// recursion, VXLAN decapsulation) feeds an EtherType dispatch, which
// feeds the network-layer parsers, which feed the transport/tunnel
// parsers. Every parser is a pure function over a byte slice; there is
// no hidden state and no partial output on error.
package decode

import (
	"net/netip"

	"github.com/els0r/fluere/pkg/types"
)

// EtherType values dispatched by the decoder
const (
	etherTypeIPv4      = 0x0800
	etherTypeARP       = 0x0806
	etherTypeRARP      = 0x8035
	etherTypeVLAN      = 0x8100
	etherTypeIPv6      = 0x86DD
	etherTypeMPLSUni   = 0x8847
	etherTypeMPLSMulti = 0x8848
	etherTypeWireGuard = 0x88B8

	// IPv4 EtherType aliases observed in the wild on some vendor gear
	etherTypeIPv4Alias1 = 0x1715
	etherTypeIPv4Alias2 = 0x4A7D

	// Vendor VPN data / control channel tags
	etherTypeVPNData    = 0x0A08
	etherTypeVPNControl = 0x4B65
)

const (
	etherHeaderLen = 14
	vlanHeaderLen  = 4

	// maxVLANDepth bounds QinQ / misencapsulated recursion
	maxVLANDepth = 4
)

// Synthesized protocol number distinguishing ARP keys from raw IPv4
const protoARPSynthetic = 4

// IANA protocol numbers handled by the transport-layer dispatch
const (
	protoICMP     = 1
	protoIGMP     = 2
	protoTCP      = 6
	protoUDP      = 17
	protoGRE      = 47
	protoESP      = 50
	protoAH       = 51
	protoICMPv6   = 58
	protoOSPF     = 89
	protoPIM      = 103
	protoVRRP     = 112
	protoL2TP     = 115
	protoISIS     = 124
	protoSCTP     = 132
	protoMPLSInIP = 137
	protoBGP      = 179
)

// Packet is the decoded representation of one frame: the canonical flow
// key of both directions plus the per-packet metrics folded into the
// flow record by the aggregator.
type Packet struct {
	Key        types.FlowKey
	ReverseKey types.FlowKey

	// Size is the packet size in bytes as accounted towards the flow
	// totals (the IP total length where an IP header is present)
	Size  uint32
	TTL   uint8
	Tos   uint8
	Flags types.TCPFlags

	// Timestamp is the capture time in microseconds since epoch
	Timestamp int64

	// Tunnel carries GRE key / ESP sequence metadata when present
	Tunnel *TunnelInfo
}

// TunnelInfo retains tunnel / security association metadata that does
// not participate in the flow key
type TunnelInfo struct {
	GREVersion  uint8
	Key         uint32
	Sequence    uint32
	HasKey      bool
	HasSequence bool
}

// netKeys is the internal result of the network + transport layer walk
type netKeys struct {
	srcIP   netip.Addr
	dstIP   netip.Addr
	srcPort uint16
	dstPort uint16
	proto   uint8
	size    uint32
	ttl     uint8
	tos     uint8
	flags   types.TCPFlags
	tunnel  *TunnelInfo
}

// etherFrame is a parsed Ethernet II header plus its payload
type etherFrame struct {
	srcMac    types.MacAddr
	dstMac    types.MacAddr
	etherType uint16
	payload   []byte
}

// Decode parses a raw link-layer frame captured at tsMicros. It returns
// a typed parse error for anything it cannot make sense of; errors are
// strictly non-fatal and leave no partial state behind.
func Decode(data []byte, tsMicros int64) (*Packet, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPacket
	}

	frame, err := parseEtherFrame(data)
	if err != nil {
		return nil, err
	}

	// IP-over-UDP tunnels: if the frame carries a UDP datagram whose
	// payload opens with the fixed VXLAN header, strip the tunnel and
	// restart at the inner Ethernet frame. The flow key then reflects
	// the inner 5-tuple, not the outer tunnel endpoints.
	if inner, ok := decapsulateVXLAN(frame); ok {
		innerFrame, err := parseEtherFrame(inner)
		if err != nil {
			return nil, err
		}
		frame = innerFrame
	}

	keys, err := decodeEtherType(frame.etherType, frame.payload, 0)
	if err != nil {
		return nil, err
	}

	forward := types.FlowKey{
		SrcIP:   keys.srcIP,
		DstIP:   keys.dstIP,
		SrcPort: keys.srcPort,
		DstPort: keys.dstPort,
		Proto:   keys.proto,
		SrcMac:  frame.srcMac,
		DstMac:  frame.dstMac,
	}

	return &Packet{
		Key:        forward,
		ReverseKey: forward.Reverse(),
		Size:       keys.size,
		TTL:        keys.ttl,
		Tos:        keys.tos,
		Flags:      keys.flags,
		Timestamp:  tsMicros,
		Tunnel:     keys.tunnel,
	}, nil
}

func parseEtherFrame(data []byte) (etherFrame, error) {
	if len(data) < etherHeaderLen {
		return etherFrame{}, ErrInvalidPacket
	}

	var frame etherFrame
	copy(frame.dstMac[:], data[0:6])
	copy(frame.srcMac[:], data[6:12])
	frame.etherType = uint16(data[12])<<8 | uint16(data[13])
	frame.payload = data[etherHeaderLen:]

	return frame, nil
}

// decodeEtherType dispatches the frame payload based on its EtherType.
// Unknown tags first retry the standard parsers against the payload (a
// last-resort safety net for double-encapsulated frames) and only then
// fall through to the raw-header fallback.
func decodeEtherType(et uint16, payload []byte, depth int) (netKeys, error) {
	switch et {
	case etherTypeIPv4, etherTypeIPv4Alias1, etherTypeIPv4Alias2:
		return decodeIPv4(payload)
	case etherTypeIPv6:
		return decodeIPv6(payload)
	case etherTypeARP, etherTypeRARP:
		return decodeARP(payload)
	case etherTypeVLAN:
		return decodeVLAN(payload, depth)
	case etherTypeMPLSUni, etherTypeMPLSMulti:
		return decodeMPLSStack(payload)
	case etherTypeWireGuard:
		return decodeWireGuard(payload)
	case etherTypeVPNData:
		return decodeVPNData(payload)
	case etherTypeVPNControl:
		return decodeVPNControl(payload)
	}

	// Vendor / experimental ranges always take the raw path
	if isVendorEtherType(et) {
		return decodeRaw(payload)
	}

	// Retry chain for unknown EtherTypes. Must never mask an earlier
	// successful dispatch; order matters and the raw fallback comes last.
	if keys, err := decodeIPv4(payload); err == nil {
		return keys, nil
	}
	if keys, err := decodeIPv6(payload); err == nil {
		return keys, nil
	}
	if keys, err := decodeARP(payload); err == nil {
		return keys, nil
	}
	if depth < maxVLANDepth {
		if keys, err := decodeVLAN(payload, depth); err == nil {
			return keys, nil
		}
	}
	if keys, err := decodeRaw(payload); err == nil {
		return keys, nil
	}

	return netKeys{}, UnknownEtherTypeError(et)
}

// decodeVLAN strips an 802.1Q tag (TCI + inner EtherType) and re-enters
// the EtherType dispatch for the inner frame. QinQ stacks recurse up to
// maxVLANDepth levels.
func decodeVLAN(payload []byte, depth int) (netKeys, error) {
	if depth >= maxVLANDepth {
		return netKeys{}, ErrInvalidPacket
	}
	if len(payload) < vlanHeaderLen {
		return netKeys{}, ErrInvalidPacket
	}

	innerType := uint16(payload[2])<<8 | uint16(payload[3])
	return decodeEtherType(innerType, payload[vlanHeaderLen:], depth+1)
}

func isVendorEtherType(et uint16) bool {
	return (et >= 0xB800 && et <= 0xBFFF) || (et >= 0x3600 && et <= 0x36FF)
}

// vxlanHeader is the fixed 8-byte header (flags + VNI) that identifies
// the VXLAN encapsulation handled here
var vxlanHeader = [8]byte{0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x64, 0x00}

const udpHeaderLen = 8

// decapsulateVXLAN returns the inner Ethernet frame if the given frame
// is a VXLAN-in-UDP tunnel packet
func decapsulateVXLAN(frame etherFrame) ([]byte, bool) {
	proto, ipPayload, ok := ipTransportPayload(frame)
	if !ok || proto != protoUDP {
		return nil, false
	}
	if len(ipPayload) < udpHeaderLen {
		return nil, false
	}

	udpPayload := ipPayload[udpHeaderLen:]
	if len(udpPayload) < len(vxlanHeader) {
		return nil, false
	}
	for i := range vxlanHeader {
		if udpPayload[i] != vxlanHeader[i] {
			return nil, false
		}
	}

	return udpPayload[len(vxlanHeader):], true
}

// ipTransportPayload peels the IP header off an IPv4/IPv6 frame and
// returns the transport protocol plus its payload. Used only by the
// tunnel detection pre-pass; key extraction runs the full parsers.
func ipTransportPayload(frame etherFrame) (proto uint8, payload []byte, ok bool) {
	switch frame.etherType {
	case etherTypeIPv4:
		if len(frame.payload) < ipv4HeaderMinLen {
			return 0, nil, false
		}
		ihl := int(frame.payload[0]&0x0F) * 4
		if ihl < ipv4HeaderMinLen || len(frame.payload) < ihl {
			return 0, nil, false
		}
		return frame.payload[9], frame.payload[ihl:], true
	case etherTypeIPv6:
		if len(frame.payload) < ipv6HeaderLen {
			return 0, nil, false
		}
		return frame.payload[6], frame.payload[ipv6HeaderLen:], true
	}
	return 0, nil, false
}
