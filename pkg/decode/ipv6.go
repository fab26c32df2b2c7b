package decode

import (
	"net/netip"

	"golang.org/x/net/ipv6"
)

const ipv6HeaderLen = ipv6.HeaderLen

// decodeIPv6 extracts the flow key material from an IPv6 packet. The
// DSCP code point is the top six bits of the Traffic Class byte; the hop
// limit stands in for the TTL extremes.
func decodeIPv6(payload []byte) (netKeys, error) {
	if len(payload) < ipv6HeaderLen {
		return netKeys{}, ErrInvalidPacket
	}
	if payload[0]>>4 != 6 {
		return netKeys{}, ErrInvalidPacket
	}

	proto := payload[6]

	// Traffic Class spans the low nibble of byte 0 and the high nibble
	// of byte 1; DSCP is its upper six bits
	trafficClass := (payload[0]&0x0F)<<4 | payload[1]>>4
	dscp := trafficClass >> 2
	tos, _ := TOSFromDSCP(dscp)

	payloadLen := uint32(payload[4])<<8 | uint32(payload[5])

	transport, err := parseTransport(proto, payload[ipv6HeaderLen:])
	if err != nil {
		return netKeys{}, err
	}

	var src, dst [16]byte
	copy(src[:], payload[8:24])
	copy(dst[:], payload[24:40])

	return netKeys{
		srcIP:   netip.AddrFrom16(src),
		dstIP:   netip.AddrFrom16(dst),
		srcPort: transport.srcPort,
		dstPort: transport.dstPort,
		proto:   proto,
		size:    payloadLen + ipv6HeaderLen,
		ttl:     payload[7],
		tos:     tos,
		flags:   transport.flags,
		tunnel:  transport.tunnel,
	}, nil
}
