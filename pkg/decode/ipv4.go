package decode

import (
	"net/netip"

	"golang.org/x/net/ipv4"
)

const ipv4HeaderMinLen = ipv4.HeaderLen

// decodeIPv4 extracts the flow key material from an IPv4 packet:
// endpoints, next protocol, total length, TTL and the DSCP-derived TOS
// byte, then hands the payload to the transport-layer dispatch.
func decodeIPv4(payload []byte) (netKeys, error) {
	if len(payload) < ipv4HeaderMinLen {
		return netKeys{}, ErrInvalidPacket
	}
	if payload[0]>>4 != 4 {
		return netKeys{}, ErrInvalidPacket
	}

	ihl := int(payload[0]&0x0F) * 4
	if ihl < ipv4HeaderMinLen || len(payload) < ihl {
		return netKeys{}, ErrInvalidPacket
	}

	proto := payload[9]

	// Only the first fragment carries a transport header; everything
	// else cannot contribute key material. ESP is exempt since it has no
	// transport layer to lose.
	if proto != protoESP {
		fragOffset := (uint16(payload[6]&0x1F) << 8) | uint16(payload[7])
		if fragOffset != 0 {
			return netKeys{}, ErrInvalidPacket
		}
	}

	totalLen := uint32(payload[2])<<8 | uint32(payload[3])
	if totalLen < uint32(ihl) {
		return netKeys{}, ErrInvalidPacket
	}

	dscp := payload[1] >> 2

	// Unknown DSCP values degrade to TOS 0 rather than failing the frame
	tos, _ := TOSFromDSCP(dscp)

	transport, err := parseTransport(proto, payload[ihl:])
	if err != nil {
		return netKeys{}, err
	}

	var src, dst [4]byte
	copy(src[:], payload[12:16])
	copy(dst[:], payload[16:20])

	return netKeys{
		srcIP:   netip.AddrFrom4(src),
		dstIP:   netip.AddrFrom4(dst),
		srcPort: transport.srcPort,
		dstPort: transport.dstPort,
		proto:   proto,
		size:    totalLen,
		ttl:     payload[8],
		tos:     tos,
		flags:   transport.flags,
		tunnel:  transport.tunnel,
	}, nil
}
