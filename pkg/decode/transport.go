package decode

import "github.com/els0r/fluere/pkg/types"

// transportInfo is the transport/tunnel layer contribution to a flow
// key: real ports where the protocol has them, deterministic surrogates
// everywhere else.
type transportInfo struct {
	srcPort uint16
	dstPort uint16
	flags   types.TCPFlags
	tunnel  *TunnelInfo
}

const (
	tcpHeaderMinLen = 20
	udpHeaderLen4   = 8
)

// parseTransport dispatches on the IP next-protocol number. Each parser
// is a pure function of the IP payload; protocols without a parser
// surface UnknownProtocolError.
func parseTransport(proto uint8, payload []byte) (transportInfo, error) {
	switch proto {
	case protoTCP:
		return parseTCP(payload)
	case protoUDP:
		return parseUDP(payload)
	case protoICMP:
		return parseICMP(payload)
	case protoICMPv6:
		return parseICMPv6(payload)
	case protoIGMP:
		return parseIGMP(payload)
	case protoGRE:
		return parseGRE(payload)
	case protoESP:
		return parseESP(payload)
	case protoAH:
		return parseAH(payload)
	case protoOSPF:
		return parseOSPF(payload)
	case protoPIM:
		return parsePIM(payload)
	case protoVRRP:
		return parseVRRP(payload)
	case protoL2TP:
		return parseL2TP(payload)
	case protoISIS:
		return parseISIS(payload)
	case protoSCTP:
		return parseSCTP(payload)
	case protoMPLSInIP:
		return parseMPLSInIP(payload)
	case protoBGP:
		return parseBGP(payload)
	}

	if isOpenVPNProto(proto) {
		return parseOpenVPN(payload)
	}

	return transportInfo{}, UnknownProtocolError(proto)
}

func parseTCP(payload []byte) (transportInfo, error) {
	// flag byte sits at offset 13, NS bit in the low bit of offset 12
	if len(payload) < tcpHeaderMinLen {
		return transportInfo{}, ErrInvalidPacket
	}

	return transportInfo{
		srcPort: be16(payload[0:2]),
		dstPort: be16(payload[2:4]),
		flags:   types.TCPFlagsFromWire(payload[12], payload[13]),
	}, nil
}

func parseUDP(payload []byte) (transportInfo, error) {
	if len(payload) < udpHeaderLen4 {
		return transportInfo{}, ErrInvalidPacket
	}

	return transportInfo{
		srcPort: be16(payload[0:2]),
		dstPort: be16(payload[2:4]),
	}, nil
}

// parseSCTP reads the SCTP common header, which shares the leading
// port layout with TCP/UDP
func parseSCTP(payload []byte) (transportInfo, error) {
	// ports (4) + verification tag (4) + checksum (4)
	if len(payload) < 12 {
		return transportInfo{}, ErrInvalidPacket
	}

	return transportInfo{
		srcPort: be16(payload[0:2]),
		dstPort: be16(payload[2:4]),
	}, nil
}

// parseBGP handles BGP spoken directly over IP (protocol 179): the
// well-known port number as the source surrogate, the message type as
// the destination surrogate.
func parseBGP(payload []byte) (transportInfo, error) {
	// 16-byte marker + length (2) + type (1)
	if len(payload) < 19 {
		return transportInfo{}, ErrInvalidPacket
	}
	for _, b := range payload[:16] {
		if b != 0xFF {
			return transportInfo{}, ErrInvalidPacket
		}
	}

	msgType := payload[18]
	if msgType < 1 || msgType > 5 {
		return transportInfo{}, ErrInvalidPacket
	}

	return transportInfo{
		srcPort: 179,
		dstPort: uint16(msgType),
	}, nil
}

func be16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
