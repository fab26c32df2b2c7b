package decode

import "net/netip"

// parseL2TP keys tunneled sessions on (tunnel ID, session ID). Both
// L2TPv2 control and data messages carry the two IDs at the same
// offsets once the flags word is accounted for.
func parseL2TP(payload []byte) (transportInfo, error) {
	// flags/version (2) + tunnel ID (2) + session ID (2)
	if len(payload) < 6 {
		return transportInfo{}, ErrInvalidPacket
	}

	version := payload[1] & 0x0F
	if version != 2 && version != 3 {
		return transportInfo{}, ErrInvalidPacket
	}

	return transportInfo{
		srcPort: be16(payload[2:4]),
		dstPort: be16(payload[4:6]),
	}, nil
}

// parseMPLSInIP handles protocol 137 (MPLS carried directly in IP):
// the top label (truncated to 16 bits) and its traffic class become the
// surrogates.
func parseMPLSInIP(payload []byte) (transportInfo, error) {
	label, tc, _, err := mplsTopLabel(payload)
	if err != nil {
		return transportInfo{}, err
	}

	return transportInfo{
		srcPort: uint16(label),
		dstPort: uint16(tc),
	}, nil
}

// mplsTopLabel reads the top MPLS label stack entry (RFC 3032) and
// walks the stack to the bottom, returning the offset of the inner
// payload
func mplsTopLabel(payload []byte) (label uint32, tc uint8, innerOffset int, err error) {
	if len(payload) < 4 {
		return 0, 0, 0, ErrInvalidPacket
	}

	label = uint32(payload[0])<<12 | uint32(payload[1])<<4 | uint32(payload[2])>>4
	tc = (payload[2] >> 1) & 0x07

	offset := 0
	for {
		if offset+4 > len(payload) {
			return 0, 0, 0, ErrInvalidPacket
		}
		bottom := payload[offset+2]&0x01 != 0
		offset += 4
		if bottom {
			break
		}
	}

	return label, tc, offset, nil
}

// decodeMPLSStack handles the MPLS EtherTypes (0x8847/0x8848). When the
// bottom of the label stack carries a recognizable IP packet, the inner
// 5-tuple wins; otherwise the flow is keyed on the top label.
func decodeMPLSStack(payload []byte) (netKeys, error) {
	label, tc, innerOffset, err := mplsTopLabel(payload)
	if err != nil {
		return netKeys{}, err
	}

	if inner := payload[innerOffset:]; len(inner) > 0 {
		switch inner[0] >> 4 {
		case 4:
			if keys, err := decodeIPv4(inner); err == nil {
				return keys, nil
			}
		case 6:
			if keys, err := decodeIPv6(inner); err == nil {
				return keys, nil
			}
		}
	}

	return netKeys{
		srcIP:   netip.IPv4Unspecified(),
		dstIP:   netip.IPv4Unspecified(),
		srcPort: uint16(label),
		dstPort: uint16(tc),
		proto:   protoMPLSInIP,
		size:    uint32(len(payload)),
	}, nil
}

// WireGuard message types (EtherType 0x88B8)
const (
	wgHandshakeInitiation = 1
	wgHandshakeResponse   = 2
	wgHandshakeCookie     = 3
	wgData                = 4

	wgDefaultPort = 51820
)

// decodeWireGuard validates the message type against its fixed wire
// sizes and keys the flow on (message type, default port)
func decodeWireGuard(payload []byte) (netKeys, error) {
	if len(payload) < 4 {
		return netKeys{}, ErrInvalidPacket
	}

	msgType := payload[0]
	switch msgType {
	case wgHandshakeInitiation:
		if len(payload) != 148 {
			return netKeys{}, ErrInvalidPacket
		}
	case wgHandshakeResponse:
		if len(payload) != 92 {
			return netKeys{}, ErrInvalidPacket
		}
	case wgHandshakeCookie:
		if len(payload) != 64 {
			return netKeys{}, ErrInvalidPacket
		}
	case wgData:
		if len(payload) < 16 {
			return netKeys{}, ErrInvalidPacket
		}
	default:
		return netKeys{}, ErrInvalidPacket
	}

	return netKeys{
		srcIP:   netip.IPv4Unspecified(),
		dstIP:   netip.IPv4Unspecified(),
		srcPort: uint16(msgType),
		dstPort: wgDefaultPort,
		proto:   protoUDP,
		size:    uint32(len(payload)),
	}, nil
}

// Vendor VPN channel constants (EtherTypes 0x0A08 / 0x4B65)
const (
	vpnDataPort        = 2186
	vpnControlPort     = 19301
	vpnDataProtocol    = 21
	vpnControlProtocol = 22

	vpnHeaderLen = 4
)

// decodeVPNData parses the vendor VPN data channel: a 4-byte header
// (version, flags, sequence) potentially followed by an encapsulated IP
// packet whose addresses are recovered when present
func decodeVPNData(payload []byte) (netKeys, error) {
	if len(payload) < vpnHeaderLen {
		return netKeys{}, ErrInvalidPacket
	}

	src, dst := extractInnerIPs(payload[vpnHeaderLen:])

	return netKeys{
		srcIP:   src,
		dstIP:   dst,
		srcPort: vpnDataPort,
		dstPort: be16(payload[2:4]), // sequence number tracks the stream
		proto:   vpnDataProtocol,
		size:    uint32(len(payload)),
	}, nil
}

// decodeVPNControl parses the vendor VPN control channel analogously,
// keyed on the message ID
func decodeVPNControl(payload []byte) (netKeys, error) {
	if len(payload) < vpnHeaderLen {
		return netKeys{}, ErrInvalidPacket
	}

	src, dst := extractInnerIPs(payload[vpnHeaderLen:])

	return netKeys{
		srcIP:   src,
		dstIP:   dst,
		srcPort: vpnControlPort,
		dstPort: be16(payload[2:4]),
		proto:   vpnControlProtocol,
		size:    uint32(len(payload)),
	}, nil
}

// extractInnerIPs recovers the addresses of an encapsulated IP packet
// when the payload plausibly starts with one; both fall back to the
// unspecified address otherwise
func extractInnerIPs(data []byte) (src, dst netip.Addr) {
	src, dst = netip.IPv4Unspecified(), netip.IPv4Unspecified()

	if len(data) >= ipv4HeaderMinLen && data[0]>>4 == 4 {
		var s, d [4]byte
		copy(s[:], data[12:16])
		copy(d[:], data[16:20])
		return netip.AddrFrom4(s), netip.AddrFrom4(d)
	}
	if len(data) >= ipv6HeaderLen && data[0]>>4 == 6 {
		var s, d [16]byte
		copy(s[:], data[8:24])
		copy(d[:], data[24:40])
		return netip.AddrFrom16(s), netip.AddrFrom16(d)
	}

	return src, dst
}
