package decode

import "net/netip"

// decodeRaw is the last-resort fallback for frames no standard parser
// validates: the first payload byte becomes the protocol, the leading
// 2/2 bytes the port surrogates. Vendor / experimental EtherTypes
// (0xB800-0xBFFF, 0x3600-0x36FF) always take this path. It never claims
// success for payloads too short to populate the surrogates.
func decodeRaw(payload []byte) (netKeys, error) {
	if len(payload) == 0 {
		return netKeys{}, ErrEmptyPacket
	}
	if len(payload) < 4 {
		return netKeys{}, ErrInvalidPacket
	}

	return netKeys{
		srcIP:   netip.IPv4Unspecified(),
		dstIP:   netip.IPv4Unspecified(),
		srcPort: be16(payload[0:2]),
		dstPort: be16(payload[2:4]),
		proto:   payload[0],
		size:    uint32(len(payload)),
	}, nil
}
