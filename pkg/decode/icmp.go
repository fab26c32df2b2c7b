package decode

const icmpHeaderLen = 4

// parseICMP keys ICMPv4 sessions on (type, code). The reverse key swaps
// the two surrogates, so a reply only joins the request's flow when its
// (code, type) equals the request's (type, code); an echo request (8, 0)
// and its echo reply (0, 0) therefore form two separate flows.
func parseICMP(payload []byte) (transportInfo, error) {
	if len(payload) < icmpHeaderLen {
		return transportInfo{}, ErrInvalidPacket
	}

	return transportInfo{
		srcPort: uint16(payload[0]),
		dstPort: uint16(payload[1]),
	}, nil
}

// parseICMPv6 keys ICMPv6 sessions on (type, code)
func parseICMPv6(payload []byte) (transportInfo, error) {
	if len(payload) < icmpHeaderLen {
		return transportInfo{}, ErrInvalidPacket
	}

	return transportInfo{
		srcPort: uint16(payload[0]),
		dstPort: uint16(payload[1]),
	}, nil
}
