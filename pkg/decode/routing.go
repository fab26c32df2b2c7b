package decode

// Parsers for the routing / redundancy protocols carried directly over
// IP. Each populates deterministic port surrogates so that independent
// sessions stay distinguishable in the flow table.

// parseOSPF uses (packet type, auth type) as surrogates
func parseOSPF(payload []byte) (transportInfo, error) {
	// version (1) + type (1) + length (2) + router ID (4) + area ID (4)
	// + checksum (2) + autype (2)
	if len(payload) < 16 {
		return transportInfo{}, ErrInvalidPacket
	}
	if payload[0] != 2 && payload[0] != 3 {
		return transportInfo{}, ErrInvalidPacket
	}

	pktType := payload[1]
	if pktType < 1 || pktType > 5 {
		return transportInfo{}, ErrInvalidPacket
	}

	return transportInfo{
		srcPort: uint16(pktType),
		dstPort: be16(payload[14:16]),
	}, nil
}

// parsePIM uses the PIM message type as the source surrogate
func parsePIM(payload []byte) (transportInfo, error) {
	// version/type (1) + reserved (1) + checksum (2)
	if len(payload) < 4 {
		return transportInfo{}, ErrInvalidPacket
	}
	if payload[0]>>4 != 2 {
		return transportInfo{}, ErrInvalidPacket
	}

	msgType := payload[0] & 0x0F
	if msgType > 8 {
		return transportInfo{}, ErrInvalidPacket
	}

	return transportInfo{
		srcPort: uint16(msgType),
	}, nil
}

// parseVRRP uses (virtual router ID, priority) as surrogates
func parseVRRP(payload []byte) (transportInfo, error) {
	// version/type (1) + VRID (1) + priority (1) + count (1) +
	// auth/adver (2) + checksum (2)
	if len(payload) < 8 {
		return transportInfo{}, ErrInvalidPacket
	}

	version := payload[0] >> 4
	if version < 2 || version > 3 {
		return transportInfo{}, ErrInvalidPacket
	}
	if payload[0]&0x0F != 1 { // advertisement is the only defined type
		return transportInfo{}, ErrInvalidPacket
	}

	return transportInfo{
		srcPort: uint16(payload[1]),
		dstPort: uint16(payload[2]),
	}, nil
}

// parseISIS validates the common header (intradomain routeing protocol
// discriminator 0x83) and keys on the PDU type
func parseISIS(payload []byte) (transportInfo, error) {
	// discriminator (1) + header length (1) + version (1) + ID length
	// (1) + PDU type (1) + version2 (1) + reserved (1) + max areas (1)
	if len(payload) < 8 {
		return transportInfo{}, ErrInvalidPacket
	}
	if payload[0] != 0x83 {
		return transportInfo{}, ErrInvalidPacket
	}

	pduType := payload[4] & 0x1F

	return transportInfo{
		srcPort: uint16(pduType),
	}, nil
}
