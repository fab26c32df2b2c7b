package decode

// ESP and AH both key on the Security Parameters Index: its upper 16
// bits form the source-port surrogate, the lower 16 bits the destination
// one. The sequence number is retained as metadata.

func parseESP(payload []byte) (transportInfo, error) {
	// SPI (4) + sequence number (4)
	if len(payload) < 8 {
		return transportInfo{}, ErrInvalidPacket
	}

	spi := be32(payload[0:4])

	return transportInfo{
		srcPort: uint16(spi >> 16),
		dstPort: uint16(spi),
		tunnel: &TunnelInfo{
			Key:         spi,
			Sequence:    be32(payload[4:8]),
			HasKey:      true,
			HasSequence: true,
		},
	}, nil
}

func parseAH(payload []byte) (transportInfo, error) {
	// next header (1) + payload length (1) + reserved (2) + SPI (4) +
	// sequence number (4)
	if len(payload) < 12 {
		return transportInfo{}, ErrInvalidPacket
	}

	spi := be32(payload[4:8])

	return transportInfo{
		srcPort: uint16(spi >> 16),
		dstPort: uint16(spi),
		tunnel: &TunnelInfo{
			Key:         spi,
			Sequence:    be32(payload[8:12]),
			HasKey:      true,
			HasSequence: true,
		},
	}, nil
}
