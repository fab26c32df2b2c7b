package decode

// GRE header layouts handled here (version-dependent):
//
//	RFC 1701 (original): C|R|K|S|s|Recur|Flags|Ver + optional
//	  checksum/offset, key, sequence, routing
//	RFC 2784 (standard): C only, optional checksum + reserved
//	RFC 2890 (extended): C|K|S, optional checksum, key, sequence
//	RFC 2637 (PPTP, version 1): payload length + call ID, optional
//	  sequence and acknowledgment
//
// The inner protocol type becomes the source-port surrogate, the version
// the destination-port surrogate; key and sequence number are retained
// as tunnel metadata.

const (
	greFlagChecksum = 0x80
	greFlagRouting  = 0x40
	greFlagKey      = 0x20
	greFlagSequence = 0x10
)

func parseGRE(payload []byte) (transportInfo, error) {
	if len(payload) < 4 {
		return transportInfo{}, ErrInvalidPacket
	}

	flags := payload[0]
	version := payload[1] & 0x07
	protocolType := be16(payload[2:4])

	tunnel := &TunnelInfo{GREVersion: version}

	var headerLen int
	switch version {
	case 1:
		// PPTP: 8-byte base header carrying payload length and call ID
		if len(payload) < 8 {
			return transportInfo{}, ErrInvalidPacket
		}
		headerLen = 8
		tunnel.Key = uint32(be16(payload[6:8])) // call ID
		tunnel.HasKey = true

		if flags&greFlagSequence != 0 {
			if len(payload) < headerLen+4 {
				return transportInfo{}, ErrInvalidPacket
			}
			tunnel.Sequence = be32(payload[headerLen : headerLen+4])
			tunnel.HasSequence = true
			headerLen += 4
		}
		if flags&greFlagChecksum != 0 { // acknowledgment number in PPTP
			if len(payload) < headerLen+4 {
				return transportInfo{}, ErrInvalidPacket
			}
			headerLen += 4
		}

	case 0:
		headerLen = 4
		if flags&greFlagChecksum != 0 {
			if len(payload) < headerLen+4 {
				return transportInfo{}, ErrInvalidPacket
			}
			headerLen += 4 // checksum + offset/reserved
		}
		if flags&greFlagKey != 0 {
			if len(payload) < headerLen+4 {
				return transportInfo{}, ErrInvalidPacket
			}
			tunnel.Key = be32(payload[headerLen : headerLen+4])
			tunnel.HasKey = true
			headerLen += 4
		}
		if flags&greFlagSequence != 0 {
			if len(payload) < headerLen+4 {
				return transportInfo{}, ErrInvalidPacket
			}
			tunnel.Sequence = be32(payload[headerLen : headerLen+4])
			tunnel.HasSequence = true
			headerLen += 4
		}

	default:
		return transportInfo{}, ErrInvalidPacket
	}

	if len(payload) < headerLen {
		return transportInfo{}, ErrInvalidPacket
	}

	return transportInfo{
		srcPort: protocolType,
		dstPort: uint16(version),
		tunnel:  tunnel,
	}, nil
}
