package decode

// IGMP message types with distinct wire formats
const (
	igmpMembershipQuery    = 0x11
	igmpV1MembershipReport = 0x12
	igmpV2MembershipReport = 0x16
	igmpLeaveGroup         = 0x17
	igmpV3MembershipReport = 0x22
)

// parseIGMP keys group management traffic on (message type, max-resp
// code). The v1 membership report (no max-resp field) and the IGMPv3
// report (reserved field) degrade to a zero destination surrogate. Only
// the message type is examined: the message length is checked against
// the 8-byte minimum but does not tell IGMP versions apart, so a v1, v2
// or v3 query all key on the raw max-resp byte.
func parseIGMP(payload []byte) (transportInfo, error) {
	// type (1) + max resp (1) + checksum (2) + group address (4)
	if len(payload) < 8 {
		return transportInfo{}, ErrInvalidPacket
	}

	msgType := payload[0]
	switch msgType {
	case igmpMembershipQuery, igmpV1MembershipReport, igmpV2MembershipReport,
		igmpLeaveGroup, igmpV3MembershipReport:
	default:
		return transportInfo{}, ErrInvalidPacket
	}

	maxResp := payload[1]
	if msgType == igmpV1MembershipReport || msgType == igmpV3MembershipReport {
		maxResp = 0
	}

	return transportInfo{
		srcPort: uint16(msgType),
		dstPort: uint16(maxResp),
	}, nil
}
