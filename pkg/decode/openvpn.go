package decode

// OpenVPN has no IANA-assigned IP protocol number; captures produced by
// some middleboxes encode it into the reserved range 170-172, which is
// where the transport dispatch routes it. Sessions key on
// (session ID upper half, message/packet discriminator).

// OpenVPN opcode values (packet type in the high five bits of byte 0 of
// the unencrypted header; the values below are the plain opcodes as
// used by the capture sources feeding this decoder)
const (
	ovpnControlHardResetClientV1 = 0x01
	ovpnControlHardResetServerV1 = 0x02
	ovpnControlSoftResetV1       = 0x03
	ovpnControlV1                = 0x04
	ovpnAckV1                    = 0x05
	ovpnDataV1                   = 0x06
	ovpnControlHardResetClientV2 = 0x07
	ovpnControlHardResetServerV2 = 0x08
	ovpnDataV2                   = 0x09

	ovpnControlV1TLSKey  = 0x40
	ovpnControlV1TLSData = 0x41
)

// reserved protocol number range carrying OpenVPN
const (
	protoOpenVPNLow  = 170
	protoOpenVPNHigh = 172
)

func isOpenVPNProto(proto uint8) bool {
	return proto >= protoOpenVPNLow && proto <= protoOpenVPNHigh
}

func validOpenVPNOpcode(op byte) bool {
	switch op {
	case ovpnControlHardResetClientV1, ovpnControlHardResetServerV1,
		ovpnControlSoftResetV1, ovpnControlV1, ovpnAckV1, ovpnDataV1,
		ovpnControlHardResetClientV2, ovpnControlHardResetServerV2,
		ovpnDataV2, ovpnControlV1TLSKey, ovpnControlV1TLSData:
		return true
	}
	return false
}

// parseOpenVPN extracts the session ID (bytes 1-4) and message ID
// (bytes 5-8) of a control packet, or the session ID of a data packet,
// and folds them into the port surrogates: session ID high half as the
// source, opcode as the destination.
func parseOpenVPN(payload []byte) (transportInfo, error) {
	// opcode (1) + session ID (4) + message ID / reserved (4)
	if len(payload) < 9 {
		return transportInfo{}, ErrInvalidPacket
	}

	opcode := payload[0]
	if !validOpenVPNOpcode(opcode) {
		return transportInfo{}, ErrInvalidPacket
	}

	sessionID := be32(payload[1:5])
	messageID := be32(payload[5:9])

	return transportInfo{
		srcPort: uint16(sessionID >> 16),
		dstPort: uint16(opcode),
		tunnel: &TunnelInfo{
			Key:         sessionID,
			Sequence:    messageID,
			HasKey:      true,
			HasSequence: opcode != ovpnDataV1 && opcode != ovpnDataV2,
		},
	}, nil
}
