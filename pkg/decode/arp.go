package decode

import "net/netip"

const arpPacketLen = 28

// decodeARP keys ARP (and RARP) traffic on the sender / target IPv4
// addresses. Ports are zero and the protocol number is the synthesized
// value 4, which keeps ARP flows apart from raw IPv4 in the flow table.
func decodeARP(payload []byte) (netKeys, error) {
	if len(payload) < arpPacketLen {
		return netKeys{}, ErrInvalidPacket
	}

	// Ethernet / IPv4 ARP only: hardware type 1, protocol type 0x0800,
	// address lengths 6 and 4
	hwType := uint16(payload[0])<<8 | uint16(payload[1])
	protoType := uint16(payload[2])<<8 | uint16(payload[3])
	if hwType != 1 || protoType != etherTypeIPv4 || payload[4] != 6 || payload[5] != 4 {
		return netKeys{}, ErrInvalidPacket
	}

	var sender, target [4]byte
	copy(sender[:], payload[14:18])
	copy(target[:], payload[24:28])

	return netKeys{
		srcIP: netip.AddrFrom4(sender),
		dstIP: netip.AddrFrom4(target),
		proto: protoARPSynthetic,
		size:  uint32(len(payload)),
	}, nil
}
