package types

// ipProtocols maps the IANA protocol numbers (plus the synthesized ARP
// number 4) handled by the decoder to their friendly names. Anything not
// listed is rendered numerically.
var ipProtocols = map[uint8]string{
	1:   "ICMP",
	2:   "IGMP",
	4:   "ARP",
	6:   "TCP",
	17:  "UDP",
	47:  "GRE",
	50:  "ESP",
	51:  "AH",
	58:  "ICMPv6",
	89:  "OSPF",
	103: "PIM",
	112: "VRRP",
	115: "L2TP",
	124: "ISIS",
	132: "SCTP",
	137: "MPLS-in-IP",
	179: "BGP",
}

// ProtoName returns the friendly name for a protocol number, falling
// back to its decimal representation
func ProtoName(id uint8) string {
	if name, ok := ipProtocols[id]; ok {
		return name
	}
	return uitoa(id)
}

func uitoa(v uint8) string {
	// small positive integers only, avoids strconv on the print path
	if v < 10 {
		return string([]byte{'0' + v})
	}
	var buf [3]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = '0' + v%10
		v /= 10
	}
	return string(buf[i:])
}
