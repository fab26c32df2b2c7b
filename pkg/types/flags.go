package types

// TCPFlags stores the per-packet TCP flag bits, one field per flag (0 or
// 1 each). The order of the underlying array representation is
// FIN, SYN, RST, PSH, ACK, URG, ECE, CWR, NS.
type TCPFlags struct {
	FIN uint8
	SYN uint8
	RST uint8
	PSH uint8
	ACK uint8
	URG uint8
	ECE uint8
	CWR uint8
	NS  uint8
}

// TCPFlagsFromWire extracts the flag set from the two TCP header bytes
// carrying the flag bits (offsets 12 and 13 of the TCP header). The NS
// bit lives in the low-order bit of the data-offset byte.
func TCPFlagsFromWire(offsetByte, flagByte byte) TCPFlags {
	return TCPFlags{
		FIN: flagByte & 0x01,
		SYN: (flagByte & 0x02) >> 1,
		RST: (flagByte & 0x04) >> 2,
		PSH: (flagByte & 0x08) >> 3,
		ACK: (flagByte & 0x10) >> 4,
		URG: (flagByte & 0x20) >> 5,
		ECE: (flagByte & 0x40) >> 6,
		CWR: (flagByte & 0x80) >> 7,
		NS:  offsetByte & 0x01,
	}
}

// Array returns the flag set in wire-documented order
func (f TCPFlags) Array() [9]uint8 {
	return [9]uint8{f.FIN, f.SYN, f.RST, f.PSH, f.ACK, f.URG, f.ECE, f.CWR, f.NS}
}

// HasSYN reports whether the SYN bit is set
func (f TCPFlags) HasSYN() bool { return f.SYN == 1 }

// Closes reports whether the packet terminates its flow (FIN or RST set)
func (f TCPFlags) Closes() bool { return f.FIN == 1 || f.RST == 1 }
