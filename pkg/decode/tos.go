package decode

// dscpToTos maps the 20 standard DSCP code points to their equivalent
// 8-bit TOS byte (DSCP << 2). Only code points with a defined per-hop
// behavior are present; everything else surfaces UnknownDSCPError.
var dscpToTos = map[uint8]uint8{
	8:  32,  // CS1
	10: 40,  // AF11
	12: 48,  // AF12
	14: 56,  // AF13
	16: 64,  // CS2
	18: 72,  // AF21
	20: 80,  // AF22
	22: 88,  // AF23
	24: 96,  // CS3
	26: 104, // AF31
	28: 112, // AF32
	30: 120, // AF33
	32: 128, // CS4
	34: 136, // AF41
	36: 144, // AF42
	38: 152, // AF43
	40: 160, // CS5
	46: 184, // EF
	48: 192, // CS6
	56: 224, // CS7
}

// TOSFromDSCP converts a 6-bit DSCP code point into the legacy TOS byte.
// DSCP 0 (default forwarding) maps to TOS 0; unknown code points return
// UnknownDSCPError together with TOS 0 so that callers can log and
// proceed.
func TOSFromDSCP(dscp uint8) (uint8, error) {
	if dscp == 0 {
		return 0, nil
	}
	if tos, ok := dscpToTos[dscp]; ok {
		return tos, nil
	}
	return 0, UnknownDSCPError(dscp)
}
