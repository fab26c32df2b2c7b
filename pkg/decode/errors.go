package decode

import (
	"errors"
	"fmt"
)

// Sentinel decoding errors. All decoder errors are non-fatal by
// contract: the capture loop discards the frame and advances.
var (
	// ErrEmptyPacket indicates a zero-length frame
	ErrEmptyPacket = errors.New("empty packet")

	// ErrInvalidPacket indicates a frame that is structurally broken for
	// the layer currently being parsed (truncated header, bad version
	// nibble, non-first fragment, ...)
	ErrInvalidPacket = errors.New("invalid packet")
)

// UnknownProtocolError is returned when the IP next-protocol number has
// no parser
type UnknownProtocolError uint8

func (e UnknownProtocolError) Error() string {
	return fmt.Sprintf("unknown protocol: %d", uint8(e))
}

// UnknownEtherTypeError is returned when neither the EtherType dispatch
// table nor the fallback chain could make sense of a frame
type UnknownEtherTypeError uint16

func (e UnknownEtherTypeError) Error() string {
	return fmt.Sprintf("unknown EtherType: 0x%04x", uint16(e))
}

// UnknownDSCPError is returned by TOSFromDSCP for code points outside
// the fixed mapping table. Callers coerce it to TOS 0 and continue.
type UnknownDSCPError uint8

func (e UnknownDSCPError) Error() string {
	return fmt.Sprintf("unknown DSCP value: %d", uint8(e))
}
