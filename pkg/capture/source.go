// Package capture provides the frame sources (live AF_PACKET ring,
// capture file replay), the pcap savefile used in pass-through mode and
// the pipeline that drives decoding, aggregation and export.
package capture

import "errors"

// Snaplen sets the number of bytes captured from each packet
const Snaplen = 1024

// ErrCaptureStopped signals the regular end of a source: end of file in
// replay mode, closed handle in live mode
var ErrCaptureStopped = errors.New("capture stopped")

// Frame is one link-layer frame handed to the pipeline
type Frame struct {
	// Timestamp is the capture time in microseconds since epoch
	Timestamp int64

	// Data holds the raw frame bytes starting at the link layer, up to
	// the snap length
	Data []byte

	// TotalLen is the original wire length of the frame (may exceed
	// len(Data) for truncated captures)
	TotalLen uint32
}

// Stats summarizes a source's packet counters
type Stats struct {
	PacketsReceived int
	PacketsDropped  int
}

// Source is a blocking frame iterator. NextFrame returns
// ErrCaptureStopped once the source is exhausted or closed; any other
// error is transient and the caller advances to the next frame.
type Source interface {
	NextFrame() (Frame, error)
	Stats() (Stats, error)
	Close() error
}
