package capture

import (
	"fmt"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Savefile writes raw frames byte-for-byte into a pcap file. Used by
// the pass-through mode, which bypasses decoding and aggregation
// entirely and only shares the rotation clock.
type Savefile struct {
	path   string
	file   *os.File
	writer *pcapgo.Writer
}

// NewSavefile creates a pcap file with an Ethernet link-type header
func NewSavefile(path string) (*Savefile, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create savefile %s: %w", path, err)
	}

	writer := pcapgo.NewWriter(file)
	if err := writer.WriteFileHeader(Snaplen, layers.LinkTypeEthernet); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to write savefile header: %w", err)
	}

	return &Savefile{
		path:   path,
		file:   file,
		writer: writer,
	}, nil
}

// WriteFrame appends one frame
func (s *Savefile) WriteFrame(frame Frame) error {
	ci := gopacket.CaptureInfo{
		Timestamp:     time.UnixMicro(frame.Timestamp),
		CaptureLength: len(frame.Data),
		Length:        int(frame.TotalLen),
	}
	if ci.Length < ci.CaptureLength {
		ci.Length = ci.CaptureLength
	}

	if err := s.writer.WritePacket(ci, frame.Data); err != nil {
		return fmt.Errorf("failed to write frame to %s: %w", s.path, err)
	}

	return nil
}

// Close closes the savefile
func (s *Savefile) Close() error {
	return s.file.Close()
}
