package capture

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket/pcapgo"
)

// FileSource replays frames from a pcap capture file, preserving the
// original record timestamps
type FileSource struct {
	path     string
	file     *os.File
	reader   *pcapgo.Reader
	received int
}

// NewFileSource opens a capture file for replay
func NewFileSource(path string) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file %s: %w", path, err)
	}

	reader, err := pcapgo.NewReader(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to read capture file %s: %w", path, err)
	}

	return &FileSource{
		path:   path,
		file:   file,
		reader: reader,
	}, nil
}

// NextFrame returns the next frame of the file, ErrCaptureStopped at EOF
func (f *FileSource) NextFrame() (Frame, error) {
	data, ci, err := f.reader.ReadPacketData()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, ErrCaptureStopped
		}
		return Frame{}, fmt.Errorf("failed to read from %s: %w", f.path, err)
	}

	f.received++

	return Frame{
		Timestamp: ci.Timestamp.UnixMicro(),
		Data:      data,
		TotalLen:  uint32(ci.Length),
	}, nil
}

// Stats counts the frames read so far (files cannot drop)
func (f *FileSource) Stats() (Stats, error) {
	return Stats{PacketsReceived: f.received}, nil
}

// Close closes the underlying file
func (f *FileSource) Close() error {
	return f.file.Close()
}
