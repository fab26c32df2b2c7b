//go:build linux

package capture

import (
	"errors"
	"fmt"
	"time"

	slimcap "github.com/fako1024/slimcap/capture"
	"github.com/fako1024/slimcap/capture/afpacket/afring"
	"github.com/fako1024/slimcap/filter"
)

const (
	// defaultBlockSize specifies the size of a ring buffer block, which
	// defines how many packets can be held within a block
	defaultBlockSize = 1 * 1024 * 1024

	// defaultNumBlocks guides how many blocks are part of the ring buffer
	defaultNumBlocks = 4
)

// RingSource captures live traffic from a network interface via an
// AF_PACKET ring buffer, in promiscuous, immediate-delivery mode.
type RingSource struct {
	iface string
	src   *afring.Source
	buf   slimcap.Packet
}

// NewLiveSource opens the given interface for live capture
func NewLiveSource(iface string) (Source, error) {
	src, err := afring.NewSource(iface,
		afring.CaptureLength(filter.CaptureLengthFixed(Snaplen)),
		afring.BufferSize(defaultBlockSize, defaultNumBlocks),
		afring.Promiscuous(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture on %s: %w", iface, err)
	}

	return &RingSource{
		iface: iface,
		src:   src,
		// the extra bytes account for the in-buffer packet header the
		// ring source maintains in front of the payload
		buf: make(slimcap.Packet, Snaplen+6),
	}, nil
}

// NextFrame blocks until the next frame arrives on the ring. The kernel
// ring does not surface per-packet timestamps through this path, so the
// wall clock at delivery stands in (equivalent for live traffic).
func (r *RingSource) NextFrame() (Frame, error) {
	pkt, err := r.src.NextPacket(r.buf)
	if err != nil {
		if errors.Is(err, slimcap.ErrCaptureStopped) {
			return Frame{}, ErrCaptureStopped
		}
		if errors.Is(err, slimcap.ErrCaptureUnblocked) {
			return Frame{}, ErrCaptureStopped
		}
		return Frame{}, fmt.Errorf("capture error on %s: %w", r.iface, err)
	}

	return Frame{
		Timestamp: time.Now().UnixMicro(),
		Data:      pkt.Payload(),
		TotalLen:  pkt.TotalLen(),
	}, nil
}

// Stats returns the kernel-side packet counters
func (r *RingSource) Stats() (Stats, error) {
	stats, err := r.src.Stats()
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		PacketsReceived: int(stats.PacketsReceived),
		PacketsDropped:  int(stats.PacketsDropped),
	}, nil
}

// Close terminates the capture and frees the ring buffer resources
func (r *RingSource) Close() error {
	return r.src.Close()
}
