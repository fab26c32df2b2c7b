//go:build !linux

package capture

import "fmt"

// NewLiveSource is only backed by an AF_PACKET ring buffer on Linux;
// file replay and pcap pass-through work everywhere.
func NewLiveSource(iface string) (Source, error) {
	return nil, fmt.Errorf("live capture on %s is not supported on this platform", iface)
}
