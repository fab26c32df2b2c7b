package types

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyReverse(t *testing.T) {
	key := FlowKey{
		SrcIP:   netip.MustParseAddr("10.0.0.1"),
		DstIP:   netip.MustParseAddr("10.0.0.2"),
		SrcPort: 1234,
		DstPort: 80,
		Proto:   6,
		SrcMac:  MacAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		DstMac:  MacAddr{0x11, 0x22, 0x33, 0x44, 0x55, 0x66},
	}

	rev := key.Reverse()
	require.Equal(t, key.SrcIP, rev.DstIP)
	require.Equal(t, key.DstIP, rev.SrcIP)
	require.Equal(t, key.SrcPort, rev.DstPort)
	require.Equal(t, key.DstPort, rev.SrcPort)
	require.Equal(t, key.Proto, rev.Proto)
	require.Equal(t, key.SrcMac, rev.DstMac)
	require.Equal(t, key.DstMac, rev.SrcMac)

	// double reversal restores the original key
	require.Equal(t, key, rev.Reverse())
}

func TestKeyComparable(t *testing.T) {
	a := FlowKey{
		SrcIP:   netip.MustParseAddr("2001:db8::1"),
		DstIP:   netip.MustParseAddr("2001:db8::2"),
		SrcPort: 443,
		DstPort: 51000,
		Proto:   6,
	}
	b := a

	m := map[FlowKey]int{a: 1}
	require.Equal(t, 1, m[b])
}

func TestKeyStripMacs(t *testing.T) {
	key := FlowKey{
		SrcIP:  netip.MustParseAddr("10.0.0.1"),
		DstIP:  netip.MustParseAddr("10.0.0.2"),
		SrcMac: MacAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		DstMac: MacAddr{0x11, 0x22, 0x33, 0x44, 0x55, 0x66},
	}

	key.StripMacs()
	require.True(t, key.SrcMac.IsZero())
	require.True(t, key.DstMac.IsZero())

	// stripped keys collapse across L2 domains
	other := key
	other.SrcMac = MacAddr{0x01}
	other.StripMacs()
	require.Equal(t, key, other)
}

func TestMacAddrString(t *testing.T) {
	require.Equal(t, "aa:bb:cc:dd:ee:ff", MacAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}.String())
	require.Equal(t, "00:00:00:00:00:00", MacAddr{}.String())
}

func TestProtoName(t *testing.T) {
	require.Equal(t, "TCP", ProtoName(6))
	require.Equal(t, "UDP", ProtoName(17))
	require.Equal(t, "ARP", ProtoName(4))
	require.Equal(t, "253", ProtoName(253))
}
