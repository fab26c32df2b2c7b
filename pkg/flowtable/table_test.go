package flowtable

import (
	"net/netip"
	"testing"
	"time"

	"github.com/els0r/fluere/pkg/decode"
	"github.com/els0r/fluere/pkg/types"
	"github.com/stretchr/testify/require"
)

func flowKey(src string, srcPort uint16, dst string, dstPort uint16, proto uint8) types.FlowKey {
	return types.FlowKey{
		SrcIP:   netip.MustParseAddr(src),
		DstIP:   netip.MustParseAddr(dst),
		SrcPort: srcPort,
		DstPort: dstPort,
		Proto:   proto,
	}
}

func packet(key types.FlowKey, size uint32, ttl uint8, flags types.TCPFlags, ts int64) *decode.Packet {
	return &decode.Packet{
		Key:        key,
		ReverseKey: key.Reverse(),
		Size:       size,
		TTL:        ttl,
		Flags:      flags,
		Timestamp:  ts,
	}
}

func requireInvariants(t *testing.T, r *types.FlowRecord) {
	t.Helper()
	require.LessOrEqual(t, r.First, r.Last)
	require.LessOrEqual(t, r.MinPkt, r.MaxPkt)
	require.LessOrEqual(t, r.MinTTL, r.MaxTTL)
	require.Equal(t, r.DPkts, r.InPkts+r.OutPkts)
	require.Equal(t, r.DOctets, r.InBytes+r.OutBytes)
}

// TCP three-way handshake, one data packet, then close
func TestTCPSessionLifecycle(t *testing.T) {
	table := New(10 * time.Minute)

	client := flowKey("10.0.0.1", 1234, "10.0.0.2", 80, 6)
	server := client.Reverse()

	verdict, rec := table.Add(packet(client, 64, 64, types.TCPFlags{SYN: 1}, 0))
	require.Equal(t, VerdictCreated, verdict)
	requireInvariants(t, rec)

	verdict, rec = table.Add(packet(server, 64, 64, types.TCPFlags{SYN: 1, ACK: 1}, 10))
	require.Equal(t, VerdictUpdated, verdict)
	requireInvariants(t, rec)

	verdict, rec = table.Add(packet(client, 64, 64, types.TCPFlags{ACK: 1}, 20))
	require.Equal(t, VerdictUpdated, verdict)
	requireInvariants(t, rec)

	verdict, rec = table.Add(packet(client, 1500, 64, types.TCPFlags{PSH: 1, ACK: 1}, 100))
	require.Equal(t, VerdictUpdated, verdict)
	requireInvariants(t, rec)

	verdict, closed := table.Add(packet(client, 64, 64, types.TCPFlags{FIN: 1}, 200))
	require.Equal(t, VerdictClosed, verdict)
	require.NotNil(t, closed)
	requireInvariants(t, closed)

	require.Equal(t, uint64(5), closed.DPkts)
	require.Equal(t, uint64(64+64+64+1500+64), closed.DOctets)
	require.Equal(t, uint64(4), closed.OutPkts)
	require.Equal(t, uint64(1), closed.InPkts)
	require.Equal(t, uint32(2), closed.SynCnt)
	require.Equal(t, uint32(3), closed.AckCnt)
	require.Equal(t, uint32(1), closed.PshCnt)
	require.Equal(t, uint32(1), closed.FinCnt)
	require.Equal(t, int64(0), closed.First)
	require.Equal(t, int64(200), closed.Last)
	require.Equal(t, uint32(64), closed.MinPkt)
	require.Equal(t, uint32(1500), closed.MaxPkt)

	require.Equal(t, 0, table.Len())
}

// mid-stream TCP without a handshake never enters the table
func TestMidStreamTCPRejected(t *testing.T) {
	table := New(10 * time.Minute)

	key := flowKey("10.0.0.1", 1234, "10.0.0.2", 80, 6)
	verdict, rec := table.Add(packet(key, 64, 64, types.TCPFlags{ACK: 1}, 0))

	require.Equal(t, VerdictRejected, verdict)
	require.Nil(t, rec)
	require.Equal(t, 0, table.Len())
}

// a TCP RST matching an established flow still closes it
func TestTCPResetCloses(t *testing.T) {
	table := New(10 * time.Minute)

	key := flowKey("10.0.0.1", 1234, "10.0.0.2", 80, 6)
	table.Add(packet(key, 64, 64, types.TCPFlags{SYN: 1}, 0))

	verdict, closed := table.Add(packet(key.Reverse(), 40, 64, types.TCPFlags{RST: 1}, 50))
	require.Equal(t, VerdictClosed, verdict)
	require.Equal(t, uint32(1), closed.RstCnt)
	require.Equal(t, 0, table.Len())
}

// bidirectional UDP aggregates into a single flow keyed on the first
// packet's direction
func TestUDPBidirectional(t *testing.T) {
	table := New(10 * time.Minute)

	a := flowKey("10.0.0.1", 5000, "10.0.0.2", 53, 17)

	verdict, _ := table.Add(packet(a, 80, 64, types.TCPFlags{}, 0))
	require.Equal(t, VerdictCreated, verdict)

	verdict, rec := table.Add(packet(a.Reverse(), 120, 64, types.TCPFlags{}, 50))
	require.Equal(t, VerdictUpdated, verdict)
	requireInvariants(t, rec)

	require.Equal(t, 1, table.Len())
	require.Equal(t, uint64(2), rec.DPkts)
	require.Equal(t, uint64(1), rec.OutPkts)
	require.Equal(t, uint64(1), rec.InPkts)
	require.Equal(t, uint64(80), rec.OutBytes)
	require.Equal(t, uint64(120), rec.InBytes)
	require.Equal(t, netip.MustParseAddr("10.0.0.1"), rec.Source)

	// no reverse key may coexist with its forward key
	require.Equal(t, 1, table.Len())
}

// idle flows are evicted once their last activity exceeds the timeout
func TestIdleEviction(t *testing.T) {
	timeout := time.Second
	table := New(timeout)

	key := flowKey("10.0.0.1", 5000, "10.0.0.2", 53, 17)
	table.Add(packet(key, 80, 64, types.TCPFlags{}, 0))

	// one microsecond short of expiry: nothing happens
	require.Empty(t, table.Expire(timeout.Microseconds()))
	require.Equal(t, 1, table.Len())

	expired := table.Expire(timeout.Microseconds() + 1)
	require.Len(t, expired, 1)
	require.Equal(t, 0, table.Len())

	// a second tick with the same timestamp returns nothing
	require.Empty(t, table.Expire(timeout.Microseconds() + 1))
}

func TestZeroTimeoutDisablesEviction(t *testing.T) {
	table := New(0)

	key := flowKey("10.0.0.1", 5000, "10.0.0.2", 53, 17)
	table.Add(packet(key, 80, 64, types.TCPFlags{}, 0))

	require.Empty(t, table.Expire(time.Hour.Microseconds()))
	require.Equal(t, 1, table.Len())
}

func TestDrain(t *testing.T) {
	table := New(10 * time.Minute)

	table.Add(packet(flowKey("10.0.0.1", 5000, "10.0.0.2", 53, 17), 80, 64, types.TCPFlags{}, 0))
	table.Add(packet(flowKey("10.0.0.3", 6000, "10.0.0.4", 123, 17), 90, 64, types.TCPFlags{}, 10))

	drained := table.Drain()
	require.Len(t, drained, 2)
	require.Equal(t, 0, table.Len())
	require.Empty(t, table.Drain())
}

// non-TCP flows establish unconditionally, TCP only on SYN
func TestEstablishmentRules(t *testing.T) {
	table := New(10 * time.Minute)

	icmp := flowKey("10.0.0.1", 8, "10.0.0.2", 0, 1)
	verdict, _ := table.Add(packet(icmp, 84, 64, types.TCPFlags{}, 0))
	require.Equal(t, VerdictCreated, verdict)

	// for every TCP flow in the table at least one packet carried SYN
	syn := flowKey("10.0.0.1", 40000, "10.0.0.9", 443, 6)
	verdict, _ = table.Add(packet(syn, 64, 64, types.TCPFlags{SYN: 1}, 5))
	require.Equal(t, VerdictCreated, verdict)

	require.Equal(t, 2, table.Len())
}

// a flow closing on its very first packet never enters the table
func TestImmediateClose(t *testing.T) {
	table := New(10 * time.Minute)

	key := flowKey("10.0.0.1", 1234, "10.0.0.2", 80, 6)
	verdict, closed := table.Add(packet(key, 64, 64, types.TCPFlags{SYN: 1, RST: 1}, 0))

	require.Equal(t, VerdictClosed, verdict)
	require.Equal(t, uint64(1), closed.DPkts)
	require.Equal(t, 0, table.Len())
}

func TestSnapshot(t *testing.T) {
	table := New(10 * time.Minute)

	table.Add(packet(flowKey("10.0.0.1", 5000, "10.0.0.2", 53, 17), 80, 64, types.TCPFlags{}, 20))
	table.Add(packet(flowKey("10.0.0.3", 6000, "10.0.0.4", 123, 17), 90, 64, types.TCPFlags{}, 10))

	snap := table.Snapshot()
	require.Len(t, snap, 2)

	// sorted by first-seen
	require.Equal(t, netip.MustParseAddr("10.0.0.3"), snap[0].Record.Source)
	require.Equal(t, "UDP", snap[0].Proto)

	// the snapshot is a copy, mutating it leaves the table untouched
	snap[0].Record.DPkts = 999
	require.Equal(t, 2, table.Len())
}
