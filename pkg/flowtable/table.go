// Package flowtable maintains the bidirectional flow table: direction
// detection, TCP-handshake-aware establishment, FIN/RST close handling
// and idle eviction.
package flowtable

import (
	"time"

	"github.com/els0r/fluere/pkg/decode"
	"github.com/els0r/fluere/pkg/types"
)

// Verdict describes what happened to a packet handed to the table
type Verdict uint8

const (
	// VerdictRejected means the packet was dropped by the establishment
	// rules (mid-stream TCP without a prior handshake)
	VerdictRejected Verdict = iota
	// VerdictCreated means a new flow was established
	VerdictCreated
	// VerdictUpdated means an existing flow absorbed the packet
	VerdictUpdated
	// VerdictClosed means the packet terminated its flow (FIN/RST); the
	// closed record is returned alongside
	VerdictClosed
)

func (v Verdict) String() string {
	switch v {
	case VerdictRejected:
		return "rejected"
	case VerdictCreated:
		return "created"
	case VerdictUpdated:
		return "updated"
	case VerdictClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Table stores the live flows. It is NOT threadsafe: the capture loop is
// its single writer and all read access (snapshots) happens on the same
// goroutine.
type Table struct {
	flows map[types.FlowKey]*types.FlowRecord

	// timeoutMicros is the idle eviction window in microseconds; zero
	// disables idle eviction entirely
	timeoutMicros int64
}

// New creates an empty flow table with the given idle timeout
func New(timeout time.Duration) *Table {
	return &Table{
		flows:         make(map[types.FlowKey]*types.FlowRecord),
		timeoutMicros: timeout.Microseconds(),
	}
}

// Len returns the number of live flows
func (t *Table) Len() int {
	return len(t.flows)
}

// Add folds a decoded packet into the table. Forward key matches win
// over reverse matches; a packet matching neither creates a new flow if
// the establishment rules permit (any non-TCP protocol, or TCP with
// SYN set on the first observed packet).
func (t *Table) Add(pkt *decode.Packet) (Verdict, *types.FlowRecord) {
	if flow, exists := t.flows[pkt.Key]; exists {
		return t.update(pkt.Key, flow, pkt, false)
	}
	if flow, exists := t.flows[pkt.ReverseKey]; exists {
		return t.update(pkt.ReverseKey, flow, pkt, true)
	}

	// mid-stream TCP traffic (sessions started before the capture) is
	// dropped rather than recorded as a partial flow
	if pkt.Key.Proto == protoTCP && !pkt.Flags.HasSYN() {
		return VerdictRejected, nil
	}

	flow := newRecord(pkt)
	t.flows[pkt.Key] = flow
	flow.Update(pkt.Size, pkt.TTL, pkt.Flags, pkt.Timestamp, false)

	if pkt.Flags.Closes() {
		delete(t.flows, pkt.Key)
		return VerdictClosed, flow
	}

	return VerdictCreated, flow
}

func (t *Table) update(key types.FlowKey, flow *types.FlowRecord, pkt *decode.Packet, reverse bool) (Verdict, *types.FlowRecord) {
	flow.Update(pkt.Size, pkt.TTL, pkt.Flags, pkt.Timestamp, reverse)

	if pkt.Flags.Closes() {
		delete(t.flows, key)
		return VerdictClosed, flow
	}

	return VerdictUpdated, flow
}

// Expire removes every flow whose last activity lies further back than
// the idle timeout and returns the evicted records. Calling it twice
// with the same timestamp yields an empty second batch.
func (t *Table) Expire(nowMicros int64) []*types.FlowRecord {
	if t.timeoutMicros <= 0 {
		return nil
	}

	var expired []*types.FlowRecord
	for key, flow := range t.flows {
		if flow.Last < nowMicros-t.timeoutMicros {
			expired = append(expired, flow)
			delete(t.flows, key)
		}
	}

	return expired
}

// Drain removes and returns all remaining flows. Used at capture end so
// that every observed flow appears in the final writeout.
func (t *Table) Drain() []*types.FlowRecord {
	drained := make([]*types.FlowRecord, 0, len(t.flows))
	for key, flow := range t.flows {
		drained = append(drained, flow)
		delete(t.flows, key)
	}

	return drained
}

const protoTCP = 6

// newRecord seeds a record from the first packet of a flow. The size and
// TTL extremes start at the packet's own values (not zero), so the
// min/max invariants hold from the first update on.
func newRecord(pkt *decode.Packet) *types.FlowRecord {
	return &types.FlowRecord{
		Source:      pkt.Key.SrcIP,
		Destination: pkt.Key.DstIP,
		SrcPort:     pkt.Key.SrcPort,
		DstPort:     pkt.Key.DstPort,
		Proto:       pkt.Key.Proto,
		Tos:         pkt.Tos,
		First:       pkt.Timestamp,
		Last:        pkt.Timestamp,
		MinPkt:      pkt.Size,
		MaxPkt:      pkt.Size,
		MinTTL:      pkt.TTL,
		MaxTTL:      pkt.TTL,
	}
}
