package types

import (
	"fmt"
	"net/netip"
	"strconv"
)

// Columns is the CSV column set written for every exported flow, in
// output order. ParseRow expects the same order.
var Columns = []string{
	"source", "destination", "src_port", "dst_port", "prot",
	"d_pkts", "d_octets", "in_pkts", "out_pkts", "in_bytes", "out_bytes",
	"first", "last", "min_pkt", "max_pkt", "min_ttl", "max_ttl",
	"fin_cnt", "syn_cnt", "rst_cnt", "psh_cnt", "ack_cnt", "urg_cnt",
	"ece_cnt", "cwr_cnt", "ns_cnt", "tos",
}

// FlowRecord is the mutable per-flow aggregate owned by the flow table.
// Timestamps are microseconds since epoch; First is set at creation and
// never changes, Last is advanced by every matching packet.
type FlowRecord struct {
	Source      netip.Addr
	Destination netip.Addr
	SrcPort     uint16
	DstPort     uint16
	Proto       uint8
	Tos         uint8

	DPkts   uint64
	DOctets uint64

	InPkts   uint64
	OutPkts  uint64
	InBytes  uint64
	OutBytes uint64

	First int64
	Last  int64

	MinPkt uint32
	MaxPkt uint32
	MinTTL uint8
	MaxTTL uint8

	FinCnt uint32
	SynCnt uint32
	RstCnt uint32
	PshCnt uint32
	AckCnt uint32
	UrgCnt uint32
	EceCnt uint32
	CwrCnt uint32
	NsCnt  uint32
}

// Update folds a packet into the record. The size/TTL extremes and the
// flag counters are direction-agnostic; only the in/out split depends on
// whether the packet travelled against the key direction.
func (r *FlowRecord) Update(size uint32, ttl uint8, flags TCPFlags, tsMicros int64, reverse bool) {
	r.DPkts++
	r.DOctets += uint64(size)

	if size > r.MaxPkt {
		r.MaxPkt = size
	}
	if size < r.MinPkt {
		r.MinPkt = size
	}
	if ttl > r.MaxTTL {
		r.MaxTTL = ttl
	}
	if ttl < r.MinTTL {
		r.MinTTL = ttl
	}

	r.FinCnt += uint32(flags.FIN)
	r.SynCnt += uint32(flags.SYN)
	r.RstCnt += uint32(flags.RST)
	r.PshCnt += uint32(flags.PSH)
	r.AckCnt += uint32(flags.ACK)
	r.UrgCnt += uint32(flags.URG)
	r.EceCnt += uint32(flags.ECE)
	r.CwrCnt += uint32(flags.CWR)
	r.NsCnt += uint32(flags.NS)

	r.Last = tsMicros

	if reverse {
		r.InPkts++
		r.InBytes += uint64(size)
	} else {
		r.OutPkts++
		r.OutBytes += uint64(size)
	}
}

// ToRow renders the record as a CSV row matching Columns
func (r *FlowRecord) ToRow() []string {
	return []string{
		r.Source.String(),
		r.Destination.String(),
		strconv.FormatUint(uint64(r.SrcPort), 10),
		strconv.FormatUint(uint64(r.DstPort), 10),
		strconv.FormatUint(uint64(r.Proto), 10),
		strconv.FormatUint(r.DPkts, 10),
		strconv.FormatUint(r.DOctets, 10),
		strconv.FormatUint(r.InPkts, 10),
		strconv.FormatUint(r.OutPkts, 10),
		strconv.FormatUint(r.InBytes, 10),
		strconv.FormatUint(r.OutBytes, 10),
		strconv.FormatInt(r.First, 10),
		strconv.FormatInt(r.Last, 10),
		strconv.FormatUint(uint64(r.MinPkt), 10),
		strconv.FormatUint(uint64(r.MaxPkt), 10),
		strconv.FormatUint(uint64(r.MinTTL), 10),
		strconv.FormatUint(uint64(r.MaxTTL), 10),
		strconv.FormatUint(uint64(r.FinCnt), 10),
		strconv.FormatUint(uint64(r.SynCnt), 10),
		strconv.FormatUint(uint64(r.RstCnt), 10),
		strconv.FormatUint(uint64(r.PshCnt), 10),
		strconv.FormatUint(uint64(r.AckCnt), 10),
		strconv.FormatUint(uint64(r.UrgCnt), 10),
		strconv.FormatUint(uint64(r.EceCnt), 10),
		strconv.FormatUint(uint64(r.CwrCnt), 10),
		strconv.FormatUint(uint64(r.NsCnt), 10),
		strconv.FormatUint(uint64(r.Tos), 10),
	}
}

// ParseRow is the inverse of ToRow
func ParseRow(row []string) (*FlowRecord, error) {
	if len(row) != len(Columns) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(Columns), len(row))
	}

	var (
		r   FlowRecord
		err error
	)
	if r.Source, err = netip.ParseAddr(row[0]); err != nil {
		return nil, fmt.Errorf("invalid source address %q: %w", row[0], err)
	}
	if r.Destination, err = netip.ParseAddr(row[1]); err != nil {
		return nil, fmt.Errorf("invalid destination address %q: %w", row[1], err)
	}

	u16 := func(s string) (uint16, error) {
		v, err := strconv.ParseUint(s, 10, 16)
		return uint16(v), err
	}
	u8 := func(s string) (uint8, error) {
		v, err := strconv.ParseUint(s, 10, 8)
		return uint8(v), err
	}
	u32 := func(s string) (uint32, error) {
		v, err := strconv.ParseUint(s, 10, 32)
		return uint32(v), err
	}

	if r.SrcPort, err = u16(row[2]); err != nil {
		return nil, err
	}
	if r.DstPort, err = u16(row[3]); err != nil {
		return nil, err
	}
	if r.Proto, err = u8(row[4]); err != nil {
		return nil, err
	}
	if r.DPkts, err = strconv.ParseUint(row[5], 10, 64); err != nil {
		return nil, err
	}
	if r.DOctets, err = strconv.ParseUint(row[6], 10, 64); err != nil {
		return nil, err
	}
	if r.InPkts, err = strconv.ParseUint(row[7], 10, 64); err != nil {
		return nil, err
	}
	if r.OutPkts, err = strconv.ParseUint(row[8], 10, 64); err != nil {
		return nil, err
	}
	if r.InBytes, err = strconv.ParseUint(row[9], 10, 64); err != nil {
		return nil, err
	}
	if r.OutBytes, err = strconv.ParseUint(row[10], 10, 64); err != nil {
		return nil, err
	}
	if r.First, err = strconv.ParseInt(row[11], 10, 64); err != nil {
		return nil, err
	}
	if r.Last, err = strconv.ParseInt(row[12], 10, 64); err != nil {
		return nil, err
	}
	if r.MinPkt, err = u32(row[13]); err != nil {
		return nil, err
	}
	if r.MaxPkt, err = u32(row[14]); err != nil {
		return nil, err
	}
	if r.MinTTL, err = u8(row[15]); err != nil {
		return nil, err
	}
	if r.MaxTTL, err = u8(row[16]); err != nil {
		return nil, err
	}

	counters := []*uint32{
		&r.FinCnt, &r.SynCnt, &r.RstCnt, &r.PshCnt, &r.AckCnt,
		&r.UrgCnt, &r.EceCnt, &r.CwrCnt, &r.NsCnt,
	}
	for i, c := range counters {
		if *c, err = u32(row[17+i]); err != nil {
			return nil, err
		}
	}
	if r.Tos, err = u8(row[26]); err != nil {
		return nil, err
	}

	return &r, nil
}
