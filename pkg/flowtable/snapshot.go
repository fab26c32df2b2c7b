package flowtable

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/els0r/fluere/pkg/types"
	jsoniter "github.com/json-iterator/go"
)

// FlowInfo is a read-only copy of a live flow used by the terminal view
// and the snapshot API
type FlowInfo struct {
	Key    string           `json:"key"`
	Proto  string           `json:"proto"`
	Record types.FlowRecord `json:"flow"`
}

// FlowInfos is a list of flow snapshots
type FlowInfos []FlowInfo

// Snapshot copies the current table contents, sorted by first-seen
// timestamp. The copy decouples any viewer from the single-writer table.
func (t *Table) Snapshot() FlowInfos {
	infos := make(FlowInfos, 0, len(t.flows))
	for key, flow := range t.flows {
		infos = append(infos, FlowInfo{
			Key:    key.String(),
			Proto:  types.ProtoName(key.Proto),
			Record: *flow,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Record.First < infos[j].Record.First
	})

	return infos
}

// MarshalJSON implements the jsoniter.Marshaler interface
func (fs FlowInfos) MarshalJSON() ([]byte, error) {
	return jsoniter.Marshal([]FlowInfo(fs))
}

const (
	headerStrUpper = "\t\t\t\t\tbytes\tbytes\tpackets\tpackets\t"
	headerStr      = "\tsip:sport\t\tdip:dport\tproto\tin\tout\tin\tout\t"
	fmtStr         = "%s:%d\t←―→\t%s:%d\t%s\t%d\t%d\t%d\t%d\t\n"
)

// TablePrint renders the snapshot as an aligned table
func (fs FlowInfos) TablePrint(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 4, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, headerStrUpper)
	fmt.Fprintln(tw, headerStr)

	for _, fi := range fs {
		fmt.Fprintf(tw, fmtStr,
			fi.Record.Source,
			fi.Record.SrcPort,
			fi.Record.Destination,
			fi.Record.DstPort,
			fi.Proto,
			fi.Record.InBytes,
			fi.Record.OutBytes,
			fi.Record.InPkts,
			fi.Record.OutPkts,
		)
	}
	return tw.Flush()
}
