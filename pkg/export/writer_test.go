package export

import (
	"encoding/csv"
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/els0r/fluere/pkg/types"
	"github.com/stretchr/testify/require"
)

func testRecords() []*types.FlowRecord {
	r1 := &types.FlowRecord{
		Source:      netip.MustParseAddr("10.0.0.1"),
		Destination: netip.MustParseAddr("10.0.0.2"),
		SrcPort:     1234,
		DstPort:     80,
		Proto:       6,
		First:       1000,
		Last:        2000,
		MinPkt:      64,
		MaxPkt:      1500,
		MinTTL:      60,
		MaxTTL:      64,
	}
	r1.Update(64, 64, types.TCPFlags{SYN: 1}, 1500, false)
	r1.Update(1500, 60, types.TCPFlags{ACK: 1}, 2000, true)

	r2 := &types.FlowRecord{
		Source:      netip.MustParseAddr("2001:db8::1"),
		Destination: netip.MustParseAddr("2001:db8::2"),
		SrcPort:     51000,
		DstPort:     443,
		Proto:       6,
		Tos:         184,
		First:       5000,
		Last:        5000,
		MinPkt:      80,
		MaxPkt:      80,
		MinTTL:      58,
		MaxTTL:      58,
	}
	r2.Update(80, 58, types.TCPFlags{SYN: 1}, 5000, false)

	return []*types.FlowRecord{r1, r2}
}

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.csv")

	w, err := NewWriter(path)
	require.Nil(t, err)

	records := testRecords()
	require.Nil(t, w.WriteRecords(records))
	require.Nil(t, w.Close())

	parsed, err := ReadFile(path)
	require.Nil(t, err)
	require.Equal(t, records, parsed)
}

func TestWriterHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	w, err := NewWriter(path)
	require.Nil(t, err)
	require.Nil(t, w.Close())

	f, err := os.Open(path)
	require.Nil(t, err)
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	require.Nil(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, types.Columns, rows[0])
}

func TestWriterCreateFails(t *testing.T) {
	_, err := NewWriter(filepath.Join(t.TempDir(), "missing", "flows.csv"))
	require.Error(t, err)
}

// repeated writes of the same records produce byte-identical files
func TestWriterDeterministic(t *testing.T) {
	dir := t.TempDir()
	records := testRecords()

	write := func(name string) []byte {
		path := filepath.Join(dir, name)
		w, err := NewWriter(path)
		require.Nil(t, err)
		require.Nil(t, w.WriteRecords(records))
		require.Nil(t, w.Close())

		data, err := os.ReadFile(path)
		require.Nil(t, err)
		return data
	}

	require.Equal(t, write("a.csv"), write("b.csv"))
}

func TestRotatedPath(t *testing.T) {
	at := time.Date(2024, 4, 2, 13, 37, 5, 0, time.UTC)

	require.Equal(t, filepath.Join("out", "output_2024-04-02_13-37-05.csv"),
		RotatedPath("out", "output", at))
	require.Equal(t, filepath.Join("out", "trace_2024-04-02_13-37-05.pcap"),
		RotatedCapturePath("out", "trace", at))
}

func TestConvertedPath(t *testing.T) {
	require.Equal(t, filepath.Join("out", "capture_converted.csv"),
		ConvertedPath("out", "/data/pcaps/capture.pcap"))
	require.Equal(t, filepath.Join("out", "trace_converted.csv"),
		ConvertedPath("out", "trace.pcapng"))
}
