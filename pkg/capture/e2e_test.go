package capture

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/els0r/fluere/pkg/export"
	"github.com/stretchr/testify/require"
)

// end-to-end offline run: a capture file is materialized on disk, fed
// through the file source and the full pipeline, and the resulting CSV
// is verified
func TestEndToEndOffline(t *testing.T) {
	dir := t.TempDir()
	pcapPath := filepath.Join(dir, "e2e.pcap")

	savefile, err := NewSavefile(pcapPath)
	require.Nil(t, err)
	for _, frame := range sessionFrames() {
		if len(frame.Data) < etherMinLen {
			continue // savefiles only carry decodable frames here
		}
		frame.TotalLen = uint32(len(frame.Data))
		require.Nil(t, savefile.WriteFrame(frame))
	}
	require.Nil(t, savefile.Close())

	src, err := NewFileSource(pcapPath)
	require.Nil(t, err)

	handler := export.NewHandler(nil)
	handler.HandleWriteouts(context.Background())

	cfg := Config{
		OutputDir:  dir,
		SourceFile: pcapPath,
		Timeout:    10 * time.Minute,
	}
	require.Nil(t, NewPipeline(src, handler, cfg).Run(context.Background()))

	handler.Close()
	require.Nil(t, handler.Wait())

	records, err := export.ReadFile(export.ConvertedPath(dir, pcapPath))
	require.Nil(t, err)
	require.Len(t, records, 2)

	closed := records[0]
	require.Equal(t, "10.0.0.1", closed.Source.String())
	require.Equal(t, "10.0.0.2", closed.Destination.String())
	require.Equal(t, uint16(1234), closed.SrcPort)
	require.Equal(t, uint16(80), closed.DstPort)
	require.Equal(t, uint8(6), closed.Proto)
	require.Equal(t, uint64(5), closed.DPkts)
	require.Equal(t, uint32(1), closed.FinCnt)
}

const etherMinLen = 14
