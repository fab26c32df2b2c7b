package cmd

import (
	"fmt"
	"os"

	"github.com/els0r/fluere/pkg/capture"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newPcapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pcap",
		Short: "Write raw frames to rotated pcap files (no flow aggregation)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			base := viper.GetString(flagPcap)
			if base == "" {
				return fmt.Errorf("no output capture stem specified (use --pcap)")
			}

			src, done, err := resolveLiveSource(cmd)
			if err != nil || done {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			cfg := pipelineConfig()
			return capture.RunPassThrough(ctx, src, outputDir, base, cfg.Interval, cfg.Duration)
		},
	}
}
