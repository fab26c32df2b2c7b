package cmd

import (
	"github.com/spf13/cobra"
)

func newOnlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "online",
		Short: "Capture flows from a network interface and export them to CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, done, err := resolveLiveSource(cmd)
			if err != nil || done {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			return runFlowPipeline(ctx, src, pipelineConfig())
		},
	}
}
