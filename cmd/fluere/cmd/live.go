package cmd

import (
	"github.com/spf13/cobra"
)

func newLiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "live",
		Short: "Capture flows and show the live flow table while exporting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, done, err := resolveLiveSource(cmd)
			if err != nil || done {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			cfg := pipelineConfig()
			cfg.LiveView = true

			return runFlowPipeline(ctx, src, cfg)
		},
	}
}
