package cmd

import (
	"fmt"

	"github.com/els0r/fluere/pkg/capture"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newOfflineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "offline",
		Short: "Convert a capture file into a flow CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			file := viper.GetString(flagFile)
			if file == "" {
				return fmt.Errorf("no input capture file specified (use --file)")
			}

			src, err := capture.NewFileSource(file)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			// file replay: one output file named after the source, no
			// rotation, duration ignored
			cfg := pipelineConfig()
			cfg.SourceFile = file
			cfg.Duration = 0
			cfg.Interval = 0

			return runFlowPipeline(ctx, src, cfg)
		},
	}
}
