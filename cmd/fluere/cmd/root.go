// Package cmd contains the fluere command line interface implementation
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/els0r/fluere/cmd/fluere/config"
	"github.com/els0r/fluere/pkg/capture"
	"github.com/els0r/fluere/pkg/export"
	"github.com/els0r/fluere/pkg/plugins"
	"github.com/els0r/fluere/pkg/version"
	"github.com/els0r/telemetry/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// outputDir is where all CSV / pcap output files are created
const outputDir = "./output"

const (
	flagInterface = "interface"
	flagList      = "list"
	flagCSV       = "csv"
	flagFile      = "file"
	flagPcap      = "pcap"
	flagDuration  = "duration"
	flagTimeout   = "timeout"
	flagInterval  = "interval"
	flagUseMAC    = "useMAC"
	flagSleep     = "sleep"
	flagVerbose   = "verbose"
)

// Execute runs the root command
func Execute() error {
	rootCmd := newRootCmd()

	rootCmd.AddCommand(
		newOnlineCmd(),
		newOfflineCmd(),
		newLiveCmd(),
		newPcapCmd(),
		newVersionCmd(),
	)

	return rootCmd.Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fluere",
		Short:         "fluere is a passive NetFlow-style flow exporter",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initLogging()
		},
	}

	registerFlags(rootCmd.PersistentFlags())

	return rootCmd
}

func registerFlags(pflags *pflag.FlagSet) {
	pflags.StringP(flagInterface, "i", "", "network interface to capture on (name or index)")
	pflags.BoolP(flagList, "l", false, "list network interfaces and exit")
	pflags.StringP(flagCSV, "c", "output", "stem of the exported CSV files")
	pflags.StringP(flagFile, "f", "", "input capture file (offline mode)")
	pflags.StringP(flagPcap, "p", "", "stem of the output capture files (pcap mode)")
	pflags.Uint64P(flagDuration, "d", 0, "capture duration in milliseconds (0: unbounded)")
	pflags.Uint64P(flagTimeout, "t", 600000, "flow idle timeout in milliseconds (0: no idle eviction)")
	pflags.Uint64P(flagInterval, "I", 1800000, "export rotation interval in milliseconds (0: no rotation)")
	pflags.BoolP(flagUseMAC, "M", false, "include MAC addresses in the flow key")
	pflags.Uint64P(flagSleep, "s", 10, "per-10-packet yield in milliseconds (Windows only)")
	pflags.IntP(flagVerbose, "v", 1, "verbosity level 0..4 (error to trace)")

	if err := viper.BindPFlags(pflags); err != nil {
		panic(fmt.Sprintf("failed to bind flags: %v", err))
	}
}

func initLogging() error {
	_, err := logging.Init(verboseLevel(viper.GetInt(flagVerbose)), logging.EncodingLogfmt,
		logging.WithVersion(version.Short()),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// verboseLevel maps the numeric --verbose flag onto logger levels. The
// two highest settings both enable debug output (packet-level tracing
// included).
func verboseLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return logging.LevelError
	case v <= 2:
		return logging.LevelInfo
	default:
		return logging.LevelDebug
	}
}

// signalContext derives the run context cancelled by SIGINT / SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
}

// pipelineConfig assembles the capture configuration shared by all
// flow-exporting subcommands. All flag durations are milliseconds; the
// flow table compares in microseconds internally.
func pipelineConfig() capture.Config {
	return capture.Config{
		OutputDir:     outputDir,
		CSVBase:       viper.GetString(flagCSV),
		Duration:      time.Duration(viper.GetUint64(flagDuration)) * time.Millisecond,
		Timeout:       time.Duration(viper.GetUint64(flagTimeout)) * time.Millisecond,
		Interval:      time.Duration(viper.GetUint64(flagInterval)) * time.Millisecond,
		UseMacs:       viper.GetBool(flagUseMAC),
		SleepInterval: time.Duration(viper.GetUint64(flagSleep)) * time.Millisecond,
	}
}

// runFlowPipeline wires the plugin dispatcher and the export handler
// around a pipeline run and awaits all outstanding writeouts
func runFlowPipeline(ctx context.Context, src capture.Source, cfg capture.Config) error {
	logger := logging.FromContext(ctx)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	pluginCfg, err := config.Load()
	if err != nil {
		logger.Warnf("failed to load plugin configuration: %v", err)
		pluginCfg = config.New()
	}
	dispatcher := plugins.NewDispatcher(ctx, pluginCfg.EnabledPlugins())
	defer dispatcher.Cleanup()

	handler := export.NewHandler(dispatcher)
	handler.HandleWriteouts(ctx)

	runErr := capture.NewPipeline(src, handler, cfg).Run(ctx)

	handler.Close()
	writeErr := handler.Wait()

	if runErr != nil {
		return runErr
	}
	return writeErr
}

// resolveLiveSource handles the --list shortcut and opens the live
// capture source for the configured interface. done indicates that the
// interface listing was printed and the command has nothing left to do.
func resolveLiveSource(cmd *cobra.Command) (src capture.Source, done bool, err error) {
	if viper.GetBool(flagList) {
		return nil, true, capture.PrintInterfaces(cmd.OutOrStdout())
	}

	iface, err := capture.ResolveInterface(viper.GetString(flagInterface))
	if err != nil {
		return nil, false, err
	}

	src, err = capture.NewLiveSource(iface)
	return src, false, err
}
