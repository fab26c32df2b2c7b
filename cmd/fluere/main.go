// Binary for the passive NetFlow-style flow exporter fluere
package main

import (
	"os"

	"github.com/els0r/fluere/cmd/fluere/cmd"
	"github.com/els0r/telemetry/logging"
)

func main() {
	err := cmd.Execute()
	if err != nil {
		logger, _, logErr := logging.New(logging.LevelError, logging.EncodingPlain)
		if logErr != nil {
			os.Exit(1)
		}
		logger.With("error", err).Fatal("fluere terminated with an error")
	}
}
