package cmd

import (
	"testing"

	"github.com/els0r/telemetry/logging"
	"github.com/stretchr/testify/require"
)

func TestFlagDefaults(t *testing.T) {
	rootCmd := newRootCmd()
	pflags := rootCmd.PersistentFlags()

	var testCases = []struct {
		name     string
		expected string
	}{
		{flagInterface, ""},
		{flagList, "false"},
		{flagCSV, "output"},
		{flagFile, ""},
		{flagPcap, ""},
		{flagDuration, "0"},
		{flagTimeout, "600000"},
		{flagInterval, "1800000"},
		{flagUseMAC, "false"},
		{flagSleep, "10"},
		{flagVerbose, "1"},
	}

	for _, tc := range testCases {
		flag := pflags.Lookup(tc.name)
		require.NotNilf(t, flag, "flag %q not registered", tc.name)
		require.Equalf(t, tc.expected, flag.DefValue, "default of %q", tc.name)
	}
}

func TestFlagShorthands(t *testing.T) {
	pflags := newRootCmd().PersistentFlags()

	shorthands := map[string]string{
		flagInterface: "i",
		flagList:      "l",
		flagCSV:       "c",
		flagFile:      "f",
		flagPcap:      "p",
		flagDuration:  "d",
		flagTimeout:   "t",
		flagInterval:  "I",
		flagUseMAC:    "M",
		flagSleep:     "s",
		flagVerbose:   "v",
	}
	for name, shorthand := range shorthands {
		require.Equal(t, shorthand, pflags.Lookup(name).Shorthand)
	}
}

func TestVerboseLevelMapping(t *testing.T) {
	require.Equal(t, logging.LevelError, verboseLevel(0))
	require.Equal(t, logging.LevelError, verboseLevel(-1))
	require.Equal(t, logging.LevelInfo, verboseLevel(1))
	require.Equal(t, logging.LevelInfo, verboseLevel(2))
	require.Equal(t, logging.LevelDebug, verboseLevel(3))
	require.Equal(t, logging.LevelDebug, verboseLevel(4))
}

func TestSubcommandsRegistered(t *testing.T) {
	rootCmd := newRootCmd()
	rootCmd.AddCommand(
		newOnlineCmd(),
		newOfflineCmd(),
		newLiveCmd(),
		newPcapCmd(),
		newVersionCmd(),
	)

	var names []string
	for _, sub := range rootCmd.Commands() {
		names = append(names, sub.Name())
	}

	for _, expected := range []string{"online", "offline", "live", "pcap", "version"} {
		require.Contains(t, names, expected)
	}
}
