package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFileCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluere", "fluere.toml")

	cfg, err := LoadFile(path)
	require.Nil(t, err)
	require.Empty(t, cfg.Plugins)

	// the default file has been materialized
	_, err = os.Stat(path)
	require.Nil(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluere.toml")

	cfg := New()
	cfg.Plugins["geoip"] = Plugin{
		Enabled: true,
		Path:    "/opt/plugins/geoip",
		ExtraArguments: map[string]string{
			"database": "/var/lib/geoip.mmdb",
		},
	}
	cfg.Plugins["disabled"] = Plugin{Enabled: false}

	require.Nil(t, cfg.Save(path))

	loaded, err := LoadFile(path)
	require.Nil(t, err)
	require.Equal(t, cfg.Plugins, loaded.Plugins)

	enabled := loaded.EnabledPlugins()
	require.Len(t, enabled, 1)
	require.Equal(t, "/var/lib/geoip.mmdb", enabled["geoip"]["database"])
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluere.toml")
	require.Nil(t, os.WriteFile(path, []byte("not [valid toml"), 0644))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestPathRespectsSudoUser(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("SUDO_USER does not redirect the config dir on macOS")
	}

	t.Setenv("SUDO_USER", "operator")

	path, err := Path()
	require.Nil(t, err)
	require.Equal(t, filepath.Join("/home", "operator", ".config", "fluere", "fluere.toml"), path)
}

func TestPathDefault(t *testing.T) {
	t.Setenv("SUDO_USER", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := Path()
	require.Nil(t, err)
	require.Equal(t, "fluere.toml", filepath.Base(path))
	require.Equal(t, "fluere", filepath.Base(filepath.Dir(path)))
}
