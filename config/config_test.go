package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleTOML = `
[[sdr]]
driver = "rtlsdr"
channel = 0

[sdr.antenna]
name = "default"

[[sdr.setting]]
key = "bias_tee"
value = "1"

[[sdr.gain]]
key = "lna"
value = 28.0
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "modes1090.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadParsesSDRTableArray(t *testing.T) {
	path := writeTempConfig(t, sampleTOML)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.SDR, 1)

	s := cfg.SDR[0]
	require.Equal(t, "rtlsdr", s.Driver)
	require.Equal(t, "default", s.Antenna.Name)
	require.Len(t, s.Setting, 1)
	require.Equal(t, "bias_tee", s.Setting[0].Key)
	require.Len(t, s.Gain, 1)
	require.Equal(t, "lna", s.Gain[0].Key)
	require.Equal(t, 28.0, s.Gain[0].Value)
}

func TestLoadRejectsMissingDriver(t *testing.T) {
	path := writeTempConfig(t, "[[sdr]]\nchannel = 0\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
