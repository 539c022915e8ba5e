package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type portalConfig struct {
	BaseUrl           string  `json:"base_url"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type testConfig struct {
	Port     int          `json:"port"`
	Username string       `json:"username"`
	Portal   portalConfig `json:"portal"`
}

func write(t *testing.T, path, content string) {
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "config.json5"), `{
		// committed defaults
		port: 8080,
		portal: { base_url: "https://lise.example", requests_per_second: 2 },
	}`)
	write(t, filepath.Join(dir, "config.local.json5"), `{
		username: "2023-0001",
		portal: { base_url: "http://localhost:9000" },
	}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)

	expected := testConfig{
		Port:     8080,
		Username: "2023-0001",
		Portal: portalConfig{
			BaseUrl:           "http://localhost:9000",
			RequestsPerSecond: 2,
		},
	}
	if diff := cmp.Diff(expected, cfg); diff != "" {
		t.Fatal(diff)
	}
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "config.json5"), `{ port: `)

	_, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestLocalName(t *testing.T) {
	require.Equal(t, "config.local.json5", localName("config.json5"))
	require.Equal(t, filepath.Join("a", "b", "telemetry.local.json5"), localName(filepath.Join("a", "b", "telemetry.json5")))
}
