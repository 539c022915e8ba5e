package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"liseplanning/internal/scrapers/lise/lisetest"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func writeConfig(t *testing.T, portal *lisetest.Portal) string {
	path := filepath.Join(t.TempDir(), "config.json5")
	content := fmt.Sprintf(`{ username: "2023-0001", base_url: %q }`, portal.Url())
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestScrapeCommand(t *testing.T) {
	portal := lisetest.NewPortal(t, "2023-0001", "secret", lisetest.Event{
		Id:    "42",
		Title: "X",
		Start: "2024-05-28T14:40:00+0200",
		End:   "2024-05-28T16:10:00+0200",
	})
	t.Setenv(passwordEnv, "secret")

	out := filepath.Join(t.TempDir(), "planning.ics")
	run(t, "scrape", "--config", writeConfig(t, portal), "--out", out)

	feed, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(feed), "BEGIN:VCALENDAR")
	require.Contains(t, string(feed), "UID:42")
}

func TestEventsCommand(t *testing.T) {
	portal := lisetest.NewPortal(t, "2023-0001", "secret", lisetest.Event{
		Id:    "42",
		Title: "X",
		Start: "2024-05-28T14:40:00+0200",
		End:   "2024-05-28T16:10:00+0200",
	})
	t.Setenv(passwordEnv, "secret")

	table := run(t, "events", "--config", writeConfig(t, portal))
	require.Contains(t, table, "Algèbre linéaire, Mathématiques S5")
	require.Contains(t, table, "2024-05-28 14:40")
}

func TestMissingCredentials(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "config.json5")
	usernameFlag = ""
	t.Setenv(passwordEnv, "")

	_, err := readConfig()
	require.Error(t, err)
}
