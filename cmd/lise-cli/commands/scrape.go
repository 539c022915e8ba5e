package commands

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var scrapeOut string

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeOut, "out", "o", "", "The file to write the feed to, stdout when empty.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--out <path/to/planning.ics>]",
	Short: "Scrapes the planning and writes it as an iCalendar feed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		orchestrator, err := newOrchestrator(cfg)
		if err != nil {
			return err
		}

		slog.Info("scraping using user", "username", cfg.Username)
		t1 := time.Now()
		feed, err := orchestrator.Run(cmd.Context(), cfg.Username, cfg.Password, formatDescription)
		if err != nil {
			return err
		}
		slog.Info("scraping time", "seconds", time.Since(t1).Seconds())

		if scrapeOut == "" {
			_, err = cmd.OutOrStdout().Write(feed)
			return err
		}
		return os.WriteFile(scrapeOut, feed, 0644)
	},
}
