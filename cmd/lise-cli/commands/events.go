package commands

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(eventsCmd)
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Scrapes the planning and prints the assembled events.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		orchestrator, err := newOrchestrator(cfg)
		if err != nil {
			return err
		}

		events, err := orchestrator.Events(cmd.Context(), cfg.Username, cfg.Password, formatDescription)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Id", "Name", "Start", "End", "Location"})
		for _, e := range events {
			layout := "2006-01-02 15:04"
			if e.AllDay {
				layout = time.DateOnly
			}
			t.AppendRow(table.Row{e.Id, e.Name, e.Start.Format(layout), e.End.Format(layout), e.Location})
		}
		t.AppendFooter(table.Row{"", "", "", "Total", len(events)})

		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}
