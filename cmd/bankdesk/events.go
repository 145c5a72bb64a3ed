package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent console activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		events, err := a.store.RecentEvents(limit)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			fmt.Println("No activity recorded")
			return nil
		}
		for _, e := range events {
			line := fmt.Sprintf("%s  %-24s %s", e.CreatedAt.Format(time.RFC3339), e.Action, e.ResourceID)
			if e.Detail != "" {
				line += "  " + e.Detail
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().Int("limit", 20, "number of events to show")
	rootCmd.AddCommand(eventsCmd)
}
