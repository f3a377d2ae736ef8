package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show today's message quota",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if stats, _ := cmd.Flags().GetBool("stats"); stats {
			s, err := client.UsageStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Today:         %d / %d\n", s.TodayCount, s.DailyLimit)
			fmt.Fprintf(out, "Last 7 days:   %d\n", s.WeekCount)
			fmt.Fprintf(out, "Last 30 days:  %d (%s per day)\n", s.MonthCount, s.DailyAverage.StringFixed(2))
			fmt.Fprintf(out, "Resets at:     %s\n", s.ResetsAt.Format(time.RFC3339))
			return nil
		}

		u, err := client.Usage(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d of %d messages used today, %d remaining. Resets at %s.\n",
			u.MessageCount, u.DailyLimit, u.Remaining, u.ResetsAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	usageCmd.Flags().Bool("stats", false, "Show 7 and 30 day totals")
}
