package cmd

import (
	"fmt"
	"strings"

	"github.com/blink-new/studytrack/internal/achievements"
	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/ui/components"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show study statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		snap, err := e.snapshot(cmd.Context())
		if err != nil {
			return err
		}
		var p ledger.Profile
		if snap.Profile != nil {
			p = *snap.Profile
		}
		s := e.deps.Engine.Summarize(p, snap.Sessions, e.today(), e.deps.GoalHours)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Today       %.1fh of %.1fh (%d%%)\n", s.TodayHours, s.GoalHours, int(s.GoalProgress*100))
		fmt.Fprintf(out, "This week   %.1fh\n", s.WeeklyHours)
		fmt.Fprintf(out, "Streak      %d days\n", s.Streak)
		fmt.Fprintf(out, "Level       %d (%d pts)\n", s.Level, s.Points)
		fmt.Fprintf(out, "Total       %.1fh in %d sessions\n", s.TotalHours, s.SessionCount)

		minutes := make([]int, len(s.LastWeek))
		for i, d := range s.LastWeek {
			minutes[i] = d.Minutes
		}
		fmt.Fprintf(out, "Last 7 days %s\n", components.Sparkline(minutes))

		if len(s.BySubject) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "By subject")
			fmt.Fprintln(out, strings.Repeat("─", 32))
			for _, st := range s.BySubject {
				fmt.Fprintf(out, "%-24s %6.1fh\n", truncate(st.Subject, 24), float64(st.Minutes)/60)
			}
		}

		earned := achievements.Earned(achievements.FromSnapshot(snap))
		if len(earned) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Achievements (%d)\n", len(earned))
			fmt.Fprintln(out, strings.Repeat("─", 32))
			for _, a := range earned {
				fmt.Fprintf(out, "%s %s\n", a.Kind.Icon(), a.Name)
			}
		}
		return nil
	},
}
