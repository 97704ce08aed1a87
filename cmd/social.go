package cmd

import (
	"fmt"
	"strings"

	"github.com/blink-new/studytrack/internal/content"
	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/spf13/cobra"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the points leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		periodName, _ := cmd.Flags().GetString("period")
		university, _ := cmd.Flags().GetString("university")
		period, err := content.ParsePeriod(periodName)
		if err != nil {
			return err
		}

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
		you := content.YouEntry(p, snap.Sessions, e.today(), e.deps.Engine)
		rows := content.Leaderboard(e.deps.Content, period, university, &you)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%4s  %-22s  %-24s  %5s  %6s  %7s\n", "Rank", "Name", "University", "Level", "Streak", "Points")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, r := range rows {
			name := r.Name
			if r.You {
				name += " (you)"
			}
			fmt.Fprintf(out, "%4d  %-22s  %-24s  %5d  %6d  %7d\n",
				r.Rank, truncate(name, 22), truncate(r.University, 24), r.Level, r.Streak, r.Points)
		}
		return nil
	},
}

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "List friends, requests and study groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		c := e.deps.Content
		out := cmd.OutOrStdout()

		friends := c.Friends()
		fmt.Fprintf(out, "Friends: %d online · %d studying · %d offline\n",
			content.CountPresence(friends, content.PresenceOnline),
			content.CountPresence(friends, content.PresenceStudying),
			content.CountPresence(friends, content.PresenceOffline))
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, f := range content.FilterFriends(friends, query) {
			status := string(f.Status)
			if f.Activity != "" {
				status += ": " + f.Activity
			}
			fmt.Fprintf(out, "%-22s  %-24s  L%-3d  %3dd  %s\n",
				truncate(f.Name, 22), truncate(f.University, 24), f.Level, f.Streak, status)
		}

		if reqs := c.FriendRequests(); len(reqs) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Requests (%d)\n", len(reqs))
			for _, r := range reqs {
				fmt.Fprintf(out, "  %s, %s (%d mutual)\n", r.Name, r.University, r.MutualFriends)
			}
		}

		if groups := c.StudyGroups(); len(groups) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Study groups")
			for _, g := range groups {
				joined := ""
				if g.Joined {
					joined = " [joined]"
				}
				fmt.Fprintf(out, "  %s (%s, %d members)%s\n", g.Name, g.Subject, g.Members, joined)
			}
		}
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().StringP("period", "p", string(content.PeriodWeek), "week, month or all")
	leaderboardCmd.Flags().StringP("university", "u", content.AllUniversities, "Only this university")

	friendsCmd.Flags().StringP("query", "q", "", "Match name, university or major")
}
