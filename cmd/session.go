package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/blink-new/studytrack/internal/achievements"
	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/session"
	"github.com/blink-new/studytrack/internal/stats"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Time, log and list study sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start [subject]",
	Short: "Run the study timer in the foreground",
	Long: "Starts the timer for subject. Press Enter to stop and save the session,\n" +
		"or Ctrl+C to discard it. End of input also stops and saves.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		before, err := e.snapshot(ctx)
		if err != nil {
			return err
		}

		ctrl := e.deps.Controller
		if err := ctrl.Start(strings.Join(args, " ")); err != nil {
			return err
		}
		if notes, _ := cmd.Flags().GetString("notes"); notes != "" {
			ctrl.SetNotes(notes)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Studying %s. Enter stops and saves, Ctrl+C discards.\n", ctrl.Status().Subject)

		sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		// lines is closed at end of input, which stops the timer for good.
		lines := make(chan struct{}, 1)
		go func() {
			defer close(lines)
			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				select {
				case lines <- struct{}{}:
				case <-sigCtx.Done():
					return
				}
			}
		}()

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fmt.Fprintf(out, "\r  %s ", session.FormatElapsed(ctrl.Status().Elapsed))
			case <-sigCtx.Done():
				ctrl.Discard()
				fmt.Fprintln(out, "\nSession discarded.")
				return nil
			case _, open := <-lines:
				res, err := ctrl.Stop(ctx)
				var verr *ledger.ValidationError
				if errors.As(err, &verr) {
					if !open {
						ctrl.Discard()
						return fmt.Errorf("input closed: %w", err)
					}
					fmt.Fprintf(out, "\n%s; keep going or press Ctrl+C to discard.\n", verr.Message)
					continue
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				if res.Discarded {
					fmt.Fprintln(out, "Nothing to save.")
					return nil
				}
				return printCommitted(ctx, out, e, res, before)
			}
		}
	},
}

var sessionLogCmd = &cobra.Command{
	Use:   "log <subject> <minutes>",
	Short: "Record a session studied away from the timer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid minutes %q: %w", args[1], err)
		}
		notes, _ := cmd.Flags().GetString("notes")
		date, _ := cmd.Flags().GetString("date")
		if date != "" && !ledger.Date(date).Valid() {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		before, err := e.snapshot(ctx)
		if err != nil {
			return err
		}
		d := e.deps
		res, err := session.Record(ctx, d.Ledger, d.Engine, d.UserID, session.Entry{
			Subject:         args[0],
			DurationMinutes: minutes,
			Notes:           notes,
			Date:            ledger.Date(date),
		}, e.today())
		if err != nil {
			return err
		}
		return printCommitted(ctx, cmd.OutOrStdout(), e, res, before)
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		subject, _ := cmd.Flags().GetString("subject")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		sessions, err := e.deps.Ledger.Sessions(cmd.Context(), e.user.ID)
		if err != nil {
			return err
		}
		var rows []ledger.Session
		for _, s := range sessions {
			if subject != "" && !strings.EqualFold(s.Subject, subject) {
				continue
			}
			rows = append(rows, s)
			if limit > 0 && len(rows) == limit {
				break
			}
		}

		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}
		fmt.Fprintf(out, "%-10s  %-24s  %5s  %5s  %s\n", "Date", "Subject", "Min", "Pts", "Notes")
		fmt.Fprintln(out, strings.Repeat("─", 72))
		for _, s := range rows {
			fmt.Fprintf(out, "%-10s  %-24s  %5d  %5d  %s\n",
				s.SessionDate, truncate(s.Subject, 24), s.DurationMinutes,
				stats.PointsForSession(s.DurationMinutes), truncate(s.Notes, 30))
		}
		return nil
	},
}

// printCommitted reports a saved session and any achievements it unlocked.
func printCommitted(ctx context.Context, out io.Writer, e *env, res session.Result, before ledger.Snapshot) error {
	s := res.Session
	fmt.Fprintf(out, "Saved %d min of %s on %s.\n", s.DurationMinutes, s.Subject, s.SessionDate)
	fmt.Fprintf(out, "+%d points (total %d)\n", res.PointsEarned(), res.Profile.Points)

	switch res.Accrual.Streak {
	case stats.StreakExtended:
		fmt.Fprintf(out, "Streak extended to %d days!\n", res.Profile.StudyStreak)
	case stats.StreakRestarted:
		fmt.Fprintf(out, "New streak started (was %d days).\n", res.Accrual.PrevStreak)
	default:
		fmt.Fprintf(out, "Streak holds at %d days.\n", res.Profile.StudyStreak)
	}
	if res.Accrual.LevelUp {
		fmt.Fprintf(out, "Level up! %d -> %d\n", res.Accrual.PrevLevel, res.Profile.Level)
	}

	after, err := e.snapshot(ctx)
	if err != nil {
		return err
	}
	for _, a := range achievements.Unlocked(achievements.FromSnapshot(before), achievements.FromSnapshot(after)) {
		fmt.Fprintf(out, "Achievement unlocked: %s %s (%s)\n", a.Kind.Icon(), a.Name, a.Rarity.DisplayName())
	}
	return nil
}

func init() {
	sessionStartCmd.Flags().String("notes", "", "Notes to attach to the session")

	sessionLogCmd.Flags().String("notes", "", "Notes to attach to the session")
	sessionLogCmd.Flags().String("date", "", "Session date as YYYY-MM-DD (default today)")

	sessionListCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show (0 = all)")
	sessionListCmd.Flags().StringP("subject", "s", "", "Only sessions for this subject")

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionLogCmd)
	sessionCmd.AddCommand(sessionListCmd)
}
