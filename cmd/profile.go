package cmd

import (
	"fmt"
	"strings"

	"github.com/blink-new/studytrack/internal/achievements"
	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile and achievements",
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
		if snap.Profile == nil {
			return fmt.Errorf("profile %s: %w", e.user.ID, ledger.ErrNotFound)
		}
		p := *snap.Profile

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:        %s\n", p.DisplayName)
		fmt.Fprintf(out, "Email:       %s\n", p.Email)
		if p.University != "" {
			fmt.Fprintf(out, "University:  %s\n", p.University)
		}
		if p.Major != "" {
			fmt.Fprintf(out, "Major:       %s\n", p.Major)
		}
		if p.YearOfStudy > 0 {
			fmt.Fprintf(out, "Year:        %d\n", p.YearOfStudy)
		}
		if p.Bio != "" {
			fmt.Fprintf(out, "Bio:         %s\n", p.Bio)
		}
		fmt.Fprintf(out, "Level:       %d (%d pts)\n", p.Level, p.Points)
		fmt.Fprintf(out, "Streak:      %d days\n", e.deps.Engine.CurrentStreak(p, e.today()))
		fmt.Fprintf(out, "Study time:  %.1fh\n", p.TotalStudyHours)
		fmt.Fprintf(out, "Materials:   %d\n", len(snap.Materials))
		fmt.Fprintf(out, "Quizzes:     %d\n", len(snap.Quizzes))

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Achievements")
		fmt.Fprintln(out, strings.Repeat("─", 48))
		for _, a := range achievements.Evaluate(achievements.FromSnapshot(snap)) {
			mark := " "
			if a.Earned {
				mark = "✓"
			}
			fmt.Fprintf(out, "%s %s %-16s %-10s %3d%%\n",
				mark, a.Kind.Icon(), a.Name, a.Rarity.DisplayName(), a.Percent())
		}
		return nil
	},
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Change profile fields",
	Long:  "Only the flags given are changed. Pass an empty value to clear a field.",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var edit ledger.ProfileEdit
		str := func(name string) *string {
			if !flags.Changed(name) {
				return nil
			}
			v, _ := flags.GetString(name)
			return &v
		}
		edit.DisplayName = str("name")
		edit.University = str("university")
		edit.Major = str("major")
		edit.Bio = str("bio")
		if flags.Changed("year") {
			y, _ := flags.GetInt("year")
			edit.YearOfStudy = &y
		}
		if edit == (ledger.ProfileEdit{}) {
			return fmt.Errorf("nothing to change; see --help for the editable fields")
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.deps.Ledger.UpdateProfile(cmd.Context(), e.user.ID, edit)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Profile updated for %s.\n", p.DisplayName)
		return nil
	},
}

func init() {
	profileEditCmd.Flags().String("name", "", "Display name")
	profileEditCmd.Flags().String("university", "", "University")
	profileEditCmd.Flags().String("major", "", "Major")
	profileEditCmd.Flags().Int("year", 0, "Year of study (0 clears)")
	profileEditCmd.Flags().String("bio", "", "Short bio")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileEditCmd)
}
