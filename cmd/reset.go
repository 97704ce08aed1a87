package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete your sessions, materials, quizzes and profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		if !yes {
			fmt.Fprintf(out, "This deletes all study data for %s. Type \"reset\" to continue: ", e.profile.DisplayName)
			line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if strings.TrimSpace(line) != "reset" {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
		}

		if err := e.deps.Ledger.Reset(cmd.Context(), e.user.ID); err != nil {
			return err
		}
		fmt.Fprintln(out, "Study data deleted.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
