package cmd

import (
	"github.com/blink-new/studytrack/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runApp opens the ledger, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.enableGenerator(cmd.Context()); err != nil {
		e.log.Info("quiz generation unavailable", zap.Error(err))
	}

	skipSplash, _ := cmd.Flags().GetBool("no-splash")
	return app.Run(e.deps, e.profile, skipSplash)
}
