package cmd

import (
	"github.com/blink-new/studytrack/internal/config"
	"github.com/blink-new/studytrack/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "studytrack",
	Short: "Terminal study tracker",
	Long:  "StudyTrack: time study sessions, keep materials and quizzes, and watch your streak grow.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STUDYTRACK_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/studytrack/config.yaml)")
	rootCmd.Flags().Bool("no-splash", false, "Skip the welcome animation")

	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(materialCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(friendsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config and applies the
// --db flag on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Storage.Path = p
	}
	return cfg, nil
}

// resolveDBPath returns the SQLite path from the config (which already
// carries --db and STUDYTRACK_DB), then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if p := cfg.Storage.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
