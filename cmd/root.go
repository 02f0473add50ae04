package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/nexus/internal/config"
	"github.com/abhisek/nexus/internal/store"
)

// cfg is loaded once before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "nexus",
	Short:         "Worksheet practice with levels, rewards and avatars",
	Long:          "Nexus: grade-aware multiple-choice worksheets for students, with experience, levels, collectible artifacts and unlockable avatars.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides NEXUS_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/nexus/config.yaml)")
	rootCmd.PersistentFlags().String("env-file", "", "Path to a .env file (default ./.env if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(worksheetCmd)
	rootCmd.AddCommand(vaultCmd)
	rootCmd.AddCommand(avatarCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads configuration and installs the process logger.
func loadConfig(cmd *cobra.Command) error {
	configFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	c, err := config.Load(config.LoadOptions{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		if _, err := config.ParseLevel(lvl); err != nil {
			return err
		}
		c.Log.Level = lvl
	}

	cfg = c
	slog.SetDefault(cfg.Log.NewLogger(os.Stderr))
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the db config key or NEXUS_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}
