// Package main is the pmdash binary: a terminal project-management
// dashboard with CSV import, optional SQLite persistence and a CSV
// directory watcher.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tgienger/pmdash/internal/config"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd(v *viper.Viper) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Terminal project management dashboard",
		Long: `pmdash shows projects, tasks and recent activity in the terminal.

Projects and tasks can be created interactively or imported from CSV.
State lives in memory and is seeded with demo data unless storage is
enabled, in which case it is loaded from and autosaved to SQLite.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("db") {
				v.Set("storage.enabled", true)
			}
			return config.ReadFile(v, configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), v)
		},
	}

	config.SetDefaults(v)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/pmdash/config.yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("db", "", "SQLite database file; enables storage")
	flags.Bool("mock", true, "seed demo data when nothing is stored")
	flags.Uint64("seed", 0, "random seed for demo data (0 picks one)")
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("storage.path", flags.Lookup("db"))
	_ = v.BindPFlag("seed.enabled", flags.Lookup("mock"))
	_ = v.BindPFlag("seed.random_seed", flags.Lookup("seed"))

	cmd.AddCommand(
		importCmd(v),
		statsCmd(v),
		exportCmd(v),
		watchCmd(v),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit: %s, built: %s)\n", config.AppName, version, commit, date)
			},
		},
	)

	return cmd
}
