// Package cmd implements the critpath command-line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/critpath/internal/cpm"
)

// exitRejected is the exit status for a dependency the gate refused.
const exitRejected = 2

var rootCmd = &cobra.Command{
	Use:           "critpath",
	Short:         "Critical path scheduler for task dependency graphs",
	Long:          "critpath computes early/late dates, float and the critical path of a project, and refuses any dependency that would close a cycle.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "critpath:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var rejected *rejectedError
	if errors.As(err, &rejected) || errors.Is(err, cpm.ErrCycle) {
		return exitRejected
	}
	return 1
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .critpath.yaml)")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.Bool("no-color", false, "disable colored output")
	pf.String("db", "", "SQLite database path (default .critpath/critpath.db)")
	pf.String("events", "", "append telemetry events to this JSONL file")
	pf.StringP("format", "o", "", "output format: table or json")

	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = viper.BindPFlag("db_path", pf.Lookup("db"))
	_ = viper.BindPFlag("events_path", pf.Lookup("events"))
	_ = viper.BindPFlag("format", pf.Lookup("format"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".critpath")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("CRITPATH")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()

	if noColor, _ := rootCmd.PersistentFlags().GetBool("no-color"); noColor {
		viper.Set("color", false)
	}
}
