// Package cli implements the fitpet command-line interface using Cobra.
// Commands run the engine in-process against the local data directory.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "fitpet",
	Short: "fitpet: level up your training, raise your pet",
	Long: `fitpet turns logged workouts into experience, levels and ranks,
keeps a daily streak, and raises a pet whose happiness depends on
you showing up.

Start with 'fitpet player create NAME', then log workouts with
'fitpet workout PLAYER --type strength --weight 60 --reps 10 --sets 3'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine events to stderr")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
