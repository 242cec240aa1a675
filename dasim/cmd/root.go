// Package cmd provides the command-line interface of dasim.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// NewRootCommand creates the dasim command with all its subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dasim",
		Short: "dasim simulates synchronous distributed algorithms.",
		Long: `dasim runs distributed algorithms round by round on a network ` +
			`of simulated nodes, under the PN, LOCAL or CONGEST model. ` +
			`Defaults can be set with DASIM_* environment variables or a ` +
			`.env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")

			parsed, err := zerolog.ParseLevel(level)
			if err != nil {
				return err
			}

			zerolog.SetGlobalLevel(parsed)

			return nil
		},
	}

	rootCmd.PersistentFlags().String("log-level", "warn",
		"Log level of the round logger (trace, debug, info, warn, error).")

	rootCmd.AddCommand(
		newRunCommand(),
		newNetworksCommand(),
		newAlgorithmsCommand(),
		newDotCommand(),
		newReportCommand(),
	)

	return rootCmd
}

// Execute loads the environment, runs the command line and exits.
func Execute() {
	loadEnv()

	err := NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
