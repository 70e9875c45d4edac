package main

import (
	"github.com/spf13/cobra"

	plog "github.com/SnoozeScript/aies-lab/pkg/log"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "aies",
		Short: "Audit and mitigate group fairness of binary classifiers",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			plog.SetupLogger(logLevel)
		},
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(newRunCmd())
	return cmd
}
