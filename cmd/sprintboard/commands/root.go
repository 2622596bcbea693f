// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Sprintboard - Sprintboard is a sprint delivery dashboard generator.
It collects per-category delivery metrics, keeps a local history of snapshots, and renders styled HTML and PNG reports for increment reviews.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bartekus/sprintboard/cmd/sprintboard/commands/form"
	"github.com/bartekus/sprintboard/cmd/sprintboard/commands/history"
	"github.com/bartekus/sprintboard/cmd/sprintboard/commands/report"
	"github.com/bartekus/sprintboard/cmd/sprintboard/internal/app"
	"github.com/bartekus/sprintboard/cmd/sprintboard/internal/clierr"
)

// NewRootCmd constructs the sprintboard root Cobra command.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithEnv(app.New())
}

// NewRootCmdWithEnv builds the command tree around env.
func NewRootCmdWithEnv(env *app.Env) *cobra.Command {
	version := os.Getenv("SPRINTBOARD_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "sprintboard",
		Short:         "Sprintboard - sprint delivery dashboards",
		Long:          "Sprintboard keeps sprint delivery metrics, saves history snapshots and generates HTML and PNG dashboards.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.Init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			env.Sync()
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&env.ConfigPath, "config", "", "config file (default ./sprintboard.yaml)")
	cmd.PersistentFlags().BoolVarP(&env.Verbose, "verbose", "v", false, "enable debug logging")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return clierr.Usage(c.CommandPath(), err)
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of Sprintboard",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sprintboard version %s\n", version)
		},
	})

	cmd.AddCommand(form.NewFormCommand(env))
	cmd.AddCommand(history.NewHistoryCommand(env))
	cmd.AddCommand(report.NewReportCommand(env))

	return cmd
}
