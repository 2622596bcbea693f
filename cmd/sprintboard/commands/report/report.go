// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Sprintboard - Sprintboard is a sprint delivery dashboard generator.
It collects per-category delivery metrics, keeps a local history of snapshots, and renders styled HTML and PNG reports for increment reviews.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package report contains the dashboard generation commands.
package report

import (
	"github.com/spf13/cobra"

	"github.com/bartekus/sprintboard/cmd/sprintboard/internal/app"
	"github.com/bartekus/sprintboard/cmd/sprintboard/internal/clierr"
	"github.com/bartekus/sprintboard/internal/sheet"
)

const defaultSampleFile = "dashboard_data.xlsx"

// NewReportCommand returns the `sprintboard report` command.
func NewReportCommand(env *app.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate HTML and PNG dashboards",
		Long:  "Report commands render the dashboard from the form or from a spreadsheet and export it as an image.",
	}

	cmd.AddCommand(newGenerateCommand(env))
	cmd.AddCommand(newSheetCommand(env))
	cmd.AddCommand(newSampleCommand())

	return cmd
}

func newGenerateCommand(env *app.Env) *cobra.Command {
	var (
		out     string
		noImage bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the dashboard from the current form",
		Long: `Render the dashboard from the current form to
<output.dir>/sprint-dashboard-<increment>-<sprint>.html and, when export is
enabled, a PNG of the same name. A failed image export is reported as a
warning and leaves the HTML in place.`,
		Args: app.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := env.LoadForm()
			if err != nil {
				return err
			}
			return env.WriteReport(cmd.Context(), cmd.OutOrStdout(), st.Config, st.Categories, out, noImage)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output HTML file")
	cmd.Flags().BoolVar(&noImage, "no-image", false, "skip the PNG export")

	return cmd
}

func newSheetCommand(env *app.Env) *cobra.Command {
	var (
		input     string
		sheetName string
		out       string
		noImage   bool
	)

	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Render the dashboard from an xlsx workbook",
		Long: `Render the dashboard from a workbook with the columns Category, Item,
Metric and Value. Use 'report sample' to write an example workbook.`,
		Args: app.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return clierr.Usagef("report sheet: --input is required")
			}

			cfg, set, err := sheet.Load(input, sheetName)
			if err != nil {
				return clierr.Failure("reading workbook", err)
			}
			env.Log.Debugw("workbook loaded", "path", input, "categories", len(set), "increment", cfg.Increment)

			return env.WriteReport(cmd.Context(), cmd.OutOrStdout(), cfg, set, out, noImage)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "xlsx workbook to read")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "sheet name (default: first sheet)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output HTML file")
	cmd.Flags().BoolVar(&noImage, "no-image", false, "skip the PNG export")

	return cmd
}

func newSampleCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write an example workbook for 'report sheet'",
		Args:  app.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sheet.WriteSample(out); err != nil {
				return clierr.Failure("writing sample workbook", err)
			}
			app.OK(cmd.OutOrStdout(), "Sample workbook written to %s", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", defaultSampleFile, "workbook to write")

	return cmd
}
