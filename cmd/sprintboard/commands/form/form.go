// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Sprintboard - Sprintboard is a sprint delivery dashboard generator.
It collects per-category delivery metrics, keeps a local history of snapshots, and renders styled HTML and PNG reports for increment reviews.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package form contains the commands editing the current dashboard form.
package form

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/bartekus/sprintboard/cmd/sprintboard/internal/app"
	"github.com/bartekus/sprintboard/cmd/sprintboard/internal/clierr"
	formstate "github.com/bartekus/sprintboard/internal/form"
	"github.com/bartekus/sprintboard/internal/metrics"
	"github.com/bartekus/sprintboard/internal/sprint"
)

// NewFormCommand returns the `sprintboard form` command.
func NewFormCommand(env *app.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "form",
		Short: "Edit the current sprint configuration and metrics",
		Long:  "Form commands read and change the working state a dashboard is generated from.",
	}

	cmd.AddCommand(newInitCommand(env))
	cmd.AddCommand(newShowCommand(env))
	cmd.AddCommand(newSetCommand(env))
	cmd.AddCommand(newMetricCommand(env))

	return cmd
}

func newInitCommand(env *app.Env) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a form file with the default categories",
		Args:  app.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := env.Config.Form.File
			if _, err := os.Stat(path); err == nil && !force {
				return clierr.Usagef("form init: %s already exists (use --force to overwrite)", path)
			}
			if err := env.SaveForm(formstate.Default()); err != nil {
				return err
			}
			app.OK(cmd.OutOrStdout(), "Form initialized at %s", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing form file")

	return cmd
}

func newShowCommand(env *app.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current form",
		Args:  app.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := env.LoadForm()
			if err != nil {
				return err
			}
			app.PrintState(cmd.OutOrStdout(), st.Config, st.Categories)
			return nil
		},
	}
}

func newSetCommand(env *app.Env) *cobra.Command {
	var (
		increment int
		current   string
		rangeText string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change increment, current sprint or sprint range",
		Long: `Change the sprint configuration. Changing the increment resets the current
sprint to the increment's first sprint unless --sprint selects another one.`,
		Args: app.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("increment") && !flags.Changed("sprint") && !flags.Changed("range") {
				return clierr.Usagef("form set: nothing to change; pass --increment, --sprint or --range")
			}

			st, err := env.LoadForm()
			if err != nil {
				return err
			}

			if flags.Changed("increment") {
				st, err = st.SetIncrement(increment)
				if err != nil {
					return clierr.Usage("form set", err)
				}
			}
			if flags.Changed("sprint") {
				cfg, err := st.Config.WithCurrentSprint(current)
				if err != nil {
					return clierr.Usage("form set", err)
				}
				st.Config = cfg
			}
			if flags.Changed("range") {
				st.Config = st.Config.WithSprintRange(rangeText)
			}

			if err := env.SaveForm(st); err != nil {
				return err
			}
			app.OK(cmd.OutOrStdout(), "Increment %d, sprint %s, range %q",
				st.Increment, st.CurrentSprint, st.SprintRange)
			return nil
		},
	}
	cmd.Flags().IntVar(&increment, "increment", sprint.DefaultIncrement, "increment number (1 or greater)")
	cmd.Flags().StringVar(&current, "sprint", "", "current sprint label, e.g. 17.3")
	cmd.Flags().StringVar(&rangeText, "range", "", "sprint range label shown in the subtitle")

	return cmd
}

func newMetricCommand(env *app.Env) *cobra.Command {
	var (
		delivered int
		total     int
		health    float64
	)

	cmd := &cobra.Command{
		Use:   "metric <category-key>",
		Short: "Change a category's delivered, total or health values",
		Long: `Change one category's metrics. Values are stored as given; delivered may
exceed total and health is not range-checked, but must be a finite number.`,
		Args: app.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			flags := cmd.Flags()
			if !flags.Changed("delivered") && !flags.Changed("total") && !flags.Changed("health") {
				return clierr.Usagef("form metric: nothing to change; pass --delivered, --total or --health")
			}

			st, err := env.LoadForm()
			if err != nil {
				return err
			}

			cat, ok := st.Categories.Lookup(key)
			if !ok {
				return clierr.Usage("form metric", fmt.Errorf("%w: %q (known: %v)", metrics.ErrUnknownCategory, key, st.Categories.Keys()))
			}

			rec := cat.Record
			if flags.Changed("delivered") {
				rec.Delivered = delivered
			}
			if flags.Changed("total") {
				rec.Total = total
			}
			if flags.Changed("health") {
				if math.IsNaN(health) || math.IsInf(health, 0) {
					return clierr.Usagef("form metric: --health must be a finite number, got %v", health)
				}
				rec.Health = health
			}

			st, err = st.SetMetric(key, rec)
			if err != nil {
				return clierr.Usage("form metric", err)
			}
			if err := env.SaveForm(st); err != nil {
				return err
			}
			app.OK(cmd.OutOrStdout(), "%s: %d / %d, health %s", cat.Name, rec.Delivered, rec.Total, rec.HealthLabel())
			return nil
		},
	}
	cmd.Flags().IntVar(&delivered, "delivered", 0, "features delivered")
	cmd.Flags().IntVar(&total, "total", 0, "features planned")
	cmd.Flags().Float64Var(&health, "health", 0, "health score (0-4)")

	return cmd
}
