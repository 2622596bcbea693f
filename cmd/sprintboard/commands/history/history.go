// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Sprintboard - Sprintboard is a sprint delivery dashboard generator.
It collects per-category delivery metrics, keeps a local history of snapshots, and renders styled HTML and PNG reports for increment reviews.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package history contains the commands managing saved snapshots.
package history

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bartekus/sprintboard/cmd/sprintboard/internal/app"
	"github.com/bartekus/sprintboard/cmd/sprintboard/internal/clierr"
	"github.com/bartekus/sprintboard/internal/fileio"
	snapshots "github.com/bartekus/sprintboard/internal/history"
	"github.com/bartekus/sprintboard/internal/trend"
)

const defaultTrendFile = "sprint-trends.html"

// NewHistoryCommand returns the `sprintboard history` command.
func NewHistoryCommand(env *app.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Save, list, restore and delete form snapshots",
		Long: `History commands manage the snapshot file. Snapshots are listed newest
first; the numbers shown by 'history list' are the indices other commands take.`,
	}

	cmd.AddCommand(newListCommand(env))
	cmd.AddCommand(newShowCommand(env))
	cmd.AddCommand(newSaveCommand(env))
	cmd.AddCommand(newRestoreCommand(env))
	cmd.AddCommand(newDeleteCommand(env))
	cmd.AddCommand(newTrendCommand(env))

	return cmd
}

func newListCommand(env *app.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots, newest first",
		Args:  app.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.PrintHistory(cmd.OutOrStdout(), env.History().Records(), env.Now())
			return nil
		},
	}
}

func newShowCommand(env *app.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <n>",
		Short: "Print one snapshot",
		Args:  app.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, rec, err := get(env.History(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (saved %s)\n", rec.Title(), rec.Timestamp)
			app.PrintState(cmd.OutOrStdout(), rec.Config, app.SnapshotSet(rec))
			return nil
		},
	}
}

func newSaveCommand(env *app.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the current form as a new snapshot",
		Args:  app.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := env.LoadForm()
			if err != nil {
				return err
			}

			store := env.History()
			rec := snapshots.NewRecord(st.Config, st.Categories, env.Now())
			if err := store.Append(rec); err != nil {
				return clierr.Failure("saving snapshot", err)
			}
			app.OK(cmd.OutOrStdout(), "Saved %s (%d snapshots)", rec.Title(), store.Len())
			return nil
		},
	}
}

func newRestoreCommand(env *app.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <n>",
		Short: "Load a snapshot into the form",
		Long: `Replace the form's configuration and metric values with snapshot n.
Categories the snapshot has no values for keep their current values.`,
		Args: app.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := app.ParseIndex(args[0])
			if err != nil {
				return err
			}
			cfg, values, err := env.History().Restore(i)
			if err != nil {
				return indexError(err, args[0])
			}

			st, err := env.LoadForm()
			if err != nil {
				return err
			}
			st = st.ApplySnapshot(cfg, values)
			if err := env.SaveForm(st); err != nil {
				return err
			}
			app.OK(cmd.OutOrStdout(), "Restored increment %d, sprint %s into the form", st.Increment, st.CurrentSprint)
			return nil
		},
	}
}

func newDeleteCommand(env *app.Env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <n>",
		Short: "Delete a snapshot",
		Args:  app.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := env.History()
			i, rec, err := get(store, args[0])
			if err != nil {
				return err
			}

			if !yes && !app.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete %s?", rec.Title())) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}

			if err := store.Delete(i); err != nil {
				return clierr.Failure("deleting snapshot", err)
			}
			app.OK(cmd.OutOrStdout(), "Deleted %s", rec.Title())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")

	return cmd
}

func newTrendCommand(env *app.Env) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Chart health and delivery across saved snapshots",
		Args:  app.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			if err := trend.Render(&buf, env.History().Records()); err != nil {
				if errors.Is(err, trend.ErrNoHistory) {
					return clierr.Failure("history trend", err)
				}
				return clierr.Failure("rendering trend page", err)
			}

			path := out
			if path == "" {
				path = filepath.Join(env.Config.Output.Dir, defaultTrendFile)
			}
			if err := fileio.WriteAtomic(path, buf.Bytes(), 0o644); err != nil {
				return clierr.Failure("writing trend page", err)
			}
			app.OK(cmd.OutOrStdout(), "Trend page written to %s", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <output.dir>/"+defaultTrendFile+")")

	return cmd
}

// get resolves a 1-based index argument to its 0-based index and record.
func get(store *snapshots.Store, arg string) (int, snapshots.Record, error) {
	i, err := app.ParseIndex(arg)
	if err != nil {
		return 0, snapshots.Record{}, err
	}
	rec, err := store.Get(i)
	if err != nil {
		return 0, snapshots.Record{}, indexError(err, arg)
	}
	return i, rec, nil
}

func indexError(err error, arg string) error {
	if errors.Is(err, snapshots.ErrIndexOutOfRange) {
		return clierr.Usage("snapshot "+arg, err)
	}
	return clierr.Failure("snapshot "+arg, err)
}
