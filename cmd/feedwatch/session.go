package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/maine/feedwatch/internal/state"
)

const defaultSessionFile = "feedwatch-session.json"

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Save or load all settings as one JSON file",
	}
	cmd.AddCommand(sessionExportCmd(), sessionImportCmd())
	return cmd
}

func sessionExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the session file (\"-\" for stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			prefs, err := a.store.Load(cmd.Context())
			if err != nil {
				return err
			}

			path := defaultSessionFile
			if len(args) == 1 {
				path = args[0]
			}

			var w io.Writer = cmd.OutOrStdout()
			if path != "-" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create session file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if err := state.Export(w, prefs); err != nil {
				return err
			}
			if path != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Session saved to %s\n", path)
			}
			return nil
		}),
	}
}

func sessionImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a session file over the current settings",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open session file: %w", err)
			}
			defer f.Close()

			ctx := cmd.Context()
			current, err := a.store.Load(ctx)
			if err != nil {
				return err
			}

			prefs, err := state.Import(f, current)
			if err != nil {
				return fmt.Errorf("could not load the session file, it may be corrupted: %w", err)
			}
			if err := a.store.Save(ctx, prefs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session loaded: %d feed(s).\n", len(prefs.Feeds))
			return nil
		}),
	}
}
