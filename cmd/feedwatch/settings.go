package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maine/feedwatch/internal/news"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change auto-refresh, date window and sort order",
	}
	cmd.AddCommand(settingsShowCmd(), settingsSetCmd())
	return cmd
}

func settingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print current settings",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			prefs, err := a.store.Load(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			refresh := "off"
			if prefs.AutoRefresh > 0 {
				refresh = prefs.AutoRefresh.Duration().String()
			}
			fmt.Fprintf(out, "auto-refresh: %s\n", refresh)
			fmt.Fprintf(out, "date window:  %s\n", prefs.DateFilter)
			fmt.Fprintf(out, "sort:         %s\n", prefs.Sort)
			fmt.Fprintf(out, "feeds:        %d\n", len(prefs.Feeds))
			return nil
		}),
	}
}

func settingsSetCmd() *cobra.Command {
	var (
		refresh   int
		window    string
		sortOrder string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings; only the given flags are updated",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			ctx := cmd.Context()
			prefs, err := a.store.Load(ctx)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("refresh") {
				if refresh < 0 {
					return fmt.Errorf("refresh must be 0 (off) or a number of minutes")
				}
				prefs.AutoRefresh = news.RefreshInterval(refresh)
			}
			if cmd.Flags().Changed("window") {
				w, err := news.ParseDateWindow(window)
				if err != nil {
					return err
				}
				prefs.DateFilter = w
			}
			if cmd.Flags().Changed("sort") {
				order, err := news.ParseSortOrder(sortOrder)
				if err != nil {
					return err
				}
				prefs.Sort = order
			}

			if err := a.store.Save(ctx, prefs); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
			return nil
		}),
	}

	cmd.Flags().IntVar(&refresh, "refresh", 0, "auto-refresh interval in minutes, 0 turns it off")
	cmd.Flags().StringVar(&window, "window", "", "days to look back or \"all\"")
	cmd.Flags().StringVar(&sortOrder, "sort", "", "date-desc, date-asc or relevance")
	return cmd
}
