package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maine/feedwatch/internal/news"
	"github.com/maine/feedwatch/internal/sources"
)

func feedsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Manage the list of feed URLs",
	}
	cmd.AddCommand(feedsListCmd(), feedsAddCmd(), feedsRemoveCmd(), feedsClearCmd(), feedsDiscoverCmd())
	return cmd
}

func feedsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show configured feeds",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			prefs, err := a.store.Load(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(prefs.Feeds) == 0 {
				fmt.Fprintln(out, "No feeds configured.")
				return nil
			}
			for i, feed := range prefs.Feeds {
				fmt.Fprintf(out, "%2d. %s\n", i+1, feed)
			}
			return nil
		}),
	}
}

func feedsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <url>...",
		Short: "Add feeds (separated by spaces, commas or newlines)",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			return addFeeds(cmd, a, strings.Join(args, " "))
		}),
	}
}

func addFeeds(cmd *cobra.Command, a *appEnv, input string, extra ...string) error {
	ctx := cmd.Context()
	prefs, err := a.store.Load(ctx)
	if err != nil {
		return err
	}

	feeds, added := sources.AddFeeds(prefs.Feeds, input, extra...)
	if added == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No new feeds added.")
		return nil
	}
	prefs.Feeds = feeds
	if err := a.store.Save(ctx, prefs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %d feed(s), %d total.\n", added, len(feeds))
	return nil
}

func feedsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <number>",
		Short: "Remove a feed by its number in `feeds list`",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			number, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("feed number must be an integer: %w", err)
			}

			ctx := cmd.Context()
			prefs, err := a.store.Load(ctx)
			if err != nil {
				return err
			}
			if number < 1 || number > len(prefs.Feeds) {
				return fmt.Errorf("no feed number %d, the list has %d", number, len(prefs.Feeds))
			}
			removed := prefs.Feeds[number-1]
			feeds, err := sources.RemoveFeed(prefs.Feeds, number-1)
			if err != nil {
				return err
			}
			prefs.Feeds = feeds
			if err := a.store.Save(ctx, prefs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", removed)
			return nil
		}),
	}
}

func feedsClearCmd() *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all feeds",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			ctx := cmd.Context()
			prefs, err := a.store.Load(ctx)
			if err != nil {
				return err
			}
			prefs.Feeds = []string{}
			if defaults {
				prefs.Feeds = news.DefaultPreferences().Feeds
			}
			if err := a.store.Save(ctx, prefs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Feed list now has %d feed(s).\n", len(prefs.Feeds))
			return nil
		}),
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "restore the default feeds instead of an empty list")
	return cmd
}

func feedsDiscoverCmd() *cobra.Command {
	var add bool

	cmd := &cobra.Command{
		Use:   "discover <page-url>",
		Short: "Find feeds advertised by a web page",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			found, err := sources.NewDiscoverer(newTransport(a)).Discover(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			urls := make([]string, 0, len(found))
			for _, feed := range found {
				fmt.Fprintf(out, "%s\n    %s\n", feed.Title, feed.URL)
				urls = append(urls, feed.URL)
			}
			if !add {
				return nil
			}
			return addFeeds(cmd, a, "", urls...)
		}),
	}

	cmd.Flags().BoolVar(&add, "add", false, "add every discovered feed")
	return cmd
}
