package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/maine/feedwatch/internal/app"
	"github.com/maine/feedwatch/internal/formatter"
	"github.com/maine/feedwatch/internal/news"
)

func runCmd() *cobra.Command {
	var (
		sortFlag   string
		windowFlag string
		keywords   string
		asJSON     bool
		color      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch all feeds once and print matching articles",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			ctx := cmd.Context()
			prefs, err := a.store.Load(ctx)
			if err != nil {
				return err
			}

			req, err := requestFromPrefs(prefs, sortFlag, windowFlag)
			if err != nil {
				return err
			}
			if keywords != "" {
				req.Keywords = keywords
			}

			result, err := newPipeline(ctx, a, false).Run(ctx, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprintln(out, formatter.Summary(len(result.Articles), result.Fetched, result.Sources))
			fmt.Fprintln(out)
			return formatter.NewFormatter(time.Now, color).Render(out, result.Articles)
		}),
	}

	cmd.Flags().StringVar(&sortFlag, "sort", "", "date-desc, date-asc or relevance (default: saved setting)")
	cmd.Flags().StringVar(&windowFlag, "window", "", "days to look back or \"all\" (default: saved setting)")
	cmd.Flags().StringVar(&keywords, "keywords", "", "keyword text to use instead of the saved one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&color, "color", false, "highlight matched words")
	return cmd
}

// requestFromPrefs строит запрос прогона; непустые флаги переопределяют сохранённые значения.
func requestFromPrefs(prefs news.Preferences, sortFlag, windowFlag string) (app.Request, error) {
	req := app.Request{
		Keywords:   prefs.Keywords,
		Sources:    prefs.Feeds,
		DateWindow: prefs.DateFilter,
		Sort:       prefs.Sort,
	}
	if req.Sort == "" {
		req.Sort = news.SortDateDesc
	}

	if sortFlag != "" {
		order, err := news.ParseSortOrder(sortFlag)
		if err != nil {
			return app.Request{}, err
		}
		req.Sort = order
	}
	if windowFlag != "" {
		window, err := news.ParseDateWindow(windowFlag)
		if err != nil {
			return app.Request{}, err
		}
		req.DateWindow = window
	}
	return req, nil
}
