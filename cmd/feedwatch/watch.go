package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/maine/feedwatch/internal/app"
	"github.com/maine/feedwatch/internal/formatter"
	"github.com/maine/feedwatch/internal/news"
	"github.com/maine/feedwatch/internal/scheduler"
)

func watchCmd() *cobra.Command {
	var color bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run on the saved auto-refresh interval and notify about new articles",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			prefs, err := a.store.Load(ctx)
			if err != nil {
				return err
			}

			w := &watcher{
				app:      a,
				pipeline: newPipeline(ctx, a, true),
				out:      cmd.OutOrStdout(),
				format:   formatter.NewFormatter(time.Now, color),
				prefs:    prefs,
			}

			// Первый прогон показывает текущую выдачу и только запоминает статьи
			w.run(ctx, false)

			sched, err := scheduler.New(func() { w.run(ctx, true) }, a.logger)
			if err != nil {
				return err
			}
			if err := sched.Schedule(int(prefs.AutoRefresh)); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if a.prefsPath != "" {
				err := scheduler.WatchFile(ctx, a.prefsPath, a.logger, func() {
					w.reload(ctx, sched)
				})
				if err != nil {
					a.logger.Warn("preferences file is not watched", "err", err)
				}
			}

			if prefs.AutoRefresh <= 0 {
				fmt.Fprintln(w.out, "Auto-refresh is off. Enable it with: feedwatch settings set --refresh 15")
			}

			<-ctx.Done()
			a.logger.Info("shutting down")
			return nil
		}),
	}

	cmd.Flags().BoolVar(&color, "color", false, "highlight matched words")
	return cmd
}

// watcher хранит актуальные настройки между запусками по расписанию.
type watcher struct {
	app      *appEnv
	pipeline *app.Pipeline
	out      io.Writer
	format   *formatter.Formatter

	mu    sync.Mutex
	prefs news.Preferences
}

func (w *watcher) current() news.Preferences {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.prefs
}

func (w *watcher) run(ctx context.Context, scheduled bool) {
	req, _ := requestFromPrefs(w.current(), "", "")
	req.Notify = scheduled

	result, err := w.pipeline.Run(ctx, req)
	if err != nil {
		if errors.Is(err, app.ErrNoSearchCriteria) {
			fmt.Fprintln(w.out, "Please enter at least one keyword: feedwatch keywords set ...")
			return
		}
		w.app.logger.Error("run failed", "err", err)
		return
	}

	if !scheduled {
		fmt.Fprintln(w.out, formatter.Summary(len(result.Articles), result.Fetched, result.Sources))
		fmt.Fprintln(w.out)
		w.format.Render(w.out, result.Articles)
		return
	}

	fmt.Fprintf(w.out, "[%s] %s, %d new\n", time.Now().Format("15:04"),
		formatter.Summary(len(result.Articles), result.Fetched, result.Sources), len(result.Notifications))
	for i, article := range result.Notifications {
		fmt.Fprint(w.out, w.format.FormatArticle(i+1, article))
	}
}

// reload перечитывает настройки после изменения файла и переназначает интервал.
func (w *watcher) reload(ctx context.Context, sched *scheduler.Scheduler) {
	prefs, err := w.app.store.Load(ctx)
	if err != nil {
		w.app.logger.Warn("reload preferences failed", "err", err)
		return
	}

	w.mu.Lock()
	previous := w.prefs.AutoRefresh
	w.prefs = prefs
	w.mu.Unlock()

	if prefs.AutoRefresh != previous {
		if err := sched.Schedule(int(prefs.AutoRefresh)); err != nil {
			w.app.logger.Warn("reschedule failed", "err", err)
		}
	}
	w.app.logger.Info("preferences reloaded", "feeds", len(prefs.Feeds), "refresh_minutes", int(prefs.AutoRefresh))
}
