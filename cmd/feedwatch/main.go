package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/maine/feedwatch/internal/config"
	"github.com/maine/feedwatch/internal/logger"
	"github.com/maine/feedwatch/internal/state"
)

var (
	configPath string
	logLevel   string
)

func main() {
	envCfg := config.LoadEnvConfig()

	rootCmd := &cobra.Command{
		Use:           "feedwatch",
		Short:         "Keyword-scored RSS/Atom reader with new-article notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", envCfg.ConfigPath, "config file path (env FEEDWATCH_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envCfg.LogLevel, "debug, info, warn or error")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(feedsCmd())
	rootCmd.AddCommand(keywordsCmd())
	rootCmd.AddCommand(settingsCmd())
	rootCmd.AddCommand(sessionCmd())
	rootCmd.AddCommand(notifyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// appEnv содержит то, что нужно командам: конфиг, токены, логгер и хранилище настроек.
type appEnv struct {
	cfg    config.Root
	env    *config.EnvConfig
	logger *slog.Logger
	store  state.Store
	// prefsPath: файл настроек для отслеживания изменений; пусто для sqlite
	prefsPath string

	closers []func() error
}

func setup(ctx context.Context) (*appEnv, error) {
	cfg, err := config.LoadRoot(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	closeLog, err := logger.Init(level, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &appEnv{
		cfg:     cfg,
		env:     config.LoadEnvConfig(),
		logger:  logger.Log,
		closers: []func() error{closeLog},
	}

	switch cfg.Store.Driver {
	case config.StoreDriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			a.Close()
			return nil, fmt.Errorf("create store dir: %w", err)
		}
		s, err := state.OpenSQLite(ctx, cfg.Store.Path, a.logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.store = s
		a.closers = append(a.closers, s.Close)
	default:
		a.store = state.NewFileStore(cfg.Store.Path, a.logger)
		a.prefsPath = cfg.Store.Path
	}

	return a, nil
}

// Close освобождает ресурсы в обратном порядке.
func (a *appEnv) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

// withEnv оборачивает RunE: поднимает окружение и закрывает его после команды.
func withEnv(fn func(cmd *cobra.Command, args []string, a *appEnv) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}
