package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/programme-lv/speedwar/internal/behave"
	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/database"
	"github.com/programme-lv/speedwar/internal/environment"
	"github.com/programme-lv/speedwar/internal/judgetool"
	"github.com/programme-lv/speedwar/internal/tester"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "judge",
		Usage: "speed war contest judge",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "TOML config file (default: searched in XDG config dirs)",
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			judgeCmd(),
			rankCmd(),
			behaveCmd(),
			healthCmd(),
			contestCmd(),
			submitCmd(),
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup reads the configuration and installs the logger as slog's default.
func setup(cmd *cli.Command) (*environment.Config, *slog.Logger, error) {
	cfg, err := environment.ReadConfig(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}
	logger := environment.NewLogger(os.Stderr, cfg.Level())
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func openDatabase(ctx context.Context, cfg *environment.Config, logger *slog.Logger) (*database.Store, error) {
	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("no database configured, set DATABASE_URL or database_dsn")
	}
	logger.Info("connecting to postgres")
	store, err := database.Connect(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	logger.Info("connected to postgres")
	return store, nil
}

func newTester(cfg *environment.Config, logger *slog.Logger) *tester.Tester {
	client := judgetool.NewClient(cfg.BasePath,
		judgetool.WithEnergyMonitor(cfg.EnergyMonitorURL),
		judgetool.WithLogger(logger),
	)
	return tester.NewTester(tester.Config{
		BasePath: cfg.BasePath,
		WorkRoot: cfg.WorkRoot,
		Limits:   cfg.UnpackLimits(),
	}, client, logger)
}

// readSubmission loads a zip archive, or zips a directory on the fly.
func readSubmission(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return behave.ZipDir(path)
	}
	return os.ReadFile(path)
}

func intFlag(cmd *cli.Command, name string) (int, error) {
	v, err := strconv.Atoi(cmd.String(name))
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	return v, nil
}

func langFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "lang",
		Usage:    fmt.Sprintf("submission language %v", contest.Languages()),
		Required: true,
	}
}
