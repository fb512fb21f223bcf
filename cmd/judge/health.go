package main

import (
	"context"
	"fmt"
	"os"

	"github.com/programme-lv/speedwar/internal/health"
	"github.com/urfave/cli/v3"
)

func healthCmd() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "check the judge tool, problem fixtures and database",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			checker := health.Checker{
				BasePath:         cfg.BasePath,
				EnergyMonitorURL: cfg.EnergyMonitorURL,
			}
			if cfg.DatabaseDSN != "" {
				store, err := openDatabase(ctx, cfg, logger)
				if err != nil {
					checker.DB = failedDB{err}
				} else {
					defer store.Close()
					checker.DB = store
				}
			}

			rows := checker.Run(ctx)
			health.Render(os.Stdout, rows)
			if !health.Healthy(rows) {
				return fmt.Errorf("judge host is not healthy")
			}
			return nil
		},
	}
}

type failedDB struct{ err error }

func (f failedDB) Ping(context.Context) error { return f.err }
