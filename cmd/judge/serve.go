package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/environment"
	"github.com/programme-lv/speedwar/internal/gatherer/natsgath"
	"github.com/programme-lv/speedwar/internal/gatherer/sqsgath"
	"github.com/programme-lv/speedwar/internal/scheduler"
	"github.com/programme-lv/speedwar/internal/tester"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const statusPeriod = time.Minute

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "judge queued submissions round-robin until interrupted",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			store, err := openDatabase(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			gatherers, closeGatherers, err := eventGatherers(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeGatherers()

			sched := scheduler.New(store, newTester(cfg, logger),
				scheduler.WithPollPeriod(cfg.Poll()),
				scheduler.WithLogger(logger),
				scheduler.WithGatherers(gatherers),
			)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return sched.Run(ctx)
			})
			g.Go(func() error {
				reportStatus(ctx, store, logger)
				return nil
			})
			return g.Wait()
		},
	}
}

// eventGatherers fans judging events out to every configured sink.
func eventGatherers(ctx context.Context, cfg *environment.Config, logger *slog.Logger) (scheduler.GathererFactory, func(), error) {
	var factories []scheduler.GathererFactory
	var closers []func()

	if cfg.NatsURL != "" {
		nc, err := nats.Connect(cfg.NatsURL, nats.Name("speedwar-judge"))
		if err != nil {
			return nil, nil, err
		}
		logger.Info("publishing judging events to nats", "subject", cfg.NatsSubject)
		factories = append(factories, natsgath.Factory(nc, cfg.NatsSubject, logger))
		closers = append(closers, func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("failed to drain nats connection", "error", err)
			}
		})
	}

	if cfg.SqsQueueURL != "" {
		client, err := sqsgath.NewClient(ctx, cfg.SqsRegion)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("sending judging events to sqs", "queue", cfg.SqsQueueURL)
		factories = append(factories, sqsgath.Factory(client, cfg.SqsQueueURL, logger))
	}

	factory := func(subm contest.Submission) tester.ResultGatherer {
		gath := make(tester.MultiGatherer, 0, len(factories))
		for _, f := range factories {
			gath = append(gath, f(subm))
		}
		return gath
	}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	return factory, closeAll, nil
}

// reportStatus periodically logs what the judge is busy with.
func reportStatus(ctx context.Context, reader contest.Reader, logger *slog.Logger) {
	ticker := time.NewTicker(statusPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		running, err := reader.GetRunningSubmission(ctx)
		if err != nil {
			logger.Warn("failed to query running submission", "error", err)
			continue
		}
		last, err := reader.GetMostRecentlyCompleted(ctx)
		if err != nil {
			logger.Warn("failed to query completed submission", "error", err)
			continue
		}

		attrs := []any{}
		if running != nil {
			attrs = append(attrs, "running", running.ID, "team", running.TeamID)
		}
		if last != nil {
			attrs = append(attrs, "last_completed", last.ID, "last_state", last.State)
		}
		logger.Info("judge status", attrs...)
	}
}
