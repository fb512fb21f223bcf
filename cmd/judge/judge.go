package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/gatherer/respbuilder"
	"github.com/programme-lv/speedwar/internal/gatherer/termgath"
	"github.com/programme-lv/speedwar/internal/tester"
	"github.com/urfave/cli/v3"
)

func judgeCmd() *cli.Command {
	return &cli.Command{
		Name:      "judge",
		Usage:     "judge a local submission without touching the queue",
		ArgsUsage: "<archive.zip|dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "problem", Usage: "problem id", Required: true},
			langFlag(),
			&cli.BoolFlag{Name: "json", Usage: "print the full report as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one submission path")
			}
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			problem, err := intFlag(cmd, "problem")
			if err != nil {
				return err
			}
			lang, err := contest.ParseLang(cmd.String("lang"))
			if err != nil {
				return err
			}
			archive, err := readSubmission(cmd.Args().First())
			if err != nil {
				return err
			}

			report := respbuilder.New(uuid.NewString())
			var gath tester.ResultGatherer = report
			if !cmd.Bool("json") {
				gath = tester.MultiGatherer{termgath.New(), report}
			}

			res := newTester(cfg, logger).RunTests(ctx, tester.Request{
				ProblemID: problem,
				Lang:      lang,
				Archive:   archive,
			}, gath)

			if cmd.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report.Report()); err != nil {
					return err
				}
			}
			if res.Type != contest.ResultSuccess {
				return cli.Exit("", 2)
			}
			return nil
		},
	}
}
