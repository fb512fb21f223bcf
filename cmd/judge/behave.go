package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/programme-lv/speedwar/internal/behave"
	"github.com/programme-lv/speedwar/internal/gatherer/termgath"
	"github.com/programme-lv/speedwar/internal/tester"
	"github.com/urfave/cli/v3"
)

func behaveCmd() *cli.Command {
	return &cli.Command{
		Name:      "behave",
		Usage:     "run judging scenarios from a TOML file against the local judge tool",
		ArgsUsage: "<behave.toml>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "print judging events of every scenario"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one scenario file")
			}
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			cases, err := behave.Parse(cmd.Args().First())
			if err != nil {
				return err
			}

			var gath func(behave.Case) tester.ResultGatherer
			if cmd.Bool("verbose") {
				gath = func(behave.Case) tester.ResultGatherer { return termgath.New() }
			}
			outcomes := behave.Run(ctx, newTester(cfg, logger), cases, gath)

			pass := color.New(color.FgGreen).Sprint("PASS")
			fail := color.New(color.FgRed).Sprint("FAIL")
			failed := 0
			for _, o := range outcomes {
				if o.Passed() {
					fmt.Fprintf(color.Output, "%s %s\n", pass, o.Case.Name)
					continue
				}
				failed++
				fmt.Fprintf(color.Output, "%s %s: %s\n", fail, o.Case.Name, o.Failure)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(outcomes))
			}
			return nil
		},
	}
}
