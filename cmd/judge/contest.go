package main

import (
	"context"
	"fmt"
	"os"

	pretty_table "github.com/jedib0t/go-pretty/v6/table"
	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/urfave/cli/v3"
)

func contestCmd() *cli.Command {
	return &cli.Command{
		Name:  "contest",
		Usage: "manage the active contest",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "replace the active contest with a fresh one",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "teams", Required: true},
					&cli.StringFlag{Name: "problems", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, logger, err := setup(cmd)
					if err != nil {
						return err
					}
					numTeams, err := intFlag(cmd, "teams")
					if err != nil {
						return err
					}
					numProblems, err := intFlag(cmd, "problems")
					if err != nil {
						return err
					}
					store, err := openDatabase(ctx, cfg, logger)
					if err != nil {
						return err
					}
					defer store.Close()

					c, err := store.CreateContest(ctx, numTeams, numProblems)
					if err != nil {
						return err
					}
					teams, err := store.ListTeams(ctx)
					if err != nil {
						return err
					}
					logger.Info("created contest", "id", c.ID, "teams", c.NumTeams, "problems", c.NumProblems)

					t := pretty_table.NewWriter()
					t.SetOutputMirror(os.Stdout)
					t.AppendHeader(pretty_table.Row{"ID", "Team", "Access key"})
					for _, team := range teams {
						t.AppendRow(pretty_table.Row{team.ID, team.TeamName, team.AccessKey})
					}
					t.SetStyle(pretty_table.StyleLight)
					t.Render()
					return nil
				},
			},
		},
	}
}

func submitCmd() *cli.Command {
	return &cli.Command{
		Name:      "submit",
		Usage:     "queue a submission on behalf of a team",
		ArgsUsage: "<archive.zip|dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "team", Required: true},
			&cli.StringFlag{Name: "problem", Required: true},
			langFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one submission path")
			}
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			team, err := intFlag(cmd, "team")
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
			store, err := openDatabase(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			subm, err := store.CreateSubmission(ctx, team, problem, lang, archive)
			if err != nil {
				return err
			}
			fmt.Println(subm.ID)
			return nil
		},
	}
}
