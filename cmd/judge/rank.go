package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	pretty_table "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/ranking"
	"github.com/urfave/cli/v3"
)

func rankCmd() *cli.Command {
	return &cli.Command{
		Name:  "rank",
		Usage: "print the current contest ranking",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the ranking as JSON"},
		},
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

			c, err := store.GetContest(ctx)
			if err != nil {
				return fmt.Errorf("failed to load contest: %w", err)
			}
			subms, err := store.ListSubmissions(ctx, contest.SubmissionFilter{})
			if err != nil {
				return err
			}
			teams, err := store.ListTeams(ctx)
			if err != nil {
				return err
			}

			r := ranking.Calculate(c, ranking.BuildScoreTable(c, subms))
			if cmd.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			printRanking(color.Output, c, teams, r)
			return nil
		},
	}
}

func printRanking(w io.Writer, c *contest.Contest, teams []contest.Team, r *ranking.Ranking) {
	names := make(map[int]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.TeamName
	}
	name := func(team int) string {
		if n, ok := names[team]; ok {
			return n
		}
		return "Team " + strconv.Itoa(team)
	}

	heading := color.New(color.FgHiCyan, color.Bold)
	for _, d := range []struct {
		title string
		dim   ranking.Dimension
	}{
		{"Speed", r.Speed},
		{"Energy", r.Energy},
		{"Correctness", r.Correctness},
	} {
		fmt.Fprintln(w, heading.Sprint(d.title))
		renderDimension(w, c, d.dim, name)
	}

	fmt.Fprintln(w, heading.Sprint("Combined"))
	t := pretty_table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(pretty_table.Row{"Rank", "Team", "Points"})
	for _, s := range r.Combined {
		t.AppendRow(pretty_table.Row{s.Rank, name(s.Team), s.Points})
	}
	t.SetStyle(pretty_table.StyleColoredDark)
	t.SetColumnConfigs([]pretty_table.ColumnConfig{
		{Name: "Rank", Align: text.AlignCenter},
		{Name: "Points", Align: text.AlignRight},
	})
	t.Render()
}

func renderDimension(w io.Writer, c *contest.Contest, d ranking.Dimension, name func(int) string) {
	t := pretty_table.NewWriter()
	t.SetOutputMirror(w)

	header := pretty_table.Row{"Team"}
	for _, p := range c.Problems() {
		header = append(header, "P"+strconv.Itoa(p))
	}
	header = append(header, "Sum")
	t.AppendHeader(header)

	for _, team := range c.Teams() {
		row := pretty_table.Row{name(team)}
		for _, p := range c.Problems() {
			row = append(row, d.Problems[p][team])
		}
		row = append(row, d.Sum[team])
		t.AppendRow(row)
	}
	t.SetStyle(pretty_table.StyleLight)
	t.Render()
}
