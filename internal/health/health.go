// Package health inspects a judge host before it starts taking submissions.
package health

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	pretty_table "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/programme-lv/speedwar/internal/judgetool"
	"github.com/programme-lv/speedwar/internal/tester"
)

type Status int

const (
	Okay Status = iota
	Warn
	Error
)

func (s Status) String() string {
	switch s {
	case Okay:
		return "OKAY"
	case Warn:
		return "WARN"
	default:
		return "ERROR"
	}
}

type Row struct {
	Unit    string
	Health  Status
	Message string
}

// Pinger is satisfied by the database store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Checker struct {
	BasePath         string
	Binary           string
	EnergyMonitorURL string
	// DB is optional; nil reports it as not configured.
	DB Pinger
}

func (c Checker) Run(ctx context.Context) []Row {
	rows := []Row{c.checkTool()}
	rows = append(rows, c.checkProblems()...)
	rows = append(rows, c.checkEnergyMonitor(), c.checkDatabase(ctx))
	return rows
}

// Healthy reports whether no row is an error.
func Healthy(rows []Row) bool {
	return !slices.ContainsFunc(rows, func(r Row) bool { return r.Health == Error })
}

func (c Checker) checkTool() Row {
	binary := c.Binary
	if binary == "" {
		binary = judgetool.DefaultBinary
	}
	path := filepath.Join(c.BasePath, "cli", binary)
	info, err := os.Stat(path)
	if err != nil {
		return Row{Unit: "Judge tool", Health: Error, Message: err.Error()}
	}
	if info.IsDir() || info.Mode().Perm()&0111 == 0 {
		return Row{Unit: "Judge tool", Health: Error, Message: path + " is not executable"}
	}
	return Row{Unit: "Judge tool", Health: Okay, Message: path}
}

func (c Checker) checkProblems() []Row {
	dir := filepath.Join(c.BasePath, "problems")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []Row{{Unit: "Problems", Health: Error, Message: err.Error()}}
	}

	var rows []Row
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := strconv.Atoi(e.Name()); err != nil {
			rows = append(rows, Row{Unit: "Problem " + e.Name(), Health: Warn, Message: "directory name is not a problem id"})
			continue
		}
		rows = append(rows, checkFixtures(filepath.Join(dir, e.Name()), "Problem "+e.Name()))
	}
	if len(rows) == 0 {
		return []Row{{Unit: "Problems", Health: Error, Message: "no problems under " + dir}}
	}
	return rows
}

func checkFixtures(dir string, unit string) Row {
	var counts []any
	for _, phase := range []tester.Phase{tester.PhasePrelim, tester.PhaseSecret} {
		entries, err := os.ReadDir(filepath.Join(dir, phase.FixtureDir()))
		if err != nil {
			return Row{Unit: unit, Health: Error, Message: err.Error()}
		}
		counts = append(counts, len(entries))
	}
	return Row{Unit: unit, Health: Okay, Message: fmt.Sprintf("%d prelim, %d secret fixtures", counts...)}
}

func (c Checker) checkEnergyMonitor() Row {
	if c.EnergyMonitorURL == "" {
		return Row{Unit: "Energy monitor", Health: Warn, Message: "not configured, energy scores will be missing"}
	}
	return Row{Unit: "Energy monitor", Health: Okay, Message: c.EnergyMonitorURL}
}

func (c Checker) checkDatabase(ctx context.Context) Row {
	if c.DB == nil {
		return Row{Unit: "Database", Health: Warn, Message: "not configured"}
	}
	if err := c.DB.Ping(ctx); err != nil {
		return Row{Unit: "Database", Health: Error, Message: err.Error()}
	}
	return Row{Unit: "Database", Health: Okay, Message: "reachable"}
}

func Render(w io.Writer, rows []Row) {
	t := pretty_table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(pretty_table.Row{"Unit", "Health", "Message"})
	for _, row := range rows {
		t.AppendRow(pretty_table.Row{row.Unit, row.Health.String(), row.Message})
	}
	t.SetStyle(pretty_table.StyleColoredDark)
	healthColor := text.Transformer(func(s interface{}) string {
		switch s.(string) {
		case "OKAY":
			return text.FgHiGreen.Sprint(s)
		case "WARN":
			return text.FgHiYellow.Sprint(s)
		case "ERROR":
			return text.FgHiRed.Sprint(s)
		}
		return ""
	})
	t.SetColumnConfigs([]pretty_table.ColumnConfig{
		{
			Name:        "Health",
			Transformer: healthColor,
			Align:       text.AlignCenter,
		},
	})
	t.Render()
}
