package behave

import (
	"context"
	"fmt"
	"strings"

	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/tester"
)

type Executor interface {
	RunTests(ctx context.Context, req tester.Request, gath tester.ResultGatherer) contest.TestResult
}

type Outcome struct {
	Case   Case
	Result contest.TestResult
	// Failure is empty when the result met the expectation.
	Failure string
}

func (o Outcome) Passed() bool {
	return o.Failure == ""
}

// Run judges every case in order. gath may be nil.
func Run(ctx context.Context, exec Executor, cases []Case, gath func(Case) tester.ResultGatherer) []Outcome {
	outcomes := make([]Outcome, 0, len(cases))
	for _, c := range cases {
		var g tester.ResultGatherer = tester.NopGatherer{}
		if gath != nil {
			g = gath(c)
		}
		res := exec.RunTests(ctx, c.Request, g)
		outcome := Outcome{Case: c, Result: res}
		if err := Check(c.Expect, res); err != nil {
			outcome.Failure = err.Error()
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func Check(expect SpecExpect, res contest.TestResult) error {
	if string(res.Type) != expect.Result {
		return fmt.Errorf("expected %s, got %s %s", expect.Result, res.Type, res.Message())
	}
	if expect.ErrorContains != "" && !strings.Contains(res.Message(), expect.ErrorContains) {
		return fmt.Errorf("expected error containing %q, got %q", expect.ErrorContains, res.Message())
	}
	if res.Type != contest.ResultSuccess {
		return nil
	}
	if expect.MaxScoreMs > 0 && res.ScoreMs != nil && *res.ScoreMs > expect.MaxScoreMs {
		return fmt.Errorf("took %dms, limit is %dms", *res.ScoreMs, expect.MaxScoreMs)
	}
	if expect.RequireEnergy && res.ScoreJ == nil {
		return fmt.Errorf("no energy reading")
	}
	return nil
}
