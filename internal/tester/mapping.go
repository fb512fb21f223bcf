package tester

import (
	"fmt"

	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/judgetool"
)

type Phase string

const (
	PhasePrelim Phase = "prelim"
	PhaseSecret Phase = "secret"
)

// FixtureDir is the directory under problems/<id> holding the phase's tests.
func (p Phase) FixtureDir() string {
	if p == PhaseSecret {
		return "secret_tests"
	}
	return "tests"
}

func (p Phase) incorrect() contest.ResultType {
	if p == PhaseSecret {
		return contest.ResultSpeedTestsIncorrect
	}
	return contest.ResultPrelimTestsIncorrect
}

func (p Phase) crashed() contest.ResultType {
	if p == PhaseSecret {
		return contest.ResultSpeedTestsError
	}
	return contest.ResultPrelimTestsError
}

// mapFailure converts tool output that is not an accepted test run.
func mapFailure(out judgetool.Output, phase Phase) contest.TestResult {
	switch o := out.(type) {
	case *judgetool.TestResultsOutput:
		if o.Verdict == judgetool.Rejected {
			if te, ok := o.FirstTestError(); ok {
				return contest.Failure(phase.crashed(), te.Message)
			}
			return contest.Failure(phase.incorrect(), "")
		}
	case *judgetool.ErrorOutput:
		switch o.Kind {
		case judgetool.BuildError:
			return contest.Failure(contest.ResultBuildError, o.Message)
		case judgetool.BuildTimeout:
			return contest.Failure(contest.ResultBuildError, "Build timed out")
		case judgetool.InternalError:
			return contest.InternalError(o.Message)
		}
	}
	return contest.InternalError(fmt.Sprintf("Unrecognized CLI response: %v", out))
}

// aggregateScores sums the stats of an accepted run. Energy is only
// reported when every test has a reading.
func aggregateScores(res *judgetool.TestResultsOutput) (int64, *float64, error) {
	var ms int64
	var joules float64
	haveEnergy := true
	for _, t := range res.Tests {
		c, ok := t.Result.(*judgetool.Correct)
		if !ok {
			return 0, nil, fmt.Errorf("test %d is not correct in an accepted run", t.Number)
		}
		ms += c.TimeElapsedMs
		if c.EnergyJ == nil {
			haveEnergy = false
			continue
		}
		joules += *c.EnergyJ
	}
	if !haveEnergy {
		return ms, nil, nil
	}
	return ms, &joules, nil
}
