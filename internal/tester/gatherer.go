package tester

import (
	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/judgetool"
)

// ResultGatherer observes the progress of a single judging job.
// FinishJob is always called, exactly once, after StartJob.
type ResultGatherer interface {
	StartJob(problemID int, lang contest.Lang)

	StartPhase(phase Phase)
	// FinishPhase receives nil output when the tool could not be run.
	FinishPhase(phase Phase, out judgetool.Output)

	FinishJob(res contest.TestResult)
}

type NopGatherer struct{}

func (NopGatherer) StartJob(int, contest.Lang) {}
func (NopGatherer) StartPhase(Phase) {}
func (NopGatherer) FinishPhase(Phase, judgetool.Output) {}
func (NopGatherer) FinishJob(contest.TestResult) {}

// MultiGatherer fans every event out to all of its members in order.
type MultiGatherer []ResultGatherer

func (m MultiGatherer) StartJob(problemID int, lang contest.Lang) {
	for _, g := range m {
		g.StartJob(problemID, lang)
	}
}

func (m MultiGatherer) StartPhase(phase Phase) {
	for _, g := range m {
		g.StartPhase(phase)
	}
}

func (m MultiGatherer) FinishPhase(phase Phase, out judgetool.Output) {
	for _, g := range m {
		g.FinishPhase(phase, out)
	}
}

func (m MultiGatherer) FinishJob(res contest.TestResult) {
	for _, g := range m {
		g.FinishJob(res)
	}
}
