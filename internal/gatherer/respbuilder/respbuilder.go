package respbuilder

import (
	"time"

	"github.com/programme-lv/speedwar/api"
	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/judgetool"
	"github.com/programme-lv/speedwar/internal/tester"
)

// Builder gathers judging events and builds a complete api.JudgeReport.
type Builder struct {
	submUuid string

	started  time.Time
	finished *time.Time

	problemID int
	lang      contest.Lang

	phases []api.FinishPhase
	result *contest.TestResult
}

func New(submUuid string) *Builder {
	return &Builder{
		submUuid: submUuid,
		started:  time.Now(),
	}
}

// StartJob implements tester.ResultGatherer.
func (b *Builder) StartJob(problemID int, lang contest.Lang) {
	b.problemID = problemID
	b.lang = lang
}

// StartPhase implements tester.ResultGatherer.
func (b *Builder) StartPhase(phase tester.Phase) {}

// FinishPhase implements tester.ResultGatherer.
func (b *Builder) FinishPhase(phase tester.Phase, out judgetool.Output) {
	b.phases = append(b.phases, api.NewFinishPhase(b.submUuid, string(phase), out))
}

// FinishJob implements tester.ResultGatherer.
func (b *Builder) FinishJob(res contest.TestResult) {
	now := time.Now()
	b.finished = &now
	b.result = &res
}

// Report builds the api.JudgeReport from gathered data.
func (b *Builder) Report() api.JudgeReport {
	start := b.started.Format(time.RFC3339)
	finish := start
	total := int64(0)
	if b.finished != nil {
		finish = b.finished.Format(time.RFC3339)
		total = b.finished.Sub(b.started).Milliseconds()
	}
	report := api.JudgeReport{
		SubmUuid:    b.submUuid,
		ProblemID:   b.problemID,
		Lang:        string(b.lang),
		Phases:      append([]api.FinishPhase{}, b.phases...),
		StartTime:   start,
		FinishTime:  finish,
		TotalTimeMs: total,
	}
	if b.result != nil {
		job := api.NewFinishJob(b.submUuid, *b.result)
		report.Result = job.Result
		report.ErrorMessage = job.ErrorMessage
		report.ScoreMs = job.ScoreMs
		report.ScoreJ = job.ScoreJ
	}
	return report
}

var _ tester.ResultGatherer = (*Builder)(nil)
