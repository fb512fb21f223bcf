package natsgath

import (
	"log/slog"

	"github.com/programme-lv/speedwar/api"
	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/judgetool"
	"github.com/programme-lv/speedwar/internal/tester"
)

type natsGatherer struct {
	pub     publisher
	subject string
	subm    contest.Submission
	logger  *slog.Logger
}

// StartJob implements tester.ResultGatherer.
func (s *natsGatherer) StartJob(problemID int, lang contest.Lang) {
	s.send(api.NewStartJob(s.subm))
}

// StartPhase implements tester.ResultGatherer.
func (s *natsGatherer) StartPhase(phase tester.Phase) {
	s.send(api.NewStartPhase(s.subm.ID, string(phase)))
}

// FinishPhase implements tester.ResultGatherer.
func (s *natsGatherer) FinishPhase(phase tester.Phase, out judgetool.Output) {
	s.send(api.NewFinishPhase(s.subm.ID, string(phase), out))
}

// FinishJob implements tester.ResultGatherer.
func (s *natsGatherer) FinishJob(res contest.TestResult) {
	s.send(api.NewFinishJob(s.subm.ID, res))
}

var _ tester.ResultGatherer = (*natsGatherer)(nil)
