package sqsgath

import (
	"log/slog"

	"github.com/programme-lv/speedwar/api"
	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/judgetool"
	"github.com/programme-lv/speedwar/internal/tester"
)

type sqsResQueueGatherer struct {
	sqsClient sender
	queueUrl  string
	subm      contest.Submission
	logger    *slog.Logger
}

func (s *sqsResQueueGatherer) StartJob(problemID int, lang contest.Lang) {
	s.send(api.NewStartJob(s.subm))
}

func (s *sqsResQueueGatherer) StartPhase(phase tester.Phase) {
	s.send(api.NewStartPhase(s.subm.ID, string(phase)))
}

func (s *sqsResQueueGatherer) FinishPhase(phase tester.Phase, out judgetool.Output) {
	s.send(api.NewFinishPhase(s.subm.ID, string(phase), out))
}

func (s *sqsResQueueGatherer) FinishJob(res contest.TestResult) {
	s.send(api.NewFinishJob(s.subm.ID, res))
}

var _ tester.ResultGatherer = (*sqsResQueueGatherer)(nil)
