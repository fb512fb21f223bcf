package natsgath

import (
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/tester"
)

type publisher interface {
	Publish(subject string, data []byte) error
}

// New creates a NATS gatherer that publishes the judging events of subm
// to the given subject.
func New(nc *nats.Conn, subm contest.Submission, subject string, logger *slog.Logger) *natsGatherer {
	return newGatherer(nc, subm, subject, logger)
}

// Factory returns a constructor of per-submission gatherers sharing nc.
func Factory(nc *nats.Conn, subject string, logger *slog.Logger) func(contest.Submission) tester.ResultGatherer {
	return func(subm contest.Submission) tester.ResultGatherer {
		return New(nc, subm, subject, logger)
	}
}

func newGatherer(pub publisher, subm contest.Submission, subject string, logger *slog.Logger) *natsGatherer {
	if logger == nil {
		logger = slog.Default()
	}
	return &natsGatherer{
		pub:     pub,
		subject: subject,
		subm:    subm,
		logger:  logger,
	}
}
