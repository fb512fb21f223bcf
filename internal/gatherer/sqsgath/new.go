package sqsgath

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/tester"
)

type sender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// NewClient loads the default AWS credential chain for region.
func NewClient(ctx context.Context, region string) (*sqs.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}

func NewSqsResponseQueueGatherer(client *sqs.Client, subm contest.Submission, queueUrl string, logger *slog.Logger) *sqsResQueueGatherer {
	return newGatherer(client, subm, queueUrl, logger)
}

// Factory returns a constructor of per-submission gatherers sharing client.
func Factory(client *sqs.Client, queueUrl string, logger *slog.Logger) func(contest.Submission) tester.ResultGatherer {
	return func(subm contest.Submission) tester.ResultGatherer {
		return NewSqsResponseQueueGatherer(client, subm, queueUrl, logger)
	}
}

func newGatherer(client sender, subm contest.Submission, queueUrl string, logger *slog.Logger) *sqsResQueueGatherer {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqsResQueueGatherer{
		sqsClient: client,
		queueUrl:  queueUrl,
		subm:      subm,
		logger:    logger,
	}
}
