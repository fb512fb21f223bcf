package contest

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Store is the persistent state the judge consumes. GetContest returns
// ErrNotFound when no contest is active; GetNextEligibleSubmission returns
// (nil, nil) when the team has nothing queued.
type Store interface {
	GetContest(ctx context.Context) (*Contest, error)
	UpdateNextTeamSubmission(ctx context.Context, team int) error

	GetNextEligibleSubmission(ctx context.Context, team int) (*Submission, error)
	HasMoreEligibleSubmissions(ctx context.Context) (bool, error)
	GetSubmissionData(ctx context.Context, id string) ([]byte, error)

	UpdateSubmissionState(ctx context.Context, id string, state State) error
	UpdateSubmission(ctx context.Context, id string, state State, scoreMs *int64, scoreJ *float64, result *TestResult) error
}

// Reader exposes the queries used for ranking and operator inspection.
type Reader interface {
	GetContest(ctx context.Context) (*Contest, error)
	ListTeams(ctx context.Context) ([]Team, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]Submission, error)
	GetRunningSubmission(ctx context.Context) (*Submission, error)
	GetMostRecentlyCompleted(ctx context.Context) (*Submission, error)
	GetSubmissionResult(ctx context.Context, id string) (*SubmissionResult, error)
}

// Writer creates contests and submissions; in production this is the upload path.
type Writer interface {
	CreateContest(ctx context.Context, numTeams, numProblems int) (*Contest, error)
	CreateSubmission(ctx context.Context, team, problem int, lang Lang, data []byte) (*Submission, error)
}

type SubmissionFilter struct {
	TeamID    *int
	ProblemID *int
}

func (f SubmissionFilter) Matches(s *Submission) bool {
	if f.TeamID != nil && s.TeamID != *f.TeamID {
		return false
	}
	if f.ProblemID != nil && s.ProblemID != *f.ProblemID {
		return false
	}
	return true
}
