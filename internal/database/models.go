package database

import (
	"time"

	"github.com/programme-lv/speedwar/internal/contest"
)

type Submission struct {
	ID               string     `db:"id"`
	TeamID           int        `db:"team_id"`
	ProblemID        int        `db:"problem_id"`
	Lang             string     `db:"lang"`
	State            string     `db:"state"`
	SubmittedAt      time.Time  `db:"submitted_at"`
	ScoreMs          *int64     `db:"score_ms"`
	ScoreJ           *float64   `db:"score_j"`
	TestsCompletedAt *time.Time `db:"tests_completed_at"`
}

const submissionColumns = "id, team_id, problem_id, lang, state, submitted_at, score_ms, score_j, tests_completed_at"

func (s Submission) toDomain() contest.Submission {
	return contest.Submission{
		ID:               s.ID,
		TeamID:           s.TeamID,
		ProblemID:        s.ProblemID,
		Lang:             contest.Lang(s.Lang),
		State:            contest.State(s.State),
		SubmittedAt:      s.SubmittedAt,
		ScoreMs:          s.ScoreMs,
		ScoreJ:           s.ScoreJ,
		TestsCompletedAt: s.TestsCompletedAt,
	}
}

type SubmissionWithResult struct {
	Submission
	Result []byte `db:"result"`
}
