package contest

import (
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

type Contest struct {
	ID                 int64 `json:"id" db:"id"`
	NumTeams           int   `json:"num_teams" db:"num_teams"`
	NumProblems        int   `json:"num_problems" db:"num_problems"`
	NextTeamSubmission int   `json:"next_team_submission" db:"next_team_submission"`
}

// NextTeam returns the round-robin successor of the current team pointer.
func (c *Contest) NextTeam() int {
	if c.NumTeams <= 0 {
		return 1
	}
	return (c.NextTeamSubmission % c.NumTeams) + 1
}

// Teams lists team ids 1..NumTeams.
func (c *Contest) Teams() []int {
	return rangeInclusive(1, c.NumTeams)
}

// Problems lists problem ids 1..NumProblems.
func (c *Contest) Problems() []int {
	return rangeInclusive(1, c.NumProblems)
}

func rangeInclusive(from, to int) []int {
	if to < from {
		return nil
	}
	res := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		res = append(res, i)
	}
	return res
}

type Team struct {
	ID        int    `json:"id" db:"id"`
	TeamName  string `json:"team_name" db:"team_name"`
	AccessKey string `json:"-" db:"access_key"`
}

type State string

const (
	StateQueued  State = "queued"
	StateRunning State = "running"
	StateSuccess State = "success"
	StateFailure State = "failure"
)

// Terminal reports whether a submission in this state has been judged.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailure
}

type Lang string

const (
	LangRust   Lang = "rust"
	LangPython Lang = "python"
)

var languages = mapset.NewSet(LangRust, LangPython)

// ParseLang validates a language identifier against the languages the judge
// tool knows how to build.
func ParseLang(s string) (Lang, error) {
	l := Lang(s)
	if !languages.Contains(l) {
		return "", fmt.Errorf("unsupported submission language %q", s)
	}
	return l, nil
}

// Languages returns the supported languages.
func Languages() []Lang {
	return languages.ToSlice()
}

type Submission struct {
	ID          string    `json:"id" db:"id"`
	TeamID      int       `json:"team_id" db:"team_id"`
	ProblemID   int       `json:"problem_id" db:"problem_id"`
	Lang        Lang      `json:"lang" db:"lang"`
	State       State     `json:"state" db:"state"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
	ScoreMs     *int64    `json:"score_ms" db:"score_ms"`
	ScoreJ      *float64  `json:"score_j" db:"score_j"`

	TestsCompletedAt *time.Time `json:"tests_completed_at,omitempty" db:"tests_completed_at"`
}

// SubmissionResult is a submission together with its stored judging detail.
type SubmissionResult struct {
	Submission
	Result *TestResult `json:"result"`
}
