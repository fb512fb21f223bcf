// Package database is the Postgres implementation of the contest store.
package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/programme-lv/speedwar/internal/contest"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sqlx.DB
}

func Connect(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &Store{db: db}, nil
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates missing tables. It is safe to run on every start.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, contest.ErrNotFound)
	}
	return err
}

func (s *Store) GetContest(ctx context.Context) (*contest.Contest, error) {
	var c contest.Contest
	err := s.db.GetContext(ctx, &c,
		"SELECT id, num_teams, num_problems, next_team_submission FROM contests ORDER BY id LIMIT 1")
	if err != nil {
		return nil, notFound(err, "contest")
	}
	return &c, nil
}

func (s *Store) UpdateNextTeamSubmission(ctx context.Context, team int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE contests SET next_team_submission = $1 WHERE id = (SELECT id FROM contests ORDER BY id LIMIT 1) AND $1 BETWEEN 1 AND num_teams",
		team)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("team pointer %d not applied: %w", team, contest.ErrNotFound)
	}
	return nil
}

// CreateContest replaces any existing contest, its teams and their submissions.
func (s *Store) CreateContest(ctx context.Context, numTeams, numProblems int) (*contest.Contest, error) {
	if numTeams <= 0 || numProblems <= 0 {
		return nil, fmt.Errorf("contest needs at least one team and problem, got %d teams, %d problems", numTeams, numProblems)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM submissions", "DELETE FROM teams", "DELETE FROM contests"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, err
		}
	}

	var c contest.Contest
	err = tx.GetContext(ctx, &c,
		"INSERT INTO contests (num_teams, num_problems, next_team_submission) VALUES ($1, $2, 1) RETURNING id, num_teams, num_problems, next_team_submission",
		numTeams, numProblems)
	if err != nil {
		return nil, fmt.Errorf("failed to insert contest: %w", err)
	}
	for _, id := range c.Teams() {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO teams (id, team_name, access_key) VALUES ($1, $2, $3)",
			id, fmt.Sprintf("Team %d", id), uuid.NewString())
		if err != nil {
			return nil, fmt.Errorf("failed to insert team %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListTeams(ctx context.Context) ([]contest.Team, error) {
	teams := []contest.Team{}
	err := s.db.SelectContext(ctx, &teams, "SELECT id, team_name, access_key FROM teams ORDER BY id")
	return teams, err
}

func (s *Store) CreateSubmission(ctx context.Context, team, problem int, lang contest.Lang, data []byte) (*contest.Submission, error) {
	c, err := s.GetContest(ctx)
	if err != nil {
		return nil, err
	}
	if team < 1 || team > c.NumTeams {
		return nil, fmt.Errorf("team %d does not exist", team)
	}
	if problem < 1 || problem > c.NumProblems {
		return nil, fmt.Errorf("problem %d does not exist", problem)
	}
	if _, err := contest.ParseLang(string(lang)); err != nil {
		return nil, err
	}

	var row Submission
	err = s.db.GetContext(ctx, &row,
		"INSERT INTO submissions (id, team_id, problem_id, lang, submission_data) VALUES ($1, $2, $3, $4, $5) RETURNING "+submissionColumns,
		uuid.NewString(), team, problem, string(lang), data)
	if err != nil {
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}
	subm := row.toDomain()
	return &subm, nil
}

func (s *Store) GetNextEligibleSubmission(ctx context.Context, team int) (*contest.Submission, error) {
	var row Submission
	err := s.db.GetContext(ctx, &row,
		"SELECT "+submissionColumns+" FROM submissions WHERE team_id = $1 AND state = 'queued' ORDER BY submitted_at, seq LIMIT 1",
		team)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	subm := row.toDomain()
	return &subm, nil
}

func (s *Store) HasMoreEligibleSubmissions(ctx context.Context) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM submissions WHERE state = 'queued')")
	return exists, err
}

func (s *Store) GetSubmissionData(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data, "SELECT submission_data FROM submissions WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "submission "+id)
	}
	return data, nil
}

// updatableFrom lists the states a submission may be in for a move to state.
func updatableFrom(state contest.State) []string {
	if state == contest.StateQueued {
		return []string{string(contest.StateQueued)}
	}
	return []string{string(contest.StateQueued), string(contest.StateRunning)}
}

func (s *Store) UpdateSubmissionState(ctx context.Context, id string, state contest.State) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE submissions SET state = $1 WHERE id = $2 AND state = ANY($3)",
		string(state), id, pq.Array(updatableFrom(state)))
	if err != nil {
		return err
	}
	return s.checkUpdated(ctx, res, id)
}

func (s *Store) UpdateSubmission(ctx context.Context, id string, state contest.State, scoreMs *int64, scoreJ *float64, result *contest.TestResult) error {
	blob, err := encodeResult(result)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions
		 SET state = $1, score_ms = $2, score_j = $3, result = $4, tests_completed_at = now()
		 WHERE id = $5 AND state = ANY($6)`,
		string(state), scoreMs, scoreJ, blob, id, pq.Array(updatableFrom(state)))
	if err != nil {
		return err
	}
	return s.checkUpdated(ctx, res, id)
}

// checkUpdated tells a missing submission apart from a rejected transition.
func (s *Store) checkUpdated(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var state string
	err = s.db.GetContext(ctx, &state, "SELECT state FROM submissions WHERE id = $1", id)
	if err != nil {
		return notFound(err, "submission "+id)
	}
	return fmt.Errorf("submission %s cannot leave state %s", id, state)
}

func (s *Store) ListSubmissions(ctx context.Context, filter contest.SubmissionFilter) ([]contest.Submission, error) {
	var rows []Submission
	err := s.db.SelectContext(ctx, &rows,
		"SELECT "+submissionColumns+" FROM submissions WHERE ($1::int IS NULL OR team_id = $1) AND ($2::int IS NULL OR problem_id = $2) ORDER BY submitted_at, seq",
		filter.TeamID, filter.ProblemID)
	if err != nil {
		return nil, err
	}
	res := make([]contest.Submission, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toDomain())
	}
	return res, nil
}

func (s *Store) GetRunningSubmission(ctx context.Context) (*contest.Submission, error) {
	return s.optionalSubmission(ctx,
		"SELECT "+submissionColumns+" FROM submissions WHERE state = 'running' ORDER BY submitted_at, seq LIMIT 1")
}

func (s *Store) GetMostRecentlyCompleted(ctx context.Context) (*contest.Submission, error) {
	return s.optionalSubmission(ctx,
		"SELECT "+submissionColumns+" FROM submissions WHERE tests_completed_at IS NOT NULL ORDER BY tests_completed_at DESC LIMIT 1")
}

func (s *Store) optionalSubmission(ctx context.Context, query string) (*contest.Submission, error) {
	var row Submission
	err := s.db.GetContext(ctx, &row, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	subm := row.toDomain()
	return &subm, nil
}

func (s *Store) GetSubmissionResult(ctx context.Context, id string) (*contest.SubmissionResult, error) {
	var row SubmissionWithResult
	err := s.db.GetContext(ctx, &row,
		"SELECT "+submissionColumns+", result FROM submissions WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "submission "+id)
	}
	result, err := decodeResult(row.Result)
	if err != nil {
		return nil, err
	}
	return &contest.SubmissionResult{Submission: row.toDomain(), Result: result}, nil
}

var (
	_ contest.Store  = (*Store)(nil)
	_ contest.Reader = (*Store)(nil)
	_ contest.Writer = (*Store)(nil)
)
