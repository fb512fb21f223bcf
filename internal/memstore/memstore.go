// Package memstore keeps contest state in process memory. It backs tests and
// the local `judge` command; production uses the postgres store.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/puzpuzpuz/xsync/v3"
)

type record struct {
	subm   contest.Submission
	seq    int64
	data   []byte
	result *contest.TestResult
}

type Store struct {
	mu      sync.Mutex
	contest *contest.Contest
	teams   []contest.Team

	subms *xsync.MapOf[string, *record]
	seq   atomic.Int64
	now   func() time.Time
}

func New() *Store {
	return &Store{
		subms: xsync.NewMapOf[string, *record](),
		now:   time.Now,
	}
}

// WithClock replaces the clock used for submission and completion times.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) CreateContest(ctx context.Context, numTeams, numProblems int) (*contest.Contest, error) {
	if numTeams <= 0 || numProblems <= 0 {
		return nil, fmt.Errorf("contest needs at least one team and problem, got %d teams, %d problems", numTeams, numProblems)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contest = &contest.Contest{
		ID:                 1,
		NumTeams:           numTeams,
		NumProblems:        numProblems,
		NextTeamSubmission: 1,
	}
	s.teams = make([]contest.Team, 0, numTeams)
	for _, id := range s.contest.Teams() {
		s.teams = append(s.teams, contest.Team{
			ID:        id,
			TeamName:  fmt.Sprintf("Team %d", id),
			AccessKey: uuid.NewString(),
		})
	}
	c := *s.contest
	return &c, nil
}

func (s *Store) GetContest(ctx context.Context) (*contest.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contest == nil {
		return nil, contest.ErrNotFound
	}
	c := *s.contest
	return &c, nil
}

func (s *Store) UpdateNextTeamSubmission(ctx context.Context, team int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contest == nil {
		return contest.ErrNotFound
	}
	if team < 1 || team > s.contest.NumTeams {
		return fmt.Errorf("team pointer %d outside [1, %d]", team, s.contest.NumTeams)
	}
	s.contest.NextTeamSubmission = team
	return nil
}

func (s *Store) ListTeams(ctx context.Context) ([]contest.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]contest.Team(nil), s.teams...), nil
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

	rec := &record{
		subm: contest.Submission{
			ID:          uuid.NewString(),
			TeamID:      team,
			ProblemID:   problem,
			Lang:        lang,
			State:       contest.StateQueued,
			SubmittedAt: s.now(),
		},
		seq:  s.seq.Add(1),
		data: append([]byte(nil), data...),
	}
	s.subms.Store(rec.subm.ID, rec)
	subm := rec.subm
	return &subm, nil
}

// sorted returns matching records oldest first.
func (s *Store) sorted(match func(*record) bool) []*record {
	res := make([]*record, 0)
	s.subms.Range(func(_ string, rec *record) bool {
		if match(rec) {
			res = append(res, rec)
		}
		return true
	})
	sort.Slice(res, func(i, j int) bool {
		if !res[i].subm.SubmittedAt.Equal(res[j].subm.SubmittedAt) {
			return res[i].subm.SubmittedAt.Before(res[j].subm.SubmittedAt)
		}
		return res[i].seq < res[j].seq
	})
	return res
}

func (s *Store) GetNextEligibleSubmission(ctx context.Context, team int) (*contest.Submission, error) {
	recs := s.sorted(func(r *record) bool {
		return r.subm.TeamID == team && r.subm.State == contest.StateQueued
	})
	if len(recs) == 0 {
		return nil, nil
	}
	subm := recs[0].subm
	return &subm, nil
}

func (s *Store) HasMoreEligibleSubmissions(ctx context.Context) (bool, error) {
	found := false
	s.subms.Range(func(_ string, rec *record) bool {
		if rec.subm.State == contest.StateQueued {
			found = true
			return false
		}
		return true
	})
	return found, nil
}

func (s *Store) GetSubmissionData(ctx context.Context, id string) ([]byte, error) {
	rec, ok := s.subms.Load(id)
	if !ok {
		return nil, fmt.Errorf("submission %s: %w", id, contest.ErrNotFound)
	}
	return append([]byte(nil), rec.data...), nil
}

func (s *Store) update(id string, fn func(*record) error) error {
	var fnErr error
	_, ok := s.subms.Compute(id, func(old *record, loaded bool) (*record, bool) {
		if !loaded {
			fnErr = fmt.Errorf("submission %s: %w", id, contest.ErrNotFound)
			return nil, true
		}
		next := *old
		if err := fn(&next); err != nil {
			fnErr = err
			return old, false
		}
		return &next, false
	})
	if fnErr != nil {
		return fnErr
	}
	if !ok {
		return fmt.Errorf("submission %s: %w", id, contest.ErrNotFound)
	}
	return nil
}

func (s *Store) UpdateSubmissionState(ctx context.Context, id string, state contest.State) error {
	return s.update(id, func(rec *record) error {
		if rec.subm.State.Terminal() {
			return fmt.Errorf("submission %s already judged (%s)", id, rec.subm.State)
		}
		if state == contest.StateQueued && rec.subm.State != contest.StateQueued {
			return fmt.Errorf("submission %s cannot be re-queued", id)
		}
		rec.subm.State = state
		return nil
	})
}

func (s *Store) UpdateSubmission(ctx context.Context, id string, state contest.State, scoreMs *int64, scoreJ *float64, result *contest.TestResult) error {
	completedAt := s.now()
	return s.update(id, func(rec *record) error {
		if rec.subm.State.Terminal() {
			return fmt.Errorf("submission %s already judged (%s)", id, rec.subm.State)
		}
		rec.subm.State = state
		rec.subm.ScoreMs = scoreMs
		rec.subm.ScoreJ = scoreJ
		rec.subm.TestsCompletedAt = &completedAt
		rec.result = result
		return nil
	})
}

func (s *Store) ListSubmissions(ctx context.Context, filter contest.SubmissionFilter) ([]contest.Submission, error) {
	recs := s.sorted(func(r *record) bool { return filter.Matches(&r.subm) })
	res := make([]contest.Submission, 0, len(recs))
	for _, rec := range recs {
		res = append(res, rec.subm)
	}
	return res, nil
}

func (s *Store) GetRunningSubmission(ctx context.Context) (*contest.Submission, error) {
	recs := s.sorted(func(r *record) bool { return r.subm.State == contest.StateRunning })
	if len(recs) == 0 {
		return nil, nil
	}
	subm := recs[0].subm
	return &subm, nil
}

func (s *Store) GetMostRecentlyCompleted(ctx context.Context) (*contest.Submission, error) {
	var latest *contest.Submission
	s.subms.Range(func(_ string, rec *record) bool {
		at := rec.subm.TestsCompletedAt
		if at == nil {
			return true
		}
		if latest == nil || at.After(*latest.TestsCompletedAt) {
			subm := rec.subm
			latest = &subm
		}
		return true
	})
	return latest, nil
}

func (s *Store) GetSubmissionResult(ctx context.Context, id string) (*contest.SubmissionResult, error) {
	rec, ok := s.subms.Load(id)
	if !ok {
		return nil, fmt.Errorf("submission %s: %w", id, contest.ErrNotFound)
	}
	return &contest.SubmissionResult{Submission: rec.subm, Result: rec.result}, nil
}

var (
	_ contest.Store  = (*Store)(nil)
	_ contest.Reader = (*Store)(nil)
	_ contest.Writer = (*Store)(nil)
)
