// Package scheduler drives judging: it picks queued submissions team by team
// in round-robin order and judges them one at a time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/tester"
)

const DefaultPollPeriod = 2 * time.Second

// Executor judges a single submission. It must not return until the
// submission is fully judged.
type Executor interface {
	RunTests(ctx context.Context, req tester.Request, gath tester.ResultGatherer) contest.TestResult
}

// GathererFactory creates the event gatherer for one submission.
type GathererFactory func(subm contest.Submission) tester.ResultGatherer

type Scheduler struct {
	store      contest.Store
	exec       Executor
	gatherers  GathererFactory
	pollPeriod time.Duration
	logger     *slog.Logger
}

type Option func(*Scheduler)

func WithPollPeriod(d time.Duration) Option {
	return func(s *Scheduler) { s.pollPeriod = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

func WithGatherers(f GathererFactory) Option {
	return func(s *Scheduler) { s.gatherers = f }
}

func New(store contest.Store, exec Executor, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:      store,
		exec:       exec,
		pollPeriod: DefaultPollPeriod,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pollPeriod <= 0 {
		s.pollPeriod = DefaultPollPeriod
	}
	return s
}

// Run judges submissions until ctx is cancelled. Queued work is drained
// without pausing; the poll period is only waited out when idle or after a
// store error.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "poll_period", s.pollPeriod)
	for {
		more, err := s.Tick(ctx)
		if ctx.Err() != nil {
			s.logger.Info("scheduler stopped")
			return nil
		}
		if err != nil {
			s.logger.Error("scheduler iteration failed", "error", err)
		}
		if more && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-time.After(s.pollPeriod):
		}
	}
}

// Tick gives the team under the round-robin pointer its turn and advances
// the pointer. It reports whether any queued submission remains.
func (s *Scheduler) Tick(ctx context.Context) (more bool, err error) {
	c, err := s.store.GetContest(ctx)
	if errors.Is(err, contest.ErrNotFound) {
		s.logger.Debug("no active contest, skipping")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get contest: %w", err)
	}

	team := c.NextTeamSubmission
	subm, err := s.store.GetNextEligibleSubmission(ctx, team)
	if err != nil {
		return false, fmt.Errorf("failed to get next submission of team %d: %w", team, err)
	}
	if subm != nil {
		s.judge(ctx, *subm)
	} else {
		s.logger.Debug("skipping team", "team", team)
	}

	if err := s.advance(ctx); err != nil {
		return false, err
	}

	more, err = s.store.HasMoreEligibleSubmissions(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check for queued submissions: %w", err)
	}
	return more, nil
}

// advance re-reads the contest so the pointer is computed from stored state.
func (s *Scheduler) advance(ctx context.Context) error {
	c, err := s.store.GetContest(ctx)
	if errors.Is(err, contest.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get contest: %w", err)
	}
	if err := s.store.UpdateNextTeamSubmission(ctx, c.NextTeam()); err != nil {
		return fmt.Errorf("failed to advance team pointer: %w", err)
	}
	return nil
}

func (s *Scheduler) judge(ctx context.Context, subm contest.Submission) {
	log := s.logger.With("submission", subm.ID, "team", subm.TeamID, "problem", subm.ProblemID)

	if err := s.store.UpdateSubmissionState(ctx, subm.ID, contest.StateRunning); err != nil {
		log.Error("failed to mark submission as running", "error", err)
		return
	}
	log.Info("running tests", "lang", subm.Lang)

	start := time.Now()
	res := s.execute(ctx, subm)
	log.Info("finished tests", "result", res.Type, "took", time.Since(start))

	// the result must be stored even if shutdown started mid-judging
	if err := s.persist(context.WithoutCancel(ctx), subm.ID, res); err != nil {
		log.Error("failed to store result", "error", err)
	}
}

func (s *Scheduler) execute(ctx context.Context, subm contest.Submission) (res contest.TestResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("unexpected executor panic",
				"submission", subm.ID, "panic", r, "stack", string(debug.Stack()))
			res = contest.InternalError(fmt.Sprint(r))
		}
	}()

	data, err := s.store.GetSubmissionData(ctx, subm.ID)
	if err != nil {
		return contest.InternalError(fmt.Sprintf("failed to load submission archive: %v", err))
	}

	var gath tester.ResultGatherer = tester.NopGatherer{}
	if s.gatherers != nil {
		gath = s.gatherers(subm)
	}
	return s.exec.RunTests(ctx, tester.Request{
		ProblemID: subm.ProblemID,
		Lang:      subm.Lang,
		Archive:   data,
	}, gath)
}

func (s *Scheduler) persist(ctx context.Context, id string, res contest.TestResult) error {
	if res.State() == contest.StateSuccess {
		return s.store.UpdateSubmission(ctx, id, contest.StateSuccess, res.ScoreMs, res.ScoreJ, &res)
	}
	return s.store.UpdateSubmission(ctx, id, contest.StateFailure, nil, nil, &res)
}
