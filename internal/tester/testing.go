package tester

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/judgetool"
	"github.com/programme-lv/speedwar/internal/sandbox"
)

// testsDir is where the judge tool expects fixtures inside the sandbox.
const testsDir = "tests"

// RunTests judges a submission against the preliminary and then the secret
// fixtures of its problem. It never fails: every error, including a panic,
// is reported as an internal_server_error result.
func (t *Tester) RunTests(ctx context.Context, req Request, gath ResultGatherer) (res contest.TestResult) {
	if gath == nil {
		gath = NopGatherer{}
	}
	log := t.logger.With("problem", req.ProblemID, "lang", req.Lang)

	gath.StartJob(req.ProblemID, req.Lang)
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while judging", "panic", r, "stack", string(debug.Stack()))
			res = contest.InternalError(fmt.Sprintf("panic while judging: %v", r))
		}
		gath.FinishJob(res)
	}()

	box, err := sandbox.NewBox(t.workRoot)
	if err != nil {
		log.Error("failed to create sandbox", "error", err)
		return contest.InternalError(err.Error())
	}
	defer func() {
		if err := box.Close(); err != nil {
			log.Error("failed to clean up sandbox", "error", err)
		}
	}()

	if err := t.prepare(box, req.Archive); err != nil {
		log.Warn("failed to prepare submission", "error", err)
		return contest.InternalError(err.Error())
	}

	if res, ok := t.runPhase(ctx, box, req, PhasePrelim, gath); !ok {
		return res
	}
	res, _ = t.runPhase(ctx, box, req, PhaseSecret, gath)
	return res
}

// prepare unpacks the archive and drops any fixtures bundled with it.
func (t *Tester) prepare(box *sandbox.Box, archive []byte) error {
	if err := box.Unpack(archive, t.limits); err != nil {
		return err
	}
	return box.Remove(testsDir)
}

// runPhase runs one phase with its fixtures copied into the sandbox. ok is
// true only for an accepted run. Scores are only aggregated for the secret
// phase.
func (t *Tester) runPhase(
	ctx context.Context,
	box *sandbox.Box,
	req Request,
	phase Phase,
	gath ResultGatherer,
) (res contest.TestResult, ok bool) {
	log := t.logger.With("problem", req.ProblemID, "phase", phase)

	if err := box.CopyIn(t.fixturesDir(req.ProblemID, phase), testsDir); err != nil {
		log.Error("failed to copy fixtures", "error", err)
		return contest.InternalError(err.Error()), false
	}
	defer func() {
		if err := box.Remove(testsDir); err != nil {
			log.Error("failed to remove fixtures", "error", err)
		}
	}()

	gath.StartPhase(phase)
	out, err := t.runner.Run(ctx, req.Lang, box.Path())
	gath.FinishPhase(phase, out)
	if err != nil {
		log.Error("judge tool failed", "error", err)
		return contest.InternalError(fmt.Sprintf("Executing tests using CLI failed: %v", err)), false
	}

	if !judgetool.IsAccepted(out) {
		return mapFailure(out, phase), false
	}
	if phase == PhasePrelim {
		return contest.TestResult{}, true
	}
	ms, joules, err := aggregateScores(out.(*judgetool.TestResultsOutput))
	if err != nil {
		return contest.InternalError(err.Error()), false
	}
	log.Info("phase accepted", "score_ms", ms)
	return contest.Success(ms, joules), true
}
