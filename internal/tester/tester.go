package tester

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/judgetool"
	"github.com/programme-lv/speedwar/internal/sandbox"
)

// Runner executes the judge tool in a prepared directory.
type Runner interface {
	Run(ctx context.Context, lang contest.Lang, workDir string) (judgetool.Output, error)
}

type Config struct {
	// BasePath holds problems/<id>/{tests,secret_tests} and cli/.
	BasePath string
	// WorkRoot is where sandboxes are created. Empty means the OS temp dir.
	WorkRoot string
	Limits   sandbox.UnpackLimits
}

type Tester struct {
	basePath string
	workRoot string
	limits   sandbox.UnpackLimits
	runner   Runner
	logger   *slog.Logger
}

func NewTester(cfg Config, runner Runner, logger *slog.Logger) *Tester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tester{
		basePath: cfg.BasePath,
		workRoot: cfg.WorkRoot,
		limits:   cfg.Limits,
		runner:   runner,
		logger:   logger,
	}
}

// Request is a single submission to be judged.
type Request struct {
	ProblemID int
	Lang      contest.Lang
	Archive   []byte
}

func (t *Tester) fixturesDir(problemID int, phase Phase) string {
	return filepath.Join(t.basePath, "problems", strconv.Itoa(problemID), phase.FixtureDir())
}
