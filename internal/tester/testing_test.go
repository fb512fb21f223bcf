package tester_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/judgetool"
	"github.com/programme-lv/speedwar/internal/sandbox"
	"github.com/programme-lv/speedwar/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner answers with a fixed output per phase. The phase is recognised
// by the marker file the fixtures carry.
type fakeRunner struct {
	outputs map[string]judgetool.Output
	err     error
	panic   bool

	seen       []string
	sawForged  bool
	sawArchive bool
}

func (f *fakeRunner) Run(_ context.Context, _ contest.Lang, dir string) (judgetool.Output, error) {
	if f.panic {
		panic("tool exploded")
	}
	marker, err := os.ReadFile(filepath.Join(dir, "tests", "marker"))
	if err != nil {
		return nil, err
	}
	f.seen = append(f.seen, string(marker))
	if _, err := os.Stat(filepath.Join(dir, "tests", "forged.txt")); err == nil {
		f.sawForged = true
	}
	if _, err := os.Stat(filepath.Join(dir, "src", "main.rs")); err == nil {
		f.sawArchive = true
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.outputs[string(marker)], nil
}

type recordingGatherer struct {
	events []string
	final  *contest.TestResult
}

func (g *recordingGatherer) StartJob(int, contest.Lang) { g.events = append(g.events, "start") }
func (g *recordingGatherer) StartPhase(p tester.Phase) {
	g.events = append(g.events, "start:"+string(p))
}
func (g *recordingGatherer) FinishPhase(p tester.Phase, _ judgetool.Output) {
	g.events = append(g.events, "finish:"+string(p))
}
func (g *recordingGatherer) FinishJob(res contest.TestResult) {
	g.events = append(g.events, "done")
	g.final = &res
}

func setupBase(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	for dir, marker := range map[string]string{"tests": "prelim", "secret_tests": "secret"} {
		p := filepath.Join(base, "problems", "1", dir)
		require.NoError(t, os.MkdirAll(p, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(p, "marker"), []byte(marker), 0644))
	}
	return base
}

func submissionZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"Cargo.toml":       "[package]\n",
		"src/main.rs":      "fn main() {}",
		"tests/forged.txt": "the answers are all 42",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func energy(j float64) *float64 { return &j }

func accepted(runs ...judgetool.RunResult) *judgetool.TestResultsOutput {
	out := &judgetool.TestResultsOutput{Verdict: judgetool.Accepted}
	for i, r := range runs {
		out.Tests = append(out.Tests, judgetool.TestRun{Number: i + 1, Result: r})
	}
	return out
}

func newTester(base, work string, runner tester.Runner) *tester.Tester {
	return tester.NewTester(tester.Config{
		BasePath: base,
		WorkRoot: work,
		Limits:   sandbox.DefaultUnpackLimits(),
	}, runner, nil)
}

func TestRunTestsSuccess(t *testing.T) {
	base, work := setupBase(t), t.TempDir()
	runner := &fakeRunner{outputs: map[string]judgetool.Output{
		"prelim": accepted(&judgetool.Correct{TimeElapsedMs: 5}),
		"secret": accepted(
			&judgetool.Correct{TimeElapsedMs: 100, EnergyJ: energy(1.25)},
			&judgetool.Correct{TimeElapsedMs: 50, EnergyJ: energy(2)},
		),
	}}
	gath := &recordingGatherer{}

	res := newTester(base, work, runner).RunTests(context.Background(), tester.Request{
		ProblemID: 1,
		Lang:      contest.LangRust,
		Archive:   submissionZip(t),
	}, gath)

	assert.Equal(t, contest.ResultSuccess, res.Type)
	require.NotNil(t, res.ScoreMs)
	assert.Equal(t, int64(150), *res.ScoreMs)
	require.NotNil(t, res.ScoreJ)
	assert.InDelta(t, 3.25, *res.ScoreJ, 1e-9)
	assert.Nil(t, res.Error)

	assert.Equal(t, []string{"prelim", "secret"}, runner.seen)
	assert.True(t, runner.sawArchive)
	assert.False(t, runner.sawForged, "bundled tests must be replaced by official fixtures")

	assert.Equal(t, []string{"start", "start:prelim", "finish:prelim", "start:secret", "finish:secret", "done"}, gath.events)
	require.NotNil(t, gath.final)
	assert.Equal(t, res, *gath.final)

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, entries, "sandbox must be removed")
}

func TestRunTestsMissingEnergy(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]judgetool.Output{
		"prelim": accepted(&judgetool.Correct{TimeElapsedMs: 1}),
		"secret": accepted(
			&judgetool.Correct{TimeElapsedMs: 10, EnergyJ: energy(1)},
			&judgetool.Correct{TimeElapsedMs: 20},
		),
	}}
	res := newTester(setupBase(t), t.TempDir(), runner).RunTests(context.Background(), tester.Request{
		ProblemID: 1, Lang: contest.LangPython, Archive: submissionZip(t),
	}, nil)

	assert.Equal(t, contest.ResultSuccess, res.Type)
	assert.Equal(t, int64(30), *res.ScoreMs)
	assert.Nil(t, res.ScoreJ)
}

func TestRunTestsPrelimFailureSkipsSecret(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]judgetool.Output{
		"prelim": &judgetool.TestResultsOutput{Verdict: judgetool.Rejected, Tests: []judgetool.TestRun{
			{Number: 1, Result: &judgetool.Incorrect{}},
		}},
	}}
	res := newTester(setupBase(t), t.TempDir(), runner).RunTests(context.Background(), tester.Request{
		ProblemID: 1, Lang: contest.LangRust, Archive: submissionZip(t),
	}, nil)

	assert.Equal(t, contest.ResultPrelimTestsIncorrect, res.Type)
	assert.Nil(t, res.ScoreMs)
	assert.Equal(t, []string{"prelim"}, runner.seen)
}

func TestRunTestsSecretCrash(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]judgetool.Output{
		"prelim": accepted(&judgetool.Correct{TimeElapsedMs: 1}),
		"secret": &judgetool.TestResultsOutput{Verdict: judgetool.Rejected, Tests: []judgetool.TestRun{
			{Number: 1, Result: &judgetool.Correct{TimeElapsedMs: 3}},
			{Number: 2, Result: &judgetool.TestError{Message: "stack overflow"}},
		}},
	}}
	res := newTester(setupBase(t), t.TempDir(), runner).RunTests(context.Background(), tester.Request{
		ProblemID: 1, Lang: contest.LangRust, Archive: submissionZip(t),
	}, nil)

	assert.Equal(t, contest.ResultSpeedTestsError, res.Type)
	assert.Equal(t, "stack overflow", res.Message())
}

func TestRunTestsToolFailure(t *testing.T) {
	work := t.TempDir()
	runner := &fakeRunner{err: errors.New("exit status 101")}
	res := newTester(setupBase(t), work, runner).RunTests(context.Background(), tester.Request{
		ProblemID: 1, Lang: contest.LangRust, Archive: submissionZip(t),
	}, nil)

	assert.Equal(t, contest.ResultInternalServerError, res.Type)
	assert.Contains(t, res.Message(), "exit status 101")

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunTestsPanicBecomesInternalError(t *testing.T) {
	gath := &recordingGatherer{}
	res := newTester(setupBase(t), t.TempDir(), &fakeRunner{panic: true}).RunTests(context.Background(), tester.Request{
		ProblemID: 1, Lang: contest.LangRust, Archive: submissionZip(t),
	}, gath)

	assert.Equal(t, contest.ResultInternalServerError, res.Type)
	assert.Contains(t, res.Message(), "tool exploded")
	require.NotNil(t, gath.final)
	assert.Equal(t, contest.ResultInternalServerError, gath.final.Type)
}

func TestRunTestsBadArchive(t *testing.T) {
	runner := &fakeRunner{}
	res := newTester(setupBase(t), t.TempDir(), runner).RunTests(context.Background(), tester.Request{
		ProblemID: 1, Lang: contest.LangRust, Archive: []byte("not a zip"),
	}, nil)

	assert.Equal(t, contest.ResultInternalServerError, res.Type)
	assert.Empty(t, runner.seen)
}

func TestRunTestsUnknownProblem(t *testing.T) {
	runner := &fakeRunner{}
	res := newTester(setupBase(t), t.TempDir(), runner).RunTests(context.Background(), tester.Request{
		ProblemID: 7, Lang: contest.LangRust, Archive: submissionZip(t),
	}, nil)

	assert.Equal(t, contest.ResultInternalServerError, res.Type)
	assert.Empty(t, runner.seen)
}
