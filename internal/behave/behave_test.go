package behave_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/programme-lv/speedwar/internal/behave"
	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarios = `
[[scenarios]]
description = "fast rust solution"
[[scenarios.request]]
problem = 1
lang = "rust"
dir = "solutions/fast"
[scenarios.expect]
result = "success"
max_score_ms = 200

[[scenarios]]
description = "python does not build"
[[scenarios.request]]
problem = 2
lang = "python"
archive = "broken.zip"
[scenarios.expect]
result = "build_error"
error_contains = "SyntaxError"
`

func writeScenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "solutions", "fast", "src")
	require.NoError(t, os.MkdirAll(src, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "main.rs"), []byte("fn main() {}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.zip"), []byte("PK-ish"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "behave.toml"), []byte(scenarios), 0644))
	return filepath.Join(dir, "behave.toml")
}

func TestParse(t *testing.T) {
	cases, err := behave.Parse(writeScenarioDir(t))
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "fast rust solution", cases[0].Name)
	assert.Equal(t, 1, cases[0].Request.ProblemID)
	assert.Equal(t, contest.LangRust, cases[0].Request.Lang)
	assert.Equal(t, int64(200), cases[0].Expect.MaxScoreMs)

	zr, err := zip.NewReader(bytes.NewReader(cases[0].Request.Archive), int64(len(cases[0].Request.Archive)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "src/main.rs", zr.File[0].Name)

	assert.Equal(t, contest.LangPython, cases[1].Request.Lang)
	assert.Equal(t, []byte("PK-ish"), cases[1].Request.Archive)
	assert.Equal(t, "SyntaxError", cases[1].Expect.ErrorContains)
}

func TestParseRejectsBadScenarios(t *testing.T) {
	for name, body := range map[string]string{
		"no request": `
[[scenarios]]
description = "x"
[scenarios.expect]
result = "success"
`,
		"bad lang": `
[[scenarios]]
description = "x"
[[scenarios.request]]
problem = 1
lang = "cobol"
dir = "."
[scenarios.expect]
result = "success"
`,
		"no source": `
[[scenarios]]
description = "x"
[[scenarios.request]]
problem = 1
lang = "rust"
[scenarios.expect]
result = "success"
`,
		"no expectation": `
[[scenarios]]
description = "x"
[[scenarios.request]]
problem = 1
lang = "rust"
dir = "."
`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "behave.toml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := behave.Parse(path)
			assert.Error(t, err)
		})
	}
}

type fakeExecutor map[int]contest.TestResult

func (f fakeExecutor) RunTests(_ context.Context, req tester.Request, _ tester.ResultGatherer) contest.TestResult {
	return f[req.ProblemID]
}

func TestRun(t *testing.T) {
	cases, err := behave.Parse(writeScenarioDir(t))
	require.NoError(t, err)

	exec := fakeExecutor{
		1: contest.Success(150, nil),
		2: contest.Failure(contest.ResultBuildError, "SyntaxError: invalid syntax"),
	}
	var gathered []string
	outcomes := behave.Run(context.Background(), exec, cases, func(c behave.Case) tester.ResultGatherer {
		gathered = append(gathered, c.Name)
		return tester.NopGatherer{}
	})
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Passed(), outcomes[0].Failure)
	assert.True(t, outcomes[1].Passed(), outcomes[1].Failure)
	assert.Equal(t, []string{"fast rust solution", "python does not build"}, gathered)

	exec[1] = contest.Success(450, nil)
	outcomes = behave.Run(context.Background(), exec, cases, nil)
	assert.False(t, outcomes[0].Passed())
	assert.Contains(t, outcomes[0].Failure, "450ms")
}

func TestCheck(t *testing.T) {
	j := 1.5
	assert.NoError(t, behave.Check(behave.SpecExpect{Result: "success", RequireEnergy: true}, contest.Success(10, &j)))
	assert.Error(t, behave.Check(behave.SpecExpect{Result: "success", RequireEnergy: true}, contest.Success(10, nil)))
	assert.Error(t, behave.Check(behave.SpecExpect{Result: "success"}, contest.InternalError("boom")))
	assert.Error(t, behave.Check(
		behave.SpecExpect{Result: "prelim_tests_error", ErrorContains: "panicked"},
		contest.Failure(contest.ResultPrelimTestsError, "segfault"),
	))
}
