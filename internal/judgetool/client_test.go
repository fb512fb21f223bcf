package judgetool_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/judgetool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installTool writes a shell script standing in for the judge tool.
func installTool(t *testing.T, script string) string {
	t.Helper()
	base := t.TempDir()
	cliDir := filepath.Join(base, "cli")
	require.NoError(t, os.MkdirAll(cliDir, 0755))
	path := filepath.Join(cliDir, judgetool.DefaultBinary)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return base
}

func TestClientRunPassesArgsAndEnv(t *testing.T) {
	base := installTool(t, `
echo "diagnostics" >&2
printf '{"TestResults":{"verdict":"Accepted","tests":[{"test_number":1,"run_result":{"TestError":{"error":"%s|%s|%s"}}}]}}' "$1" "$2" "$ENERGY_MONITOR_URL"
`)
	workDir := t.TempDir()
	client := judgetool.NewClient(base, judgetool.WithEnergyMonitor("ws://monitor:8765"))

	out, err := client.Run(context.Background(), contest.LangRust, workDir)
	require.NoError(t, err)

	res, ok := out.(*judgetool.TestResultsOutput)
	require.True(t, ok)
	te, ok := res.FirstTestError()
	require.True(t, ok)
	assert.Equal(t, "rust|"+workDir+"|ws://monitor:8765", te.Message)
}

func TestClientRunNonZeroExit(t *testing.T) {
	base := installTool(t, "echo boom >&2\nexit 3\n")
	client := judgetool.NewClient(base)

	_, err := client.Run(context.Background(), contest.LangPython, t.TempDir())
	require.Error(t, err)
}

func TestClientRunGarbageOutput(t *testing.T) {
	base := installTool(t, "echo 'not json'\n")
	client := judgetool.NewClient(base)

	_, err := client.Run(context.Background(), contest.LangRust, t.TempDir())
	require.Error(t, err)
}

func TestClientRunMissingBinary(t *testing.T) {
	client := judgetool.NewClient(t.TempDir())
	_, err := client.Run(context.Background(), contest.LangRust, t.TempDir())
	require.Error(t, err)
}
