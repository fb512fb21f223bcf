package judgetool_test

import (
	"testing"

	"github.com/programme-lv/speedwar/internal/judgetool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAcceptedTestResults(t *testing.T) {
	out, err := judgetool.Decode([]byte(`{"TestResults":{"verdict":"Accepted","tests":[
		{"test_number":1,"run_result":{"Correct":{"stats":{"time_elapsed_ms":120,"energy_consumed_j":1.5}}}},
		{"test_number":2,"run_result":{"Correct":{"stats":{"time_elapsed_ms":80,"energy_consumed_j":null}}}}
	]}}`))
	require.NoError(t, err)

	res, ok := out.(*judgetool.TestResultsOutput)
	require.True(t, ok)
	assert.Equal(t, judgetool.Accepted, res.Verdict)
	require.Len(t, res.Tests, 2)
	assert.True(t, judgetool.IsAccepted(out))

	first, ok := res.Tests[0].Result.(*judgetool.Correct)
	require.True(t, ok)
	assert.Equal(t, int64(120), first.TimeElapsedMs)
	require.NotNil(t, first.EnergyJ)
	assert.InDelta(t, 1.5, *first.EnergyJ, 1e-9)

	second, ok := res.Tests[1].Result.(*judgetool.Correct)
	require.True(t, ok)
	assert.Nil(t, second.EnergyJ)
}

func TestDecodeRejectedWithMixedRuns(t *testing.T) {
	out, err := judgetool.Decode([]byte(`{"TestResults":{"verdict":"Rejected","tests":[
		{"test_number":1,"run_result":{"Incorrect":{"expected":"1","actual":"2"}}},
		{"test_number":2,"run_result":{"TestError":{"error":"segfault"}}},
		{"test_number":3,"run_result":{"TestError":{"error":"oom"}}}
	]}}`))
	require.NoError(t, err)

	res := out.(*judgetool.TestResultsOutput)
	assert.Equal(t, judgetool.Rejected, res.Verdict)
	assert.False(t, judgetool.IsAccepted(out))

	inc, ok := res.Tests[0].Result.(*judgetool.Incorrect)
	require.True(t, ok)
	assert.Equal(t, "2", inc.Detail["actual"])

	te, ok := res.FirstTestError()
	require.True(t, ok)
	assert.Equal(t, "segfault", te.Message)
}

func TestDecodeErrorVariants(t *testing.T) {
	cases := []struct {
		name string
		in   string
		kind judgetool.ErrorKind
		msg  string
	}{
		{"build error", `{"Error":{"error":{"BuildError":{"error":"cargo failed"}}}}`, judgetool.BuildError, "cargo failed"},
		{"build timeout", `{"Error":{"error":{"BuildTimeout":{"error":"60s"}}}}`, judgetool.BuildTimeout, "60s"},
		{"internal", `{"Error":{"error":{"InternalError":{"error":"docker down"}}}}`, judgetool.InternalError, "docker down"},
		{"legacy test timeout", `{"TestTimeout":{"error":"took too long"}}`, judgetool.TestTimeout, "took too long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := judgetool.Decode([]byte(tc.in))
			require.NoError(t, err)
			e, ok := out.(*judgetool.ErrorOutput)
			require.True(t, ok)
			assert.Equal(t, tc.kind, e.Kind)
			assert.Equal(t, tc.msg, e.Message)
		})
	}
}

func TestDecodeUnknownShape(t *testing.T) {
	out, err := judgetool.Decode([]byte(`{"Something":{"else":true}}`))
	require.NoError(t, err)
	unk, ok := out.(*judgetool.UnknownOutput)
	require.True(t, ok)
	assert.Contains(t, unk.Raw, "Something")

	out, err = judgetool.Decode([]byte(`{"Error":{"error":{"Mystery":{}}}}`))
	require.NoError(t, err)
	_, ok = out.(*judgetool.UnknownOutput)
	assert.True(t, ok)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := judgetool.Decode([]byte("Program ran successfully (12 ms, 3 J)"))
	require.Error(t, err)
}
