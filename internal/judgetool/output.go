package judgetool

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Output is one of *ErrorOutput, *TestResultsOutput or *UnknownOutput.
type Output interface {
	isOutput()
}

type ErrorKind string

const (
	BuildError    ErrorKind = "BuildError"
	BuildTimeout  ErrorKind = "BuildTimeout"
	TestTimeout   ErrorKind = "TestTimeout"
	InternalError ErrorKind = "InternalError"
)

var errorKinds = []ErrorKind{BuildError, BuildTimeout, TestTimeout, InternalError}

// ErrorOutput is reported when the tool could not produce test results.
type ErrorOutput struct {
	Kind    ErrorKind
	Message string
}

type Verdict string

const (
	Accepted Verdict = "Accepted"
	Rejected Verdict = "Rejected"
)

type TestResultsOutput struct {
	Verdict Verdict
	Tests   []TestRun
}

type TestRun struct {
	Number int
	Result RunResult
}

// UnknownOutput holds tool output that matched none of the known shapes.
type UnknownOutput struct {
	Raw string
}

func (*ErrorOutput) isOutput()       {}
func (*TestResultsOutput) isOutput() {}
func (*UnknownOutput) isOutput()     {}

// RunResult is one of *Correct, *Incorrect, *TestError or *UnknownRun.
type RunResult interface {
	isRunResult()
}

type Correct struct {
	TimeElapsedMs int64
	// EnergyJ is nil when the energy monitor produced no reading.
	EnergyJ *float64
}

type Incorrect struct {
	Detail map[string]any
}

type TestError struct {
	Message string
}

type UnknownRun struct {
	Raw string
}

func (*Correct) isRunResult()    {}
func (*Incorrect) isRunResult()  {}
func (*TestError) isRunResult()  {}
func (*UnknownRun) isRunResult() {}

// IsAccepted reports whether out is a completed test run with an accepted verdict.
func IsAccepted(out Output) bool {
	res, ok := out.(*TestResultsOutput)
	return ok && res.Verdict == Accepted
}

// FirstTestError returns the first crashed test, if any.
func (o *TestResultsOutput) FirstTestError() (*TestError, bool) {
	for _, t := range o.Tests {
		if te, ok := t.Result.(*TestError); ok {
			return te, true
		}
	}
	return nil, false
}

type messageJSON struct {
	Error string `json:"error"`
}

type testResultsJSON struct {
	Verdict Verdict `json:"verdict"`
	Tests   []struct {
		TestNumber int                        `json:"test_number"`
		RunResult  map[string]json.RawMessage `json:"run_result"`
	} `json:"tests"`
}

type correctJSON struct {
	Stats struct {
		TimeElapsedMs   int64    `json:"time_elapsed_ms"`
		EnergyConsumedJ *float64 `json:"energy_consumed_j"`
	} `json:"stats"`
}

// Decode parses the tool's stdout. Malformed JSON is an error; well-formed
// JSON of an unexpected shape decodes to *UnknownOutput.
func Decode(data []byte) (Output, error) {
	data = bytes.TrimSpace(data)
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("failed to parse judge tool output: %w", err)
	}
	unknown := &UnknownOutput{Raw: string(data)}

	if raw, ok := top["TestResults"]; ok {
		var tr testResultsJSON
		if err := json.Unmarshal(raw, &tr); err != nil {
			return unknown, nil
		}
		res := &TestResultsOutput{Verdict: tr.Verdict, Tests: make([]TestRun, 0, len(tr.Tests))}
		for _, t := range tr.Tests {
			res.Tests = append(res.Tests, TestRun{
				Number: t.TestNumber,
				Result: decodeRunResult(t.RunResult),
			})
		}
		return res, nil
	}

	if raw, ok := top["Error"]; ok {
		var wrapper struct {
			Error map[string]json.RawMessage `json:"error"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return unknown, nil
		}
		if out, ok := decodeErrorVariant(wrapper.Error); ok {
			return out, nil
		}
		return unknown, nil
	}

	// older tool builds emit the error variant at the top level
	if out, ok := decodeErrorVariant(top); ok {
		return out, nil
	}
	return unknown, nil
}

func decodeErrorVariant(m map[string]json.RawMessage) (*ErrorOutput, bool) {
	for _, kind := range errorKinds {
		raw, ok := m[string(kind)]
		if !ok {
			continue
		}
		var msg messageJSON
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, false
		}
		return &ErrorOutput{Kind: kind, Message: msg.Error}, true
	}
	return nil, false
}

func decodeRunResult(m map[string]json.RawMessage) RunResult {
	if raw, ok := m["Correct"]; ok {
		var c correctJSON
		if err := json.Unmarshal(raw, &c); err == nil {
			return &Correct{
				TimeElapsedMs: c.Stats.TimeElapsedMs,
				EnergyJ:       c.Stats.EnergyConsumedJ,
			}
		}
	}
	if raw, ok := m["Incorrect"]; ok {
		detail := map[string]any{}
		_ = json.Unmarshal(raw, &detail)
		return &Incorrect{Detail: detail}
	}
	if raw, ok := m["TestError"]; ok {
		var msg messageJSON
		if err := json.Unmarshal(raw, &msg); err == nil {
			return &TestError{Message: msg.Error}
		}
	}
	b, _ := json.Marshal(m)
	return &UnknownRun{Raw: string(b)}
}

func (o *ErrorOutput) String() string {
	return fmt.Sprintf("%s: %s", o.Kind, o.Message)
}

func (o *TestResultsOutput) String() string {
	return fmt.Sprintf("%s (%d tests)", o.Verdict, len(o.Tests))
}

func (o *UnknownOutput) String() string {
	return o.Raw
}
