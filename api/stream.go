package api

import (
	"time"

	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/judgetool"
)

// MsgType is a message type for streaming judging events
type MsgType string

// Streaming message type constants
const (
	StartJobMsg    MsgType = "job_start"
	StartPhaseMsg  MsgType = "phase_start"
	FinishPhaseMsg MsgType = "phase_finish"
	FinishJobMsg   MsgType = "job_finish"
)

// Error text size constraints for streaming
const (
	MaxErrorHeight = 40
	MaxErrorWidth  = 80
)

// Header is the common header for all streaming messages
type Header struct {
	SubmUuid string  `json:"subm_uuid"`
	MsgType  MsgType `json:"msg_type"`
}

// StartJob message sent when judging begins
type StartJob struct {
	Header
	TeamID      int    `json:"team_id"`
	ProblemID   int    `json:"problem_id"`
	Lang        string `json:"lang"`
	StartedTime string `json:"started_time"`
}

// StartPhase message sent before the judge tool runs
type StartPhase struct {
	Header
	Phase string `json:"phase"`
}

type TestOutcome string

const (
	TestCorrect   TestOutcome = "correct"
	TestIncorrect TestOutcome = "incorrect"
	TestCrashed   TestOutcome = "error"
	TestUnknown   TestOutcome = "unknown"
)

// TestSummary is the per-test part of a finished phase
type TestSummary struct {
	TestNumber int         `json:"test_number"`
	Outcome    TestOutcome `json:"outcome"`
	TimeMs     *int64      `json:"time_ms,omitempty"`
	EnergyJ    *float64    `json:"energy_j,omitempty"`
	Error      *string     `json:"error,omitempty"`
}

// FinishPhase message sent when the judge tool has reported
type FinishPhase struct {
	Header
	Phase   string        `json:"phase"`
	Verdict *string       `json:"verdict"`
	Tests   []TestSummary `json:"tests"`
	Error   *string       `json:"error"`
}

// FinishJob message sent when judging completes
type FinishJob struct {
	Header
	Result       string   `json:"result"`
	ErrorMessage *string  `json:"error_message"`
	ScoreMs      *int64   `json:"score_ms"`
	ScoreJ       *float64 `json:"score_j"`
}

// Helper function to create a header
func NewHeader(submUuid string, msgType MsgType) Header {
	return Header{
		SubmUuid: submUuid,
		MsgType:  msgType,
	}
}

func NewStartJob(subm contest.Submission) StartJob {
	return StartJob{
		Header:      NewHeader(subm.ID, StartJobMsg),
		TeamID:      subm.TeamID,
		ProblemID:   subm.ProblemID,
		Lang:        string(subm.Lang),
		StartedTime: time.Now().Format(time.RFC3339),
	}
}

func NewStartPhase(submUuid string, phase string) StartPhase {
	return StartPhase{
		Header: NewHeader(submUuid, StartPhaseMsg),
		Phase:  phase,
	}
}

// NewFinishPhase summarises the tool output. Error texts are trimmed to
// MaxErrorHeight lines of MaxErrorWidth characters.
func NewFinishPhase(submUuid string, phase string, out judgetool.Output) FinishPhase {
	msg := FinishPhase{
		Header: NewHeader(submUuid, FinishPhaseMsg),
		Phase:  phase,
		Tests:  []TestSummary{},
	}
	switch o := out.(type) {
	case nil:
		msg.Error = trimmed("judge tool did not produce a report")
	case *judgetool.ErrorOutput:
		msg.Error = trimmed(o.String())
	case *judgetool.UnknownOutput:
		msg.Error = trimmed("unrecognized judge tool output: " + o.Raw)
	case *judgetool.TestResultsOutput:
		verdict := string(o.Verdict)
		msg.Verdict = &verdict
		for _, t := range o.Tests {
			msg.Tests = append(msg.Tests, summarizeTest(t))
		}
	}
	return msg
}

func summarizeTest(t judgetool.TestRun) TestSummary {
	sum := TestSummary{TestNumber: t.Number, Outcome: TestUnknown}
	switch r := t.Result.(type) {
	case *judgetool.Correct:
		ms := r.TimeElapsedMs
		sum.Outcome = TestCorrect
		sum.TimeMs = &ms
		sum.EnergyJ = r.EnergyJ
	case *judgetool.Incorrect:
		sum.Outcome = TestIncorrect
	case *judgetool.TestError:
		sum.Outcome = TestCrashed
		sum.Error = trimmed(r.Message)
	}
	return sum
}

func NewFinishJob(submUuid string, res contest.TestResult) FinishJob {
	msg := FinishJob{
		Header:  NewHeader(submUuid, FinishJobMsg),
		Result:  string(res.Type),
		ScoreMs: res.ScoreMs,
		ScoreJ:  res.ScoreJ,
	}
	if res.Error != nil {
		msg.ErrorMessage = trimmed(*res.Error)
	}
	return msg
}

func trimmed(s string) *string {
	t := TrimToRect(s, MaxErrorHeight, MaxErrorWidth)
	return &t
}
