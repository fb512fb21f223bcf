package termgath

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/judgetool"
	"github.com/programme-lv/speedwar/internal/tester"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

type TerminalGatherer struct {
	StartedAt time.Time
	out       io.Writer
}

func New() *TerminalGatherer { return NewWriter(color.Output) }

func NewWriter(w io.Writer) *TerminalGatherer {
	return &TerminalGatherer{StartedAt: time.Now(), out: w}
}

func (t *TerminalGatherer) StartJob(problemID int, lang contest.Lang) {
	t.StartedAt = time.Now()
	fmt.Fprintf(t.out, "== Judging problem %d (%s) ==\n", problemID, lang)
}

func (t *TerminalGatherer) StartPhase(phase tester.Phase) {
	fmt.Fprintf(t.out, "-- %s tests started --\n", phase)
}

func (t *TerminalGatherer) FinishPhase(phase tester.Phase, out judgetool.Output) {
	switch o := out.(type) {
	case *judgetool.TestResultsOutput:
		verdict := failColor.Sprint(o.Verdict)
		if o.Verdict == judgetool.Accepted {
			verdict = okColor.Sprint(o.Verdict)
		}
		fmt.Fprintf(t.out, "-- %s tests finished: %s --\n", phase, verdict)
		for _, test := range o.Tests {
			fmt.Fprintf(t.out, "  test %d: %s\n", test.Number, describeRun(test.Result))
		}
	case nil:
		fmt.Fprintf(t.out, "-- %s tests finished: %s --\n", phase, failColor.Sprint("no report"))
	default:
		fmt.Fprintf(t.out, "-- %s tests finished: %s --\n", phase, failColor.Sprint(out))
	}
}

func describeRun(r judgetool.RunResult) string {
	switch run := r.(type) {
	case *judgetool.Correct:
		s := okColor.Sprint("correct") + fmt.Sprintf(" %dms", run.TimeElapsedMs)
		if run.EnergyJ != nil {
			s += fmt.Sprintf(" %.3fJ", *run.EnergyJ)
		}
		return s
	case *judgetool.Incorrect:
		return failColor.Sprint("incorrect")
	case *judgetool.TestError:
		return failColor.Sprint("error") + " " + run.Message
	case *judgetool.UnknownRun:
		return dimColor.Sprint("unknown " + run.Raw)
	}
	return dimColor.Sprint("unknown")
}

func (t *TerminalGatherer) FinishJob(res contest.TestResult) {
	dur := time.Since(t.StartedAt).Round(time.Millisecond)
	if res.Type == contest.ResultSuccess {
		line := fmt.Sprintf("== %s: %dms", res.Type, *res.ScoreMs)
		if res.ScoreJ != nil {
			line += fmt.Sprintf(", %.3fJ", *res.ScoreJ)
		}
		fmt.Fprintf(t.out, "%s ==\n", okColor.Sprint(line))
	} else {
		line := fmt.Sprintf("== %s", res.Type)
		if msg := res.Message(); msg != "" {
			line += ": " + msg
		}
		fmt.Fprintf(t.out, "%s ==\n", failColor.Sprint(line))
	}
	fmt.Fprintf(t.out, "%s\n", dimColor.Sprintf("finished in %s", dur))
}

var _ tester.ResultGatherer = (*TerminalGatherer)(nil)
