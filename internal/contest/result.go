package contest

type ResultType string

const (
	ResultSuccess              ResultType = "success"
	ResultBuildError           ResultType = "build_error"
	ResultPrelimTestsIncorrect ResultType = "prelim_tests_incorrect"
	ResultPrelimTestsError     ResultType = "prelim_tests_error"
	ResultSpeedTestsIncorrect  ResultType = "speed_tests_incorrect"
	ResultSpeedTestsError      ResultType = "speed_tests_error"
	ResultInternalServerError  ResultType = "internal_server_error"
)

// TestResult is the outcome of judging one submission. Only a success
// carries scores; ScoreJ stays nil when energy was not measured.
type TestResult struct {
	Type    ResultType `json:"type"`
	Error   *string    `json:"error,omitempty"`
	ScoreMs *int64     `json:"scoreMs,omitempty"`
	ScoreJ  *float64   `json:"scoreJ,omitempty"`
}

func Success(scoreMs int64, scoreJ *float64) TestResult {
	return TestResult{Type: ResultSuccess, ScoreMs: &scoreMs, ScoreJ: scoreJ}
}

func Failure(t ResultType, msg string) TestResult {
	res := TestResult{Type: t}
	if msg != "" {
		res.Error = &msg
	}
	return res
}

func InternalError(msg string) TestResult {
	return Failure(ResultInternalServerError, msg)
}

// State is the terminal submission state the result maps to.
func (r TestResult) State() State {
	if r.Type == ResultSuccess {
		return StateSuccess
	}
	return StateFailure
}

func (r TestResult) Message() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}
