package api

// Simple, non-streaming report of a whole judging job

type JudgeReport struct {
	SubmUuid string `json:"subm_uuid"`

	ProblemID int    `json:"problem_id"`
	Lang      string `json:"lang"`

	// Phases in the order they ran; the secret phase is absent after a
	// preliminary failure
	Phases []FinishPhase `json:"phases"`

	// Final classification
	Result       string   `json:"result"`
	ErrorMessage *string  `json:"error_message,omitempty"`
	ScoreMs      *int64   `json:"score_ms,omitempty"`
	ScoreJ       *float64 `json:"score_j,omitempty"`

	// Execution metadata
	StartTime   string `json:"start_time"`
	FinishTime  string `json:"finish_time"`
	TotalTimeMs int64  `json:"total_time_ms"`
}
