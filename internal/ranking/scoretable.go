package ranking

import (
	"github.com/programme-lv/speedwar/internal/contest"
)

// Score is a team's best result on one problem. Each metric is the minimum
// over the team's successful submissions, chosen independently.
type Score struct {
	ScoreMs *int64   `json:"scoreMs"`
	ScoreJ  *float64 `json:"scoreJ"`
}

// ScoreTable maps problem -> team -> best score. Every problem and team of
// the contest has an entry.
type ScoreTable map[int]map[int]Score

func BuildScoreTable(c *contest.Contest, subms []contest.Submission) ScoreTable {
	table := make(ScoreTable, c.NumProblems)
	for _, problem := range c.Problems() {
		table[problem] = make(map[int]Score, c.NumTeams)
		for _, team := range c.Teams() {
			table[problem][team] = Score{}
		}
	}

	for _, s := range subms {
		if s.State != contest.StateSuccess {
			continue
		}
		teams, ok := table[s.ProblemID]
		if !ok {
			continue
		}
		best, ok := teams[s.TeamID]
		if !ok {
			continue
		}
		if s.ScoreMs != nil && (best.ScoreMs == nil || *s.ScoreMs < *best.ScoreMs) {
			ms := *s.ScoreMs
			best.ScoreMs = &ms
		}
		if s.ScoreJ != nil && (best.ScoreJ == nil || *s.ScoreJ < *best.ScoreJ) {
			j := *s.ScoreJ
			best.ScoreJ = &j
		}
		teams[s.TeamID] = best
	}
	return table
}
