// Package ranking turns the best scores of every team into contest points.
package ranking

import (
	"cmp"
	"math"
	"slices"

	"github.com/programme-lv/speedwar/internal/contest"
)

// Dimension holds the points of one ranking criterion.
type Dimension struct {
	// Problems maps problem -> team -> points.
	Problems map[int]map[int]int `json:"problems"`
	// Sum maps team -> points summed over all problems.
	Sum map[int]int `json:"sum"`
}

type Standing struct {
	Team   int `json:"team"`
	Points int `json:"points"`
	Rank   int `json:"rank"`
}

type Ranking struct {
	Speed       Dimension  `json:"speed"`
	Energy      Dimension  `json:"energy"`
	Correctness Dimension  `json:"correctness"`
	Combined    []Standing `json:"combined"`
}

func Calculate(c *contest.Contest, table ScoreTable) *Ranking {
	r := &Ranking{
		Speed: dimension(c, table, func(s Score) float64 {
			if s.ScoreMs == nil {
				return math.Inf(1)
			}
			return float64(*s.ScoreMs)
		}),
		Energy: dimension(c, table, func(s Score) float64 {
			if s.ScoreJ == nil {
				return math.Inf(1)
			}
			return *s.ScoreJ
		}),
		Correctness: correctness(c, table),
	}
	r.Combined = combine(c, r.Speed, r.Energy, r.Correctness)
	return r
}

func correctness(c *contest.Contest, table ScoreTable) Dimension {
	d := newDimension(c)
	for _, problem := range c.Problems() {
		for _, team := range c.Teams() {
			points := 0
			if table[problem][team].ScoreMs != nil {
				points = c.NumTeams - 1
			}
			d.Problems[problem][team] = points
			d.Sum[team] += points
		}
	}
	return d
}

type entry struct {
	team  int
	value float64
}

// dimension ranks teams by metric ascending. A missing score is +Inf and
// sorts last. Teams tied on a value all get the points of the last position
// of their run.
func dimension(c *contest.Contest, table ScoreTable, metric func(Score) float64) Dimension {
	d := newDimension(c)
	for _, problem := range c.Problems() {
		entries := make([]entry, 0, c.NumTeams)
		for _, team := range c.Teams() {
			entries = append(entries, entry{team: team, value: metric(table[problem][team])})
		}
		slices.SortStableFunc(entries, func(a, b entry) int {
			return cmp.Compare(a.value, b.value)
		})

		for start := 0; start < len(entries); {
			end := start
			for end+1 < len(entries) && entries[end+1].value == entries[start].value {
				end++
			}
			points := c.NumTeams - 1 - end
			for _, e := range entries[start : end+1] {
				d.Problems[problem][e.team] = points
				d.Sum[e.team] += points
			}
			start = end + 1
		}
	}
	return d
}

// combine sums the three dimensions. Ranks are positions in the sorted list;
// equal totals still get distinct ranks, lower team id first.
func combine(c *contest.Contest, dims ...Dimension) []Standing {
	res := make([]Standing, 0, c.NumTeams)
	for _, team := range c.Teams() {
		total := 0
		for _, d := range dims {
			total += d.Sum[team]
		}
		res = append(res, Standing{Team: team, Points: total})
	}
	slices.SortStableFunc(res, func(a, b Standing) int {
		return cmp.Compare(b.Points, a.Points)
	})
	for i := range res {
		res[i].Rank = i + 1
	}
	return res
}

func newDimension(c *contest.Contest) Dimension {
	d := Dimension{
		Problems: make(map[int]map[int]int, c.NumProblems),
		Sum:      make(map[int]int, c.NumTeams),
	}
	for _, problem := range c.Problems() {
		d.Problems[problem] = make(map[int]int, c.NumTeams)
	}
	for _, team := range c.Teams() {
		d.Sum[team] = 0
	}
	return d
}
