// file: services/ranker.go
package services

import (
	"math"
	"slices"

	"catfish-cull/models"

	"github.com/google/uuid"
)

// PrizeFish is the holder of the heaviest or lightest fish.
type PrizeFish struct {
	TeamNumber int    `json:"teamNumber"`
	TeamNames  string `json:"teamNames"`
	Grams      int    `json:"grams"`
}

// Leaderboard is the ranked view for one division tab.
type Leaderboard struct {
	Division models.Division        `json:"division"`
	Rows     []models.LeaderboardRow `json:"rows"`
	Heaviest *PrizeFish             `json:"heaviest,omitempty"`
	Lightest *PrizeFish             `json:"lightest,omitempty"`
}

// Eligible reports whether a catch can be ranked and win prizes: no third
// competitor and not disqualified.
func Eligible(tc models.TeamCatch) bool {
	return !tc.Team.HasThirdCompetitor() && tc.Catch.Status != models.StatusDisqualified
}

// Rank filters rows to the division and ranks them by catch count.
//
// A row's rank is one more than the number of eligible rows with a strictly
// greater count, so ties share a rank and the next count skips ahead
// (5, 5, 3 ranks as 1, 1, 3). Ineligible rows stay in the listing with
// models.NoRank. Prize fish are taken from the eligible rows of the whole
// input regardless of division.
func Rank(rows []models.TeamCatch, division models.Division) Leaderboard {
	lb := Leaderboard{Division: division, Rows: []models.LeaderboardRow{}}

	for _, tc := range rows {
		if !tc.Team.InDivision(division) {
			continue
		}
		lb.Rows = append(lb.Rows, models.LeaderboardRow{
			TeamCatch: tc,
			TeamNames: tc.Team.DisplayName(),
			Eligible:  Eligible(tc),
		})
	}

	slices.SortStableFunc(lb.Rows, func(a, b models.LeaderboardRow) int {
		return catchCount(b.TeamCatch) - catchCount(a.TeamCatch)
	})

	above, seen, last := 0, 0, 0
	for i := range lb.Rows {
		r := &lb.Rows[i]
		if !r.Eligible {
			r.Rank = models.NoRank
			continue
		}
		if n := catchCount(r.TeamCatch); seen == 0 || n != last {
			above, last = seen, n
		}
		r.Rank = above + 1
		seen++
	}

	lb.Heaviest, lb.Lightest = PrizeFishes(rows)
	return lb
}

// PrizeFishes finds the heaviest and lightest reported fish among eligible
// rows. On equal weights the first row in input order keeps the prize.
func PrizeFishes(rows []models.TeamCatch) (heaviest, lightest *PrizeFish) {
	for _, tc := range rows {
		if !Eligible(tc) {
			continue
		}
		if g, ok := tc.Catch.Heaviest(); ok && (heaviest == nil || g > heaviest.Grams) {
			heaviest = prize(tc, g)
		}
		if g, ok := tc.Catch.Lightest(); ok && (lightest == nil || g < lightest.Grams) {
			lightest = prize(tc, g)
		}
	}
	return heaviest, lightest
}

func prize(tc models.TeamCatch, grams int) *PrizeFish {
	return &PrizeFish{TeamNumber: tc.Team.TeamNumber, TeamNames: tc.Team.DisplayName(), Grams: grams}
}

// negative counts are malformed; treat them as nothing caught
func catchCount(tc models.TeamCatch) int {
	return max(tc.Catch.CatfishCount, 0)
}

// ------------------- leaderboard extras -------------------

// DivisionTab is one filter tab with the number of teams in it.
type DivisionTab struct {
	Division models.Division `json:"division"`
	Label    string          `json:"label"`
	Teams    int             `json:"teams"`
}

// Stats summarises the catches across every division.
type Stats struct {
	TeamsWithCatch int     `json:"teamsWithCatch"`
	TotalCatfish   int     `json:"totalCatfish"`
	Average        float64 `json:"average"`
}

// LatestEntry is a recent weigh-in with the team's standing.
type LatestEntry struct {
	models.LeaderboardRow
	DivisionLabel string `json:"divisionLabel"`
	OverallRank   int    `json:"overallRank"`
	DivisionRank  int    `json:"divisionRank"`
}

// DivisionTabs counts roster teams per tab.
func DivisionTabs(roster []models.Team) []DivisionTab {
	tabs := []DivisionTab{
		{Division: models.DivisionAll, Label: "All"},
		{Division: models.DivisionWomen, Label: "Women"},
		{Division: models.DivisionJuniors, Label: "Juniors"},
	}
	for _, t := range roster {
		for i := range tabs {
			if t.InDivision(tabs[i].Division) {
				tabs[i].Teams++
			}
		}
	}
	return tabs
}

// CatchStats totals the catches. The average is rounded to one decimal.
func CatchStats(rows []models.TeamCatch) Stats {
	s := Stats{TeamsWithCatch: len(rows)}
	for _, tc := range rows {
		s.TotalCatfish += catchCount(tc)
	}
	if s.TeamsWithCatch > 0 {
		s.Average = math.Round(float64(s.TotalCatfish)/float64(s.TeamsWithCatch)*10) / 10
	}
	return s
}

// LatestEntries returns the n most recent weigh-ins, newest first, each with
// its overall rank and its rank in the team's most specific division. rows
// holds the active catch per team, so a re-weighed team appears once, with
// the count that is ranked.
func LatestEntries(rows []models.TeamCatch, n int) []LatestEntry {
	if n <= 0 || len(rows) == 0 {
		return []LatestEntry{}
	}
	recent := slices.Clone(rows)
	slices.SortStableFunc(recent, func(a, b models.TeamCatch) int {
		return b.Catch.CreatedAt.Compare(a.Catch.CreatedAt)
	})
	if len(recent) > n {
		recent = recent[:n]
	}

	ranks := map[models.Division]map[uuid.UUID]int{}
	rankIn := func(d models.Division, id uuid.UUID) int {
		if ranks[d] == nil {
			ranks[d] = map[uuid.UUID]int{}
			for _, r := range Rank(rows, d).Rows {
				ranks[d][r.Team.ID] = r.Rank
			}
		}
		return ranks[d][id]
	}

	out := make([]LatestEntry, 0, len(recent))
	for _, tc := range recent {
		div, label := primaryDivision(tc.Team)
		out = append(out, LatestEntry{
			LeaderboardRow: models.LeaderboardRow{
				TeamCatch: tc,
				TeamNames: tc.Team.DisplayName(),
				Eligible:  Eligible(tc),
				Rank:      rankIn(models.DivisionAll, tc.Team.ID),
			},
			DivisionLabel: label,
			OverallRank:   rankIn(models.DivisionAll, tc.Team.ID),
			DivisionRank:  rankIn(div, tc.Team.ID),
		})
	}
	return out
}

func primaryDivision(t models.Team) (models.Division, string) {
	switch {
	case t.IsWomen:
		return models.DivisionWomen, "Women"
	case t.IsJunior:
		return models.DivisionJuniors, "Juniors"
	}
	return models.DivisionAll, "Open"
}
