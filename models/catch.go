// File: models/catch.go
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CatchStatus tracks a weigh-in through protests and finalisation.
type CatchStatus string

const (
	StatusProvisional  CatchStatus = "provisional"
	StatusUnderProtest CatchStatus = "under_protest"
	StatusConfirmed    CatchStatus = "confirmed"
	StatusDisqualified CatchStatus = "disqualified"
)

// CatchStatuses lists every status in display order.
var CatchStatuses = []CatchStatus{StatusProvisional, StatusUnderProtest, StatusConfirmed, StatusDisqualified}

// ParseCatchStatus validates a status string.
func ParseCatchStatus(s string) (CatchStatus, error) {
	cs := CatchStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range CatchStatuses {
		if cs == known {
			return cs, nil
		}
	}
	return "", fmt.Errorf("unknown catch status %q", s)
}

// CatchEntry is one weigh-in. Only the most recent entry per team counts.
type CatchEntry struct {
	bun.BaseModel `bun:"table:catches,alias:c"`

	ID                uuid.UUID   `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	TeamID            uuid.UUID   `bun:"team_id,type:uuid,notnull" json:"teamId"`
	CatfishCount      int         `bun:"catfish_count,notnull" json:"catfishCount"`
	HeaviestFishGrams *int        `bun:"heaviest_fish_grams" json:"heaviestFishGrams,omitempty"`
	LightestFishGrams *int        `bun:"lightest_fish_grams" json:"lightestFishGrams,omitempty"`
	PhotoURLs         []string    `bun:"photo_urls,array" json:"photoUrls"`
	Status            CatchStatus `bun:"status,notnull,default:'provisional'" json:"status"`
	ProtestNotes      string      `bun:"protest_notes" json:"protestNotes,omitempty"`
	CreatedAt         time.Time   `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt         time.Time   `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`

	Team *Team `bun:"rel:belongs-to,join:team_id=id" json:"-"`
}

// Heaviest returns the heaviest fish weight when one was reported.
func (c CatchEntry) Heaviest() (int, bool) {
	return positive(c.HeaviestFishGrams)
}

// Lightest returns the lightest fish weight when one was reported.
func (c CatchEntry) Lightest() (int, bool) {
	return positive(c.LightestFishGrams)
}

func positive(p *int) (int, bool) {
	if p == nil || *p <= 0 {
		return 0, false
	}
	return *p, true
}

// TeamCatch is a team's active catch joined with the team, the raw material
// the Ranker works on.
type TeamCatch struct {
	Team  Team       `json:"team"`
	Catch CatchEntry `json:"catch"`
}

// NoRank marks a leaderboard row that is listed but not ranked.
const NoRank = 0

// LeaderboardRow is a ranked, eligibility-annotated TeamCatch.
type LeaderboardRow struct {
	TeamCatch
	TeamNames string `json:"teamNames"`
	Eligible  bool   `json:"eligible"`
	Rank      int    `json:"rank"`
}

// Ranked reports whether the row carries a numeric rank.
func (r LeaderboardRow) Ranked() bool {
	return r.Rank != NoRank
}

// Counts are the headline numbers of the check-in board.
type Counts struct {
	Total      int `json:"total"`
	CheckedIn  int `json:"checkedIn"`
	Waiting    int `json:"waiting"`
	Incomplete int `json:"incomplete"`
}
