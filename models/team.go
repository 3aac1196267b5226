// Package models defines data structures used across the application.
// File: models/team.go
package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrInvalidTeam is returned by Team.Validate.
var ErrInvalidTeam = errors.New("invalid team")

// partnerNote matches the note written for registrants whose partner could not be paired.
var partnerNote = regexp.MustCompile(`Specified partner: (.+) \(not registered\)`)

// ----------------------- competitor -----------------------

// Competitor is one diver in a team. A blank name means the slot is empty.
type Competitor struct {
	Name  string `bun:"name" json:"name,omitempty"`
	Email string `bun:"email" json:"email,omitempty"`
	Shirt string `bun:"shirt" json:"shirt,omitempty"`
}

// Present reports whether the slot holds a competitor.
func (c Competitor) Present() bool {
	return strings.TrimSpace(c.Name) != ""
}

// ------------------------ team model -----------------------

// Team is a registered pair (or, exceptionally, a trio) of divers.
// Every team is in the Open division; IsJunior and IsWomen add divisions on top.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	TeamNumber  int        `bun:"team_number,notnull,unique" json:"teamNumber"`
	Competitor1 Competitor `bun:"embed:competitor1_" json:"competitor1"`
	Competitor2 Competitor `bun:"embed:competitor2_" json:"competitor2"`
	Competitor3 Competitor `bun:"embed:competitor3_" json:"competitor3"`
	IsJunior    bool       `bun:"is_junior,notnull,default:false" json:"isJunior"`
	IsWomen     bool       `bun:"is_women,notnull,default:false" json:"isWomen"`
	Registered  bool       `bun:"registered,notnull,default:false" json:"registered"`
	Club        string     `bun:"club" json:"club,omitempty"`
	Notes       string     `bun:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

// HasSecondCompetitor reports whether the team has a partner recorded.
func (t Team) HasSecondCompetitor() bool {
	return t.Competitor2.Present()
}

// HasThirdCompetitor reports whether the team is a trio. Trios are shown but never ranked.
func (t Team) HasThirdCompetitor() bool {
	return t.Competitor3.Present()
}

// Names returns the non-blank competitor names in slot order.
func (t Team) Names() []string {
	names := make([]string, 0, 3)
	for _, c := range []Competitor{t.Competitor1, t.Competitor2, t.Competitor3} {
		if c.Present() {
			names = append(names, strings.TrimSpace(c.Name))
		}
	}
	return names
}

// DisplayName joins the competitor names the way the boards print them.
func (t Team) DisplayName() string {
	return strings.Join(t.Names(), " & ")
}

// Emails returns the non-blank competitor emails in slot order.
func (t Team) Emails() []string {
	emails := make([]string, 0, 3)
	for _, c := range []Competitor{t.Competitor1, t.Competitor2, t.Competitor3} {
		if e := strings.TrimSpace(c.Email); e != "" {
			emails = append(emails, e)
		}
	}
	return emails
}

// LastActivity is the update time, falling back to creation time.
func (t Team) LastActivity() time.Time {
	if !t.UpdatedAt.IsZero() {
		return t.UpdatedAt
	}
	return t.CreatedAt
}

// SpecifiedPartner returns the partner name recorded in the notes of an
// unpaired registrant, or "" when there is none.
func (t Team) SpecifiedPartner() string {
	m := partnerNote.FindStringSubmatch(t.Notes)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// InDivision reports whether the team competes in d.
func (t Team) InDivision(d Division) bool {
	switch d {
	case DivisionWomen:
		return t.IsWomen
	case DivisionJuniors:
		return t.IsJunior
	default:
		return true
	}
}

// Divisions lists the divisions the team competes in, Open first.
func (t Team) Divisions() []string {
	out := []string{"Open"}
	if t.IsJunior {
		out = append(out, "Juniors")
	}
	if t.IsWomen {
		out = append(out, "Women")
	}
	return out
}

// Validate checks the fields that must hold before a team is stored.
func (t Team) Validate() error {
	if t.TeamNumber <= 0 {
		return fmt.Errorf("%w: team number must be positive, got %d", ErrInvalidTeam, t.TeamNumber)
	}
	if !t.Competitor1.Present() {
		return fmt.Errorf("%w: team #%d has no first competitor", ErrInvalidTeam, t.TeamNumber)
	}
	if t.Competitor3.Present() && !t.Competitor2.Present() {
		return fmt.Errorf("%w: team #%d has a third competitor but no second", ErrInvalidTeam, t.TeamNumber)
	}
	return nil
}

// PartnerNote renders the note stored on a team whose named partner was not found.
func PartnerNote(partner string) string {
	return fmt.Sprintf("Specified partner: %s (not registered)", strings.TrimSpace(partner))
}

// ------------------------ divisions -----------------------

// Division is a leaderboard filter.
type Division string

const (
	DivisionAll     Division = "all"
	DivisionWomen   Division = "women"
	DivisionJuniors Division = "juniors"
)

// ParseDivision accepts the tab labels used by the boards ("All", "Women", "Juniors")
// in any case. Blank means all.
func ParseDivision(s string) (Division, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "open":
		return DivisionAll, nil
	case "women":
		return DivisionWomen, nil
	case "juniors", "junior":
		return DivisionJuniors, nil
	}
	return "", fmt.Errorf("unknown division %q", s)
}
