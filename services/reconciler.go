// file: services/reconciler.go
package services

import (
	"fmt"
	"strings"

	"catfish-cull/models"
)

// Registrant is one solo booking row from a ticketing export.
type Registrant struct {
	Row         int    `json:"row"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Shirt       string `json:"shirt"`
	PartnerName string `json:"partnerName"`
	Club        string `json:"club"`
	IsJunior    bool   `json:"isJunior"`
	IsWomen     bool   `json:"isWomen"`
}

// Match kinds recorded on paired candidates.
const (
	MatchExact  = "exact"
	MatchTokens = "tokens"
	MatchToken  = "token"
)

// Candidate is a proposed team. TeamNumber is only a default and may be
// edited before the candidates are committed.
type Candidate struct {
	TeamNumber  int               `json:"teamNumber"`
	Competitor1 models.Competitor `json:"competitor1"`
	Competitor2 models.Competitor `json:"competitor2"`
	IsJunior    bool              `json:"isJunior"`
	IsWomen     bool              `json:"isWomen"`
	Club        string            `json:"club,omitempty"`
	Matched     bool              `json:"matched"`
	MatchedBy   string            `json:"matchedBy,omitempty"`
	PartnerText string            `json:"partnerText,omitempty"`
}

// ImportResult is the Reconciler's output. Skipped lists source rows that had no name.
type ImportResult struct {
	Candidates []Candidate `json:"candidates"`
	Skipped    []int       `json:"skipped"`
}

// Unmatched counts the single candidates left for manual follow-up.
func (r ImportResult) Unmatched() int {
	n := 0
	for _, c := range r.Candidates {
		if !c.Matched {
			n++
		}
	}
	return n
}

// Reconcile pairs solo registrants by the partner name each one typed in.
//
// Registrants are visited in input order. A stated partner resolves to the
// first other unpaired registrant with the same normalized name; failing
// that, to the only unpaired registrant sharing at least two name tokens
// with it; failing that, when the partner is a single word, to the first
// unpaired registrant whose name contains it. Registrants whose partner is
// not found stay available to be claimed by later rows and end up as
// unmatched singles. Pairs come first, then singles, numbered from 1.
func Reconcile(regs []Registrant) ImportResult {
	res := ImportResult{Candidates: []Candidate{}, Skipped: []int{}}

	pool := make([]Registrant, 0, len(regs))
	for _, r := range regs {
		if normalizeName(r.Name) == "" {
			res.Skipped = append(res.Skipped, r.Row)
			continue
		}
		pool = append(pool, r)
	}

	names := make([]string, len(pool))
	byName := make(map[string][]int, len(pool))
	for i, r := range pool {
		names[i] = normalizeName(r.Name)
		byName[names[i]] = append(byName[names[i]], i)
	}

	paired := make([]bool, len(pool))
	var pairs []Candidate
	for i, r := range pool {
		if paired[i] {
			continue
		}
		j, how := findPartner(i, normalizeName(r.PartnerName), names, byName, paired)
		if j < 0 {
			continue
		}
		paired[i], paired[j] = true, true
		pairs = append(pairs, pairCandidate(r, pool[j], how))
	}

	res.Candidates = append(res.Candidates, pairs...)
	for i, r := range pool {
		if !paired[i] {
			res.Candidates = append(res.Candidates, singleCandidate(r))
		}
	}
	for i := range res.Candidates {
		res.Candidates[i].TeamNumber = i + 1
	}
	return res
}

func findPartner(self int, partner string, names []string, byName map[string][]int, paired []bool) (int, string) {
	if partner == "" {
		return -1, ""
	}
	available := func(j int) bool { return j != self && !paired[j] }

	for _, j := range byName[partner] {
		if available(j) {
			return j, MatchExact
		}
	}

	tokens := strings.Fields(partner)
	found, hits := -1, 0
	for j, name := range names {
		if available(j) && sharedTokens(tokens, name) >= 2 {
			found = j
			hits++
		}
	}
	if hits == 1 {
		return found, MatchTokens
	}

	if len(tokens) == 1 {
		for j, name := range names {
			if available(j) && strings.Contains(name, tokens[0]) {
				return j, MatchToken
			}
		}
	}
	return -1, ""
}

func sharedTokens(tokens []string, name string) int {
	have := make(map[string]bool)
	for _, f := range strings.Fields(name) {
		have[f] = true
	}
	n := 0
	for _, t := range tokens {
		if have[t] {
			n++
			delete(have, t)
		}
	}
	return n
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func competitorOf(r Registrant) models.Competitor {
	return models.Competitor{
		Name:  strings.Join(strings.Fields(r.Name), " "),
		Email: strings.TrimSpace(r.Email),
		Shirt: strings.TrimSpace(r.Shirt),
	}
}

func pairCandidate(a, b Registrant, how string) Candidate {
	club := strings.TrimSpace(a.Club)
	if club == "" {
		club = strings.TrimSpace(b.Club)
	}
	return Candidate{
		Competitor1: competitorOf(a),
		Competitor2: competitorOf(b),
		IsJunior:    a.IsJunior || b.IsJunior,
		IsWomen:     a.IsWomen || b.IsWomen,
		Club:        club,
		Matched:     true,
		MatchedBy:   how,
	}
}

func singleCandidate(r Registrant) Candidate {
	return Candidate{
		Competitor1: competitorOf(r),
		IsJunior:    r.IsJunior,
		IsWomen:     r.IsWomen,
		Club:        strings.TrimSpace(r.Club),
		PartnerText: strings.TrimSpace(r.PartnerName),
	}
}

// Team converts a candidate into an unregistered team. Singles that named a
// partner carry it in the notes so the check-in board can show it.
func (c Candidate) Team() models.Team {
	t := models.Team{
		TeamNumber:  c.TeamNumber,
		Competitor1: c.Competitor1,
		Competitor2: c.Competitor2,
		IsJunior:    c.IsJunior,
		IsWomen:     c.IsWomen,
		Club:        c.Club,
	}
	if !c.Matched && c.PartnerText != "" {
		t.Notes = models.PartnerNote(c.PartnerText)
	}
	return t
}

// CandidatesToTeams validates the (possibly edited) candidates for commit.
// Team numbers must be positive and unique.
func CandidatesToTeams(cands []Candidate) ([]models.Team, error) {
	seen := make(map[int]bool, len(cands))
	teams := make([]models.Team, 0, len(cands))
	for _, c := range cands {
		t := c.Team()
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if seen[t.TeamNumber] {
			return nil, fmt.Errorf("%w: #%d", ErrDuplicateTeamNumber, t.TeamNumber)
		}
		seen[t.TeamNumber] = true
		teams = append(teams, t)
	}
	return teams, nil
}
