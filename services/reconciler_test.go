// file: services/reconciler_test.go
package services_test

import (
	"errors"
	"testing"

	"catfish-cull/models"
	"catfish-cull/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reg(row int, name, partner string) services.Registrant {
	return services.Registrant{Row: row, Name: name, PartnerName: partner}
}

func TestReconcile_ExactMatchIsCaseAndSpaceInsensitive(t *testing.T) {
	in := []services.Registrant{
		reg(2, "Jo  Smith", "sam LEE"),
		reg(3, "Sam Lee", "Jo Smith"),
	}
	in[0].IsWomen = true
	in[1].IsJunior = true

	res := services.Reconcile(in)
	require.Len(t, res.Candidates, 1)
	c := res.Candidates[0]
	assert.True(t, c.Matched)
	assert.Equal(t, services.MatchExact, c.MatchedBy)
	assert.Equal(t, "Jo Smith", c.Competitor1.Name)
	assert.Equal(t, "Sam Lee", c.Competitor2.Name)
	assert.True(t, c.IsWomen)
	assert.True(t, c.IsJunior)
	assert.Equal(t, 1, c.TeamNumber)
}

func TestReconcile_TwoSharedTokensNeedsUniqueCandidate(t *testing.T) {
	in := []services.Registrant{
		reg(2, "Mary Ann Jones", "Peter James Brown"),
		reg(3, "Peter Brown", ""),
		reg(4, "Kim Ray", "Lee Ann Ray"),
		reg(5, "Ann Ray Smith", ""),
		reg(6, "Ann Ray Wood", ""),
	}

	res := services.Reconcile(in)
	require.Len(t, res.Candidates, 4)

	pair := res.Candidates[0]
	assert.True(t, pair.Matched)
	assert.Equal(t, services.MatchTokens, pair.MatchedBy)
	assert.Equal(t, "Mary Ann Jones", pair.Competitor1.Name)
	assert.Equal(t, "Peter Brown", pair.Competitor2.Name)

	// Kim's partner shares two tokens with both Ann Rays, so it stays unmatched.
	singles := res.Candidates[1:]
	assert.Equal(t, "Kim Ray", singles[0].Competitor1.Name)
	assert.False(t, singles[0].Matched)
	assert.Equal(t, "Lee Ann Ray", singles[0].PartnerText)
	assert.Empty(t, singles[0].Competitor2.Name)
}

func TestReconcile_SingleTokenSubstring(t *testing.T) {
	res := services.Reconcile([]services.Registrant{
		reg(2, "Ava Novak", "Bartholomew"),
		reg(3, "Tim Bartholomew-Reid", ""),
	})
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, services.MatchToken, res.Candidates[0].MatchedBy)
}

func TestReconcile_UnmatchedCanBeClaimedLater(t *testing.T) {
	res := services.Reconcile([]services.Registrant{
		reg(2, "Quiet Person", ""),
		reg(3, "Loud Person", "quiet person"),
	})
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Loud Person", res.Candidates[0].Competitor1.Name)
	assert.Equal(t, "Quiet Person", res.Candidates[0].Competitor2.Name)
}

func TestReconcile_PairsFirstThenSinglesNumbered(t *testing.T) {
	res := services.Reconcile([]services.Registrant{
		reg(2, "Solo One", "Nobody Here"),
		reg(3, "Al Pha", "Be Ta"),
		reg(4, "", "ghost"),
		reg(5, "Be Ta", "Al Pha"),
		reg(6, "Solo Two", ""),
	})

	require.Len(t, res.Candidates, 3)
	assert.Equal(t, []int{4}, res.Skipped)
	assert.True(t, res.Candidates[0].Matched)
	assert.Equal(t, "Solo One", res.Candidates[1].Competitor1.Name)
	assert.Equal(t, "Solo Two", res.Candidates[2].Competitor1.Name)
	for i, c := range res.Candidates {
		assert.Equal(t, i+1, c.TeamNumber)
	}
	assert.Equal(t, 2, res.Unmatched())
}

func TestReconcile_Deterministic(t *testing.T) {
	in := []services.Registrant{
		reg(2, "A B", "C D"), reg(3, "E F", "A"), reg(4, "C D", ""),
		reg(5, "A Z", ""), reg(6, "G H", "e f"), reg(7, "X Y", "B"),
	}
	first := services.Reconcile(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, services.Reconcile(in))
	}
}

func TestCandidate_TeamCarriesPartnerNote(t *testing.T) {
	res := services.Reconcile([]services.Registrant{reg(2, "Solo One", "Jo Bloggs")})
	tm := res.Candidates[0].Team()
	assert.Equal(t, "Jo Bloggs", tm.SpecifiedPartner())
	assert.False(t, tm.Registered)
}

func TestCandidatesToTeams_Validation(t *testing.T) {
	res := services.Reconcile([]services.Registrant{reg(2, "A A", ""), reg(3, "B B", "")})

	teams, err := services.CandidatesToTeams(res.Candidates)
	require.NoError(t, err)
	assert.Len(t, teams, 2)

	res.Candidates[1].TeamNumber = 1
	_, err = services.CandidatesToTeams(res.Candidates)
	assert.True(t, errors.Is(err, services.ErrDuplicateTeamNumber))

	res.Candidates[1].TeamNumber = -2
	_, err = services.CandidatesToTeams(res.Candidates)
	assert.True(t, errors.Is(err, models.ErrInvalidTeam))
}
