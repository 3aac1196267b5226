// file: services/classifier_test.go
package services_test

import (
	"testing"
	"time"

	"catfish-cull/models"
	"catfish-cull/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 8, 7, 0, 0, 0, time.UTC)

func team(number int, names ...string) models.Team {
	t := models.Team{TeamNumber: number, CreatedAt: base.Add(time.Duration(number) * time.Minute)}
	slots := []*models.Competitor{&t.Competitor1, &t.Competitor2, &t.Competitor3}
	for i, n := range names {
		slots[i].Name = n
	}
	return t
}

func registered(t models.Team) models.Team {
	t.Registered = true
	return t
}

func numbers(teams []models.Team) []int {
	out := make([]int, 0, len(teams))
	for _, t := range teams {
		out = append(out, t.TeamNumber)
	}
	return out
}

func TestClassify_Scenario(t *testing.T) {
	roster := []models.Team{
		registered(team(1, "Ana", "Ben")),
		team(2, "Cat"),
		team(3, "Dee", "Eli"),
	}

	b := services.Classify(roster)
	assert.Equal(t, []int{1}, numbers(b.Arrived))
	assert.Equal(t, []int{2}, numbers(b.Incomplete))
	assert.Equal(t, []int{3}, numbers(b.Waiting))
	assert.Equal(t, models.Counts{Total: 3, CheckedIn: 1, Waiting: 1, Incomplete: 1}, b.Counts())
}

func TestClassify_Partition(t *testing.T) {
	roster := []models.Team{
		team(5, "A", "B"),
		registered(team(6, "C")),
		team(7, "D", "  "),
		team(8, "", ""),
		registered(team(9, "E", "F", "G")),
		team(10, "H", "I", "J"),
	}

	b := services.Classify(roster)
	seen := map[int]int{}
	for _, bucket := range [][]models.Team{b.Arrived, b.Waiting, b.Incomplete} {
		for _, tm := range bucket {
			seen[tm.TeamNumber]++
		}
	}
	require.Len(t, seen, len(roster))
	for n, c := range seen {
		assert.Equal(t, 1, c, "team #%d appears in %d buckets", n, c)
	}
}

func TestClassify_ArrivedIsSticky(t *testing.T) {
	tm := registered(team(4, "Solo"))
	assert.Equal(t, services.BucketArrived, services.BucketOf(tm))
}

func TestClassify_Ordering(t *testing.T) {
	early := registered(team(1, "A", "B"))
	late := registered(team(2, "C", "D"))
	touched := registered(team(3, "E", "F"))
	touched.UpdatedAt = base.Add(2 * time.Hour)

	roster := []models.Team{
		team(30, "W", "X"), early, team(12, "Y", "Z"), late, touched,
		team(21, "Only"), team(20, "Other"),
	}

	b := services.Classify(roster)
	assert.Equal(t, []int{12, 30}, numbers(b.Waiting))
	assert.Equal(t, []int{3, 2, 1}, numbers(b.Arrived))
	assert.Equal(t, []int{21, 20}, numbers(b.Incomplete), "incomplete keeps roster order")
}

func TestBuckets_CapArrived(t *testing.T) {
	var roster []models.Team
	for i := 1; i <= 25; i++ {
		roster = append(roster, registered(team(i, "A", "B")))
	}
	b := services.Classify(roster)

	capped := b.CapArrived(20)
	assert.Len(t, capped.Arrived, 20)
	assert.Equal(t, 25, capped.Arrived[0].TeamNumber, "most recent first")
	assert.Len(t, b.Arrived, 25, "original untouched")
	assert.Len(t, b.CapArrived(0).Arrived, 25)
}
