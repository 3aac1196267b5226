// file: services/memory_source_test.go
package services_test

import (
	"context"
	"errors"
	"testing"

	"catfish-cull/models"
	"catfish-cull/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySource_InsertTeamsIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	src := seededSource(t, team(1, "A", "B"))

	err := src.InsertTeams(ctx, []models.Team{team(2, "C"), team(1, "D")})
	assert.True(t, errors.Is(err, services.ErrDuplicateTeamNumber))

	roster, err := src.PollRoster(ctx)
	require.NoError(t, err)
	assert.Len(t, roster, 1)
}

func TestMemorySource_SetRegistered(t *testing.T) {
	ctx := context.Background()
	src := seededSource(t, team(3, "A", "B"))

	tm, err := src.SetRegistered(ctx, 3, true)
	require.NoError(t, err)
	assert.True(t, tm.Registered)
	assert.False(t, tm.UpdatedAt.IsZero())

	_, err = src.SetRegistered(ctx, 4, true)
	assert.True(t, errors.Is(err, services.ErrTeamNotFound))
}

func TestMemorySource_PollCatchesFiltersDivision(t *testing.T) {
	ctx := context.Background()
	w := team(1, "A", "B")
	w.IsWomen = true
	src := seededSource(t, w, team(2, "C", "D"))
	svc := services.NewResultsService(src, nil, "")
	for _, n := range []int{1, 2} {
		_, err := svc.SubmitCatch(ctx, services.CatchSubmission{TeamNumber: n, CatfishCount: n})
		require.NoError(t, err)
	}

	all, err := src.PollCatches(ctx, models.DivisionAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, all[0].Team.TeamNumber, "ordered by count")

	women, err := src.PollCatches(ctx, models.DivisionWomen)
	require.NoError(t, err)
	require.Len(t, women, 1)
	assert.Equal(t, 1, women[0].Team.TeamNumber)
}

func TestMemorySource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := services.NewMemorySource("", "").PollRoster(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollCountsOrDerive(t *testing.T) {
	ctx := context.Background()
	roster := []models.Team{registered(team(1, "A", "B")), team(2, "C")}

	plain := new(services.MockDataSource)
	assert.Equal(t, models.Counts{Total: 2, CheckedIn: 1, Incomplete: 1},
		services.PollCountsOrDerive(ctx, plain, roster))

	counting := new(services.MockCountingSource)
	counting.On("PollCounts", ctx).Return(models.Counts{Total: 40, CheckedIn: 12}, nil).Once()
	assert.Equal(t, models.Counts{Total: 40, CheckedIn: 12},
		services.PollCountsOrDerive(ctx, counting, roster))

	counting.On("PollCounts", ctx).Return(models.Counts{}, errors.New("timeout")).Once()
	assert.Equal(t, 2, services.PollCountsOrDerive(ctx, counting, roster).Total)
	counting.AssertExpectations(t)
}
