package services

import (
	"context"

	"catfish-cull/models"

	"github.com/stretchr/testify/mock"
)

// Ensure MockDataSource implements DataSource and CountsSource
var (
	_ DataSource   = (*MockDataSource)(nil)
	_ CountsSource = (*MockCountingSource)(nil)
)

// MockDataSource is a testify mock for the polling side.
type MockDataSource struct {
	mock.Mock
}

// PollRoster (Mocked)
func (m *MockDataSource) PollRoster(ctx context.Context) ([]models.Team, error) {
	args := m.Called(ctx)
	teams, _ := args.Get(0).([]models.Team)
	return teams, args.Error(1)
}

// PollCatches (Mocked)
func (m *MockDataSource) PollCatches(ctx context.Context, division models.Division) ([]models.TeamCatch, error) {
	args := m.Called(ctx, division)
	rows, _ := args.Get(0).([]models.TeamCatch)
	return rows, args.Error(1)
}

// PollEventState (Mocked)
func (m *MockDataSource) PollEventState(ctx context.Context) (models.EventState, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.EventState), args.Error(1)
}

// MockCountingSource adds PollCounts to MockDataSource.
type MockCountingSource struct {
	MockDataSource
}

// PollCounts (Mocked)
func (m *MockCountingSource) PollCounts(ctx context.Context) (models.Counts, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Counts), args.Error(1)
}
