// file: services/memory_source.go
package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"catfish-cull/logger"
	"catfish-cull/models"

	"github.com/google/uuid"
)

// Ensure MemorySource satisfies Repository.
var _ Repository = (*MemorySource)(nil)

// MemorySource is a Repository held in process memory. It backs local runs
// without DATABASE_URL and the HTTP tests.
type MemorySource struct {
	mu      sync.RWMutex
	teams   []models.Team
	catches []models.CatchEntry
	event   models.EventState
	now     func() time.Time
}

// NewMemorySource creates an empty source with a provisional event.
func NewMemorySource(protestDeadline, prizegivingTime string) *MemorySource {
	return &MemorySource{
		event: models.EventState{
			ID:              1,
			Status:          models.EventProvisional,
			ProtestDeadline: protestDeadline,
			PrizegivingTime: prizegivingTime,
		},
		now: time.Now,
	}
}

// ------------------- polling -------------------

func (m *MemorySource) PollRoster(ctx context.Context) ([]models.Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := slices.Clone(m.teams)
	slices.SortStableFunc(out, func(a, b models.Team) int { return a.TeamNumber - b.TeamNumber })
	return out, nil
}

func (m *MemorySource) PollCatches(ctx context.Context, division models.Division) ([]models.TeamCatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := make(map[uuid.UUID]models.CatchEntry)
	for _, c := range m.catches {
		// later inserts win ties on created_at
		if prev, ok := latest[c.TeamID]; !ok || !c.CreatedAt.Before(prev.CreatedAt) {
			latest[c.TeamID] = c
		}
	}

	out := make([]models.TeamCatch, 0, len(latest))
	for _, t := range m.teams {
		c, ok := latest[t.ID]
		if !ok || !t.InDivision(division) {
			continue
		}
		out = append(out, models.TeamCatch{Team: t, Catch: c})
	}
	slices.SortStableFunc(out, func(a, b models.TeamCatch) int {
		return b.Catch.CatfishCount - a.Catch.CatfishCount
	})
	return out, nil
}

func (m *MemorySource) PollEventState(ctx context.Context) (models.EventState, error) {
	if err := ctx.Err(); err != nil {
		return models.EventState{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.event, nil
}

// ------------------- writes -------------------

func (m *MemorySource) TeamByNumber(ctx context.Context, number int) (models.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.teamIndex(number); i >= 0 {
		return m.teams[i], nil
	}
	return models.Team{}, fmt.Errorf("%w: #%d", ErrTeamNotFound, number)
}

// InsertTeams adds teams, assigning ids and timestamps. Either all are added or none.
func (m *MemorySource) InsertTeams(ctx context.Context, teams []models.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[int]bool, len(teams))
	for _, t := range teams {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.TeamNumber] || m.teamIndex(t.TeamNumber) >= 0 {
			return fmt.Errorf("%w: #%d", ErrDuplicateTeamNumber, t.TeamNumber)
		}
		seen[t.TeamNumber] = true
	}

	now := m.now()
	for _, t := range teams {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		m.teams = append(m.teams, t)
	}
	logger.Info.Printf("[MemorySource.InsertTeams] Added %d teams", len(teams))
	return nil
}

func (m *MemorySource) SetRegistered(ctx context.Context, number int, registered bool) (models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.teamIndex(number)
	if i < 0 {
		return models.Team{}, fmt.Errorf("%w: #%d", ErrTeamNotFound, number)
	}
	m.teams[i].Registered = registered
	m.teams[i].UpdatedAt = m.now()
	return m.teams[i], nil
}

func (m *MemorySource) InsertCatch(ctx context.Context, c *models.CatchEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for _, t := range m.teams {
		if t.ID == c.TeamID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: id %s", ErrTeamNotFound, c.TeamID)
	}

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = models.StatusProvisional
	}
	c.CreatedAt = m.now()
	m.catches = append(m.catches, *c)
	return nil
}

func (m *MemorySource) CatchByID(ctx context.Context, id uuid.UUID) (models.CatchEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.catches {
		if c.ID == id {
			return c, nil
		}
	}
	return models.CatchEntry{}, fmt.Errorf("%w: %s", ErrCatchNotFound, id)
}

func (m *MemorySource) UpdateCatchStatus(ctx context.Context, id uuid.UUID, status models.CatchStatus, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.catches {
		if m.catches[i].ID == id {
			m.catches[i].Status = status
			m.catches[i].ProtestNotes = notes
			m.catches[i].UpdatedAt = m.now()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrCatchNotFound, id)
}

func (m *MemorySource) Finalize(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.event.IsFinal() {
		return 0, ErrEventFinal
	}
	now := m.now()
	confirmed := 0
	for i := range m.catches {
		if m.catches[i].Status == models.StatusProvisional {
			m.catches[i].Status = models.StatusConfirmed
			m.catches[i].UpdatedAt = now
			confirmed++
		}
	}
	m.event.Status = models.EventFinal
	m.event.UpdatedAt = now
	return confirmed, nil
}

// caller holds m.mu
func (m *MemorySource) teamIndex(number int) int {
	return slices.IndexFunc(m.teams, func(t models.Team) bool { return t.TeamNumber == number })
}
