// Package services holds the display and results logic that sits between storage and the HTTP layer.
// file: services/datasource.go
package services

import (
	"context"
	"errors"

	"catfish-cull/logger"
	"catfish-cull/models"

	"github.com/google/uuid"
)

var (
	ErrTeamNotFound        = errors.New("team not found")
	ErrCatchNotFound       = errors.New("catch not found")
	ErrEventFinal          = errors.New("results are final")
	ErrInvalidStatus       = errors.New("invalid catch status")
	ErrInvalidCatch        = errors.New("invalid catch")
	ErrDuplicateTeamNumber = errors.New("duplicate team number")
)

// DataSource is the read side polled by the displays. Implementations return
// snapshots; callers never mutate what they get back.
type DataSource interface {
	PollRoster(ctx context.Context) ([]models.Team, error)
	// PollCatches returns the most recent catch of every team, joined with the team.
	PollCatches(ctx context.Context, division models.Division) ([]models.TeamCatch, error)
	PollEventState(ctx context.Context) (models.EventState, error)
}

// CountsSource is optionally implemented by sources that can aggregate the
// check-in counts themselves.
type CountsSource interface {
	PollCounts(ctx context.Context) (models.Counts, error)
}

// Repository is the write side used by the staff workflows.
type Repository interface {
	DataSource

	TeamByNumber(ctx context.Context, number int) (models.Team, error)
	InsertTeams(ctx context.Context, teams []models.Team) error
	SetRegistered(ctx context.Context, number int, registered bool) (models.Team, error)

	InsertCatch(ctx context.Context, c *models.CatchEntry) error
	CatchByID(ctx context.Context, id uuid.UUID) (models.CatchEntry, error)
	UpdateCatchStatus(ctx context.Context, id uuid.UUID, status models.CatchStatus, notes string) error
	// Finalize confirms every provisional catch and marks the event final in
	// one step. It returns ErrEventFinal if the event is already final.
	Finalize(ctx context.Context) (confirmed int, err error)
}

// PollCountsOrDerive uses the source's own counts when it has them and falls
// back to classifying the roster otherwise.
func PollCountsOrDerive(ctx context.Context, src DataSource, roster []models.Team) models.Counts {
	if cs, ok := src.(CountsSource); ok {
		counts, err := cs.PollCounts(ctx)
		if err == nil {
			return counts
		}
		logger.Warn.Printf("[PollCountsOrDerive] counts unavailable, deriving from roster: %v", err)
	}
	return Classify(roster).Counts()
}
