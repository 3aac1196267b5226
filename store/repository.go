// file: store/repository.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"catfish-cull/logger"
	"catfish-cull/models"
	"catfish-cull/services"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Postgres SQLSTATE codes we translate into service errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

var (
	_ services.Repository   = (*Repository)(nil)
	_ services.CountsSource = (*Repository)(nil)
)

// Repository is the PostgreSQL implementation of services.Repository.
type Repository struct {
	db  *bun.DB
	now func() time.Time
}

// NewRepository wraps an open bun handle.
func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// ------------------- polling -------------------

func (r *Repository) PollRoster(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	if err := r.db.NewSelect().Model(&teams).Order("t.team_number ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("polling roster: %w", err)
	}
	return teams, nil
}

// PollCounts aggregates the check-in header counts in one query.
func (r *Repository) PollCounts(ctx context.Context) (models.Counts, error) {
	var c models.Counts
	err := r.countsQuery().Scan(ctx, &c.Total, &c.CheckedIn, &c.Waiting, &c.Incomplete)
	if err != nil {
		return models.Counts{}, fmt.Errorf("polling counts: %w", err)
	}
	return c, nil
}

func (r *Repository) countsQuery() *bun.SelectQuery {
	const paired = `coalesce(trim(t.competitor2_name), '') <> ''`
	return r.db.NewSelect().Model((*models.Team)(nil)).
		ColumnExpr("count(*)").
		ColumnExpr("count(*) FILTER (WHERE t.registered)").
		ColumnExpr("count(*) FILTER (WHERE NOT t.registered AND " + paired + ")").
		ColumnExpr("count(*) FILTER (WHERE NOT t.registered AND NOT (" + paired + "))")
}

// PollCatches returns each team's most recent catch, largest count first.
func (r *Repository) PollCatches(ctx context.Context, division models.Division) ([]models.TeamCatch, error) {
	var entries []models.CatchEntry
	if err := r.latestCatchesQuery(&entries, division).Scan(ctx); err != nil {
		return nil, fmt.Errorf("polling catches: %w", err)
	}

	out := make([]models.TeamCatch, 0, len(entries))
	for _, e := range entries {
		if e.Team == nil {
			continue
		}
		team := *e.Team
		e.Team = nil
		out = append(out, models.TeamCatch{Team: team, Catch: e})
	}
	slices.SortStableFunc(out, func(a, b models.TeamCatch) int {
		if d := b.Catch.CatfishCount - a.Catch.CatfishCount; d != 0 {
			return d
		}
		return a.Team.TeamNumber - b.Team.TeamNumber
	})
	return out, nil
}

// latestCatchesQuery selects one row per team: the newest catch. DISTINCT ON
// needs team_id to lead the ORDER BY, so the count ordering happens in Go.
func (r *Repository) latestCatchesQuery(dest *[]models.CatchEntry, division models.Division) *bun.SelectQuery {
	q := r.db.NewSelect().Model(dest).
		Relation("Team").
		DistinctOn("c.team_id").
		OrderExpr("c.team_id, c.created_at DESC")

	switch division {
	case models.DivisionWomen:
		q = q.Where(`"team"."is_women" = TRUE`)
	case models.DivisionJuniors:
		q = q.Where(`"team"."is_junior" = TRUE`)
	}
	return q
}

func (r *Repository) PollEventState(ctx context.Context) (models.EventState, error) {
	var ev models.EventState
	err := r.db.NewSelect().Model(&ev).Where("es.id = ?", eventRowID).Scan(ctx)
	if err != nil {
		return models.EventState{}, fmt.Errorf("polling event state: %w", err)
	}
	return ev, nil
}

// ------------------- teams -------------------

func (r *Repository) TeamByNumber(ctx context.Context, number int) (models.Team, error) {
	var t models.Team
	err := r.db.NewSelect().Model(&t).Where("t.team_number = ?", number).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Team{}, fmt.Errorf("%w: #%d", services.ErrTeamNotFound, number)
	}
	if err != nil {
		return models.Team{}, err
	}
	return t, nil
}

// InsertTeams adds the teams in one transaction. Either all are added or none.
func (r *Repository) InsertTeams(ctx context.Context, teams []models.Team) error {
	if len(teams) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(teams))
	for _, t := range teams {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.TeamNumber] {
			return fmt.Errorf("%w: #%d", services.ErrDuplicateTeamNumber, t.TeamNumber)
		}
		seen[t.TeamNumber] = true
	}

	rows := slices.Clone(teams)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if sqlState(err) == codeUniqueViolation {
		return fmt.Errorf("%w: %v", services.ErrDuplicateTeamNumber, err)
	}
	if err != nil {
		return fmt.Errorf("inserting teams: %w", err)
	}
	logger.Info.Printf("[Repository.InsertTeams] Added %d teams", len(rows))
	return nil
}

func (r *Repository) SetRegistered(ctx context.Context, number int, registered bool) (models.Team, error) {
	var t models.Team
	res, err := r.db.NewUpdate().Model(&t).
		Set("registered = ?", registered).
		Set("updated_at = ?", r.now()).
		Where("t.team_number = ?", number).
		Returning("*").
		Exec(ctx)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && rowsAffected(res) == 0) {
		return models.Team{}, fmt.Errorf("%w: #%d", services.ErrTeamNotFound, number)
	}
	if err != nil {
		return models.Team{}, fmt.Errorf("updating team #%d: %w", number, err)
	}
	return t, nil
}

// ------------------- catches -------------------

func (r *Repository) InsertCatch(ctx context.Context, c *models.CatchEntry) error {
	c.ID = uuid.Nil
	c.CreatedAt = time.Time{}
	_, err := r.db.NewInsert().Model(c).Returning("id, status, created_at").Exec(ctx)
	if sqlState(err) == codeForeignKeyViolation {
		return fmt.Errorf("%w: id %s", services.ErrTeamNotFound, c.TeamID)
	}
	if err != nil {
		return fmt.Errorf("inserting catch: %w", err)
	}
	return nil
}

func (r *Repository) CatchByID(ctx context.Context, id uuid.UUID) (models.CatchEntry, error) {
	var c models.CatchEntry
	err := r.db.NewSelect().Model(&c).Where("c.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CatchEntry{}, fmt.Errorf("%w: %s", services.ErrCatchNotFound, id)
	}
	if err != nil {
		return models.CatchEntry{}, err
	}
	return c, nil
}

func (r *Repository) UpdateCatchStatus(ctx context.Context, id uuid.UUID, status models.CatchStatus, notes string) error {
	res, err := r.db.NewUpdate().Model((*models.CatchEntry)(nil)).
		Set("status = ?", status).
		Set("protest_notes = ?", notes).
		Set("updated_at = ?", r.now()).
		Where("c.id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("updating catch %s: %w", id, err)
	}
	if rowsAffected(res) == 0 {
		return fmt.Errorf("%w: %s", services.ErrCatchNotFound, id)
	}
	return nil
}

// Finalize confirms provisional catches and closes the event in one transaction.
// The event row is locked first so two concurrent calls cannot both succeed.
func (r *Repository) Finalize(ctx context.Context) (int, error) {
	confirmed := 0
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var ev models.EventState
		if err := tx.NewSelect().Model(&ev).Where("es.id = ?", eventRowID).For("UPDATE").Scan(ctx); err != nil {
			return fmt.Errorf("locking event state: %w", err)
		}
		if ev.IsFinal() {
			return services.ErrEventFinal
		}

		now := r.now()
		res, err := tx.NewUpdate().Model((*models.CatchEntry)(nil)).
			Set("status = ?", models.StatusConfirmed).
			Set("updated_at = ?", now).
			Where("c.status = ?", models.StatusProvisional).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("confirming catches: %w", err)
		}
		confirmed = int(rowsAffected(res))

		_, err = tx.NewUpdate().Model((*models.EventState)(nil)).
			Set("status = ?", models.EventFinal).
			Set("updated_at = ?", now).
			Where("es.id = ?", eventRowID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	logger.Info.Printf("[Repository.Finalize] Results final, %d catches confirmed", confirmed)
	return confirmed, nil
}

// ------------------- helpers -------------------

func rowsAffected(res sql.Result) int64 {
	if res == nil {
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

// sqlState returns the Postgres error code of err, or "".
func sqlState(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C')
	}
	return ""
}
