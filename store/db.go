// Package store keeps the roster, catches and event state in PostgreSQL.
// file: store/db.go
package store

import (
	"context"
	"database/sql"
	"fmt"

	"catfish-cull/config"
	"catfish-cull/logger"
	"catfish-cull/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// eventRowID is the single event_state row.
const eventRowID = 1

// Open builds a bun handle for cfg.DatabaseURL without touching the network.
func Open(cfg *config.Config) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DatabaseURL)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.DBDebug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// Setup opens the database, checks it is reachable and makes sure the schema exists.
func Setup(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	db := Open(cfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := CreateTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := SeedEvent(ctx, db, cfg.ProtestDeadline, cfg.PrizegivingTime); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info.Println("[store.Setup] Connected to PostgreSQL")
	return db, nil
}

// CreateTables creates all tables in dependency order.
func CreateTables(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*models.Team)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("creating table for %T: %w", (*models.Team)(nil), err)
	}
	if _, err := db.NewCreateTable().Model((*models.CatchEntry)(nil)).IfNotExists().
		ForeignKey(`("team_id") REFERENCES "teams" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("creating table for %T: %w", (*models.CatchEntry)(nil), err)
	}
	if _, err := db.NewCreateTable().Model((*models.EventState)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("creating table for %T: %w", (*models.EventState)(nil), err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS catches_team_created ON catches (team_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS catches_status ON catches (status)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.Warn.Printf("[CreateTables] index: %v", err)
		}
	}
	return nil
}

// SeedEvent inserts the event row if it is missing. An existing row is left alone.
func SeedEvent(ctx context.Context, db bun.IDB, protestDeadline, prizegivingTime string) error {
	ev := &models.EventState{
		ID:              eventRowID,
		Status:          models.EventProvisional,
		ProtestDeadline: protestDeadline,
		PrizegivingTime: prizegivingTime,
	}
	if _, err := db.NewInsert().Model(ev).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("seeding event state: %w", err)
	}
	return nil
}
