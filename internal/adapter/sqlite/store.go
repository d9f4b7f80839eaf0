// Package sqlite persists label reports in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/radar-rain-labeler/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store upserts labels by filename, so relabeling a directory converges to
// one row per file. It implements pipeline.ReportSink.
type Store struct {
	db *sql.DB
}

// StoredLabel is one row of the labels table.
type StoredLabel struct {
	Filename        string
	Rainy           *bool
	ShowerIntensity float64
	ClutterPixels   int
	Error           string
	RunID           string
	ProcessedAt     time.Time
}

// Open migrates the database at path to the latest schema and opens it.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := migrateUp(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open label store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("ping label store: %w", err)
	}
	return &Store{db: db}, nil
}

// migrateUp runs on its own connection because the migrate driver closes
// the database it was given.
func migrateUp(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open label store: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		db.Close() //nolint:errcheck // already failing
		return fmt.Errorf("migration driver: %w", err)
	}
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		driver.Close() //nolint:errcheck // already failing
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		driver.Close() //nolint:errcheck // already failing
		return fmt.Errorf("migrate: %w", err)
	}
	defer m.Close() //nolint:errcheck // closes the migration connection

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Name identifies the sink in logs and metrics.
func (s *Store) Name() string { return "sqlite" }

// WriteReport upserts every label and records the run in one transaction.
func (s *Store) WriteReport(ctx context.Context, r domain.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO labels (filename, rainy, shower_intensity, clutter_pixels, error, run_id, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (filename) DO UPDATE SET
			rainy = excluded.rainy,
			shower_intensity = excluded.shower_intensity,
			clutter_pixels = excluded.clutter_pixels,
			error = excluded.error,
			run_id = excluded.run_id,
			processed_at = excluded.processed_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	processedAt := r.GeneratedAt.UTC().Format(time.RFC3339Nano)
	for _, l := range r.Labels {
		var rainy sql.NullBool
		if l.Rainy != nil {
			rainy = sql.NullBool{Bool: *l.Rainy, Valid: true}
		}
		errText := ""
		if l.Err != nil {
			errText = l.Err.Error()
		}
		if _, err := stmt.ExecContext(ctx,
			l.Filename, rainy, l.Classification.ShowerIntensity, l.Classification.ClutterPixels,
			errText, r.RunID, processedAt,
		); err != nil {
			return fmt.Errorf("upsert %s: %w", l.Filename, err)
		}
	}

	rainyCount, dryCount, unknownCount := r.Counts()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, generated_at, rainy, dry, unknown) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (run_id) DO NOTHING`,
		r.RunID, processedAt, rainyCount, dryCount, unknownCount,
	); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Labels returns all stored labels ordered by filename.
func (s *Store) Labels(ctx context.Context) ([]StoredLabel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT filename, rainy, shower_intensity, clutter_pixels, error, run_id, processed_at
		FROM labels ORDER BY filename`)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}
	defer rows.Close()

	var out []StoredLabel
	for rows.Next() {
		var (
			l           StoredLabel
			rainy       sql.NullBool
			processedAt string
		)
		if err := rows.Scan(&l.Filename, &rainy, &l.ShowerIntensity, &l.ClutterPixels, &l.Error, &l.RunID, &processedAt); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		if rainy.Valid {
			v := rainy.Bool
			l.Rainy = &v
		}
		if l.ProcessedAt, err = time.Parse(time.RFC3339Nano, processedAt); err != nil {
			return nil, fmt.Errorf("parse processed_at of %s: %w", l.Filename, err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
