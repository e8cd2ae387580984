package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"floorplan/internal/geometry/models"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ============================================================
// SQLite Repository
// ============================================================

var (
	ErrNotFound     = errors.New("geometry not found")
	ErrStaleVersion = errors.New("stale geometry version")
)

//go:embed migrations/001_init_geometry.sql
var initMigration string

// Summary is the list view of a stored geometry.
type Summary struct {
	ID            string      `json:"id"`
	Mode          models.Mode `json:"mode"`
	Version       int64       `json:"version"`
	ClosedPolygon bool        `json:"closedPolygon"`
	Perimeter     float64     `json:"perimeter"`
	Area          float64     `json:"area"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	UpdatedBy     string      `json:"updatedBy,omitempty"`
}

// Repository persists geometries. Concurrent writers are resolved by version:
// a write only lands when it is newer than what is stored.
type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init applies the schema.
func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, initMigration); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Save stores g unless the stored copy has the same or a newer version.
func (r *Repository) Save(ctx context.Context, g *models.Geometry) error {
	payload, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode geometry: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var stored int64
	err = tx.QueryRowContext(ctx, `SELECT version FROM geometries WHERE id = ?`, g.ID).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	case stored >= g.Version:
		return fmt.Errorf("%w: stored %d, incoming %d", ErrStaleVersion, stored, g.Version)
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO geometries (id, mode, version, closed, perimeter, area, payload, updated_at, updated_by)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            mode = excluded.mode,
            version = excluded.version,
            closed = excluded.closed,
            perimeter = excluded.perimeter,
            area = excluded.area,
            payload = excluded.payload,
            updated_at = excluded.updated_at,
            updated_by = excluded.updated_by
    `,
		g.ID,
		string(g.Mode),
		g.Version,
		g.ClosedPolygon,
		g.Perimeter,
		g.Area,
		string(payload),
		g.UpdatedAt.UTC().Format(time.RFC3339Nano),
		g.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("save geometry %s: %w", g.ID, err)
	}
	return tx.Commit()
}

func (r *Repository) Get(ctx context.Context, id string) (*models.Geometry, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM geometries WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var g models.Geometry
	if err := json.Unmarshal([]byte(payload), &g); err != nil {
		return nil, fmt.Errorf("decode geometry %s: %w", id, err)
	}
	return &g, nil
}

// List returns summaries, most recently updated first.
func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, mode, version, closed, perimeter, area, updated_at, updated_by
        FROM geometries
        ORDER BY updated_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		var mode, updatedAt string
		if err := rows.Scan(&s.ID, &mode, &s.Version, &s.ClosedPolygon, &s.Perimeter, &s.Area, &updatedAt, &s.UpdatedBy); err != nil {
			return nil, err
		}
		s.Mode = models.Mode(mode)
		if s.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at of %s: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM geometries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// OpenSQLite opens the sqlite database at dbPath, creating its directory.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
