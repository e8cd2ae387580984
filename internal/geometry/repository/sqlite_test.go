package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"floorplan/internal/geometry/models"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "geometry.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := New(db)
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return repo
}

func sampleGeometry(t *testing.T) *models.Geometry {
	t.Helper()
	g := models.New(models.ModePoints, "estimator")
	a := g.AddPoint(0, 0, "")
	b := g.AddPoint(10, 0, "")
	if _, err := g.AddSegment(a.ID, b.ID, models.KindWall); err != nil {
		t.Fatalf("add: %v", err)
	}
	return g
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	g := sampleGeometry(t)

	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Get(ctx, g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Version != g.Version || len(got.Points) != 2 || len(got.Segments) != 1 || got.Perimeter != 10 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.UpdatedBy != "estimator" || got.Mode != models.ModePoints {
		t.Fatalf("metadata lost: %+v", got)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	g := sampleGeometry(t)
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := repo.Save(ctx, g); !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("same version should be stale, got %v", err)
	}

	older := g.Clone()
	older.Version--
	if err := repo.Save(ctx, older); !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("older version should be stale, got %v", err)
	}

	g.SetLabel(models.Label{Text: "Den"})
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("newer version should win: %v", err)
	}
	got, err := repo.Get(ctx, g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Labels) != 1 || got.Version != g.Version {
		t.Fatalf("latest write not stored: %+v", got)
	}
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	first := sampleGeometry(t)
	second := sampleGeometry(t)
	second.SetClosed(true)
	for _, g := range []*models.Geometry{first, second} {
		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %d entries", len(list))
	}
	closed := 0
	for _, s := range list {
		if s.ClosedPolygon {
			closed++
		}
		if s.UpdatedAt.IsZero() {
			t.Fatalf("summary without timestamp: %+v", s)
		}
	}
	if closed != 1 {
		t.Fatalf("closed summaries = %d, want 1", closed)
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
