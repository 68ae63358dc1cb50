package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "fintrack.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustDraft(t *testing.T, amount, category string) core.Draft {
	t.Helper()
	d, err := core.NewDraft(amount, category)
	if err != nil {
		t.Fatalf("NewDraft(%q) error = %v", amount, err)
	}
	return d
}

func TestSQLiteRepository_CRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 10, 0, 0, 123000000, time.FixedZone("CET", 3600))

	created, err := repo.Create(ctx, mustDraft(t, "12.50", "Food"), at)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID != 1 || !created.CreatedAt.Equal(at) {
		t.Fatalf("unexpected created transaction: %+v", created)
	}
	if _, err := repo.Create(ctx, mustDraft(t, "-3", ""), at.Add(time.Hour)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != 1 || list[1].ID != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}
	if core.FormatAmount(list[0].Amount) != "12.50" || list[0].Category != "Food" {
		t.Fatalf("unexpected first row: %+v", list[0])
	}
	if list[1].HasCategory() {
		t.Fatalf("blank category should be stored as NULL: %+v", list[1])
	}
	if !list[0].CreatedAt.Equal(at) {
		t.Fatalf("created_at round trip: got %v want %v", list[0].CreatedAt, at)
	}

	updated, err := repo.Update(ctx, 1, mustDraft(t, "13", "Groceries"))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Category != "Groceries" || core.FormatAmount(updated.Amount) != "13.00" || !updated.CreatedAt.Equal(at) {
		t.Fatalf("unexpected updated row: %+v", updated)
	}

	if err := repo.Delete(ctx, 2); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx, 2); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_MissingIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Get(ctx, 7); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err := repo.Update(ctx, 7, mustDraft(t, "1", "")); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, 7); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
	list, err := repo.List(ctx)
	if err != nil || len(list) != 0 {
		t.Errorf("List() = %v, %v; want empty", list, err)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first RunMigrations() error = %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second RunMigrations() error = %v", err)
	}
}
