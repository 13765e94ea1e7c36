package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestRecordAndRows(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	rows := []Row{
		{RunID: 1, Name: "b", Status: StatusChanged, Inserted: 2, Deleted: 1, Duration: 1500 * time.Microsecond},
		{RunID: 1, Name: "a", Status: StatusTooComplex, Error: "too complex"},
		{RunID: 2, Name: "c", Status: StatusUnchanged},
	}
	for _, r := range rows {
		if err := store.Record(ctx, r); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	latest, err := store.Rows(ctx, false)
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if len(latest) != 1 || latest[0].Name != "c" {
		t.Errorf("latest run = %+v, want only c", latest)
	}

	all, err := store.Rows(ctx, true)
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d rows, want 3", len(all))
	}
	if all[0].Name != "a" || all[1].Name != "b" {
		t.Errorf("rows not ordered by run then name: %+v", all)
	}
	if all[1].Inserted != 2 || all[1].Deleted != 1 || all[1].Duration != 1500*time.Microsecond {
		t.Errorf("row b = %+v", all[1])
	}
	if all[0].Error != "too complex" {
		t.Errorf("row a error = %q", all[0].Error)
	}
}

func TestOpen_ReappliesNothing(t *testing.T) {
	ctx := context.Background()
	store, path := openStore(t)
	if err := store.Record(ctx, Row{RunID: 1, Name: "x", Status: StatusChanged}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	rows, err := reopened.Rows(ctx, true)
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows after reopening, want 1", len(rows))
	}
}

func TestRows_Empty(t *testing.T) {
	store, _ := openStore(t)
	rows, err := store.Rows(context.Background(), false)
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows from an empty database", len(rows))
	}
}
