package store

import (
	"context"
	"errors"
	"os"
	"testing"
)

func newPostgresTestDB(t *testing.T) *PostgresDB {
	t.Helper()
	dsn := os.Getenv("BACCARAT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("BACCARAT_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	db, err := NewPostgresDB(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPostgresDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return db
}

func TestPostgresRoundTrip(t *testing.T) {
	db := newPostgresTestDB(t)
	ctx := context.Background()

	run := &Run{Kind: KindRuin, System: "flat", Seed: 1<<63 + 5, EngineVersion: "test", ConfigJSON: `{"a":1}`}
	if err := db.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	got, err := db.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Seed != run.Seed || got.Kind != KindRuin {
		t.Errorf("unexpected run %+v", got)
	}

	avg := 10.0
	if err := db.SaveRuinStats(ctx, run.ID, []RuinRow{{Strategy: "flat", Simulations: 1, Ruined: 1, AvgRuinTime: &avg}}); err != nil {
		t.Fatal(err)
	}
	rows, err := db.GetRuinStats(ctx, run.ID)
	if err != nil || len(rows) != 1 || rows[0].AvgRuinTime == nil || *rows[0].AvgRuinTime != 10 {
		t.Errorf("unexpected ruin rows %+v (%v)", rows, err)
	}

	if err := db.SaveBins(ctx, run.ID, []RunBin{{Index: 0, Hands: 5, Hits: 1}}); err != nil {
		t.Fatal(err)
	}
	bins, err := db.GetBins(ctx, run.ID)
	if err != nil || len(bins) != 1 || bins[0].Hands != 5 {
		t.Errorf("unexpected bins %+v (%v)", bins, err)
	}

	list, err := db.ListRuns(ctx, RunsQuery{Kind: KindRuin, PerPage: 1})
	if err != nil || list.TotalCount < 1 || len(list.Runs) != 1 {
		t.Errorf("unexpected list %+v (%v)", list, err)
	}
}

func TestPostgresNotFound(t *testing.T) {
	db := newPostgresTestDB(t)
	for _, id := range []string{"not-a-uuid", "00000000-0000-0000-0000-000000000000"} {
		if _, err := db.GetRun(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetRun(%q): expected ErrNotFound, got %v", id, err)
		}
	}
}
