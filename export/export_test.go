package export

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hb9tf/bliss/core"
)

func TestSQLWriteHitsPersistsRows(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening in-memory sqlite db: %v", err)
	}
	defer db.Close()

	sink := &SQL{DB: db}
	hits := make(chan core.Hit, 2)
	hits <- core.Hit{CoarseChannelNumber: 1, StartFreqIndex: 10, StartFreqMHz: 1420.5, SNR: 12.3}
	hits <- core.Hit{CoarseChannelNumber: 1, StartFreqIndex: 20, StartFreqMHz: 1420.7, SNR: 8.1}
	close(hits)

	if err := sink.WriteHits(context.Background(), hits); err != nil {
		t.Fatalf("WriteHits: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM hits").Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows, got %d", count)
	}
}

func TestSQLWriteEventsPersistsRows(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening in-memory sqlite db: %v", err)
	}
	defer db.Close()

	sink := &SQL{DB: db}
	ev := core.Event{Hits: []core.Hit{{SNR: 10}, {SNR: 12}}}
	ev.FinalizeAverages()

	events := make(chan core.Event, 1)
	events <- ev
	close(events)

	if err := sink.WriteEvents(context.Background(), events); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}

	var avgSNR float64
	if err := db.QueryRow("SELECT AverageSNR FROM events").Scan(&avgSNR); err != nil {
		t.Fatalf("reading row: %v", err)
	}
	if avgSNR != 11 {
		t.Errorf("expected AverageSNR 11, got %v", avgSNR)
	}
}

func TestCSVWriteHitsNoError(t *testing.T) {
	sink := &CSV{}
	hits := make(chan core.Hit, 1)
	hits <- core.Hit{CoarseChannelNumber: 1, StartFreqIndex: 5}
	close(hits)

	if err := sink.WriteHits(context.Background(), hits); err != nil {
		t.Fatalf("WriteHits: %v", err)
	}
}
