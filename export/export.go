// Package export persists Hits and Events to external sinks, generalizing
// the teacher's sdr.Sample exporters (sql.go, mysql.go, datastore.go,
// elastic.go, csv.go) to the two result types a cadence search produces.
package export

import (
	"context"

	"github.com/hb9tf/bliss/core"
)

// HitExporter streams a coarse channel's hits to a sink.
type HitExporter interface {
	WriteHits(ctx context.Context, hits <-chan core.Hit) error
}

// EventExporter streams a cadence search's events to a sink.
type EventExporter interface {
	WriteEvents(ctx context.Context, events <-chan core.Event) error
}
