package event

import (
	"testing"

	"github.com/hb9tf/bliss/core"
)

func scanWithHits(t *testing.T, sourceName string, hits []core.Hit) *core.Scan {
	t.Helper()
	nt := int64(16)
	nc := int64(64)
	meta := core.ScanMetadata{
		SourceName: sourceName,
		Fch1:       1000, Foff: -0.001, Tsamp: 1.0, Tstart: 58000,
		NTSteps: &nt, Nchans: &nc,
	}
	cc := core.NewCoarseChannel(0, meta, core.DefaultDevice)
	m := core.NewMatrix(1, 1)
	cc.SetData(m)
	cc.SetHits(hits)
	scan, err := core.NewScanFromChannels(map[int64]*core.CoarseChannel{0: cc})
	if err != nil {
		t.Fatalf("NewScanFromChannels: %v", err)
	}
	return scan
}

func toneHit(freqMHz, driftRate float64) core.Hit {
	return core.Hit{
		StartFreqMHz:      freqMHz,
		StartTimeSec:      0,
		DurationSec:       16,
		DriftRateHzPerSec: driftRate,
		Power:             10,
		SNR:               10,
	}
}

func buildCadence(t *testing.T, onHits [][]core.Hit, offHits [][]core.Hit) *core.Cadence {
	t.Helper()
	var onScans []*core.Scan
	for _, hits := range onHits {
		onScans = append(onScans, scanWithHits(t, "target-A", append([]core.Hit{}, hits...)))
	}
	onTarget := core.NewObservationTarget("target-A", onScans)

	targets := []*core.ObservationTarget{onTarget}
	for _, hits := range offHits {
		s := scanWithHits(t, "off", append([]core.Hit{}, hits...))
		targets = append(targets, core.NewObservationTarget("off", []*core.Scan{s}))
	}
	return core.NewCadence(targets)
}

func TestSearchCadenceABACADFindsOneEvent(t *testing.T) {
	// A1, A2, A3 all contain the same drifting tone; B, C, D do not.
	tone := toneHit(1000, 0.01)
	cadence := buildCadence(t,
		[][]core.Hit{{tone}, {tone}, {tone}},
		[][]core.Hit{{}, {}, {}},
	)

	events := Search(cadence)
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event, got %d: %+v", len(events), events)
	}
	if len(events[0].Hits) != 3 {
		t.Errorf("expected 3 hits in the event, got %d", len(events[0].Hits))
	}
}

func TestSearchCadenceRejectsWhenToneInOffScan(t *testing.T) {
	tone := toneHit(1000, 0.01)
	cadence := buildCadence(t,
		[][]core.Hit{{tone}, {tone}, {tone}},
		[][]core.Hit{{tone}, {}, {}},
	)

	events := Search(cadence)
	if len(events) != 0 {
		t.Errorf("expected zero events when tone also appears off-target, got %d", len(events))
	}
}

func TestSearchEmptyCadenceReturnsNoEvents(t *testing.T) {
	cadence := core.NewCadence(nil)
	if events := Search(cadence); events != nil {
		t.Errorf("expected nil events for empty cadence, got %+v", events)
	}
}

func TestSearchSingleHitNeverBecomesEvent(t *testing.T) {
	tone := toneHit(1000, 0.01)
	cadence := buildCadence(t, [][]core.Hit{{tone}}, nil)
	if events := Search(cadence); len(events) != 0 {
		t.Errorf("expected no events from a single ON scan, got %d", len(events))
	}
}

func TestDistanceZeroForIdenticalHits(t *testing.T) {
	h := toneHit(1000, 0.01)
	if d := distance(h, h); d != 0 {
		t.Errorf("distance(h, h) = %v, want 0", d)
	}
}

func TestDistanceCacheMemoises(t *testing.T) {
	hits := []core.Hit{toneHit(1000, 0), toneHit(1000.001, 0.5)}
	c := newDistanceCache(hits)
	d1 := c.distance(0, 1)
	d2 := c.distance(1, 0)
	if d1 != d2 {
		t.Errorf("expected symmetric memoised distance, got %v vs %v", d1, d2)
	}
}
