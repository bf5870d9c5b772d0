package driftsearch

import (
	"math"
	"math/rand"
	"testing"

	"github.com/hb9tf/bliss/core"
)

func newTestChannel(t *testing.T, rows, cols int, values []float64) *core.CoarseChannel {
	t.Helper()
	nt := int64(rows)
	nc := int64(cols)
	meta := core.ScanMetadata{NTSteps: &nt, Nchans: &nc, Fch1: 1000, Foff: -2.7939677238464355e-06, Tsamp: 1.0}
	cc := core.NewCoarseChannel(0, meta, core.DefaultDevice)
	m := core.NewMatrix(rows, cols)
	copy(m.Data, values)
	cc.SetData(m)
	return cc
}

// gaussianWaterfall deterministically fills a rows x cols tensor with a
// fixed-seed pseudo-Gaussian noise floor, matching what the synthetic
// data source's seed tests use.
func gaussianWaterfall(rows, cols int, mean, sigma float64, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, rows*cols)
	for i := range out {
		out[i] = mean + sigma*r.NormFloat64()
	}
	return out
}

func TestIntegrateZeroDriftMatchesColumnSum(t *testing.T) {
	values := gaussianWaterfall(16, 64, 0, 1, 42)
	cc := newTestChannel(t, 16, 64, values)
	data, _ := cc.Data()

	plane, err := Integrate(cc, IntegrateOptions{LowRateHzPerSec: 0, HighRateHzPerSec: 0, Resolution: 1})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	if plane.NumDrifts() != 1 {
		t.Fatalf("expected exactly 1 drift row for a zero-width range, got %d", plane.NumDrifts())
	}
	for f := 0; f < 64; f++ {
		var want float64
		for tstep := 0; tstep < 16; tstep++ {
			want += data.At(tstep, f)
		}
		if got := plane.Power.At(0, f); math.Abs(got-want) > 1e-9 {
			t.Errorf("column %d: D=%v, want %v", f, got, want)
		}
	}
}

func TestIntegrateAndSearchStaticTone(t *testing.T) {
	values := gaussianWaterfall(16, 1024, 0, 1, 7)
	toneCol := 500
	for tstep := 0; tstep < 16; tstep++ {
		values[tstep*1024+toneCol] += 10
	}
	cc := newTestChannel(t, 16, 1024, values)

	unitDrift := (cc.Foff() * 1e6) / (15 * cc.Tsamp())
	plane, err := Integrate(cc, IntegrateOptions{
		LowRateHzPerSec:  -math.Abs(unitDrift),
		HighRateHzPerSec: math.Abs(unitDrift),
		Resolution:       1,
	})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	noise := core.NoiseStats{NoiseFloor: 0, NoisePower: 1}
	hits, err := Search(plane, noise, cc, 0, SearchOptions{
		Method:         MethodLocalMaxima,
		SNRThreshold:   6,
		NeighborL1Dist: 1,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	found := false
	for _, h := range hits {
		if h.StartFreqIndex == int64(toneCol) && math.Abs(h.DriftRateHzPerSec) < math.Abs(unitDrift)+1e-9 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a hit at bin %d with near-zero drift, got %+v", toneCol, hits)
	}
}

func TestFilterHitsRejectsZeroDrift(t *testing.T) {
	hits := []core.Hit{
		{DriftRateHzPerSec: 0, IntegratedChannels: 16},
		{DriftRateHzPerSec: 0.5, IntegratedChannels: 16},
	}
	out := FilterHits(hits, FilterOptions{RejectZeroDrift: true})
	if len(out) != 1 || out[0].DriftRateHzPerSec != 0.5 {
		t.Errorf("expected only the non-zero-drift hit to survive, got %+v", out)
	}
}

func TestFilterHitsRejectsLowSigmaClipPercentage(t *testing.T) {
	hits := []core.Hit{
		{IntegratedChannels: 100, RFICounts: core.RFICounts{SigmaClip: 5}},
		{IntegratedChannels: 100, RFICounts: core.RFICounts{SigmaClip: 50}},
	}
	out := FilterHits(hits, FilterOptions{MinimumPercentSigmaClip: 0.1})
	if len(out) != 1 || out[0].RFICounts.SigmaClip != 50 {
		t.Errorf("expected only the high-sigmaclip hit to survive, got %+v", out)
	}
}

func TestDesmearAlwaysAtLeastOne(t *testing.T) {
	values := gaussianWaterfall(8, 32, 0, 1, 3)
	cc := newTestChannel(t, 8, 32, values)
	plane, err := Integrate(cc, IntegrateOptions{LowRateHzPerSec: -1e-3, HighRateHzPerSec: 1e-3, Resolution: 1, Desmear: true})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	for _, d := range plane.DriftRates {
		if d.DesmearBins < 1 {
			t.Errorf("drift row %d has desmear %d, want >= 1", d.Row, d.DesmearBins)
		}
	}
}
