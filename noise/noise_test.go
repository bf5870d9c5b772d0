package noise

import (
	"errors"
	"math"
	"testing"

	"github.com/hb9tf/bliss/core"
)

func newTestChannel(t *testing.T, rows, cols int, values []float64) *core.CoarseChannel {
	t.Helper()
	nt := int64(rows)
	nc := int64(cols)
	meta := core.ScanMetadata{NTSteps: &nt, Nchans: &nc, Fch1: 1000, Foff: -0.001, Tsamp: 1.0}
	cc := core.NewCoarseChannel(0, meta, core.DefaultDevice)
	m := core.NewMatrix(rows, cols)
	copy(m.Data, values)
	cc.SetData(m)
	return cc
}

func TestStandardEstimateMeanVariance(t *testing.T) {
	cc := newTestChannel(t, 1, 4, []float64{1, 2, 3, 4})
	stats, err := Estimate(cc, Options{Method: MethodStandard})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if got, want := stats.NoiseFloor, 2.5; got != want {
		t.Errorf("NoiseFloor = %v, want %v", got, want)
	}
	// variance of {1,2,3,4} about mean 2.5 = 1.25
	if got, want := stats.NoisePower, 1.25; math.Abs(got-want) > 1e-9 {
		t.Errorf("NoisePower = %v, want %v", got, want)
	}
}

func TestMADEstimateRobustToOutlier(t *testing.T) {
	cc := newTestChannel(t, 1, 5, []float64{1, 2, 3, 4, 1000})
	stats, err := Estimate(cc, Options{Method: MethodMAD})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if got, want := stats.NoiseFloor, 3.0; got != want {
		t.Errorf("median = %v, want %v", got, want)
	}
	if stats.NoiseAmplitude() > 10 {
		t.Errorf("expected MAD estimate to resist the outlier, got amplitude %v", stats.NoiseAmplitude())
	}
}

func TestEstimateMaskedExcludesFlagged(t *testing.T) {
	cc := newTestChannel(t, 1, 4, []float64{1, 2, 3, 1000})
	mask, err := cc.EnsureMask()
	if err != nil {
		t.Fatalf("EnsureMask: %v", err)
	}
	mask.Or(0, 3, core.FlagMagnitude)

	stats, err := Estimate(cc, Options{Method: MethodStandard, Masked: true})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if got, want := stats.NoiseFloor, 2.0; got != want {
		t.Errorf("NoiseFloor = %v, want %v (outlier should be excluded)", got, want)
	}
}

func TestEstimateFailsOnInsufficientSamples(t *testing.T) {
	cc := newTestChannel(t, 1, 2, []float64{1, 2})
	mask, err := cc.EnsureMask()
	if err != nil {
		t.Fatalf("EnsureMask: %v", err)
	}
	mask.Or(0, 0, core.FlagMagnitude)
	mask.Or(0, 1, core.FlagMagnitude)

	_, err = Estimate(cc, Options{Method: MethodStandard, Masked: true})
	if !errors.Is(err, core.ErrDataInsufficient) {
		t.Errorf("expected ErrDataInsufficient, got %v", err)
	}
}

func TestNoiseAmplitudeIsSqrtOfPower(t *testing.T) {
	stats := core.NoiseStats{NoiseFloor: 0, NoisePower: 4}
	if got, want := stats.NoiseAmplitude(), 2.0; got != want {
		t.Errorf("NoiseAmplitude() = %v, want %v", got, want)
	}
}
