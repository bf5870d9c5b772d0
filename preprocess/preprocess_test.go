package preprocess

import (
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

func TestExciseDCReplacesCenterWithNeighbourAverage(t *testing.T) {
	cc := newTestChannel(t, 2, 5, []float64{1, 2, 999, 4, 5, 10, 20, 999, 40, 50})
	cc, err := ExciseDC(cc)
	if err != nil {
		t.Fatalf("ExciseDC: %v", err)
	}
	data, err := cc.Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if got, want := data.At(0, 2), 3.0; got != want {
		t.Errorf("row 0 center = %v, want %v", got, want)
	}
	if got, want := data.At(1, 2), 30.0; got != want {
		t.Errorf("row 1 center = %v, want %v", got, want)
	}
}

func TestExciseDCRejectsNarrowChannel(t *testing.T) {
	cc := newTestChannel(t, 1, 2, []float64{1, 1})
	if _, err := ExciseDC(cc); err == nil {
		t.Errorf("expected error for channel with <= 2 frequency bins")
	}
}

func TestNormalizeScalesToUnitMax(t *testing.T) {
	cc := newTestChannel(t, 1, 4, []float64{1, 2, 4, 8})
	cc, err := Normalize(cc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	data, _ := cc.Data()
	if data.At(0, 3) != 1.0 {
		t.Errorf("expected max scaled to 1.0, got %v", data.At(0, 3))
	}
	if data.At(0, 0) != 0.125 {
		t.Errorf("expected 1/8 = 0.125, got %v", data.At(0, 0))
	}
}

func TestNormalizeAllZerosNoOp(t *testing.T) {
	cc := newTestChannel(t, 1, 3, []float64{0, 0, 0})
	cc, err := Normalize(cc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	data, _ := cc.Data()
	for _, v := range data.Data {
		if v != 0 {
			t.Errorf("expected all-zero data to remain zero, got %v", v)
		}
	}
}

func TestFlagRolloffEdges(t *testing.T) {
	cc := newTestChannel(t, 1, 10, make([]float64, 10))
	cc, err := FlagRolloff(cc, RolloffOptions{Width: 0.2})
	if err != nil {
		t.Fatalf("FlagRolloff: %v", err)
	}
	mask, _ := cc.Mask()
	for f := 0; f < 2; f++ {
		if !mask.Has(0, f, core.FlagRolloff) {
			t.Errorf("expected column %d flagged", f)
		}
	}
	for f := 8; f < 10; f++ {
		if !mask.Has(0, f, core.FlagRolloff) {
			t.Errorf("expected column %d flagged", f)
		}
	}
	for f := 2; f < 8; f++ {
		if mask.Has(0, f, core.FlagRolloff) {
			t.Errorf("expected column %d unflagged", f)
		}
	}
}

func TestFlagMagnitudeThreshold(t *testing.T) {
	cc := newTestChannel(t, 1, 3, []float64{1, 2, 100})
	cc, err := FlagMagnitude(cc, MagnitudeOptions{Threshold: 10})
	if err != nil {
		t.Fatalf("FlagMagnitude: %v", err)
	}
	mask, _ := cc.Mask()
	if !mask.Has(0, 2, core.FlagMagnitude) {
		t.Errorf("expected outlier column flagged")
	}
	if mask.Has(0, 0, core.FlagMagnitude) || mask.Has(0, 1, core.FlagMagnitude) {
		t.Errorf("expected low columns unflagged")
	}
}

func TestFlagSigmaClipConverges(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 5.0
	}
	values[7] = 500.0 // single outlier
	cc := newTestChannel(t, 1, 20, values)
	cc, err := FlagSigmaClip(cc, SigmaClipOptions{})
	if err != nil {
		t.Fatalf("FlagSigmaClip: %v", err)
	}
	mask, _ := cc.Mask()
	if !mask.Has(0, 7, core.FlagSigmaClip) {
		t.Errorf("expected outlier flagged")
	}
	for f := 0; f < 20; f++ {
		if f == 7 {
			continue
		}
		if mask.Has(0, f, core.FlagSigmaClip) {
			t.Errorf("expected column %d unflagged", f)
		}
	}
}

func TestFlagSpectralKurtosisRejectsM1(t *testing.T) {
	cc := newTestChannel(t, 1, 2, []float64{1, 1})
	if _, err := FlagSpectralKurtosis(cc, KurtosisOptions{}); err == nil {
		t.Errorf("expected error for a single-row (M=1) channel")
	}
}

func TestFlagSpectralKurtosisFlagsLowVariance(t *testing.T) {
	// A perfectly constant column has SK well below 1 for M>1, so it
	// should be flagged low.
	cc := newTestChannel(t, 8, 1, []float64{2, 2, 2, 2, 2, 2, 2, 2})
	cc, err := FlagSpectralKurtosis(cc, KurtosisOptions{})
	if err != nil {
		t.Fatalf("FlagSpectralKurtosis: %v", err)
	}
	mask, _ := cc.Mask()
	if !mask.Has(0, 0, core.FlagLowSpectralKurtosis) {
		t.Errorf("expected constant column flagged low-SK")
	}
}

func TestDesignFIRResponseShape(t *testing.T) {
	resp, err := DesignFIRResponse(16, 4, 33, WindowHamming)
	if err != nil {
		t.Fatalf("DesignFIRResponse: %v", err)
	}
	if len(resp) != 16 {
		t.Fatalf("expected 16 response points, got %d", len(resp))
	}
	for i, v := range resp {
		if v <= 0 {
			t.Errorf("response[%d] expected strictly positive, got %v", i, v)
		}
	}
}

func TestEqualizeRejectsLengthMismatch(t *testing.T) {
	cc := newTestChannel(t, 1, 4, []float64{1, 1, 1, 1})
	if _, err := Equalize(cc, PassbandOptions{Response: []float64{1, 1}}); err == nil {
		t.Errorf("expected length mismatch error")
	}
}
