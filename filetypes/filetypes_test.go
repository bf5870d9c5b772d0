package filetypes

import (
	"bytes"
	"math"
	"testing"

	"github.com/hb9tf/bliss/core"
)

func TestDatRoundTripsHitFields(t *testing.T) {
	hits := []core.Hit{
		{
			StartFreqIndex:      500,
			StartFreqMHz:        1420.406,
			DriftRateHzPerSec:   0.25,
			SNR:                 12.5,
			CoarseChannelNumber: 3,
			DurationSec:         16,
		},
	}
	header := DatHeader{
		FileID:     "test.dat",
		SourceName: "VOYAGER1",
		MJD:        58000.5,
		DeltaTSec:  1.0,
		DeltaFHz:   2.7,
	}

	var buf bytes.Buffer
	if err := WriteDat(&buf, header, hits); err != nil {
		t.Fatalf("WriteDat: %v", err)
	}

	got, err := ReadDat(&buf)
	if err != nil {
		t.Fatalf("ReadDat: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(got))
	}
	h := got[0]
	if h.StartFreqIndex != 500 {
		t.Errorf("StartFreqIndex = %d, want 500", h.StartFreqIndex)
	}
	if math.Abs(h.StartFreqMHz-1420.406) > 1e-3 {
		t.Errorf("StartFreqMHz = %v, want ~1420.406", h.StartFreqMHz)
	}
	if math.Abs(h.DriftRateHzPerSec-0.25) > 1e-9 {
		t.Errorf("DriftRateHzPerSec = %v, want 0.25", h.DriftRateHzPerSec)
	}
	if h.CoarseChannelNumber != 3 {
		t.Errorf("CoarseChannelNumber = %d, want 3", h.CoarseChannelNumber)
	}
}

func TestHitRecordRoundTrip(t *testing.T) {
	h := core.Hit{
		StartFreqIndex:      42,
		StartFreqMHz:        1420.5,
		StartTimeSec:        1234.5,
		DurationSec:         16,
		RateIndex:           3,
		DriftRateHzPerSec:   -0.5,
		Power:               99.5,
		TimeSpanSteps:       16,
		IntegratedChannels:  16,
		SNR:                 8.25,
		Bandwidth:           2.7,
		BinWidth:            4,
		RFICounts:           core.RFICounts{LowSpectralKurtosis: 1, HighSpectralKurtosis: 2, SigmaClip: 3},
		CoarseChannelNumber: 7,
	}

	var buf bytes.Buffer
	if err := WriteHit(&buf, h); err != nil {
		t.Fatalf("WriteHit: %v", err)
	}
	got, err := ReadHit(&buf)
	if err != nil {
		t.Fatalf("ReadHit: %v", err)
	}
	if got != h {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, h)
	}
}

func TestWriteHitsReadHitsRoundTrip(t *testing.T) {
	hits := []core.Hit{
		{StartFreqIndex: 1, CoarseChannelNumber: 0},
		{StartFreqIndex: 2, CoarseChannelNumber: 1},
		{StartFreqIndex: 3, CoarseChannelNumber: 2},
	}
	var buf bytes.Buffer
	if err := WriteHits(&buf, hits); err != nil {
		t.Fatalf("WriteHits: %v", err)
	}
	got, err := ReadHits(&buf)
	if err != nil {
		t.Fatalf("ReadHits: %v", err)
	}
	if len(got) != len(hits) {
		t.Fatalf("expected %d hits, got %d", len(hits), len(got))
	}
	for i := range hits {
		if got[i].StartFreqIndex != hits[i].StartFreqIndex {
			t.Errorf("hit %d: StartFreqIndex = %d, want %d", i, got[i].StartFreqIndex, hits[i].StartFreqIndex)
		}
	}
}

func TestReadHitRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	if _, err := ReadHit(buf); err == nil {
		t.Errorf("expected error for bad magic")
	}
}
