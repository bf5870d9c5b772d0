package core_test

import (
	"errors"
	"testing"

	"github.com/hb9tf/bliss/core"
	"github.com/hb9tf/bliss/datasource"
)

func testMetadata(nchans int64) core.ScanMetadata {
	return core.ScanMetadata{
		Fch1:       1000,
		Foff:       -2.7939677238464355e-6,
		Tsamp:      18.25361108,
		Tstart:     58000,
		SourceName: "VOYAGER1",
		Nchans:     &nchans,
	}
}

func newTestScan(t *testing.T, numCoarse int64, finePerCoarse int64) *core.Scan {
	t.Helper()
	nchans := numCoarse * finePerCoarse
	power := core.NewMatrix(16, int(nchans))
	md := testMetadata(nchans)
	src := datasource.NewSyntheticScan("test", md, power)
	scan, err := core.NewScanFromDataSource(src, finePerCoarse)
	if err != nil {
		t.Fatalf("NewScanFromDataSource: %s", err)
	}
	return scan
}

func TestReadCoarseChannelOutOfRange(t *testing.T) {
	scan := newTestScan(t, 4, 128)
	if _, err := scan.ReadCoarseChannel(-1); !errors.Is(err, core.ErrOutOfRange) {
		t.Fatalf("got %v, want ErrOutOfRange", err)
	}
	if _, err := scan.ReadCoarseChannel(4); !errors.Is(err, core.ErrOutOfRange) {
		t.Fatalf("got %v, want ErrOutOfRange", err)
	}
}

func TestReadCoarseChannelCachesAndAppliesPipeline(t *testing.T) {
	scan := newTestScan(t, 2, 64)

	applied := 0
	scan.AddCoarseChannelTransform(func(cc *core.CoarseChannel) (*core.CoarseChannel, error) {
		applied++
		return cc, nil
	}, "count")

	cc1, err := scan.ReadCoarseChannel(0)
	if err != nil {
		t.Fatal(err)
	}
	cc2, err := scan.ReadCoarseChannel(0)
	if err != nil {
		t.Fatal(err)
	}
	if cc1 != cc2 {
		t.Fatal("expected the same cached CoarseChannel on repeated reads")
	}
	if applied != 1 {
		t.Fatalf("pipeline ran %d times, want 1 (cached)", applied)
	}

	if _, ok := scan.PeekCoarseChannel(1); ok {
		t.Fatal("channel 1 should not be cached before it is read")
	}
}

func TestSliceScanChannelsInvariants(t *testing.T) {
	scan := newTestScan(t, 8, 64)

	sliced, err := scan.SliceScanChannels(2, 4)
	if err != nil {
		t.Fatal(err)
	}

	if sliced.Foff() != scan.Foff() {
		t.Errorf("foff changed across slice: got %v want %v", sliced.Foff(), scan.Foff())
	}
	if sliced.Tsamp() != scan.Tsamp() {
		t.Errorf("tsamp changed across slice")
	}
	if sliced.SourceName() != scan.SourceName() {
		t.Errorf("source name changed across slice")
	}

	wantFch1 := scan.Fch1() + scan.Foff()*float64(scan.FinePerCoarse())*2
	if sliced.Fch1() != wantFch1 {
		t.Errorf("fch1 = %v, want %v", sliced.Fch1(), wantFch1)
	}
	wantNchans := int64(4 * scan.FinePerCoarse())
	if *sliced.Metadata().Nchans != wantNchans {
		t.Errorf("nchans = %d, want %d", *sliced.Metadata().Nchans, wantNchans)
	}

	// A frequency inside original coarse 3 must map to new coarse 1.
	freqInsideCoarse3 := scan.Fch1() + scan.Foff()*float64(scan.FinePerCoarse())*3.5
	if idx := sliced.GetCoarseChannelWithFrequency(freqInsideCoarse3); idx != 1 {
		t.Errorf("sliced coarse index = %d, want 1", idx)
	}
}

func TestSliceScanChannelsThroughEnd(t *testing.T) {
	scan := newTestScan(t, 8, 64)
	sliced, err := scan.SliceScanChannels(5, -1)
	if err != nil {
		t.Fatal(err)
	}
	if sliced.NumCoarseChannels() != 3 {
		t.Fatalf("got %d coarse channels, want 3", sliced.NumCoarseChannels())
	}
}

func TestGetCoarseChannelWithFrequencyBoundaries(t *testing.T) {
	scan := newTestScan(t, 4, 128)
	if idx := scan.GetCoarseChannelWithFrequency(scan.Fch1()); idx != 0 {
		t.Errorf("fch1 maps to %d, want 0", idx)
	}
	lastFreq := scan.Fch1() + scan.Foff()*float64(*scan.Metadata().Nchans-1)
	if idx := scan.GetCoarseChannelWithFrequency(lastFreq); idx != scan.NumCoarseChannels()-1 {
		t.Errorf("last frequency maps to %d, want %d", idx, scan.NumCoarseChannels()-1)
	}
}
