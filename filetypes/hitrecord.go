package filetypes

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hb9tf/bliss/core"
)

// hitRecordMagic tags the start of a Hit wire record, letting a reader
// fail fast on a corrupt or foreign stream instead of misreading binary
// garbage as a Hit.
const hitRecordMagic uint32 = 0x424c4948 // "BLIH"

// WriteHit encodes one Hit to w as a fixed-layout binary record matching
// the field set and widths of the Cap'n Proto envelope in spec section 6:
// every integer field round-trips bit-for-bit, every float field within
// its declared width.
func WriteHit(w io.Writer, h core.Hit) error {
	fields := []any{
		hitRecordMagic,
		h.StartFreqIndex,
		float32(h.StartFreqMHz),
		h.StartTimeSec,
		h.DurationSec,
		h.RateIndex,
		float32(h.DriftRateHzPerSec),
		float32(h.Power),
		h.TimeSpanSteps,
		float32(h.SNR),
		h.Bandwidth,
		h.BinWidth,
		uint8(clampByte(h.RFICounts.LowSpectralKurtosis)),
		uint8(clampByte(h.RFICounts.HighSpectralKurtosis)),
		uint8(clampByte(h.RFICounts.SigmaClip)),
		h.CoarseChannelNumber,
		h.IntegratedChannels,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return fmt.Errorf("write hit record: %w", core.ErrIOFailure)
		}
	}
	return nil
}

// ReadHit decodes one Hit record written by WriteHit.
func ReadHit(r io.Reader) (core.Hit, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return core.Hit{}, fmt.Errorf("read hit record magic: %w", core.ErrIOFailure)
	}
	if magic != hitRecordMagic {
		return core.Hit{}, fmt.Errorf("read hit record: bad magic %#x: %w", magic, core.ErrIOFailure)
	}

	var (
		startFreqIndex      int64
		startFreqMHz        float32
		startTimeSec        float64
		durationSec         float64
		rateIndex           int64
		driftRateHzPerSec   float32
		power               float32
		timeSpanSteps       int64
		snr                 float32
		bandwidth           float64
		binWidth            int64
		lowSK, highSK, clip uint8
		coarseChannelNumber int64
		integratedChannels  int64
	)
	fields := []any{
		&startFreqIndex, &startFreqMHz, &startTimeSec, &durationSec,
		&rateIndex, &driftRateHzPerSec, &power, &timeSpanSteps, &snr,
		&bandwidth, &binWidth, &lowSK, &highSK, &clip,
		&coarseChannelNumber, &integratedChannels,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return core.Hit{}, fmt.Errorf("read hit record field: %w", core.ErrIOFailure)
		}
	}

	return core.Hit{
		StartFreqIndex:      startFreqIndex,
		StartFreqMHz:        float64(startFreqMHz),
		StartTimeSec:        startTimeSec,
		DurationSec:         durationSec,
		RateIndex:           rateIndex,
		DriftRateHzPerSec:   float64(driftRateHzPerSec),
		Power:               float64(power),
		TimeSpanSteps:       timeSpanSteps,
		IntegratedChannels:  integratedChannels,
		SNR:                 float64(snr),
		Bandwidth:           bandwidth,
		BinWidth:            binWidth,
		RFICounts: core.RFICounts{
			LowSpectralKurtosis:  int64(lowSK),
			HighSpectralKurtosis: int64(highSK),
			SigmaClip:            int64(clip),
		},
		CoarseChannelNumber: coarseChannelNumber,
	}, nil
}

// WriteHits writes a length-prefixed sequence of hits, the envelope a
// coarse channel or scan's hit list round-trips through.
func WriteHits(w io.Writer, hits []core.Hit) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(hits))); err != nil {
		return fmt.Errorf("write hit count: %w", core.ErrIOFailure)
	}
	for _, h := range hits {
		if err := WriteHit(w, h); err != nil {
			return err
		}
	}
	return nil
}

// ReadHits reads back a sequence written by WriteHits.
func ReadHits(r io.Reader) ([]core.Hit, error) {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("read hit count: %w", core.ErrIOFailure)
	}
	hits := make([]core.Hit, 0, count)
	for i := uint32(0); i < count; i++ {
		h, err := ReadHit(r)
		if err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// clampByte saturates a possibly-overflowing RFI count to fit the
// wire record's single-byte field, matching the spec's u8 width.
func clampByte(v int64) int64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
