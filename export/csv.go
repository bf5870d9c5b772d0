package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/hb9tf/bliss/core"
)

// CSV writes hits and events to stdout as CSV, one call per result kind.
type CSV struct{}

func (c *CSV) WriteHits(ctx context.Context, hits <-chan core.Hit) error {
	w := csv.NewWriter(os.Stdout)
	w.Write([]string{
		"CoarseChannelNumber",
		"StartFreqIndex",
		"StartFreqMHz",
		"StartTimeSec",
		"DurationSec",
		"RateIndex",
		"DriftRateHzPerSec",
		"Power",
		"SNR",
		"Bandwidth",
		"BinWidth",
		"IntegratedChannels",
	})

	for h := range hits {
		if err := w.Write([]string{
			fmt.Sprintf("%d", h.CoarseChannelNumber),
			fmt.Sprintf("%d", h.StartFreqIndex),
			fmt.Sprintf("%f", h.StartFreqMHz),
			fmt.Sprintf("%f", h.StartTimeSec),
			fmt.Sprintf("%f", h.DurationSec),
			fmt.Sprintf("%d", h.RateIndex),
			fmt.Sprintf("%f", h.DriftRateHzPerSec),
			fmt.Sprintf("%f", h.Power),
			fmt.Sprintf("%f", h.SNR),
			fmt.Sprintf("%f", h.Bandwidth),
			fmt.Sprintf("%d", h.BinWidth),
			fmt.Sprintf("%d", h.IntegratedChannels),
		}); err != nil {
			glog.Warningf("error while writing CSV line: %s\n", err)
		}

		w.Flush()
		if err := w.Error(); err != nil {
			glog.Warningf("error flushing CSV: %s\n", err)
		}
	}
	return nil
}

func (c *CSV) WriteEvents(ctx context.Context, events <-chan core.Event) error {
	w := csv.NewWriter(os.Stdout)
	w.Write([]string{
		"HitCount",
		"StartingFrequencyHz",
		"EventStartSeconds",
		"EventEndSeconds",
		"AveragePower",
		"AverageBandwidth",
		"AverageSNR",
		"AverageDriftRateHzPerSec",
	})

	for e := range events {
		if err := w.Write([]string{
			fmt.Sprintf("%d", len(e.Hits)),
			fmt.Sprintf("%f", e.StartingFrequencyHz),
			fmt.Sprintf("%f", e.EventStartSeconds),
			fmt.Sprintf("%f", e.EventEndSeconds),
			fmt.Sprintf("%f", e.AveragePower),
			fmt.Sprintf("%f", e.AverageBandwidth),
			fmt.Sprintf("%f", e.AverageSNR),
			fmt.Sprintf("%f", e.AverageDriftRateHzPerSec),
		}); err != nil {
			glog.Warningf("error while writing CSV line: %s\n", err)
		}

		w.Flush()
		if err := w.Error(); err != nil {
			glog.Warningf("error flushing CSV: %s\n", err)
		}
	}
	return nil
}
