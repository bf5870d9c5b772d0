package preprocess

import (
	"fmt"
	"math"

	"github.com/hb9tf/bliss/core"
)

// MagnitudeOptions configures the magnitude flagger. A zero Threshold
// requests the automatic threshold: mean + 10*stddev of the channel.
type MagnitudeOptions struct {
	Threshold float64
}

// FlagMagnitude ORs FlagMagnitude into the mask wherever power exceeds
// opts.Threshold (or the automatic mean+10*stddev threshold).
func FlagMagnitude(cc *core.CoarseChannel, opts MagnitudeOptions) (*core.CoarseChannel, error) {
	data, err := cc.Data()
	if err != nil {
		return nil, fmt.Errorf("magnitude flag: %w", err)
	}
	mask, err := cc.EnsureMask()
	if err != nil {
		return nil, fmt.Errorf("magnitude flag: %w", err)
	}

	threshold := opts.Threshold
	if threshold == 0 {
		mean, stddev := meanStddev(data.Data)
		threshold = mean + 10*stddev
	}

	for t := 0; t < data.Rows; t++ {
		for f := 0; f < data.Cols; f++ {
			if data.At(t, f) > threshold {
				mask.Or(t, f, core.FlagMagnitude)
			}
		}
	}
	return cc, nil
}

// AddMagnitudeFlag registers FlagMagnitude as a pipeline stage on scan.
func AddMagnitudeFlag(scan *core.Scan, opts MagnitudeOptions) {
	scan.AddCoarseChannelTransform(func(cc *core.CoarseChannel) (*core.CoarseChannel, error) {
		return FlagMagnitude(cc, opts)
	}, "magnitude flag")
}

func meanStddev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
