package preprocess

import (
	"fmt"
	"math"

	"github.com/hb9tf/bliss/core"
)

// SigmaClipOptions configures the iterative sigma-clip flagger.
type SigmaClipOptions struct {
	MaxIterations int     // default 5 when zero
	LowerSigma    float64 // default 3 when zero
	UpperSigma    float64 // default 4 when zero
}

func (o SigmaClipOptions) withDefaults() SigmaClipOptions {
	if o.MaxIterations == 0 {
		o.MaxIterations = 5
	}
	if o.LowerSigma == 0 {
		o.LowerSigma = 3
	}
	if o.UpperSigma == 0 {
		o.UpperSigma = 4
	}
	return o
}

// FlagSigmaClip iteratively clips outliers: each iteration recomputes
// mean/stddev over samples not yet flagged by this stage, then flags
// anything outside [mean - lower*stddev, mean + upper*stddev]. Stops
// early when an iteration flags nothing new. ORs FlagSigmaClip.
func FlagSigmaClip(cc *core.CoarseChannel, opts SigmaClipOptions) (*core.CoarseChannel, error) {
	opts = opts.withDefaults()

	data, err := cc.Data()
	if err != nil {
		return nil, fmt.Errorf("sigma clip flag: %w", err)
	}
	mask, err := cc.EnsureMask()
	if err != nil {
		return nil, fmt.Errorf("sigma clip flag: %w", err)
	}

	clipped := make([]bool, len(data.Data))
	for iter := 0; iter < opts.MaxIterations; iter++ {
		var sum float64
		var n int
		for i, v := range data.Data {
			if clipped[i] {
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			break
		}
		mean := sum / float64(n)

		var variance float64
		for i, v := range data.Data {
			if clipped[i] {
				continue
			}
			d := v - mean
			variance += d * d
		}
		variance /= float64(n)
		stddev := math.Sqrt(variance)

		lowerBound := mean - opts.LowerSigma*stddev
		upperBound := mean + opts.UpperSigma*stddev

		changed := false
		for i, v := range data.Data {
			if clipped[i] {
				continue
			}
			if v < lowerBound || v > upperBound {
				clipped[i] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for i, isClipped := range clipped {
		if !isClipped {
			continue
		}
		mask.Data[i] |= uint8(core.FlagSigmaClip)
	}
	return cc, nil
}

// AddSigmaClipFlag registers FlagSigmaClip as a pipeline stage on scan.
func AddSigmaClipFlag(scan *core.Scan, opts SigmaClipOptions) {
	scan.AddCoarseChannelTransform(func(cc *core.CoarseChannel) (*core.CoarseChannel, error) {
		return FlagSigmaClip(cc, opts)
	}, "sigma clip flag")
}
