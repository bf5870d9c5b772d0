// Package noise implements the per-channel noise estimators of the
// pipeline (spec section 4.4): a plain mean/variance estimator and a
// median-absolute-deviation estimator, either over every sample or only
// samples the mask leaves unflagged.
package noise

import (
	"fmt"
	"math"
	"sort"

	"github.com/hb9tf/bliss/core"
)

// Method selects the noise estimator.
type Method int

const (
	MethodStandard Method = iota
	MethodMAD
)

// Options configures the noise estimator.
type Options struct {
	Method Method
	// Masked excludes samples flagged in the channel's mask.
	Masked bool
}

// madScaleFactor converts the median absolute deviation of a normal
// distribution into an estimate of its standard deviation.
const madScaleFactor = 1.4826

// Estimate computes cc's NoiseStats and installs it via
// cc.SetNoiseEstimate. Fails with core.ErrDataInsufficient if fewer than
// two unflagged samples remain.
func Estimate(cc *core.CoarseChannel, opts Options) (core.NoiseStats, error) {
	data, err := cc.Data()
	if err != nil {
		return core.NoiseStats{}, fmt.Errorf("noise estimate: %w", err)
	}

	var samples []float64
	if opts.Masked {
		mask, err := cc.EnsureMask()
		if err != nil {
			return core.NoiseStats{}, fmt.Errorf("noise estimate: %w", err)
		}
		samples = make([]float64, 0, len(data.Data))
		for r := 0; r < data.Rows; r++ {
			for c := 0; c < data.Cols; c++ {
				if !mask.IsFlagged(r, c) {
					samples = append(samples, data.At(r, c))
				}
			}
		}
	} else {
		samples = data.Data
	}

	if len(samples) < 2 {
		return core.NoiseStats{}, fmt.Errorf("noise estimate: only %d unflagged samples: %w", len(samples), core.ErrDataInsufficient)
	}

	var stats core.NoiseStats
	switch opts.Method {
	case MethodMAD:
		stats = madEstimate(samples)
	default:
		stats = standardEstimate(samples)
	}
	cc.SetNoiseEstimate(stats)
	return stats, nil
}

func standardEstimate(samples []float64) core.NoiseStats {
	var sum float64
	for _, v := range samples {
		sum += v
	}
	mean := sum / float64(len(samples))

	var variance float64
	for _, v := range samples {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(samples))

	return core.NoiseStats{NoiseFloor: mean, NoisePower: variance}
}

func madEstimate(samples []float64) core.NoiseStats {
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)
	median := percentileSorted(sorted)

	deviations := make([]float64, len(samples))
	for i, v := range samples {
		deviations[i] = math.Abs(v - median)
	}
	sort.Float64s(deviations)
	mad := percentileSorted(deviations)

	sigma := madScaleFactor * mad
	return core.NoiseStats{NoiseFloor: median, NoisePower: sigma * sigma}
}

// AddEstimate registers Estimate as a pipeline stage on scan, so every
// freshly loaded channel gets a noise estimate before drift integration
// runs.
func AddEstimate(scan *core.Scan, opts Options) {
	scan.AddCoarseChannelTransform(func(cc *core.CoarseChannel) (*core.CoarseChannel, error) {
		if _, err := Estimate(cc, opts); err != nil {
			return nil, err
		}
		return cc, nil
	}, "noise estimate")
}

// percentileSorted returns the median of an already-sorted slice.
func percentileSorted(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
