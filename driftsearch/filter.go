package driftsearch

import (
	"math"

	"github.com/hb9tf/bliss/core"
)

// FilterOptions configures filter_hits' independent post-filter toggles
// (spec section 4.6 / original_source/bliss/drift_search/filter_hits.cpp).
// Each threshold is a fraction of a hit's IntegratedChannels; a zero
// threshold disables that filter.
type FilterOptions struct {
	RejectZeroDrift bool

	MinimumPercentSigmaClip float64
	MinimumPercentHighSK    float64
	MinimumPercentLowSK     float64
}

const zeroDriftEpsilon = 1e-6

// FilterHits drops hits that fail any enabled post-filter, per hit
// independently.
func FilterHits(hits []core.Hit, opts FilterOptions) []core.Hit {
	out := make([]core.Hit, 0, len(hits))
	for _, h := range hits {
		if opts.RejectZeroDrift && math.Abs(h.DriftRateHzPerSec) < zeroDriftEpsilon {
			continue
		}
		if fails(opts.MinimumPercentSigmaClip, float64(h.RFICounts.SigmaClip), h.IntegratedChannels) {
			continue
		}
		if fails(opts.MinimumPercentHighSK, float64(h.RFICounts.HighSpectralKurtosis), h.IntegratedChannels) {
			continue
		}
		if fails(opts.MinimumPercentLowSK, float64(h.RFICounts.LowSpectralKurtosis), h.IntegratedChannels) {
			continue
		}
		out = append(out, h)
	}
	return out
}

// fails reports whether count is below minimumPercent of integratedChannels,
// when the filter is enabled (minimumPercent > 0).
func fails(minimumPercent, count float64, integratedChannels int64) bool {
	if minimumPercent <= 0 {
		return false
	}
	return count < minimumPercent*math.Abs(float64(integratedChannels))
}
