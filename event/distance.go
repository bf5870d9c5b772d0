// Package event implements cadence event search (spec section 4.7): the
// across-scan trajectory matching that groups hits from multiple ON
// scans into persistent Events and rejects anything that also appears
// in an OFF scan.
package event

import (
	"math"

	"github.com/hb9tf/bliss/core"
)

// distanceEpsilon guards the drift-error denominator against a division
// by zero when both hits have zero drift rate.
const distanceEpsilon = 1e-12

// rendezvousFreq projects a hit's frequency to time t using its linear
// drift model f(t) = f0 + rate*(t - t0).
func rendezvousFreq(h core.Hit, t float64) float64 {
	return h.StartFreqMHz*1e6 + h.DriftRateHzPerSec*(t-h.StartTimeSec)
}

// distance computes the spec section 4.7 distance metric between two
// hits: a frequency-rendezvous term plus a drift-rate-disagreement term.
//
// The original's distance_func derives one end time as
// `a.duration_sec + b.start_time_sec`; this implements the reading
// recommended in spec section 9 instead: `max(a.end, b.end)` with
// `end = start + duration`, consistent with the surrounding trajectory
// arithmetic.
func distance(a, b core.Hit) float64 {
	start := math.Min(a.StartTimeSec, b.StartTimeSec)
	end := math.Max(a.EndTimeSec(), b.EndTimeSec())
	trv := (start + end) / 2

	deltaFrv := math.Abs(rendezvousFreq(a, trv) - rendezvousFreq(b, trv))

	ra, rb := a.DriftRateHzPerSec, b.DriftRateHzPerSec
	driftError := (ra - rb) * (ra - rb) / (distanceEpsilon + ra*ra + rb*rb)
	driftError = driftError * driftError

	return 0.01*deltaFrv + 10*driftError
}

// pairKey is an unordered pair of hit identities used to memoise
// distance() calls within a single event-search invocation. Hits are
// identified by their position in the flattened candidate pool the
// caller maintains, not by value, since two distinct hits may compare
// equal.
type pairKey struct {
	a, b int
}

func newPairKey(i, j int) pairKey {
	if i <= j {
		return pairKey{i, j}
	}
	return pairKey{j, i}
}

// distanceCache memoises distance() by unordered hit-index pair. Owned
// by a single Search invocation; never shared across calls (spec
// section 5).
type distanceCache struct {
	hits  []core.Hit
	cache map[pairKey]float64
}

func newDistanceCache(hits []core.Hit) *distanceCache {
	return &distanceCache{hits: hits, cache: map[pairKey]float64{}}
}

func (d *distanceCache) distance(i, j int) float64 {
	key := newPairKey(i, j)
	if v, ok := d.cache[key]; ok {
		return v
	}
	v := distance(d.hits[i], d.hits[j])
	d.cache[key] = v
	return v
}
