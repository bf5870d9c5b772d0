package event

import "github.com/hb9tf/bliss/core"

// acceptDistance is the distance threshold below which a candidate hit
// is considered part of an event's trajectory (spec section 4.7).
const acceptDistance = 50.0

// Search runs event search over a cadence whose scans already have
// hits populated (spec section 4.7): it groups ON-scan hits into
// trajectories and rejects any trajectory that also appears in an OFF
// scan. An empty cadence returns no events; ON scans with no hits are
// simply skipped; a cadence with no OFF targets still requires
// multi-scan persistence to accept an event.
func Search(cadence *core.Cadence) []core.Event {
	onTarget := cadence.OnTarget()
	if onTarget == nil || len(onTarget.Scans) == 0 {
		return nil
	}

	pool := newHitPool(onTarget.Scans, cadence.OffTargets())

	var events []core.Event
	for i := range pool.onScans {
		for {
			seedIdx, ok := pool.takeNext(i)
			if !ok {
				break
			}
			members := []int{seedIdx}
			for j := i + 1; j < len(pool.onScans); j++ {
				next, found := pool.closestWithin(j, members, acceptDistance)
				if !found {
					continue
				}
				members = append(members, next)
				pool.remove(j, next)
			}

			if len(members) < 2 {
				continue
			}
			if pool.offAppearanceCount(members, acceptDistance) != 0 {
				continue
			}
			events = append(events, buildEvent(pool.hits, members))
		}
	}
	return events
}

// hitPool flattens every ON and OFF hit into one slice (so distances can
// be memoised by index) and tracks which indices remain available for
// each ON scan and for the OFF pool.
type hitPool struct {
	hits  []core.Hit
	cache *distanceCache

	onScans [][]int // per ON scan, remaining candidate indices
	off     []int   // remaining OFF indices (never consumed)
}

func newHitPool(onScans []*core.Scan, offTargets []*core.ObservationTarget) *hitPool {
	var hits []core.Hit
	onIndices := make([][]int, len(onScans))
	for i, scan := range onScans {
		for _, h := range scan.Hits() {
			onIndices[i] = append(onIndices[i], len(hits))
			hits = append(hits, h)
		}
	}

	var offIndices []int
	for _, target := range offTargets {
		for _, scan := range target.Scans {
			for _, h := range scan.Hits() {
				offIndices = append(offIndices, len(hits))
				hits = append(hits, h)
			}
		}
	}

	return &hitPool{
		hits:    hits,
		cache:   newDistanceCache(hits),
		onScans: onIndices,
		off:     offIndices,
	}
}

// takeNext removes and returns an arbitrary remaining hit index from ON
// scan i's pool.
func (p *hitPool) takeNext(scan int) (int, bool) {
	pool := p.onScans[scan]
	if len(pool) == 0 {
		return 0, false
	}
	idx := pool[0]
	p.onScans[scan] = pool[1:]
	return idx, true
}

// closestWithin finds the hit in ON scan j minimising its own distance
// to the closest already-contained member of the growing event,
// accepting it only if that distance is below threshold.
func (p *hitPool) closestWithin(scan int, members []int, threshold float64) (int, bool) {
	best := -1
	bestDist := 0.0
	for _, candidate := range p.onScans[scan] {
		d := p.minDistance(candidate, members)
		if best == -1 || d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	if best == -1 || bestDist >= threshold {
		return 0, false
	}
	return best, true
}

// minDistance returns the smallest distance from candidate to any hit
// already in members.
func (p *hitPool) minDistance(candidate int, members []int) float64 {
	best := p.cache.distance(candidate, members[0])
	for _, m := range members[1:] {
		if d := p.cache.distance(candidate, m); d < best {
			best = d
		}
	}
	return best
}

func (p *hitPool) meanDistance(candidate int, members []int) float64 {
	var sum float64
	for _, m := range members {
		sum += p.cache.distance(candidate, m)
	}
	return sum / float64(len(members))
}

// remove deletes idx from ON scan j's remaining pool.
func (p *hitPool) remove(scan, idx int) {
	pool := p.onScans[scan]
	for i, v := range pool {
		if v == idx {
			p.onScans[scan] = append(pool[:i], pool[i+1:]...)
			return
		}
	}
}

// offAppearanceCount counts OFF hits whose mean distance to every event
// member falls below threshold.
func (p *hitPool) offAppearanceCount(members []int, threshold float64) int {
	count := 0
	for _, off := range p.off {
		if p.meanDistance(off, members) < threshold {
			count++
		}
	}
	return count
}

func buildEvent(hits []core.Hit, members []int) core.Event {
	memberHits := make([]core.Hit, len(members))
	for i, idx := range members {
		memberHits[i] = hits[idx]
	}
	ev := core.Event{
		Hits:                memberHits,
		StartingFrequencyHz: memberHits[0].StartFreqMHz * 1e6,
		EventStartSeconds:   memberHits[0].StartTimeSec,
		EventEndSeconds:     memberHits[0].EndTimeSec(),
	}
	for _, h := range memberHits[1:] {
		if h.StartTimeSec < ev.EventStartSeconds {
			ev.EventStartSeconds = h.StartTimeSec
		}
		if h.EndTimeSec() > ev.EventEndSeconds {
			ev.EventEndSeconds = h.EndTimeSec()
		}
	}
	ev.FinalizeAverages()
	return ev
}
