package driftsearch

import (
	"fmt"
	"math"

	"github.com/hb9tf/bliss/core"
)

// Method selects the hit-detection algorithm.
type Method int

const (
	MethodLocalMaxima Method = iota
	MethodConnectedComponents
)

// SearchOptions configures hit search over a Frequency Drift Plane.
type SearchOptions struct {
	Method         Method
	SNRThreshold   float64
	NeighborL1Dist int
	// DetachGraph is accepted for interface parity with the drift-plane
	// backend selection; the CPU implementation here has no graph to
	// detach and ignores it.
	DetachGraph bool
}

type protoHit struct {
	peakK, peakF   int
	peakPower      float64
	cells          []cellCoord
	weightedFreqF  float64
	weightedWeight float64
	binWidth       int64
	rfi            core.RFICounts
}

type cellCoord struct {
	k, f int
}

// Search runs hit search over plane using noise as the per-channel noise
// model, returning the physically-characterised hits owned by
// coarseChannelNumber.
func Search(plane *core.FrequencyDriftPlane, noise core.NoiseStats, cc *core.CoarseChannel, coarseChannelNumber int64, opts SearchOptions) ([]core.Hit, error) {
	if plane == nil || plane.Power == nil {
		return nil, fmt.Errorf("hit search: nil drift plane")
	}

	sigmas := perDriftSigma(plane, noise)

	var proto []protoHit
	switch opts.Method {
	case MethodConnectedComponents:
		proto = connectedComponents(plane, noise, sigmas, opts)
	default:
		proto = localMaxima(plane, noise, sigmas, opts)
	}

	hits := make([]core.Hit, 0, len(proto))
	for _, p := range proto {
		hits = append(hits, physicalMapping(plane, noise, sigmas, p, cc, coarseChannelNumber))
	}
	return hits, nil
}

// AddSearch registers Search as cc's hits producer, drawing the drift
// plane and noise estimate that must already be available on cc.
func AddSearch(cc *core.CoarseChannel, coarseChannelNumber int64, opts SearchOptions) {
	cc.SetHitsProducer(func() ([]core.Hit, error) {
		plane, err := cc.IntegratedDriftPlane()
		if err != nil {
			return nil, fmt.Errorf("hit search: %w", err)
		}
		noise, ok := cc.NoiseEstimate()
		if !ok {
			return nil, fmt.Errorf("hit search: no noise estimate on channel: %w", core.ErrNotComputed)
		}
		return Search(plane, noise, cc, coarseChannelNumber, opts)
	})
}

// perDriftSigma computes sigma_k = noise_amplitude * sqrt(desmear_k * T)
// for every drift row (spec section 4.6).
func perDriftSigma(plane *core.FrequencyDriftPlane, noise core.NoiseStats) []float64 {
	amp := noise.NoiseAmplitude()
	T := float64(plane.IntegrationSteps)
	sigmas := make([]float64, plane.NumDrifts())
	for k, d := range plane.DriftRates {
		sigmas[k] = amp * math.Sqrt(float64(d.DesmearBins)*T)
	}
	return sigmas
}

func snrAt(plane *core.FrequencyDriftPlane, noise core.NoiseStats, sigmas []float64, k, f int) float64 {
	sigma := sigmas[k]
	if sigma == 0 {
		return 0
	}
	return (plane.Power.At(k, f) - noise.NoiseFloor) / sigma
}

func localMaxima(plane *core.FrequencyDriftPlane, noise core.NoiseStats, sigmas []float64, opts SearchOptions) []protoHit {
	K := plane.NumDrifts()
	F := plane.Power.Cols
	radius := opts.NeighborL1Dist

	var out []protoHit
	for k := 0; k < K; k++ {
		for f := 0; f < F; f++ {
			snr := snrAt(plane, noise, sigmas, k, f)
			if snr < opts.SNRThreshold {
				continue
			}
			if !isLocalMax(plane, k, f, radius, K, F) {
				continue
			}
			out = append(out, protoHit{
				peakK:     k,
				peakF:     f,
				peakPower: plane.Power.At(k, f),
				cells:     []cellCoord{{k, f}},
				binWidth:  1,
				rfi:       rfiAt(plane, k, f),
			})
		}
	}
	return out
}

// isLocalMax reports whether (k,f) is >= every cell within L1 distance
// radius, ties resolved in favour of the lexicographically-smaller cell.
func isLocalMax(plane *core.FrequencyDriftPlane, k, f, radius, K, F int) bool {
	center := plane.Power.At(k, f)
	for dk := -radius; dk <= radius; dk++ {
		remaining := radius - absInt(dk)
		for df := -remaining; df <= remaining; df++ {
			if dk == 0 && df == 0 {
				continue
			}
			nk, nf := k+dk, f+df
			if nk < 0 || nk >= K || nf < 0 || nf >= F {
				continue
			}
			other := plane.Power.At(nk, nf)
			if other > center {
				return false
			}
			if other == center && lexLess(nk, nf, k, f) {
				return false
			}
		}
	}
	return true
}

func lexLess(k1, f1, k2, f2 int) bool {
	if k1 != k2 {
		return k1 < k2
	}
	return f1 < f2
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func rfiAt(plane *core.FrequencyDriftPlane, k, f int) core.RFICounts {
	var c core.RFICounts
	if plane.Flags.LowSpectralKurtosis != nil {
		c.LowSpectralKurtosis = int64(plane.Flags.LowSpectralKurtosis.At(k, f))
	}
	if plane.Flags.HighSpectralKurtosis != nil {
		c.HighSpectralKurtosis = int64(plane.Flags.HighSpectralKurtosis.At(k, f))
	}
	if plane.Flags.SigmaClip != nil {
		c.SigmaClip = int64(plane.Flags.SigmaClip.At(k, f))
	}
	return c
}

func connectedComponents(plane *core.FrequencyDriftPlane, noise core.NoiseStats, sigmas []float64, opts SearchOptions) []protoHit {
	K := plane.NumDrifts()
	F := plane.Power.Cols
	radius := opts.NeighborL1Dist
	if radius < 1 {
		radius = 1
	}

	detected := make([]bool, K*F)
	idx := func(k, f int) int { return k*F + f }
	for k := 0; k < K; k++ {
		for f := 0; f < F; f++ {
			if snrAt(plane, noise, sigmas, k, f) >= opts.SNRThreshold {
				detected[idx(k, f)] = true
			}
		}
	}

	visited := make([]bool, K*F)
	var out []protoHit
	for k := 0; k < K; k++ {
		for f := 0; f < F; f++ {
			if !detected[idx(k, f)] || visited[idx(k, f)] {
				continue
			}
			cells := floodFill(plane, detected, visited, k, f, K, F, radius)
			out = append(out, buildComponentHit(plane, cells))
		}
	}
	return out
}

func floodFill(plane *core.FrequencyDriftPlane, detected, visited []bool, startK, startF, K, F, radius int) []cellCoord {
	idx := func(k, f int) int { return k*F + f }
	stack := []cellCoord{{startK, startF}}
	visited[idx(startK, startF)] = true
	var cells []cellCoord

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cells = append(cells, c)

		for dk := -radius; dk <= radius; dk++ {
			remaining := radius - absInt(dk)
			for df := -remaining; df <= remaining; df++ {
				if dk == 0 && df == 0 {
					continue
				}
				nk, nf := c.k+dk, c.f+df
				if nk < 0 || nk >= K || nf < 0 || nf >= F {
					continue
				}
				if !detected[idx(nk, nf)] || visited[idx(nk, nf)] {
					continue
				}
				visited[idx(nk, nf)] = true
				stack = append(stack, cellCoord{nk, nf})
			}
		}
	}
	return cells
}

func buildComponentHit(plane *core.FrequencyDriftPlane, cells []cellCoord) protoHit {
	p := protoHit{cells: cells}
	minF, maxF := cells[0].f, cells[0].f
	var weightedF, weightSum float64
	var rfi core.RFICounts

	for i, c := range cells {
		power := plane.Power.At(c.k, c.f)
		if i == 0 || power > p.peakPower {
			p.peakPower = power
			p.peakK = c.k
			p.peakF = c.f
		}
		if c.f < minF {
			minF = c.f
		}
		if c.f > maxF {
			maxF = c.f
		}
		weightedF += float64(c.f) * power
		weightSum += power

		cellRFI := rfiAt(plane, c.k, c.f)
		rfi.LowSpectralKurtosis += cellRFI.LowSpectralKurtosis
		rfi.HighSpectralKurtosis += cellRFI.HighSpectralKurtosis
		rfi.SigmaClip += cellRFI.SigmaClip
	}

	p.binWidth = int64(maxF-minF) + 1
	p.rfi = rfi
	if weightSum != 0 {
		p.weightedFreqF = weightedF / weightSum
		p.weightedWeight = weightSum
	} else {
		p.weightedFreqF = float64(p.peakF)
	}
	return p
}

// physicalMapping converts a proto-hit into a Hit with physical units,
// per spec section 4.6.
func physicalMapping(plane *core.FrequencyDriftPlane, noise core.NoiseStats, sigmas []float64, p protoHit, cc *core.CoarseChannel, coarseChannelNumber int64) core.Hit {
	drift := plane.DriftRates[p.peakK]
	sigma := sigmas[p.peakK]

	// Refine the reported start frequency at the component centroid,
	// falling back to the peak cell for a single-cell (LOCAL_MAXIMA) hit.
	freqBin := p.weightedFreqF
	if freqBin == 0 && p.weightedWeight == 0 {
		freqBin = float64(p.peakF)
	}

	power := p.peakPower - noise.NoiseFloor
	snr := 0.0
	if sigma != 0 {
		snr = power / sigma
	}

	return core.Hit{
		StartFreqIndex:      int64(p.peakF),
		StartFreqMHz:        cc.Fch1() + cc.Foff()*freqBin,
		StartTimeSec:        cc.Metadata.TstartSeconds(),
		DurationSec:         cc.Tsamp() * float64(plane.IntegrationSteps),
		RateIndex:           int64(p.peakK),
		DriftRateHzPerSec:   drift.DriftRateHzPerSec,
		Power:               power,
		TimeSpanSteps:       plane.IntegrationSteps,
		IntegratedChannels:  int64(drift.DesmearBins) * plane.IntegrationSteps,
		SNR:                 snr,
		Bandwidth:           float64(p.binWidth) * math.Abs(cc.Foff()*1e6),
		BinWidth:            p.binWidth,
		RFICounts:           p.rfi,
		CoarseChannelNumber: coarseChannelNumber,
	}
}
