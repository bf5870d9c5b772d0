// Package driftsearch implements the de-Doppler drift integration and hit
// search stages of the pipeline (spec sections 4.5 and 4.6): summing
// power along hypothesised linear drift trajectories, then finding and
// physically characterising the peaks in that search volume.
package driftsearch

import (
	"fmt"
	"math"

	"github.com/hb9tf/bliss/core"
)

// IntegrateOptions configures drift integration.
type IntegrateOptions struct {
	LowRateHzPerSec  float64
	HighRateHzPerSec float64
	Resolution       float64 // drift step, in units of the unit drift resolution
	Desmear          bool
}

// Integrate runs the linear-rounded-sum kernel described in spec section
// 4.5 over cc's power and mask tensors, producing a FrequencyDriftPlane.
func Integrate(cc *core.CoarseChannel, opts IntegrateOptions) (*core.FrequencyDriftPlane, error) {
	data, err := cc.Data()
	if err != nil {
		return nil, fmt.Errorf("drift integrate: %w", err)
	}
	mask, err := cc.EnsureMask()
	if err != nil {
		return nil, fmt.Errorf("drift integrate: %w", err)
	}
	if data.Rows != mask.Rows || data.Cols != mask.Cols {
		return nil, fmt.Errorf("drift integrate: power shape (%d,%d) != mask shape (%d,%d): %w",
			data.Rows, data.Cols, mask.Rows, mask.Cols, core.ErrInconsistentShape)
	}

	T := data.Rows
	F := data.Cols
	if T < 2 {
		return nil, fmt.Errorf("drift integrate: need at least 2 time steps, got %d: %w", T, core.ErrInconsistentShape)
	}

	deltaFHz := cc.Foff() * 1e6
	tau := cc.Tsamp()
	unitDrift := deltaFHz / (float64(T-1) * tau)

	drifts := computeDriftRates(opts, unitDrift, T, tau, deltaFHz)

	power := core.NewMatrix(len(drifts), F)
	lowSK := core.NewMatrix(len(drifts), F)
	highSK := core.NewMatrix(len(drifts), F)
	sigmaClip := core.NewMatrix(len(drifts), F)

	for _, drift := range drifts {
		integrateOneDrift(data, mask, drift, power, lowSK, highSK, sigmaClip)
	}

	plane := &core.FrequencyDriftPlane{
		Power: power,
		Flags: core.FlagCounts{
			LowSpectralKurtosis:  lowSK,
			HighSpectralKurtosis: highSK,
			SigmaClip:            sigmaClip,
		},
		IntegrationSteps: int64(T),
		DriftRates:       drifts,
		Device:           cc.Device,
	}
	return plane, nil
}

// AddIntegrate registers Integrate as the drift-plane producer for cc.
func AddIntegrate(cc *core.CoarseChannel, opts IntegrateOptions) {
	cc.SetDriftPlaneProducer(func() (*core.FrequencyDriftPlane, error) {
		return Integrate(cc, opts)
	})
}

func computeDriftRates(opts IntegrateOptions, unitDrift float64, T int, tau, deltaFHz float64) []core.DriftRateInfo {
	step := unitDrift * opts.Resolution
	low := roundToMultiple(opts.LowRateHzPerSec, unitDrift)
	high := roundToMultiple(opts.HighRateHzPerSec, unitDrift)
	if low > high {
		low, high = high, low
	}
	if step == 0 {
		step = unitDrift
	}
	if step < 0 {
		step = -step
	}

	var drifts []core.DriftRateInfo
	row := 0
	for r := low; r <= high+step/2; r += step {
		span := int(math.RoundToEven(r * float64(T-1) * tau / deltaFHz))
		slope := float64(span) / float64(T-1)
		desmear := 1
		if opts.Desmear {
			desmear = int(math.RoundToEven(math.Abs(slope)))
			if desmear < 1 {
				desmear = 1
			}
		}
		drifts = append(drifts, core.DriftRateInfo{
			Row:               row,
			SlopeBinsPerStep:  slope,
			DriftRateHzPerSec: r,
			ChannelSpan:       span,
			DesmearBins:       desmear,
		})
		row++
	}
	return drifts
}

func roundToMultiple(v, unit float64) float64 {
	if unit == 0 {
		return v
	}
	return math.RoundToEven(v/unit) * unit
}

// integrateOneDrift fills row drift.Row of power/lowSK/highSK/sigmaClip by
// summing along the drift's linear trajectory, excluding any (k,f) cell
// whose path would leave the frequency axis rather than wrapping it.
func integrateOneDrift(data *core.Matrix, mask *core.MaskMatrix, drift core.DriftRateInfo, power, lowSK, highSK, sigmaClip *core.Matrix) {
	T := data.Rows
	F := data.Cols
	desmear := drift.DesmearBins
	if desmear < 1 {
		desmear = 1
	}

	for f := 0; f < F; f++ {
		var sum float64
		var lowCount, highCount, clipCount float64
		inBounds := true

		for t := 0; t < T; t++ {
			base := f + int(math.RoundToEven(drift.SlopeBinsPerStep*float64(t)))
			if base < 0 || base+desmear-1 >= F {
				inBounds = false
				break
			}
			var stepSum float64
			for d := 0; d < desmear; d++ {
				col := base + d
				stepSum += data.At(t, col)
				if mask.Has(t, col, core.FlagLowSpectralKurtosis) {
					lowCount++
				}
				if mask.Has(t, col, core.FlagHighSpectralKurtosis) {
					highCount++
				}
				if mask.Has(t, col, core.FlagSigmaClip) {
					clipCount++
				}
			}
			sum += stepSum / float64(desmear)
		}

		if !inBounds {
			continue
		}
		power.Set(drift.Row, f, sum)
		lowSK.Set(drift.Row, f, lowCount)
		highSK.Set(drift.Row, f, highCount)
		sigmaClip.Set(drift.Row, f, clipCount)
	}
}
