package preprocess

import (
	"fmt"
	"math"

	"github.com/hb9tf/bliss/core"
)

// KurtosisOptions configures the spectral kurtosis flagger.
type KurtosisOptions struct {
	// D is the shape parameter of the pre-detection filter (2 for a
	// square-law power detector on voltage samples). Defaults to 2 when
	// zero.
	D float64
	LowerThreshold float64 // default 0.8 when zero
	UpperThreshold float64 // default 1.2 when zero
}

func (o KurtosisOptions) withDefaults() KurtosisOptions {
	if o.D == 0 {
		o.D = 2
	}
	if o.LowerThreshold == 0 {
		o.LowerThreshold = 0.8
	}
	if o.UpperThreshold == 0 {
		o.UpperThreshold = 1.2
	}
	return o
}

// FlagSpectralKurtosis computes the spectral kurtosis (SK) statistic
// per frequency channel across the time axis:
//
//	SK = ((M*N*d + 1) / (M - 1)) * (M*S2/S1^2 - 1)
//
// where M is the number of time samples (S1/S2 are summed over M rows),
// N = round(tsamp * |foff*1e6|) is the number of fine-channel spectra
// accumulated per sample, S1 is the sum of powers and S2 the sum of
// squared powers in that column. Columns whose SK falls outside
// [LowerThreshold, UpperThreshold] are flagged across every row with
// FlagLowSpectralKurtosis or FlagHighSpectralKurtosis.
func FlagSpectralKurtosis(cc *core.CoarseChannel, opts KurtosisOptions) (*core.CoarseChannel, error) {
	opts = opts.withDefaults()

	data, err := cc.Data()
	if err != nil {
		return nil, fmt.Errorf("spectral kurtosis flag: %w", err)
	}
	if data.Rows <= 1 {
		return nil, fmt.Errorf("spectral kurtosis flag: M must be > 1, got %d", data.Rows)
	}
	mask, err := cc.EnsureMask()
	if err != nil {
		return nil, fmt.Errorf("spectral kurtosis flag: %w", err)
	}

	m := float64(data.Rows)
	n := math.Round(cc.Tsamp() * math.Abs(cc.Foff()*1e6))

	for f := 0; f < data.Cols; f++ {
		var s1, s2 float64
		for t := 0; t < data.Rows; t++ {
			v := data.At(t, f)
			s1 += v
			s2 += v * v
		}
		if s1 == 0 {
			continue
		}
		sk := ((m*n*opts.D + 1) / (m - 1)) * (m*s2/(s1*s1) - 1)

		var bit core.FlagBit
		switch {
		case sk < opts.LowerThreshold:
			bit = core.FlagLowSpectralKurtosis
		case sk > opts.UpperThreshold:
			bit = core.FlagHighSpectralKurtosis
		default:
			continue
		}
		for t := 0; t < data.Rows; t++ {
			mask.Or(t, f, bit)
		}
	}
	return cc, nil
}

// AddSpectralKurtosisFlag registers FlagSpectralKurtosis as a pipeline
// stage on scan.
func AddSpectralKurtosisFlag(scan *core.Scan, opts KurtosisOptions) {
	scan.AddCoarseChannelTransform(func(cc *core.CoarseChannel) (*core.CoarseChannel, error) {
		return FlagSpectralKurtosis(cc, opts)
	}, "spectral kurtosis flag")
}
