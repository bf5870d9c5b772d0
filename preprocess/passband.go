package preprocess

import (
	"fmt"
	"math"

	"github.com/hb9tf/bliss/core"
)

// PassbandOptions configures passband equalization: divide every
// frequency column by a user-provided response curve sized to exactly
// one coarse channel.
type PassbandOptions struct {
	// Response has one entry per fine channel within a coarse channel.
	Response []float64
	// Validate enables the heuristic check that Response is finite and
	// strictly positive everywhere, catching a malformed filter design
	// before it silently divides by zero or introduces NaNs.
	Validate bool
}

// Equalize divides each frequency column of cc's power tensor by
// opts.Response, correcting for the polyphase filterbank's non-flat
// passband.
func Equalize(cc *core.CoarseChannel, opts PassbandOptions) (*core.CoarseChannel, error) {
	data, err := cc.Data()
	if err != nil {
		return nil, fmt.Errorf("passband equalize: %w", err)
	}
	if len(opts.Response) != data.Cols {
		return nil, fmt.Errorf("passband equalize: response length %d does not match coarse channel width %d", len(opts.Response), data.Cols)
	}
	if opts.Validate {
		if err := validateResponse(opts.Response); err != nil {
			return nil, fmt.Errorf("passband equalize: %w", err)
		}
	}
	for t := 0; t < data.Rows; t++ {
		for f := 0; f < data.Cols; f++ {
			data.Set(t, f, data.At(t, f)/opts.Response[f])
		}
	}
	return cc, nil
}

// AddEqualize registers Equalize as a pipeline stage on scan.
func AddEqualize(scan *core.Scan, opts PassbandOptions) {
	scan.AddCoarseChannelTransform(func(cc *core.CoarseChannel) (*core.CoarseChannel, error) {
		return Equalize(cc, opts)
	}, "passband equalize")
}

func validateResponse(response []float64) error {
	for i, v := range response {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("response[%d] is not finite: %v", i, v)
		}
		if v <= 0 {
			return fmt.Errorf("response[%d] is not strictly positive: %v", i, v)
		}
	}
	return nil
}

// Window is a FIR design window function.
type Window int

const (
	WindowHamming Window = iota
	WindowHann
	WindowBlackman
)

func windowValue(w Window, n, taps int) float64 {
	x := 2 * math.Pi * float64(n) / float64(taps-1)
	switch w {
	case WindowHann:
		return 0.5 - 0.5*math.Cos(x)
	case WindowBlackman:
		return 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
	default: // WindowHamming
		return 0.54 - 0.46*math.Cos(x)
	}
}

// DesignFIRResponse produces the canonical polyphase passband response
// for a filterbank with the given fine-channels-per-coarse count,
// coarse-channel count and tap count, evaluated at finePerCoarse points
// spanning one coarse channel. This is the windowed-sinc prototype filter
// design every polyphase channelizer variant is built from (spec section
// 4.3's "FIR design helper").
func DesignFIRResponse(finePerCoarse, numCoarse, taps int, window Window) ([]float64, error) {
	if finePerCoarse <= 0 || numCoarse <= 0 || taps <= 1 {
		return nil, fmt.Errorf("design FIR response: invalid parameters (fine=%d, coarse=%d, taps=%d)", finePerCoarse, numCoarse, taps)
	}

	// Prototype low-pass filter: cutoff at one coarse-channel width.
	cutoff := 1.0 / float64(numCoarse)
	coeffs := make([]float64, taps)
	center := float64(taps-1) / 2
	for n := 0; n < taps; n++ {
		x := float64(n) - center
		var sinc float64
		if x == 0 {
			sinc = cutoff
		} else {
			sinc = math.Sin(math.Pi*cutoff*x) / (math.Pi * x)
		}
		coeffs[n] = sinc * windowValue(window, n, taps)
	}

	// Evaluate the filter's magnitude response at finePerCoarse points
	// spanning one coarse channel via a direct DFT sum (this module
	// doesn't carry an FFT dependency; taps is small relative to
	// finePerCoarse so the O(taps*finePerCoarse) cost is acceptable for
	// a one-shot design helper).
	response := make([]float64, finePerCoarse)
	for k := 0; k < finePerCoarse; k++ {
		freq := (float64(k)/float64(finePerCoarse) - 0.5) / float64(numCoarse)
		var re, im float64
		for n, c := range coeffs {
			phase := -2 * math.Pi * freq * float64(n)
			re += c * math.Cos(phase)
			im += c * math.Sin(phase)
		}
		mag := math.Hypot(re, im)
		if mag < 1e-6 {
			mag = 1e-6
		}
		response[k] = mag
	}
	return response, nil
}
