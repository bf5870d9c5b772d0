package preprocess

import (
	"fmt"
	"math"

	"github.com/hb9tf/bliss/core"
)

// RolloffOptions configures the filter-rolloff flagger.
type RolloffOptions struct {
	// Width is the fraction of a coarse channel's width to flag at each
	// edge, e.g. 0.1 flags the first and last 10% of columns.
	Width float64
}

// FlagRolloff ORs FlagRolloff into the mask for the first and last
// round(Width * nchans_cc) columns, where the polyphase filterbank's
// response rolls off and is unreliable.
func FlagRolloff(cc *core.CoarseChannel, opts RolloffOptions) (*core.CoarseChannel, error) {
	mask, err := cc.EnsureMask()
	if err != nil {
		return nil, fmt.Errorf("filter rolloff: %w", err)
	}
	width := int(math.Round(opts.Width * float64(mask.Cols)))
	for t := 0; t < mask.Rows; t++ {
		for f := 0; f < width; f++ {
			mask.Or(t, f, core.FlagRolloff)
		}
		for f := mask.Cols - width; f < mask.Cols; f++ {
			mask.Or(t, f, core.FlagRolloff)
		}
	}
	return cc, nil
}

// AddRolloffFlag registers FlagRolloff as a pipeline stage on scan.
func AddRolloffFlag(scan *core.Scan, opts RolloffOptions) {
	scan.AddCoarseChannelTransform(func(cc *core.CoarseChannel) (*core.CoarseChannel, error) {
		return FlagRolloff(cc, opts)
	}, "filter rolloff")
}
