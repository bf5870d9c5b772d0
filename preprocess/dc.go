// Package preprocess implements the DC excision, passband equalization,
// normalization and RFI flagging stages of the pipeline (spec section
// 4.3). Every stage operates on a *core.CoarseChannel and is composable:
// flaggers only ever OR their bit into the existing mask.
package preprocess

import (
	"fmt"

	"github.com/hb9tf/bliss/core"
)

// ExciseDC replaces the middle frequency column of cc's power tensor with
// the mean of its immediate neighbours, removing the DC spike a
// polyphase filterbank centers in the middle bin. Fails if the channel
// has <= 2 frequency bins.
func ExciseDC(cc *core.CoarseChannel) (*core.CoarseChannel, error) {
	data, err := cc.Data()
	if err != nil {
		return nil, fmt.Errorf("excise_dc: %w", err)
	}
	if data.Cols <= 2 {
		return nil, fmt.Errorf("excise_dc: channel has %d frequency bins, need > 2: %w", data.Cols, core.ErrDataInsufficient)
	}

	dc := data.Cols / 2
	for t := 0; t < data.Rows; t++ {
		avg := (data.At(t, dc-1) + data.At(t, dc+1)) / 2
		data.Set(t, dc, avg)
	}
	return cc, nil
}

// AddExciseDC registers ExciseDC as a pipeline stage on scan.
func AddExciseDC(scan *core.Scan) {
	scan.AddCoarseChannelTransform(ExciseDC, "excise dc")
}
