package preprocess

import (
	"fmt"

	"github.com/hb9tf/bliss/core"
)

// Normalize rescales cc's power tensor so its maximum value equals 1.0.
func Normalize(cc *core.CoarseChannel) (*core.CoarseChannel, error) {
	data, err := cc.Data()
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	max := data.Data[0]
	for _, v := range data.Data {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return cc, nil
	}
	for i := range data.Data {
		data.Data[i] /= max
	}
	return cc, nil
}

// AddNormalize registers Normalize as a pipeline stage on scan.
func AddNormalize(scan *core.Scan) {
	scan.AddCoarseChannelTransform(Normalize, "normalize")
}
