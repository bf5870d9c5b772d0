package core

import "math"

// channelizationEntry names one known telescope backend's fine-channels-
// per-coarse-channel value, keyed by the (|foff| in Hz, tsamp in seconds)
// pair its polyphase filterbank produces. Matching within tolerance lets
// Scan construction recover FinePerCoarse when a data source doesn't
// carry it directly.
type channelizationEntry struct {
	Name          string
	FinePerCoarse int64
	FoffHz        float64
	TsampSec      float64
}

// knownChannelizations is module-level configuration, not mutable state
// (design notes, section 9): the nine backends this core recognises.
var knownChannelizations = []channelizationEntry{
	{"GBT-ishigh-res", 1 << 20, 2.7939677238464355, 18.25361108},
	{"GBT-mid-res", 1 << 16, 178.8139023, 1.14018925},
	{"GBT-low-res", 1 << 10, 2.861022949e4, 0.571},
	{"Parkes-high-res", 1 << 18, 5.587935447692871, 9.1268},
	{"Parkes-low-res", 1 << 12, 1.430511475e2, 0.286},
	{"MeerKAT-high-res", 1 << 20, 3.814697266, 2.097152},
	{"MeerKAT-wide", 1 << 14, 6.25e2, 0.262144},
	{"ATA-standard", 1 << 16, 2.980232239e1, 1.048576},
	{"VLA-standard", 1 << 15, 1.455190e2, 0.524288},
}

const (
	channelizationFreqToleranceHz = 0.1
	channelizationTimeToleranceS  = 0.1

	// Fallback ladder applied in order when no known channelization
	// matches (spec section 3).
	fallbackFinePerCoarseA = 1 << 18
	fallbackFinePerCoarseB = 1_000_000
)

// inferFinePerCoarse implements the constructor's FinePerCoarse inference:
// match (nchans, foff, tsamp) against the known table; on miss, fall back
// to 2^18 fine per coarse, then 10^6, then a single coarse channel holding
// all of nchans. Returns the chosen value and a diagnostic describing
// which rung of the ladder was used, so the caller can log a WARN line
// the way unknown-channelization handling does in spec section 6.
func inferFinePerCoarse(nchans int64, foff, tsamp float64) (finePerCoarse int64, diagnostic string) {
	foffHz := math.Abs(foff * 1e6)
	for _, entry := range knownChannelizations {
		if math.Abs(entry.FoffHz-foffHz) <= channelizationFreqToleranceHz &&
			math.Abs(entry.TsampSec-tsamp) <= channelizationTimeToleranceS {
			return entry.FinePerCoarse, ""
		}
	}

	if nchans > 0 && nchans%fallbackFinePerCoarseA == 0 {
		return fallbackFinePerCoarseA, "WARN: unknown channelization, falling back to 2^18 fine channels per coarse channel"
	}
	if nchans > 0 && nchans%fallbackFinePerCoarseB == 0 {
		return fallbackFinePerCoarseB, "WARN: unknown channelization, falling back to 1e6 fine channels per coarse channel"
	}
	return nchans, "WARN: unknown channelization, falling back to a single coarse channel spanning all fine channels"
}
