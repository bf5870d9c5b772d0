package core

// RFICounts carries the per-flag integrated-sample counts a hit
// accumulated from the drift plane's flag counters over its footprint
// (single cell for LOCAL_MAXIMA, full component for CONNECTED_COMPONENTS).
type RFICounts struct {
	LowSpectralKurtosis  int64
	HighSpectralKurtosis int64
	SigmaClip            int64
}

// Hit is the physical characterisation of one candidate narrowband,
// drifting signal (spec section 3). Field names and units mirror the
// Cap'n Proto wire record in spec section 6 so serialisation is a
// straight field copy.
type Hit struct {
	StartFreqIndex      int64
	StartFreqMHz        float64
	StartTimeSec        float64
	DurationSec         float64
	RateIndex           int64
	DriftRateHzPerSec   float64
	Power               float64
	TimeSpanSteps       int64
	IntegratedChannels  int64
	SNR                 float64
	Bandwidth           float64 // Hz
	BinWidth            int64
	RFICounts           RFICounts
	CoarseChannelNumber int64
}

// EndTimeSec is the hit's observed end time, start + duration. Used by
// the event search's rendezvous-time projection.
func (h Hit) EndTimeSec() float64 {
	return h.StartTimeSec + h.DurationSec
}
