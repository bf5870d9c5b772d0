package core

import "math"

// NoiseStats is the per-channel robust noise model produced by the noise
// estimator (spec section 4.4): a scalar floor and power computed over
// the whole channel. Per-column statistics are not represented.
type NoiseStats struct {
	NoiseFloor float64
	NoisePower float64
}

// NoiseAmplitude returns sqrt(NoisePower), the quantity hit search scales
// by sqrt(desmear*T) to get the per-drift adjusted noise sigma.
func (n NoiseStats) NoiseAmplitude() float64 {
	if n.NoisePower < 0 {
		return 0
	}
	return sqrt(n.NoisePower)
}

// CoarseChannel is a contiguous sub-band of a scan: the unit of
// parallelism in the search. Its data, mask, drift plane and hit list are
// modeled as memoised cells (core.Cell) so the lazy channel engine can
// hand back a channel whose expensive products are only computed on
// first read, per the sum-typed "NotComputed -> Producer -> Ready"
// contract in the design notes.
type CoarseChannel struct {
	// Index is the global coarse-channel index, including any slice
	// offset applied by SliceScanChannels.
	Index int64

	// Metadata is the scan's metadata with Fch1 and Nchans rewritten to
	// this channel's slice.
	Metadata ScanMetadata

	Device Device

	data  *Cell[*Matrix]
	mask  *Cell[*MaskMatrix]
	noise *NoiseStats

	driftPlane *Cell[*FrequencyDriftPlane]
	hits       *Cell[[]Hit]
}

// NewCoarseChannel constructs an empty coarse channel with fresh,
// NotComputed cells, ready to have producers attached by the lazy channel
// engine.
func NewCoarseChannel(index int64, metadata ScanMetadata, device Device) *CoarseChannel {
	return &CoarseChannel{
		Index:      index,
		Metadata:   metadata,
		Device:     device,
		data:       &Cell[*Matrix]{},
		mask:       &Cell[*MaskMatrix]{},
		driftPlane: &Cell[*FrequencyDriftPlane]{},
		hits:       &Cell[[]Hit]{},
	}
}

func (c *CoarseChannel) Ntsteps() int64 {
	if c.Metadata.NTSteps != nil {
		return *c.Metadata.NTSteps
	}
	return 0
}

func (c *CoarseChannel) Nchans() int64 {
	if c.Metadata.Nchans != nil {
		return *c.Metadata.Nchans
	}
	return 0
}

func (c *CoarseChannel) Fch1() float64  { return c.Metadata.Fch1 }
func (c *CoarseChannel) Foff() float64  { return c.Metadata.Foff }
func (c *CoarseChannel) Tsamp() float64 { return c.Metadata.Tsamp }
func (c *CoarseChannel) Tstart() float64 { return c.Metadata.Tstart }

// SetDataProducer installs the (typically hyperslab-reading) producer
// used to materialise this channel's power tensor on first access.
func (c *CoarseChannel) SetDataProducer(f func() (*Matrix, error)) {
	c.data.SetProducer(f)
}

// SetData installs an already-materialised power tensor.
func (c *CoarseChannel) SetData(m *Matrix) { c.data.SetValue(m) }

// Data returns the power tensor, running the producer on first access.
func (c *CoarseChannel) Data() (*Matrix, error) { return c.data.Get() }

func (c *CoarseChannel) SetMaskProducer(f func() (*MaskMatrix, error)) {
	c.mask.SetProducer(f)
}

func (c *CoarseChannel) SetMask(m *MaskMatrix) { c.mask.SetValue(m) }

func (c *CoarseChannel) Mask() (*MaskMatrix, error) { return c.mask.Get() }

// EnsureMask returns the channel's mask, allocating an all-zero mask
// matching Data()'s shape if none has been set yet.
func (c *CoarseChannel) EnsureMask() (*MaskMatrix, error) {
	if c.mask.Ready() || c.mask.HasProducer() {
		return c.mask.Get()
	}
	d, err := c.Data()
	if err != nil {
		return nil, err
	}
	m := NewMaskMatrix(d.Rows, d.Cols)
	c.mask.SetValue(m)
	return m, nil
}

func (c *CoarseChannel) SetNoiseEstimate(n NoiseStats) { c.noise = &n }

func (c *CoarseChannel) NoiseEstimate() (NoiseStats, bool) {
	if c.noise == nil {
		return NoiseStats{}, false
	}
	return *c.noise, true
}

// SetDriftPlaneProducer registers the drift-integration stage's producer,
// deferring the (expensive) de-Doppler transform until first read.
func (c *CoarseChannel) SetDriftPlaneProducer(f func() (*FrequencyDriftPlane, error)) {
	c.driftPlane.SetProducer(f)
}

func (c *CoarseChannel) SetDriftPlane(p *FrequencyDriftPlane) { c.driftPlane.SetValue(p) }

func (c *CoarseChannel) IntegratedDriftPlane() (*FrequencyDriftPlane, error) {
	return c.driftPlane.Get()
}

func (c *CoarseChannel) HasDriftPlane() bool { return c.driftPlane.Ready() }

func (c *CoarseChannel) SetHitsProducer(f func() ([]Hit, error)) {
	c.hits.SetProducer(f)
}

func (c *CoarseChannel) SetHits(hits []Hit) { c.hits.SetValue(hits) }

func (c *CoarseChannel) Hits() ([]Hit, error) { return c.hits.Get() }

func (c *CoarseChannel) HasHits() bool { return c.hits.Ready() }

func sqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}
