package datasource

import (
	"math"
	"math/rand"

	"github.com/hb9tf/bliss/core"
)

// GaussianWaterfall fills a (ntsteps x nchans) matrix with i.i.d. Gaussian
// noise, the seed-test fixture described in spec section 8 ("Gaussian
// noise sigma=1, mean=0").
func GaussianWaterfall(rng *rand.Rand, ntsteps, nchans int, mean, sigma float64) *core.Matrix {
	m := core.NewMatrix(ntsteps, nchans)
	for i := range m.Data {
		m.Data[i] = mean + sigma*rng.NormFloat64()
	}
	return m
}

// InjectTone adds a constant-amplitude tone drifting driftBinsPerStep
// frequency bins per time step, starting at startBin, to an existing
// waterfall. Used to build the static-tone and drifting-tone seed tests
// (spec section 8, scenarios 1 and 2).
func InjectTone(m *core.Matrix, startBin int, driftBinsPerStep float64, amplitude float64) {
	for t := 0; t < m.Rows; t++ {
		bin := startBin + int(math.Round(driftBinsPerStep*float64(t)))
		if bin < 0 || bin >= m.Cols {
			continue
		}
		m.Set(t, bin, m.At(t, bin)+amplitude)
	}
}

// NewSyntheticScan wraps a generated waterfall as a Memory data source
// with the given metadata, a single coarse channel spanning the whole
// band.
func NewSyntheticScan(path string, metadata core.ScanMetadata, power *core.Matrix) *Memory {
	ntsteps := int64(power.Rows)
	nchans := int64(power.Cols)
	metadata.NTSteps = &ntsteps
	metadata.Nchans = &nchans
	return NewMemory(path, metadata, power, nil)
}
