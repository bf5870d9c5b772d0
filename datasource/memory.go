// Package datasource provides core.DataSource implementations that aren't
// backed by an external file format. The core treats HDF5/Filterbank
// readers and Cap'n Proto archives as external collaborators (spec
// section 1); Memory is the in-process fixture this module uses for
// tests and synthetic-injection runs.
package datasource

import (
	"fmt"

	"github.com/hb9tf/bliss/core"
)

// Memory is a core.DataSource backed entirely by in-memory tensors. It
// caches its metadata at construction and is safe for concurrent
// ReadData/ReadMask calls: both are pure slices over already-materialised
// data with no shared mutable state.
type Memory struct {
	path     string
	metadata core.ScanMetadata
	power    *core.Matrix // time x freq, feed dimension already collapsed
	mask     *core.MaskMatrix
}

// NewMemory builds a Memory data source from a full (time x freq) power
// matrix. mask may be nil, in which case ReadMask returns all-zero masks.
func NewMemory(path string, metadata core.ScanMetadata, power *core.Matrix, mask *core.MaskMatrix) *Memory {
	return &Memory{path: path, metadata: metadata, power: power, mask: mask}
}

func (m *Memory) DataShape() [3]int64 {
	return [3]int64{int64(m.power.Rows), 1, int64(m.power.Cols)}
}

func (m *Memory) ReadData(offset, count [3]int64) (*core.Matrix, error) {
	if err := m.checkBounds(offset, count); err != nil {
		return nil, err
	}
	out := core.NewMatrix(int(count[0]), int(count[2]))
	for t := int64(0); t < count[0]; t++ {
		for f := int64(0); f < count[2]; f++ {
			out.Set(int(t), int(f), m.power.At(int(offset[0]+t), int(offset[2]+f)))
		}
	}
	return out, nil
}

func (m *Memory) ReadMask(offset, count [3]int64) (*core.MaskMatrix, error) {
	if err := m.checkBounds(offset, count); err != nil {
		return nil, err
	}
	out := core.NewMaskMatrix(int(count[0]), int(count[2]))
	if m.mask == nil {
		return out, nil
	}
	for t := int64(0); t < count[0]; t++ {
		for f := int64(0); f < count[2]; f++ {
			if m.mask.At(int(offset[0]+t), int(offset[2]+f)) != 0 {
				out.Data[int(t)*out.Cols+int(f)] = m.mask.At(int(offset[0]+t), int(offset[2]+f))
			}
		}
	}
	return out, nil
}

func (m *Memory) checkBounds(offset, count [3]int64) error {
	shape := m.DataShape()
	for dim := 0; dim < 3; dim++ {
		if offset[dim] < 0 || count[dim] < 0 || offset[dim]+count[dim] > shape[dim] {
			return fmt.Errorf("hyperslab [offset=%v count=%v] outside shape %v: %w", offset, count, shape, core.ErrIOFailure)
		}
	}
	if count[1] != 1 {
		return fmt.Errorf("only single-feed reads are supported (non-goal: polarisation handling), got count[1]=%d: %w", count[1], core.ErrIOFailure)
	}
	return nil
}

func (m *Memory) Path() string { return m.path }

func (m *Memory) Metadata() core.ScanMetadata { return m.metadata }
