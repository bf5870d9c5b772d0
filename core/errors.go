package core

import "errors"

// Sentinel error kinds. Wrap with fmt.Errorf("...: %w", ErrX) at the call
// site so context survives while errors.Is still matches the kind.
var (
	// ErrInconsistentMetadata is raised when scans in a target or cadence
	// disagree on fch1/foff/nchans beyond the allowed tolerance.
	ErrInconsistentMetadata = errors.New("inconsistent metadata")

	// ErrNotComputed is raised when a memoised value is read but has no
	// producer and no materialised value.
	ErrNotComputed = errors.New("value not computed")

	// ErrOutOfRange is raised for a coarse-channel index outside
	// [0, num_coarse_channels).
	ErrOutOfRange = errors.New("index out of range")

	// ErrUnsupportedDevice is raised when a target device is unavailable.
	ErrUnsupportedDevice = errors.New("unsupported device")

	// ErrDataInsufficient is raised when a noise estimate is requested on
	// a channel with fewer than two unflagged samples.
	ErrDataInsufficient = errors.New("insufficient unflagged data")

	// ErrIOFailure wraps failures from a data source or serialisation layer.
	ErrIOFailure = errors.New("io failure")

	// ErrInconsistentShape is raised when drift integration's inputs
	// (power tensor, mask tensor, metadata-derived time-step count)
	// disagree on shape.
	ErrInconsistentShape = errors.New("inconsistent shape")

	// ErrOutOfMemory names the allocation-failure kind for a drift
	// integration or hit search backend. No backend in this module
	// returns it.
	ErrOutOfMemory = errors.New("out of memory")
)
