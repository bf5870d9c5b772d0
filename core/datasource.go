package core

// DataSource is the polymorphic read interface the core consumes (spec
// sections 4.1 and 6). It is the only dynamic-dispatch boundary in the
// system: HDF5/Filterbank readers, Cap'n Proto hit archives, or an
// in-memory fixture all implement it identically from the core's point of
// view.
//
// Implementations MUST cache metadata at construction and MUST make
// per-channel reads safe to issue from different concurrent workers
// without external serialisation beyond what the adapter itself requires
// (spec section 4.1).
type DataSource interface {
	// DataShape returns the full data extent as [time, feed, frequency].
	DataShape() [3]int64

	// ReadData reads a hyperslab of power data. offset and count are
	// [time, feed, frequency] triples. Reads MUST be fully inside
	// DataShape(); zero-padding past the edges is not allowed. The feed
	// dimension is collapsed (count[1] must be 1): the core only ever
	// selects a single feed (spec section 1 non-goals).
	ReadData(offset, count [3]int64) (*Matrix, error)

	// ReadMask reads the RFI mask for the same hyperslab. Sources without
	// a native mask return an all-zero (unflagged) matrix.
	ReadMask(offset, count [3]int64) (*MaskMatrix, error)

	// Path identifies the underlying resource (file path, URI, ...).
	Path() string

	// Metadata returns the scan metadata. Must be O(1): implementations
	// cache it at construction time.
	Metadata() ScanMetadata
}
