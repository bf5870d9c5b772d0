package core

import "fmt"

// ObservationTarget is a vector of Scans sharing a source name (or
// "unknown"), forming one telescope pointing observed over time.
type ObservationTarget struct {
	SourceName string
	Scans      []*Scan
}

// NewObservationTarget builds a target from scans, using "unknown" if
// sourceName is empty.
func NewObservationTarget(sourceName string, scans []*Scan) *ObservationTarget {
	if sourceName == "" {
		sourceName = "unknown"
	}
	return &ObservationTarget{SourceName: sourceName, Scans: scans}
}

// ValidateConsistency checks the target's consistency invariant: all
// constituent scans agree on fch1, foff and nchans within tolerance. This
// implements the INTENDED semantics described in spec section 9 (the
// original's validate_scan_consistency inverts its comparison and always
// fails); see metadataConsistent.
func (t *ObservationTarget) ValidateConsistency() error {
	if len(t.Scans) == 0 {
		return nil
	}
	reference := t.Scans[0].Metadata()
	for i, scan := range t.Scans[1:] {
		if !metadataConsistent(reference, scan.Metadata()) {
			return fmt.Errorf("scan %d in target %q disagrees with scan 0 on fch1/foff/nchans: %w", i+1, t.SourceName, ErrInconsistentMetadata)
		}
	}
	return nil
}
