package core

import "fmt"

// Cadence is an ordered vector of Observation Targets. By convention,
// index 0 is the ON target and the rest are OFF references.
type Cadence struct {
	Targets []*ObservationTarget
}

// NewCadence builds a cadence from targets, ON target first.
func NewCadence(targets []*ObservationTarget) *Cadence {
	return &Cadence{Targets: targets}
}

// OnTarget returns the primary (index 0) target, or nil for an empty
// cadence.
func (c *Cadence) OnTarget() *ObservationTarget {
	if len(c.Targets) == 0 {
		return nil
	}
	return c.Targets[0]
}

// OffTargets returns every target after index 0.
func (c *Cadence) OffTargets() []*ObservationTarget {
	if len(c.Targets) <= 1 {
		return nil
	}
	return c.Targets[1:]
}

// ValidateConsistency checks that every scan of every target shares the
// same frequency structure, using the intended (non-inverted) semantics
// described in spec section 9.
func (c *Cadence) ValidateConsistency() error {
	var reference *ScanMetadata
	for _, target := range c.Targets {
		for _, scan := range target.Scans {
			md := scan.Metadata()
			if reference == nil {
				reference = &md
				continue
			}
			if !metadataConsistent(*reference, md) {
				return fmt.Errorf("cadence scan in target %q disagrees with reference scan on fch1/foff/nchans: %w", target.SourceName, ErrInconsistentMetadata)
			}
		}
	}
	return nil
}
