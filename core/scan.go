package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/golang/glog"
)

// Transform is one stage of a Scan's coarse-channel pipeline: preprocess,
// flag, estimate noise, integrate drifts, search hits, filter hits, ...
// Stages run lazily, in registration order, the first time a channel is
// materialised (spec section 4.2).
type Transform struct {
	Name string
	Fn   func(*CoarseChannel) (*CoarseChannel, error)
}

// Scan owns a Data Source, the scan's metadata, a cache of lazily
// materialised Coarse Channels, and the transform pipeline applied to
// every freshly loaded channel. It is not internally synchronised beyond
// what's needed to make a single worker's sequential use safe (spec
// section 5): concurrent callers MUST partition by coarse-channel index
// via SliceScanChannels.
type Scan struct {
	mu sync.Mutex

	metadata ScanMetadata
	source   DataSource

	finePerCoarse     int64
	numCoarseChannels int64
	coarseOffset      int64

	channels   map[int64]*CoarseChannel
	transforms []Transform

	device Device
}

// NewScanFromDataSource constructs a Scan backed by a DataSource. If
// finePerCoarse is 0, it's inferred from (nchans, foff, tsamp) against the
// known-channelization table, falling back through the ladder described
// in channelization.go.
func NewScanFromDataSource(source DataSource, finePerCoarse int64) (*Scan, error) {
	metadata := source.Metadata()

	var nchans int64
	if metadata.Nchans != nil {
		nchans = *metadata.Nchans
	}

	if finePerCoarse == 0 {
		var diagnostic string
		finePerCoarse, diagnostic = inferFinePerCoarse(nchans, metadata.Foff, metadata.Tsamp)
		if diagnostic != "" {
			glog.Info(diagnostic)
		}
	}
	if finePerCoarse <= 0 {
		return nil, fmt.Errorf("resolved fine-channels-per-coarse is non-positive: %w", ErrInconsistentMetadata)
	}

	var numCoarse int64
	if nchans > 0 {
		numCoarse = nchans / finePerCoarse
		if numCoarse*finePerCoarse != nchans {
			glog.Warningf("WARN: nchans (%d) is not an exact multiple of fine_per_coarse (%d); coarse channel count truncated to %d", nchans, finePerCoarse, numCoarse)
		}
	}
	if numCoarse == 0 {
		numCoarse = 1
	}

	return &Scan{
		metadata:          metadata,
		source:            source,
		finePerCoarse:     finePerCoarse,
		numCoarseChannels: numCoarse,
		channels:          map[int64]*CoarseChannel{},
		device:            DefaultDevice,
	}, nil
}

// NewScanFromChannels constructs a Scan directly from an existing
// coarse-channel mapping (e.g. deserialised from a file). Metadata is
// inherited from the lowest-indexed channel.
func NewScanFromChannels(channels map[int64]*CoarseChannel) (*Scan, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("no coarse channels given: %w", ErrInconsistentMetadata)
	}
	indices := make([]int64, 0, len(channels))
	for idx := range channels {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	first := channels[indices[0]]

	return &Scan{
		metadata:          first.Metadata,
		channels:          channels,
		numCoarseChannels: int64(len(channels)),
		device:            first.Device,
	}, nil
}

func (s *Scan) Metadata() ScanMetadata { return s.metadata }
func (s *Scan) Fch1() float64          { return s.metadata.Fch1 }
func (s *Scan) Foff() float64          { return s.metadata.Foff }
func (s *Scan) Tsamp() float64         { return s.metadata.Tsamp }
func (s *Scan) Tstart() float64        { return s.metadata.Tstart }
func (s *Scan) SourceName() string     { return s.metadata.SourceName }
func (s *Scan) FinePerCoarse() int64   { return s.finePerCoarse }
func (s *Scan) NumCoarseChannels() int64 { return s.numCoarseChannels }

// TdurationSecs is the scan's total wall-clock duration in seconds.
func (s *Scan) TdurationSecs() float64 { return s.metadata.TdurationSecs() }

// SetDevice records the device newly loaded channels are placed on.
// Channels already cached keep the device they were built with; nothing
// migrates them.
func (s *Scan) SetDevice(dev Device) { s.device = dev }

// AddCoarseChannelTransform appends a pipeline stage. Transforms run in
// registration order on every freshly loaded channel; they are never
// re-ordered or removed (append-only, spec section 5).
func (s *Scan) AddCoarseChannelTransform(fn func(*CoarseChannel) (*CoarseChannel, error), name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transforms = append(s.transforms, Transform{Name: name, Fn: fn})
}

// PeekCoarseChannel returns an already-cached channel without triggering
// a load, or ok=false if channel i hasn't been read yet.
func (s *Scan) PeekCoarseChannel(i int64) (cc *CoarseChannel, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cc, ok = s.channels[i+s.coarseOffset]
	return cc, ok
}

// ReadCoarseChannel returns coarse channel i (0-indexed, relative to this
// Scan's current slice), loading and running the transform pipeline on it
// if this is the first request. Fails with ErrOutOfRange if i is outside
// [0, NumCoarseChannels()).
func (s *Scan) ReadCoarseChannel(i int64) (*CoarseChannel, error) {
	if i < 0 || i >= s.numCoarseChannels {
		return nil, fmt.Errorf("coarse channel %d outside [0, %d): %w", i, s.numCoarseChannels, ErrOutOfRange)
	}

	s.mu.Lock()
	key := i + s.coarseOffset
	if cc, ok := s.channels[key]; ok {
		s.mu.Unlock()
		return cc, nil
	}

	cc := s.buildCoarseChannel(key)
	s.channels[key] = cc
	transforms := append([]Transform(nil), s.transforms...)
	s.mu.Unlock()

	for _, t := range transforms {
		var err error
		cc, err = t.Fn(cc)
		if err != nil {
			return nil, fmt.Errorf("transform %q on coarse channel %d: %w", t.Name, key, err)
		}
	}

	s.mu.Lock()
	s.channels[key] = cc
	s.mu.Unlock()
	return cc, nil
}

func (s *Scan) buildCoarseChannel(globalIndex int64) *CoarseChannel {
	source := s.source
	finePerCoarse := s.finePerCoarse
	tsamp := s.metadata.Tsamp

	var ntsteps int64
	if s.metadata.NTSteps != nil {
		ntsteps = *s.metadata.NTSteps
	} else if source != nil {
		ntsteps = source.DataShape()[0]
	}
	// s.metadata.Fch1 already starts at this scan's slice offset, so only
	// the index relative to the slice moves it further.
	ccFch1 := s.metadata.Fch1 + s.metadata.Foff*float64(finePerCoarse)*float64(globalIndex-s.coarseOffset)
	ccMetadata := s.metadata.WithFch1Nchans(ccFch1, finePerCoarse)
	ccMetadata.NTSteps = &ntsteps
	_ = tsamp

	cc := NewCoarseChannel(globalIndex, ccMetadata, s.device)
	if source == nil {
		return cc
	}

	start := globalIndex * finePerCoarse
	cc.SetDataProducer(func() (*Matrix, error) {
		offset := [3]int64{0, 0, start}
		count := [3]int64{ntsteps, 1, finePerCoarse}
		m, err := source.ReadData(offset, count)
		if err != nil {
			return nil, fmt.Errorf("reading coarse channel %d data: %w", globalIndex, err)
		}
		return m, nil
	})
	cc.SetMaskProducer(func() (*MaskMatrix, error) {
		offset := [3]int64{0, 0, start}
		count := [3]int64{ntsteps, 1, finePerCoarse}
		m, err := source.ReadMask(offset, count)
		if err != nil {
			return nil, fmt.Errorf("reading coarse channel %d mask: %w", globalIndex, err)
		}
		return m, nil
	})
	return cc
}

// SliceScanChannels returns a new Scan sharing this Scan's Data Source,
// restricted to a contiguous sub-range of coarse channels. count == -1
// means "through end". Preserves foff, tsamp and source name; rewrites
// fch1 and nchans per the slicing invariant (spec section 8).
func (s *Scan) SliceScanChannels(start, count int64) (*Scan, error) {
	if start < 0 || start >= s.numCoarseChannels {
		return nil, fmt.Errorf("slice start %d outside [0, %d): %w", start, s.numCoarseChannels, ErrOutOfRange)
	}
	if count == -1 {
		count = s.numCoarseChannels - start
	}
	if count <= 0 || start+count > s.numCoarseChannels {
		return nil, fmt.Errorf("slice [%d, %d) outside [0, %d): %w", start, start+count, s.numCoarseChannels, ErrOutOfRange)
	}

	newMetadata := s.metadata
	newMetadata.Fch1 = s.metadata.Fch1 + s.metadata.Foff*float64(s.finePerCoarse)*float64(start)
	newNchans := count * s.finePerCoarse
	newMetadata.Nchans = &newNchans

	return &Scan{
		metadata:          newMetadata,
		source:            s.source,
		finePerCoarse:     s.finePerCoarse,
		numCoarseChannels: count,
		coarseOffset:      s.coarseOffset + start,
		channels:          map[int64]*CoarseChannel{},
		transforms:        append([]Transform(nil), s.transforms...),
		device:            s.device,
	}, nil
}

// GetCoarseChannelWithFrequency returns the coarse-channel index owning a
// given frequency (MHz), per the boundary behaviour in spec section 8:
// fch1 maps to 0 and fch1+foff*(nchans-1) maps to NumCoarseChannels()-1.
func (s *Scan) GetCoarseChannelWithFrequency(freqMHz float64) int64 {
	fineIndex := (freqMHz - s.metadata.Fch1) / s.metadata.Foff
	idx := int64(fineIndex) / s.finePerCoarse
	if idx < 0 {
		idx = 0
	}
	if idx >= s.numCoarseChannels {
		idx = s.numCoarseChannels - 1
	}
	return idx
}

// Hits aggregates hits across every coarse channel, best-effort: a
// channel whose load or hit list fails, whatever the error kind, is
// logged as a warning and skipped. No error is returned to the caller.
func (s *Scan) Hits() []Hit {
	var all []Hit
	for i := int64(0); i < s.numCoarseChannels; i++ {
		cc, err := s.ReadCoarseChannel(i)
		if err != nil {
			glog.Warningf("WARN: coarse channel %d failed to load: %s", i, err)
			continue
		}
		hits, err := cc.Hits()
		if err != nil {
			glog.Warningf("WARN: coarse channel %d has no hits available: %s", cc.Index, err)
			continue
		}
		all = append(all, hits...)
	}
	return all
}
