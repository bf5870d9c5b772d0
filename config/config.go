// Package config loads a cadence search plan from YAML, in the style of
// roman-kulish-drone-radio-surveillance's cmd/*/app.Config: a tree of
// yaml-tagged structs unmarshalled in one shot with gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hb9tf/bliss/driftsearch"
	"github.com/hb9tf/bliss/noise"
	"github.com/hb9tf/bliss/preprocess"
)

// Plan describes one end-to-end cadence search: which scans make up the
// ON target and OFF references, the preprocessing/search parameters to
// run over every coarse channel, and where to send results.
type Plan struct {
	Settings SettingsConfig  `yaml:"settings"`
	Cadence  CadenceConfig   `yaml:"cadence"`
	Search   SearchConfig    `yaml:"search"`
	Output   OutputConfig    `yaml:"output"`
}

// SettingsConfig holds process-wide settings, mirroring the teacher's
// Settings block (logLevel).
type SettingsConfig struct {
	LogLevel      string `yaml:"logLevel"`
	FinePerCoarse int64  `yaml:"finePerCoarse"`
}

// TargetConfig is one telescope pointing: a source name and the scan
// files (or synthetic generator names) that make it up.
type TargetConfig struct {
	SourceName string   `yaml:"sourceName"`
	ScanPaths  []string `yaml:"scanPaths"`
}

// CadenceConfig lists the ON target followed by OFF references, matching
// core.Cadence's index-0-is-ON convention.
type CadenceConfig struct {
	On  TargetConfig   `yaml:"on"`
	Off []TargetConfig `yaml:"off"`
}

// SearchConfig carries every tunable stage of the coarse-channel
// pipeline: preprocessing, noise estimation, drift integration, hit
// search and post-filtering.
type SearchConfig struct {
	SigmaClip  SigmaClipConfig  `yaml:"sigmaClip"`
	Kurtosis   KurtosisConfig   `yaml:"kurtosis"`
	Noise      NoiseConfig      `yaml:"noise"`
	Integrate  IntegrateConfig  `yaml:"integrate"`
	HitSearch  HitSearchConfig  `yaml:"hitSearch"`
	Filter     FilterConfig     `yaml:"filter"`
}

type SigmaClipConfig struct {
	MaxIterations int     `yaml:"maxIterations"`
	LowerSigma    float64 `yaml:"lowerSigma"`
	UpperSigma    float64 `yaml:"upperSigma"`
}

func (c SigmaClipConfig) ToOptions() preprocess.SigmaClipOptions {
	return preprocess.SigmaClipOptions{
		MaxIterations: c.MaxIterations,
		LowerSigma:    c.LowerSigma,
		UpperSigma:    c.UpperSigma,
	}
}

type KurtosisConfig struct {
	D              float64 `yaml:"d"`
	LowerThreshold float64 `yaml:"lowerThreshold"`
	UpperThreshold float64 `yaml:"upperThreshold"`
}

func (c KurtosisConfig) ToOptions() preprocess.KurtosisOptions {
	return preprocess.KurtosisOptions{
		D:              c.D,
		LowerThreshold: c.LowerThreshold,
		UpperThreshold: c.UpperThreshold,
	}
}

type NoiseConfig struct {
	Method string `yaml:"method"` // "standard" or "mad"
	Masked bool   `yaml:"masked"`
}

func (c NoiseConfig) ToOptions() noise.Options {
	method := noise.MethodStandard
	if c.Method == "mad" {
		method = noise.MethodMAD
	}
	return noise.Options{Method: method, Masked: c.Masked}
}

type IntegrateConfig struct {
	LowRateHzPerSec  float64 `yaml:"lowRateHzPerSec"`
	HighRateHzPerSec float64 `yaml:"highRateHzPerSec"`
	Resolution       float64 `yaml:"resolution"`
	Desmear          bool    `yaml:"desmear"`
}

func (c IntegrateConfig) ToOptions() driftsearch.IntegrateOptions {
	return driftsearch.IntegrateOptions{
		LowRateHzPerSec:  c.LowRateHzPerSec,
		HighRateHzPerSec: c.HighRateHzPerSec,
		Resolution:       c.Resolution,
		Desmear:          c.Desmear,
	}
}

type HitSearchConfig struct {
	Method         string  `yaml:"method"` // "localMaxima" or "connectedComponents"
	SNRThreshold   float64 `yaml:"snrThreshold"`
	NeighborL1Dist int     `yaml:"neighborL1Dist"`
}

func (c HitSearchConfig) ToOptions() driftsearch.SearchOptions {
	method := driftsearch.MethodLocalMaxima
	if c.Method == "connectedComponents" {
		method = driftsearch.MethodConnectedComponents
	}
	return driftsearch.SearchOptions{
		Method:         method,
		SNRThreshold:   c.SNRThreshold,
		NeighborL1Dist: c.NeighborL1Dist,
	}
}

type FilterConfig struct {
	RejectZeroDrift         bool    `yaml:"rejectZeroDrift"`
	MinimumPercentSigmaClip float64 `yaml:"minimumPercentSigmaClip"`
	MinimumPercentHighSK    float64 `yaml:"minimumPercentHighSK"`
	MinimumPercentLowSK     float64 `yaml:"minimumPercentLowSK"`
}

func (c FilterConfig) ToOptions() driftsearch.FilterOptions {
	return driftsearch.FilterOptions{
		RejectZeroDrift:         c.RejectZeroDrift,
		MinimumPercentSigmaClip: c.MinimumPercentSigmaClip,
		MinimumPercentHighSK:    c.MinimumPercentHighSK,
		MinimumPercentLowSK:     c.MinimumPercentLowSK,
	}
}

// OutputConfig picks the export sink and, for the HTTP gateway, the
// listen address.
type OutputConfig struct {
	Sink       string `yaml:"sink"` // "csv", "sqlite", "mysql", "datastore", "elastic", "http"
	SQLitePath string `yaml:"sqlitePath"`
	Listen     string `yaml:"listen"`
}

// Load reads and unmarshals a Plan from path.
func Load(path string) (*Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %q: %w", path, err)
	}
	var plan Plan
	if err := yaml.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("config: parsing %q: %w", path, err)
	}
	return &plan, nil
}
