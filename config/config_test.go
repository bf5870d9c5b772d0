package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hb9tf/bliss/driftsearch"
	"github.com/hb9tf/bliss/noise"
)

const testPlanYAML = `
settings:
  logLevel: INFO
  finePerCoarse: 1048576
cadence:
  on:
    sourceName: HIP1234
    scanPaths: ["a1.fil", "a2.fil"]
  off:
    - sourceName: HIP5678
      scanPaths: ["b1.fil"]
search:
  sigmaClip:
    maxIterations: 5
    lowerSigma: 3
    upperSigma: 4
  noise:
    method: mad
    masked: true
  integrate:
    lowRateHzPerSec: -5
    highRateHzPerSec: 5
    resolution: 1
    desmear: true
  hitSearch:
    method: connectedComponents
    snrThreshold: 10
    neighborL1Dist: 1
  filter:
    rejectZeroDrift: true
    minimumPercentSigmaClip: 20
output:
  sink: sqlite
  sqlitePath: /tmp/bliss.db
`

func writeTestPlan(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	if err := os.WriteFile(path, []byte(testPlanYAML), 0o644); err != nil {
		t.Fatalf("writing test plan: %v", err)
	}
	return path
}

func TestLoadParsesCadenceAndSearch(t *testing.T) {
	path := writeTestPlan(t)
	plan, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if plan.Cadence.On.SourceName != "HIP1234" {
		t.Errorf("expected ON source HIP1234, got %q", plan.Cadence.On.SourceName)
	}
	if len(plan.Cadence.Off) != 1 || plan.Cadence.Off[0].SourceName != "HIP5678" {
		t.Errorf("unexpected OFF targets: %+v", plan.Cadence.Off)
	}
	if plan.Search.Noise.ToOptions().Method != noise.MethodMAD {
		t.Errorf("expected MAD noise method")
	}
	if plan.Search.HitSearch.ToOptions().Method != driftsearch.MethodConnectedComponents {
		t.Errorf("expected connected-components hit search method")
	}
	if plan.Output.Sink != "sqlite" {
		t.Errorf("expected sqlite output sink, got %q", plan.Output.Sink)
	}
}

func TestLoadFailsOnMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/plan.yaml"); err == nil {
		t.Errorf("expected error for missing file")
	}
}
