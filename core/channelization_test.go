package core

import "testing"

func TestInferFinePerCoarseKnownEntry(t *testing.T) {
	for _, entry := range knownChannelizations {
		fine, diagnostic := inferFinePerCoarse(0, -entry.FoffHz/1e6, entry.TsampSec)
		if fine != entry.FinePerCoarse {
			t.Errorf("%s: got fine=%d, want %d", entry.Name, fine, entry.FinePerCoarse)
		}
		if diagnostic != "" {
			t.Errorf("%s: expected no diagnostic for a known match, got %q", entry.Name, diagnostic)
		}
	}
}

func TestInferFinePerCoarseFallbackLadder(t *testing.T) {
	fine, diagnostic := inferFinePerCoarse(1<<18*3, 12345.0/1e6, 999.0)
	if fine != fallbackFinePerCoarseA {
		t.Fatalf("got %d, want fallback A (2^18)", fine)
	}
	if diagnostic == "" {
		t.Fatal("expected a WARN diagnostic on fallback")
	}

	fine, _ = inferFinePerCoarse(1_000_000*5, 12345.0/1e6, 999.0)
	if fine != fallbackFinePerCoarseB {
		t.Fatalf("got %d, want fallback B (1e6)", fine)
	}

	fine, _ = inferFinePerCoarse(777, 12345.0/1e6, 999.0)
	if fine != 777 {
		t.Fatalf("got %d, want single coarse channel of 777", fine)
	}
}
