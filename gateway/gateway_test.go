package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hb9tf/bliss/core"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testChannel(t *testing.T, hits []core.Hit) *core.CoarseChannel {
	t.Helper()
	md := core.ScanMetadata{Fch1: 1420, Foff: -1e-6, Tsamp: 1}
	cc := core.NewCoarseChannel(0, md, core.DefaultDevice)
	cc.SetData(core.NewMatrix(2, 4))
	cc.SetHits(hits)
	return cc
}

func testResults(t *testing.T, hits []core.Hit) *Results {
	t.Helper()
	cc := testChannel(t, hits)
	scan, err := core.NewScanFromChannels(map[int64]*core.CoarseChannel{0: cc})
	if err != nil {
		t.Fatalf("NewScanFromChannels: %v", err)
	}
	target := core.NewObservationTarget("test-source", []*core.Scan{scan})
	cadence := core.NewCadence([]*core.ObservationTarget{target})
	return &Results{Cadence: cadence}
}

func TestHitsHandlerReturnsScanHits(t *testing.T) {
	want := core.Hit{StartFreqIndex: 5, SNR: 12}
	results := testResults(t, []core.Hit{want})
	g := New(":0", results)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bliss/v1/hits", nil)
	g.server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []core.Hit
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if len(got) != 1 || got[0].SNR != 12 {
		t.Errorf("unexpected hits: %+v", got)
	}
}

func TestEventsHandlerReturnsResultsEvents(t *testing.T) {
	results := testResults(t, nil)
	results.Events = []core.Event{{StartingFrequencyHz: 1e9}}
	g := New(":0", results)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bliss/v1/events", nil)
	g.server.Handler.ServeHTTP(rec, req)

	var got []core.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if len(got) != 1 || got[0].StartingFrequencyHz != 1e9 {
		t.Errorf("unexpected events: %+v", got)
	}
}

func TestRenderHandlerReturnsPNG(t *testing.T) {
	results := testResults(t, nil)
	g := New(":0", results)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bliss/v1/render/0/0/0", nil)
	g.server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "image/png" {
		t.Errorf("expected image/png content type, got %q", rec.Header().Get("Content-Type"))
	}
	if rec.Body.Len() == 0 {
		t.Errorf("expected non-empty PNG body")
	}
}

func TestRenderHandlerRejectsOutOfRangeTarget(t *testing.T) {
	results := testResults(t, nil)
	g := New(":0", results)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bliss/v1/render/9/0/0", nil)
	g.server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
