package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"

	elasticsearch "github.com/elastic/go-elasticsearch/v7"
	esapi "github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/golang/glog"

	"github.com/hb9tf/bliss/core"
)

const (
	esHitsIndexName   = "bliss-hits"
	esEventsIndexName = "bliss-events"
	esSampleCountInfo = 1000
)

// Elastic persists hits and events to an Elasticsearch cluster.
type Elastic struct {
	Client *elasticsearch.Client
}

func getHitDocID(h core.Hit) string {
	return fmt.Sprintf("%d::%d::%d", h.CoarseChannelNumber, h.StartFreqIndex, h.RateIndex)
}

func getEventDocID(e core.Event) string {
	return fmt.Sprintf("%.6f::%.6f", e.StartingFrequencyHz, e.EventStartSeconds)
}

func (e *Elastic) logInfo() error {
	res, err := e.Client.Info()
	if err != nil {
		return err
	}
	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return err
	}
	glog.Infof("using Elastic client version %s and connected to server: %s", elasticsearch.Version, body)
	res.Body.Close()
	return nil
}

func (e *Elastic) WriteHits(ctx context.Context, hits <-chan core.Hit) error {
	if err := e.logInfo(); err != nil {
		return err
	}

	counts := map[string]int{
		"error":   0,
		"success": 0,
		"total":   0,
	}
	for h := range hits {
		counts["total"] += 1
		b, err := json.Marshal(h)
		if err != nil {
			counts["error"] += 1
			glog.Warningf("error marshalling hit: %s\n", err)
			continue
		}
		req := esapi.IndexRequest{
			Index:      esHitsIndexName,
			DocumentID: getHitDocID(h),
			Body:       bytes.NewReader(b),
			Refresh:    "true",
		}
		res, err := req.Do(ctx, e.Client)
		if err != nil {
			counts["error"] += 1
			glog.Warningf("error exporting hit: %s\n", err)
			continue
		}
		res.Body.Close()

		counts["success"] += 1
		if counts["total"]%esSampleCountInfo == 0 {
			fmt.Printf("Hit export counts: %+v\n", counts)
		}
	}
	return nil
}

func (e *Elastic) WriteEvents(ctx context.Context, events <-chan core.Event) error {
	if err := e.logInfo(); err != nil {
		return err
	}

	counts := map[string]int{
		"error":   0,
		"success": 0,
		"total":   0,
	}
	for ev := range events {
		counts["total"] += 1
		b, err := json.Marshal(ev)
		if err != nil {
			counts["error"] += 1
			glog.Warningf("error marshalling event: %s\n", err)
			continue
		}
		req := esapi.IndexRequest{
			Index:      esEventsIndexName,
			DocumentID: getEventDocID(ev),
			Body:       bytes.NewReader(b),
			Refresh:    "true",
		}
		res, err := req.Do(ctx, e.Client)
		if err != nil {
			counts["error"] += 1
			glog.Warningf("error exporting event: %s\n", err)
			continue
		}
		res.Body.Close()

		counts["success"] += 1
		if counts["total"]%esSampleCountInfo == 0 {
			fmt.Printf("Event export counts: %+v\n", counts)
		}
	}
	return nil
}
