package export

import (
	"context"
	"fmt"

	"cloud.google.com/go/datastore"
	"github.com/golang/glog"

	"github.com/hb9tf/bliss/core"
)

const (
	datastoreSampleCountInfo = 1000
)

// DataStore persists hits and events to Google Cloud Datastore.
type DataStore struct {
	Client *datastore.Client
}

func (d *DataStore) WriteHits(ctx context.Context, hits <-chan core.Hit) error {
	counts := map[string]int{
		"error":   0,
		"success": 0,
		"total":   0,
	}
	for h := range hits {
		counts["total"] += 1
		k := datastore.IncompleteKey("Hit", nil)
		if _, err := d.Client.Put(ctx, k, &h); err != nil {
			counts["error"] += 1
			glog.Warningf("error storing hit in datastore: %s\n", err)
			continue
		}
		counts["success"] += 1
		if counts["total"]%datastoreSampleCountInfo == 0 {
			fmt.Printf("Hit export counts: %+v\n", counts)
		}
	}
	return nil
}

func (d *DataStore) WriteEvents(ctx context.Context, events <-chan core.Event) error {
	counts := map[string]int{
		"error":   0,
		"success": 0,
		"total":   0,
	}
	for e := range events {
		counts["total"] += 1
		k := datastore.IncompleteKey("Event", nil)
		if _, err := d.Client.Put(ctx, k, &e); err != nil {
			counts["error"] += 1
			glog.Warningf("error storing event in datastore: %s\n", err)
			continue
		}
		counts["success"] += 1
		if counts["total"]%datastoreSampleCountInfo == 0 {
			fmt.Printf("Event export counts: %+v\n", counts)
		}
	}
	return nil
}
