package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/golang/glog"

	"github.com/hb9tf/bliss/core"
)

const (
	contentType             = "application/json"
	hitsEndpoint            = "bliss/v1/hits"
	eventsEndpoint          = "bliss/v1/events"
	defaultSendSampleAmount = 100
)

// HTTPGateway batches hits and events and POSTs them as JSON to the
// bliss/v1/hits and bliss/v1/events paths under Server, mirroring the
// teacher's spectre collector endpoint. The gateway package serves those
// paths for GET only and does not accept these POSTs.
type HTTPGateway struct {
	Server            string
	SendSamplesAmount int
}

type collectResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

func (s *HTTPGateway) sendSamplesAmount() int {
	if s.SendSamplesAmount > 0 {
		return s.SendSamplesAmount
	}
	return defaultSendSampleAmount
}

func (s *HTTPGateway) post(endpoint string, batch interface{}) (collectResponse, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return collectResponse{}, fmt.Errorf("marshalling batch: %w", err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/%s", strings.TrimRight(s.Server, "/"), endpoint), contentType, bytes.NewBuffer(body))
	if err != nil {
		return collectResponse{}, fmt.Errorf("posting batch: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return collectResponse{}, fmt.Errorf("reading response body: %w", err)
	}

	var out collectResponse
	json.Unmarshal(respBody, &out)
	return out, nil
}

func (s *HTTPGateway) WriteHits(ctx context.Context, hits <-chan core.Hit) error {
	amount := s.sendSamplesAmount()
	var batch []core.Hit
	for h := range hits {
		batch = append(batch, h)
		if len(batch) < amount {
			continue // we haven't collected enough hits to send yet
		}
		resp, err := s.post(hitsEndpoint, batch)
		if err != nil {
			glog.Warningf("error submitting hits: %s\n", err)
		} else {
			glog.Infof("submitted %v hits to server %s", resp.Count, s.Server)
		}
		batch = nil
	}
	if len(batch) > 0 {
		if resp, err := s.post(hitsEndpoint, batch); err != nil {
			glog.Warningf("error submitting hits: %s\n", err)
		} else {
			glog.Infof("submitted %v hits to server %s", resp.Count, s.Server)
		}
	}
	return nil
}

func (s *HTTPGateway) WriteEvents(ctx context.Context, events <-chan core.Event) error {
	amount := s.sendSamplesAmount()
	var batch []core.Event
	for e := range events {
		batch = append(batch, e)
		if len(batch) < amount {
			continue // we haven't collected enough events to send yet
		}
		resp, err := s.post(eventsEndpoint, batch)
		if err != nil {
			glog.Warningf("error submitting events: %s\n", err)
		} else {
			glog.Infof("submitted %v events to server %s", resp.Count, s.Server)
		}
		batch = nil
	}
	if len(batch) > 0 {
		if resp, err := s.post(eventsEndpoint, batch); err != nil {
			glog.Warningf("error submitting events: %s\n", err)
		} else {
			glog.Infof("submitted %v events to server %s", resp.Count, s.Server)
		}
	}
	return nil
}
