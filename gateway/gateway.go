// Package gateway serves a completed cadence's hits and events as a
// read-only JSON API, plus a PNG waterfall render endpoint,
// generalizing the teacher's net/http SpectreServer (server/server.go)
// into the gin router go.mod already carries but the teacher never wired.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"

	"github.com/hb9tf/bliss/core"
	"github.com/hb9tf/bliss/render"
)

// Results is the read-only snapshot a Gateway serves: a searched cadence
// plus the events found across it. Hits are gathered from the ON target's
// scans on every request via Scan.Hits, which loads and searches any
// coarse channel whose hits are not yet computed before responding.
type Results struct {
	Cadence *core.Cadence
	Events  []core.Event
}

// Gateway wires Results onto an HTTP mux.
type Gateway struct {
	results *Results
	server  *http.Server
}

// New builds a Gateway listening on addr, serving results.
func New(addr string, results *Results) *Gateway {
	router := gin.Default()

	g := &Gateway{
		results: results,
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
	}

	router.GET("/bliss/v1/hits", g.hitsHandler)
	router.GET("/bliss/v1/events", g.eventsHandler)
	router.GET("/bliss/v1/render/:target/:scan/:channel", g.renderHandler)

	return g
}

// ListenAndServe blocks serving HTTP, mirroring the teacher's server
// startup in server/server.go.
func (g *Gateway) ListenAndServe() error {
	return g.server.ListenAndServe()
}

// ListenAndServeTLS blocks serving HTTPS with the given cert/key pair.
func (g *Gateway) ListenAndServeTLS(certFile, keyFile string) error {
	return g.server.ListenAndServeTLS(certFile, keyFile)
}

// Shutdown gracefully stops the server.
func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

func (g *Gateway) hitsHandler(c *gin.Context) {
	var all []core.Hit
	if on := g.results.Cadence.OnTarget(); on != nil {
		for _, scan := range on.Scans {
			all = append(all, scan.Hits()...)
		}
	}
	c.JSON(http.StatusOK, all)
}

func (g *Gateway) eventsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, g.results.Events)
}

func (g *Gateway) findTargetScan(targetIdx, scanIdx int) (*core.Scan, error) {
	if targetIdx < 0 || targetIdx >= len(g.results.Cadence.Targets) {
		return nil, fmt.Errorf("target %d out of range", targetIdx)
	}
	target := g.results.Cadence.Targets[targetIdx]
	if scanIdx < 0 || scanIdx >= len(target.Scans) {
		return nil, fmt.Errorf("scan %d out of range in target %q", scanIdx, target.SourceName)
	}
	return target.Scans[scanIdx], nil
}

// renderHandler streams a PNG waterfall of one coarse channel's raw power
// tensor, addressed by cadence-target index, scan index and channel index.
func (g *Gateway) renderHandler(c *gin.Context) {
	targetIdx, err := strconv.Atoi(c.Param("target"))
	if err != nil {
		c.String(http.StatusBadRequest, "bad target index: %s", err)
		return
	}
	scanIdx, err := strconv.Atoi(c.Param("scan"))
	if err != nil {
		c.String(http.StatusBadRequest, "bad scan index: %s", err)
		return
	}
	channelIdx, err := strconv.ParseInt(c.Param("channel"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "bad channel index: %s", err)
		return
	}

	scan, err := g.findTargetScan(targetIdx, scanIdx)
	if err != nil {
		c.String(http.StatusNotFound, "%s", err)
		return
	}
	cc, err := scan.ReadCoarseChannel(channelIdx)
	if err != nil {
		c.String(http.StatusNotFound, "reading coarse channel: %s", err)
		return
	}
	data, err := cc.Data()
	if err != nil {
		c.String(http.StatusInternalServerError, "reading channel data: %s", err)
		return
	}

	img := render.WaterfallHeatmap(data)
	c.Header("Content-Type", "image/png")
	if err := render.WriteImage(c.Writer, img, render.FormatPNG); err != nil {
		glog.Warningf("error writing PNG response: %s\n", err)
	}
}
