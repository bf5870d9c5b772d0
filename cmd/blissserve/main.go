// Command blissserve loads a completed cadence search plan and serves its
// hits and events over HTTP via the gateway package, the generalization
// of the teacher's server/server.go SpectreServer collector into a
// read-only results API.
package main

import (
	"flag"
	"math/rand"

	"github.com/golang/glog"

	"github.com/hb9tf/bliss/config"
	"github.com/hb9tf/bliss/core"
	"github.com/hb9tf/bliss/datasource"
	"github.com/hb9tf/bliss/driftsearch"
	"github.com/hb9tf/bliss/event"
	"github.com/hb9tf/bliss/gateway"
	"github.com/hb9tf/bliss/noise"
	"github.com/hb9tf/bliss/preprocess"
)

var (
	listen   = flag.String("listen", ":8443", "Address to listen on.")
	certFile = flag.String("certFile", "", "Path of the file containing the certificate (including the chained intermediates and root) for the TLS connection.")
	keyFile  = flag.String("keyFile", "", "Path of the file containing the key for the TLS connection.")
	planFile = flag.String("plan", "", "Path of the YAML cadence search plan to run and serve.")

	synthNtsteps = flag.Int("synthNtsteps", 16, "Number of time steps to synthesize per scan.")
	synthNchans  = flag.Int("synthNchans", 1024, "Number of frequency channels to synthesize per scan.")
)

func buildScan(t config.TargetConfig, finePerCoarse int64) (*core.Scan, error) {
	metadata := core.ScanMetadata{
		Fch1:       1420.0,
		Foff:       -2.7939677238464355e-06,
		Tsamp:      18.25361108,
		SourceName: t.SourceName,
	}
	paths := t.ScanPaths
	if len(paths) == 0 {
		paths = []string{t.SourceName}
	}
	rng := rand.New(rand.NewSource(int64(len(paths))))
	power := datasource.GaussianWaterfall(rng, *synthNtsteps, *synthNchans, 0, 1)
	source := datasource.NewSyntheticScan(paths[0], metadata, power)
	return core.NewScanFromDataSource(source, finePerCoarse)
}

func wirePipeline(scan *core.Scan, search config.SearchConfig) {
	preprocess.AddExciseDC(scan)
	preprocess.AddNormalize(scan)
	preprocess.AddSigmaClipFlag(scan, search.SigmaClip.ToOptions())
	preprocess.AddSpectralKurtosisFlag(scan, search.Kurtosis.ToOptions())
	noise.AddEstimate(scan, search.Noise.ToOptions())

	integrateOpts := search.Integrate.ToOptions()
	hitOpts := search.HitSearch.ToOptions()
	filterOpts := search.Filter.ToOptions()
	scan.AddCoarseChannelTransform(func(cc *core.CoarseChannel) (*core.CoarseChannel, error) {
		driftsearch.AddIntegrate(cc, integrateOpts)
		cc.SetHitsProducer(func() ([]core.Hit, error) {
			plane, err := cc.IntegratedDriftPlane()
			if err != nil {
				return nil, err
			}
			noiseStats, ok := cc.NoiseEstimate()
			if !ok {
				return nil, core.ErrNotComputed
			}
			hits, err := driftsearch.Search(plane, noiseStats, cc, cc.Index, hitOpts)
			if err != nil {
				return nil, err
			}
			return driftsearch.FilterHits(hits, filterOpts), nil
		})
		return cc, nil
	}, "driftsearch")
}

// runCadence rebuilds and searches the plan's cadence eagerly, forcing
// every coarse channel so the gateway has hits/events ready to serve
// from the moment it starts listening.
func runCadence(plan *config.Plan) (*core.Cadence, []core.Event, error) {
	onScan, err := buildScan(plan.Cadence.On, plan.Settings.FinePerCoarse)
	if err != nil {
		return nil, nil, err
	}
	wirePipeline(onScan, plan.Search)
	onTarget := core.NewObservationTarget(plan.Cadence.On.SourceName, []*core.Scan{onScan})

	targets := []*core.ObservationTarget{onTarget}
	for _, off := range plan.Cadence.Off {
		offScan, err := buildScan(off, plan.Settings.FinePerCoarse)
		if err != nil {
			return nil, nil, err
		}
		wirePipeline(offScan, plan.Search)
		targets = append(targets, core.NewObservationTarget(off.SourceName, []*core.Scan{offScan}))
	}

	cadence := core.NewCadence(targets)
	for i := int64(0); i < onScan.NumCoarseChannels(); i++ {
		if _, err := onScan.ReadCoarseChannel(i); err != nil {
			glog.Warningf("WARN: coarse channel %d failed to materialise: %s", i, err)
		}
	}
	events := event.Search(cadence)
	return cadence, events, nil
}

func main() {
	flag.Set("logtostderr", "false")
	flag.Set("stderrthreshold", "WARNING")
	flag.Set("v", "1")
	flag.Parse()

	if *planFile == "" {
		glog.Exit("-plan is required")
	}
	plan, err := config.Load(*planFile)
	if err != nil {
		glog.Exitf("loading plan: %s", err)
	}

	cadence, events, err := runCadence(plan)
	if err != nil {
		glog.Exitf("running cadence search: %s", err)
	}
	glog.Infof("serving %d events over %d cadence targets", len(events), len(cadence.Targets))

	g := gateway.New(*listen, &gateway.Results{Cadence: cadence, Events: events})
	if *certFile != "" || *keyFile != "" {
		glog.Fatal(g.ListenAndServeTLS(*certFile, *keyFile))
	} else {
		glog.Infoln("Resorting to serving HTTP because there was no certificate and key defined.")
		glog.Fatal(g.ListenAndServe())
	}
}
