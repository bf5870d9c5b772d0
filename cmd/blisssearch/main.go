// Command blisssearch runs a cadence search end-to-end: it builds a
// Scan per configured target from synthetic or in-memory sources, wires
// the preprocess/noise/drift-search pipeline onto every scan, runs the
// event search over the resulting cadence, and exports hits and events
// to the configured sink. It is the generalization of the teacher's
// spectre.go and collection/spectre.go SDR-sweep CLI into a search over
// existing waterfall data.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"math/rand"
	"strings"
	"time"

	sqlpkg "database/sql"

	"github.com/dustin/go-humanize"
	elasticsearch "github.com/elastic/go-elasticsearch/v7"
	"github.com/go-sql-driver/mysql"
	"github.com/golang/glog"
	"github.com/google/uuid"

	"cloud.google.com/go/datastore"
	"google.golang.org/api/option"

	// Blind import to register the sqlite3 driver used by export.SQL.
	_ "github.com/mattn/go-sqlite3"

	"github.com/hb9tf/bliss/config"
	"github.com/hb9tf/bliss/core"
	"github.com/hb9tf/bliss/datasource"
	"github.com/hb9tf/bliss/driftsearch"
	"github.com/hb9tf/bliss/event"
	"github.com/hb9tf/bliss/export"
	"github.com/hb9tf/bliss/noise"
	"github.com/hb9tf/bliss/preprocess"
)

var (
	planFile = flag.String("plan", "", "Path of the YAML cadence search plan to run.")

	// synthetic waterfall generation, used for every scan whether or not
	// a plan lists scan paths; lets the binary demo a full search without
	// real filterbank input, mirroring the teacher's synthetic sweep-less
	// demo mode.
	synthNtsteps = flag.Int("synthNtsteps", 16, "Number of time steps to synthesize per scan.")
	synthNchans  = flag.Int("synthNchans", 1024, "Number of frequency channels to synthesize per scan.")

	esUser    = flag.String("esUser", "elastic", "Username to use for elastic export.")
	esPwdFile = flag.String("esPwdFile", "", "File to read password for elastic export from.")
	esEndpoints = flag.String("esEndpoints", "http://localhost:9200", "Comma separated list of endpoints for elastic export.")

	gcpProject           = flag.String("gcpProject", "", "GCP project for datastore export.")
	gcpServiceAccountKey = flag.String("gcpSvcAcctKey", "", "GCP service account key file (JSON) for datastore export.")

	mysqlServer       = flag.String("mysqlServer", "127.0.0.1:3306", "MySQL TCP server endpoint.")
	mysqlUser         = flag.String("mysqlUser", "", "MySQL DB user.")
	mysqlPasswordFile = flag.String("mysqlPasswordFile", "", "Path to file containing the MySQL password.")
	mysqlDBName       = flag.String("mysqlDBName", "bliss", "MySQL DB name.")

	httpGatewayServer = flag.String("httpGatewayServer", "", "Base URL of a server to POST results to (bliss/v1/hits, bliss/v1/events), when output.sink is http.")
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

	// Non-goal per spec section 1: no real filterbank/HDF5 reader ships
	// with this core, so each target becomes one deterministic synthetic
	// waterfall (spec section 8's seed-test generator), named after its
	// first scan path and seeded by the number of configured paths for
	// reproducibility. Further scan paths are not read.
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
				return nil, fmt.Errorf("hit search: %w", err)
			}
			noiseStats, ok := cc.NoiseEstimate()
			if !ok {
				return nil, fmt.Errorf("hit search: no noise estimate on channel: %w", core.ErrNotComputed)
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

func buildExporter(sink string) (export.HitExporter, export.EventExporter, error) {
	switch strings.ToLower(sink) {
	case "csv":
		e := &export.CSV{}
		return e, e, nil
	case "sqlite":
		db, err := sqlpkg.Open("sqlite3", "/tmp/bliss.db")
		if err != nil {
			return nil, nil, err
		}
		e := &export.SQL{DB: db}
		return e, e, nil
	case "mysql":
		pass, err := ioutil.ReadFile(*mysqlPasswordFile)
		if err != nil {
			return nil, nil, err
		}
		cfg := mysql.Config{
			User:   *mysqlUser,
			Passwd: strings.TrimSpace(string(pass)),
			Net:    "tcp",
			Addr:   *mysqlServer,
			DBName: *mysqlDBName,
		}
		db, err := sqlpkg.Open("mysql", cfg.FormatDSN())
		if err != nil {
			return nil, nil, err
		}
		db.SetConnMaxLifetime(3 * time.Minute)
		e := &export.MySQL{DB: db}
		return e, e, nil
	case "datastore":
		client, err := datastore.NewClient(context.Background(), *gcpProject, option.WithCredentialsFile(*gcpServiceAccountKey))
		if err != nil {
			return nil, nil, err
		}
		e := &export.DataStore{Client: client}
		return e, e, nil
	case "elastic":
		pwd, err := ioutil.ReadFile(*esPwdFile)
		if err != nil {
			return nil, nil, err
		}
		client, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: strings.Split(*esEndpoints, ","),
			Username:  *esUser,
			Password:  strings.TrimSpace(string(pwd)),
		})
		if err != nil {
			return nil, nil, err
		}
		e := &export.Elastic{Client: client}
		return e, e, nil
	case "http":
		e := &export.HTTPGateway{Server: *httpGatewayServer}
		return e, e, nil
	default:
		return nil, nil, fmt.Errorf("%q is not a supported export sink, pick one of: csv, sqlite, mysql, datastore, elastic, http", sink)
	}
}

func main() {
	flag.Set("logtostderr", "false")
	flag.Set("stderrthreshold", "WARNING")
	flag.Set("v", "1")
	flag.Parse()

	runID := uuid.New().String()
	start := time.Now()
	glog.Infof("run %s: starting cadence search", runID)

	if *planFile == "" {
		glog.Exit("-plan is required")
	}
	plan, err := config.Load(*planFile)
	if err != nil {
		glog.Exitf("loading plan: %s", err)
	}

	onScan, err := buildScan(plan.Cadence.On, plan.Settings.FinePerCoarse)
	if err != nil {
		glog.Exitf("building ON scan: %s", err)
	}
	wirePipeline(onScan, plan.Search)
	onTarget := core.NewObservationTarget(plan.Cadence.On.SourceName, []*core.Scan{onScan})

	targets := []*core.ObservationTarget{onTarget}
	for _, off := range plan.Cadence.Off {
		offScan, err := buildScan(off, plan.Settings.FinePerCoarse)
		if err != nil {
			glog.Exitf("building OFF scan for %q: %s", off.SourceName, err)
		}
		wirePipeline(offScan, plan.Search)
		targets = append(targets, core.NewObservationTarget(off.SourceName, []*core.Scan{offScan}))
	}

	cadence := core.NewCadence(targets)
	if err := cadence.ValidateConsistency(); err != nil {
		glog.Warningf("cadence consistency check failed: %s", err)
	}

	events := event.Search(cadence)
	glog.Infof("run %s: found %s events across cadence", runID, humanize.Comma(int64(len(events))))

	hitExporter, eventExporter, err := buildExporter(plan.Output.Sink)
	if err != nil {
		glog.Exitf("building exporter: %s", err)
	}

	ctx := context.Background()
	onHits := onScan.Hits()
	glog.Infof("run %s: exporting %s hits to %s sink", runID, humanize.Comma(int64(len(onHits))), plan.Output.Sink)
	hitCh := make(chan core.Hit, 1000)
	go func() {
		defer close(hitCh)
		for _, h := range onHits {
			hitCh <- h
		}
	}()
	if err := hitExporter.WriteHits(ctx, hitCh); err != nil {
		glog.Errorf("exporting hits: %s", err)
	}

	eventCh := make(chan core.Event, len(events))
	for _, e := range events {
		eventCh <- e
	}
	close(eventCh)
	if err := eventExporter.WriteEvents(ctx, eventCh); err != nil {
		glog.Errorf("exporting events: %s", err)
	}

	glog.Infof("run %s: finished in %s", runID, humanize.RelTime(start, time.Now(), "", ""))
	glog.Flush()
}
