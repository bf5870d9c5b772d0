package export

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang/glog"

	"github.com/hb9tf/bliss/core"
)

const (
	mysqlSampleCountInfo = 1000

	mysqlCreateHitsTableTmpl = `CREATE TABLE IF NOT EXISTS hits (
		ID                  INTEGER NOT NULL PRIMARY KEY AUTO_INCREMENT,
		CoarseChannelNumber INTEGER,
		StartFreqIndex      INTEGER,
		StartFreqMHz        DOUBLE,
		StartTimeSec        DOUBLE,
		DurationSec         DOUBLE,
		RateIndex           INTEGER,
		DriftRateHzPerSec   DOUBLE,
		Power               DOUBLE,
		SNR                 DOUBLE,
		Bandwidth           DOUBLE,
		BinWidth            INTEGER,
		IntegratedChannels  INTEGER,
		LowSK               INTEGER,
		HighSK              INTEGER,
		SigmaClip           INTEGER
	);`
	mysqlInsertHitTmpl = `INSERT INTO hits(
		CoarseChannelNumber,
		StartFreqIndex,
		StartFreqMHz,
		StartTimeSec,
		DurationSec,
		RateIndex,
		DriftRateHzPerSec,
		Power,
		SNR,
		Bandwidth,
		BinWidth,
		IntegratedChannels,
		LowSK,
		HighSK,
		SigmaClip
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	mysqlCreateEventsTableTmpl = `CREATE TABLE IF NOT EXISTS events (
		ID                       INTEGER NOT NULL PRIMARY KEY AUTO_INCREMENT,
		HitCount                 INTEGER,
		StartingFrequencyHz      DOUBLE,
		EventStartSeconds        DOUBLE,
		EventEndSeconds          DOUBLE,
		AveragePower             DOUBLE,
		AverageBandwidth         DOUBLE,
		AverageSNR               DOUBLE,
		AverageDriftRateHzPerSec DOUBLE
	);`
	mysqlInsertEventTmpl = `INSERT INTO events(
		HitCount,
		StartingFrequencyHz,
		EventStartSeconds,
		EventEndSeconds,
		AveragePower,
		AverageBandwidth,
		AverageSNR,
		AverageDriftRateHzPerSec
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
)

// MySQL persists hits and events to a MySQL database via go-sql-driver/mysql.
type MySQL struct {
	DB *sql.DB
}

func (m *MySQL) WriteHits(ctx context.Context, hits <-chan core.Hit) error {
	if err := mysqlExec(m.DB, mysqlCreateHitsTableTmpl); err != nil {
		return fmt.Errorf("unable to create hits table: %s", err)
	}

	counts := map[string]int{
		"error":   0,
		"success": 0,
		"total":   0,
	}
	for hit := range hits {
		counts["total"] += 1
		if err := mysqlInsertHit(m.DB, hit); err != nil {
			counts["error"] += 1
			glog.Warningf("error storing hit in mysql: %s\n", err)
			continue
		}
		counts["success"] += 1
		if counts["total"]%mysqlSampleCountInfo == 0 {
			glog.Infof("Hit export counts: %+v\n", counts)
		}
	}

	return nil
}

func (m *MySQL) WriteEvents(ctx context.Context, events <-chan core.Event) error {
	if err := mysqlExec(m.DB, mysqlCreateEventsTableTmpl); err != nil {
		return fmt.Errorf("unable to create events table: %s", err)
	}

	counts := map[string]int{
		"error":   0,
		"success": 0,
		"total":   0,
	}
	for event := range events {
		counts["total"] += 1
		if err := mysqlInsertEvent(m.DB, event); err != nil {
			counts["error"] += 1
			glog.Warningf("error storing event in mysql: %s\n", err)
			continue
		}
		counts["success"] += 1
		if counts["total"]%mysqlSampleCountInfo == 0 {
			glog.Infof("Event export counts: %+v\n", counts)
		}
	}

	return nil
}

func mysqlExec(db *sql.DB, stmtTmpl string) error {
	statement, err := db.Prepare(stmtTmpl)
	if err != nil {
		return err
	}
	if _, err := statement.Exec(); err != nil {
		return err
	}
	return nil
}

func mysqlInsertHit(db *sql.DB, h core.Hit) error {
	statement, err := db.Prepare(mysqlInsertHitTmpl)
	if err != nil {
		return err
	}
	if _, err := statement.Exec(
		h.CoarseChannelNumber,
		h.StartFreqIndex,
		h.StartFreqMHz,
		h.StartTimeSec,
		h.DurationSec,
		h.RateIndex,
		h.DriftRateHzPerSec,
		h.Power,
		h.SNR,
		h.Bandwidth,
		h.BinWidth,
		h.IntegratedChannels,
		h.RFICounts.LowSpectralKurtosis,
		h.RFICounts.HighSpectralKurtosis,
		h.RFICounts.SigmaClip,
	); err != nil {
		return err
	}
	return nil
}

func mysqlInsertEvent(db *sql.DB, e core.Event) error {
	statement, err := db.Prepare(mysqlInsertEventTmpl)
	if err != nil {
		return err
	}
	if _, err := statement.Exec(
		len(e.Hits),
		e.StartingFrequencyHz,
		e.EventStartSeconds,
		e.EventEndSeconds,
		e.AveragePower,
		e.AverageBandwidth,
		e.AverageSNR,
		e.AverageDriftRateHzPerSec,
	); err != nil {
		return err
	}
	return nil
}
