package export

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang/glog"

	"github.com/hb9tf/bliss/core"
)

const (
	sqlSampleCountInfo = 1000

	sqlCreateHitsTableTmpl = `CREATE TABLE IF NOT EXISTS hits (
		"ID"                  INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		"CoarseChannelNumber" INTEGER,
		"StartFreqIndex"      INTEGER,
		"StartFreqMHz"        REAL,
		"StartTimeSec"        REAL,
		"DurationSec"         REAL,
		"RateIndex"           INTEGER,
		"DriftRateHzPerSec"   REAL,
		"Power"               REAL,
		"SNR"                 REAL,
		"Bandwidth"           REAL,
		"BinWidth"            INTEGER,
		"IntegratedChannels"  INTEGER,
		"LowSK"               INTEGER,
		"HighSK"              INTEGER,
		"SigmaClip"           INTEGER
	);`
	sqlInsertHitTmpl = `INSERT INTO hits (
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

	sqlCreateEventsTableTmpl = `CREATE TABLE IF NOT EXISTS events (
		"ID"                       INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		"HitCount"                 INTEGER,
		"StartingFrequencyHz"      REAL,
		"EventStartSeconds"        REAL,
		"EventEndSeconds"          REAL,
		"AveragePower"             REAL,
		"AverageBandwidth"         REAL,
		"AverageSNR"               REAL,
		"AverageDriftRateHzPerSec" REAL
	);`
	sqlInsertEventTmpl = `INSERT INTO events (
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

// SQL persists hits and events to a sqlite database via mattn/go-sqlite3.
type SQL struct {
	DB *sql.DB
}

func (s *SQL) WriteHits(ctx context.Context, hits <-chan core.Hit) error {
	if err := sqlExec(s.DB, sqlCreateHitsTableTmpl); err != nil {
		return fmt.Errorf("unable to create hits table: %s", err)
	}

	counts := map[string]int{
		"error":   0,
		"success": 0,
		"total":   0,
	}
	for hit := range hits {
		counts["total"] += 1
		if err := sqlInsertHit(s.DB, hit); err != nil {
			counts["error"] += 1
			glog.Warningf("error storing hit in sqlite DB: %s\n", err)
			continue
		}
		counts["success"] += 1
		if counts["total"]%sqlSampleCountInfo == 0 {
			glog.Infof("Hit export counts: %+v\n", counts)
		}
	}

	return nil
}

func (s *SQL) WriteEvents(ctx context.Context, events <-chan core.Event) error {
	if err := sqlExec(s.DB, sqlCreateEventsTableTmpl); err != nil {
		return fmt.Errorf("unable to create events table: %s", err)
	}

	counts := map[string]int{
		"error":   0,
		"success": 0,
		"total":   0,
	}
	for event := range events {
		counts["total"] += 1
		if err := sqlInsertEvent(s.DB, event); err != nil {
			counts["error"] += 1
			glog.Warningf("error storing event in sqlite DB: %s\n", err)
			continue
		}
		counts["success"] += 1
		if counts["total"]%sqlSampleCountInfo == 0 {
			glog.Infof("Event export counts: %+v\n", counts)
		}
	}

	return nil
}

func sqlExec(db *sql.DB, stmtTmpl string) error {
	statement, err := db.Prepare(stmtTmpl)
	if err != nil {
		return err
	}
	if _, err := statement.Exec(); err != nil {
		return err
	}
	return nil
}

func sqlInsertHit(db *sql.DB, h core.Hit) error {
	statement, err := db.Prepare(sqlInsertHitTmpl)
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

func sqlInsertEvent(db *sql.DB, e core.Event) error {
	statement, err := db.Prepare(sqlInsertEventTmpl)
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
