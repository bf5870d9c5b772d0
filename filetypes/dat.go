// Package filetypes implements the file-format-adjacent wire records the
// core is responsible for validating against (spec section 6): the
// TurboSETI-compatible ".dat" hit table and a length-prefixed Hit
// wire-record standing in for the Cap'n Proto envelope. Full HDF5,
// Filterbank and Cap'n Proto codegen are external collaborators outside
// this module's scope; see DESIGN.md for why this package is built on
// stdlib encoding/binary rather than a fetched capnp toolchain.
package filetypes

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hb9tf/bliss/core"
)

// DatHeader carries the metadata a TurboSETI ".dat" file's header block
// records alongside its hit table.
type DatHeader struct {
	FileID        string
	SourceName    string
	MJD           float64
	SourceRAHours float64
	SourceDecDeg  float64
	DeltaTSec     float64
	DeltaFHz      float64
	MaxDriftRate  float64
	ObsLengthSec  float64
}

// WriteDat writes header and hits in the TurboSETI ".dat" text format
// (spec section 6) to w. Hit numbering is 1-based.
func WriteDat(w io.Writer, header DatHeader, hits []core.Hit) error {
	ra := formatRAHoursToSexagesimal(header.SourceRAHours)
	dec := formatDecDegToSexagesimal(header.SourceDecDeg)

	if _, err := fmt.Fprintf(w,
		"# -------------------------- o --------------------------\n"+
			"# File ID: %s\n"+
			"# -------------------------- o --------------------------\n"+
			"# Source:%s\n"+
			"# MJD: %v\tRA: %ss\tDEC:%s\n"+
			"# DELTAT: %f\tDELTAF(Hz): %f\tmax_drift_rate: %v\tobs_length: %f\n"+
			"# --------------------------\n"+
			"# Top_Hit_#\tDrift_Rate\tSNR\tUncorrected_Frequency\tCorrected_Frequency\tIndex\tfreq_start\tfreq_end\tSEFD\tSEFD_freq\tCoarse_Channel_Number\tFull_number_of_hits\n"+
			"# --------------------------\n",
		header.FileID, header.SourceName, header.MJD, ra, dec,
		header.DeltaTSec, header.DeltaFHz, header.MaxDriftRate, header.ObsLengthSec,
	); err != nil {
		return fmt.Errorf("write dat header: %w", core.ErrIOFailure)
	}

	for i, h := range hits {
		endFreq := h.StartFreqMHz + (h.DurationSec*h.DriftRateHzPerSec)/1e6
		mid := (h.StartFreqMHz + endFreq) / 2.0
		_, err := fmt.Fprintf(w, "%06d\t%f\t%f\t%f\t%f\t%d\t%f\t%f\t%f\t%f\t%d\t%d\n",
			i+1,
			h.DriftRateHzPerSec,
			h.SNR,
			mid,
			mid,
			h.StartFreqIndex,
			h.StartFreqMHz,
			endFreq,
			0.0, // SEFD placeholder, not modeled by this core
			0.0, // SEFD_freq placeholder
			h.CoarseChannelNumber,
			len(hits),
		)
		if err != nil {
			return fmt.Errorf("write dat hit %d: %w", i+1, core.ErrIOFailure)
		}
	}
	return nil
}

var datHitLineRE = regexp.MustCompile(
	`^(\d+)\t(-?[\d.]+)\t([\d.]+)\t([\d.]+)\t([\d.]+)\t(\d+)\t([\d.]+)\t([\d.]+)\t([\d.]+)\t([\d.]+)\t(\d+)\t(\d+)$`)

// ReadDat parses a TurboSETI ".dat" file's hit table, ignoring header
// comment lines. Restores drift_rate, snr, start_freq_index,
// start_freq_MHz and coarse_channel_number to the precision they were
// written with.
func ReadDat(r io.Reader) ([]core.Hit, error) {
	scanner := bufio.NewScanner(r)
	var hits []core.Hit
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		match := datHitLineRE.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		driftRate, _ := strconv.ParseFloat(match[2], 64)
		snr, _ := strconv.ParseFloat(match[3], 64)
		startFreqIndex, _ := strconv.ParseInt(match[6], 10, 64)
		startFreqMHz, _ := strconv.ParseFloat(match[7], 64)
		coarseChannel, _ := strconv.ParseInt(match[11], 10, 64)

		hits = append(hits, core.Hit{
			DriftRateHzPerSec:   driftRate,
			SNR:                 snr,
			StartFreqIndex:      startFreqIndex,
			StartFreqMHz:        startFreqMHz,
			CoarseChannelNumber: coarseChannel,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dat: %w", core.ErrIOFailure)
	}
	return hits, nil
}

func formatRAHoursToSexagesimal(raHours float64) string {
	raDeg := raHours * 15.0
	hours := int(raDeg / 15.0)
	minutes := int((raDeg/15.0 - float64(hours)) * 60.0)
	seconds := ((raDeg/15.0-float64(hours))*60.0 - float64(minutes)) * 60.0
	return fmt.Sprintf("%02dh%02dm%06.3fs", hours, minutes, seconds)
}

func formatDecDegToSexagesimal(decDeg float64) string {
	degrees := int(decDeg)
	arcminutes := int((math.Abs(decDeg) - math.Abs(float64(degrees))) * 60.0)
	arcseconds := ((math.Abs(decDeg)-math.Abs(float64(degrees)))*60.0 - float64(arcminutes)) * 60.0
	sign := "+"
	if decDeg < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%02dd%02dm%05.2fs", sign, int(math.Abs(float64(degrees))), arcminutes, arcseconds)
}
