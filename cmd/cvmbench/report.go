// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

// csvHeader names the columns written by writeCSV.
var csvHeader = []string{
	"mode", "elem_type", "stream_len", "distinct", "epsilon", "delta",
	"capacity", "trials", "failures", "mean_estimate", "mean_rel_err",
	"max_rel_err", "ns_per_run",
}

// logResult logs a summary line for the passed result.
func logResult(r *result) {
	switch r.mode {
	case modeNaive:
		log.Infof("naive    N=%d eps=%.1f delta=%.4f: mean %.1f "+
			"(exact %d), mean rel err %.4f, max rel err %.4f, "+
			"%d/%d failed, %v per run", r.streamLen, r.epsilon,
			r.delta, r.meanEstimate(), r.distinct, r.meanRelErr(),
			r.maxRelErr, r.failures, r.trials, r.perRun())
	default:
		log.Infof("priority N=%d s=%d: mean %.1f (exact %d), mean rel "+
			"err %.4f, max rel err %.4f, %v per run", r.streamLen,
			r.capacity, r.meanEstimate(), r.distinct, r.meanRelErr(),
			r.maxRelErr, r.perRun())
	}
}

// formatFloat formats f for the CSV output.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// writeCSV writes the header followed by one row per result to w.
func writeCSV(w io.Writer, results []*result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.mode,
			r.elemType,
			strconv.Itoa(r.streamLen),
			strconv.Itoa(r.distinct),
			formatFloat(r.epsilon),
			formatFloat(r.delta),
			strconv.Itoa(r.capacity),
			strconv.Itoa(r.trials),
			strconv.Itoa(r.failures),
			formatFloat(r.meanEstimate()),
			formatFloat(r.meanRelErr()),
			formatFloat(r.maxRelErr),
			strconv.FormatInt(r.perRun().Nanoseconds(), 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// saveCSV writes the results to a new file at path.  The file is closed
// before returning so a failed flush to disk is reported.
func saveCSV(path string, results []*result) error {
	fo, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeCSV(fo, results); err != nil {
		fo.Close()
		return err
	}
	return fo.Close()
}
