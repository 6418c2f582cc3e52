// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// cvmbench measures the accuracy and speed of the distinct count estimators
// over generated or file-backed streams.
package main

import (
	"os"
	"path/filepath"

	"github.com/cvmsuite/cvm/internal/version"
	"github.com/cvmsuite/cvm/rng"
)

// run loads or generates the streams and runs the configured estimators.
func run(cfg *config, src rng.Source) ([]*result, error) {
	if cfg.InFile != "" {
		fi, err := os.Open(cfg.InFile)
		if err != nil {
			log.Errorf("Failed to open file %v: %v", cfg.InFile, err)
			return nil, err
		}
		defer fi.Close()

		stream, err := readStream(fi)
		if err != nil {
			log.Errorf("Failed to read stream from %v: %v",
				cfg.InFile, err)
			return nil, err
		}
		return runSingle(cfg, stream, "string", src)
	}

	switch cfg.ElemBits {
	case 8:
		return benchGenerated[uint8](cfg, src)
	case 16:
		return benchGenerated[uint16](cfg, src)
	case 32:
		return benchGenerated[uint32](cfg, src)
	default:
		return benchGenerated[uint64](cfg, src)
	}
}

// realMain is the real main function for the utility.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is called.
func realMain() error {
	// Load configuration and parse command line.
	cfg, _, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	// Setup logging.
	defer os.Stdout.Sync()
	if cfg.LogDir != "" {
		err := initLogRotator(filepath.Join(cfg.LogDir,
			defaultLogFilename))
		if err != nil {
			return err
		}
		defer logRotator.Close()
	}
	setLogLevels(cfg.DebugLevel)
	log.Infof("Version %s", version.String())

	var src rng.Source
	if cfg.Seed != 0 {
		log.Infof("Using seed %d", cfg.Seed)
		src = rng.NewSource(cfg.Seed)
	} else {
		src = rng.NewEntropySource()
	}

	results, err := run(cfg, src)
	if err != nil {
		log.Errorf("%v", err)
		return err
	}
	if cfg.Mode != modeSweep {
		for _, r := range results {
			logResult(r)
		}
	}

	if cfg.CSVFile != "" {
		if err := saveCSV(cfg.CSVFile, results); err != nil {
			log.Errorf("Failed to write results to %v: %v",
				cfg.CSVFile, err)
			return err
		}
		log.Infof("Wrote %d results to %v", len(results), cfg.CSVFile)
	}

	return nil
}

func main() {
	// Work around defer not working after os.Exit()
	if err := realMain(); err != nil {
		os.Exit(1)
	}
}
