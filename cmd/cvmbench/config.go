// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btclog"
	"github.com/cvmsuite/cvm/internal/version"
	flags "github.com/jessevdk/go-flags"
)

const (
	modeNaive    = "naive"
	modePriority = "priority"
	modeSweep    = "sweep"

	defaultMode         = modePriority
	defaultStreamLen    = 100000
	defaultMaxStreamLen = 1000000
	defaultElemBits     = 32
	defaultEpsilon      = 0.5
	defaultDelta        = 0.01
	defaultCapacity     = 1000
	defaultTrials       = 10
	defaultDebugLevel   = "info"
	defaultLogFilename  = "cvmbench.log"
)

var knownModes = []string{modeNaive, modePriority, modeSweep}

// config defines the configuration options for cvmbench.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ShowVersion  bool    `short:"V" long:"version" description:"Display version information and exit"`
	Mode         string  `short:"m" long:"mode" description:"Estimator to run {naive, priority, sweep}"`
	StreamLen    int     `short:"n" long:"streamlen" description:"Number of elements in each generated stream"`
	MaxStreamLen int     `long:"maxstreamlen" description:"Largest stream length visited in sweep mode -- stream lengths are the powers of ten up to this value"`
	ElemBits     int     `short:"b" long:"elembits" description:"Width in bits of generated stream elements {8, 16, 32, 64}"`
	InFile       string  `short:"i" long:"infile" description:"Read newline-separated stream elements from this file instead of generating a stream"`
	Epsilon      float64 `short:"e" long:"epsilon" description:"Relative error bound for the naive estimator"`
	Delta        float64 `short:"d" long:"delta" description:"Failure probability for the naive estimator"`
	Capacity     int     `short:"s" long:"capacity" description:"Sample capacity for the priority estimator"`
	Trials       int     `short:"t" long:"trials" description:"Number of estimation runs per configuration"`
	Seed         uint64  `long:"seed" description:"Seed for stream generation and sampling -- Use 0 to seed from system entropy"`
	CSVFile      string  `long:"csv" description:"Write the per-configuration results to this CSV file"`
	LogDir       string  `long:"logdir" description:"Directory to write a rotated log file to -- Logs only to stdout when empty"`
	DebugLevel   string  `long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
}

// validMode returns whether or not mode is a supported run mode.
func validMode(mode string) bool {
	for _, knownMode := range knownModes {
		if mode == knownMode {
			return true
		}
	}

	return false
}

// validElemBits returns whether or not bits is a supported element width.
func validElemBits(bits int) bool {
	switch bits {
	case 8, 16, 32, 64:
		return true
	}
	return false
}

// validLogLevel returns whether or not logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	_, ok := btclog.LevelFromString(logLevel)
	return ok
}

// loadConfig initializes and parses the config using the passed command line
// options.
func loadConfig(args []string) (*config, []string, error) {
	// Default config.
	cfg := config{
		Mode:         defaultMode,
		StreamLen:    defaultStreamLen,
		MaxStreamLen: defaultMaxStreamLen,
		ElemBits:     defaultElemBits,
		Epsilon:      defaultEpsilon,
		Delta:        defaultDelta,
		Capacity:     defaultCapacity,
		Trials:       defaultTrials,
		DebugLevel:   defaultDebugLevel,
	}

	// Parse command line options.
	parser := flags.NewParser(&cfg, flags.Default)
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	if cfg.ShowVersion {
		fmt.Println(appName, "version", version.String())
		os.Exit(0)
	}

	// fail prints the error along with the usage and returns it.
	funcName := "loadConfig"
	fail := func(format string, a ...interface{}) (*config, []string, error) {
		err := fmt.Errorf("%s: "+format, append([]interface{}{funcName},
			a...)...)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	cfg.Mode = strings.ToLower(cfg.Mode)
	if !validMode(cfg.Mode) {
		return fail("the specified mode [%v] is invalid -- supported "+
			"modes %v", cfg.Mode, knownModes)
	}
	if !validElemBits(cfg.ElemBits) {
		return fail("the specified element width [%v] is invalid -- "+
			"supported widths are 8, 16, 32 and 64", cfg.ElemBits)
	}
	if cfg.StreamLen < 1 {
		return fail("the stream length must be positive -- parsed [%v]",
			cfg.StreamLen)
	}
	if cfg.MaxStreamLen < 1 {
		return fail("the maximum stream length must be positive -- "+
			"parsed [%v]", cfg.MaxStreamLen)
	}
	if !(cfg.Epsilon > 0 && cfg.Epsilon < 1) {
		return fail("epsilon must be in (0, 1) -- parsed [%v]",
			cfg.Epsilon)
	}
	if !(cfg.Delta > 0 && cfg.Delta < 1) {
		return fail("delta must be in (0, 1) -- parsed [%v]", cfg.Delta)
	}
	if cfg.Capacity < 1 {
		return fail("the capacity must be positive -- parsed [%v]",
			cfg.Capacity)
	}
	if cfg.Trials < 1 {
		return fail("the number of trials must be positive -- parsed "+
			"[%v]", cfg.Trials)
	}
	if cfg.InFile != "" && cfg.Mode == modeSweep {
		return fail("an input file can not be used in sweep mode")
	}
	if !validLogLevel(cfg.DebugLevel) {
		return fail("the specified debug level [%v] is invalid",
			cfg.DebugLevel)
	}

	return &cfg, remainingArgs, nil
}
