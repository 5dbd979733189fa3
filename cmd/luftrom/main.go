// cmd/luftrom/main.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// luftrom turns the airspace descriptions published in AIP documents and
// NOTAM feeds into GeoJSON, OpenAir, and CSV output.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mmp/luftrom/assembler"
	"github.com/mmp/luftrom/aviation"
	"github.com/mmp/luftrom/config"
	"github.com/mmp/luftrom/export"
	"github.com/mmp/luftrom/log"
	"github.com/mmp/luftrom/math"
	"github.com/mmp/luftrom/parser"
	"github.com/mmp/luftrom/util"
	"golang.org/x/sync/errgroup"
)

var (
	configPath = flag.String("config", "luftrom.yaml", "Path to configuration file")
	logLevel   = flag.String("loglevel", "", "Log level: debug, info, warn, error (overrides config)")
	serial     = flag.Bool("serial", false, "Parse sources one at a time instead of concurrently")
)

func main() {
	flag.Parse()
	if flag.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "usage: luftrom [flags]\nwhere [flags] may be:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	lg := log.New(level, cfg.LogDir)

	if err := run(cfg, lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// Per-source parse results; sources are parsed concurrently but merged
// in configuration order so output is deterministic.
type sourceResult struct {
	records    []*aviation.AirspaceRecord
	activities []*aviation.TemporaryActivity
	warnings   *util.WarningLog
}

func run(cfg *config.Config, lg *log.Logger) error {
	sampling := aviation.DefaultSamplingConfig()
	if cfg.DegreesPerStep > 0 {
		sampling.DegreesPerStep = cfg.DegreesPerStep
	}
	for name, path := range cfg.Borders {
		ring, err := export.ReadBorderRing(path)
		if err != nil {
			return err
		}
		if sampling.Borders == nil {
			sampling.Borders = make(map[string][]math.Point2LL)
		}
		sampling.Borders[name] = ring
	}

	results := make([]sourceResult, len(cfg.Sources))

	var eg errgroup.Group
	if *serial {
		eg.SetLimit(1)
	}
	for i, src := range cfg.Sources {
		eg.Go(func() error {
			res, err := parseSource(src, lg)
			if err != nil {
				// A failed source never takes down the run; if every
				// source fails, the assembler reports no records.
				lg.Errorf("%v", err)
				res.warnings = &util.WarningLog{}
				res.warnings.Warning(err)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	// Merging is the serialization point: the assembler only ever runs
	// on this goroutine.
	asm := assembler.New(lg)
	for _, res := range results {
		asm.Add(res.records)
	}
	for _, res := range results {
		asm.LinkActivities(res.activities)
	}
	asm.BuildGeometry(sampling)

	warnings := asm.Warnings()
	for _, res := range results {
		warnings.Merge(res.warnings)
	}
	warnings.PrintWarnings(lg)

	recs, err := asm.Records()
	if err != nil {
		return err
	}
	lg.Infof("assembled %d records, %d warnings", len(recs), len(warnings.Warnings()))

	return writeOutputs(cfg, recs, lg)
}

func parseSource(src config.Source, lg *log.Logger) (sourceResult, error) {
	text, err := parser.ReadSource(src.Path)
	if err != nil {
		return sourceResult{}, err
	}

	ref := aviation.SourceRef{Document: src.Path, Href: src.Href}
	if src.NOTAM {
		acts, warnings := parser.ParseNOTAMs(ref, text, lg)
		return sourceResult{activities: acts, warnings: warnings}, nil
	}

	dialect, err := parser.DialectFromTag(src.Dialect)
	if err != nil {
		return sourceResult{}, &parser.SourceFailure{Path: src.Path, Err: err}
	}
	recs, warnings := parser.New(dialect, lg).Parse(ref, text)
	lg.Infof("%s: %d records", src.Path, len(recs))
	return sourceResult{records: recs, warnings: warnings}, nil
}

func writeOutputs(cfg *config.Config, recs []*aviation.AirspaceRecord, lg *log.Logger) error {
	write := func(path string, f func(*os.File) error) error {
		if path == "" {
			return nil
		}
		w, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := f(w); err != nil {
			w.Close()
			return err
		}
		lg.Infof("wrote %s", path)
		return w.Close()
	}

	if err := write(cfg.Output.GeoJSON, func(w *os.File) error {
		return export.WriteGeoJSON(w, recs, lg)
	}); err != nil {
		return err
	}
	if err := write(cfg.Output.OpenAirFt, func(w *os.File) error {
		return export.WriteOpenAir(w, recs, true)
	}); err != nil {
		return err
	}
	if err := write(cfg.Output.OpenAirM, func(w *os.File) error {
		return export.WriteOpenAir(w, recs, false)
	}); err != nil {
		return err
	}
	return write(cfg.Output.Table, func(w *os.File) error {
		return export.WriteTable(w, recs)
	})
}
