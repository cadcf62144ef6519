// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Command jsonperf measures how fast JSON files parse and serialize with
// jsonvalue, optionally next to other JSON libraries.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/kingpin/v2"
	"github.com/c2h5oh/datasize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/xdg-go/jsonvalue"
)

type config struct {
	files      []string
	maxDepth   int
	maxSize    byteSizeFlag
	indent     string
	ascii      bool
	compare    bool
	iterations int
	logLevel   string
}

// byteSizeFlag lets kingpin parse sizes such as "64MB".
type byteSizeFlag struct {
	datasize.ByteSize
}

func (f *byteSizeFlag) Set(s string) error {
	return f.UnmarshalText([]byte(s))
}

func newApp(cfg *config) *kingpin.Application {
	app := kingpin.New("jsonperf", "Measure JSON parse and serialize throughput.")
	app.Flag("max-depth", "Maximum nesting depth accepted by the parser.").
		Default(strconv.Itoa(jsonvalue.DefaultMaxDepth)).IntVar(&cfg.maxDepth)
	app.Flag("max-size", "Maximum input size, such as 64MB. Zero means no limit.").
		Default("0B").SetValue(&cfg.maxSize)
	app.Flag("indent", "Indent serialized output with this string.").StringVar(&cfg.indent)
	app.Flag("ascii", "Escape every non-ASCII character in serialized output.").BoolVar(&cfg.ascii)
	app.Flag("compare", "Also time encoding/json, json-iterator, go-json and BSON conversion.").BoolVar(&cfg.compare)
	app.Flag("iterations", "Timed runs per file and library.").Default("10").IntVar(&cfg.iterations)
	app.Flag("log.level", "Only log messages with the given severity or above.").
		Default("info").EnumVar(&cfg.logLevel, "debug", "info", "warn", "error")
	app.Arg("files", "JSON files to measure.").Required().ExistingFilesVar(&cfg.files)
	return app
}

func newLogger(lvl string, w io.Writer) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	var allow level.Option
	switch lvl {
	case "debug":
		allow = level.AllowDebug()
	case "warn":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		allow = level.AllowInfo()
	}
	return log.With(level.NewFilter(logger, allow), "ts", log.DefaultTimestampUTC)
}

func main() {
	var cfg config
	app := newApp(&cfg)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := newLogger(cfg.logLevel, os.Stderr)
	if err := run(cfg, os.Stdout, logger); err != nil {
		level.Error(logger).Log("msg", "jsonperf failed", "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
