// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	gojson "github.com/goccy/go-json"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/xdg-go/jsonvalue"
	"github.com/xdg-go/jsonvalue/bsonconv"
)

// errNotDocument marks inputs a BSON benchmark cannot convert.
var errNotDocument = errors.New("top-level value is not an object or array of objects")

var errEmptyWalk = errors.New("walk visited no nodes")

// benchmark is one measured operation.  setup runs once per file outside the
// timer and returns the operation to time.
type benchmark struct {
	name  string
	setup func(data []byte) (func() error, error)
}

// timed wraps an operation that needs no preparation.
func timed(op func(data []byte) error) func([]byte) (func() error, error) {
	return func(data []byte) (func() error, error) {
		return func() error { return op(data) }, nil
	}
}

func benchmarks(cfg config) []benchmark {
	parseOpts := jsonvalue.ParseOptions{MaxDepth: cfg.maxDepth, MaxSize: int(cfg.maxSize.Bytes())}
	serializeOpts := jsonvalue.SerializeOptions{Indent: cfg.indent, ASCIIOnly: cfg.ascii}

	list := []benchmark{
		{name: "jsonvalue", setup: timed(func(data []byte) error {
			v, err := jsonvalue.Parse(data, parseOpts)
			if err != nil {
				return err
			}
			_, err = jsonvalue.Serialize(v, serializeOpts)
			return err
		})},
		{name: "jsonvalue parse", setup: timed(func(data []byte) error {
			_, err := jsonvalue.Parse(data, parseOpts)
			return err
		})},
		{name: "jsonvalue traverse", setup: func(data []byte) (func() error, error) {
			v, err := jsonvalue.Parse(data, parseOpts)
			if err != nil {
				return nil, err
			}
			return func() error {
				nodes := 0
				v.Walk(func(string, *jsonvalue.Value) bool {
					nodes++
					return true
				})
				if nodes == 0 {
					return errEmptyWalk
				}
				return nil
			}, nil
		}},
		{name: "jsonvalue stringify", setup: func(data []byte) (func() error, error) {
			v, err := jsonvalue.Parse(data, parseOpts)
			if err != nil {
				return nil, err
			}
			return func() error {
				_, err := jsonvalue.Serialize(v, serializeOpts)
				return err
			}, nil
		}},
		{name: "syntax parse", setup: timed(func(data []byte) error {
			_, err := jsonvalue.ParseSyntax(data, parseOpts)
			return err
		})},
		{name: "syntax traverse", setup: func(data []byte) (func() error, error) {
			root, err := jsonvalue.ParseSyntax(data, parseOpts)
			if err != nil {
				return nil, err
			}
			return func() error {
				nodes := 0
				root.Walk(func(*jsonvalue.SyntaxNode) bool {
					nodes++
					return true
				})
				if nodes == 0 {
					return errEmptyWalk
				}
				return nil
			}, nil
		}},
		{name: "syntax stringify", setup: func(data []byte) (func() error, error) {
			root, err := jsonvalue.ParseSyntax(data, parseOpts)
			if err != nil {
				return nil, err
			}
			return func() error {
				if root.String() != string(data) {
					return errors.New("syntax tree does not reproduce its input")
				}
				return nil
			}, nil
		}},
	}
	if !cfg.compare {
		return list
	}

	stdlib := func(unmarshal func([]byte, interface{}) error, marshal func(interface{}) ([]byte, error)) func([]byte) error {
		return func(data []byte) error {
			var x interface{}
			if err := unmarshal(data, &x); err != nil {
				return err
			}
			_, err := marshal(x)
			return err
		}
	}
	iter := jsoniter.ConfigCompatibleWithStandardLibrary
	bsonOpts := bsonconv.Options{MaxDepth: cfg.maxDepth}

	return append(list,
		benchmark{name: "encoding/json", setup: timed(stdlib(json.Unmarshal, json.Marshal))},
		benchmark{name: "json-iterator", setup: timed(stdlib(iter.Unmarshal, iter.Marshal))},
		benchmark{name: "go-json", setup: timed(stdlib(gojson.Unmarshal, gojson.Marshal))},
		benchmark{name: "jsonvalue->bson", setup: timed(func(data []byte) error {
			v, err := jsonvalue.Parse(data, parseOpts)
			if err != nil {
				return err
			}
			return toBSON(v, bsonOpts)
		})},
		benchmark{name: "driver extjson", setup: func(data []byte) (func() error, error) {
			v, err := jsonvalue.Parse(data, parseOpts)
			if err != nil {
				return nil, err
			}
			if v.Kind() != jsonvalue.KindObject {
				return nil, errNotDocument
			}
			return func() error {
				var raw bson.Raw
				return bson.UnmarshalExtJSON(data, false, &raw)
			}, nil
		}},
	)
}

// toBSON converts an object, or each object in an array, to BSON.
func toBSON(v jsonvalue.Value, opts bsonconv.Options) error {
	switch v.Kind() {
	case jsonvalue.KindObject:
		_, err := bsonconv.ToBSON(v, opts)
		return err
	case jsonvalue.KindArray:
		for _, elem := range v.Elements() {
			if elem.Kind() != jsonvalue.KindObject {
				return errNotDocument
			}
			if _, err := bsonconv.ToBSON(elem, opts); err != nil {
				return err
			}
		}
		return nil
	}
	return errNotDocument
}

func run(cfg config, w io.Writer, logger log.Logger) error {
	if cfg.iterations < 1 {
		return errors.Errorf("iterations must be positive, got %d", cfg.iterations)
	}
	list := benchmarks(cfg)

	for _, file := range cfg.files {
		data, err := os.ReadFile(file)
		if err != nil {
			return errors.Wrap(err, "reading input")
		}
		level.Info(logger).Log("msg", "measuring file", "file", file, "size", humanize.Bytes(uint64(len(data))))
		fmt.Fprintf(w, "%s (%s)\n", file, humanize.Bytes(uint64(len(data))))

		for _, b := range list {
			level.Debug(logger).Log("msg", "running benchmark", "file", file, "benchmark", b.name, "iterations", cfg.iterations)
			elapsed, err := runBenchmark(b, data, cfg.iterations)
			if errors.Is(err, errNotDocument) {
				level.Warn(logger).Log("msg", "skipping benchmark", "file", file, "benchmark", b.name, "err", err)
				continue
			}
			if err != nil {
				return errors.Wrapf(err, "%s: %s", file, b.name)
			}
			reportResult(w, b.name, len(data)*cfg.iterations, elapsed)
		}
	}
	return nil
}

func runBenchmark(b benchmark, data []byte, iterations int) (time.Duration, error) {
	op, err := b.setup(data)
	if err != nil {
		return 0, err
	}
	return measure(op, iterations)
}

func measure(op func() error, iterations int) (time.Duration, error) {
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if err := op(); err != nil {
			return 0, err
		}
	}
	return time.Since(start), nil
}

func reportResult(w io.Writer, label string, size int, elapsed time.Duration) {
	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}
	throughput := float64(size) / elapsed.Seconds()
	fmt.Fprintf(w, "%20s %12s/s\n", label, humanize.Bytes(uint64(throughput)))
}
