// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/require"

	"github.com/xdg-go/jsonvalue"
)

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFlags(t *testing.T) {
	path := writeInput(t, "doc.json", `{"a":1}`)

	var cfg config
	_, err := newApp(&cfg).Parse([]string{
		"--max-size=1KB", "--indent=\t", "--ascii", "--compare",
		"--iterations=3", "--log.level=debug", path,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1024), cfg.maxSize.Bytes())
	require.Equal(t, "\t", cfg.indent)
	require.True(t, cfg.ascii)
	require.True(t, cfg.compare)
	require.Equal(t, 3, cfg.iterations)
	require.Equal(t, "debug", cfg.logLevel)
	require.Equal(t, jsonvalue.DefaultMaxDepth, cfg.maxDepth)
	require.Equal(t, []string{path}, cfg.files)
}

func TestFlagsRejectBadInput(t *testing.T) {
	path := writeInput(t, "doc.json", `{}`)

	var cfg config
	_, err := newApp(&cfg).Parse([]string{"--log.level=loud", path})
	require.Error(t, err)

	_, err = newApp(&cfg).Parse([]string{"--max-size=lots", path})
	require.Error(t, err)

	_, err = newApp(&cfg).Parse([]string{filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
}

func TestRunReportsEveryBenchmark(t *testing.T) {
	path := writeInput(t, "doc.json", `{"a":[1,2.5,"x"],"b":{"c":null}}`)
	cfg := config{files: []string{path}, compare: true, iterations: 2}

	var out bytes.Buffer
	require.NoError(t, run(cfg, &out, log.NewNopLogger()))

	for _, b := range benchmarks(cfg) {
		require.Contains(t, out.String(), b.name)
	}
	require.True(t, strings.HasPrefix(out.String(), path))
}

func TestRunSkipsNonDocuments(t *testing.T) {
	path := writeInput(t, "array.json", `[1,2,3]`)
	cfg := config{files: []string{path}, compare: true, iterations: 1}

	var out, logs bytes.Buffer
	require.NoError(t, run(cfg, &out, newLogger("warn", &logs)))

	require.Contains(t, out.String(), "jsonvalue")
	require.NotContains(t, out.String(), "driver extjson")
	require.NotContains(t, out.String(), "jsonvalue->bson")
	require.Contains(t, logs.String(), "level=warn")
	require.Contains(t, logs.String(), "skipping benchmark")
}

func TestRunReportsParseErrors(t *testing.T) {
	path := writeInput(t, "bad.json", `{"a":}`)
	cfg := config{files: []string{path}, iterations: 1}

	err := run(cfg, &bytes.Buffer{}, log.NewNopLogger())
	require.Error(t, err)
	require.Contains(t, err.Error(), "expecting value")
}

func TestRunHonorsMaxSize(t *testing.T) {
	path := writeInput(t, "big.json", `{"a":"0123456789"}`)
	cfg := config{files: []string{path}, iterations: 1}
	require.NoError(t, cfg.maxSize.Set("8B"))

	err := run(cfg, &bytes.Buffer{}, log.NewNopLogger())
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds maximum size of 8 bytes")
}

func TestRunRejectsZeroIterations(t *testing.T) {
	cfg := config{iterations: 0}
	require.Error(t, run(cfg, &bytes.Buffer{}, log.NewNopLogger()))
}

func findBenchmark(t *testing.T, cfg config, name string) benchmark {
	t.Helper()
	for _, b := range benchmarks(cfg) {
		if b.name == name {
			return b
		}
	}
	t.Fatalf("no benchmark named %q", name)
	return benchmark{}
}

func TestDriverBenchmarkChecksKindBeforeTiming(t *testing.T) {
	cfg := config{compare: true, iterations: 1}
	b := findBenchmark(t, cfg, "driver extjson")

	op, err := b.setup([]byte(`[{"a":1}]`))
	require.ErrorIs(t, err, errNotDocument)
	require.Nil(t, op)

	op, err = b.setup([]byte(`{"a":{"$numberLong":"5"}}`))
	require.NoError(t, err)
	require.NoError(t, op())
}

func TestTraversePhases(t *testing.T) {
	cfg := config{iterations: 1}
	doc := []byte(" {\"a\": [1, 2, {\"b\": null}]}\n")

	for _, name := range []string{"jsonvalue traverse", "jsonvalue stringify", "syntax parse", "syntax traverse", "syntax stringify"} {
		b := findBenchmark(t, cfg, name)
		op, err := b.setup(doc)
		require.NoError(t, err, name)
		require.NoError(t, op(), name)
	}

	// Phases that parse during setup report bad input before timing starts.
	for _, name := range []string{"jsonvalue traverse", "jsonvalue stringify", "syntax traverse", "syntax stringify"} {
		_, err := findBenchmark(t, cfg, name).setup([]byte(`{"a":`))
		require.Error(t, err, name)
	}
}
