// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bsonconv converts between jsonvalue trees and BSON documents.
//
// JSON values map to BSON the way the MongoDB drivers map relaxed Extended
// JSON: integers that fit in 32 bits become int32, other integers that fit in
// 64 bits become int64, and everything else becomes a double.  With
// Options.ExtJSON, objects shaped like MongoDB Extended JSON v2 wrappers (for
// example {"$oid": "..."}) are converted to the BSON types they describe.
package bsonconv

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/xdg-go/jsonvalue"
)

// Options configures conversion to BSON.  The zero value converts plain JSON
// with the default depth limit.
type Options struct {
	// ExtJSON enables interpretation of Extended JSON wrapper objects.
	ExtJSON bool

	// MaxDepth limits nesting, both when parsing JSON text and when
	// converting a tree.  Zero or negative means jsonvalue.DefaultMaxDepth.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return jsonvalue.DefaultMaxDepth
	}
	return o.MaxDepth
}

// canonicalNaN is the NaN bit pattern used by the Extended JSON test corpus.
const canonicalNaN = 0x7FF8000000000000

// UnmarshalJSON parses a JSON object and converts it to a BSON document.
// Parse failures are returned as *jsonvalue.ParseError.
func UnmarshalJSON(data []byte, opts Options) (bson.Raw, error) {
	v, err := jsonvalue.Parse(data, jsonvalue.ParseOptions{MaxDepth: opts.maxDepth()})
	if err != nil {
		return nil, err
	}
	return ToBSON(v, opts)
}

// ToBSON converts v, which must be an object, to a BSON document.  The
// top-level object is always a plain document, even with Options.ExtJSON.
func ToBSON(v jsonvalue.Value, opts Options) (bson.Raw, error) {
	if v.Kind() != jsonvalue.KindObject {
		return nil, errors.Errorf("top-level value must be an object, found %s", v.Kind())
	}
	e := encoder{extJSON: opts.ExtJSON, maxDepth: opts.maxDepth()}
	out, err := e.appendDocument(make([]byte, 0, 256), v.Members())
	if err != nil {
		return nil, err
	}
	return bson.Raw(out), nil
}

type encoder struct {
	extJSON  bool
	curDepth int
	maxDepth int
}

func (e *encoder) enter() error {
	e.curDepth++
	if e.curDepth > e.maxDepth {
		e.curDepth--
		return errors.Errorf("maximum depth of %d exceeded", e.maxDepth)
	}
	return nil
}

func (e *encoder) appendDocument(dst []byte, members []jsonvalue.Member) ([]byte, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer func() { e.curDepth-- }()

	idx, dst := bsoncore.AppendDocumentStart(dst)
	var err error
	for _, m := range members {
		dst, err = e.appendElement(dst, m.Key, m.Value)
		if err != nil {
			return nil, err
		}
	}
	return bsoncore.AppendDocumentEnd(dst, idx)
}

func (e *encoder) appendArray(dst []byte, key string, elems []jsonvalue.Value) ([]byte, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer func() { e.curDepth-- }()

	idx, dst := bsoncore.AppendArrayElementStart(dst, key)
	var err error
	for i, elem := range elems {
		dst, err = e.appendElement(dst, strconv.Itoa(i), elem)
		if err != nil {
			return nil, err
		}
	}
	return bsoncore.AppendDocumentEnd(dst, idx)
}

func (e *encoder) appendElement(dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	if err := checkCString("key", key); err != nil {
		return nil, err
	}

	switch v.Kind() {
	case jsonvalue.KindNull:
		return bsoncore.AppendNullElement(dst, key), nil
	case jsonvalue.KindBool:
		b, _ := v.AsBool()
		return bsoncore.AppendBooleanElement(dst, key, b), nil
	case jsonvalue.KindNumber:
		n, _ := v.AsNumber()
		return appendNumber(dst, key, n), nil
	case jsonvalue.KindString:
		s, _ := v.AsString()
		return bsoncore.AppendStringElement(dst, key, s), nil
	case jsonvalue.KindArray:
		return e.appendArray(dst, key, v.Elements())
	}

	members := v.Members()
	if e.extJSON {
		out, ok, err := e.appendExtJSON(dst, key, members)
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", key)
		}
		if ok {
			return out, nil
		}
	}

	dst = bsoncore.AppendHeader(dst, bsontype.EmbeddedDocument, key)
	return e.appendDocument(dst, members)
}

// appendNumber applies the relaxed Extended JSON integer rules.
func appendNumber(dst []byte, key string, n jsonvalue.Number) []byte {
	if n.IsInteger() {
		if i, ok := n.Int64(); ok {
			if i >= math.MinInt32 && i <= math.MaxInt32 {
				return bsoncore.AppendInt32Element(dst, key, int32(i))
			}
			return bsoncore.AppendInt64Element(dst, key, i)
		}
	}
	return appendDouble(dst, key, n.Float64())
}

func appendDouble(dst []byte, key string, f float64) []byte {
	if math.IsNaN(f) {
		f = math.Float64frombits(canonicalNaN)
	}
	return bsoncore.AppendDoubleElement(dst, key, f)
}

// checkCString rejects strings that cannot be written as BSON C strings.
func checkCString(what, s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return errors.Errorf("BSON %s %q contains a null byte", what, s)
	}
	return nil
}
