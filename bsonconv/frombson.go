// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsonconv

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/xdg-go/jsonvalue"
)

// FromBSON converts a BSON document to an object Value.  BSON types with a
// JSON equivalent map to it directly and finite doubles become floats.  An
// int64 small enough to be read back as an int32 keeps a $numberLong
// wrapper.  Every other type becomes its relaxed Extended JSON v2 wrapper
// object, so ToBSON with Options.ExtJSON restores it.
func FromBSON(doc bson.Raw) (jsonvalue.Value, error) {
	if err := doc.Validate(); err != nil {
		return jsonvalue.Value{}, errors.Wrap(err, "invalid BSON document")
	}
	return fromDocument(bsoncore.Document(doc), false)
}

func fromDocument(doc bsoncore.Document, isArray bool) (jsonvalue.Value, error) {
	elems, err := doc.Elements()
	if err != nil {
		return jsonvalue.Value{}, errors.Wrap(err, "reading BSON elements")
	}

	if isArray {
		out := make([]jsonvalue.Value, 0, len(elems))
		for _, elem := range elems {
			v, err := fromValue(elem.Value())
			if err != nil {
				return jsonvalue.Value{}, err
			}
			out = append(out, v)
		}
		return jsonvalue.Array(out...), nil
	}

	out := make([]jsonvalue.Member, 0, len(elems))
	for _, elem := range elems {
		v, err := fromValue(elem.Value())
		if err != nil {
			return jsonvalue.Value{}, errors.Wrapf(err, "key %q", elem.Key())
		}
		out = append(out, jsonvalue.Member{Key: elem.Key(), Value: v})
	}
	return jsonvalue.Object(out...), nil
}

func fromValue(v bsoncore.Value) (jsonvalue.Value, error) {
	switch v.Type {
	case bsontype.Double:
		f := v.Double()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return wrap("$numberDouble", jsonvalue.String(formatNonFinite(f))), nil
		}
		return jsonvalue.Float(f), nil
	case bsontype.String:
		return jsonvalue.String(v.StringValue()), nil
	case bsontype.EmbeddedDocument:
		return fromDocument(bsoncore.Document(v.Data), false)
	case bsontype.Array:
		return fromDocument(bsoncore.Document(v.Data), true)
	case bsontype.Binary:
		subType, data := v.Binary()
		return wrap("$binary", jsonvalue.Object(
			jsonvalue.Member{Key: "base64", Value: jsonvalue.String(base64.StdEncoding.EncodeToString(data))},
			jsonvalue.Member{Key: "subType", Value: jsonvalue.String(fmt.Sprintf("%02x", subType))},
		)), nil
	case bsontype.Undefined:
		return wrap("$undefined", jsonvalue.Bool(true)), nil
	case bsontype.ObjectID:
		return wrap("$oid", jsonvalue.String(v.ObjectID().Hex())), nil
	case bsontype.Boolean:
		return jsonvalue.Bool(v.Boolean()), nil
	case bsontype.DateTime:
		return wrap("$date", formatDate(v.DateTime())), nil
	case bsontype.Null:
		return jsonvalue.Null(), nil
	case bsontype.Regex:
		pattern, options := v.Regex()
		return wrap("$regularExpression", jsonvalue.Object(
			jsonvalue.Member{Key: "pattern", Value: jsonvalue.String(pattern)},
			jsonvalue.Member{Key: "options", Value: jsonvalue.String(options)},
		)), nil
	case bsontype.DBPointer:
		ns, oid := v.DBPointer()
		return wrap("$dbPointer", jsonvalue.Object(
			jsonvalue.Member{Key: "$ref", Value: jsonvalue.String(ns)},
			jsonvalue.Member{Key: "$id", Value: wrap("$oid", jsonvalue.String(oid.Hex()))},
		)), nil
	case bsontype.JavaScript:
		return wrap("$code", jsonvalue.String(v.JavaScript())), nil
	case bsontype.Symbol:
		return wrap("$symbol", jsonvalue.String(v.Symbol())), nil
	case bsontype.CodeWithScope:
		code, scope := v.CodeWithScope()
		scopeValue, err := fromDocument(scope, false)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		return jsonvalue.Object(
			jsonvalue.Member{Key: "$code", Value: jsonvalue.String(code)},
			jsonvalue.Member{Key: "$scope", Value: scopeValue},
		), nil
	case bsontype.Int32:
		return jsonvalue.Int(int64(v.Int32())), nil
	case bsontype.Timestamp:
		t, i := v.Timestamp()
		return wrap("$timestamp", jsonvalue.Object(
			jsonvalue.Member{Key: "t", Value: jsonvalue.Uint(uint64(t))},
			jsonvalue.Member{Key: "i", Value: jsonvalue.Uint(uint64(i))},
		)), nil
	case bsontype.Int64:
		i := v.Int64()
		if i >= math.MinInt32 && i <= math.MaxInt32 {
			return wrap("$numberLong", jsonvalue.String(strconv.FormatInt(i, 10))), nil
		}
		return jsonvalue.Int(i), nil
	case bsontype.Decimal128:
		return wrap("$numberDecimal", jsonvalue.String(v.Decimal128().String())), nil
	case bsontype.MinKey:
		return wrap("$minKey", jsonvalue.Int(1)), nil
	case bsontype.MaxKey:
		return wrap("$maxKey", jsonvalue.Int(1)), nil
	}
	return jsonvalue.Value{}, errors.Errorf("unsupported BSON type 0x%02x", byte(v.Type))
}

func wrap(key string, v jsonvalue.Value) jsonvalue.Value {
	return jsonvalue.Object(jsonvalue.Member{Key: key, Value: v})
}

func formatNonFinite(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return "NaN"
}

// formatDate uses the relaxed ISO-8601 form for years 1970 through 9999 and
// the canonical $numberLong form otherwise.
func formatDate(millis int64) jsonvalue.Value {
	const maxRelaxed = 253402300799999 // 9999-12-31T23:59:59.999Z
	if millis < 0 || millis > maxRelaxed {
		return wrap("$numberLong", jsonvalue.String(strconv.FormatInt(millis, 10)))
	}
	t := time.Unix(millis/1e3, millis%1e3*1e6).UTC()
	return jsonvalue.String(t.Format(timeFormats[0]))
}
