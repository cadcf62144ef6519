// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsonconv

import (
	"encoding/base64"
	"encoding/hex"
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/xdg-go/jsonvalue"
	"github.com/xdg-go/jsonvalue/internal/jsonnum"
)

// Extended JSON wrappers are recognized by their first key:
//
// $oid
// $code -- with an optional $scope
// $date
// $type -- legacy $binary option; otherwise a query operator
// $scope -- requires $code
// $regex -- legacy regular expression with string $options; otherwise a query operator
// $binary
// $maxKey
// $minKey
// $symbol
// $options -- legacy regular expression; requires string $options and $regex
// $dbPointer
// $numberInt
// $timestamp
// $undefined
// $numberLong
// $numberDouble
// $numberDecimal
// $regularExpression
//
// Two-key forms accept either key order.  Any other $-prefixed key is an
// ordinary document.

// appendExtJSON appends the element described by an Extended JSON wrapper.
// It reports false, with dst unchanged, if members is an ordinary document.
func (e *encoder) appendExtJSON(dst []byte, key string, members []jsonvalue.Member) ([]byte, bool, error) {
	if len(members) == 0 || len(members[0].Key) == 0 || members[0].Key[0] != '$' {
		return dst, false, nil
	}

	first := members[0]
	var second *jsonvalue.Member
	if len(members) == 2 {
		second = &members[1]
	}

	switch first.Key {
	case "$code":
		if second != nil && second.Key == "$scope" {
			out, err := e.appendCodeWithScope(dst, key, first.Value, second.Value)
			return out, true, err
		}
	case "$scope":
		if second != nil && second.Key == "$code" {
			out, err := e.appendCodeWithScope(dst, key, second.Value, first.Value)
			return out, true, err
		}
		return nil, true, errors.New("$scope requires a $code key")
	case "$binary":
		if _, ok := first.Value.AsString(); ok {
			if second == nil || second.Key != "$type" {
				return nil, true, errors.New("legacy $binary requires a $type key")
			}
			out, err := appendBinary(dst, key, first.Value, second.Value)
			return out, true, err
		}
	case "$type":
		if !isString(first.Value) || second == nil || second.Key != "$binary" || !isString(second.Value) {
			return dst, false, nil
		}
		out, err := appendBinary(dst, key, second.Value, first.Value)
		return out, true, err
	case "$regex":
		if !isString(first.Value) || second == nil || second.Key != "$options" || !isString(second.Value) {
			return dst, false, nil
		}
		out, err := appendRegex(dst, key, first.Value, second.Value)
		return out, true, err
	case "$options":
		if !isString(first.Value) || second == nil || second.Key != "$regex" || !isString(second.Value) {
			return dst, false, nil
		}
		out, err := appendRegex(dst, key, second.Value, first.Value)
		return out, true, err
	}

	convert, ok := singleKeyWrappers[first.Key]
	if !ok {
		return dst, false, nil
	}
	if len(members) != 1 {
		return nil, true, errors.Errorf("extended JSON %s must be the only key in its object", first.Key)
	}
	out, err := convert(e, dst, key, first.Value)
	return out, true, err
}

type wrapperFunc func(e *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error)

var singleKeyWrappers = map[string]wrapperFunc{
	"$oid":               convertOID,
	"$code":              convertCode,
	"$date":              convertDate,
	"$binary":            convertBinary,
	"$maxKey":            convertMaxKey,
	"$minKey":            convertMinKey,
	"$symbol":            convertSymbol,
	"$dbPointer":         convertDBPointer,
	"$numberInt":         convertNumberInt,
	"$timestamp":         convertTimestamp,
	"$undefined":         convertUndefined,
	"$numberLong":        convertNumberLong,
	"$numberDouble":      convertNumberDouble,
	"$numberDecimal":     convertNumberDecimal,
	"$regularExpression": convertRegularExpression,
}

func convertOID(_ *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	oid, err := parseOID(v)
	if err != nil {
		return nil, err
	}
	return bsoncore.AppendObjectIDElement(dst, key, oid), nil
}

func parseOID(v jsonvalue.Value) (primitive.ObjectID, error) {
	s, err := stringValue("$oid", v)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if len(s) != 24 {
		return primitive.NilObjectID, errors.Errorf("ill-formed $oid %q", s)
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "objectID conversion")
	}
	return oid, nil
}

func convertCode(_ *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	code, err := stringValue("$code", v)
	if err != nil {
		return nil, err
	}
	return bsoncore.AppendJavaScriptElement(dst, key, code), nil
}

func (e *encoder) appendCodeWithScope(dst []byte, key string, codeValue, scopeValue jsonvalue.Value) ([]byte, error) {
	code, err := stringValue("$code", codeValue)
	if err != nil {
		return nil, err
	}
	if scopeValue.Kind() != jsonvalue.KindObject {
		return nil, errors.Errorf("$scope must be an object, found %s", scopeValue.Kind())
	}
	scope, err := e.appendDocument(nil, scopeValue.Members())
	if err != nil {
		return nil, err
	}
	return bsoncore.AppendCodeWithScopeElement(dst, key, code, scope), nil
}

func convertDate(_ *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	var millis int64
	var err error
	switch v.Kind() {
	case jsonvalue.KindString:
		s, _ := v.AsString()
		millis, err = parseISO8601toEpochMillis(s)
	case jsonvalue.KindNumber:
		n, _ := v.AsNumber()
		var ok bool
		if millis, ok = n.Int64(); !ok || !n.IsInteger() {
			err = errors.Errorf("invalid $date value %s", n)
		}
	case jsonvalue.KindObject:
		members := v.Members()
		if len(members) != 1 || members[0].Key != "$numberLong" {
			return nil, errors.New("$date object must hold only $numberLong")
		}
		millis, err = parseInt("$numberLong", members[0].Value, 64)
	default:
		err = errors.Errorf("invalid $date value of kind %s", v.Kind())
	}
	if err != nil {
		return nil, err
	}
	return bsoncore.AppendDateTimeElement(dst, key, millis), nil
}

func convertBinary(_ *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	if v.Kind() != jsonvalue.KindObject {
		return nil, errors.Errorf("$binary must be an object or string, found %s", v.Kind())
	}
	members := v.Members()
	if len(members) != 2 {
		return nil, errors.New("$binary object must hold exactly base64 and subType")
	}
	var data, subType *jsonvalue.Value
	for i := range members {
		switch members[i].Key {
		case "base64":
			data = &members[i].Value
		case "subType":
			subType = &members[i].Value
		}
	}
	if data == nil || subType == nil {
		return nil, errors.New("$binary object must hold exactly base64 and subType")
	}
	return appendBinary(dst, key, *data, *subType)
}

func appendBinary(dst []byte, key string, dataValue, subTypeValue jsonvalue.Value) ([]byte, error) {
	s, err := stringValue("subType", subTypeValue)
	if err != nil {
		return nil, err
	}
	subType, err := parseSubType(s)
	if err != nil {
		return nil, err
	}
	encoded, err := stringValue("base64", dataValue)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing base64 data")
	}
	return bsoncore.AppendBinaryElement(dst, key, subType, data), nil
}

func parseSubType(s string) (byte, error) {
	if len(s) < 1 || len(s) > 2 {
		return 0, errors.Errorf("error parsing subtype %q", s)
	}
	// Go requires even digits to decode hex.
	if len(s) == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return 0, errors.Wrapf(err, "error parsing subtype %q", s)
	}
	return b[0], nil
}

func convertMinKey(_ *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	if !isOne(v) {
		return nil, errors.New("$minKey value must be 1")
	}
	return bsoncore.AppendMinKeyElement(dst, key), nil
}

func convertMaxKey(_ *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	if !isOne(v) {
		return nil, errors.New("$maxKey value must be 1")
	}
	return bsoncore.AppendMaxKeyElement(dst, key), nil
}

func isOne(v jsonvalue.Value) bool {
	n, ok := v.AsNumber()
	i, isInt := n.Int64()
	return ok && isInt && i == 1
}

func convertSymbol(_ *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	s, err := stringValue("$symbol", v)
	if err != nil {
		return nil, err
	}
	return bsoncore.AppendSymbolElement(dst, key, s), nil
}

func convertDBPointer(_ *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	if v.Kind() != jsonvalue.KindObject || v.Len() != 2 {
		return nil, errors.New("$dbPointer must be an object holding exactly $ref and $id")
	}
	var ns string
	var oid primitive.ObjectID
	var sawRef, sawID bool
	var err error
	for _, m := range v.Members() {
		switch m.Key {
		case "$ref":
			ns, err = stringValue("$ref", m.Value)
			sawRef = true
		case "$id":
			if m.Value.Kind() != jsonvalue.KindObject || m.Value.Len() != 1 || m.Value.Members()[0].Key != "$oid" {
				return nil, errors.New("$dbPointer $id must be an $oid object")
			}
			oid, err = parseOID(m.Value.Members()[0].Value)
			sawID = true
		}
		if err != nil {
			return nil, err
		}
	}
	if !sawRef || !sawID {
		return nil, errors.New("$dbPointer must be an object holding exactly $ref and $id")
	}
	if err := checkCString("$dbPointer namespace", ns); err != nil {
		return nil, err
	}
	return bsoncore.AppendDBPointerElement(dst, key, ns, oid), nil
}

func convertNumberInt(_ *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	n, err := parseInt("$numberInt", v, 32)
	if err != nil {
		return nil, err
	}
	return bsoncore.AppendInt32Element(dst, key, int32(n)), nil
}

func convertNumberLong(_ *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	n, err := parseInt("$numberLong", v, 64)
	if err != nil {
		return nil, err
	}
	return bsoncore.AppendInt64Element(dst, key, n), nil
}

func parseInt(what string, v jsonvalue.Value, bitSize int) (int64, error) {
	s, err := stringValue(what, v)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, bitSize)
	if err != nil {
		return 0, errors.Wrapf(err, "%s int conversion", what)
	}
	return n, nil
}

func convertTimestamp(_ *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	if v.Kind() != jsonvalue.KindObject || v.Len() != 2 {
		return nil, errors.New("$timestamp must be an object holding exactly t and i")
	}
	var t, i uint32
	var sawT, sawI bool
	for _, m := range v.Members() {
		n, ok := m.Value.AsNumber()
		u, isUint := n.Uint64()
		if !ok || !n.IsInteger() || !isUint || u > math.MaxUint32 {
			return nil, errors.Errorf("$timestamp %s must be an unsigned 32-bit integer", m.Key)
		}
		switch m.Key {
		case "t":
			t, sawT = uint32(u), true
		case "i":
			i, sawI = uint32(u), true
		}
	}
	if !sawT || !sawI {
		return nil, errors.New("$timestamp must be an object holding exactly t and i")
	}
	return bsoncore.AppendTimestampElement(dst, key, t, i), nil
}

func convertUndefined(_ *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	if b, ok := v.AsBool(); !ok || !b {
		return nil, errors.New("$undefined value must be true")
	}
	return bsoncore.AppendUndefinedElement(dst, key), nil
}

func convertNumberDouble(_ *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	s, err := stringValue("$numberDouble", v)
	if err != nil {
		return nil, err
	}
	var f float64
	switch s {
	case "NaN":
		f = math.NaN()
	case "Infinity":
		f = math.Inf(1)
	case "-Infinity":
		f = math.Inf(-1)
	default:
		f, err = jsonnum.ParseFloat(s)
		if err != nil {
			return nil, errors.Wrapf(err, "$numberDouble float conversion of %q", s)
		}
	}
	return appendDouble(dst, key, f), nil
}

func convertNumberDecimal(_ *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	s, err := stringValue("$numberDecimal", v)
	if err != nil {
		return nil, err
	}
	d128, err := primitive.ParseDecimal128(s)
	if err != nil {
		return nil, errors.Wrap(err, "decimal128 conversion")
	}
	return bsoncore.AppendDecimal128Element(dst, key, d128), nil
}

func convertRegularExpression(_ *encoder, dst []byte, key string, v jsonvalue.Value) ([]byte, error) {
	if v.Kind() != jsonvalue.KindObject || v.Len() != 2 {
		return nil, errors.New("$regularExpression must be an object holding exactly pattern and options")
	}
	var pattern, options *jsonvalue.Value
	members := v.Members()
	for i := range members {
		switch members[i].Key {
		case "pattern":
			pattern = &members[i].Value
		case "options":
			options = &members[i].Value
		}
	}
	if pattern == nil || options == nil {
		return nil, errors.New("$regularExpression must be an object holding exactly pattern and options")
	}
	return appendRegex(dst, key, *pattern, *options)
}

func appendRegex(dst []byte, key string, patternValue, optionsValue jsonvalue.Value) ([]byte, error) {
	pattern, err := stringValue("pattern", patternValue)
	if err != nil {
		return nil, err
	}
	options, err := stringValue("options", optionsValue)
	if err != nil {
		return nil, err
	}
	if err := checkCString("regular expression pattern", pattern); err != nil {
		return nil, err
	}
	if err := checkCString("regular expression options", options); err != nil {
		return nil, err
	}
	return bsoncore.AppendRegexElement(dst, key, pattern, options), nil
}

func isString(v jsonvalue.Value) bool { return v.Kind() == jsonvalue.KindString }

func stringValue(what string, v jsonvalue.Value) (string, error) {
	s, ok := v.AsString()
	if !ok {
		return "", errors.Errorf("%s must be a string, found %s", what, v.Kind())
	}
	return s, nil
}

// Date conversion adapted from the MongoDB Go Driver: https://github.com/mongodb/mongo-go-driver
// Licensed under the Apache 2 license.
var timeFormats = []string{"2006-01-02T15:04:05.999Z07:00", "2006-01-02T15:04:05.999Z0700"}

func parseISO8601toEpochMillis(data string) (int64, error) {
	var t time.Time
	var err error
	for _, format := range timeFormats {
		t, err = time.Parse(format, data)
		if err == nil {
			break
		}
	}
	if err != nil {
		return 0, errors.Errorf("invalid $date value string: %s", data)
	}

	return t.Unix()*1e3 + int64(t.Nanosecond())/1e6, nil
}
