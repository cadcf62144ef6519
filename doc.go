// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package jsonvalue is a conformant, high-performance JSON parser and
// serializer.  Parse turns an in-memory JSON text into a Value tree, and
// Serialize turns a Value tree back into JSON text.  Only UTF-8 encoding is
// supported.
//
// Values
//
// A Value is a closed sum type over null, booleans, numbers, strings, arrays
// and objects.  Objects keep their members in input order, including
// duplicate keys; lookups with Get, Set and Delete treat the last member with
// a key as the one that counts.
//
// Numbers
//
// Integer literals that fit in 64 bits are kept as exact integers, so
// `{"a":1}` round-trips without gaining a ".0".  Every other number is parsed
// into the nearest float64, correctly rounded, and floats are written with
// the shortest text that parses back to the same bits.  Parsed numbers also
// keep their literal text, which SerializeOptions.PreserveRawNumbers writes
// back verbatim.
//
// Limits
//
// Parsing is bounded by ParseOptions.MaxDepth (default 512) and, optionally,
// ParseOptions.MaxSize.  Both fail immediately with a *ParseError.
//
// Testing
//
// JSON parsing support is tested against data sets from Nicholas Seriot's
// Parsing JSON is a Minefield article (http://seriot.ch/parsing_json.php) when
// they are present under testdata/JSONTestSuite, and differentially against
// encoding/json and json-iterator.
package jsonvalue
