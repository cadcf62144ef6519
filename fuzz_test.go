// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// fuzzDepth matches the nesting limit of encoding/json so acceptance can be
// compared directly.
const fuzzDepth = 10000

func FuzzParse(f *testing.F) {
	seeds := []string{
		`{"a":1,"b":[1,2,3],"c":null}`,
		`[3.140, 1E2, -0.0, 10, 1.0e-7]`,
		`"é😀\uDFAA"`,
		"[\"\xff\"]",
		`{"a":"b","a":"c"}`,
		`18446744073709551616`,
		`[1,]`,
		`{"a" 1}`,
		`[-01]`,
		"\xef\xbb\xbf[]",
		` true `,
		`[[[[[[]]]]]]`,
		`1e400`,
	}
	for _, s := range seeds {
		f.Add([]byte(s))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		opts := ParseOptions{MaxDepth: fuzzDepth}
		v, err := Parse(data, opts)

		// encoding/json does not skip a byte-order mark.
		if bytes.HasPrefix(data, utf8BOM) {
			return
		}
		if err != nil {
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error is not a ParseError: %v", err)
			}
			if pe.Kind == InvalidNumber && strings.Contains(pe.Message(), "out of range") {
				return
			}
			if json.Valid(data) {
				t.Fatalf("rejected input accepted by encoding/json: %v\ninput: %q", err, data)
			}
			return
		}
		if !json.Valid(data) {
			t.Fatalf("accepted input rejected by encoding/json: %q", data)
		}

		out, err := Marshal(v)
		if err != nil {
			t.Fatalf("serialize error: %v", err)
		}
		back, err := Parse(out, opts)
		if err != nil {
			t.Fatalf("reparse error: %v\noutput: %s", err, out)
		}
		if !back.Equal(v) {
			t.Fatalf("round trip changed value:\ninput:  %q\noutput: %s", data, out)
		}
		again, err := Marshal(back)
		if err != nil {
			t.Fatalf("serialize error: %v", err)
		}
		if !bytes.Equal(out, again) {
			t.Fatalf("not idempotent:\nonce:  %s\nagain: %s", out, again)
		}
	})
}
