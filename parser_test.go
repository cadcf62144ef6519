// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package jsonvalue

import (
	"errors"
	"strings"
	"testing"
)

// TestParse tests both the Parse function and various primitive types,
// including error cases for each error kind.
func TestParse(t *testing.T) {
	t.Parallel()

	cases := []parseTestCase{
		// Literals
		{label: "true ok", input: `{"b" : true}`, output: `{"b":true}`},
		{label: "true not ok", input: `{"b" : t, "c": 1}`, errStr: "expecting true", kind: UnexpectedCharacter, offset: 7},
		{label: "false ok", input: `{"b" : false}`, output: `{"b":false}`},
		{label: "false not ok", input: `{"b" : fake}`, errStr: "expecting false", kind: UnexpectedCharacter, offset: 7},
		{label: "null ok", input: `{"a" : null}`, output: `{"a":null}`},
		{label: "null not ok", input: `{"a" : nul}`, errStr: "expecting null", kind: UnexpectedCharacter, offset: 7},
		{label: "truncated literal", input: `tru`, errStr: "unexpected end of input", kind: UnexpectedEOF, offset: 3},
		{label: "bare scalar", input: ` null `, output: `null`},

		// Strings
		{label: "Empty string", input: `{"a" : ""}`, output: `{"a":""}`},
		{label: "Multi-character", input: `{"a" : "abababababab"}`, output: `{"a":"abababababab"}`},
		{label: "two-byte UTF-8 (\u00e9)", input: `{"a" : "\u00e9\u00e9\u00e9"}`, output: "{\"a\":\"\u00e9\u00e9\u00e9\"}"},
		{label: "three-byte UTF-8 (\u2606)", input: `{"a" : "\u2606\u2606"}`, output: "{\"a\":\"\u2606\u2606\"}"},
		{label: "surrogate pair", input: `"\ud83d\ude00"`, output: "\"\U0001F600\""},
		{label: "lone high surrogate", input: `"\ud800"`, output: "\"\ufffd\""},
		{label: "lone low surrogate", input: `"\udc00x"`, output: "\"\ufffdx\""},
		{label: "high surrogate then non-surrogate", input: `"\ud800A"`, output: "\"\ufffdA\""},
		{label: "invalid UTF-8 replaced", input: "\"a\xffb\"", output: "\"a\ufffdb\""},
		{label: "Embedded nulls", input: `{"a" : "ab\u0000bab"}`, output: `{"a":"ab\u0000bab"}`},
		{label: "short escapes", input: `"\"\\\/\b\f\n\r\t"`, output: `"\"\\/\b\f\n\r\t"`},
		{label: "escape after long run", input: `"` + strings.Repeat("a", 70) + `\n"`, output: `"` + strings.Repeat("a", 70) + `\n"`},
		{label: "not terminated", input: `"abc`, errStr: "string not terminated", kind: UnterminatedString, offset: 0},
		{label: "not terminated after escape", input: `"abc\`, errStr: "string not terminated", kind: UnterminatedString, offset: 0},
		{label: "truncated unicode escape", input: `"\u00`, errStr: "string not terminated", kind: UnterminatedString, offset: 0},
		{label: "raw control character", input: "\"a\nb\"", errStr: "unescaped control character U+000A", kind: UnterminatedString, offset: 2},
		{label: "invalid unicode escape", input: `{"a" : "\u00zz"}`, errStr: "invalid unicode escape", kind: InvalidEscape, offset: 8},
		{label: "invalid unicode escape sign", input: `{"a" : "\u+062"}`, errStr: "invalid unicode escape", kind: InvalidEscape, offset: 8},
		{label: "unknown escape", input: `{"a" : "\U00e9"}`, errStr: "unknown escape", kind: InvalidEscape, offset: 8},

		// Numbers
		{label: "zero", input: `0`, output: `0`},
		{label: "negative zero", input: `-0`, output: `-0`},
		{label: "MinInt64", input: `-9223372036854775808`, output: `-9223372036854775808`},
		{label: "MaxUint64", input: `18446744073709551615`, output: `18446744073709551615`},
		{label: "above MaxUint64", input: `18446744073709551616`, output: `18446744073709552000`},
		{label: "trailing zero dropped", input: `3.140`, output: `3.14`},
		{label: "integral float", input: `1.0`, output: `1`},
		{label: "exponent", input: `1E2`, output: `100`},
		{label: "negative exponent", input: `123.456e-2`, output: `1.23456`},
		{label: "small", input: `0.0000001`, output: `1e-7`},
		{label: "large", input: `1e21`, output: `1e+21`},
		{label: "underflow", input: `1e-400`, output: `0`},
		{label: "overflow", input: `1e400`, errStr: "number out of range", kind: InvalidNumber, offset: 0},
		{label: "leading zero", input: `01`, errStr: "malformed number", kind: InvalidNumber, offset: 1},
		{label: "no fraction digits", input: `[1.]`, errStr: "malformed number", kind: InvalidNumber, offset: 3},
		{label: "lone minus", input: `-`, errStr: "malformed number", kind: InvalidNumber, offset: 1},
		{label: "letters after digits", input: `123abc`, errStr: "malformed number", kind: InvalidNumber, offset: 3},
		{label: "plus sign", input: `+1`, errStr: "unexpected character", kind: UnexpectedCharacter, offset: 0},

		// Containers
		{label: "empty object", input: `{ }`, output: `{}`},
		{label: "empty array", input: `[ ]`, output: `[]`},
		{label: "nested", input: ` {"a" : [1, {"b": []}, {}], "c": {"d": null}} `, output: `{"a":[1,{"b":[]},{}],"c":{"d":null}}`},
		{label: "duplicate keys kept", input: `{"a":1,"a":2}`, output: `{"a":1,"a":2}`},
		{label: "missing value", input: `{"a":}`, errStr: "expecting value", kind: ExpectedValue, offset: 5},
		{label: "missing key", input: `{,}`, errStr: "expecting key", kind: ExpectedKey, offset: 1},
		{label: "non-string key", input: `{1:2}`, errStr: "expecting key", kind: ExpectedKey, offset: 1},
		{label: "trailing comma in object", input: `{"a":1,}`, errStr: "expecting key", kind: ExpectedKey, offset: 7},
		{label: "missing colon", input: `{"a" 1}`, errStr: "expecting ':'", kind: ExpectedColon, offset: 5},
		{label: "missing comma in object", input: `{"a":1 "b":2}`, errStr: "expecting ',' or '}'", kind: ExpectedCommaOrBrace, offset: 7},
		{label: "missing comma in array", input: `[1 2]`, errStr: "expecting ',' or ']'", kind: ExpectedCommaOrBracket, offset: 3},
		{label: "trailing comma in array", input: `[1,]`, errStr: "expecting value", kind: ExpectedValue, offset: 3},
		{label: "close without open", input: `]`, errStr: "expecting value", kind: ExpectedValue, offset: 0},
		{label: "colon as value", input: `[:]`, errStr: "expecting value", kind: ExpectedValue, offset: 1},
		{label: "mismatched close", input: `[1}`, errStr: "expecting ',' or ']'", kind: ExpectedCommaOrBracket, offset: 2},

		// End of input
		{label: "empty input", input: ``, errStr: "empty input", kind: UnexpectedEOF, offset: 0},
		{label: "only white space", input: " \t\r\n", errStr: "empty input", kind: UnexpectedEOF, offset: 4},
		{label: "array not terminated", input: `[1,2`, errStr: "expecting ',' or ']'", kind: UnexpectedEOF, offset: 4},
		{label: "array value missing", input: `[1,`, errStr: "expecting value", kind: UnexpectedEOF, offset: 3},
		{label: "object colon missing", input: `{"a"`, errStr: "expecting ':'", kind: UnexpectedEOF, offset: 4},
		{label: "object key missing", input: `{`, errStr: "expecting key", kind: UnexpectedEOF, offset: 1},
		{label: "object not terminated", input: `{"a":1`, errStr: "expecting ',' or '}'", kind: UnexpectedEOF, offset: 6},

		// Top level
		{label: "trailing data", input: `1 2`, errStr: "unexpected data after top-level value", kind: TrailingData, offset: 2},
		{label: "second document", input: `{}{}`, errStr: "unexpected data after top-level value", kind: TrailingData, offset: 2},
		{label: "trailing white space", input: "{} \n", output: `{}`},
		{label: "unexpected character", input: `@`, errStr: "unexpected character '@'", kind: UnexpectedCharacter, offset: 0},

		// Byte-order marks
		{label: "UTF-8 BOM", input: "\xEF\xBB\xBF{}", output: `{}`},
		{label: "UTF-16BE BOM", input: "\xFE\xFF{}", errStr: "detected unsupported", kind: UnexpectedCharacter, offset: 0},
		{label: "UTF-16LE BOM", input: "\xFF\xFE{}", errStr: "detected unsupported", kind: UnexpectedCharacter, offset: 0},
		{label: "UTF-32BE BOM", input: "\x00\x00\xFE\xFF{}", errStr: "detected unsupported", kind: UnexpectedCharacter, offset: 0},
	}

	testWithParse(t, cases, ParseOptions{})
}

func TestDepthLimit(t *testing.T) {
	t.Parallel()

	input := `{"1":{"2":{"3":[{"5":"a"}]}}}`

	_, err := Parse([]byte(input), ParseOptions{MaxDepth: 4})
	if !errors.Is(err, MaxDepthExceeded) {
		t.Fatalf("expected MaxDepthExceeded and got %v", err)
	}

	_, err = Parse([]byte(input), ParseOptions{MaxDepth: 5})
	if err != nil {
		t.Fatalf("expected no error and got: %v", err)
	}
}

func TestDefaultDepthLimit(t *testing.T) {
	t.Parallel()

	cases := []parseTestCase{
		{label: "arrays at limit", input: nested("[", "]", DefaultMaxDepth), output: nested("[", "]", DefaultMaxDepth)},
		{label: "arrays over limit", input: nested("[", "]", DefaultMaxDepth+1), errStr: "maximum depth of 512 exceeded", kind: MaxDepthExceeded, offset: DefaultMaxDepth},
		{label: "objects over limit", input: strings.Repeat(`{"a":`, DefaultMaxDepth+1), errStr: "maximum depth", kind: MaxDepthExceeded, offset: 5 * DefaultMaxDepth},
		{label: "depth resets between siblings", input: "[" + strings.Repeat(nested("[", "]", DefaultMaxDepth-1)+",", 3) + "1]", output: "[" + strings.Repeat(nested("[", "]", DefaultMaxDepth-1)+",", 3) + "1]"},
	}

	testWithParse(t, cases, ParseOptions{})
}

func TestSizeLimit(t *testing.T) {
	t.Parallel()

	cases := []parseTestCase{
		{label: "under limit", input: `[1]`, output: `[1]`},
		{label: "at limit", input: `[1,2]`, output: `[1,2]`},
		{label: "over limit", input: `[1,2,3]`, errStr: "exceeds maximum size of 5 bytes", kind: MaxSizeExceeded, offset: 5},
		{label: "over limit and malformed", input: `[1,2,3`, errStr: "exceeds maximum size", kind: MaxSizeExceeded, offset: 5},
	}

	testWithParse(t, cases, ParseOptions{MaxSize: 5})
}

func TestParseErrorPosition(t *testing.T) {
	t.Parallel()

	input := "{\n  \"a\": tru\n}"
	_, err := Unmarshal([]byte(input))

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Offset != 9 || pe.Line != 2 || pe.Column != 8 {
		t.Errorf("got offset %d, line %d, column %d; want 9, 2, 8", pe.Offset, pe.Line, pe.Column)
	}
	want := "parse error: expecting true at line 2, column 8 (offset 9)"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
	if pe.Message() != "expecting true" {
		t.Errorf("got message %q", pe.Message())
	}
}

func TestParseNumberKinds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		kind  NumberKind
		raw   string
	}{
		{"1", IntNumber, "1"},
		{"-1", IntNumber, "-1"},
		{"9223372036854775808", UintNumber, "9223372036854775808"},
		{"-9223372036854775809", FloatNumber, "-9223372036854775809"},
		{"1.0", FloatNumber, "1.0"},
		{"-0", FloatNumber, "-0"},
		{"3.140", FloatNumber, "3.140"},
	}

	for _, c := range cases {
		v := mustParse(t, c.input)
		n, ok := v.AsNumber()
		if !ok {
			t.Fatalf("%s: not a number", c.input)
		}
		if n.Kind() != c.kind {
			t.Errorf("%s: got kind %s, want %s", c.input, n.Kind(), c.kind)
		}
		if n.Raw() != c.raw {
			t.Errorf("%s: got raw %q, want %q", c.input, n.Raw(), c.raw)
		}
	}
}

func TestParseDoesNotAliasInput(t *testing.T) {
	t.Parallel()

	input := []byte(`{"key":"value","n":12.50}`)
	v := mustParse(t, string(input))
	parsed, err := Unmarshal(input)
	if err != nil {
		t.Fatal(err)
	}
	for i := range input {
		input[i] = 'x'
	}
	if !parsed.Equal(v) {
		t.Errorf("parsed value changed with its input: %s", parsed)
	}
	n, _ := parsed.Members()[1].Value.AsNumber()
	if n.Raw() != "12.50" {
		t.Errorf("raw number changed with its input: %q", n.Raw())
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	for _, s := range []string{`{}`, `[]`, `1`, `"a"`, ` {"a":[true,false,null]} `} {
		if !Valid([]byte(s)) {
			t.Errorf("Valid(%q) = false", s)
		}
	}
	for _, s := range []string{``, `{`, `[1,]`, `01`, `{} {}`, `nul`} {
		if Valid([]byte(s)) {
			t.Errorf("Valid(%q) = true", s)
		}
	}
}
