// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package jsonvalue

import "fmt"

// DefaultMaxDepth is the nesting limit used when ParseOptions.MaxDepth is not
// positive.
const DefaultMaxDepth = 512

// ParseOptions configures Parse.  The zero value gives the defaults.
type ParseOptions struct {
	// MaxDepth limits how deeply arrays and objects may nest.  A document
	// nested exactly MaxDepth deep is accepted.  Zero or negative means
	// DefaultMaxDepth.
	MaxDepth int

	// MaxSize, if positive, rejects inputs longer than MaxSize bytes before
	// any parsing is done.
	MaxSize int
}

func (o ParseOptions) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Parse converts a complete JSON text into a Value.  The input must hold
// exactly one JSON value, optionally surrounded by white space and preceded by
// a UTF-8 byte-order mark.  On failure the error is a *ParseError and no
// Value is returned.
//
// Parse does not retain data; strings and number literals in the result are
// copies.
func Parse(data []byte, opts ParseOptions) (Value, error) {
	if opts.MaxSize > 0 && len(data) > opts.MaxSize {
		return Value{}, newParseError(data, MaxSizeExceeded, opts.MaxSize,
			fmt.Sprintf("input of %d bytes exceeds maximum size of %d bytes", len(data), opts.MaxSize))
	}

	p := parser{maxDepth: opts.maxDepth()}
	p.lex.reset(data)

	tok, err := p.lex.Next()
	if err != nil {
		return Value{}, err
	}
	if tok.Kind == TokenEOF {
		return Value{}, p.lex.errorf(UnexpectedEOF, tok.Offset, "empty input")
	}

	v, err := p.parseValue(tok)
	if err != nil {
		return Value{}, err
	}

	if !p.lex.atEOF() {
		return Value{}, p.lex.errorf(TrailingData, p.lex.pos, "unexpected data after top-level value, starting with %s", quoteText(data[p.lex.pos:]))
	}
	return v, nil
}

// Unmarshal parses data with the default ParseOptions.
func Unmarshal(data []byte) (Value, error) {
	return Parse(data, ParseOptions{})
}

// Valid reports whether data is a single well-formed JSON value under the
// default ParseOptions.
func Valid(data []byte) bool {
	_, err := Unmarshal(data)
	return err == nil
}
