// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package jsonnum converts between JSON number text and binary integer and
// floating-point values.  Every function is pure and safe for concurrent use.
//
// Decimal-to-binary conversion is correctly rounded (round half to even) and
// binary-to-decimal conversion produces the shortest text that parses back to
// the identical float64, laid out the way ECMAScript's Number.prototype.toString
// does it.
package jsonnum

import (
	"errors"
	"math"
	"strconv"
)

var (
	// ErrSyntax is returned for text that is not a JSON number.
	ErrSyntax = errors.New("invalid number syntax")
	// ErrRange is returned for numbers whose magnitude overflows a float64.
	ErrRange = errors.New("number out of range")
)

// Kind classifies a parsed number literal.
type Kind uint8

const (
	// Float is a binary64 floating-point value.
	Float Kind = iota
	// Int is a signed integer in the int64 range.
	Int
	// Uint is an integer in (math.MaxInt64, math.MaxUint64].
	Uint
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Uint:
		return "uint"
	default:
		return "float"
	}
}

// Parsed is the binary form of a number literal.  Only the field matching Kind
// is meaningful.
type Parsed struct {
	Kind  Kind
	Int   int64
	Uint  uint64
	Float float64
}

// Scan consumes a JSON number from the start of b following the RFC 8259
// grammar:
//
//	-? (0 | [1-9][0-9]*) (\.[0-9]+)? ([eE][+-]?[0-9]+)?
//
// It returns the number of bytes consumed and whether they form a complete
// number.  When ok is false, n is the offset of the byte where the grammar was
// violated (possibly len(b) if input ended early).  Scan never looks past the
// end of the number, so callers decide what may follow it.
func Scan[Bytes ~[]byte | ~string](b Bytes) (n int, ok bool) {
	if n < len(b) && b[n] == '-' {
		n++
	}
	switch {
	case n == len(b):
		return n, false
	case b[n] == '0':
		n++
	case '1' <= b[n] && b[n] <= '9':
		n++
		for n < len(b) && isDigit(b[n]) {
			n++
		}
	default:
		return n, false
	}

	if n < len(b) && b[n] == '.' {
		n++
		if n == len(b) || !isDigit(b[n]) {
			return n, false
		}
		for n < len(b) && isDigit(b[n]) {
			n++
		}
	}

	if n < len(b) && (b[n] == 'e' || b[n] == 'E') {
		n++
		if n < len(b) && (b[n] == '+' || b[n] == '-') {
			n++
		}
		if n == len(b) || !isDigit(b[n]) {
			return n, false
		}
		for n < len(b) && isDigit(b[n]) {
			n++
		}
	}

	return n, true
}

// Valid reports whether s is exactly one JSON number.
func Valid(s string) bool {
	n, ok := Scan(s)
	return ok && n == len(s)
}

// Parse converts a number literal that has already been validated with Scan
// or Valid.  Integer literals that fit in 64 bits keep an integer Kind;
// everything else, including "-0", is parsed as a float.
func Parse(s string) (Parsed, error) {
	if isIntegerLiteral(s) {
		if s[0] == '-' {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return Parsed{Kind: Int, Int: i}, nil
			}
		} else if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			if u <= math.MaxInt64 {
				return Parsed{Kind: Int, Int: int64(u)}, nil
			}
			return Parsed{Kind: Uint, Uint: u}, nil
		}
	}

	f, err := parseFloat(s)
	if err != nil {
		return Parsed{}, err
	}
	return Parsed{Kind: Float, Float: f}, nil
}

// ParseFloat converts JSON number text to the nearest float64, breaking ties
// to even.  Underflow yields a (signed) zero; overflow is ErrRange.
func ParseFloat(s string) (float64, error) {
	if !Valid(s) {
		return 0, ErrSyntax
	}
	return parseFloat(s)
}

func parseFloat(s string) (float64, error) {
	// strconv implements Eisel-Lemire with a big-decimal fallback, so the
	// result is correctly rounded for every input length.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if math.IsInf(f, 0) {
			return f, ErrRange
		}
		return 0, ErrSyntax
	}
	return f, nil
}

// AppendFloat appends the shortest JSON text for f that parses back to the
// identical float64.  The layout matches ECMAScript number-to-string: plain
// decimal notation for 1e-6 <= |f| < 1e21 and exponent notation otherwise,
// with the exponent written as e+21 or e-7.  Negative zero is written "-0".
// The caller must reject NaN and infinities, which have no JSON form.
func AppendFloat(dst []byte, f float64) []byte {
	abs := math.Abs(f)
	fmt := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		fmt = 'e'
	}
	dst = strconv.AppendFloat(dst, f, fmt, -1, 64)
	if fmt == 'e' {
		// Clean up e-09 to e-9.
		n := len(dst)
		if n >= 4 && dst[n-4] == 'e' && dst[n-3] == '-' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
	}
	return dst
}

// FormatFloat returns AppendFloat's text as a string.
func FormatFloat(f float64) string {
	var buf [32]byte
	return string(AppendFloat(buf[:0], f))
}

func isIntegerLiteral(s string) bool {
	if len(s) == 0 || s == "-0" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', 'e', 'E':
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }
