// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package jsonvalue

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// NonFinitePolicy selects what Serialize does with NaN and infinities, which
// have no JSON representation.
type NonFinitePolicy uint8

const (
	// NonFiniteError fails with a *SerializeError of kind NonFiniteNumber.
	NonFiniteError NonFinitePolicy = iota
	// NonFiniteNull writes null in place of the number.
	NonFiniteNull
)

// SerializeOptions configures Serialize.  The zero value writes compact JSON
// with UTF-8 passed through, canonical numbers, and errors for non-finite
// numbers.
type SerializeOptions struct {
	// Indent, if not empty, turns on indented output with one copy of Indent
	// per nesting level.
	Indent string

	// ASCIIOnly escapes every non-ASCII code point as \uXXXX, using
	// surrogate pairs above U+FFFF.
	ASCIIOnly bool

	// PreserveRawNumbers writes parsed numbers with their original literal
	// text instead of the canonical form.
	PreserveRawNumbers bool

	// NonFinite selects the handling of NaN and infinities.
	NonFinite NonFinitePolicy
}

// Serialize converts v to JSON text.
func Serialize(v Value, opts SerializeOptions) ([]byte, error) {
	return Append(nil, v, opts)
}

// Append appends the JSON text of v to dst and returns the extended buffer,
// just like with `append`.  On error, nil is returned.
func Append(dst []byte, v Value, opts SerializeOptions) ([]byte, error) {
	e := encoder{opts: opts}
	out, err := e.appendValue(dst, &v, 0)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Marshal serializes v with the default SerializeOptions.
func Marshal(v Value) ([]byte, error) {
	return Serialize(v, SerializeOptions{})
}

type encoder struct {
	opts SerializeOptions
}

func (e *encoder) appendValue(dst []byte, v *Value, depth int) ([]byte, error) {
	switch v.kind {
	case KindNull:
		return append(dst, "null"...), nil
	case KindBool:
		if v.b {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case KindNumber:
		return e.appendNumber(dst, v.num)
	case KindString:
		return appendQuoted(dst, v.str, e.opts.ASCIIOnly), nil
	case KindArray:
		return e.appendArray(dst, v, depth)
	case KindObject:
		return e.appendObject(dst, v, depth)
	}
	return nil, fmt.Errorf("jsonvalue: invalid value kind %d", v.kind)
}

func (e *encoder) appendArray(dst []byte, v *Value, depth int) ([]byte, error) {
	if len(v.arr) == 0 {
		return append(dst, "[]"...), nil
	}
	var err error
	dst = append(dst, '[')
	for i := range v.arr {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = e.appendNewline(dst, depth+1)
		dst, err = e.appendValue(dst, &v.arr[i], depth+1)
		if err != nil {
			return nil, err
		}
	}
	dst = e.appendNewline(dst, depth)
	return append(dst, ']'), nil
}

func (e *encoder) appendObject(dst []byte, v *Value, depth int) ([]byte, error) {
	if len(v.obj) == 0 {
		return append(dst, "{}"...), nil
	}
	var err error
	dst = append(dst, '{')
	for i := range v.obj {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = e.appendNewline(dst, depth+1)
		dst = appendQuoted(dst, v.obj[i].Key, e.opts.ASCIIOnly)
		dst = append(dst, ':')
		if e.opts.Indent != "" {
			dst = append(dst, ' ')
		}
		dst, err = e.appendValue(dst, &v.obj[i].Value, depth+1)
		if err != nil {
			return nil, err
		}
	}
	dst = e.appendNewline(dst, depth)
	return append(dst, '}'), nil
}

func (e *encoder) appendNewline(dst []byte, depth int) []byte {
	if e.opts.Indent == "" {
		return dst
	}
	dst = append(dst, '\n')
	for i := 0; i < depth; i++ {
		dst = append(dst, e.opts.Indent...)
	}
	return dst
}

func (e *encoder) appendNumber(dst []byte, n Number) ([]byte, error) {
	if !n.isFinite() {
		if e.opts.NonFinite == NonFiniteNull {
			return append(dst, "null"...), nil
		}
		return nil, &SerializeError{Kind: NonFiniteNumber, msg: fmt.Sprintf("cannot encode %s as JSON", n)}
	}
	if e.opts.PreserveRawNumbers && n.raw != "" {
		return append(dst, n.raw...), nil
	}
	return n.AppendText(dst), nil
}

// appendQuoted appends s as a JSON string.  Invalid UTF-8 is replaced with
// U+FFFD.
func appendQuoted(dst []byte, s string, asciiOnly bool) []byte {
	dst = append(dst, '"')
	var i, n int
	for n < len(s) {
		if c := s[n]; c < utf8.RuneSelf {
			n++
			if c < ' ' || c == '"' || c == '\\' {
				dst = append(dst, s[i:n-1]...)
				dst = appendEscapedASCII(dst, c)
				i = n
			}
			continue
		}

		r, rn := utf8.DecodeRuneInString(s[n:])
		switch {
		case r == utf8.RuneError && rn == 1:
			dst = append(dst, s[i:n]...)
			if asciiOnly {
				dst = appendEscapedUTF16(dst, utf8.RuneError)
			} else {
				dst = append(dst, "\ufffd"...)
			}
			n += rn
			i = n
		case asciiOnly:
			dst = append(dst, s[i:n]...)
			dst = appendEscapedUnicode(dst, r)
			n += rn
			i = n
		default:
			n += rn
		}
	}
	dst = append(dst, s[i:]...)
	return append(dst, '"')
}

func appendEscapedASCII(dst []byte, c byte) []byte {
	switch c {
	case '"', '\\':
		return append(dst, '\\', c)
	case '\b':
		return append(dst, `\b`...)
	case '\f':
		return append(dst, `\f`...)
	case '\n':
		return append(dst, `\n`...)
	case '\r':
		return append(dst, `\r`...)
	case '\t':
		return append(dst, `\t`...)
	}
	return appendEscapedUTF16(dst, uint16(c))
}

func appendEscapedUnicode(dst []byte, r rune) []byte {
	if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError && r2 != utf8.RuneError {
		dst = appendEscapedUTF16(dst, uint16(r1))
		return appendEscapedUTF16(dst, uint16(r2))
	}
	return appendEscapedUTF16(dst, uint16(r))
}

func appendEscapedUTF16(dst []byte, x uint16) []byte {
	const hex = "0123456789abcdef"
	return append(dst, '\\', 'u', hex[(x>>12)&0xf], hex[(x>>8)&0xf], hex[(x>>4)&0xf], hex[(x>>0)&0xf])
}
