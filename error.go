package jsonvalue

import (
	"bytes"
	"fmt"
)

// ErrorKind identifies what went wrong in a failed Parse or Serialize call.
// ErrorKind implements error, and both ParseError and SerializeError unwrap to
// their kind, so callers can test for a failure with errors.Is:
//
//	if errors.Is(err, jsonvalue.MaxDepthExceeded) { ... }
type ErrorKind uint8

// Error kinds, grouped by the ErrorClass they belong to.
const (
	_ ErrorKind = iota

	// Lexical errors.
	UnterminatedString
	InvalidEscape
	InvalidNumber
	UnexpectedCharacter

	// Grammar errors.
	ExpectedKey
	ExpectedColon
	ExpectedCommaOrBrace
	ExpectedCommaOrBracket
	ExpectedValue
	MaxDepthExceeded
	TrailingData
	UnexpectedEOF

	// Resource limits.
	MaxSizeExceeded

	// Serialization.
	NonFiniteNumber
)

var kindNames = [...]string{
	UnterminatedString:     "unterminated string",
	InvalidEscape:          "invalid escape",
	InvalidNumber:          "invalid number",
	UnexpectedCharacter:    "unexpected character",
	ExpectedKey:            "expected key",
	ExpectedColon:          "expected colon",
	ExpectedCommaOrBrace:   "expected comma or brace",
	ExpectedCommaOrBracket: "expected comma or bracket",
	ExpectedValue:          "expected value",
	MaxDepthExceeded:       "maximum depth exceeded",
	TrailingData:           "trailing data",
	UnexpectedEOF:          "unexpected end of input",
	MaxSizeExceeded:        "maximum size exceeded",
	NonFiniteNumber:        "non-finite number",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

func (k ErrorKind) Error() string { return k.String() }

// ErrorClass groups error kinds by the stage that reports them.
type ErrorClass uint8

const (
	// LexError kinds come from tokenizing input bytes.
	LexError ErrorClass = iota + 1
	// SyntaxError kinds come from the token grammar.
	SyntaxError
	// LimitError kinds come from configured resource limits.
	LimitError
	// EncodeError kinds come from serialization.
	EncodeError
)

func (c ErrorClass) String() string {
	switch c {
	case LexError:
		return "lex error"
	case SyntaxError:
		return "syntax error"
	case LimitError:
		return "limit error"
	case EncodeError:
		return "encode error"
	}
	return "unknown error"
}

// Class reports the stage that produces errors of kind k.
func (k ErrorKind) Class() ErrorClass {
	switch {
	case k >= UnterminatedString && k <= UnexpectedCharacter:
		return LexError
	case k >= ExpectedKey && k <= UnexpectedEOF:
		return SyntaxError
	case k == MaxSizeExceeded:
		return LimitError
	case k == NonFiniteNumber:
		return EncodeError
	}
	return 0
}

// ParseError records JSON parsing errors.  Offset is the zero-based byte
// offset of the failure in the input; Line and Column are one-based, with
// Column counted in bytes.
type ParseError struct {
	Kind   ErrorKind
	Offset int
	Line   int
	Column int
	msg    string
}

func (pe *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s at line %d, column %d (offset %d)", pe.msg, pe.Line, pe.Column, pe.Offset)
}

// Message returns the error description without position information.
func (pe *ParseError) Message() string { return pe.msg }

// Unwrap returns pe.Kind.
func (pe *ParseError) Unwrap() error { return pe.Kind }

func newParseError(data []byte, kind ErrorKind, offset int, msg string) *ParseError {
	line, col := position(data, offset)
	return &ParseError{Kind: kind, Offset: offset, Line: line, Column: col, msg: msg}
}

// position converts a byte offset to a line and column.  It is only called on
// the error path, so the rescan of the input is acceptable.
func position(data []byte, offset int) (line, col int) {
	if offset > len(data) {
		offset = len(data)
	}
	prefix := data[:offset]
	line = 1 + bytes.Count(prefix, []byte{'\n'})
	col = offset - bytes.LastIndexByte(prefix, '\n')
	return line, col
}

// SerializeError records a Value that has no JSON representation.
type SerializeError struct {
	Kind ErrorKind
	msg  string
}

func (se *SerializeError) Error() string { return "serialize error: " + se.msg }

// Unwrap returns se.Kind.
func (se *SerializeError) Unwrap() error { return se.Kind }
