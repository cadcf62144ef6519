package jsonvalue

import (
	"fmt"
	"math"
	"strconv"

	"github.com/xdg-go/jsonvalue/internal/jsonnum"
)

// NumberKind records how a Number's binary value is stored.
type NumberKind uint8

const (
	// FloatNumber holds a float64.
	FloatNumber NumberKind = iota
	// IntNumber holds an int64.
	IntNumber
	// UintNumber holds a uint64 larger than math.MaxInt64.
	UintNumber
)

func (k NumberKind) String() string {
	switch k {
	case IntNumber:
		return "int"
	case UintNumber:
		return "uint"
	default:
		return "float"
	}
}

// Number is a JSON number.  It holds an exact integer when the literal fits in
// 64 bits and a correctly rounded float64 otherwise.  Numbers produced by the
// parser also keep their original literal text, which Serialize can emit
// verbatim with SerializeOptions.PreserveRawNumbers.
type Number struct {
	kind NumberKind
	bits uint64
	raw  string
}

// IntNum returns an integer Number.
func IntNum(i int64) Number { return Number{kind: IntNumber, bits: uint64(i)} }

// UintNum returns an unsigned integer Number.  Values that fit in an int64 are
// stored as IntNumber.
func UintNum(u uint64) Number {
	if u <= math.MaxInt64 {
		return Number{kind: IntNumber, bits: u}
	}
	return Number{kind: UintNumber, bits: u}
}

// FloatNum returns a floating-point Number.  NaN and infinities are accepted
// here but have no JSON text; see SerializeOptions.NonFinite.
func FloatNum(f float64) Number { return Number{kind: FloatNumber, bits: math.Float64bits(f)} }

// RawNumber parses JSON number text into a Number that remembers the text.
func RawNumber(text string) (Number, error) {
	if !jsonnum.Valid(text) {
		return Number{}, fmt.Errorf("invalid JSON number %q", text)
	}
	return parseNumber(text)
}

func parseNumber(text string) (Number, error) {
	p, err := jsonnum.Parse(text)
	if err != nil {
		return Number{}, err
	}
	switch p.Kind {
	case jsonnum.Int:
		return Number{kind: IntNumber, bits: uint64(p.Int), raw: text}, nil
	case jsonnum.Uint:
		return Number{kind: UintNumber, bits: p.Uint, raw: text}, nil
	default:
		return Number{kind: FloatNumber, bits: math.Float64bits(p.Float), raw: text}, nil
	}
}

// Kind reports how n is stored.
func (n Number) Kind() NumberKind { return n.kind }

// IsInteger reports whether n holds an exact integer.
func (n Number) IsInteger() bool { return n.kind != FloatNumber }

// Raw returns the literal text n was parsed from, or "" if n was constructed.
func (n Number) Raw() string { return n.raw }

// Int64 returns n as an int64 if that conversion is exact.
func (n Number) Int64() (int64, bool) {
	switch n.kind {
	case IntNumber:
		return int64(n.bits), true
	case UintNumber:
		return 0, false
	}
	f := n.Float64()
	if f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}

// Uint64 returns n as a uint64 if that conversion is exact.
func (n Number) Uint64() (uint64, bool) {
	switch n.kind {
	case IntNumber:
		if int64(n.bits) < 0 {
			return 0, false
		}
		return n.bits, true
	case UintNumber:
		return n.bits, true
	}
	f := n.Float64()
	if f != math.Trunc(f) || f < 0 || f >= 1<<64 {
		return 0, false
	}
	return uint64(f), true
}

// Float64 returns n as a float64, rounding large integers.
func (n Number) Float64() float64 {
	switch n.kind {
	case IntNumber:
		return float64(int64(n.bits))
	case UintNumber:
		return float64(n.bits)
	}
	return math.Float64frombits(n.bits)
}

// Equal reports whether n and m denote the same binary value.  Integers and
// floats compare equal when the float is exactly that integer; the raw text
// is ignored.
func (n Number) Equal(m Number) bool {
	switch {
	case n.kind == FloatNumber && m.kind == FloatNumber:
		return n.Float64() == m.Float64()
	case n.kind == FloatNumber:
		return floatIsInteger(n.Float64(), m)
	case m.kind == FloatNumber:
		return floatIsInteger(m.Float64(), n)
	}
	return n.kind == m.kind && n.bits == m.bits
}

func floatIsInteger(f float64, m Number) bool {
	if m.kind == UintNumber {
		u, ok := FloatNum(f).Uint64()
		return ok && u == m.bits
	}
	i, ok := FloatNum(f).Int64()
	return ok && i == int64(m.bits)
}

// AppendText appends the canonical JSON text of n: minimal integer digits, or
// the shortest round-trip float text.  It does not check for NaN or
// infinities.
func (n Number) AppendText(dst []byte) []byte {
	switch n.kind {
	case IntNumber:
		return strconv.AppendInt(dst, int64(n.bits), 10)
	case UintNumber:
		return strconv.AppendUint(dst, n.bits, 10)
	}
	return jsonnum.AppendFloat(dst, n.Float64())
}

// String returns the canonical JSON text of n.
func (n Number) String() string {
	if n.kind == FloatNumber {
		f := n.Float64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	}
	return string(n.AppendText(nil))
}

func (n Number) isFinite() bool {
	if n.kind != FloatNumber {
		return true
	}
	f := n.Float64()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
