// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package jsonvalue

import (
	"fmt"
)

// Kind is the JSON type of a Value.
type Kind uint8

// Value kinds.  The zero Kind is KindNull, so the zero Value is JSON null.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is one JSON value: null, a boolean, a number, a string, an array of
// values or an object.  Only the payload matching Kind is set.
//
// Arrays and objects own their children; Array and Object copy the slices
// they are given.  Assigning a Value copies the container header but shares
// the elements, so use Clone before handing a subtree to code that may mutate
// it.
type Value struct {
	kind Kind
	b    bool
	num  Number
	str  string
	arr  []Value
	obj  []Member
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Null returns JSON null.
func Null() Value { return Value{} }

// Bool returns a JSON boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a JSON number holding an exact integer.
func Int(i int64) Value { return NumberValue(IntNum(i)) }

// Uint returns a JSON number holding an exact unsigned integer.
func Uint(u uint64) Value { return NumberValue(UintNum(u)) }

// Float returns a JSON number holding f.  NaN and infinities are allowed in
// the tree but fail to serialize under the default SerializeOptions.
func Float(f float64) Value { return NumberValue(FloatNum(f)) }

// NumberValue wraps n as a Value.
func NumberValue(n Number) Value { return Value{kind: KindNumber, num: n} }

// String returns a JSON string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Array returns a JSON array of a copy of elems.  The result never reports
// as null, even with no elements.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, arr: append([]Value{}, elems...)}
}

// Object returns a JSON object holding a copy of members in the given order.
// Duplicate keys are kept.
func Object(members ...Member) Value {
	return Value{kind: KindObject, obj: append([]Member{}, members...)}
}

// Kind returns the JSON type of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns v's boolean and whether v is a boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns v's number and whether v is a number.
func (v Value) AsNumber() (Number, bool) { return v.num, v.kind == KindNumber }

// AsString returns v's string and whether v is a string.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// Len returns the number of elements of an array or members of an object, the
// byte length of a string, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	case KindString:
		return len(v.str)
	}
	return 0
}

// Index returns a pointer to element i of an array, or nil if v is not an
// array or i is out of range.  The pointer aliases the array's storage.
func (v *Value) Index(i int) *Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return nil
	}
	return &v.arr[i]
}

// Elements returns the elements of an array, or nil.  The slice aliases the
// array's storage.
func (v Value) Elements() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Members returns the members of an object in order, or nil.  The slice
// aliases the object's storage.
func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}
	return v.obj
}

// Get returns a pointer to the value of the last member named key.
func (v *Value) Get(key string) (*Value, bool) {
	if i := v.lastIndex(key); i >= 0 {
		return &v.obj[i].Value, true
	}
	return nil, false
}

func (v *Value) lastIndex(key string) int {
	if v.kind != KindObject {
		return -1
	}
	for i := len(v.obj) - 1; i >= 0; i-- {
		if v.obj[i].Key == key {
			return i
		}
	}
	return -1
}

// Append adds elems to the end of an array.  It panics if v is not an array.
func (v *Value) Append(elems ...Value) {
	v.mustBe(KindArray, "Append")
	v.arr = append(v.arr, elems...)
}

// SetIndex replaces element i of an array.  It panics if v is not an array or
// i is out of range.
func (v *Value) SetIndex(i int, elem Value) {
	v.mustBe(KindArray, "SetIndex")
	v.arr[i] = elem
}

// Set replaces the value of the last member named key, or appends a new member
// if there is none.  It panics if v is not an object.
func (v *Value) Set(key string, val Value) {
	v.mustBe(KindObject, "Set")
	if i := v.lastIndex(key); i >= 0 {
		v.obj[i].Value = val
		return
	}
	v.obj = append(v.obj, Member{Key: key, Value: val})
}

// Delete removes every member named key and reports whether any existed.  It
// panics if v is not an object.
func (v *Value) Delete(key string) bool {
	v.mustBe(KindObject, "Delete")
	kept := v.obj[:0]
	for _, m := range v.obj {
		if m.Key != key {
			kept = append(kept, m)
		}
	}
	found := len(kept) < len(v.obj)
	for i := len(kept); i < len(v.obj); i++ {
		v.obj[i] = Member{}
	}
	v.obj = kept
	return found
}

func (v *Value) mustBe(k Kind, op string) {
	if v.kind != k {
		panic(fmt.Sprintf("jsonvalue: %s on %s value", op, v.kind))
	}
}

// Clone returns a deep copy of v that shares no storage with it.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		arr := make([]Value, len(v.arr))
		for i := range v.arr {
			arr[i] = v.arr[i].Clone()
		}
		v.arr = arr
	case KindObject:
		obj := make([]Member, len(v.obj))
		for i, m := range v.obj {
			obj[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
		v.obj = obj
	}
	return v
}

// Equal reports whether v and w are structurally equal.  Numbers compare by
// binary value, so 1, 1.0 and 1e0 are equal; objects compare member by member
// in order, including duplicates.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == w.b
	case KindNumber:
		return v.num.Equal(w.num)
	case KindString:
		return v.str == w.str
	case KindArray:
		if len(v.arr) != len(w.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(w.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(w.obj) {
			return false
		}
		for i := range v.obj {
			if v.obj[i].Key != w.obj[i].Key || !v.obj[i].Value.Equal(w.obj[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// String returns the compact JSON text of v.  Non-finite numbers are written
// as null.
func (v Value) String() string {
	b, _ := Serialize(v, SerializeOptions{NonFinite: NonFiniteNull})
	return string(b)
}
