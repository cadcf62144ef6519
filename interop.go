package jsonvalue

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Interface converts v to plain Go values: nil, bool, int64, uint64, float64,
// string, []any and map[string]any.  Duplicate object keys collapse to the
// last value.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		switch v.num.kind {
		case IntNumber:
			return int64(v.num.bits)
		case UintNumber:
			return v.num.bits
		}
		return v.num.Float64()
	case KindString:
		return v.str
	case KindArray:
		out := make([]any, len(v.arr))
		for i := range v.arr {
			out[i] = v.arr[i].Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for _, m := range v.obj {
			out[m.Key] = m.Value.Interface()
		}
		return out
	}
	return nil
}

// FromInterface converts plain Go values to a Value.  It accepts what
// Interface returns, the other sized integer and float types, json.Number,
// Number, Value, []string and map[string]string.  Map members are sorted by
// key.
func FromInterface(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case Number:
		return NumberValue(x), nil
	case json.Number:
		n, err := RawNumber(string(x))
		if err != nil {
			return Value{}, err
		}
		return NumberValue(n), nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Uint(uint64(x)), nil
	case uint8:
		return Uint(uint64(x)), nil
	case uint16:
		return Uint(uint64(x)), nil
	case uint32:
		return Uint(uint64(x)), nil
	case uint64:
		return Uint(x), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case []any:
		arr := make([]Value, len(x))
		for i, e := range x {
			v, err := FromInterface(e)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			arr[i] = v
		}
		return Array(arr...), nil
	case []string:
		arr := make([]Value, len(x))
		for i, s := range x {
			arr[i] = String(s)
		}
		return Array(arr...), nil
	case map[string]any:
		obj := make([]Member, 0, len(x))
		for _, k := range sortedKeys(x) {
			v, err := FromInterface(x[k])
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			obj = append(obj, Member{Key: k, Value: v})
		}
		return Object(obj...), nil
	case map[string]string:
		obj := make([]Member, 0, len(x))
		for _, k := range sortedKeys(x) {
			obj = append(obj, Member{Key: k, Value: String(x[k])})
		}
		return Object(obj...), nil
	}
	return Value{}, fmt.Errorf("cannot convert %T to a JSON value", x)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON implements json.Marshaler with the default SerializeOptions.
func (v Value) MarshalJSON() ([]byte, error) {
	return Marshal(v)
}

// UnmarshalJSON implements json.Unmarshaler with the default ParseOptions.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Unmarshal(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.  Raw text is emitted when present.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.isFinite() {
		return nil, &SerializeError{Kind: NonFiniteNumber, msg: fmt.Sprintf("cannot encode %s", n)}
	}
	if n.raw != "" {
		return []byte(n.raw), nil
	}
	return n.AppendText(nil), nil
}
