package jsonvalue

import "strconv"

// Walk visits v and every value below it in preorder: a container before its
// children, and children in order.  fn receives each value's location as an
// RFC 6901 JSON Pointer relative to v ("" for v itself, "/a/0" for element 0
// of member "a") and a pointer through which the value may be modified in
// place.  If fn returns false, the children of that value are skipped.
//
// fn must not add or remove elements or members of the container being
// walked.
func (v *Value) Walk(fn func(pointer string, v *Value) bool) {
	buf := make([]byte, 0, 64)
	v.walk(buf, fn)
}

func (v *Value) walk(path []byte, fn func(string, *Value) bool) {
	if !fn(string(path), v) {
		return
	}
	switch v.kind {
	case KindArray:
		for i := range v.arr {
			v.arr[i].walk(strconv.AppendInt(append(path, '/'), int64(i), 10), fn)
		}
	case KindObject:
		for i := range v.obj {
			v.obj[i].Value.walk(appendPointerToken(append(path, '/'), v.obj[i].Key), fn)
		}
	}
}

// appendPointerToken appends key with '~' and '/' escaped as "~0" and "~1".
func appendPointerToken(dst []byte, key string) []byte {
	for i := 0; i < len(key); i++ {
		switch c := key[i]; c {
		case '~':
			dst = append(dst, '~', '0')
		case '/':
			dst = append(dst, '~', '1')
		default:
			dst = append(dst, c)
		}
	}
	return dst
}
