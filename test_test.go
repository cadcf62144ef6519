package jsonvalue

import (
	"errors"
	"os"
	"strings"
	"testing"
)

type parseTestCase struct {
	label  string
	input  string
	output string
	errStr string
	kind   ErrorKind
	offset int
}

// testWithParse parses each input and compares the compact serialization of
// the result with output, or checks the error against errStr and kind.
// Offsets are only checked for cases with a kind.
func testWithParse(t *testing.T, cases []parseTestCase, opts ParseOptions) {
	t.Helper()

	for _, c := range cases {
		c := c
		t.Run(c.label, func(t *testing.T) {
			t.Parallel()

			v, err := Parse([]byte(c.input), opts)
			if c.errStr != "" || c.kind != 0 {
				if err == nil {
					t.Fatalf("expected error but got value %s", v)
				}
				if !strings.Contains(err.Error(), c.errStr) {
					t.Errorf("expected error with '%s', but got %v", c.errStr, err)
				}
				if c.kind == 0 {
					return
				}
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("error wasn't a ParseError: %v", err)
				}
				if pe.Kind != c.kind {
					t.Errorf("expected kind %q, but got %q (%v)", c.kind, pe.Kind, err)
				}
				if pe.Offset != c.offset {
					t.Errorf("expected offset %d, but got %d (%v)", c.offset, pe.Offset, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, err := Marshal(v)
			if err != nil {
				t.Fatalf("unexpected serialize error: %v", err)
			}
			if string(got) != c.output {
				t.Fatalf("output doesn't match expected:\nGot:    %s\nExpect: %s", got, c.output)
			}
		})
	}
}

type serializeTestCase struct {
	label  string
	input  Value
	opts   SerializeOptions
	output string
	errStr string
}

func testWithSerialize(t *testing.T, cases []serializeTestCase) {
	t.Helper()

	for _, c := range cases {
		c := c
		t.Run(c.label, func(t *testing.T) {
			t.Parallel()

			got, err := Serialize(c.input, c.opts)
			if c.errStr != "" {
				var msg string
				if err != nil {
					msg = err.Error()
				}
				if !strings.Contains(msg, c.errStr) {
					t.Errorf("expected error with '%s', but got %v", c.errStr, msg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != c.output {
				t.Fatalf("output doesn't match expected:\nGot:    %s\nExpect: %s", got, c.output)
			}
		})
	}
}

// getTestFiles lists files in dir with the given prefix and suffix.  The test
// is skipped if dir does not exist, since the external suites are not
// vendored.
func getTestFiles(t *testing.T, dir, prefix, suffix string) []string {
	t.Helper()

	files, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			t.Skipf("test suite directory %s not present", dir)
		}
		t.Fatal(err)
	}

	keep := make([]string, 0)
	for _, file := range files {
		name := file.Name()
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		if suffix != "" && !strings.HasSuffix(name, suffix) {
			continue
		}
		keep = append(keep, name)
	}

	return keep
}

func mustParse(t testing.TB, input string) Value {
	t.Helper()
	v, err := Unmarshal([]byte(input))
	if err != nil {
		t.Fatalf("parsing %q: %v", input, err)
	}
	return v
}

func mustMarshal(t testing.TB, v Value) string {
	t.Helper()
	b, err := Marshal(v)
	if err != nil {
		t.Fatalf("serializing: %v", err)
	}
	return string(b)
}

func nested(open, close string, depth int) string {
	return strings.Repeat(open, depth) + strings.Repeat(close, depth)
}
