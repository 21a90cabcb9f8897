package utils

import (
	"bytes"
	"testing"
)

func TestStringToBytesBuffer(t *testing.T) {
	for _, test := range []struct {
		s        string
		size     int
		expected []byte
	}{
		{"ab", 4, []byte{'a', 'b', 0, 0}},
		{"abcdef", 4, []byte("abcd")},
		{"café", 5, []byte{'c', 'a', 'f', 0xe9, 0}},
		{"", 2, []byte{0, 0}},
	} {
		if got := StringToBytesBuffer(test.s, test.size, false); !bytes.Equal(got, test.expected) {
			t.Errorf("StringToBytesBuffer(%q, %d)=%v; expected %v", test.s, test.size, got, test.expected)
		}
	}
}

func TestBytesToString(t *testing.T) {
	for _, test := range []struct {
		b        []byte
		expected string
	}{
		{[]byte{'a', 'b', 0, 'c'}, "ab"},
		{[]byte{'c', 'a', 'f', 0xe9}, "café"},
		{nil, ""},
	} {
		if got := BytesToString(test.b); got != test.expected {
			t.Errorf("BytesToString(%v)=%q; expected %q", test.b, got, test.expected)
		}
	}
}
