package utils

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestBufStackEofIsSticky(t *testing.T) {
	bs := NewBufStack("root", []byte{1, 0, 0, 0, 2, 0})
	sub := bs.ReadSub("sub", 6)

	if v := sub.ReadLU32(); v != 1 {
		t.Errorf("ReadLU32()=%d; expected 1", v)
	}
	if v := sub.ReadLU32(); v != 0 {
		t.Errorf("ReadLU32() past end=%d; expected 0", v)
	}
	if errors.Cause(sub.Err()) != ErrUnexpectedEof {
		t.Errorf("sub.Err()=%v; expected unexpected eof", sub.Err())
	}
	if errors.Cause(bs.Err()) != ErrUnexpectedEof {
		t.Errorf("parent did not receive the error: %v", bs.Err())
	}
	// the two bytes that are left are not readable anymore
	if v := sub.ReadLU16(); v != 0 {
		t.Errorf("ReadLU16() after error=%d; expected 0", v)
	}
}

func TestBufStackSections(t *testing.T) {
	bs := NewBufStack("root", []byte("headerABCDtail"))
	header := bs.ReadSub("header", 6)
	body := bs.ReadSub("body", 4).SetName("letters")

	if s := header.ReadStringBuffer(6); s != "header" {
		t.Errorf("header=%q", s)
	}
	if b := body.ReadBytes(4); string(b) != "ABCD" {
		t.Errorf("body=%q", b)
	}
	if bs.Pos() != 10 || bs.Left() != 4 {
		t.Errorf("Pos()=%d Left()=%d; expected 10 and 4", bs.Pos(), bs.Left())
	}
	if bs.Err() != nil {
		t.Fatal(bs.Err())
	}

	tree := bs.StringTree()
	for _, expected := range []string{"buf<header>", "buf<body>(letters)", "tail [o:0xa,s:0x4]"} {
		if !strings.Contains(tree, expected) {
			t.Errorf("StringTree() does not contain %q:\n%s", expected, tree)
		}
	}

	if bad := bs.SubBuf("bad", 20); errors.Cause(bad.Err()) != ErrUnexpectedEof {
		t.Errorf("SubBuf past end error %v", bad.Err())
	}
}

func TestBufWriterPatch(t *testing.T) {
	w := NewBufWriter()
	w.WriteLU16(0xBEEF)
	off := w.Reserve(4)
	w.WriteStringBuffer("abc", 5)
	w.PutLU32At(off, uint32(w.Len()))

	bs := NewBufStack("check", w.Bytes())
	if v := bs.ReadLU16(); v != 0xBEEF {
		t.Errorf("ReadLU16()=0x%x", v)
	}
	if v := bs.ReadLU32(); v != 11 {
		t.Errorf("patched size %d; expected 11", v)
	}
	if s := bs.ReadStringBuffer(5); s != "abc" {
		t.Errorf("string %q; expected abc", s)
	}
}
