package utils

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// BufStack is a little-endian read cursor over an in-memory buffer.
// Sections read through ReadSub become children, so a decoded file can be
// printed as a layout tree with StringTree.
//
// Reads never panic. The first out of bounds access records an
// ErrUnexpectedEof error on the buffer and all of its parents, and every
// following read returns zero values. Check Err at record boundaries.
type BufStack struct {
	parent         *BufStack
	childs         []*BufStack
	buf            []byte
	relativeOffset int
	absoluteOffset int
	size           int
	pos            int
	kind           string
	name           string
	err            error
}

func NewBufStack(kind string, b []byte) *BufStack {
	return &BufStack{
		buf:  b,
		size: len(b),
		kind: kind,
	}
}

func (bs *BufStack) addChild(childBs *BufStack) {
	index := sort.Search(len(bs.childs), func(i int) bool {
		return bs.childs[i].relativeOffset > childBs.relativeOffset
	})
	bs.childs = append(bs.childs, nil)
	copy(bs.childs[index+1:], bs.childs[index:])
	bs.childs[index] = childBs
}

func (bs *BufStack) fail(err error) {
	for b := bs; b != nil; b = b.parent {
		if b.err == nil {
			b.err = err
		}
	}
}

func (bs *BufStack) eof(amount int) {
	bs.fail(errors.Wrapf(ErrUnexpectedEof, "%s: need 0x%x bytes at 0x%x", bs.StringChain(), amount, bs.pos))
}

// SubBuf returns a child view starting at offset and spanning the rest of bs.
func (bs *BufStack) SubBuf(kind string, offset int) *BufStack {
	childBs := &BufStack{
		parent:         bs,
		relativeOffset: offset,
		absoluteOffset: bs.absoluteOffset + offset,
		kind:           kind,
	}
	if offset < 0 || offset > bs.size {
		childBs.eof(0)
	} else {
		childBs.buf = bs.buf[offset:bs.size]
		childBs.size = bs.size - offset
	}
	bs.addChild(childBs)
	return childBs
}

// ReadSub consumes size bytes at the current position and returns them as a child.
func (bs *BufStack) ReadSub(kind string, size int) *BufStack {
	childBs := bs.SubBuf(kind, bs.pos).SetSize(size)
	bs.Skip(size)
	return childBs
}

func (bs *BufStack) SetName(name string) *BufStack {
	bs.name = name
	return bs
}

func (bs *BufStack) SetSize(size int) *BufStack {
	if size < 0 || size > len(bs.buf) {
		bs.eof(size)
		size = len(bs.buf)
	}
	bs.size = size
	return bs
}

func (bs *BufStack) Name() string {
	return bs.name
}

func (bs *BufStack) Size() int {
	return bs.size
}

func (bs *BufStack) Kind() string {
	return bs.kind
}

func (bs *BufStack) Err() error {
	return bs.err
}

func (bs *BufStack) String() string {
	return fmt.Sprintf("buf<%v>(%v)[o:0x%x,s:0x%x,ao:0x%x,ae:0x%x]",
		bs.kind, bs.name, bs.relativeOffset, bs.size, bs.absoluteOffset, bs.absoluteOffset+bs.size)
}

func (bs *BufStack) StringChain() string {
	s := bs.String()
	if bs.parent != nil {
		s += fmt.Sprintf("::%s", bs.parent.String())
	}
	return s
}

func (bs *BufStack) stringTree(pad int) string {
	sPad := ""
	for i := 0; i < pad; i++ {
		sPad += ".  "
	}
	s := sPad + bs.String() + "\n"
	pos := 0
	for i, child := range bs.childs {
		if child.relativeOffset > pos {
			s += fmt.Sprintf("%s.  gap [o:0x%x,s:0x%x,ao:0x%x,ae:0x%x]\n",
				sPad, pos, child.relativeOffset-pos, bs.absoluteOffset+pos, child.absoluteOffset)
		}
		s += child.stringTree(pad + 1)
		end := child.relativeOffset + child.size
		if i != len(bs.childs)-1 && end > bs.childs[i+1].relativeOffset {
			s += fmt.Sprintf("%s. [OVERLAP]\n", sPad)
		}
		if end > pos {
			pos = end
		}
	}
	if len(bs.childs) != 0 && pos < bs.size {
		s += fmt.Sprintf("%s.  tail [o:0x%x,s:0x%x]\n", sPad, pos, bs.size-pos)
	}
	return s
}

func (bs *BufStack) StringTree() string {
	return bs.stringTree(0)
}

func (bs *BufStack) Pos() int {
	return bs.pos
}

func (bs *BufStack) Left() int {
	return bs.size - bs.pos
}

// Read returns the next amount bytes without copying, or nil past the end.
func (bs *BufStack) Read(amount int) []byte {
	if bs.err != nil {
		return nil
	}
	if amount < 0 || amount > bs.size-bs.pos {
		bs.eof(amount)
		return nil
	}
	oldPos := bs.pos
	bs.pos += amount
	return bs.buf[oldPos:bs.pos:bs.pos]
}

// ReadBytes is Read with a private copy of the data.
func (bs *BufStack) ReadBytes(amount int) []byte {
	raw := bs.Read(amount)
	if raw == nil {
		return nil
	}
	result := make([]byte, len(raw))
	copy(result, raw)
	return result
}

func (bs *BufStack) Skip(amount int) {
	bs.Read(amount)
}

func (bs *BufStack) ReadLU32() uint32 {
	if b := bs.Read(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (bs *BufStack) ReadLU16() uint16 {
	if b := bs.Read(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (bs *BufStack) ReadLI32() int32 {
	return int32(bs.ReadLU32())
}

func (bs *BufStack) ReadLI16() int16 {
	return int16(bs.ReadLU16())
}

func (bs *BufStack) ReadU8() byte {
	if b := bs.Read(1); b != nil {
		return b[0]
	}
	return 0
}

func (bs *BufStack) ReadLF() float32 {
	return math.Float32frombits(bs.ReadLU32())
}

func (bs *BufStack) ReadLFs(out []float32) {
	for i := range out {
		out[i] = bs.ReadLF()
	}
}

// ReadStringBuffer reads a fixed size NUL padded text field.
func (bs *BufStack) ReadStringBuffer(size int) string {
	if b := bs.Read(size); b != nil {
		return BytesToString(b)
	}
	return ""
}
