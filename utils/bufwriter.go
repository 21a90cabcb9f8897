package utils

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// BufWriter accumulates a little-endian encoded file in memory.
// Sizes that are only known after a section is produced are handled with
// Reserve + PutLU32At: reserve the header words, produce the section, patch.
type BufWriter struct {
	buf bytes.Buffer
}

func NewBufWriter() *BufWriter {
	return &BufWriter{}
}

func (w *BufWriter) Len() int {
	return w.buf.Len()
}

func (w *BufWriter) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *BufWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *BufWriter) WriteTo(out io.Writer) (int64, error) {
	return w.buf.WriteTo(out)
}

// Reserve appends size zero bytes and returns their offset.
func (w *BufWriter) Reserve(size int) int {
	off := w.buf.Len()
	w.buf.Write(make([]byte, size))
	return off
}

func (w *BufWriter) PutLU32At(off int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf.Bytes()[off:], v)
}

func (w *BufWriter) WriteLU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *BufWriter) WriteLU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *BufWriter) WriteLI32(v int32) {
	w.WriteLU32(uint32(v))
}

func (w *BufWriter) WriteLI16(v int16) {
	w.WriteLU16(uint16(v))
}

func (w *BufWriter) WriteByte(v byte) error {
	return w.buf.WriteByte(v)
}

func (w *BufWriter) WriteLF(v float32) {
	w.WriteLU32(math.Float32bits(v))
}

func (w *BufWriter) WriteLFs(vs ...float32) {
	for _, v := range vs {
		w.WriteLF(v)
	}
}

// WriteStringBuffer writes s as a fixed size NUL padded text field.
func (w *BufWriter) WriteStringBuffer(s string, size int) {
	w.buf.Write(StringToBytesBuffer(s, size, false))
}
