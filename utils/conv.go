package utils

import (
	"bytes"

	"github.com/mogaika/landscape_browser/config"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// BytesToString decodes a NUL padded single byte text field using the
// configured code page. Bytes that do not decode are passed through as is.
func BytesToString(bs []byte) string {
	bs = bs[:BytesStringLength(bs)]

	s, _, err := transform.Bytes(config.GetEncoding().NewDecoder(), bs)
	if err != nil {
		return string(bs)
	}

	return string(s)
}

func BytesStringLength(bs []byte) int {
	if l := bytes.IndexByte(bs, 0); l == -1 {
		return len(bs)
	} else {
		return l
	}
}

// StringToBytes encodes s with the configured code page.
// Runes outside of the code page are replaced.
func StringToBytes(s string, nilTerminate bool) []byte {
	bs, _, err := transform.Bytes(encoding.ReplaceUnsupported(config.GetEncoding().NewEncoder()), []byte(s))
	if err != nil {
		bs = []byte(s)
	}
	if nilTerminate {
		bs = append(bs, 0)
	}
	return bs
}

// StringToBytesBuffer encodes s into exactly bufSize bytes, zero padded.
// Longer strings are truncated to the field size.
func StringToBytesBuffer(s string, bufSize int, nilTerminate bool) []byte {
	bs := StringToBytes(s, nilTerminate)
	r := make([]byte, bufSize)
	copy(r, bs)
	return r
}
