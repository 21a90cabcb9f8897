package utils

import "github.com/pkg/errors"

// Codec failures. Decoders wrap these with the offending offset or record
// index, use errors.Cause to compare.
var (
	ErrUnexpectedEof      = errors.New("unexpected end of data")
	ErrBadMagic           = errors.New("bad magic")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrUnknownShapeType   = errors.New("unknown shape type")
	ErrBrokenHierarchy    = errors.New("broken hierarchy")
)

// CheckRange reports ErrIndexOutOfRange unless 0 <= first and first+count <= limit.
func CheckRange(what string, first, count, limit int) error {
	if first < 0 || count < 0 || first+count > limit {
		return errors.Wrapf(ErrIndexOutOfRange, "%s [%d:+%d] exceeds %d", what, first, count, limit)
	}
	return nil
}

// CheckIndex reports ErrIndexOutOfRange unless index is a valid position in
// an array of limit elements. When sentinel is true -1 is accepted as "none".
func CheckIndex(what string, index, limit int, sentinel bool) error {
	if sentinel && index == -1 {
		return nil
	}
	if index < 0 || index >= limit {
		return errors.Wrapf(ErrIndexOutOfRange, "%s %d (have %d)", what, index, limit)
	}
	return nil
}
