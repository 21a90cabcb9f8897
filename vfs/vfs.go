package vfs

import (
	"io"
	"path"
	"strings"
)

// Directory is a flat view of a folder with the game data.
// Names are slash separated and relative to the directory.
type Directory interface {
	Name() string
	List() ([]string, error)
	Open(name string) (io.ReadCloser, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
}

// CleanName turns a user supplied name into a relative path that can not
// escape the directory.
func CleanName(name string) string {
	return strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
}

// ReplaceExt swaps the extension of name, ext includes the dot.
func ReplaceExt(name, ext string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + ext
}
