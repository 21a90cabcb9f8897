package vfs

import (
	"bytes"
	"io"
	"io/ioutil"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// MemoryDirectory keeps files in memory. Used for uploads and in tests.
type MemoryDirectory struct {
	name  string
	lock  sync.RWMutex
	files map[string][]byte
}

func NewMemoryDirectory(name string) *MemoryDirectory {
	return &MemoryDirectory{name: name, files: make(map[string][]byte)}
}

func (md *MemoryDirectory) Name() string {
	return md.name
}

func (md *MemoryDirectory) List() ([]string, error) {
	md.lock.RLock()
	defer md.lock.RUnlock()

	result := make([]string, 0, len(md.files))
	for name := range md.files {
		if !strings.Contains(name, "/") {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (md *MemoryDirectory) Open(name string) (io.ReadCloser, error) {
	data, err := md.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return ioutil.NopCloser(bytes.NewReader(data)), nil
}

func (md *MemoryDirectory) ReadFile(name string) ([]byte, error) {
	md.lock.RLock()
	defer md.lock.RUnlock()

	data, ok := md.files[CleanName(name)]
	if !ok {
		return nil, errors.Errorf("Cannot open file '%s': not found", name)
	}
	return append([]byte(nil), data...), nil
}

func (md *MemoryDirectory) WriteFile(name string, data []byte) error {
	md.lock.Lock()
	defer md.lock.Unlock()

	md.files[CleanName(name)] = append([]byte(nil), data...)
	return nil
}
