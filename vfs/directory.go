package vfs

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

type DirectoryDriver struct {
	path string
}

func NewDirectoryDriver(path string) *DirectoryDriver {
	return &DirectoryDriver{path: path}
}

func (dd *DirectoryDriver) Name() string {
	return filepath.Base(dd.path)
}

func (dd *DirectoryDriver) Path() string {
	return dd.path
}

func (dd *DirectoryDriver) fullPath(name string) string {
	return filepath.Join(dd.path, filepath.FromSlash(CleanName(name)))
}

func (dd *DirectoryDriver) List() ([]string, error) {
	fileinfos, err := ioutil.ReadDir(dd.path)
	if err != nil {
		return nil, errors.Wrapf(err, "Error getting directory '%s' info", dd.path)
	}
	result := make([]string, 0, len(fileinfos))
	for _, f := range fileinfos {
		if !f.IsDir() {
			result = append(result, f.Name())
		}
	}
	return result, nil
}

func (dd *DirectoryDriver) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(dd.fullPath(name))
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open file '%s'", name)
	}
	return f, nil
}

func (dd *DirectoryDriver) ReadFile(name string) ([]byte, error) {
	f, err := dd.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read file '%s'", name)
	}
	return data, nil
}

func (dd *DirectoryDriver) WriteFile(name string, data []byte) error {
	p := dd.fullPath(name)
	if err := os.MkdirAll(filepath.Dir(p), 0777); err != nil {
		return errors.Wrapf(err, "Cannot create directory for '%s'", name)
	}
	if err := ioutil.WriteFile(p, data, 0666); err != nil {
		return errors.Wrapf(err, "Cannot write file '%s'", name)
	}
	return nil
}
