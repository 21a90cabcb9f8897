package pack

import (
	"net/http"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/vfs"
)

// Source is a file of the data directory handed to a format loader.
type Source struct {
	Dir  vfs.Directory
	Name string
	Data []byte
}

// Sibling reads the file with the same base name and another extension.
func (s *Source) Sibling(ext string) ([]byte, error) {
	return s.Dir.ReadFile(vfs.ReplaceExt(s.Name, ext))
}

// Relative reads a file by path relative to the folder of the source.
func (s *Source) Relative(name string) ([]byte, error) {
	return s.Dir.ReadFile(path.Join(path.Dir(s.Name), name))
}

func (s *Source) Save(data []byte) error {
	return s.Dir.WriteFile(s.Name, data)
}

type FileLoader func(src *Source) (interface{}, error)

var gHandlers map[string]FileLoader = make(map[string]FileLoader, 0)

func SetHandler(format string, ldr FileLoader) {
	gHandlers[strings.ToUpper(format)] = ldr
}

func HasHandler(fileName string) bool {
	_, found := gHandlers[strings.ToUpper(path.Ext(fileName))]
	return found
}

func CallHandler(src *Source) (interface{}, error) {
	ext := strings.ToUpper(path.Ext(src.Name))

	if h, found := gHandlers[ext]; found {
		return h(src)
	} else {
		return nil, errors.Errorf("[pack] Cannot find handler for '%s' extension", ext)
	}
}

func GetSource(d vfs.Directory, fileName string) (*Source, error) {
	data, err := d.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "[pack] Cannot get file '%s'", fileName)
	}
	return &Source{Dir: d, Name: vfs.CleanName(fileName), Data: data}, nil
}

func GetInstanceHandler(d vfs.Directory, fileName string) (interface{}, error) {
	src, err := GetSource(d, fileName)
	if err != nil {
		return nil, err
	}

	inst, err := CallHandler(src)
	if err != nil {
		return nil, errors.Wrapf(err, "[pack] Handler error for '%s'", fileName)
	}

	return inst, nil
}

// HttpActioner is implemented by formats with actions in the web browser.
type HttpActioner interface {
	HttpAction(src *Source, w http.ResponseWriter, r *http.Request, action string)
}
