package qad

import (
	"bytes"
	"log"
	"net/http"
	"path"

	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/pack"
	"github.com/mogaika/landscape_browser/utils/gltfutils"
	"github.com/mogaika/landscape_browser/vfs"
	"github.com/mogaika/landscape_browser/webutils"
)

const TEXTURES_FOLDER = "Textures/tga"

func SourceGLTFOptions(src *pack.Source) *gltfutils.Options {
	return &gltfutils.Options{
		ReadTexture: func(name string) ([]byte, error) {
			return src.Relative(path.Join(TEXTURES_FOLDER, name))
		},
	}
}

func (s *Scenario) HttpAction(src *pack.Source, w http.ResponseWriter, r *http.Request, action string) {
	switch action {
	case "gltf":
		gc := gltfutils.NewCacher()
		roots, err := s.ExportGLTF(gc, SourceGLTFOptions(src))
		if err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to export gltf"))
			return
		}
		var buffer bytes.Buffer
		if err := gltfutils.ExportBinary(&buffer, gc.Doc, roots); err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to encode gltf"))
			return
		}
		webutils.WriteFile(w, &buffer, vfs.ReplaceExt(path.Base(src.Name), ".glb"))
	case "layout":
		_, bs, err := NewQadFromDataWithLayout(src.Data)
		if err != nil {
			log.Printf("[qad] Layout of %q is partial: %v", src.Name, err)
		}
		webutils.WriteFile(w, bytes.NewBufferString(bs.StringTree()), vfs.ReplaceExt(path.Base(src.Name), ".layout.txt"))
	default:
		log.Printf("[qad] Unknown action %q", action)
		w.WriteHeader(http.StatusNotFound)
	}
}
