package mox

import (
	"bytes"
	"log"
	"net/http"
	"path"

	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/pack"
	"github.com/mogaika/landscape_browser/pack/mtl"
	"github.com/mogaika/landscape_browser/utils/gltfutils"
	"github.com/mogaika/landscape_browser/vfs"
	"github.com/mogaika/landscape_browser/webutils"
)

const TEXTURES_FOLDER = "Textures/tga"

// SourceGLTFOptions loads the material table next to the model and reads
// textures from the texture folder of the model.
func SourceGLTFOptions(src *pack.Source) *GLTFOptions {
	opts := &GLTFOptions{}
	opts.ReadTexture = func(name string) ([]byte, error) {
		return src.Relative(path.Join(TEXTURES_FOLDER, name))
	}

	if data, err := src.Sibling(".mtl"); err != nil {
		log.Printf("[mox] No material table for %q: %v", src.Name, err)
	} else if lib, err := mtl.Parse(data); err != nil {
		log.Printf("[mox] Failed to parse material table of %q: %v", src.Name, err)
	} else {
		opts.Materials = lib
	}
	return opts
}

func (m *Mox) HttpAction(src *pack.Source, w http.ResponseWriter, r *http.Request, action string) {
	switch action {
	case "gltf":
		gc := gltfutils.NewCacher()
		roots, err := m.ExportGLTF(gc, SourceGLTFOptions(src))
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
		_, bs, err := NewFromDataWithLayout(src.Data)
		if err != nil {
			log.Printf("[mox] Layout of %q is partial: %v", src.Name, err)
		}
		webutils.WriteFile(w, bytes.NewBufferString(bs.StringTree()), vfs.ReplaceExt(path.Base(src.Name), ".layout.txt"))
	case "markersyaml":
		var buffer bytes.Buffer
		if err := m.ExportMarkersYAML(&buffer); err != nil {
			webutils.WriteError(w, err)
			return
		}
		webutils.WriteFile(w, &buffer, vfs.ReplaceExt(path.Base(src.Name), ".markers.yaml"))
	case "frommarkersyaml":
		data, err := webutils.ReadFormFile(r, "data")
		if err != nil {
			webutils.WriteError(w, err)
			return
		}

		if err := m.ImportMarkersYAML(bytes.NewReader(data)); err != nil {
			webutils.WriteError(w, err)
			return
		}

		result, err := m.Marshal()
		if err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to produce binary"))
			return
		}
		if err := src.Save(result); err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to save %q", src.Name))
			return
		}
		log.Printf("[mox] Imported %d markers into %q", len(m.Markers), src.Name)
		webutils.WriteJson(w, map[string]interface{}{"markers": len(m.Markers)})
	default:
		log.Printf("[mox] Unknown action %q", action)
		w.WriteHeader(http.StatusNotFound)
	}
}
