package cpo

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

func (c *Cpo) HttpAction(src *pack.Source, w http.ResponseWriter, r *http.Request, action string) {
	switch action {
	case "gltf":
		gc := gltfutils.NewCacher()
		roots, err := c.ExportGLTF(gc, &gltfutils.Options{})
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
			log.Printf("[cpo] Layout of %q is partial: %v", src.Name, err)
		}
		webutils.WriteFile(w, bytes.NewBufferString(bs.StringTree()), vfs.ReplaceExt(path.Base(src.Name), ".layout.txt"))
	default:
		log.Printf("[cpo] Unknown action %q", action)
		w.WriteHeader(http.StatusNotFound)
	}
}
