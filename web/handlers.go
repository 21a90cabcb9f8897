package web

import (
	"log"
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/pack"
	"github.com/mogaika/landscape_browser/utils"
	"github.com/mogaika/landscape_browser/webutils"
)

type fileInfo struct {
	Name    string `json:"name"`
	Handled bool   `json:"handled"`
}

func HandlerAjaxPack(w http.ResponseWriter, r *http.Request) {
	files, err := ServerDirectory.List()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	sort.Strings(files)
	result := make([]fileInfo, len(files))
	for i, name := range files {
		result[i] = fileInfo{Name: name, Handled: pack.HasHandler(name)}
	}
	webutils.WriteJson(w, result)
}

func HandlerAjaxPackFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	data, err := pack.GetInstanceHandler(ServerDirectory, file)
	if err != nil {
		log.Printf("[web] Error getting file from pack: %v", err)
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, data)
	}
}

func HandlerDumpPackFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	f, err := ServerDirectory.Open(file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	defer f.Close()
	webutils.WriteFile(w, f, file)
}

func HandlerDumpSpewFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	data, err := pack.GetInstanceHandler(ServerDirectory, file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	webutils.WriteResult(w, []byte(utils.SDump(data)))
}

func HandlerActionPackFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	action := mux.Vars(r)["action"]

	src, err := pack.GetSource(ServerDirectory, file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	data, err := pack.CallHandler(src)
	if err != nil {
		log.Printf("[web] Error getting file from pack: %v", err)
		webutils.WriteError(w, err)
		return
	}

	if actioner, ok := data.(pack.HttpActioner); ok {
		actioner.HttpAction(src, w, r, action)
	} else {
		webutils.WriteError(w, errors.Errorf("File %s has no actions", file))
	}
}

// HandlerUploadPackFile replaces a file of the directory. Files with a
// known format have to decode before they are written.
func HandlerUploadPackFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	data, err := webutils.ReadFormFile(r, "data")
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	src := &pack.Source{Dir: ServerDirectory, Name: file, Data: data}
	if pack.HasHandler(file) {
		if _, err := pack.CallHandler(src); err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Refusing to write broken %s", file))
			return
		}
	}
	if err := src.Save(data); err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Error when updating %s", file))
		return
	}
	log.Printf("[web] Uploaded %s (%d bytes)", file, len(data))
	webutils.WriteJson(w, fileInfo{Name: file, Handled: pack.HasHandler(file)})
}
