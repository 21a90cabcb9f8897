package web

import (
	"log"
	"net/http"
	"os"
	"path"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/landscape_browser/vfs"
)

var ServerDirectory vfs.Directory

func NewRouter(d vfs.Directory, webPath string) http.Handler {
	ServerDirectory = d

	r := mux.NewRouter()
	r.HandleFunc("/action/{action}/{file:.+}", HandlerActionPackFile)
	r.HandleFunc("/json/pack", HandlerAjaxPack)
	r.HandleFunc("/json/pack/{file:.+}", HandlerAjaxPackFile)
	r.HandleFunc("/dump/pack/{file:.+}", HandlerDumpPackFile)
	r.HandleFunc("/dump/spew/{file:.+}", HandlerDumpSpewFile)
	r.HandleFunc("/upload/pack/{file:.+}", HandlerUploadPackFile).Methods("POST")

	if webPath != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))
	}

	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(r)
	return handlers.LoggingHandler(os.Stdout, h)
}

func StartServer(addr string, d vfs.Directory, webPath string) error {
	h := NewRouter(d, webPath)
	log.Printf("[web] Starting server %v", addr)
	return http.ListenAndServe(addr, h)
}
