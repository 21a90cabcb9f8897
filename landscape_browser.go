package main

import (
	"flag"
	"log"
	"strings"

	"github.com/mogaika/landscape_browser/config"
	"github.com/mogaika/landscape_browser/vfs"
	"github.com/mogaika/landscape_browser/web"

	_ "github.com/mogaika/landscape_browser/pack/cpo"
	_ "github.com/mogaika/landscape_browser/pack/mox"
	_ "github.com/mogaika/landscape_browser/pack/mtl"
	_ "github.com/mogaika/landscape_browser/pack/qad"
)

func main() {
	var addr, dir, encoding, webPath string
	flag.StringVar(&addr, "i", ":8000", "Address of server")
	flag.StringVar(&dir, "dir", "", "Path to folder with models and scenarios")
	flag.StringVar(&encoding, "encoding", "", "Encoding of names, charmap name or one of "+strings.Join(config.ListEncodings(), ", "))
	flag.StringVar(&webPath, "web", "", "Path to folder with static web interface")
	flag.Parse()

	if dir == "" {
		flag.PrintDefaults()
		return
	}

	if encoding != "" {
		if err := config.SetEncoding(encoding); err != nil {
			log.Fatal(err)
		}
	}

	if err := web.StartServer(addr, vfs.NewDirectoryDriver(dir), webPath); err != nil {
		log.Fatal(err)
	}
}
