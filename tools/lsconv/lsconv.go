package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/config"
	"github.com/mogaika/landscape_browser/pack"
	"github.com/mogaika/landscape_browser/pack/cpo"
	"github.com/mogaika/landscape_browser/pack/mox"
	"github.com/mogaika/landscape_browser/pack/mtl"
	"github.com/mogaika/landscape_browser/pack/qad"
	"github.com/mogaika/landscape_browser/utils"
	"github.com/mogaika/landscape_browser/utils/gltfutils"
	"github.com/mogaika/landscape_browser/vfs"
)

const usage = `Usage: lsconv [-encoding name] <command> [flags] <file> [args]

Commands:
  dump <file>                            print decoded file
  layout <file>                          print byte layout of decoded sections
  check <file>                           decode and encode, compare bytes
  gltf [-o out.glb] [-scale s] [-tex dir] [-mtl file] <file>
  markers-export <file.mox> [out.yaml]
  markers-import <file.mox> <in.yaml> [out.mox]
  mtl <file.mtl>                         list material definitions
  reparent <file.mox> <part> <parent>    move part, parent -1 makes it a root
`

func openSource(fileName string) (*pack.Source, error) {
	dir := vfs.NewDirectoryDriver(filepath.Dir(fileName))
	return pack.GetSource(dir, filepath.Base(fileName))
}

func decodeFile(fileName string) (*pack.Source, interface{}, error) {
	src, err := openSource(fileName)
	if err != nil {
		return nil, nil, err
	}
	inst, err := pack.CallHandler(src)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Failed to decode %q", fileName)
	}
	return src, inst, nil
}

func decodeMox(fileName string) (*pack.Source, *mox.Mox, error) {
	src, inst, err := decodeFile(fileName)
	if err != nil {
		return nil, nil, err
	}
	m, ok := inst.(*mox.Mox)
	if !ok {
		return nil, nil, errors.Errorf("%q is not a model", fileName)
	}
	return src, m, nil
}

func cmdDump(args []string) error {
	if len(args) != 1 {
		return errors.New("dump requires a file")
	}
	_, inst, err := decodeFile(args[0])
	if err != nil {
		return err
	}
	utils.Dump(inst)
	return nil
}

func cmdLayout(args []string) error {
	if len(args) != 1 {
		return errors.New("layout requires a file")
	}
	src, err := openSource(args[0])
	if err != nil {
		return err
	}

	var bs *utils.BufStack
	switch strings.ToUpper(filepath.Ext(args[0])) {
	case ".MOX":
		_, bs, err = mox.NewFromDataWithLayout(src.Data)
	case ".CPO":
		_, bs, err = cpo.NewFromDataWithLayout(src.Data)
	case ".QAD":
		_, bs, err = qad.NewQadFromDataWithLayout(src.Data)
	case ".GEO":
		_, bs, err = qad.NewGeoFromDataWithLayout(src.Data)
	default:
		return errors.Errorf("No layout for %q", args[0])
	}
	if bs != nil {
		fmt.Print(bs.StringTree())
	}
	return err
}

func compare(what string, original, produced []byte) error {
	if bytes.Equal(original, produced) {
		log.Printf("[lsconv] %s: %d bytes, identical", what, len(original))
		return nil
	}
	limit := len(original)
	if len(produced) < limit {
		limit = len(produced)
	}
	offset := limit
	for i := 0; i < limit; i++ {
		if original[i] != produced[i] {
			offset = i
			break
		}
	}
	return errors.Errorf("%s differs at offset 0x%x (%d bytes vs %d bytes)", what, offset, len(original), len(produced))
}

func cmdCheck(args []string) error {
	if len(args) != 1 {
		return errors.New("check requires a file")
	}
	src, inst, err := decodeFile(args[0])
	if err != nil {
		return err
	}

	switch v := inst.(type) {
	case *mox.Mox:
		for _, warn := range v.CheckConsistency() {
			log.Printf("[lsconv] warning: %v", warn)
		}
		data, err := v.Marshal()
		if err != nil {
			return err
		}
		return compare(src.Name, src.Data, data)
	case *cpo.Cpo:
		data, err := v.Marshal()
		if err != nil {
			return err
		}
		return compare(src.Name, src.Data, data)
	case *qad.Scenario:
		qadData, geoData, err := v.Marshal()
		if err != nil {
			return err
		}
		if err := compare(src.Name, src.Data, qadData); err != nil {
			return err
		}
		origGeo, err := src.Sibling(".geo")
		if err != nil {
			return err
		}
		return compare(vfs.ReplaceExt(src.Name, ".geo"), origGeo, geoData)
	case *qad.Qad:
		data, err := v.Marshal()
		if err != nil {
			return err
		}
		return compare(src.Name, src.Data, data)
	case *qad.Geo:
		data, err := v.Marshal()
		if err != nil {
			return err
		}
		return compare(src.Name, src.Data, data)
	default:
		return errors.Errorf("%q has no binary encoder", args[0])
	}
}

func cmdGltf(args []string) error {
	fs := flag.NewFlagSet("gltf", flag.ExitOnError)
	out := fs.String("o", "", "Output .glb, next to the input by default")
	scale := fs.Float64("scale", 1, "Divide positions by scale")
	tex := fs.String("tex", "", "Folder with textures, "+mox.TEXTURES_FOLDER+" next to the input by default")
	mtlFile := fs.String("mtl", "", "Material table, .mtl next to the input by default")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("gltf requires a file")
	}
	fileName := fs.Arg(0)

	src, inst, err := decodeFile(fileName)
	if err != nil {
		return err
	}

	readTexture := func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(*tex, filepath.FromSlash(name)))
	}

	gc := gltfutils.NewCacher()
	var roots []uint32
	switch v := inst.(type) {
	case *mox.Mox:
		opts := mox.SourceGLTFOptions(src)
		if *tex != "" {
			opts.ReadTexture = readTexture
		}
		if *mtlFile != "" {
			data, err := os.ReadFile(*mtlFile)
			if err != nil {
				return errors.Wrapf(err, "Failed to read material table")
			}
			if opts.Materials, err = mtl.Parse(data); err != nil {
				return err
			}
		}
		opts.Scale = float32(*scale)
		roots, err = v.ExportGLTF(gc, opts)
	case *cpo.Cpo:
		roots, err = v.ExportGLTF(gc, &gltfutils.Options{Scale: float32(*scale)})
	case *qad.Scenario:
		opts := qad.SourceGLTFOptions(src)
		if *tex != "" {
			opts.ReadTexture = readTexture
		}
		opts.Scale = float32(*scale)
		roots, err = v.ExportGLTF(gc, opts)
	default:
		return errors.Errorf("%q can not be exported to gltf", fileName)
	}
	if err != nil {
		return err
	}

	if *out == "" {
		*out = vfs.ReplaceExt(fileName, ".glb")
	}
	f, err := os.Create(*out)
	if err != nil {
		return errors.Wrapf(err, "Failed to create %q", *out)
	}
	defer f.Close()
	if err := gltfutils.ExportBinary(f, gc.Doc, roots); err != nil {
		return errors.Wrapf(err, "Failed to write %q", *out)
	}
	log.Printf("[lsconv] Exported %q", *out)
	return nil
}

func cmdMarkersExport(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("markers-export requires a model and an optional output")
	}
	_, m, err := decodeMox(args[0])
	if err != nil {
		return err
	}
	if len(args) == 1 {
		return m.ExportMarkersYAML(os.Stdout)
	}

	f, err := os.Create(args[1])
	if err != nil {
		return errors.Wrapf(err, "Failed to create %q", args[1])
	}
	defer f.Close()
	return m.ExportMarkersYAML(f)
}

func saveMox(m *mox.Mox, fileName string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(fileName, data, 0666); err != nil {
		return errors.Wrapf(err, "Failed to write %q", fileName)
	}
	log.Printf("[lsconv] Saved %q", fileName)
	return nil
}

func cmdMarkersImport(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.New("markers-import requires a model, a yaml file and an optional output")
	}
	_, m, err := decodeMox(args[0])
	if err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return errors.Wrapf(err, "Failed to open %q", args[1])
	}
	defer f.Close()
	if err := m.ImportMarkersYAML(f); err != nil {
		return err
	}

	out := args[0]
	if len(args) == 3 {
		out = args[2]
	}
	return saveMox(m, out)
}

func cmdMtl(args []string) error {
	if len(args) != 1 {
		return errors.New("mtl requires a file")
	}
	_, inst, err := decodeFile(args[0])
	if err != nil {
		return err
	}
	lib, ok := inst.(*mtl.Library)
	if !ok {
		return errors.Errorf("%q is not a material table", args[0])
	}

	fmt.Printf("color sets: %s\n", strings.Join(lib.ColorSets, ", "))
	for _, id := range lib.Ids() {
		def, _ := lib.Lookup(id)
		fmt.Printf("0x%04x: %s\n", id, strings.Join(def.Textures(), ", "))
	}
	return nil
}

// partArg accepts a part name or index
func partArg(m *mox.Mox, s string) (int, error) {
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	if i := m.PartByName(s); i != -1 {
		return i, nil
	}
	return 0, errors.Errorf("Part %q not found", s)
}

func cmdReparent(args []string) error {
	if len(args) != 3 {
		return errors.New("reparent requires a model, a part and a parent")
	}
	_, m, err := decodeMox(args[0])
	if err != nil {
		return err
	}
	part, err := partArg(m, args[1])
	if err != nil {
		return err
	}
	parent, err := partArg(m, args[2])
	if err != nil {
		return err
	}
	if err := m.ReparentPart(part, parent); err != nil {
		return err
	}
	return saveMox(m, args[0])
}

var commands = map[string]func(args []string) error{
	"dump":           cmdDump,
	"layout":         cmdLayout,
	"check":          cmdCheck,
	"gltf":           cmdGltf,
	"markers-export": cmdMarkersExport,
	"markers-import": cmdMarkersImport,
	"mtl":            cmdMtl,
	"reparent":       cmdReparent,
}

func main() {
	var encoding string
	flag.StringVar(&encoding, "encoding", "", "Encoding of names, charmap name or one of "+strings.Join(config.ListEncodings(), ", "))
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if encoding != "" {
		if err := config.SetEncoding(encoding); err != nil {
			log.Fatal(err)
		}
	}

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		flag.Usage()
		os.Exit(2)
	}
	if err := cmd(flag.Args()[1:]); err != nil {
		log.Fatalf("[lsconv] %v", err)
	}
}
