package gltfutils

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"log"
	"path"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"golang.org/x/image/bmp"
)

type Options struct {
	// positions are divided by scale, zero means 1
	Scale float32
	// ReadTexture loads a texture file by name, textures are skipped when nil
	ReadTexture func(name string) ([]byte, error)
}

func (o *Options) GetScale() float32 {
	if o == nil || o.Scale == 0 {
		return 1
	}
	return o.Scale
}

func NewDocument() *gltf.Document {
	return gltf.NewDocument()
}

// ExportBinary puts the root nodes into the default scene and writes a .glb
func ExportBinary(w io.Writer, doc *gltf.Document, roots []uint32) error {
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, roots...)

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}

// imageAsPNG converts .tga and .bmp images, png and jpeg are embedded as is.
func imageAsPNG(name string, data []byte) ([]byte, string, error) {
	var img image.Image
	var err error
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return data, "image/png", nil
	case ".jpg", ".jpeg":
		return data, "image/jpeg", nil
	case ".bmp":
		img, err = bmp.Decode(bytes.NewReader(data))
	default:
		img, err = tga.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, "", errors.Wrapf(err, "Failed to decode %q", name)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", errors.Wrapf(err, "Failed to encode png %q", name)
	}
	return buf.Bytes(), "image/png", nil
}

// Texture embeds a texture into the binary buffer once and returns its
// index. Missing or broken textures are logged and result in nil.
func (gc *GLTFCacher) Texture(opts *Options, name string) *uint32 {
	if opts == nil || opts.ReadTexture == nil || name == "" {
		return nil
	}
	key := "texture:" + strings.ToLower(name)
	if v, ok := gc.GetCached(key); ok {
		return v.(*uint32)
	}

	var result *uint32
	defer func() { gc.AddCache(key, result) }()

	data, err := opts.ReadTexture(name)
	if err != nil {
		log.Printf("[gltf] Texture %q skipped: %v", name, err)
		return nil
	}
	imageData, mime, err := imageAsPNG(name, data)
	if err != nil {
		log.Printf("[gltf] Texture %q skipped: %v", name, err)
		return nil
	}

	doc := gc.Doc
	imageIndex, err := modeler.WriteImage(doc, name, mime, bytes.NewReader(imageData))
	if err != nil {
		log.Printf("[gltf] Texture %q skipped: %v", name, err)
		return nil
	}

	if len(doc.Samplers) == 0 {
		doc.Samplers = append(doc.Samplers, &gltf.Sampler{
			MinFilter: gltf.MinLinear,
			MagFilter: gltf.MagLinear,
			WrapS:     gltf.WrapRepeat,
			WrapT:     gltf.WrapRepeat,
		})
	}

	doc.Textures = append(doc.Textures, &gltf.Texture{
		Name:    name,
		Sampler: gltf.Index(0),
		Source:  gltf.Index(imageIndex),
	})
	result = gltf.Index(uint32(len(doc.Textures) - 1))
	return result
}

// Material adds a double sided pbr material once per key.
func (gc *GLTFCacher) Material(opts *Options, key string, color [4]float32, textureName string) uint32 {
	key = "material:" + key
	if v, ok := gc.GetCached(key); ok {
		return v.(uint32)
	}

	metallic := float32(0)
	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &color,
		MetallicFactor:  &metallic,
	}
	if texture := gc.Texture(opts, textureName); texture != nil {
		pbr.BaseColorTexture = &gltf.TextureInfo{Index: *texture}
	}

	gc.Doc.Materials = append(gc.Doc.Materials, &gltf.Material{
		Name:                 strings.TrimPrefix(key, "material:"),
		PBRMetallicRoughness: pbr,
		DoubleSided:          true,
	})
	index := uint32(len(gc.Doc.Materials) - 1)
	gc.AddCache(key, index)
	return index
}

// Game data is left handed, gltf is right handed. Z is mirrored and
// positions are divided by scale.

func Position(v mgl32.Vec3, scale float32) [3]float32 {
	return [3]float32{v[0] / scale, v[1] / scale, -v[2] / scale}
}

func Normal(v mgl32.Vec3) [3]float32 {
	return [3]float32{v[0], v[1], -v[2]}
}

func Matrix(m mgl32.Mat4, scale float32) [16]float32 {
	mirror := mgl32.Scale3D(1, 1, -1)
	r := mirror.Mul4(m).Mul4(mirror)
	r[12] /= scale
	r[13] /= scale
	r[14] /= scale
	return [16]float32(r)
}

// Triangle reverses the winding to follow the mirror.
func Triangle(a, b, c uint32) [3]uint32 {
	return [3]uint32{c, b, a}
}
