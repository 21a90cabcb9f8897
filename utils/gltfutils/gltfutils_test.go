package gltfutils

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

func TestMatrixMirrorsZ(t *testing.T) {
	m := mgl32.Translate3D(2, 4, 6)
	r := Matrix(m, 2)
	if r[12] != 1 || r[13] != 2 || r[14] != -3 {
		t.Errorf("translation=%v; expected [1 2 -3]", r[12:15])
	}

	p := Position(mgl32.Vec3{2, 4, 6}, 2)
	if p != [3]float32{1, 2, -3} {
		t.Errorf("Position=%v; expected [1 2 -3]", p)
	}
	if tri := Triangle(1, 2, 3); tri != [3]uint32{3, 2, 1} {
		t.Errorf("Triangle=%v; expected [3 2 1]", tri)
	}
}

func testBmp(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestTextureCached(t *testing.T) {
	reads := 0
	opts := &Options{ReadTexture: func(name string) ([]byte, error) {
		reads++
		if name == "wall.bmp" {
			return testBmp(t), nil
		}
		return nil, errors.Errorf("not found")
	}}

	gc := NewCacher()
	first := gc.Texture(opts, "wall.bmp")
	second := gc.Texture(opts, "WALL.bmp")
	if first == nil || second == nil || *first != *second {
		t.Fatalf("Texture returned %v and %v; expected the same index", first, second)
	}
	if reads != 1 {
		t.Errorf("reads=%d; expected 1", reads)
	}
	if len(gc.Doc.Images) != 1 || gc.Doc.Images[0].MimeType != "image/png" {
		t.Errorf("images=%v; expected one png", gc.Doc.Images)
	}

	if missing := gc.Texture(opts, "missing.tga"); missing != nil {
		t.Errorf("missing texture returned %v; expected nil", *missing)
	}

	a := gc.Material(opts, "a", [4]float32{1, 0, 0, 1}, "wall.bmp")
	b := gc.Material(opts, "a", [4]float32{0, 1, 0, 1}, "")
	if a != b || len(gc.Doc.Materials) != 1 {
		t.Errorf("Material keys not cached: %d %d, %d materials", a, b, len(gc.Doc.Materials))
	}
	if gc.Doc.Materials[a].PBRMetallicRoughness.BaseColorTexture == nil {
		t.Errorf("material has no texture")
	}
}
