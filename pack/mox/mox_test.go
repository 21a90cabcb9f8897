package mox

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/utils"
)

func testModel(version uint16) *Mox {
	return &Mox{
		Version: version,
		Options: OPTION_TANGENTS,
		Vertices: []Vertex{
			{Position: mgl32.Vec3{0, 0, 0}, Normal: mgl32.Vec3{0, 1, 0}, UV1: mgl32.Vec2{0, 0}},
			{Position: mgl32.Vec3{1, 0, 0}, Normal: mgl32.Vec3{0, 1, 0}, UV1: mgl32.Vec2{1, 0}},
			{Position: mgl32.Vec3{0, 0, 1}, Normal: mgl32.Vec3{0, 1, 0}, UV1: mgl32.Vec2{0, 1}, UV2: mgl32.Vec2{0.5, 0.5}},
		},
		Tangents: []Tangent{
			{UV1: [4]uint16{1, 2, 3, 4}},
			{UV2: [4]uint16{5, 6, 7, 8}},
			{},
		},
		Triangles: []Triangle{{0, 1, 2}},
		Chunks: []Chunk{
			{MaterialIndex: 0, MaterialId: 0x1000, FirstTriangle: 0, TriangleCount: 1, FirstVertex: 0, LastVertex: 2},
		},
		Materials: []Material{
			{Id: 0x1000, Reserved: make([]byte, MATERIAL_RESERVED_SIZE)},
		},
		Parts: []Part{
			{Name: "body", Matrix: mgl32.Ident4(), Parent: -1, Child: 1, PrevInLevel: -1, NextInLevel: -1, ChunkCount: 1, Type: PartXYZ},
			{Name: "wheel", Matrix: mgl32.Translate3D(1, 0, 0), Parent: 0, Child: -1, PrevInLevel: -1, NextInLevel: -1,
				Options: PART_OPTION_NO_DETACHMENT},
		},
		Markers: []Marker{
			{Type: MarkerNitro, PartIndex: 0, Matrix: mgl32.Translate3D(0, 0, -2),
				Parameters: &NitroParameters{SizeXY: 1.5, SizeZ: 2}},
			{Type: MarkerHeadlight, PartIndex: 1, Options: 3, Matrix: mgl32.Ident4(),
				Parameters: &HeadlightParameters{Color: utils.ColorFloat{1, 0, 0, 1}, SizeNormal: 1, SizeFlash: 2, SizeAtDay: 0.5}},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, version := range []uint16{VERSION_2, VERSION_3} {
		m := testModel(version)
		data, err := m.Marshal()
		if err != nil {
			t.Fatalf("version 0x%x: Marshal failed: %v", version, err)
		}

		decoded, err := NewFromData(data)
		if err != nil {
			t.Fatalf("version 0x%x: NewFromData failed: %v", version, err)
		}
		if !reflect.DeepEqual(decoded.Vertices, m.Vertices) {
			t.Errorf("version 0x%x: vertices %v; expected %v", version, decoded.Vertices, m.Vertices)
		}
		if !reflect.DeepEqual(decoded.Tangents, m.Tangents) {
			t.Errorf("version 0x%x: tangents %v; expected %v", version, decoded.Tangents, m.Tangents)
		}
		if !reflect.DeepEqual(decoded.Parts, m.Parts) {
			t.Errorf("version 0x%x: parts %v; expected %v", version, decoded.Parts, m.Parts)
		}
		for i := range m.Markers {
			if !reflect.DeepEqual(decoded.Markers[i].Parameters, m.Markers[i].Parameters) {
				t.Errorf("version 0x%x: marker %d parameters %+v; expected %+v",
					version, i, decoded.Markers[i].Parameters, m.Markers[i].Parameters)
			}
			if decoded.Markers[i].Matrix != m.Markers[i].Matrix {
				t.Errorf("version 0x%x: marker %d matrix %v; expected %v", version, i, decoded.Markers[i].Matrix, m.Markers[i].Matrix)
			}
		}

		again, err := decoded.Marshal()
		if err != nil {
			t.Fatalf("version 0x%x: second Marshal failed: %v", version, err)
		}
		if !bytes.Equal(again, data) {
			t.Errorf("version 0x%x: re-encoded file differs", version)
		}
	}
}

func TestRoundTripBigIndices(t *testing.T) {
	m := testModel(VERSION_3)
	m.Options = OPTION_BIG_INDICES
	m.Tangents = nil

	data, err := m.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := NewFromData(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded.Triangles, m.Triangles) {
		t.Errorf("triangles %v; expected %v", decoded.Triangles, m.Triangles)
	}
	if decoded.Tangents != nil {
		t.Errorf("tangents %v; expected none", decoded.Tangents)
	}
}

// nitroFile is a version 3 file with a single nitro marker and no geometry
func nitroFile(markerType uint32, extraOffset uint32, table []float32) []byte {
	w := utils.NewBufWriter()
	w.WriteLU32(MOX_MAGIC)
	w.WriteLU16(0)
	w.WriteLU16(VERSION_3)
	for _, count := range []uint32{0, 0, 0, 0, 0, 1} {
		w.WriteLU32(count)
	}
	w.WriteLU32(uint32(len(table) * 4))
	w.WriteLU32(0)
	w.WriteLU32(0)
	w.WriteLU32(0)

	w.WriteLU32(markerType)
	w.WriteLU32(extraOffset)
	w.WriteLI16(0)
	w.WriteLI16(-1)
	w.WriteLFs(1, 0, 0, 0, 1, 0, 0, 0, 1, 5, 6, 7)

	w.WriteLFs(table...)
	return w.Bytes()
}

func TestDecodeNitro(t *testing.T) {
	data := nitroFile(uint32(MarkerNitro), 0, []float32{2, 3})

	m, err := NewFromData(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Markers) != 1 {
		t.Fatalf("len(Markers)=%d; expected 1", len(m.Markers))
	}
	mr := m.Markers[0]
	if mr.PartIndex != -1 {
		t.Errorf("PartIndex=%d; expected -1", mr.PartIndex)
	}
	if expected := mgl32.Translate3D(5, 6, 7); mr.Matrix != expected {
		t.Errorf("Matrix=%v; expected %v", mr.Matrix, expected)
	}
	nitro, ok := mr.Parameters.(*NitroParameters)
	if !ok {
		t.Fatalf("Parameters=%T; expected *NitroParameters", mr.Parameters)
	}
	if nitro.SizeXY != 2 || nitro.SizeZ != 3 {
		t.Errorf("Nitro=%+v; expected {2 3}", *nitro)
	}

	again, err := m.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(again, data) {
		t.Errorf("re-encoded:\n%x\nexpected:\n%x", again, data)
	}
}

func TestDecodeUnknownMarkerType(t *testing.T) {
	data := nitroFile(99, 0, nil)
	m, err := NewFromData(data)
	if err != nil {
		t.Fatal(err)
	}
	if kind := m.Markers[0].Parameters.Kind(); kind != KindNoParameters {
		t.Errorf("Kind()=%v; expected NoParameters", kind)
	}
	again, err := m.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(again, data) {
		t.Errorf("re-encoded file differs")
	}
}

func TestDecodeErrors(t *testing.T) {
	valid := nitroFile(uint32(MarkerNitro), 0, []float32{2, 3})

	badMagic := append([]byte{}, valid...)
	badMagic[0] ^= 0xff

	badVersion := append([]byte{}, valid...)
	badVersion[6] = 0x04

	for _, test := range []struct {
		name     string
		data     []byte
		expected error
	}{
		{"bad magic", badMagic, utils.ErrBadMagic},
		{"bad version", badVersion, utils.ErrUnsupportedVersion},
		{"parameters outside of table", nitroFile(uint32(MarkerNitro), 4, []float32{2, 3}), utils.ErrIndexOutOfRange},
		{"huge offset", nitroFile(uint32(MarkerNitro), 0xfffffff0, []float32{2, 3}), utils.ErrIndexOutOfRange},
		{"empty", nil, utils.ErrUnexpectedEof},
	} {
		_, err := NewFromData(test.data)
		if errors.Cause(err) != test.expected {
			t.Errorf("%s: got error %v; expected %v", test.name, err, test.expected)
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	for _, data := range [][]byte{
		nitroFile(uint32(MarkerNitro), 0, []float32{2, 3}),
		mustMarshal(t, testModel(VERSION_2)),
		mustMarshal(t, testModel(VERSION_3)),
	} {
		for size := 0; size < len(data); size++ {
			if _, err := NewFromData(data[:size]); errors.Cause(err) != utils.ErrUnexpectedEof {
				t.Errorf("NewFromData(%d of %d bytes) error %v; expected unexpected eof", size, len(data), err)
			}
		}
	}
}

func TestRoundTripTail(t *testing.T) {
	for _, version := range []uint16{VERSION_2, VERSION_3} {
		data := append(mustMarshal(t, testModel(version)), 0xab, 0xcd, 0xef)
		m, err := NewFromData(data)
		if err != nil {
			t.Fatalf("version 0x%x: NewFromData failed: %v", version, err)
		}
		if !bytes.Equal(m.Tail, []byte{0xab, 0xcd, 0xef}) {
			t.Errorf("version 0x%x: Tail=%x; expected abcdef", version, m.Tail)
		}
		if again := mustMarshal(t, m); !bytes.Equal(again, data) {
			t.Errorf("version 0x%x: re-encoded %d bytes; expected %d", version, len(again), len(data))
		}
	}
}

func mustMarshal(t *testing.T, m *Mox) []byte {
	data, err := m.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestMarshalValidates(t *testing.T) {
	for _, test := range []struct {
		name     string
		change   func(m *Mox)
		expected error
	}{
		{"marker part", func(m *Mox) { m.Markers[0].PartIndex = 5 }, utils.ErrIndexOutOfRange},
		{"triangle vertex", func(m *Mox) { m.Triangles[0][2] = 7 }, utils.ErrIndexOutOfRange},
		{"chunk triangles", func(m *Mox) { m.Chunks[0].TriangleCount = 2 }, utils.ErrIndexOutOfRange},
		{"chunk material", func(m *Mox) { m.Chunks[0].MaterialIndex = 1 }, utils.ErrIndexOutOfRange},
		{"part chunks", func(m *Mox) { m.Parts[1].FirstChunk = 1; m.Parts[1].ChunkCount = 1 }, utils.ErrIndexOutOfRange},
		{"part link", func(m *Mox) { m.Parts[0].Child = 9 }, utils.ErrIndexOutOfRange},
		{"cycle", func(m *Mox) { m.Parts[1].Child = 0 }, utils.ErrBrokenHierarchy},
		{"version", func(m *Mox) { m.Version = 0x0101 }, utils.ErrUnsupportedVersion},
	} {
		m := testModel(VERSION_3)
		test.change(m)
		if _, err := m.Marshal(); errors.Cause(err) != test.expected {
			t.Errorf("%s: got error %v; expected %v", test.name, err, test.expected)
		}
	}
}

func TestMarshalConvertsParameters(t *testing.T) {
	m := testModel(VERSION_3)
	m.Markers[1].Type = MarkerRearAndBrakeLight

	decoded, err := NewFromData(mustMarshal(t, m))
	if err != nil {
		t.Fatal(err)
	}
	expected := &RearAndBrakeLightParameters{Color: utils.ColorFloat{1, 0, 0, 1}, SizeNormal: 1, SizeBraking: 2}
	if !reflect.DeepEqual(decoded.Markers[1].Parameters, expected) {
		t.Errorf("Parameters=%+v; expected %+v", decoded.Markers[1].Parameters, expected)
	}
}

func TestCheckConsistency(t *testing.T) {
	m := testModel(VERSION_3)
	if warns := m.CheckConsistency(); len(warns) != 0 {
		t.Errorf("CheckConsistency()=%v; expected none", warns)
	}
	m.Chunks[0].LastVertex = 1
	if warns := m.CheckConsistency(); len(warns) != 1 {
		t.Errorf("CheckConsistency()=%v; expected one warning", warns)
	}
	if _, err := m.Marshal(); err != nil {
		t.Errorf("Marshal failed on soft inconsistency: %v", err)
	}
}

func TestPartByName(t *testing.T) {
	m := testModel(VERSION_3)
	for _, test := range []struct {
		name     string
		expected int
	}{
		{"body", 0},
		{"wheel", 1},
		{"door", -1},
	} {
		if got := m.PartByName(test.name); got != test.expected {
			t.Errorf("PartByName(%q)=%d; expected %d", test.name, got, test.expected)
		}
	}
}
