package qad

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/utils"
)

const (
	GEO_HEADER_SIZE  = 32
	GEO_VERTEX_SIZE  = 40
	GEO_TANGENT_SIZE = 16
	GEO_INDEX_SIZE   = 2

	// vertex formats above this one carry tangents
	GEO_FORMAT_NO_TANGENTS = 2
)

type GeoVertex struct {
	Position mgl32.Vec3
	// packed 0x00XXYYZZ
	Normal  uint32
	UV1     mgl32.Vec2
	UV2     mgl32.Vec2
	Blend   uint32
	Ambient uint32
}

// UnpackedNormal maps the packed bytes to [-1, 1].
func (v *GeoVertex) UnpackedNormal() mgl32.Vec3 {
	unpack := func(b uint32) float32 {
		return float32(b&0xff)/127.5 - 1
	}
	return mgl32.Vec3{unpack(v.Normal >> 16), unpack(v.Normal >> 8), unpack(v.Normal)}
}

func (v *GeoVertex) BlendColor() utils.ColorFloat {
	return utils.NewColorFloatFromARGB(v.Blend)
}

func (v *GeoVertex) AmbientColor() utils.ColorFloat {
	return utils.NewColorFloatFromARGB(v.Ambient)
}

type GeoTangent [8]uint16

type VertexBuffer struct {
	Vertices []GeoVertex
	// present only for vertex formats with tangents
	Tangents []GeoTangent `json:",omitempty"`
}

type GeoTriangle [3]uint16

type Geo struct {
	Signature    uint32
	Version      uint32
	VertexFormat uint32
	Reserved     [3]uint32

	Buffers   []VertexBuffer
	Triangles []GeoTriangle
	// indices left over when the index count is not a multiple of 3
	ExtraIndices []uint16 `json:",omitempty"`

	Tail []byte `json:"-"`
}

func (g *Geo) HasTangents() bool {
	return g.VertexFormat > GEO_FORMAT_NO_TANGENTS
}

func NewGeoFromData(data []byte) (*Geo, error) {
	g, _, err := decodeGeo(data)
	return g, err
}

func NewGeoFromDataWithLayout(data []byte) (*Geo, *utils.BufStack, error) {
	return decodeGeo(data)
}

func decodeGeo(data []byte) (*Geo, *utils.BufStack, error) {
	bs := utils.NewBufStack("geo", data)

	header := bs.ReadSub("header", GEO_HEADER_SIZE)
	g := &Geo{
		Signature:    header.ReadLU32(),
		Version:      header.ReadLU32(),
		VertexFormat: header.ReadLU32(),
	}
	nBuffers := header.ReadLU32()
	nIndices := header.ReadLU32()
	for i := range g.Reserved {
		g.Reserved[i] = header.ReadLU32()
	}
	if err := bs.Err(); err != nil {
		return nil, bs, errors.Wrap(err, "Failed to read header")
	}

	if int64(nBuffers) > int64(bs.Left()/4) {
		return nil, bs, errors.Wrapf(utils.ErrUnexpectedEof, "%d buffers, 0x%x bytes left", nBuffers, bs.Left())
	}
	counts := bs.ReadSub("buffer sizes", int(nBuffers)*4)
	g.Buffers = make([]VertexBuffer, nBuffers)
	vertexSize := GEO_VERTEX_SIZE
	if g.HasTangents() {
		vertexSize += GEO_TANGENT_SIZE
	}
	total := int64(0)
	sizes := make([]int, nBuffers)
	for i := range sizes {
		sizes[i] = int(counts.ReadLU32())
		total += int64(sizes[i])
	}
	if total > int64(bs.Left()/vertexSize) {
		return nil, bs, errors.Wrapf(utils.ErrUnexpectedEof, "%d vertices, 0x%x bytes left", total, bs.Left())
	}

	for i := range g.Buffers {
		vertices := bs.ReadSub("vertex buffer", sizes[i]*GEO_VERTEX_SIZE)
		b := &g.Buffers[i]
		b.Vertices = make([]GeoVertex, sizes[i])
		for j := range b.Vertices {
			v := &b.Vertices[j]
			v.Position = mgl32.Vec3{vertices.ReadLF(), vertices.ReadLF(), vertices.ReadLF()}
			v.Normal = vertices.ReadLU32()
			v.UV1 = mgl32.Vec2{vertices.ReadLF(), vertices.ReadLF()}
			v.UV2 = mgl32.Vec2{vertices.ReadLF(), vertices.ReadLF()}
			v.Blend = vertices.ReadLU32()
			v.Ambient = vertices.ReadLU32()
		}
	}

	if g.HasTangents() {
		for i := range g.Buffers {
			tangents := bs.ReadSub("tangents", sizes[i]*GEO_TANGENT_SIZE)
			b := &g.Buffers[i]
			b.Tangents = make([]GeoTangent, sizes[i])
			for j := range b.Tangents {
				for k := range b.Tangents[j] {
					b.Tangents[j][k] = tangents.ReadLU16()
				}
			}
		}
	}

	if int64(nIndices) > int64(bs.Left()/GEO_INDEX_SIZE) {
		return nil, bs, errors.Wrapf(utils.ErrUnexpectedEof, "%d indices, 0x%x bytes left", nIndices, bs.Left())
	}
	if nIndices%3 != 0 {
		log.Printf("[qad] Geo index count %d is not a multiple of 3", nIndices)
	}
	indices := bs.ReadSub("triangles", int(nIndices)*GEO_INDEX_SIZE)
	g.Triangles = make([]GeoTriangle, nIndices/3)
	for i := range g.Triangles {
		for j := range g.Triangles[i] {
			g.Triangles[i][j] = indices.ReadLU16()
		}
	}
	if extra := nIndices % 3; extra != 0 {
		g.ExtraIndices = make([]uint16, extra)
		for i := range g.ExtraIndices {
			g.ExtraIndices[i] = indices.ReadLU16()
		}
	}

	tail := bs.ReadSub("tail", bs.Left())
	g.Tail = tail.ReadBytes(tail.Size())
	if err := bs.Err(); err != nil {
		return nil, bs, err
	}
	if err := g.Validate(); err != nil {
		return nil, bs, err
	}
	return g, bs, nil
}

func (g *Geo) Validate() error {
	for i := range g.Buffers {
		b := &g.Buffers[i]
		if g.HasTangents() && len(b.Tangents) > len(b.Vertices) {
			return errors.Wrapf(utils.ErrIndexOutOfRange, "buffer %d: %d tangents for %d vertices", i, len(b.Tangents), len(b.Vertices))
		}
		if len(b.Vertices) > 0x10000 {
			return errors.Wrapf(utils.ErrIndexOutOfRange, "buffer %d: %d vertices do not fit 16 bit indices", i, len(b.Vertices))
		}
	}
	return nil
}
