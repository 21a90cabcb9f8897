package qad

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/utils"
)

const (
	HEADER_WORDS     = 32
	HEADER_SIZE      = HEADER_WORDS * 4
	NAME_SIZE        = 32
	SOUND_NAME_SIZE  = 48
	OBJECT_INFO_SIZE = 116
	QUAD_SIZE        = 48
	CHUNK_SIZE       = 12
	MATERIAL_SIZE    = 60

	// texture index of a material slot without texture
	NO_TEXTURE = 0xFFFF
)

// header word positions
const (
	HDR_SIGNATURE               = 0
	HDR_VERSION                 = 1
	HDR_QUADS_X                 = 4
	HDR_QUADS_Y                 = 5
	HDR_QUADS                   = 6
	HDR_CHUNKS                  = 7
	HDR_TEXTURE_NAMES           = 8
	HDR_OBJECT_NAMES            = 9
	HDR_POLYGONS                = 10
	HDR_MATERIALS               = 11
	HDR_PLACED_OBJECTS          = 12
	HDR_TEXTURE_PROPERTY_GROUPS = 13
	HDR_COLLISION_QUADS_SIZE    = 14
	HDR_MARKER_VERSION_COUNT    = 15
	HDR_MARKER_EXTRA_DATA_SIZE  = 20
)

type ObjectInfo struct {
	TypeA    uint16
	TypeB    uint16
	Weight   uint32
	Reserved [3]uint32
	SoundA   string
	SoundB   string
}

type Quad struct {
	X, Y uint16

	FirstTriangle uint32
	TriangleCount uint32
	FirstChunk    uint32
	ChunkCount    uint32

	SphereCenter mgl32.Vec3
	SphereRadius float32

	FirstObject       uint16
	ObjectCount       uint16
	FirstMarker       uint16
	MarkerCount       uint16
	VertexBufferIndex uint16
	Reserved          uint16
}

type Chunk struct {
	FirstTriangle uint32
	TriangleCount uint32
	MaterialIndex uint16
	ViewDistLayer uint8
	Reserved      uint8
}

type Material struct {
	TextureIndices     [4]uint16
	BumpTextureIndices [3]uint16
	Type               uint16
	AnimIndex          uint16
	Reserved           uint16
	TexMods            [2][4]float32
	TexModCrcs         [2]uint32
}

type Qad struct {
	// raw header words, counts and sizes are recomputed on encode
	Header [HEADER_WORDS]uint32 `json:"-"`

	TextureNames     []string
	BumpTextureNames []string
	ObjectNames      []string
	Objects          []ObjectInfo
	Quads            []Quad
	CollisionQuads   []byte `json:"-"`
	Chunks           []Chunk
	Materials        []Material

	// everything after the materials, kept as is
	Tail []byte `json:"-"`
}

func (q *Qad) Version() uint32 { return q.Header[HDR_VERSION] }

func (q *Qad) GridSize() (uint32, uint32) {
	return q.Header[HDR_QUADS_X], q.Header[HDR_QUADS_Y]
}

// TextureName of the slot of a material, empty for NO_TEXTURE.
func (q *Qad) TextureName(m *Material, slot int) string {
	if i := m.TextureIndices[slot]; i != NO_TEXTURE && int(i) < len(q.TextureNames) {
		return q.TextureNames[i]
	}
	return ""
}

func readNames(bs *utils.BufStack, kind string, count uint32) ([]string, error) {
	if int64(count) > int64(bs.Left()/NAME_SIZE) {
		return nil, errors.Wrapf(utils.ErrUnexpectedEof, "%d %s, 0x%x bytes left", count, kind, bs.Left())
	}
	names := bs.ReadSub(kind, int(count)*NAME_SIZE)
	result := make([]string, count)
	for i := range result {
		result[i] = names.ReadStringBuffer(NAME_SIZE)
	}
	return result, names.Err()
}

func NewQadFromData(data []byte) (*Qad, error) {
	q, _, err := decodeQad(data)
	return q, err
}

func NewQadFromDataWithLayout(data []byte) (*Qad, *utils.BufStack, error) {
	return decodeQad(data)
}

func decodeQad(data []byte) (*Qad, *utils.BufStack, error) {
	bs := utils.NewBufStack("qad", data)
	q := &Qad{}

	header := bs.ReadSub("header", HEADER_SIZE)
	for i := range q.Header {
		q.Header[i] = header.ReadLU32()
	}
	if err := bs.Err(); err != nil {
		return nil, bs, errors.Wrap(err, "Failed to read header")
	}

	section := func(kind string, count uint32, recordSize int) (*utils.BufStack, error) {
		if int64(count) > int64(bs.Left()/recordSize) {
			return nil, errors.Wrapf(utils.ErrUnexpectedEof, "%d %s of 0x%x bytes at 0x%x, 0x%x bytes left",
				count, kind, recordSize, bs.Pos(), bs.Left())
		}
		return bs.ReadSub(kind, int(count)*recordSize), nil
	}

	var err error
	textures := q.Header[HDR_TEXTURE_NAMES]
	if q.TextureNames, err = readNames(bs, "texture names", textures&0xffff); err != nil {
		return nil, bs, err
	}
	if q.BumpTextureNames, err = readNames(bs, "bump texture names", textures>>16); err != nil {
		return nil, bs, err
	}
	nObjects := q.Header[HDR_OBJECT_NAMES]
	if q.ObjectNames, err = readNames(bs, "object names", nObjects); err != nil {
		return nil, bs, err
	}

	objects, err := section("objects", nObjects, OBJECT_INFO_SIZE)
	if err != nil {
		return nil, bs, err
	}
	q.Objects = make([]ObjectInfo, nObjects)
	for i := range q.Objects {
		o := &q.Objects[i]
		o.TypeA = objects.ReadLU16()
		o.TypeB = objects.ReadLU16()
		o.Weight = objects.ReadLU32()
		for j := range o.Reserved {
			o.Reserved[j] = objects.ReadLU32()
		}
		o.SoundA = objects.ReadStringBuffer(SOUND_NAME_SIZE)
		o.SoundB = objects.ReadStringBuffer(SOUND_NAME_SIZE)
	}

	quads, err := section("quads", q.Header[HDR_QUADS], QUAD_SIZE)
	if err != nil {
		return nil, bs, err
	}
	q.Quads = make([]Quad, q.Header[HDR_QUADS])
	for i := range q.Quads {
		qd := &q.Quads[i]
		qd.X = quads.ReadLU16()
		qd.Y = quads.ReadLU16()
		qd.FirstTriangle = quads.ReadLU32()
		qd.TriangleCount = quads.ReadLU32()
		qd.FirstChunk = quads.ReadLU32()
		qd.ChunkCount = quads.ReadLU32()
		qd.SphereCenter = mgl32.Vec3{quads.ReadLF(), quads.ReadLF(), quads.ReadLF()}
		qd.SphereRadius = quads.ReadLF()
		qd.FirstObject = quads.ReadLU16()
		qd.ObjectCount = quads.ReadLU16()
		qd.FirstMarker = quads.ReadLU16()
		qd.MarkerCount = quads.ReadLU16()
		qd.VertexBufferIndex = quads.ReadLU16()
		qd.Reserved = quads.ReadLU16()
	}

	collision, err := section("collision quads", q.Header[HDR_COLLISION_QUADS_SIZE], 1)
	if err != nil {
		return nil, bs, err
	}
	q.CollisionQuads = collision.ReadBytes(collision.Size())

	chunks, err := section("chunks", q.Header[HDR_CHUNKS], CHUNK_SIZE)
	if err != nil {
		return nil, bs, err
	}
	q.Chunks = make([]Chunk, q.Header[HDR_CHUNKS])
	for i := range q.Chunks {
		q.Chunks[i] = Chunk{
			FirstTriangle: chunks.ReadLU32(),
			TriangleCount: chunks.ReadLU32(),
			MaterialIndex: chunks.ReadLU16(),
			ViewDistLayer: chunks.ReadU8(),
			Reserved:      chunks.ReadU8(),
		}
	}

	materials, err := section("materials", q.Header[HDR_MATERIALS], MATERIAL_SIZE)
	if err != nil {
		return nil, bs, err
	}
	q.Materials = make([]Material, q.Header[HDR_MATERIALS])
	for i := range q.Materials {
		m := &q.Materials[i]
		for j := range m.TextureIndices {
			m.TextureIndices[j] = materials.ReadLU16()
		}
		for j := range m.BumpTextureIndices {
			m.BumpTextureIndices[j] = materials.ReadLU16()
		}
		m.Type = materials.ReadLU16()
		m.AnimIndex = materials.ReadLU16()
		m.Reserved = materials.ReadLU16()
		for j := range m.TexMods {
			materials.ReadLFs(m.TexMods[j][:])
		}
		m.TexModCrcs[0] = materials.ReadLU32()
		m.TexModCrcs[1] = materials.ReadLU32()
	}

	tail := bs.ReadSub("tail", bs.Left())
	q.Tail = tail.ReadBytes(tail.Size())
	if err := bs.Err(); err != nil {
		return nil, bs, err
	}

	if err := q.Validate(); err != nil {
		return nil, bs, err
	}
	return q, bs, nil
}

// Validate checks the references inside of the scenario file.
func (q *Qad) Validate() error {
	if len(q.TextureNames) > 0xffff || len(q.BumpTextureNames) > 0xffff {
		return errors.Wrapf(utils.ErrIndexOutOfRange, "%d texture names and %d bump texture names do not fit 16 bits",
			len(q.TextureNames), len(q.BumpTextureNames))
	}
	if len(q.Objects) != len(q.ObjectNames) {
		return errors.Wrapf(utils.ErrIndexOutOfRange, "%d objects for %d object names", len(q.Objects), len(q.ObjectNames))
	}
	for i := range q.Quads {
		qd := &q.Quads[i]
		if err := utils.CheckRange("chunks", int(qd.FirstChunk), int(qd.ChunkCount), len(q.Chunks)); err != nil {
			return errors.Wrapf(err, "quad %d", i)
		}
	}
	for i := range q.Chunks {
		if err := utils.CheckIndex("material", int(q.Chunks[i].MaterialIndex), len(q.Materials), false); err != nil {
			return errors.Wrapf(err, "chunk %d", i)
		}
	}
	for i := range q.Materials {
		m := &q.Materials[i]
		for _, ti := range m.TextureIndices {
			if ti != NO_TEXTURE {
				if err := utils.CheckIndex("texture", int(ti), len(q.TextureNames), false); err != nil {
					return errors.Wrapf(err, "material %d", i)
				}
			}
		}
		for _, ti := range m.BumpTextureIndices {
			if ti != NO_TEXTURE {
				if err := utils.CheckIndex("bump texture", int(ti), len(q.BumpTextureNames), false); err != nil {
					return errors.Wrapf(err, "material %d", i)
				}
			}
		}
	}
	return nil
}
