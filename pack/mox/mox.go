package mox

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/pack"
	"github.com/mogaika/landscape_browser/utils"
)

const (
	MOX_MAGIC = 0x4D4F5821

	VERSION_2 = 0x0202
	VERSION_3 = 0x0203

	HEADER_SIZE       = 32
	EXTRA_HEADER_SIZE = 16
	VERTEX_SIZE       = 40
	TANGENT_SIZE      = 16
	CHUNK_SIZE        = 24
	MATERIAL_SIZE     = 336
	PART_SIZE         = 196
	MARKER_V2_SIZE    = 88
	MARKER_V3_SIZE    = 60

	PART_NAME_SIZE          = 64
	MATERIAL_RESERVED_SIZE  = MATERIAL_SIZE - 4
	GENERIC_PARAMETERS_SIZE = 16
)

// header options
const (
	OPTION_BIG_INDICES = 1 << 0
	OPTION_TANGENTS    = 1 << 1
)

// part options, a set bit disables the feature
const (
	PART_OPTION_NO_DEFORMATION = 1 << 0
	PART_OPTION_NO_DETACHMENT  = 1 << 1
	PART_OPTION_NO_ANIMATION   = 1 << 2
)

type PartType uint16

const (
	PartDisable    PartType = 0
	PartX          PartType = 1
	PartY          PartType = 2
	PartXYZ        PartType = 3
	PartExhaust    PartType = 4
	PartSuspension PartType = 5
	PartBox        PartType = 6
)

var partTypeNames = []string{"Disable", "X", "Y", "XYZ", "Exhaust", "Suspension", "Box"}

func (t PartType) String() string {
	if int(t) < len(partTypeNames) {
		return partTypeNames[t]
	}
	return "Unknown"
}

type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV1      mgl32.Vec2
	UV2      mgl32.Vec2
}

type Tangent struct {
	UV1 [4]uint16
	UV2 [4]uint16
}

type Triangle [3]uint32

type Chunk struct {
	MaterialIndex uint32
	MaterialId    uint32
	FirstTriangle uint32
	TriangleCount uint32
	FirstVertex   uint32
	LastVertex    uint32
}

// Material only carries the id used to look up the material definition,
// the rest of the record is kept as is.
type Material struct {
	Id       uint32
	Reserved []byte `json:"-"`
}

type Part struct {
	Name   string
	Matrix mgl32.Mat4

	Parent      int16
	Child       int16
	PrevInLevel int16
	NextInLevel int16

	FirstChunk uint16
	ChunkCount uint16

	Center mgl32.Vec3
	Radius float32

	W1   uint16
	W2   uint16
	W3   uint16
	Type PartType

	SwingMin mgl32.Vec3
	SwingMax mgl32.Vec3

	Options uint32
	W5      uint32
}

func (p *Part) DeformationEnabled() bool { return p.Options&PART_OPTION_NO_DEFORMATION == 0 }
func (p *Part) DetachmentEnabled() bool  { return p.Options&PART_OPTION_NO_DETACHMENT == 0 }
func (p *Part) AnimationEnabled() bool   { return p.Options&PART_OPTION_NO_ANIMATION == 0 }

type Marker struct {
	Type MarkerType
	// offset of the parameters inside of the side table, version 3 only.
	// Recomputed on encode.
	ExtraOffset uint32
	Options     int16
	PartIndex   int16
	Matrix      mgl32.Mat4
	Parameters  Parameters
}

type Mox struct {
	Options uint16
	Version uint16

	Vertices  []Vertex
	Tangents  []Tangent
	Triangles []Triangle
	Chunks    []Chunk
	Materials []Material
	Parts     []Part
	Markers   []Marker

	// opaque trailing sections of version 3
	StringSection    []byte `json:"-"`
	ReservedSection1 []byte `json:"-"`
	ReservedSection2 []byte `json:"-"`

	// bytes after the last section, kept as is
	Tail []byte `json:"-"`
}

func (m *Mox) BigIndices() bool {
	return m.Options&OPTION_BIG_INDICES != 0
}

func (m *Mox) HasTangents() bool {
	return m.Options&OPTION_TANGENTS != 0
}

func readVec3(bs *utils.BufStack) mgl32.Vec3 {
	return mgl32.Vec3{bs.ReadLF(), bs.ReadLF(), bs.ReadLF()}
}

func readMat4(bs *utils.BufStack) (m mgl32.Mat4) {
	bs.ReadLFs(m[:])
	return m
}

func readPart(bs *utils.BufStack) Part {
	var p Part
	p.Name = bs.ReadStringBuffer(PART_NAME_SIZE)
	p.Matrix = readMat4(bs)
	p.Parent = bs.ReadLI16()
	p.Child = bs.ReadLI16()
	p.PrevInLevel = bs.ReadLI16()
	p.NextInLevel = bs.ReadLI16()
	p.FirstChunk = bs.ReadLU16()
	p.ChunkCount = bs.ReadLU16()
	p.Center = readVec3(bs)
	p.Radius = bs.ReadLF()
	p.W1 = bs.ReadLU16()
	p.W2 = bs.ReadLU16()
	p.W3 = bs.ReadLU16()
	p.Type = PartType(bs.ReadLU16())
	for i := 0; i < 3; i++ {
		p.SwingMin[i] = bs.ReadLF()
		p.SwingMax[i] = bs.ReadLF()
	}
	p.Options = bs.ReadLU32()
	p.W5 = bs.ReadLU32()
	return p
}

func readMarkerV2(bs *utils.BufStack) (Marker, error) {
	var mr Marker
	mr.Type = MarkerType(bs.ReadLU32())

	generic, err := DecodeParameters(bs, KindGeneric)
	if err != nil {
		return mr, err
	}
	mr.Parameters = ConvertParameters(generic, mr.Type.Kind())

	mr.Options = bs.ReadLI16()
	mr.PartIndex = bs.ReadLI16()
	mr.Matrix = readMat4(bs)
	return mr, bs.Err()
}

func readMarkerV3(bs *utils.BufStack) Marker {
	var mr Marker
	mr.Type = MarkerType(bs.ReadLU32())
	mr.ExtraOffset = bs.ReadLU32()
	mr.Options = bs.ReadLI16()
	mr.PartIndex = bs.ReadLI16()

	var affine [12]float32
	bs.ReadLFs(affine[:])
	mr.Matrix = utils.Mat4FromAffine(affine)
	return mr
}

func NewFromData(data []byte) (*Mox, error) {
	m, _, err := decode(data)
	return m, err
}

// NewFromDataWithLayout also returns the decoded buffer tree, useful for
// looking at unknown regions of a file.
func NewFromDataWithLayout(data []byte) (*Mox, *utils.BufStack, error) {
	return decode(data)
}

func decode(data []byte) (*Mox, *utils.BufStack, error) {
	bs := utils.NewBufStack("mox", data)

	header := bs.ReadSub("header", HEADER_SIZE)
	if magic := header.ReadLU32(); header.Err() == nil && magic != MOX_MAGIC {
		return nil, bs, errors.Wrapf(utils.ErrBadMagic, "got 0x%08x", magic)
	}
	m := &Mox{
		Options: header.ReadLU16(),
		Version: header.ReadLU16(),
	}
	var counts [6]int
	for i := range counts {
		counts[i] = int(header.ReadLU32())
	}
	if err := bs.Err(); err != nil {
		return nil, bs, errors.Wrap(err, "Failed to read header")
	}
	if m.Version != VERSION_2 && m.Version != VERSION_3 {
		return nil, bs, errors.Wrapf(utils.ErrUnsupportedVersion, "version 0x%04x", m.Version)
	}
	nVertices, nTriangles, nChunks, nMaterials, nParts, nMarkers := counts[0], counts[1], counts[2], counts[3], counts[4], counts[5]

	var sectionSizes [4]int
	if m.Version == VERSION_3 {
		extra := bs.ReadSub("extra header", EXTRA_HEADER_SIZE)
		for i := range sectionSizes {
			sectionSizes[i] = int(extra.ReadLU32())
		}
		if err := bs.Err(); err != nil {
			return nil, bs, errors.Wrap(err, "Failed to read extra header")
		}
	}

	// counts are checked against the data left before allocating anything
	section := func(kind string, count, recordSize int) (*utils.BufStack, error) {
		if count < 0 || count > bs.Left()/recordSize {
			return nil, errors.Wrapf(utils.ErrUnexpectedEof, "%d %s of 0x%x bytes at 0x%x, 0x%x bytes left",
				count, kind, recordSize, bs.Pos(), bs.Left())
		}
		return bs.ReadSub(kind, count*recordSize), nil
	}

	vertices, err := section("vertices", nVertices, VERTEX_SIZE)
	if err != nil {
		return nil, bs, err
	}
	m.Vertices = make([]Vertex, nVertices)
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = readVec3(vertices)
		v.Normal = readVec3(vertices)
		v.UV1 = mgl32.Vec2{vertices.ReadLF(), vertices.ReadLF()}
		v.UV2 = mgl32.Vec2{vertices.ReadLF(), vertices.ReadLF()}
	}

	if m.HasTangents() {
		tangents, err := section("tangents", nVertices, TANGENT_SIZE)
		if err != nil {
			return nil, bs, err
		}
		m.Tangents = make([]Tangent, nVertices)
		for i := range m.Tangents {
			t := &m.Tangents[i]
			for j := range t.UV1 {
				t.UV1[j] = tangents.ReadLU16()
			}
			for j := range t.UV2 {
				t.UV2[j] = tangents.ReadLU16()
			}
		}
	}

	indexSize := 2
	if m.BigIndices() {
		indexSize = 4
	}
	triangles, err := section("triangles", nTriangles, 3*indexSize)
	if err != nil {
		return nil, bs, err
	}
	m.Triangles = make([]Triangle, nTriangles)
	for i := range m.Triangles {
		for j := 0; j < 3; j++ {
			if m.BigIndices() {
				m.Triangles[i][j] = triangles.ReadLU32()
			} else {
				m.Triangles[i][j] = uint32(triangles.ReadLU16())
			}
		}
	}

	chunks, err := section("chunks", nChunks, CHUNK_SIZE)
	if err != nil {
		return nil, bs, err
	}
	m.Chunks = make([]Chunk, nChunks)
	for i := range m.Chunks {
		m.Chunks[i] = Chunk{
			MaterialIndex: chunks.ReadLU32(),
			MaterialId:    chunks.ReadLU32(),
			FirstTriangle: chunks.ReadLU32(),
			TriangleCount: chunks.ReadLU32(),
			FirstVertex:   chunks.ReadLU32(),
			LastVertex:    chunks.ReadLU32(),
		}
	}

	materials, err := section("materials", nMaterials, MATERIAL_SIZE)
	if err != nil {
		return nil, bs, err
	}
	m.Materials = make([]Material, nMaterials)
	for i := range m.Materials {
		m.Materials[i].Id = materials.ReadLU32()
		m.Materials[i].Reserved = materials.ReadBytes(MATERIAL_RESERVED_SIZE)
	}

	parts, err := section("parts", nParts, PART_SIZE)
	if err != nil {
		return nil, bs, err
	}
	m.Parts = make([]Part, nParts)
	for i := range m.Parts {
		partBuf := parts.ReadSub("part", PART_SIZE)
		m.Parts[i] = readPart(partBuf)
		partBuf.SetName(m.Parts[i].Name)
	}
	if err := bs.Err(); err != nil {
		return nil, bs, errors.Wrap(err, "Failed to read parts")
	}

	markerSize := MARKER_V2_SIZE
	if m.Version == VERSION_3 {
		markerSize = MARKER_V3_SIZE
	}
	markers, err := section("markers", nMarkers, markerSize)
	if err != nil {
		return nil, bs, err
	}
	m.Markers = make([]Marker, nMarkers)
	for i := range m.Markers {
		if m.Version == VERSION_3 {
			m.Markers[i] = readMarkerV3(markers)
		} else if m.Markers[i], err = readMarkerV2(markers); err != nil {
			return nil, bs, errors.Wrapf(err, "marker %d", i)
		}
	}

	if m.Version == VERSION_3 {
		if err := m.decodeSideTable(bs, sectionSizes); err != nil {
			return nil, bs, err
		}
	}

	if bs.Left() != 0 {
		log.Printf("[mox] 0x%x bytes after the last section", bs.Left())
		tail := bs.ReadSub("tail", bs.Left())
		m.Tail = tail.ReadBytes(tail.Size())
	}
	if err := bs.Err(); err != nil {
		return nil, bs, err
	}

	for _, warn := range m.CheckConsistency() {
		log.Printf("[mox] Warning: %v", warn)
	}
	if err := m.Validate(); err != nil {
		return nil, bs, err
	}

	return m, bs, nil
}

func (m *Mox) decodeSideTable(bs *utils.BufStack, sectionSizes [4]int) error {
	table := bs.ReadSub("marker parameters", sectionSizes[0])
	if err := table.Err(); err != nil {
		return errors.Wrap(err, "Failed to read marker parameters table")
	}

	for i := range m.Markers {
		mr := &m.Markers[i]
		kind := mr.Type.Kind()
		if !mr.Type.Known() {
			log.Printf("[mox] Marker %d has unknown type %d, using %v", i, uint32(mr.Type), kind)
		}

		if int64(mr.ExtraOffset)+int64(kind.Size()) > int64(table.Size()) {
			return errors.Wrapf(utils.ErrIndexOutOfRange,
				"marker %d parameters [0x%x:+0x%x] outside of table of 0x%x bytes",
				i, mr.ExtraOffset, kind.Size(), table.Size())
		}

		params, err := DecodeParameters(table.SubBuf(kind.String(), int(mr.ExtraOffset)).SetSize(kind.Size()), kind)
		if err != nil {
			return errors.Wrapf(err, "marker %d", i)
		}
		mr.Parameters = params
	}

	m.StringSection = bs.ReadSub("strings", sectionSizes[1]).ReadBytes(sectionSizes[1])
	m.ReservedSection1 = bs.ReadSub("reserved 1", sectionSizes[2]).ReadBytes(sectionSizes[2])
	m.ReservedSection2 = bs.ReadSub("reserved 2", sectionSizes[3]).ReadBytes(sectionSizes[3])
	if err := bs.Err(); err != nil {
		return errors.Wrap(err, "Failed to read trailing sections")
	}
	return nil
}

// Validate checks every index of the model against the array it points into.
func (m *Mox) Validate() error {
	if m.HasTangents() && len(m.Tangents) > len(m.Vertices) {
		return errors.Wrapf(utils.ErrIndexOutOfRange, "%d tangents for %d vertices", len(m.Tangents), len(m.Vertices))
	}
	if !m.BigIndices() && len(m.Vertices) > 0x10000 {
		return errors.Wrapf(utils.ErrIndexOutOfRange, "%d vertices do not fit 16 bit indices", len(m.Vertices))
	}

	for i, t := range m.Triangles {
		for _, vi := range t {
			if err := utils.CheckIndex("vertex", int(vi), len(m.Vertices), false); err != nil {
				return errors.Wrapf(err, "triangle %d", i)
			}
		}
	}

	for i, c := range m.Chunks {
		if err := utils.CheckRange("triangles", int(c.FirstTriangle), int(c.TriangleCount), len(m.Triangles)); err != nil {
			return errors.Wrapf(err, "chunk %d", i)
		}
		if err := utils.CheckIndex("material", int(c.MaterialIndex), len(m.Materials), false); err != nil {
			return errors.Wrapf(err, "chunk %d", i)
		}
	}

	for i := range m.Parts {
		p := &m.Parts[i]
		if err := utils.CheckRange("chunks", int(p.FirstChunk), int(p.ChunkCount), len(m.Chunks)); err != nil {
			return errors.Wrapf(err, "part %d %q", i, p.Name)
		}
		for _, link := range []int16{p.Parent, p.Child, p.PrevInLevel, p.NextInLevel} {
			if err := utils.CheckIndex("part", int(link), len(m.Parts), true); err != nil {
				return errors.Wrapf(err, "part %d %q", i, p.Name)
			}
		}
	}
	if _, err := BuildHierarchy(m.Parts); err != nil {
		return err
	}

	for i, mr := range m.Markers {
		if err := utils.CheckIndex("part", int(mr.PartIndex), len(m.Parts), true); err != nil {
			return errors.Wrapf(err, "marker %d", i)
		}
	}
	return nil
}

// CheckConsistency reports soft problems that do not prevent encoding,
// triangles of a chunk referencing vertices outside of the chunk vertex range.
func (m *Mox) CheckConsistency() []error {
	var result []error
	for i, c := range m.Chunks {
		end := int(c.FirstTriangle) + int(c.TriangleCount)
		if end > len(m.Triangles) {
			continue
		}
		for ti := int(c.FirstTriangle); ti < end; ti++ {
			for _, vi := range m.Triangles[ti] {
				if vi < c.FirstVertex || vi > c.LastVertex {
					result = append(result, errors.Errorf(
						"chunk %d triangle %d vertex %d outside of [%d, %d]", i, ti, vi, c.FirstVertex, c.LastVertex))
					break
				}
			}
		}
	}
	return result
}

// PartByName returns the index of the first part with the name or -1.
func (m *Mox) PartByName(name string) int {
	for i := range m.Parts {
		if m.Parts[i].Name == name {
			return i
		}
	}
	return -1
}

func init() {
	pack.SetHandler(".MOX", func(src *pack.Source) (interface{}, error) {
		return NewFromData(src.Data)
	})
}
