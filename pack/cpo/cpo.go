package cpo

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/pack"
	"github.com/mogaika/landscape_browser/utils"
)

const (
	CPO_MAGIC = 0x43504f21

	HEADER_SIZE      = 16
	SHAPE_TAG_SIZE   = 4
	MESH_HEADER_SIZE = 16
	VERTEX_SIZE      = 12
	MESH_TAIL_SIZE   = 12 + 36
)

type ShapeType uint32

const (
	SHAPE_SPHERE ShapeType = 1
	SHAPE_BOX    ShapeType = 2
	SHAPE_MESH   ShapeType = 3
)

func (t ShapeType) String() string {
	switch t {
	case SHAPE_SPHERE:
		return "Sphere"
	case SHAPE_BOX:
		return "Box"
	case SHAPE_MESH:
		return "Mesh"
	}
	return "Unknown"
}

// Shape is one of Sphere, Box or Mesh.
type Shape interface {
	Type() ShapeType
	marshal(w *utils.BufWriter)
	unmarshal(bs *utils.BufStack) error
}

// Sphere has no payload in the file
type Sphere struct{}

func (s *Sphere) Type() ShapeType                    { return SHAPE_SPHERE }
func (s *Sphere) marshal(w *utils.BufWriter)         {}
func (s *Sphere) unmarshal(bs *utils.BufStack) error { return nil }

// Box has no payload in the file
type Box struct{}

func (s *Box) Type() ShapeType                    { return SHAPE_BOX }
func (s *Box) marshal(w *utils.BufWriter)         {}
func (s *Box) unmarshal(bs *utils.BufStack) error { return nil }

// Polygon is an ordered list of vertex indices of any length.
type Polygon []uint16

type Mesh struct {
	Vertices []mgl32.Vec3
	Polygons []Polygon
	Position mgl32.Vec3
	Matrix   mgl32.Mat3
	Reserved uint32
}

func (s *Mesh) Type() ShapeType { return SHAPE_MESH }

// Transform places the mesh vertices into the world.
func (s *Mesh) Transform() mgl32.Mat4 {
	return utils.Mat3To4(s.Matrix, s.Position)
}

func (s *Mesh) unmarshal(bs *utils.BufStack) error {
	header := bs.ReadSub("mesh header", MESH_HEADER_SIZE)
	nVertices := int(header.ReadLU32())
	nPolygons := int(header.ReadLU32())
	polygonsSize := int(header.ReadLU32())
	s.Reserved = header.ReadLU32()
	if err := bs.Err(); err != nil {
		return err
	}

	if nVertices > bs.Left()/VERTEX_SIZE {
		return errors.Wrapf(utils.ErrUnexpectedEof, "%d vertices, 0x%x bytes left", nVertices, bs.Left())
	}
	vertices := bs.ReadSub("vertices", nVertices*VERTEX_SIZE)
	s.Vertices = make([]mgl32.Vec3, nVertices)
	for i := range s.Vertices {
		s.Vertices[i] = mgl32.Vec3{vertices.ReadLF(), vertices.ReadLF(), vertices.ReadLF()}
	}

	// every polygon has at least its count
	if nPolygons > bs.Left()/2 {
		return errors.Wrapf(utils.ErrUnexpectedEof, "%d polygons, 0x%x bytes left", nPolygons, bs.Left())
	}
	polygonsStart := bs.Pos()
	s.Polygons = make([]Polygon, nPolygons)
	for i := range s.Polygons {
		count := int(bs.ReadLU16())
		if bs.Err() == nil && count > bs.Left()/2 {
			return errors.Wrapf(utils.ErrUnexpectedEof, "polygon %d of %d vertices, 0x%x bytes left", i, count, bs.Left())
		}
		p := make(Polygon, count)
		for j := range p {
			p[j] = bs.ReadLU16()
		}
		s.Polygons[i] = p
	}
	if err := bs.Err(); err != nil {
		return errors.Wrap(err, "Failed to read polygons")
	}
	if size := bs.Pos() - polygonsStart; size != polygonsSize {
		log.Printf("[cpo] Polygon section is 0x%x bytes, header says 0x%x", size, polygonsSize)
	}

	tail := bs.ReadSub("placement", MESH_TAIL_SIZE)
	s.Position = mgl32.Vec3{tail.ReadLF(), tail.ReadLF(), tail.ReadLF()}
	tail.ReadLFs(s.Matrix[:])
	return bs.Err()
}

func (s *Mesh) Validate() error {
	for i, p := range s.Polygons {
		for _, vi := range p {
			if err := utils.CheckIndex("vertex", int(vi), len(s.Vertices), false); err != nil {
				return errors.Wrapf(err, "polygon %d", i)
			}
		}
	}
	return nil
}

type Cpo struct {
	Reserved1 uint32
	Reserved2 uint32
	Shapes    []Shape

	// bytes after the last shape, kept as is
	Tail []byte `json:"-"`
}

func newShape(t ShapeType) (Shape, error) {
	switch t {
	case SHAPE_SPHERE:
		return &Sphere{}, nil
	case SHAPE_BOX:
		return &Box{}, nil
	case SHAPE_MESH:
		return &Mesh{}, nil
	}
	return nil, errors.Wrapf(utils.ErrUnknownShapeType, "type %d", uint32(t))
}

func NewFromData(data []byte) (*Cpo, error) {
	c, _, err := decode(data)
	return c, err
}

func NewFromDataWithLayout(data []byte) (*Cpo, *utils.BufStack, error) {
	return decode(data)
}

func decode(data []byte) (*Cpo, *utils.BufStack, error) {
	bs := utils.NewBufStack("cpo", data)

	header := bs.ReadSub("header", HEADER_SIZE)
	magic := header.ReadLU32()
	count := int(header.ReadLU32())
	c := &Cpo{
		Reserved1: header.ReadLU32(),
		Reserved2: header.ReadLU32(),
	}
	if err := bs.Err(); err != nil {
		return nil, bs, errors.Wrap(err, "Failed to read header")
	}
	if magic != CPO_MAGIC {
		return nil, bs, errors.Wrapf(utils.ErrBadMagic, "got 0x%08x", magic)
	}
	if count > bs.Left()/SHAPE_TAG_SIZE {
		return nil, bs, errors.Wrapf(utils.ErrUnexpectedEof, "%d shapes, 0x%x bytes left", count, bs.Left())
	}

	c.Shapes = make([]Shape, count)
	for i := range c.Shapes {
		shapeBuf := bs.SubBuf("shape", bs.Pos())
		t := ShapeType(shapeBuf.ReadLU32())
		if err := shapeBuf.Err(); err != nil {
			return nil, bs, errors.Wrapf(err, "shape %d", i)
		}
		shape, err := newShape(t)
		if err != nil {
			return nil, bs, errors.Wrapf(err, "shape %d", i)
		}
		if err := shape.unmarshal(shapeBuf); err != nil {
			return nil, bs, errors.Wrapf(err, "shape %d %v", i, t)
		}
		shapeBuf.SetName(t.String()).SetSize(shapeBuf.Pos())
		bs.Skip(shapeBuf.Pos())
		c.Shapes[i] = shape
	}
	if err := bs.Err(); err != nil {
		return nil, bs, err
	}
	if bs.Left() != 0 {
		log.Printf("[cpo] 0x%x bytes after the last shape", bs.Left())
		tail := bs.ReadSub("tail", bs.Left())
		c.Tail = tail.ReadBytes(tail.Size())
	}

	if err := c.Validate(); err != nil {
		return nil, bs, err
	}
	return c, bs, nil
}

func (c *Cpo) Validate() error {
	for i, s := range c.Shapes {
		if s == nil {
			return errors.Wrapf(utils.ErrUnknownShapeType, "shape %d is nil", i)
		}
		if mesh, ok := s.(*Mesh); ok {
			if err := mesh.Validate(); err != nil {
				return errors.Wrapf(err, "shape %d", i)
			}
		}
	}
	return nil
}

// Meshes returns shapes that carry geometry.
func (c *Cpo) Meshes() []*Mesh {
	meshes := make([]*Mesh, 0, len(c.Shapes))
	for _, s := range c.Shapes {
		if mesh, ok := s.(*Mesh); ok {
			meshes = append(meshes, mesh)
		}
	}
	return meshes
}

func init() {
	pack.SetHandler(".CPO", func(src *pack.Source) (interface{}, error) {
		return NewFromData(src.Data)
	})
}
