package qad

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/landscape_browser/utils/gltfutils"
)

const TEXTURE_EXT = ".tga"

func (s *Scenario) exportMaterial(gc *gltfutils.GLTFCacher, opts *gltfutils.Options, index uint16) uint32 {
	m := &s.Qad.Materials[index]
	texture := s.Qad.TextureName(m, 0)
	if texture != "" {
		texture += TEXTURE_EXT
	}
	return gc.Material(opts, fmt.Sprintf("material %d type %d", index, m.Type), [4]float32{1, 1, 1, 1}, texture)
}

func (s *Scenario) exportQuad(gc *gltfutils.GLTFCacher, opts *gltfutils.Options, qi int) (*gltf.Mesh, error) {
	doc := gc.Doc
	scale := opts.GetScale()
	qd := &s.Qad.Quads[qi]

	mesh := &gltf.Mesh{Name: fmt.Sprintf("quad %d %d", qd.X, qd.Y)}
	for ci := 0; ci < int(qd.ChunkCount); ci++ {
		triangles, buffer, err := s.ChunkTriangles(qi, ci)
		if err != nil {
			return nil, err
		}
		if len(triangles) == 0 {
			continue
		}

		remap := make(map[uint16]uint32)
		var positions, normals [][3]float32
		var uv1, uv2 [][2]float32
		var colors [][4]uint8
		indices := make([]uint32, 0, len(triangles)*3)

		for _, t := range triangles {
			for _, vi := range gltfutils.Triangle(uint32(t[0]), uint32(t[1]), uint32(t[2])) {
				local, ok := remap[uint16(vi)]
				if !ok {
					v := &buffer.Vertices[vi]
					local = uint32(len(positions))
					remap[uint16(vi)] = local
					positions = append(positions, gltfutils.Position(v.Position, scale))
					normals = append(normals, gltfutils.Normal(v.UnpackedNormal().Normalize()))
					uv1 = append(uv1, [2]float32{v.UV1[0], v.UV1[1]})
					uv2 = append(uv2, [2]float32{v.UV2[0], v.UV2[1]})
					colors = append(colors, v.BlendColor().Bytes())
				}
				indices = append(indices, local)
			}
		}

		chunk := &s.Qad.Chunks[int(qd.FirstChunk)+ci]
		mesh.Primitives = append(mesh.Primitives, &gltf.Primitive{
			Indices: gltf.Index(modeler.WriteIndices(doc, indices)),
			Attributes: map[string]uint32{
				"POSITION":   modeler.WritePosition(doc, positions),
				"NORMAL":     modeler.WriteNormal(doc, normals),
				"TEXCOORD_0": modeler.WriteTextureCoord(doc, uv1),
				"TEXCOORD_1": modeler.WriteTextureCoord(doc, uv2),
				"COLOR_0":    modeler.WriteColor(doc, colors),
			},
			Material: gltf.Index(s.exportMaterial(gc, opts, chunk.MaterialIndex)),
		})
	}
	return mesh, nil
}

// ExportGLTF adds a node per quad, chunks become primitives with the
// blend color as vertex color. Returns the root node.
func (s *Scenario) ExportGLTF(gc *gltfutils.GLTFCacher, opts *gltfutils.Options) ([]uint32, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	doc := gc.Doc

	root := &gltf.Node{Name: "scenario"}
	for qi := range s.Qad.Quads {
		mesh, err := s.exportQuad(gc, opts, qi)
		if err != nil {
			return nil, err
		}
		qd := &s.Qad.Quads[qi]
		node := &gltf.Node{
			Name: mesh.Name,
			Extras: map[string]interface{}{
				"vertex_buffer": qd.VertexBufferIndex,
				"sphere_radius": qd.SphereRadius,
			},
		}
		if len(mesh.Primitives) != 0 {
			doc.Meshes = append(doc.Meshes, mesh)
			node.Mesh = gltf.Index(uint32(len(doc.Meshes) - 1))
		}
		root.Children = append(root.Children, uint32(len(doc.Nodes)))
		doc.Nodes = append(doc.Nodes, node)
	}

	doc.Nodes = append(doc.Nodes, root)
	return []uint32{uint32(len(doc.Nodes) - 1)}, nil
}
