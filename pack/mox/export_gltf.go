package mox

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/landscape_browser/pack/mtl"
	"github.com/mogaika/landscape_browser/utils"
	"github.com/mogaika/landscape_browser/utils/gltfutils"
)

type GLTFOptions struct {
	gltfutils.Options
	// Materials resolves material ids to texture names, optional
	Materials *mtl.Library
}

func (m *Mox) exportMaterial(gc *gltfutils.GLTFCacher, opts *GLTFOptions, index uint32) uint32 {
	id := m.Materials[index].Id
	name := fmt.Sprintf("%d %04x", index, id)

	color := [4]float32{1, 1, 1, 1}
	texture := ""
	if def, ok := opts.Materials.Lookup(id); ok {
		if len(def.Diffuse) != 0 {
			color = [4]float32(utils.NewColorFloatFromARGB(def.Diffuse[0]))
		}
		texture = def.Tex1Name
	}
	return gc.Material(&opts.Options, name, color, texture)
}

// exportChunk writes one primitive with the triangles of the chunk,
// vertices are remapped to the ones used by the chunk.
func (m *Mox) exportChunk(gc *gltfutils.GLTFCacher, opts *GLTFOptions, c *Chunk) *gltf.Primitive {
	doc := gc.Doc
	scale := opts.GetScale()

	remap := make(map[uint32]uint32)
	var positions, normals [][3]float32
	var uv1, uv2 [][2]float32
	indices := make([]uint32, 0, c.TriangleCount*3)

	for ti := c.FirstTriangle; ti < c.FirstTriangle+c.TriangleCount; ti++ {
		t := m.Triangles[ti]
		for _, vi := range gltfutils.Triangle(t[0], t[1], t[2]) {
			local, ok := remap[vi]
			if !ok {
				v := &m.Vertices[vi]
				local = uint32(len(positions))
				remap[vi] = local
				positions = append(positions, gltfutils.Position(v.Position, scale))
				normals = append(normals, gltfutils.Normal(v.Normal))
				uv1 = append(uv1, [2]float32{v.UV1[0], v.UV1[1]})
				uv2 = append(uv2, [2]float32{v.UV2[0], v.UV2[1]})
			}
			indices = append(indices, local)
		}
	}

	return &gltf.Primitive{
		Indices: gltf.Index(modeler.WriteIndices(doc, indices)),
		Attributes: map[string]uint32{
			"POSITION":   modeler.WritePosition(doc, positions),
			"NORMAL":     modeler.WriteNormal(doc, normals),
			"TEXCOORD_0": modeler.WriteTextureCoord(doc, uv1),
			"TEXCOORD_1": modeler.WriteTextureCoord(doc, uv2),
		},
		Material: gltf.Index(m.exportMaterial(gc, opts, c.MaterialIndex)),
	}
}

// ExportGLTF adds a node per part following the part hierarchy, and an
// empty node per marker with its parameters in extras. Returns root nodes.
func (m *Mox) ExportGLTF(gc *gltfutils.GLTFCacher, opts *GLTFOptions) ([]uint32, error) {
	if opts == nil {
		opts = &GLTFOptions{}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	h, err := BuildHierarchy(m.Parts)
	if err != nil {
		return nil, err
	}

	doc := gc.Doc
	scale := opts.GetScale()

	partNames := make([]string, len(m.Parts))
	for i := range m.Parts {
		partNames[i] = m.Parts[i].Name
	}
	names := utils.NewNodeNames(partNames...)

	partNodes := make([]uint32, len(m.Parts))
	for i := range m.Parts {
		p := &m.Parts[i]
		name := names.Name(p.Name)

		node := &gltf.Node{
			Name:   name,
			Matrix: gltfutils.Matrix(p.Matrix, scale),
			Extras: map[string]interface{}{
				"type":    p.Type.String(),
				"options": p.Options,
			},
		}

		var primitives []*gltf.Primitive
		for ci := int(p.FirstChunk); ci < int(p.FirstChunk)+int(p.ChunkCount); ci++ {
			if c := &m.Chunks[ci]; c.TriangleCount != 0 {
				primitives = append(primitives, m.exportChunk(gc, opts, c))
			}
		}
		if len(primitives) != 0 {
			doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: name, Primitives: primitives})
			node.Mesh = gltf.Index(uint32(len(doc.Meshes) - 1))
		}

		partNodes[i] = uint32(len(doc.Nodes))
		doc.Nodes = append(doc.Nodes, node)
	}

	for i, n := range h.Nodes {
		for _, child := range n.Children {
			doc.Nodes[partNodes[i]].Children = append(doc.Nodes[partNodes[i]].Children, partNodes[child])
		}
	}

	roots := make([]uint32, 0, len(h.Roots))
	for _, r := range h.Roots {
		roots = append(roots, partNodes[r])
	}

	for i := range m.Markers {
		mr := &m.Markers[i]
		params := mr.markerParameters()

		nodeIndex := uint32(len(doc.Nodes))
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:   fmt.Sprintf("marker %d %v", i, mr.Type),
			Matrix: gltfutils.Matrix(mr.Matrix, scale),
			Extras: map[string]interface{}{
				"type":       mr.Type.String(),
				"options":    mr.Options,
				"kind":       params.Kind().String(),
				"parameters": params,
			},
		})

		if mr.PartIndex >= 0 {
			parent := doc.Nodes[partNodes[mr.PartIndex]]
			parent.Children = append(parent.Children, nodeIndex)
		} else {
			roots = append(roots, nodeIndex)
		}
	}

	return roots, nil
}
