package cpo

import (
	"fmt"
	"log"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/landscape_browser/utils/gltfutils"
)

var collisionColor = [4]float32{0.3, 0.9, 0.3, 0.5}

func (s *Mesh) exportMesh(gc *gltfutils.GLTFCacher, opts *gltfutils.Options, name string) *gltf.Mesh {
	doc := gc.Doc
	scale := opts.GetScale()

	positions := make([][3]float32, len(s.Vertices))
	for i, v := range s.Vertices {
		positions[i] = gltfutils.Position(v, scale)
	}

	// polygons are convex, a fan is enough
	indices := make([]uint32, 0, len(s.Polygons)*3)
	for _, p := range s.Polygons {
		for i := 1; i+1 < len(p); i++ {
			t := gltfutils.Triangle(uint32(p[0]), uint32(p[i]), uint32(p[i+1]))
			indices = append(indices, t[:]...)
		}
	}

	return &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
			Attributes: map[string]uint32{"POSITION": modeler.WritePosition(doc, positions)},
			Material:   gltf.Index(gc.Material(opts, "collision", collisionColor, "")),
		}},
	}
}

// ExportGLTF adds a node per shape and returns them as root nodes.
// Spheres and boxes carry no geometry and become empty nodes.
func (c *Cpo) ExportGLTF(gc *gltfutils.GLTFCacher, opts *gltfutils.Options) ([]uint32, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	doc := gc.Doc

	roots := make([]uint32, 0, len(c.Shapes))
	for i, s := range c.Shapes {
		name := fmt.Sprintf("collision %d %v", i, s.Type())
		node := &gltf.Node{
			Name:   name,
			Extras: map[string]interface{}{"type": s.Type().String()},
		}

		if mesh, ok := s.(*Mesh); ok {
			node.Matrix = gltfutils.Matrix(mesh.Transform(), opts.GetScale())
			if len(mesh.Polygons) != 0 {
				doc.Meshes = append(doc.Meshes, mesh.exportMesh(gc, opts, name))
				node.Mesh = gltf.Index(uint32(len(doc.Meshes) - 1))
			}
		} else {
			log.Printf("[cpo] Shape %d %v has no geometry", i, s.Type())
		}

		roots = append(roots, uint32(len(doc.Nodes)))
		doc.Nodes = append(doc.Nodes, node)
	}
	return roots, nil
}
