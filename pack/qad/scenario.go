package qad

import (
	"log"

	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/pack"
	"github.com/mogaika/landscape_browser/utils"
)

// Scenario is a scenario file with the geometry file of the same name.
type Scenario struct {
	Qad *Qad
	Geo *Geo
}

func DecodeScenario(qadData, geoData []byte) (*Scenario, error) {
	q, err := NewQadFromData(qadData)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to decode qad")
	}
	g, err := NewGeoFromData(geoData)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to decode geo")
	}
	s := &Scenario{Qad: q, Geo: g}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the references from the scenario file into the
// geometry file. Triangle ranges of chunks index the global triangle
// array, vertex indices are local to the buffer of the quad.
func (s *Scenario) Validate() error {
	if err := s.Qad.Validate(); err != nil {
		return err
	}
	if err := s.Geo.Validate(); err != nil {
		return err
	}

	for qi := range s.Qad.Quads {
		qd := &s.Qad.Quads[qi]
		if err := utils.CheckIndex("vertex buffer", int(qd.VertexBufferIndex), len(s.Geo.Buffers), false); err != nil {
			return errors.Wrapf(err, "quad %d", qi)
		}
		if err := utils.CheckRange("triangles", int(qd.FirstTriangle), int(qd.TriangleCount), len(s.Geo.Triangles)); err != nil {
			return errors.Wrapf(err, "quad %d", qi)
		}
		nVertices := len(s.Geo.Buffers[qd.VertexBufferIndex].Vertices)

		for ci := qd.FirstChunk; ci < qd.FirstChunk+qd.ChunkCount; ci++ {
			c := &s.Qad.Chunks[ci]
			if err := utils.CheckRange("triangles", int(c.FirstTriangle), int(c.TriangleCount), len(s.Geo.Triangles)); err != nil {
				return errors.Wrapf(err, "quad %d chunk %d", qi, ci)
			}
			for ti := c.FirstTriangle; ti < c.FirstTriangle+c.TriangleCount; ti++ {
				for _, vi := range s.Geo.Triangles[ti] {
					if err := utils.CheckIndex("vertex", int(vi), nVertices, false); err != nil {
						return errors.Wrapf(err, "quad %d chunk %d triangle %d", qi, ci, ti)
					}
				}
			}
		}
	}
	return nil
}

// ChunkTriangles returns the triangles of a chunk of a quad together with
// the vertex buffer their indices point into.
func (s *Scenario) ChunkTriangles(quad, chunk int) ([]GeoTriangle, *VertexBuffer, error) {
	if err := utils.CheckIndex("quad", quad, len(s.Qad.Quads), false); err != nil {
		return nil, nil, err
	}
	qd := &s.Qad.Quads[quad]
	if err := utils.CheckIndex("chunk", chunk, int(qd.ChunkCount), false); err != nil {
		return nil, nil, errors.Wrapf(err, "quad %d", quad)
	}
	c := &s.Qad.Chunks[int(qd.FirstChunk)+chunk]
	return s.Geo.Triangles[c.FirstTriangle : c.FirstTriangle+c.TriangleCount], &s.Geo.Buffers[qd.VertexBufferIndex], nil
}

func (s *Scenario) Marshal() ([]byte, []byte, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	qadData, err := s.Qad.Marshal()
	if err != nil {
		return nil, nil, err
	}
	geoData, err := s.Geo.Marshal()
	if err != nil {
		return nil, nil, err
	}
	return qadData, geoData, nil
}

func init() {
	pack.SetHandler(".QAD", func(src *pack.Source) (interface{}, error) {
		geoData, err := src.Sibling(".geo")
		if err != nil {
			log.Printf("[qad] No geometry for %q: %v", src.Name, err)
			return NewQadFromData(src.Data)
		}
		return DecodeScenario(src.Data, geoData)
	})
	pack.SetHandler(".GEO", func(src *pack.Source) (interface{}, error) {
		return NewGeoFromData(src.Data)
	})
}
