package qad

import (
	"github.com/mogaika/landscape_browser/utils"
)

func writeNames(w *utils.BufWriter, names []string) {
	for _, name := range names {
		w.WriteStringBuffer(name, NAME_SIZE)
	}
}

// Marshal encodes the scenario file. Counts and sizes in the header follow
// the arrays, the other header words are written as they are.
func (q *Qad) Marshal() ([]byte, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	header := q.Header
	header[HDR_QUADS] = uint32(len(q.Quads))
	header[HDR_CHUNKS] = uint32(len(q.Chunks))
	header[HDR_TEXTURE_NAMES] = uint32(len(q.TextureNames)) | uint32(len(q.BumpTextureNames))<<16
	header[HDR_OBJECT_NAMES] = uint32(len(q.ObjectNames))
	header[HDR_MATERIALS] = uint32(len(q.Materials))
	header[HDR_COLLISION_QUADS_SIZE] = uint32(len(q.CollisionQuads))

	w := utils.NewBufWriter()
	for _, v := range header {
		w.WriteLU32(v)
	}

	writeNames(w, q.TextureNames)
	writeNames(w, q.BumpTextureNames)
	writeNames(w, q.ObjectNames)

	for i := range q.Objects {
		o := &q.Objects[i]
		w.WriteLU16(o.TypeA)
		w.WriteLU16(o.TypeB)
		w.WriteLU32(o.Weight)
		for _, v := range o.Reserved {
			w.WriteLU32(v)
		}
		w.WriteStringBuffer(o.SoundA, SOUND_NAME_SIZE)
		w.WriteStringBuffer(o.SoundB, SOUND_NAME_SIZE)
	}

	for i := range q.Quads {
		qd := &q.Quads[i]
		w.WriteLU16(qd.X)
		w.WriteLU16(qd.Y)
		w.WriteLU32(qd.FirstTriangle)
		w.WriteLU32(qd.TriangleCount)
		w.WriteLU32(qd.FirstChunk)
		w.WriteLU32(qd.ChunkCount)
		w.WriteLFs(qd.SphereCenter[0], qd.SphereCenter[1], qd.SphereCenter[2], qd.SphereRadius)
		for _, v := range []uint16{qd.FirstObject, qd.ObjectCount, qd.FirstMarker, qd.MarkerCount, qd.VertexBufferIndex, qd.Reserved} {
			w.WriteLU16(v)
		}
	}

	w.Write(q.CollisionQuads)

	for _, c := range q.Chunks {
		w.WriteLU32(c.FirstTriangle)
		w.WriteLU32(c.TriangleCount)
		w.WriteLU16(c.MaterialIndex)
		w.WriteByte(c.ViewDistLayer)
		w.WriteByte(c.Reserved)
	}

	for i := range q.Materials {
		m := &q.Materials[i]
		for _, v := range m.TextureIndices {
			w.WriteLU16(v)
		}
		for _, v := range m.BumpTextureIndices {
			w.WriteLU16(v)
		}
		w.WriteLU16(m.Type)
		w.WriteLU16(m.AnimIndex)
		w.WriteLU16(m.Reserved)
		for j := range m.TexMods {
			w.WriteLFs(m.TexMods[j][:]...)
		}
		w.WriteLU32(m.TexModCrcs[0])
		w.WriteLU32(m.TexModCrcs[1])
	}

	w.Write(q.Tail)
	return w.Bytes(), nil
}

func (g *Geo) Marshal() ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	w := utils.NewBufWriter()
	w.WriteLU32(g.Signature)
	w.WriteLU32(g.Version)
	w.WriteLU32(g.VertexFormat)
	w.WriteLU32(uint32(len(g.Buffers)))
	w.WriteLU32(uint32(len(g.Triangles)*3 + len(g.ExtraIndices)))
	for _, v := range g.Reserved {
		w.WriteLU32(v)
	}

	for i := range g.Buffers {
		w.WriteLU32(uint32(len(g.Buffers[i].Vertices)))
	}
	for i := range g.Buffers {
		for j := range g.Buffers[i].Vertices {
			v := &g.Buffers[i].Vertices[j]
			w.WriteLFs(v.Position[0], v.Position[1], v.Position[2])
			w.WriteLU32(v.Normal)
			w.WriteLFs(v.UV1[0], v.UV1[1], v.UV2[0], v.UV2[1])
			w.WriteLU32(v.Blend)
			w.WriteLU32(v.Ambient)
		}
	}

	if g.HasTangents() {
		for i := range g.Buffers {
			b := &g.Buffers[i]
			for j := range b.Vertices {
				var t GeoTangent
				if j < len(b.Tangents) {
					t = b.Tangents[j]
				}
				for _, v := range t {
					w.WriteLU16(v)
				}
			}
		}
	}

	for _, t := range g.Triangles {
		for _, vi := range t {
			w.WriteLU16(vi)
		}
	}
	for _, vi := range g.ExtraIndices {
		w.WriteLU16(vi)
	}

	w.Write(g.Tail)
	return w.Bytes(), nil
}
