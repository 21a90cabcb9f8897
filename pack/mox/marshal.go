package mox

import (
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/utils"
)

func writeVec3(w *utils.BufWriter, v mgl32.Vec3) {
	w.WriteLFs(v[0], v[1], v[2])
}

func writePart(w *utils.BufWriter, p *Part) {
	w.WriteStringBuffer(p.Name, PART_NAME_SIZE)
	w.WriteLFs(p.Matrix[:]...)
	w.WriteLI16(p.Parent)
	w.WriteLI16(p.Child)
	w.WriteLI16(p.PrevInLevel)
	w.WriteLI16(p.NextInLevel)
	w.WriteLU16(p.FirstChunk)
	w.WriteLU16(p.ChunkCount)
	writeVec3(w, p.Center)
	w.WriteLF(p.Radius)
	w.WriteLU16(p.W1)
	w.WriteLU16(p.W2)
	w.WriteLU16(p.W3)
	w.WriteLU16(uint16(p.Type))
	for i := 0; i < 3; i++ {
		w.WriteLF(p.SwingMin[i])
		w.WriteLF(p.SwingMax[i])
	}
	w.WriteLU32(p.Options)
	w.WriteLU32(p.W5)
}

// markerParameters returns parameters matching the marker type,
// converting through the generic record when the kind was changed.
func (mr *Marker) markerParameters() Parameters {
	return ConvertParameters(mr.Parameters, mr.Type.Kind())
}

// Marshal encodes the model. The model is validated first and never modified.
func (m *Mox) Marshal() ([]byte, error) {
	if m.Version != VERSION_2 && m.Version != VERSION_3 {
		return nil, errors.Wrapf(utils.ErrUnsupportedVersion, "version 0x%04x", m.Version)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	w := utils.NewBufWriter()

	w.WriteLU32(MOX_MAGIC)
	w.WriteLU16(m.Options)
	w.WriteLU16(m.Version)
	for _, count := range []int{len(m.Vertices), len(m.Triangles), len(m.Chunks), len(m.Materials), len(m.Parts), len(m.Markers)} {
		w.WriteLU32(uint32(count))
	}

	extraHeader := -1
	if m.Version == VERSION_3 {
		extraHeader = w.Reserve(EXTRA_HEADER_SIZE)
	}

	for i := range m.Vertices {
		v := &m.Vertices[i]
		writeVec3(w, v.Position)
		writeVec3(w, v.Normal)
		w.WriteLFs(v.UV1[0], v.UV1[1], v.UV2[0], v.UV2[1])
	}

	if m.HasTangents() {
		for i := range m.Vertices {
			var t Tangent
			if i < len(m.Tangents) {
				t = m.Tangents[i]
			}
			for _, v := range t.UV1 {
				w.WriteLU16(v)
			}
			for _, v := range t.UV2 {
				w.WriteLU16(v)
			}
		}
	}

	for _, t := range m.Triangles {
		for _, vi := range t {
			if m.BigIndices() {
				w.WriteLU32(vi)
			} else {
				w.WriteLU16(uint16(vi))
			}
		}
	}

	for _, c := range m.Chunks {
		for _, v := range []uint32{c.MaterialIndex, c.MaterialId, c.FirstTriangle, c.TriangleCount, c.FirstVertex, c.LastVertex} {
			w.WriteLU32(v)
		}
	}

	for i := range m.Materials {
		w.WriteLU32(m.Materials[i].Id)
		reserved := make([]byte, MATERIAL_RESERVED_SIZE)
		copy(reserved, m.Materials[i].Reserved)
		w.Write(reserved)
	}

	for i := range m.Parts {
		writePart(w, &m.Parts[i])
	}

	if m.Version == VERSION_3 {
		table := utils.NewBufWriter()
		for i := range m.Markers {
			mr := &m.Markers[i]
			extraOffset := uint32(table.Len())
			EncodeParameters(table, mr.markerParameters())

			w.WriteLU32(uint32(mr.Type))
			w.WriteLU32(extraOffset)
			w.WriteLI16(mr.Options)
			w.WriteLI16(mr.PartIndex)
			affine := utils.Mat4ToAffine(mr.Matrix)
			w.WriteLFs(affine[:]...)
		}

		w.Write(table.Bytes())
		w.PutLU32At(extraHeader, uint32(table.Len()))
		w.PutLU32At(extraHeader+4, uint32(len(m.StringSection)))
		w.PutLU32At(extraHeader+8, uint32(len(m.ReservedSection1)))
		w.PutLU32At(extraHeader+12, uint32(len(m.ReservedSection2)))

		w.Write(m.StringSection)
		w.Write(m.ReservedSection1)
		w.Write(m.ReservedSection2)
	} else {
		for i := range m.Markers {
			mr := &m.Markers[i]
			w.WriteLU32(uint32(mr.Type))
			EncodeParameters(w, mr.markerParameters().ToGeneric())
			w.WriteLI16(mr.Options)
			w.WriteLI16(mr.PartIndex)
			w.WriteLFs(mr.Matrix[:]...)
		}
	}
	w.Write(m.Tail)

	return w.Bytes(), nil
}

func (m *Mox) Produce(out io.Writer) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		return errors.Wrap(err, "Failed to write mox")
	}
	return nil
}
