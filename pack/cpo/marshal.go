package cpo

import (
	"io"

	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/utils"
)

func (s *Mesh) marshal(w *utils.BufWriter) {
	polygons := utils.NewBufWriter()
	for _, p := range s.Polygons {
		polygons.WriteLU16(uint16(len(p)))
		for _, vi := range p {
			polygons.WriteLU16(vi)
		}
	}

	w.WriteLU32(uint32(len(s.Vertices)))
	w.WriteLU32(uint32(len(s.Polygons)))
	w.WriteLU32(uint32(polygons.Len()))
	w.WriteLU32(s.Reserved)

	for _, v := range s.Vertices {
		w.WriteLFs(v[0], v[1], v[2])
	}
	w.Write(polygons.Bytes())

	w.WriteLFs(s.Position[0], s.Position[1], s.Position[2])
	w.WriteLFs(s.Matrix[:]...)
}

func (c *Cpo) Marshal() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	w := utils.NewBufWriter()
	w.WriteLU32(CPO_MAGIC)
	w.WriteLU32(uint32(len(c.Shapes)))
	w.WriteLU32(c.Reserved1)
	w.WriteLU32(c.Reserved2)

	for _, s := range c.Shapes {
		w.WriteLU32(uint32(s.Type()))
		s.marshal(w)
	}
	w.Write(c.Tail)
	return w.Bytes(), nil
}

func (c *Cpo) Produce(out io.Writer) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		return errors.Wrap(err, "Failed to write cpo")
	}
	return nil
}
