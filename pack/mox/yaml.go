package mox

import (
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/landscape_browser/utils"
)

type MarkersDocument struct {
	Markers []MarkerDocument `yaml:"markers"`
}

type MarkerDocument struct {
	Type MarkerType `yaml:"type"`
	// part is resolved by name first, index is used for unnamed parts
	Part       string     `yaml:"part,omitempty"`
	PartIndex  int16      `yaml:"part_index"`
	Options    int16      `yaml:"options"`
	Matrix     mgl32.Mat4 `yaml:"matrix,flow"`
	Parameters yaml.Node  `yaml:"parameters"`
}

func (m *Mox) MarkersDocument() (*MarkersDocument, error) {
	doc := &MarkersDocument{Markers: make([]MarkerDocument, len(m.Markers))}
	for i := range m.Markers {
		mr := &m.Markers[i]
		md := &doc.Markers[i]
		md.Type = mr.Type
		md.PartIndex = mr.PartIndex
		md.Options = mr.Options
		md.Matrix = mr.Matrix
		if mr.PartIndex >= 0 && int(mr.PartIndex) < len(m.Parts) {
			md.Part = m.Parts[mr.PartIndex].Name
		}
		if err := md.Parameters.Encode(mr.markerParameters()); err != nil {
			return nil, errors.Wrapf(err, "marker %d", i)
		}
	}
	return doc, nil
}

// ExportMarkersYAML writes every marker with its typed parameters.
func (m *Mox) ExportMarkersYAML(w io.Writer) error {
	doc, err := m.MarkersDocument()
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrapf(err, "Failed to marshal yaml")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrapf(err, "Failed to close yaml encoder")
	}
	return nil
}

// ImportMarkersYAML replaces the markers of the model. The model is left
// untouched when the document is invalid.
func (m *Mox) ImportMarkersYAML(r io.Reader) error {
	var doc MarkersDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return errors.Wrapf(err, "Failed to unmarshal yaml")
	}

	markers := make([]Marker, len(doc.Markers))
	for i := range doc.Markers {
		md := &doc.Markers[i]
		mr := &markers[i]
		mr.Type = md.Type
		mr.Options = md.Options
		mr.Matrix = md.Matrix
		mr.PartIndex = md.PartIndex
		if md.Part != "" {
			if pi := m.PartByName(md.Part); pi != -1 {
				mr.PartIndex = int16(pi)
			} else {
				return errors.Wrapf(utils.ErrIndexOutOfRange, "marker %d references missing part %q", i, md.Part)
			}
		}
		if err := utils.CheckIndex("part", int(mr.PartIndex), len(m.Parts), true); err != nil {
			return errors.Wrapf(err, "marker %d", i)
		}

		mr.Parameters = NewParameters(mr.Type.Kind())
		if md.Parameters.Kind != 0 {
			if err := md.Parameters.Decode(mr.Parameters); err != nil {
				return errors.Wrapf(err, "marker %d parameters", i)
			}
		}
	}

	m.Markers = markers
	return nil
}
