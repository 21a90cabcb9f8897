package mox

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/utils"
)

func TestMarkersYAMLRoundTrip(t *testing.T) {
	m := testModel(VERSION_3)

	var buffer bytes.Buffer
	if err := m.ExportMarkersYAML(&buffer); err != nil {
		t.Fatal(err)
	}
	text := buffer.String()
	for _, expected := range []string{"type: Nitro", "part: wheel", "size_xy: 1.5", "size_at_day: 0.5"} {
		if !strings.Contains(text, expected) {
			t.Errorf("exported yaml does not contain %q:\n%s", expected, text)
		}
	}

	target := testModel(VERSION_3)
	target.Markers = nil
	if err := target.ImportMarkersYAML(&buffer); err != nil {
		t.Fatal(err)
	}
	if len(target.Markers) != len(m.Markers) {
		t.Fatalf("imported %d markers; expected %d", len(target.Markers), len(m.Markers))
	}
	for i := range m.Markers {
		got, expected := target.Markers[i], m.Markers[i]
		if got.Type != expected.Type || got.PartIndex != expected.PartIndex || got.Options != expected.Options {
			t.Errorf("marker %d is %v/%d/%d; expected %v/%d/%d", i,
				got.Type, got.PartIndex, got.Options, expected.Type, expected.PartIndex, expected.Options)
		}
		if got.Matrix != expected.Matrix {
			t.Errorf("marker %d matrix %v; expected %v", i, got.Matrix, expected.Matrix)
		}
		if !reflect.DeepEqual(got.Parameters, expected.Parameters) {
			t.Errorf("marker %d parameters %+v; expected %+v", i, got.Parameters, expected.Parameters)
		}
	}
}

const partsByNameYAML = `
markers:
  - type: RotatingLight
    part: wheel
    part_index: 0
    options: 1
    matrix: [1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1]
    parameters:
      size: 2
      cycle_length: 0.25
  - type: 36
    part_index: -1
    options: 0
    matrix: [1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1]
`

func TestImportMarkersYAML(t *testing.T) {
	m := testModel(VERSION_2)
	if err := m.ImportMarkersYAML(strings.NewReader(partsByNameYAML)); err != nil {
		t.Fatal(err)
	}
	if len(m.Markers) != 2 {
		t.Fatalf("imported %d markers; expected 2", len(m.Markers))
	}
	if m.Markers[0].PartIndex != 1 {
		t.Errorf("PartIndex=%d; expected wheel (1)", m.Markers[0].PartIndex)
	}
	expected := &RotatingLightParameters{Color: utils.ColorWhite, Size: 2, CycleLength: 0.25}
	if !reflect.DeepEqual(m.Markers[0].Parameters, expected) {
		t.Errorf("Parameters=%+v; expected %+v", m.Markers[0].Parameters, expected)
	}
	if !reflect.DeepEqual(m.Markers[1].Parameters, NewSoundEmitterParameters()) {
		t.Errorf("Parameters=%+v; expected default sound emitter", m.Markers[1].Parameters)
	}
}

func TestImportMarkersYAMLErrors(t *testing.T) {
	for _, test := range []struct {
		text     string
		expected error
	}{
		{"markers:\n  - type: Nitro\n    part: roof\n", utils.ErrIndexOutOfRange},
		{"markers:\n  - type: Nitro\n    part_index: 2\n", utils.ErrIndexOutOfRange},
	} {
		m := testModel(VERSION_3)
		before := m.Markers
		err := m.ImportMarkersYAML(strings.NewReader(test.text))
		if errors.Cause(err) != test.expected {
			t.Errorf("ImportMarkersYAML(%q) error %v; expected %v", test.text, err, test.expected)
		}
		if !reflect.DeepEqual(m.Markers, before) {
			t.Errorf("ImportMarkersYAML(%q) changed markers on failure", test.text)
		}
	}

	m := testModel(VERSION_3)
	if err := m.ImportMarkersYAML(strings.NewReader("markers:\n  - type: Rocket\n")); err == nil {
		t.Errorf("ImportMarkersYAML with unknown type name succeeded")
	}
}
