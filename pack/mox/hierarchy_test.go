package mox

import (
	"math"
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/utils"
)

// a forest of two roots: 0 -> (1 -> 3, 2), 4
func testHierarchy(t *testing.T) *Hierarchy {
	h := &Hierarchy{}
	for _, parent := range []int{-1, 0, 0, 1, -1} {
		if _, err := h.Add(parent); err != nil {
			t.Fatal(err)
		}
	}
	return h
}

func namedParts(n int) []Part {
	parts := make([]Part, n)
	for i := range parts {
		parts[i].Name = string(rune('a' + i))
	}
	return parts
}

func TestHierarchyFlatten(t *testing.T) {
	h := testHierarchy(t)
	if order := h.Order(); !reflect.DeepEqual(order, []int{0, 1, 3, 2, 4}) {
		t.Errorf("Order()=%v; expected [0 1 3 2 4]", order)
	}

	parts, remap, err := h.Flatten(namedParts(5))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(remap, []int{0, 1, 3, 2, 4}) {
		t.Errorf("remap=%v", remap)
	}

	type links struct{ parent, child, prev, next int16 }
	expected := []links{
		{-1, 1, -1, 4},
		{0, 2, -1, 3},
		{1, -1, -1, -1},
		{0, -1, 1, -1},
		{-1, -1, 0, -1},
	}
	for i, p := range parts {
		if got := (links{p.Parent, p.Child, p.PrevInLevel, p.NextInLevel}); got != expected[i] {
			t.Errorf("part %d %q links %v; expected %v", i, p.Name, got, expected[i])
		}
	}

	rebuilt, err := BuildHierarchy(parts)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rebuilt.Roots, []int{0, 4}) {
		t.Errorf("Roots=%v; expected [0 4]", rebuilt.Roots)
	}
	if !reflect.DeepEqual(rebuilt.Nodes[0].Children, []int{1, 3}) {
		t.Errorf("children of 0 %v; expected [1 3]", rebuilt.Nodes[0].Children)
	}
}

func TestHierarchyFlattenTooManyParts(t *testing.T) {
	for _, test := range []struct {
		count    int
		expected error
	}{
		{math.MaxInt16 + 1, nil},
		{math.MaxInt16 + 2, utils.ErrIndexOutOfRange},
	} {
		h := &Hierarchy{}
		for i := 0; i < test.count; i++ {
			h.Add(-1)
		}
		parts, _, err := h.Flatten(make([]Part, test.count))
		if errors.Cause(err) != test.expected {
			t.Errorf("Flatten(%d parts) error %v; expected %v", test.count, err, test.expected)
			continue
		}
		if err == nil && parts[test.count-2].NextInLevel != math.MaxInt16 {
			t.Errorf("Flatten(%d parts) last link %d; expected %d", test.count, parts[test.count-2].NextInLevel, math.MaxInt16)
		}
	}
}

func TestHierarchyReparent(t *testing.T) {
	h := testHierarchy(t)

	if err := h.Reparent(0, 3); errors.Cause(err) != utils.ErrBrokenHierarchy {
		t.Errorf("Reparent under descendant error %v; expected broken hierarchy", err)
	}
	if err := h.Reparent(1, 1); errors.Cause(err) != utils.ErrBrokenHierarchy {
		t.Errorf("Reparent under itself error %v; expected broken hierarchy", err)
	}
	if err := h.Reparent(7, -1); errors.Cause(err) != utils.ErrIndexOutOfRange {
		t.Errorf("Reparent of missing node error %v; expected index out of range", err)
	}

	if err := h.Reparent(1, 4); err != nil {
		t.Fatal(err)
	}
	if order := h.Order(); !reflect.DeepEqual(order, []int{0, 2, 4, 1, 3}) {
		t.Errorf("Order()=%v; expected [0 2 4 1 3]", order)
	}
	if err := h.Reparent(2, -1); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(h.Roots, []int{0, 4, 2}) {
		t.Errorf("Roots=%v; expected [0 4 2]", h.Roots)
	}
}

func TestBuildHierarchyBroken(t *testing.T) {
	for _, test := range []struct {
		name   string
		change func(parts []Part)
	}{
		{"unreachable", func(parts []Part) { parts[3].NextInLevel = 4; parts[4].PrevInLevel = 3; parts[0].NextInLevel = -1 }},
		{"bad parent", func(parts []Part) { parts[2].Parent = 0 }},
		{"bad previous", func(parts []Part) { parts[3].PrevInLevel = -1 }},
		{"loop", func(parts []Part) { parts[2].Child = 0 }},
	} {
		parts, _, err := testHierarchy(t).Flatten(namedParts(5))
		if err != nil {
			t.Fatal(err)
		}
		test.change(parts)
		if _, err := BuildHierarchy(parts); errors.Cause(err) != utils.ErrBrokenHierarchy {
			t.Errorf("%s: error %v; expected broken hierarchy", test.name, err)
		}
	}
}

func TestModelHierarchyEdit(t *testing.T) {
	m := testModel(VERSION_3)

	n, err := m.AddPart(Part{Name: "spoiler"}, -1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || m.Parts[2].Name != "spoiler" {
		t.Errorf("AddPart placed part at %d", n)
	}

	n, err = m.AddPart(Part{Name: "door"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || m.Parts[n].Name != "door" {
		t.Errorf("AddPart placed door at %d", n)
	}
	if m.Markers[1].PartIndex != 1 || m.Parts[1].Name != "wheel" {
		t.Errorf("marker of wheel references %d", m.Markers[1].PartIndex)
	}

	// wheel goes under door
	if err := m.ReparentPart(1, 2); err != nil {
		t.Fatal(err)
	}
	if wheel := m.PartByName("wheel"); int(m.Markers[1].PartIndex) != wheel {
		t.Errorf("marker of wheel references %d; wheel is %d", m.Markers[1].PartIndex, wheel)
	}
	if _, err := m.Marshal(); err != nil {
		t.Errorf("Marshal after edit failed: %v", err)
	}
}
