package mox

import (
	"math"

	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/utils"
)

type PartNode struct {
	Parent   int
	Children []int
}

// Hierarchy is the part forest. Node i describes part i of the array it
// was built from, links are plain indices.
type Hierarchy struct {
	Nodes []PartNode
	Roots []int
}

// BuildHierarchy walks the linked lists of the parts starting from part 0,
// roots are chained through NextInLevel as well. Every part has to be
// reached exactly once with parent and previous sibling links matching the
// walk.
func BuildHierarchy(parts []Part) (*Hierarchy, error) {
	h := &Hierarchy{Nodes: make([]PartNode, len(parts))}
	if len(parts) == 0 {
		return h, nil
	}

	type level struct {
		first  int
		parent int
	}
	visited := make([]bool, len(parts))
	stack := []level{{first: 0, parent: -1}}

	for len(stack) != 0 {
		lvl := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		prev := -1
		for i := lvl.first; i != -1; i = int(parts[i].NextInLevel) {
			if err := utils.CheckIndex("part", i, len(parts), false); err != nil {
				return nil, err
			}
			if visited[i] {
				return nil, errors.Wrapf(utils.ErrBrokenHierarchy, "part %d reached twice", i)
			}
			visited[i] = true

			p := &parts[i]
			if int(p.Parent) != lvl.parent {
				return nil, errors.Wrapf(utils.ErrBrokenHierarchy, "part %d has parent %d, reached from %d", i, p.Parent, lvl.parent)
			}
			if int(p.PrevInLevel) != prev {
				return nil, errors.Wrapf(utils.ErrBrokenHierarchy, "part %d has previous sibling %d, reached from %d", i, p.PrevInLevel, prev)
			}

			h.Nodes[i].Parent = lvl.parent
			if lvl.parent == -1 {
				h.Roots = append(h.Roots, i)
			} else {
				h.Nodes[lvl.parent].Children = append(h.Nodes[lvl.parent].Children, i)
			}
			if p.Child != -1 {
				stack = append(stack, level{first: int(p.Child), parent: i})
			}
			prev = i
		}
	}

	for i, v := range visited {
		if !v {
			return nil, errors.Wrapf(utils.ErrBrokenHierarchy, "part %d %q is not reachable", i, parts[i].Name)
		}
	}
	return h, nil
}

// Order lists nodes in pre-order, a node comes before its children and
// its later siblings.
func (h *Hierarchy) Order() []int {
	order := make([]int, 0, len(h.Nodes))
	stack := make([]int, 0, len(h.Nodes))
	for i := len(h.Roots) - 1; i >= 0; i-- {
		stack = append(stack, h.Roots[i])
	}
	for len(stack) != 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, n)
		children := h.Nodes[n].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return order
}

// Flatten lays the parts out in pre-order and rewrites all four links.
// remap[old] is the new index of part old.
func (h *Hierarchy) Flatten(parts []Part) ([]Part, []int, error) {
	if len(parts) != len(h.Nodes) {
		return nil, nil, errors.Wrapf(utils.ErrBrokenHierarchy, "%d nodes for %d parts", len(h.Nodes), len(parts))
	}
	if len(parts) > math.MaxInt16+1 {
		return nil, nil, errors.Wrapf(utils.ErrIndexOutOfRange, "%d parts do not fit 16 bit links", len(parts))
	}
	order := h.Order()
	if len(order) != len(parts) {
		return nil, nil, errors.Wrapf(utils.ErrBrokenHierarchy, "%d of %d parts reachable", len(order), len(parts))
	}

	remap := make([]int, len(parts))
	for newIndex, old := range order {
		remap[old] = newIndex
	}

	link := func(n int) int16 {
		if n == -1 {
			return -1
		}
		return int16(remap[n])
	}

	result := make([]Part, len(parts))
	for _, list := range append([][]int{h.Roots}, childLists(h)...) {
		for pos, old := range list {
			p := parts[old]
			p.Parent = link(h.Nodes[old].Parent)
			p.PrevInLevel, p.NextInLevel, p.Child = -1, -1, -1
			if pos > 0 {
				p.PrevInLevel = link(list[pos-1])
			}
			if pos < len(list)-1 {
				p.NextInLevel = link(list[pos+1])
			}
			if children := h.Nodes[old].Children; len(children) != 0 {
				p.Child = link(children[0])
			}
			result[remap[old]] = p
		}
	}
	return result, remap, nil
}

func childLists(h *Hierarchy) [][]int {
	lists := make([][]int, 0, len(h.Nodes))
	for _, n := range h.Nodes {
		if len(n.Children) != 0 {
			lists = append(lists, n.Children)
		}
	}
	return lists
}

func (h *Hierarchy) isAncestor(ancestor, n int) bool {
	for ; n != -1; n = h.Nodes[n].Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// Reparent moves node n with its subtree to the end of the children of
// parent, -1 makes it a root.
func (h *Hierarchy) Reparent(n, parent int) error {
	if err := utils.CheckIndex("node", n, len(h.Nodes), false); err != nil {
		return err
	}
	if err := utils.CheckIndex("parent", parent, len(h.Nodes), true); err != nil {
		return err
	}
	if parent != -1 && h.isAncestor(n, parent) {
		return errors.Wrapf(utils.ErrBrokenHierarchy, "node %d can not be moved under its descendant %d", n, parent)
	}

	removeFrom := func(list []int) []int {
		for i, v := range list {
			if v == n {
				return append(list[:i:i], list[i+1:]...)
			}
		}
		return list
	}
	if old := h.Nodes[n].Parent; old != -1 {
		h.Nodes[old].Children = removeFrom(h.Nodes[old].Children)
	} else {
		h.Roots = removeFrom(h.Roots)
	}

	h.Nodes[n].Parent = parent
	if parent != -1 {
		h.Nodes[parent].Children = append(h.Nodes[parent].Children, n)
	} else {
		h.Roots = append(h.Roots, n)
	}
	return nil
}

// Add appends a leaf node and returns its index.
func (h *Hierarchy) Add(parent int) (int, error) {
	if err := utils.CheckIndex("parent", parent, len(h.Nodes), true); err != nil {
		return -1, err
	}
	n := len(h.Nodes)
	h.Nodes = append(h.Nodes, PartNode{Parent: parent})
	if parent != -1 {
		h.Nodes[parent].Children = append(h.Nodes[parent].Children, n)
	} else {
		h.Roots = append(h.Roots, n)
	}
	return n, nil
}

// ApplyHierarchy reorders the parts of the model following h and updates
// marker part references.
func (m *Mox) ApplyHierarchy(h *Hierarchy) error {
	_, err := m.applyHierarchy(h)
	return err
}

func (m *Mox) applyHierarchy(h *Hierarchy) ([]int, error) {
	parts, remap, err := h.Flatten(m.Parts)
	if err != nil {
		return nil, err
	}
	m.Parts = parts
	for i := range m.Markers {
		if pi := m.Markers[i].PartIndex; pi >= 0 && int(pi) < len(remap) {
			m.Markers[i].PartIndex = int16(remap[pi])
		}
	}
	return remap, nil
}

// AddPart inserts p under parent and returns the index it ended up at.
func (m *Mox) AddPart(p Part, parent int) (int, error) {
	h, err := BuildHierarchy(m.Parts)
	if err != nil {
		return -1, err
	}
	n, err := h.Add(parent)
	if err != nil {
		return -1, err
	}
	m.Parts = append(m.Parts, p)

	remap, err := m.applyHierarchy(h)
	if err != nil {
		m.Parts = m.Parts[:len(m.Parts)-1]
		return -1, err
	}
	return remap[n], nil
}

// ReparentPart moves part n under parent, -1 makes it a root.
func (m *Mox) ReparentPart(n, parent int) error {
	h, err := BuildHierarchy(m.Parts)
	if err != nil {
		return err
	}
	if err := h.Reparent(n, parent); err != nil {
		return err
	}
	return m.ApplyHierarchy(h)
}
