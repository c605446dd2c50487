package container

import (
	"github.com/google/uuid"
)

// Clone returns a deep copy of the attached tree. Container IDs are kept,
// so lookups by ID resolve to the copy's nodes. Detached subtrees are not
// copied.
func (t *Tree) Clone() *Tree {
	copies := make(map[*Container]*Container, len(t.nodes))
	root := cloneSubtree(t.root, copies)

	out := &Tree{
		root:    root,
		nodes:   make(map[uuid.UUID]*Container, len(t.nodes)),
		parents: make(map[uuid.UUID]*Container, len(t.nodes)),
	}
	for orig, cp := range copies {
		cp.focusOrder = make([]*Container, 0, len(orig.focusOrder))
		for _, f := range orig.focusOrder {
			cp.focusOrder = append(cp.focusOrder, copies[f])
		}
		out.nodes[cp.ID] = cp
		for _, child := range cp.children {
			out.parents[child.ID] = cp
		}
	}
	return out
}

func cloneSubtree(c *Container, copies map[*Container]*Container) *Container {
	cp := &Container{
		ID:        c.ID,
		Kind:      c.Kind,
		SizeRatio: c.SizeRatio,
		Rect:      c.Rect,
	}
	if c.Monitor != nil {
		m := *c.Monitor
		cp.Monitor = &m
	}
	if c.Workspace != nil {
		ws := *c.Workspace
		cp.Workspace = &ws
	}
	if c.Split != nil {
		sp := *c.Split
		cp.Split = &sp
	}
	if c.Window != nil {
		w := *c.Window
		if c.Window.prevState != nil {
			prev := *c.Window.prevState
			w.prevState = &prev
		}
		cp.Window = &w
	}

	copies[c] = cp
	cp.children = make([]*Container, 0, len(c.children))
	for _, child := range c.children {
		cp.children = append(cp.children, cloneSubtree(child, copies))
	}
	return cp
}
