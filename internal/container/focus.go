package container

// FocusOrder returns c's children from most to least recently focused
func (t *Tree) FocusOrder(c *Container) []*Container {
	out := make([]*Container, len(c.focusOrder))
	copy(out, c.focusOrder)
	return out
}

// FocusIndex returns c's position in its parent's focus order
func (t *Tree) FocusIndex(c *Container) int {
	p, ok := t.parents[c.ID]
	if !ok {
		return -1
	}
	return indexOf(p.focusOrder, c)
}

// SetFocusedDescendant moves c and each of its ancestors to the front of
// their parent's focus order, stopping below end. A nil end walks to the root.
func (t *Tree) SetFocusedDescendant(c, end *Container) {
	node := c
	for node != end {
		p, ok := t.parents[node.ID]
		if !ok {
			return
		}
		shiftToIndex(p, 0, node)
		if p == end {
			return
		}
		node = p
	}
}

// LastFocusedDescendant follows the focus order down from c to a leaf.
// It returns nil when c has no children.
func (t *Tree) LastFocusedDescendant(c *Container) *Container {
	var last *Container
	for node := c; len(node.focusOrder) > 0; node = node.focusOrder[0] {
		last = node.focusOrder[0]
	}
	return last
}

// LastFocusedWindow returns the most recently focused window below c
func (t *Tree) LastFocusedWindow(c *Container) *Container {
	for _, child := range c.focusOrder {
		if child.Kind == KindWindow {
			return child
		}
		if w := t.LastFocusedWindow(child); w != nil {
			return w
		}
	}
	return nil
}

// shiftToIndex moves child to position i of p's focus order
func shiftToIndex(p *Container, i int, child *Container) {
	cur := indexOf(p.focusOrder, child)
	if cur < 0 {
		return
	}
	p.focusOrder = append(p.focusOrder[:cur], p.focusOrder[cur+1:]...)
	if i < 0 || i > len(p.focusOrder) {
		i = len(p.focusOrder)
	}
	p.focusOrder = insertAt(p.focusOrder, i, child)
}
