package container

// MoveWithinTree detaches c and attaches it under target at index, keeping
// focus order consistent across the move.
func (t *Tree) MoveWithinTree(c, target *Container, index int) error {
	if !t.Contains(c) || c == t.root {
		return structural("move", c, ErrNotFound)
	}
	if !t.Contains(target) {
		return structural("move", target, ErrNotFound)
	}
	if t.isAncestorOrSelf(c, target) {
		return structural("move", c, ErrCycle)
	}
	if !canOwn(target.Kind, c.Kind) {
		return structural("move", c, ErrInvalidNesting)
	}

	lca := t.LowestCommonAncestor(c, target)
	if lca == target {
		return t.moveToAncestor(c, lca, index)
	}

	cAncestor := t.childOnPath(c, lca)
	targetAncestor := t.childOnPath(target, lca)

	isFocusedDescendant := c == cAncestor || t.LastFocusedDescendant(cAncestor) == c
	originalFocusIndex := indexOf(lca.focusOrder, cAncestor)
	isSubtreeFocused := originalFocusIndex < indexOf(lca.focusOrder, targetAncestor)

	if err := t.Detach(c); err != nil {
		return err
	}
	if err := t.Attach(c, target, index); err != nil {
		return err
	}

	// The moved subtree was focused more recently than the target's, so
	// it stays the focused descendant on the target side.
	if isSubtreeFocused {
		t.SetFocusedDescendant(c, targetAncestor)
	}
	if isFocusedDescendant && isSubtreeFocused {
		shiftToIndex(lca, originalFocusIndex, targetAncestor)
	}
	return nil
}

// moveToAncestor moves c to be a direct child of ancestor. The target index
// is adjusted when detaching c shifts the ancestor's children left.
func (t *Tree) moveToAncestor(c, ancestor *Container, index int) error {
	originalFocusIndex := indexOf(ancestor.focusOrder, t.childOnPath(c, ancestor))
	originalIndex := t.Index(c)
	originalCount := len(ancestor.children)

	if err := t.Detach(c); err != nil {
		return err
	}

	if originalCount > len(ancestor.children) && originalIndex < index {
		index--
	}
	if err := t.Attach(c, ancestor, index); err != nil {
		return err
	}
	shiftToIndex(ancestor, originalFocusIndex, c)
	return nil
}

// childOnPath returns the container on c's ancestor path (c included)
// whose parent is ancestor.
func (t *Tree) childOnPath(c, ancestor *Container) *Container {
	node := c
	for {
		p, ok := t.parents[node.ID]
		if !ok {
			return nil
		}
		if p == ancestor {
			return node
		}
		node = p
	}
}
