package container

import (
	"github.com/google/uuid"
)

// Tree is the container hierarchy rooted at a single Root node.
// It is not safe for concurrent use; the window manager's single writer owns it.
type Tree struct {
	root    *Container
	nodes   map[uuid.UUID]*Container
	parents map[uuid.UUID]*Container
}

// NewTree creates a tree holding only a Root container
func NewTree() *Tree {
	root := newContainer(KindRoot)
	return &Tree{
		root:    root,
		nodes:   map[uuid.UUID]*Container{root.ID: root},
		parents: make(map[uuid.UUID]*Container),
	}
}

// Root returns the root container
func (t *Tree) Root() *Container {
	return t.root
}

// Get looks up an attached container by ID. Detached subtrees are not
// reachable through it.
func (t *Tree) Get(id uuid.UUID) (*Container, bool) {
	c, ok := t.nodes[id]
	return c, ok
}

// Contains reports whether c is attached to the tree
func (t *Tree) Contains(c *Container) bool {
	if c == nil {
		return false
	}
	n, ok := t.nodes[c.ID]
	return ok && n == c
}

// Len returns the number of attached containers, root included
func (t *Tree) Len() int {
	return len(t.nodes)
}

// ChildrenOf returns a copy of c's children in layout order
func (t *Tree) ChildrenOf(c *Container) []*Container {
	out := make([]*Container, len(c.children))
	copy(out, c.children)
	return out
}

// ParentOf returns c's parent, or false for the root and for the top of a
// detached subtree. Nodes below a detached subtree keep their parent.
func (t *Tree) ParentOf(c *Container) (*Container, bool) {
	p, ok := t.parents[c.ID]
	return p, ok
}

// Index returns c's position among its siblings, or -1 if it has no parent
func (t *Tree) Index(c *Container) int {
	p, ok := t.parents[c.ID]
	if !ok {
		return -1
	}
	return indexOf(p.children, c)
}

// Siblings returns c's siblings in layout order, excluding c
func (t *Tree) Siblings(c *Container) []*Container {
	p, ok := t.parents[c.ID]
	if !ok {
		return nil
	}
	out := make([]*Container, 0, len(p.children)-1)
	for _, s := range p.children {
		if s != c {
			out = append(out, s)
		}
	}
	return out
}

// Attach inserts node under parent at index. An index outside
// [0, len(children)] appends.
func (t *Tree) Attach(node, parent *Container, index int) error {
	if node == nil || parent == nil {
		return structural("attach", node, ErrNotFound)
	}
	if t.isAncestorOrSelf(node, parent) {
		return structural("attach", node, ErrCycle)
	}
	if _, owned := t.parents[node.ID]; owned || node == t.root || t.Contains(node) {
		return structural("attach", node, ErrAlreadyAttached)
	}
	if !t.Contains(parent) {
		return structural("attach", parent, ErrNotFound)
	}
	if !canOwn(parent.Kind, node.Kind) {
		return structural("attach", node, ErrInvalidNesting)
	}

	if index < 0 || index > len(parent.children) {
		index = len(parent.children)
	}
	parent.children = insertAt(parent.children, index, node)
	parent.focusOrder = append(parent.focusOrder, node)
	t.parents[node.ID] = parent
	t.index(node)
	return nil
}

// Detach removes node from its parent. Its own children stay with it. A
// node inside an already detached subtree can be detached too, which frees
// it to be attached elsewhere.
func (t *Tree) Detach(node *Container) error {
	if node == t.root {
		return structural("detach", node, ErrDetachRoot)
	}
	parent, ok := t.parents[node.ID]
	if !ok {
		return structural("detach", node, ErrNotFound)
	}

	parent.children = removeFrom(parent.children, node)
	parent.focusOrder = removeFrom(parent.focusOrder, node)
	delete(t.parents, node.ID)
	if t.Contains(node) {
		t.unindex(node)
	}
	return nil
}

// ReplaceInPlace puts replacement at old's position, keeping sibling order,
// size ratio and focus position. old is left detached with its children.
func (t *Tree) ReplaceInPlace(old, replacement *Container) error {
	if old == t.root {
		return structural("replace", old, ErrDetachRoot)
	}
	parent, ok := t.parents[old.ID]
	if !ok || !t.Contains(old) {
		return structural("replace", old, ErrNotFound)
	}
	if t.isAncestorOrSelf(replacement, old) {
		return structural("replace", replacement, ErrCycle)
	}
	if _, owned := t.parents[replacement.ID]; owned || t.Contains(replacement) {
		return structural("replace", replacement, ErrAlreadyAttached)
	}
	if !canOwn(parent.Kind, replacement.Kind) {
		return structural("replace", replacement, ErrInvalidNesting)
	}

	parent.children[indexOf(parent.children, old)] = replacement
	parent.focusOrder[indexOf(parent.focusOrder, old)] = replacement
	replacement.SizeRatio = old.SizeRatio

	delete(t.parents, old.ID)
	t.unindex(old)
	t.parents[replacement.ID] = parent
	t.index(replacement)
	return nil
}

// Walk visits from and its descendants in depth-first pre-order.
// Returning false from fn stops the walk.
func (t *Tree) Walk(from *Container, fn func(c *Container) bool) {
	walk(from, fn)
}

func walk(c *Container, fn func(c *Container) bool) bool {
	if !fn(c) {
		return false
	}
	for _, child := range c.children {
		if !walk(child, fn) {
			return false
		}
	}
	return true
}

// Descendants returns every container below c in pre-order
func (t *Tree) Descendants(c *Container) []*Container {
	var out []*Container
	t.Walk(c, func(n *Container) bool {
		if n != c {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Ancestors returns c's ancestors from its parent up to the root
func (t *Tree) Ancestors(c *Container) []*Container {
	var out []*Container
	for p, ok := t.parents[c.ID]; ok; p, ok = t.parents[p.ID] {
		out = append(out, p)
	}
	return out
}

// IsAncestor reports whether a is a strict ancestor of c
func (t *Tree) IsAncestor(a, c *Container) bool {
	for _, p := range t.Ancestors(c) {
		if p == a {
			return true
		}
	}
	return false
}

// LowestCommonAncestor returns the deepest container that is a or an
// ancestor of a, and also b or an ancestor of b.
func (t *Tree) LowestCommonAncestor(a, b *Container) *Container {
	seen := map[uuid.UUID]bool{a.ID: true}
	for _, p := range t.Ancestors(a) {
		seen[p.ID] = true
	}
	if seen[b.ID] {
		return b
	}
	for _, p := range t.Ancestors(b) {
		if seen[p.ID] {
			return p
		}
	}
	return nil
}

// AncestorOfKind returns the nearest ancestor of c with the given kind,
// or c itself if it matches.
func (t *Tree) AncestorOfKind(c *Container, kind Kind) *Container {
	if c.Kind == kind {
		return c
	}
	for _, p := range t.Ancestors(c) {
		if p.Kind == kind {
			return p
		}
	}
	return nil
}

// WorkspaceOf returns the workspace containing c
func (t *Tree) WorkspaceOf(c *Container) *Container {
	return t.AncestorOfKind(c, KindWorkspace)
}

// MonitorOf returns the monitor containing c
func (t *Tree) MonitorOf(c *Container) *Container {
	return t.AncestorOfKind(c, KindMonitor)
}

// Monitors returns the root's monitors in order
func (t *Tree) Monitors() []*Container {
	return t.ChildrenOf(t.root)
}

// Workspaces returns every workspace across all monitors
func (t *Tree) Workspaces() []*Container {
	var out []*Container
	for _, m := range t.root.children {
		out = append(out, m.children...)
	}
	return out
}

// Windows returns every window container in pre-order
func (t *Tree) Windows() []*Container {
	var out []*Container
	t.Walk(t.root, func(c *Container) bool {
		if c.Kind == KindWindow {
			out = append(out, c)
		}
		return true
	})
	return out
}

// WindowByHandle finds the window wrapping an OS handle
func (t *Tree) WindowByHandle(handle uint64) (*Container, bool) {
	var found *Container
	t.Walk(t.root, func(c *Container) bool {
		if c.Kind == KindWindow && c.Window.Handle == handle {
			found = c
			return false
		}
		return true
	})
	return found, found != nil
}

// WorkspaceByName finds a workspace by name
func (t *Tree) WorkspaceByName(name string) (*Container, bool) {
	for _, ws := range t.Workspaces() {
		if ws.Workspace.Name == name {
			return ws, true
		}
	}
	return nil, false
}

// MonitorByName finds a monitor by name
func (t *Tree) MonitorByName(name string) (*Container, bool) {
	for _, m := range t.root.children {
		if m.Monitor.Name == name {
			return m, true
		}
	}
	return nil, false
}

func (t *Tree) index(c *Container) {
	t.nodes[c.ID] = c
	for _, child := range c.children {
		t.parents[child.ID] = c
		t.index(child)
	}
}

// unindex drops c and its descendants from the id index. Parent links
// inside the subtree are kept so it stays whole while detached.
func (t *Tree) unindex(c *Container) {
	delete(t.nodes, c.ID)
	for _, child := range c.children {
		t.unindex(child)
	}
}

// isAncestorOrSelf reports whether a is c or one of its ancestors
func (t *Tree) isAncestorOrSelf(a, c *Container) bool {
	for n := c; n != nil; n = t.parents[n.ID] {
		if n == a {
			return true
		}
	}
	return false
}

func indexOf(list []*Container, c *Container) int {
	for i, n := range list {
		if n == c {
			return i
		}
	}
	return -1
}

func insertAt(list []*Container, i int, c *Container) []*Container {
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = c
	return list
}

func removeFrom(list []*Container, c *Container) []*Container {
	i := indexOf(list, c)
	if i < 0 {
		return list
	}
	return append(list[:i], list[i+1:]...)
}
