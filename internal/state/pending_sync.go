package state

import (
	"github.com/google/uuid"
	"github.com/yourusername/tilewm/internal/container"
)

// PendingSync is the ordered set of containers owed a redraw. A container
// marked more than once in a cycle appears once, at its first position.
type PendingSync struct {
	order []*container.Container
	seen  map[uuid.UUID]bool
}

// NewPendingSync creates an empty ledger
func NewPendingSync() *PendingSync {
	return &PendingSync{seen: make(map[uuid.UUID]bool)}
}

// MarkForRedraw records c for the next flush
func (p *PendingSync) MarkForRedraw(c *container.Container) {
	if p.seen[c.ID] {
		return
	}
	p.seen[c.ID] = true
	p.order = append(p.order, c)
}

// Drain returns the marked containers in first-marked order and clears the ledger
func (p *PendingSync) Drain() []*container.Container {
	out := p.order
	p.order = nil
	p.seen = make(map[uuid.UUID]bool)
	return out
}

// Len returns how many containers are marked
func (p *PendingSync) Len() int {
	return len(p.order)
}

// Contains reports whether the container with id is marked
func (p *PendingSync) Contains(id uuid.UUID) bool {
	return p.seen[id]
}

// Truncate forgets entries marked after the ledger had n entries
func (p *PendingSync) Truncate(n int) {
	if n < 0 || n >= len(p.order) {
		return
	}
	for _, c := range p.order[n:] {
		delete(p.seen, c.ID)
	}
	p.order = p.order[:n]
}

// rebind points every entry at the container with the same ID in tree,
// dropping entries tree does not hold
func (p *PendingSync) rebind(tree *container.Tree) {
	kept := p.order[:0]
	for _, c := range p.order {
		if n, ok := tree.Get(c.ID); ok {
			kept = append(kept, n)
			continue
		}
		delete(p.seen, c.ID)
	}
	p.order = kept
}
