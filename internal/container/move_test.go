package container

import (
	"errors"
	"testing"

	"github.com/yourusername/tilewm/internal/types"
)

func TestSetFocusedDescendant(t *testing.T) {
	tree, ws, wins := newTestTree(t, 3)

	// Attach order is the initial focus order.
	if got := tree.LastFocusedDescendant(ws); got != wins[0] {
		t.Errorf("initial LastFocusedDescendant = %v, want win0", got)
	}

	tree.SetFocusedDescendant(wins[2], nil)
	if got := tree.LastFocusedDescendant(ws); got != wins[2] {
		t.Errorf("LastFocusedDescendant = %v, want win2", got)
	}
	order := tree.FocusOrder(ws)
	want := []*Container{wins[2], wins[0], wins[1]}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("FocusOrder[%d] = %v, want %v", i, order[i], want[i])
		}
	}

	if got := tree.LastFocusedWindow(tree.Root()); got != wins[2] {
		t.Errorf("LastFocusedWindow(root) = %v, want win2", got)
	}
}

func TestMoveWithinSameParent(t *testing.T) {
	tests := []struct {
		name  string
		from  int
		to    int
		order []int
	}{
		{"shift right", 0, 2, []int{1, 0, 2}},
		{"shift to end", 0, 3, []int{1, 2, 0}},
		{"shift left", 2, 0, []int{2, 0, 1}},
		{"same slot", 1, 1, []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, ws, wins := newTestTree(t, 3)
			if err := tree.MoveWithinTree(wins[tt.from], ws, tt.to); err != nil {
				t.Fatalf("MoveWithinTree() error = %v", err)
			}
			children := tree.ChildrenOf(ws)
			for i, idx := range tt.order {
				if children[i] != wins[idx] {
					t.Errorf("children[%d] = %v, want win%d", i, children[i], idx)
				}
			}
		})
	}
}

func TestMoveWithinSameParentKeepsFocusIndex(t *testing.T) {
	tree, ws, wins := newTestTree(t, 3)
	tree.SetFocusedDescendant(wins[1], nil)

	if err := tree.MoveWithinTree(wins[1], ws, 3); err != nil {
		t.Fatalf("MoveWithinTree() error = %v", err)
	}
	if got := tree.FocusIndex(wins[1]); got != 0 {
		t.Errorf("FocusIndex = %d, want 0", got)
	}
}

func TestMoveIntoSiblingSplit(t *testing.T) {
	tree, ws, wins := newTestTree(t, 1)
	split := NewSplit(types.TilingVertical)
	inner := NewWindow(WindowData{Handle: 10})
	_ = tree.Attach(split, ws, -1)
	_ = tree.Attach(inner, split, -1)

	tree.SetFocusedDescendant(wins[0], nil)

	if err := tree.MoveWithinTree(wins[0], split, 0); err != nil {
		t.Fatalf("MoveWithinTree() error = %v", err)
	}

	if p, _ := tree.ParentOf(wins[0]); p != split {
		t.Errorf("parent = %v, want split", p)
	}
	if got := tree.ChildrenOf(split)[0]; got != wins[0] {
		t.Errorf("split first child = %v, want moved window", got)
	}
	// The moved window was focused, so it stays focused in its new subtree.
	if got := tree.LastFocusedDescendant(ws); got != wins[0] {
		t.Errorf("LastFocusedDescendant(ws) = %v, want moved window", got)
	}
}

func TestMoveRejections(t *testing.T) {
	tree, ws, wins := newTestTree(t, 1)
	split := NewSplit(types.TilingVertical)
	_ = tree.Attach(split, ws, -1)
	mon, _ := tree.ParentOf(ws)

	if err := tree.MoveWithinTree(split, split, 0); !errors.Is(err, ErrCycle) {
		t.Errorf("move into self error = %v, want ErrCycle", err)
	}
	if err := tree.MoveWithinTree(wins[0], mon, 0); !errors.Is(err, ErrInvalidNesting) {
		t.Errorf("move window under monitor error = %v, want ErrInvalidNesting", err)
	}
	if err := tree.MoveWithinTree(NewWindow(WindowData{}), ws, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("move detached error = %v, want ErrNotFound", err)
	}
}
