package layout

import (
	"errors"
	"fmt"

	"github.com/yourusername/tilewm/internal/container"
)

const (
	// MinimumRatio is the smallest share a tiling container can have
	MinimumRatio = 0.1 // 10% minimum

	// DefaultResizeAmount is the default resize step
	DefaultResizeAmount = 0.1 // 10%
)

// ErrCannotResize is returned when a container has no tiling sibling to trade
// space with.
var ErrCannotResize = errors.New("need at least 2 tiling containers to resize")

// equalRatios returns n equal ratios summing to 1.0.
func equalRatios(n int) []float64 {
	if n <= 0 {
		return nil
	}
	ratios := make([]float64, n)
	for i := range ratios {
		ratios[i] = 1.0 / float64(n)
	}
	return ratios
}

// NormalizeRatios scales ratios so they sum to 1.0. Non-positive sums fall
// back to equal ratios.
func NormalizeRatios(ratios []float64) []float64 {
	if len(ratios) == 0 {
		return nil
	}

	sum := 0.0
	for _, r := range ratios {
		sum += r
	}
	if sum <= 0 {
		return equalRatios(len(ratios))
	}

	out := make([]float64, len(ratios))
	for i, r := range ratios {
		out[i] = r / sum
	}
	return out
}

// AdjustSplitRatio moves the boundary between the containers at index and
// index+1 by delta, keeping both at or above minRatio.
func AdjustSplitRatio(ratios []float64, index int, delta float64, minRatio float64) ([]float64, error) {
	if len(ratios) < 2 {
		return ratios, ErrCannotResize
	}
	if index < 0 || index >= len(ratios)-1 {
		return ratios, fmt.Errorf("invalid index for split adjustment: %d", index)
	}

	out := make([]float64, len(ratios))
	copy(out, ratios)

	first := out[index] + delta
	second := out[index+1] - delta

	if first < minRatio {
		first = minRatio
		second = out[index+1] + (out[index] - minRatio)
	}
	if second < minRatio {
		second = minRatio
		first = out[index] + (out[index+1] - minRatio)
	}

	out[index] = first
	out[index+1] = second
	return NormalizeRatios(out), nil
}

// RecalculateSplitsAfterRemoval spreads the removed entry's ratio equally
// over the remaining entries.
func RecalculateSplitsAfterRemoval(ratios []float64, removedIndex int) []float64 {
	if len(ratios) <= 1 {
		return nil
	}
	if removedIndex < 0 || removedIndex >= len(ratios) {
		return ratios
	}

	removed := ratios[removedIndex]
	out := make([]float64, 0, len(ratios)-1)
	for i, r := range ratios {
		if i != removedIndex {
			out = append(out, r)
		}
	}

	bonus := removed / float64(len(out))
	for i := range out {
		out[i] += bonus
	}
	return NormalizeRatios(out)
}

// RecalculateSplitsAfterAddition inserts an equal share at newIndex and
// scales the existing ratios to make room for it.
func RecalculateSplitsAfterAddition(ratios []float64, newIndex int) []float64 {
	oldCount := len(ratios)
	if oldCount == 0 {
		return []float64{1.0}
	}
	if newIndex < 0 || newIndex > oldCount {
		newIndex = oldCount
	}

	newCount := oldCount + 1
	share := 1.0 / float64(newCount)
	scale := 1.0 - share

	normalized := NormalizeRatios(ratios)
	out := make([]float64, newCount)
	for i, r := range normalized {
		dest := i
		if i >= newIndex {
			dest = i + 1
		}
		out[dest] = r * scale
	}
	out[newIndex] = share
	return NormalizeRatios(out)
}

// TilingChildren returns the children of p that take part in tiling: splits
// and tiling windows, in sibling order.
func TilingChildren(tree *container.Tree, p *container.Container) []*container.Container {
	var out []*container.Container
	for _, c := range tree.ChildrenOf(p) {
		if c.Kind == container.KindSplit || c.IsTilingWindow() {
			out = append(out, c)
		}
	}
	return out
}

// ClaimShare gives c an equal share of its parent's tiling axis and scales
// its tiling siblings down to make room. c must already be attached and
// tiling.
func ClaimShare(tree *container.Tree, c *container.Container) {
	p, ok := tree.ParentOf(c)
	if !ok {
		return
	}

	children := TilingChildren(tree, p)
	idx := -1
	others := make([]*container.Container, 0, len(children))
	for i, child := range children {
		if child == c {
			idx = i
			continue
		}
		others = append(others, child)
	}
	if idx < 0 {
		return
	}

	applyRatios(children, RecalculateSplitsAfterAddition(ratiosOf(others), idx))
}

// ReleaseShare spreads share, the ratio of a container that stopped tiling
// under p, over p's remaining tiling children.
func ReleaseShare(tree *container.Tree, p *container.Container, share float64) {
	if p == nil {
		return
	}
	children := TilingChildren(tree, p)
	if len(children) == 0 {
		return
	}

	ratios := append(ratiosOf(children), share)
	applyRatios(children, RecalculateSplitsAfterRemoval(ratios, len(ratios)-1))
}

// Resize grows c along its parent's tiling axis by delta (negative shrinks),
// trading space with the neighbouring tiling sibling. It returns the
// containers whose ratio changed.
func Resize(tree *container.Tree, c *container.Container, delta float64) ([]*container.Container, error) {
	p, ok := tree.ParentOf(c)
	if !ok {
		return nil, fmt.Errorf("resize %s: %w", c, container.ErrNotFound)
	}

	children := TilingChildren(tree, p)
	idx := -1
	for i, child := range children {
		if child == c {
			idx = i
		}
	}
	if idx < 0 || len(children) < 2 {
		return nil, ErrCannotResize
	}

	// The last container trades with its left neighbour, so the boundary
	// moves the other way.
	boundary := idx
	if boundary == len(children)-1 {
		boundary--
		delta = -delta
	}

	ratios, err := AdjustSplitRatio(NormalizeRatios(ratiosOf(children)), boundary, delta, MinimumRatio)
	if err != nil {
		return nil, err
	}
	applyRatios(children, ratios)
	return []*container.Container{children[boundary], children[boundary+1]}, nil
}

func ratiosOf(cs []*container.Container) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.SizeRatio
	}
	return out
}

func applyRatios(cs []*container.Container, ratios []float64) {
	if len(ratios) != len(cs) {
		ratios = equalRatios(len(cs))
	}
	for i, c := range cs {
		c.SizeRatio = ratios[i]
	}
}
