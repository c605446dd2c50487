package focus

import (
	"math"

	"github.com/google/uuid"
	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/types"
)

// Candidate is a navigation target with its screen bounds
type Candidate struct {
	ID   uuid.UUID
	Rect types.Rect
}

// FindTarget finds the best candidate to navigate to in the given direction.
// Returns the target ID and true if found. If wrapAround is true and nothing
// lies in that direction, it wraps to the opposite edge. Ties go to the
// earliest candidate. candidates must not include the current target.
func FindTarget(current types.Rect, direction types.Direction, candidates []Candidate, wrapAround bool) (uuid.UUID, bool) {
	currentCenter := current.Center()

	var best uuid.UUID
	bestDistance := math.MaxFloat64

	for _, c := range candidates {
		targetCenter := c.Rect.Center()
		if !isInDirection(currentCenter, targetCenter, direction) {
			continue
		}

		distance := distanceInDirection(currentCenter, targetCenter, direction)
		if distance < bestDistance {
			bestDistance = distance
			best = c.ID
		}
	}

	if best != uuid.Nil {
		return best, true
	}

	if wrapAround {
		return findWrapAround(current, direction, candidates)
	}
	return uuid.Nil, false
}

// AdjacentMonitor returns the monitor next to from in the given direction
func AdjacentMonitor(tree *container.Tree, from *container.Container, direction types.Direction) *container.Container {
	if from == nil || from.Monitor == nil {
		return nil
	}

	var candidates []Candidate
	for _, m := range tree.Monitors() {
		if m != from {
			candidates = append(candidates, Candidate{ID: m.ID, Rect: m.Monitor.Rect})
		}
	}

	id, ok := FindTarget(from.Monitor.Rect, direction, candidates, false)
	if !ok {
		return nil
	}
	m, _ := tree.Get(id)
	return m
}

// isInDirection checks if target is in the specified direction from source.
// Uses center points for comparison.
func isInDirection(source, target types.Point, direction types.Direction) bool {
	switch direction {
	case types.DirLeft:
		return target.X < source.X
	case types.DirRight:
		return target.X > source.X
	case types.DirUp:
		return target.Y < source.Y
	case types.DirDown:
		return target.Y > source.Y
	default:
		return false
	}
}

// distanceInDirection weights perpendicular movement double, so targets
// more in line with the direction win.
func distanceInDirection(source, target types.Point, direction types.Direction) float64 {
	dx := math.Abs(target.X - source.X)
	dy := math.Abs(target.Y - source.Y)

	switch direction {
	case types.DirLeft, types.DirRight:
		return dx + dy*2
	case types.DirUp, types.DirDown:
		return dy + dx*2
	default:
		return math.Sqrt(dx*dx + dy*dy)
	}
}

// findWrapAround finds the best aligned candidate on the opposite edge.
func findWrapAround(current types.Rect, direction types.Direction, candidates []Candidate) (uuid.UUID, bool) {
	currentCenter := current.Center()

	var best uuid.UUID
	bestDistance := math.MaxFloat64

	for _, c := range candidates {
		targetCenter := c.Rect.Center()
		if !isOnOppositeEdge(targetCenter, direction, candidates) {
			continue
		}

		distance := perpendicularDistance(currentCenter, targetCenter, direction)
		if distance < bestDistance {
			bestDistance = distance
			best = c.ID
		}
	}

	return best, best != uuid.Nil
}

// isOnOppositeEdge checks if a point is within 10% of the far edge of all
// candidates for wrap-around.
func isOnOppositeEdge(target types.Point, direction types.Direction, candidates []Candidate) bool {
	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64

	for _, c := range candidates {
		center := c.Rect.Center()
		minX = math.Min(minX, center.X)
		maxX = math.Max(maxX, center.X)
		minY = math.Min(minY, center.Y)
		maxY = math.Max(maxY, center.Y)
	}

	xThreshold := (maxX - minX) * 0.1
	yThreshold := (maxY - minY) * 0.1
	if xThreshold == 0 {
		xThreshold = 1
	}
	if yThreshold == 0 {
		yThreshold = 1
	}

	switch direction {
	case types.DirLeft:
		return target.X >= maxX-xThreshold
	case types.DirRight:
		return target.X <= minX+xThreshold
	case types.DirUp:
		return target.Y >= maxY-yThreshold
	case types.DirDown:
		return target.Y <= minY+yThreshold
	default:
		return false
	}
}

// perpendicularDistance returns the distance along the perpendicular axis.
func perpendicularDistance(source, target types.Point, direction types.Direction) float64 {
	switch direction {
	case types.DirLeft, types.DirRight:
		return math.Abs(target.Y - source.Y)
	case types.DirUp, types.DirDown:
		return math.Abs(target.X - source.X)
	default:
		return math.Sqrt(math.Pow(target.X-source.X, 2) + math.Pow(target.Y-source.Y, 2))
	}
}
