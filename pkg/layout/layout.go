// Package layout computes 2D positions for diagram entities from the
// relationship graph.
//
// Three interchangeable strategies share one contract: given a diagram,
// return a new diagram whose entities carry updated positions. Properties,
// ids and relationships are never touched. Layout never fails: an empty
// entity set comes back unchanged, and coincident entities are guarded by a
// minimum force distance instead of producing NaN coordinates.
//
//   - [StrategyGrid]: row-major placement into a square-ish grid
//   - [StrategyForce]: deterministic force-directed relaxation
//   - [StrategyHierarchy]: one column per reference-depth level
//
// Strategies are selected by a string flag via [Apply]; a diagram with zero
// relationships always falls back to the grid, and a hierarchy request on a
// graph without roots (every entity referenced by someone) falls back to
// force-directed relaxation.
package layout

import (
	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

// Strategy selects a layout algorithm.
type Strategy string

// Layout strategies.
const (
	StrategyGrid      Strategy = "grid"
	StrategyForce     Strategy = "force"
	StrategyHierarchy Strategy = "hierarchy"
)

// DefaultStrategy is used when the caller does not request a strategy.
const DefaultStrategy = StrategyHierarchy

// ValidStrategies is the set of supported layout strategies.
var ValidStrategies = map[Strategy]bool{
	StrategyGrid:      true,
	StrategyForce:     true,
	StrategyHierarchy: true,
}

// ParseStrategy validates a strategy flag. An empty string selects
// [DefaultStrategy].
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return DefaultStrategy, nil
	}
	st := Strategy(s)
	if !ValidStrategies[st] {
		return "", errors.New(errors.ErrCodeInvalidStrategy,
			"invalid layout strategy: %q (must be one of: grid, force, hierarchy)", s)
	}
	return st, nil
}

// Apply runs the selected strategy over the diagram and returns a new
// diagram with updated entity positions. A diagram with no relationships is
// laid out on the grid regardless of the requested strategy.
func Apply(s Strategy, d diagram.Diagram) diagram.Diagram {
	if len(d.Entities) == 0 {
		return d
	}
	if len(d.Relationships) == 0 {
		return Grid(d)
	}
	switch s {
	case StrategyForce:
		return Force(d)
	case StrategyHierarchy:
		return Hierarchy(d)
	default:
		return Grid(d)
	}
}
