package layout

import (
	"math"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// Grid cell geometry.
const (
	gridStartX   = 100.0
	gridStartY   = 100.0
	gridSpacingX = 280.0
	gridSpacingY = 200.0
)

// Grid lays entities out in row-major order into a square-ish grid of
// ceil(sqrt(n)) columns with uniform cell spacing. This is also the
// automatic fallback when the diagram has no relationships.
func Grid(d diagram.Diagram) diagram.Diagram {
	n := len(d.Entities)
	if n == 0 {
		return d
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))

	out := d.Clone()
	for i := range out.Entities {
		row, col := i/cols, i%cols
		out.Entities[i].Position = diagram.Point{
			X: gridStartX + float64(col)*gridSpacingX,
			Y: gridStartY + float64(row)*gridSpacingY,
		}
	}
	return out
}

// gridSeed returns the grid cell position for index i of n entities. Used by
// the force strategy to seed entities that carry no placement hint.
func gridSeed(i, n int) diagram.Point {
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	return diagram.Point{
		X: gridStartX + float64(i%cols)*gridSpacingX,
		Y: gridStartY + float64(i/cols)*gridSpacingY,
	}
}
