package layout

import (
	"math"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// Force-directed tuning. The target area and iteration count bound the
// running time and the coordinate magnitudes; the minimum distance guards
// against NaN forces between coincident entities.
const (
	forceWidth      = 1200.0
	forceHeight     = 900.0
	forceIterations = 100
	minDistance     = 1.0
)

// Force runs a classic repulsion/attraction relaxation: all entity pairs
// repel with force k²/d (k derived from entity count and target area), and
// every relationship pulls its endpoints together with force d²/k. Entities
// without a position are seeded on a grid; existing positions are kept as
// placement hints. A linearly cooling temperature caps each step's
// displacement, so the result is deterministic and bounded.
func Force(d diagram.Diagram) diagram.Diagram {
	n := len(d.Entities)
	if n == 0 {
		return d
	}

	out := d.Clone()
	pos := make([]diagram.Point, n)
	index := make(map[string]int, n)
	for i, e := range out.Entities {
		index[e.ID] = i
		if e.Position.X == 0 && e.Position.Y == 0 {
			pos[i] = gridSeed(i, n)
		} else {
			pos[i] = e.Position
		}
	}

	k := math.Sqrt(forceWidth * forceHeight / float64(n))
	temp := forceWidth / 10
	cool := temp / float64(forceIterations)

	disp := make([]diagram.Point, n)
	for iter := 0; iter < forceIterations; iter++ {
		for i := range disp {
			disp[i] = diagram.Point{}
		}

		// Repulsion between all pairs.
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx, dy := pos[i].X-pos[j].X, pos[i].Y-pos[j].Y
				dist := math.Hypot(dx, dy)
				if dist < minDistance {
					// Coincident entities have no direction to repel along;
					// nudge them apart horizontally so they separate.
					dx, dy, dist = minDistance, 0, minDistance
				}
				force := k * k / dist
				ux, uy := dx/dist, dy/dist
				disp[i].X += ux * force
				disp[i].Y += uy * force
				disp[j].X -= ux * force
				disp[j].Y -= uy * force
			}
		}

		// Attraction along relationships.
		for _, r := range out.Relationships {
			si, ok := index[r.Source]
			if !ok {
				continue
			}
			ti, ok := index[r.Target]
			if !ok {
				continue
			}
			dx, dy := pos[si].X-pos[ti].X, pos[si].Y-pos[ti].Y
			dist := math.Hypot(dx, dy)
			if dist < minDistance {
				dist = minDistance
			}
			force := dist * dist / k
			ux, uy := dx/dist, dy/dist
			disp[si].X -= ux * force
			disp[si].Y -= uy * force
			disp[ti].X += ux * force
			disp[ti].Y += uy * force
		}

		// Move, capping each step at the current temperature.
		for i := 0; i < n; i++ {
			mag := math.Hypot(disp[i].X, disp[i].Y)
			if mag < minDistance {
				continue
			}
			step := math.Min(mag, temp)
			pos[i].X += disp[i].X / mag * step
			pos[i].Y += disp[i].Y / mag * step
		}
		temp -= cool
	}

	for i := range out.Entities {
		out.Entities[i].Position = pos[i]
	}
	return out
}
