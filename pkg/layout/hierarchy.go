package layout

import "github.com/schemadraw/schemadraw/pkg/diagram"

// Hierarchy column geometry.
const (
	hierarchyStartX  = 100.0
	hierarchyCenterY = 400.0
	levelSpacing     = 320.0
	nodeSpacing      = 180.0
)

// Hierarchy places entities into one column per reference depth.
//
// Reference-typed relationships are treated as a directed graph from the
// referencing entity to the referenced one. Roots are the entities never
// named as a target (referenced by nobody); a simultaneous breadth-first
// traversal from all roots assigns every reachable entity the distance to
// its nearest root as its depth. Entities unreachable from any root are
// appended below the deepest discovered level in original entity order.
//
// If the graph has no roots at all (every entity is referenced, i.e. a cycle
// or a fully-connected graph), Hierarchy falls back to force-directed
// relaxation instead.
//
// Columns are placed left to right by depth; within a column, entities stack
// vertically, centered around a shared midline.
func Hierarchy(d diagram.Diagram) diagram.Diagram {
	if len(d.Entities) == 0 {
		return d
	}

	referenced := make(map[string]bool)
	children := make(map[string][]string)
	for _, r := range d.Relationships {
		if r.Type != diagram.RelationReference {
			continue
		}
		referenced[r.Target] = true
		children[r.Source] = append(children[r.Source], r.Target)
	}

	// Multi-source BFS from the roots, in original entity order.
	depth := make(map[string]int, len(d.Entities))
	var queue []string
	for _, e := range d.Entities {
		if !referenced[e.ID] {
			depth[e.ID] = 0
			queue = append(queue, e.ID)
		}
	}
	if len(queue) == 0 {
		return Force(d)
	}

	maxDepth := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range children[curr] {
			if _, seen := depth[child]; seen {
				continue
			}
			depth[child] = depth[curr] + 1
			if depth[child] > maxDepth {
				maxDepth = depth[child]
			}
			queue = append(queue, child)
		}
	}

	// Anything BFS never reached (disconnected from every root) goes one
	// level below the deepest discovered column, in entity order.
	for _, e := range d.Entities {
		if _, seen := depth[e.ID]; !seen {
			depth[e.ID] = maxDepth + 1
		}
	}

	// Bucket entities per level, keeping original entity order per column.
	levels := make(map[int][]int)
	for i, e := range d.Entities {
		lvl := depth[e.ID]
		levels[lvl] = append(levels[lvl], i)
	}

	out := d.Clone()
	for lvl, members := range levels {
		x := hierarchyStartX + float64(lvl)*levelSpacing
		top := hierarchyCenterY - float64(len(members)-1)*nodeSpacing/2
		for slot, i := range members {
			out.Entities[i].Position = diagram.Point{
				X: x,
				Y: top + float64(slot)*nodeSpacing,
			}
		}
	}
	return out
}
