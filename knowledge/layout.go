package knowledge

import (
	"fmt"
	"math"

	"github.com/poiesic/secondbrain/core"
)

const (
	DefaultIterations = 100
	DefaultMargin     = 100.0

	outerRingFactor = 1.8
	minDistance     = 0.1
	gridScale       = 1e6
)

// LayoutOptions describes the canvas a graph is laid out on. Zero
// Iterations and Margin take the defaults.
type LayoutOptions struct {
	Width      float64
	Height     float64
	Iterations int
	Margin     float64
}

// NodePosition is where a node ends up on the canvas. ID is the card ID for
// card nodes and the entity name for entity nodes.
type NodePosition struct {
	ID   string
	Type core.NodeType
	X    float64
	Y    float64
}

type nodeKey struct {
	typ core.NodeType
	id  string
}

type vec struct{ x, y float64 }

// Layout places the central card at the centre of the canvas, the entities
// on a ring of radius min(width, height)/3 around it and the related cards
// on a ring 1.8 times as wide, then refines the positions with a
// force-directed pass.
//
// Every pair of nodes repels with force k²/d and every connection attracts
// its endpoints with force d²/k, where k = sqrt(area / nodes). Each step is
// capped by a temperature that starts at width/10 and falls linearly to
// zero. Nodes are kept at least Margin away from the canvas edges and
// positions are kept on a micro-pixel grid.
//
// The result is deterministic and ordered central card, entities, related
// cards. Connections to nodes that are not in the graph are ignored.
func Layout(graph *core.KnowledgeGraph, opts LayoutOptions) ([]NodePosition, error) {
	if graph == nil || graph.CentralCard == nil {
		return nil, ErrNilGraph
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas %gx%g", opts.Width, opts.Height)
	}
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultIterations
	}
	if opts.Margin <= 0 {
		opts.Margin = DefaultMargin
	}

	nodes, index := graphNodes(graph)
	pos := initialPositions(nodes, opts)

	k := math.Sqrt(opts.Width * opts.Height / float64(len(nodes)))
	startTemp := opts.Width / 10
	minX, maxX := bounds(opts.Margin, opts.Width)
	minY, maxY := bounds(opts.Margin, opts.Height)

	disp := make([]vec, len(nodes))
	for iter := 0; iter < opts.Iterations; iter++ {
		for v := range nodes {
			disp[v] = vec{}
			for u := range nodes {
				if u == v {
					continue
				}
				dx, dy := pos[v].x-pos[u].x, pos[v].y-pos[u].y
				d := max(minDistance, math.Hypot(dx, dy))
				force := k * k / d
				disp[v].x += dx / d * force
				disp[v].y += dy / d * force
			}
		}

		for _, conn := range graph.Connections {
			s, ok := index[nodeKey{conn.SourceType, conn.SourceID}]
			if !ok {
				continue
			}
			t, ok := index[nodeKey{conn.TargetType, conn.TargetID}]
			if !ok || s == t {
				continue
			}
			dx, dy := pos[s].x-pos[t].x, pos[s].y-pos[t].y
			d := max(minDistance, math.Hypot(dx, dy))
			force := d * d / k
			fx, fy := dx/d*force, dy/d*force
			disp[s].x -= fx
			disp[s].y -= fy
			disp[t].x += fx
			disp[t].y += fy
		}

		temp := startTemp * (1 - float64(iter)/float64(opts.Iterations))
		for v := range nodes {
			length := max(minDistance, math.Hypot(disp[v].x, disp[v].y))
			step := min(length, temp)
			pos[v].x = clamp(quantize(pos[v].x+disp[v].x/length*step), minX, maxX)
			pos[v].y = clamp(quantize(pos[v].y+disp[v].y/length*step), minY, maxY)
		}
	}

	out := make([]NodePosition, len(nodes))
	for i, n := range nodes {
		out[i] = NodePosition{ID: n.id, Type: n.typ, X: pos[i].x, Y: pos[i].y}
	}
	return out, nil
}

// graphNodes lists the distinct nodes of graph in layout order.
func graphNodes(graph *core.KnowledgeGraph) ([]nodeKey, map[nodeKey]int) {
	nodes := make([]nodeKey, 0, 1+len(graph.Entities)+len(graph.RelatedCards))
	index := make(map[nodeKey]int, cap(nodes))
	add := func(k nodeKey) {
		if _, dup := index[k]; dup {
			return
		}
		index[k] = len(nodes)
		nodes = append(nodes, k)
	}

	add(nodeKey{core.NodeCard, graph.CentralCard.ID})
	for _, e := range graph.Entities {
		add(nodeKey{core.NodeEntity, e.Name})
	}
	for _, c := range graph.RelatedCards {
		if c != nil {
			add(nodeKey{core.NodeCard, c.ID})
		}
	}
	return nodes, index
}

func initialPositions(nodes []nodeKey, opts LayoutOptions) []vec {
	cx, cy := opts.Width/2, opts.Height/2
	radius := min(opts.Width, opts.Height) / 3

	var entities, cards int
	for _, n := range nodes[1:] {
		if n.typ == core.NodeEntity {
			entities++
		} else {
			cards++
		}
	}

	pos := make([]vec, len(nodes))
	pos[0] = vec{cx, cy}
	var ei, ci int
	for i, n := range nodes[1:] {
		if n.typ == core.NodeEntity {
			pos[i+1] = onRing(cx, cy, radius, ei, entities)
			ei++
		} else {
			pos[i+1] = onRing(cx, cy, radius*outerRingFactor, ci, cards)
			ci++
		}
	}
	return pos
}

// onRing returns point i of n spaced evenly on a circle, starting at angle
// zero. Quarter turns land exactly on the axes so symmetric graphs start
// symmetric.
func onRing(cx, cy, radius float64, i, n int) vec {
	angle := 2 * math.Pi * float64(i) / float64(n)
	return vec{cx + radius*snap(math.Cos(angle)), cy + radius*snap(math.Sin(angle))}
}

func snap(v float64) float64 {
	const eps = 1e-12
	switch {
	case math.Abs(v) < eps:
		return 0
	case math.Abs(v-1) < eps:
		return 1
	case math.Abs(v+1) < eps:
		return -1
	}
	return v
}

// bounds returns the allowed range along one axis. A margin wider than half
// the canvas pins nodes to the middle.
func bounds(margin, size float64) (float64, float64) {
	lo := min(margin, size/2)
	return lo, max(size-margin, lo)
}

// quantize rounds v to the position grid. Rounding error in the force sums
// stays below the grid, so it cannot grow into drift across iterations.
func quantize(v float64) float64 {
	return math.Round(v*gridScale) / gridScale
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
