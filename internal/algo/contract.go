package algo

import (
	"errors"

	"github.com/elektrokombinacija/rgm/internal/core"
)

// Contraction outcomes, mapped to cycle reasons by resolveCycle.
var (
	errFullyContracted   = errors.New("contracted to a single loop")
	errContractionBudget = errors.New("contraction did not converge")
)

// vertex is one intersection cell. Each slot holds the edge leaving the
// cell in that direction, or arriving from the opposite side.
type vertex struct {
	edge [4]int
}

// edge is a stretch of the cycle between two intersection cells, carrying
// the robots standing on it in cycle order.
type edge struct {
	source, target       int
	sourceDir, targetDir core.Direction
	robots               []int
}

// interGraph is the intersection graph of one cycle. Vertices and edges
// live in flat arenas; merged edges are appended and the old ones simply
// become unreachable.
type interGraph struct {
	vertices []vertex
	edges    []edge
	built    int // edges created while tracing the cycle
}

func (g *interGraph) addVertex() int {
	g.vertices = append(g.vertices, vertex{edge: [4]int{none, none, none, none}})
	return len(g.vertices) - 1
}

// openEdge starts an edge leaving v in direction d.
func (g *interGraph) openEdge(v int, d core.Direction) int {
	g.edges = append(g.edges, edge{source: v, sourceDir: d, target: none})
	e := len(g.edges) - 1
	g.vertices[v].edge[d] = e
	return e
}

// closeEdge ends e at v, arriving into slot d.
func (g *interGraph) closeEdge(e, v int, d core.Direction) {
	g.edges[e].target = v
	g.edges[e].targetDir = d
	g.vertices[v].edge[d] = e
}

// next is the edge continuing straight through e's target.
func (g *interGraph) next(e int) int {
	ed := &g.edges[e]
	return g.vertices[ed.target].edge[ed.targetDir.Opposite()]
}

// prev is the edge continuing straight back through e's source.
func (g *interGraph) prev(e int) int {
	ed := &g.edges[e]
	return g.vertices[ed.source].edge[ed.sourceDir.Opposite()]
}

func (g *interGraph) selfLoop(e int) bool {
	return g.edges[e].source == g.edges[e].target
}

// buildGraph traces the cycle from the first member owning an
// intersection, opening a new edge at every intersection met along each
// member's segment. Returns the graph and the edge that closes the loop.
func (c *cycleView) buildGraph() (*interGraph, int, bool) {
	first := none
	for k := range c.robots {
		if len(c.lists[k]) > 0 {
			first = k
			break
		}
	}
	if first == none {
		return nil, none, false
	}

	g := &interGraph{}
	vertexOf := func(i int) int {
		if c.inters[i].vertex == none {
			c.inters[i].vertex = g.addVertex()
		}
		return c.inters[i].vertex
	}

	cur := none
	for k := first; ; {
		d := c.robot(k).goalDir()
		for _, i := range c.lists[k] {
			v := vertexOf(i)
			if cur != none {
				g.closeEdge(cur, v, d.Opposite())
			}
			cur = g.openEdge(v, d)
		}

		k = c.next(k)
		g.edges[cur].robots = append(g.edges[cur].robots, c.robots[k])
		if k == first {
			d0 := c.robot(first).goalDir()
			g.closeEdge(cur, c.inters[c.lists[first][0]].vertex, d0.Opposite())
			g.built = len(g.edges)
			return g, cur, true
		}
	}
}

// contract merges self-loops with their neighbours until a full lap over
// the loop finds none. Returns an edge of the contracted loop.
func (g *interGraph) contract(start int) (int, error) {
	limit := g.built
	budget := limit*(limit+1) + 1

	e, steps := start, 0
	for iter := 0; ; iter++ {
		if iter > budget {
			return none, errContractionBudget
		}
		prev, next := g.prev(e), g.next(e)
		if prev == none || next == none {
			return none, invariantf("contract", "edge %d has a dangling neighbour", e)
		}

		if !g.selfLoop(e) {
			e = next
			steps++
			if steps >= limit {
				return e, nil
			}
			continue
		}

		if prev == next {
			return none, errFullyContracted
		}
		if g.selfLoop(prev) || g.selfLoop(next) {
			return none, invariantf("contract", "self-loop %d is adjacent to another self-loop", e)
		}

		p, n := g.edges[prev], g.edges[next]
		robots := make([]int, 0, len(p.robots)+len(g.edges[e].robots)+len(n.robots))
		robots = append(robots, p.robots...)
		robots = append(robots, g.edges[e].robots...)
		robots = append(robots, n.robots...)

		g.edges = append(g.edges, edge{
			source:    p.source,
			sourceDir: p.sourceDir,
			target:    n.target,
			targetDir: n.targetDir,
			robots:    robots,
		})
		merged := len(g.edges) - 1
		g.vertices[p.source].edge[p.sourceDir] = merged
		g.vertices[n.target].edge[n.targetDir] = merged

		e, steps = merged, 0
	}
}

// rotate walks the contracted loop once from an edge carrying robots.
// Every robot on an edge steps once toward its goal, front first; the last
// robot of the previous edge then steps again into the cell just freed.
func (c *cycleView) rotate(g *interGraph, e int) error {
	limit := g.built
	for n := 0; len(g.edges[e].robots) == 0; n++ {
		if n > limit {
			return invariantf("rotate", "contracted loop carries no robots")
		}
		e = g.next(e)
	}

	start, prevLast := e, none
	for n := 0; ; n++ {
		if n > limit {
			return invariantf("rotate", "loop from edge %d does not close", start)
		}

		last := prevLast
		if rs := g.edges[e].robots; len(rs) > 0 {
			for i := len(rs) - 1; i >= 0; i-- {
				if err := c.step(rs[i]); err != nil {
					return err
				}
			}
			last = rs[len(rs)-1]
		}
		if prevLast != none {
			if err := c.step(prevLast); err != nil {
				return err
			}
		}
		prevLast = last

		e = g.next(e)
		if e == none {
			return invariantf("rotate", "dangling edge after %d", start)
		}
		if e == start {
			return c.step(prevLast)
		}
	}
}

// step moves a robot one cell toward its goal.
func (c *cycleView) step(i int) error {
	r := &c.s.robots[i]
	d := r.goalDir()
	if d == core.NoDirection {
		return invariantf("rotate", "robot %d stepped past its goal", r.ID)
	}
	return c.s.moveRobot(i, r.pos.Add(d))
}
