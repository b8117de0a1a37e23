package production

import (
	"math"

	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
)

// Unreachable is the distance reported when no directed path exists
const Unreachable = -1

// Graph is the production dependency graph: one node per part type and an edge
// input -> output for every transformation some machine can run. Distances are
// unweighted path lengths.
type Graph struct {
	catalog   *catalog.Catalog
	adjacency [][]catalog.PartTypeID
	toGoal    map[catalog.PartTypeID][]int
}

// NewGraph builds the graph over the given transformations. Repeated inputs and
// shared edges collapse into a single edge.
func NewGraph(c *catalog.Catalog, transformations []*catalog.Transformation) *Graph {
	g := &Graph{
		catalog:   c,
		adjacency: make([][]catalog.PartTypeID, c.PartTypeCount()),
		toGoal:    make(map[catalog.PartTypeID][]int),
	}

	edges := make(map[[2]catalog.PartTypeID]bool)
	for _, t := range transformations {
		for _, req := range t.Requirements() {
			edge := [2]catalog.PartTypeID{req.PartType, t.Output}
			if edges[edge] {
				continue
			}
			edges[edge] = true
			g.adjacency[req.PartType] = append(g.adjacency[req.PartType], t.Output)
		}
	}
	return g
}

// Catalog returns the catalog whose part types are the graph nodes
func (g *Graph) Catalog() *catalog.Catalog { return g.catalog }

// Successors returns the part types directly produced from a part type
func (g *Graph) Successors(id catalog.PartTypeID) []catalog.PartTypeID {
	return append([]catalog.PartTypeID(nil), g.adjacency[id]...)
}

// Distance returns the shortest directed path length from one part type to
// another. A type is at distance 0 from itself. ok is false when to is unreachable.
func (g *Graph) Distance(from, to catalog.PartTypeID) (int, bool) {
	d := g.DistancesTo(to)[from]
	return d, d != Unreachable
}

// DistanceByName resolves both part types by name before calling Distance
func (g *Graph) DistanceByName(from, to string) (int, bool, error) {
	src, ok := g.catalog.PartTypeByName(from)
	if !ok {
		return 0, false, &catalog.ErrUnknownPartType{Name: from}
	}
	dst, ok := g.catalog.PartTypeByName(to)
	if !ok {
		return 0, false, &catalog.ErrUnknownPartType{Name: to}
	}
	d, reachable := g.Distance(src.ID, dst.ID)
	return d, reachable, nil
}

// DistancesTo returns, indexed by part type id, the distance of every part type to
// goal, or Unreachable. The table is computed once per goal by a breadth-first
// search over reversed edges and cached; callers must not modify it.
func (g *Graph) DistancesTo(goal catalog.PartTypeID) []int {
	if cached, ok := g.toGoal[goal]; ok {
		return cached
	}

	reverse := make([][]catalog.PartTypeID, len(g.adjacency))
	for from, outputs := range g.adjacency {
		for _, to := range outputs {
			reverse[to] = append(reverse[to], catalog.PartTypeID(from))
		}
	}

	dist := make([]int, len(g.adjacency))
	for i := range dist {
		dist[i] = Unreachable
	}
	dist[goal] = 0
	queue := []catalog.PartTypeID{goal}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, prev := range reverse[current] {
			if dist[prev] != Unreachable {
				continue
			}
			dist[prev] = dist[current] + 1
			queue = append(queue, prev)
		}
	}

	g.toGoal[goal] = dist
	return dist
}

// Weight is the shaping contribution of one part of the given type: exp(-distance)
// when the goal is reachable, 0 otherwise
func (g *Graph) Weight(id, goal catalog.PartTypeID) float64 {
	d := g.DistancesTo(goal)[id]
	if d == Unreachable {
		return 0
	}
	return math.Exp(-float64(d))
}

// Potential sums Weight over a list of part types
func (g *Graph) Potential(types []catalog.PartTypeID, goal catalog.PartTypeID) float64 {
	total := 0.0
	for _, id := range types {
		total += g.Weight(id, goal)
	}
	return total
}

// Upstream returns every part type with a path to goal, goal excluded, in id order
func (g *Graph) Upstream(goal catalog.PartTypeID) []catalog.PartTypeID {
	var upstream []catalog.PartTypeID
	for id, d := range g.DistancesTo(goal) {
		if d > 0 {
			upstream = append(upstream, catalog.PartTypeID(id))
		}
	}
	return upstream
}

// Path returns one shortest path from -> ... -> to, both ends included, choosing
// the earliest-declared successor at each hop. Nil when to is unreachable.
func (g *Graph) Path(from, to catalog.PartTypeID) []catalog.PartTypeID {
	dist := g.DistancesTo(to)
	if dist[from] == Unreachable {
		return nil
	}

	path := []catalog.PartTypeID{from}
	for current := from; current != to; {
		for _, next := range g.adjacency[current] {
			if dist[next] == dist[current]-1 {
				current = next
				break
			}
		}
		path = append(path, current)
	}
	return path
}
