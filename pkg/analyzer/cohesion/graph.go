package cohesion

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/stat"
)

// overlapGraph is the pairwise similarity view of a unit's blocks. Nodes
// are block indices; an edge means the two blocks share enough of their
// identifier signal to be considered related.
type overlapGraph struct {
	adj    [][]int
	scores []float64
}

// buildOverlapGraph scores every block pair and connects those at or above
// threshold. For class units, a method that references another method's
// name is connected to it regardless of score, since a call chain keeps
// the pair cohesive even without shared state.
func buildOverlapGraph(u *Unit, threshold int, names *interner) *overlapGraph {
	n := len(u.Blocks)
	g := &overlapGraph{
		adj: make([][]int, n),
	}
	signals := make([]*roaring.Bitmap, n)
	for i, b := range u.Blocks {
		signals[i] = b.signal(u.Kind)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			score := overlapScore(signals[i], signals[j])
			g.scores = append(g.scores, score)

			connected := score >= float64(threshold)
			if !connected && u.Kind == UnitClass {
				connected = callsBetween(u.Blocks[i], u.Blocks[j], names)
			}
			if connected {
				g.adj[i] = append(g.adj[i], j)
				g.adj[j] = append(g.adj[j], i)
			}
		}
	}
	return g
}

// overlapScore is the Jaccard similarity of two identifier sets as a
// percentage. A block with no signal at all cannot witness incohesion, so
// an empty side scores 100 and never splits a component by itself.
func overlapScore(a, b *roaring.Bitmap) float64 {
	if a.IsEmpty() || b.IsEmpty() {
		return 100
	}
	inter := roaring.And(a, b).GetCardinality()
	union := roaring.Or(a, b).GetCardinality()
	return float64(inter) / float64(union) * 100
}

// callsBetween reports whether either method block references the other's
// name through the receiver.
func callsBetween(a, b *Block, names *interner) bool {
	if id, ok := names.lookup(b.Label); ok && b.Label != "" && a.members.Contains(id) {
		return true
	}
	if id, ok := names.lookup(a.Label); ok && a.Label != "" && b.members.Contains(id) {
		return true
	}
	return false
}

// components returns the connected components of the graph as sorted index
// groups, discovered with a breadth-first search from each unvisited node.
func (g *overlapGraph) components() [][]int {
	n := len(g.adj)
	visited := make([]bool, n)
	var comps [][]int

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		visited[start] = true
		comp := []int{start}
		queue := []int{start}
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			for _, next := range g.adj[node] {
				if visited[next] {
					continue
				}
				visited[next] = true
				comp = append(comp, next)
				queue = append(queue, next)
			}
		}
		sort.Ints(comp)
		comps = append(comps, comp)
	}
	return comps
}

// averageScore is the mean over all pairwise scores, a diagnostic for how
// close the unit sits to its threshold.
func (g *overlapGraph) averageScore() float64 {
	if len(g.scores) == 0 {
		return 0
	}
	return stat.Mean(g.scores, nil)
}
