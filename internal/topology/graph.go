package topology

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ErrInvalidArgs is wrapped by every construction error.
var ErrInvalidArgs = errors.New("invalid graph arguments")

// Edge is an undirected link stored with I < J.
type Edge struct {
	I, J int
}

func canonical(i, j int) Edge {
	if i > j {
		i, j = j, i
	}
	return Edge{I: i, J: j}
}

// Graph is the fixed neighbour graph of a spin system.
type Graph struct {
	g     *simple.UndirectedGraph
	adj   [][]int
	edges []Edge
	k     int
}

func newGraph(n, k int) *Graph {
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	hint := k
	if hint > n-1 {
		hint = n - 1
	}
	return &Graph{
		g:     g,
		adj:   make([][]int, n),
		edges: make([]Edge, 0, n*hint/2+1),
		k:     k,
	}
}

// link adds (i, j) unless it is a self-loop, already present, or would push
// either endpoint past the neighbour limit.
func (gr *Graph) link(i, j int) bool {
	if i == j || gr.g.HasEdgeBetween(int64(i), int64(j)) {
		return false
	}
	if len(gr.adj[i]) >= gr.k || len(gr.adj[j]) >= gr.k {
		return false
	}
	gr.g.SetEdge(gr.g.NewEdge(simple.Node(i), simple.Node(j)))
	gr.adj[i] = append(gr.adj[i], j)
	gr.adj[j] = append(gr.adj[j], i)
	gr.edges = append(gr.edges, canonical(i, j))
	return true
}

func (gr *Graph) Len() int { return len(gr.adj) }

// Edges returns the edge list in insertion order. The slice must not be
// modified.
func (gr *Graph) Edges() []Edge { return gr.edges }

// Neighbors returns the adjacency of node i. The slice must not be modified.
func (gr *Graph) Neighbors(i int) []int { return gr.adj[i] }

func (gr *Graph) Degree(i int) int { return len(gr.adj[i]) }

func (gr *Graph) HasEdge(i, j int) bool {
	return gr.g.HasEdgeBetween(int64(i), int64(j))
}

// Undirected exposes the graph for gonum algorithms.
func (gr *Graph) Undirected() graph.Undirected { return gr.g }

// Components returns the number of connected components, isolated nodes
// included.
func (gr *Graph) Components() int {
	return len(topo.ConnectedComponents(gr.Undirected()))
}

type candidate struct {
	j int
	d float64
}

func byDistance(c []candidate) {
	sort.Slice(c, func(a, b int) bool {
		if c[a].d != c[b].d {
			return c[a].d < c[b].d
		}
		return c[a].j < c[b].j
	})
}

// Build links every node to its k nearest others by brute force. A node may
// end up with fewer than k links when its nearest neighbours are already
// linked to it or already saturated.
func Build(positions []Vec3, k int) (*Graph, error) {
	if err := checkArgs(positions, k); err != nil {
		return nil, err
	}
	n := len(positions)
	gr := newGraph(n, k)
	cands := make([]candidate, 0, n-1)
	for i := 0; i < n; i++ {
		cands = cands[:0]
		for j := 0; j < n; j++ {
			if j != i {
				cands = append(cands, candidate{j: j, d: positions[i].DistSq(positions[j])})
			}
		}
		byDistance(cands)
		gr.linkNearest(i, cands)
	}
	return gr, nil
}

func (gr *Graph) linkNearest(i int, sorted []candidate) {
	limit := gr.k
	if limit > len(sorted) {
		limit = len(sorted)
	}
	for _, c := range sorted[:limit] {
		gr.link(i, c.j)
	}
}

func checkArgs(positions []Vec3, k int) error {
	if len(positions) == 0 {
		return errors.Wrap(ErrInvalidArgs, "no positions")
	}
	if k < 0 {
		return errors.Wrapf(ErrInvalidArgs, "negative neighbour count %d", k)
	}
	return nil
}
