package topology

import (
	"math/rand/v2"
	"testing"

	"github.com/pkg/errors"
)

func square() []Vec3 {
	return []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
}

func TestBuildSquareRing(t *testing.T) {
	g, err := Build(square(), 2)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	want := []Edge{{0, 1}, {0, 3}, {1, 2}, {2, 3}}
	got := g.Edges()
	if len(got) != len(want) {
		t.Fatalf("expected %d edges, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("edge %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	for i := 0; i < g.Len(); i++ {
		if g.Degree(i) != 2 {
			t.Errorf("node %d: expected degree 2, got %d", i, g.Degree(i))
		}
	}
	if g.Components() != 1 {
		t.Errorf("expected a single component, got %d", g.Components())
	}
}

func TestBuildLineCapsDegree(t *testing.T) {
	// x = 0, 1, 3, 7: node 3's nearest are already saturated.
	pos := []Vec3{{0, 0, 0}, {1, 0, 0}, {3, 0, 0}, {7, 0, 0}}
	g, err := Build(pos, 2)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(g.Edges()) != 3 {
		t.Errorf("expected 3 edges, got %v", g.Edges())
	}
	if g.Degree(3) != 0 {
		t.Errorf("expected node 3 isolated, got degree %d", g.Degree(3))
	}
	if g.Components() != 2 {
		t.Errorf("expected 2 components, got %d", g.Components())
	}
}

func TestBuildInvariants(t *testing.T) {
	tests := []struct {
		name string
		n, k int
		seed uint64
	}{
		{"tiny", 2, 1, 1},
		{"k zero", 10, 0, 2},
		{"k above n", 5, 10, 3},
		{"default", 300, 4, 4},
		{"dense", 60, 12, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rand.New(rand.NewPCG(tt.seed, 0))
			g, err := Build(RandomPositions(tt.n, 30, r), tt.k)
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			checkSimple(t, g, tt.k)
		})
	}
}

func checkSimple(t *testing.T, g *Graph, k int) {
	t.Helper()
	seen := make(map[Edge]bool)
	for _, e := range g.Edges() {
		if e.I == e.J {
			t.Errorf("self-loop on %d", e.I)
		}
		if e.I > e.J {
			t.Errorf("edge %v not canonical", e)
		}
		if seen[e] {
			t.Errorf("duplicate edge %v", e)
		}
		seen[e] = true
	}
	limit := k
	if limit > g.Len()-1 {
		limit = g.Len() - 1
	}
	for i := 0; i < g.Len(); i++ {
		if d := g.Degree(i); d < 0 || d > limit {
			t.Errorf("node %d: degree %d outside [0, %d]", i, d, limit)
		}
	}
}

func TestBuildIndexedMatchesBrute(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		r := rand.New(rand.NewPCG(seed, 7))
		pos := RandomPositions(120, 30, r)

		brute, err := Build(pos, 4)
		if err != nil {
			t.Fatalf("build failed: %v", err)
		}
		indexed, err := BuildIndexed(pos, 4)
		if err != nil {
			t.Fatalf("indexed build failed: %v", err)
		}

		if len(brute.Edges()) != len(indexed.Edges()) {
			t.Fatalf("seed %d: edge count %d vs %d", seed, len(brute.Edges()), len(indexed.Edges()))
		}
		for i, e := range brute.Edges() {
			if indexed.Edges()[i] != e {
				t.Errorf("seed %d: edge %d differs: %v vs %v", seed, i, e, indexed.Edges()[i])
			}
		}
		checkSimple(t, indexed, 4)
	}
}

func TestBuildRejectsBadArgs(t *testing.T) {
	if _, err := Build(nil, 2); !errors.Is(err, ErrInvalidArgs) {
		t.Errorf("empty positions: expected ErrInvalidArgs, got %v", err)
	}
	if _, err := BuildIndexed(square(), -1); !errors.Is(err, ErrInvalidArgs) {
		t.Errorf("negative k: expected ErrInvalidArgs, got %v", err)
	}
}

func TestRandomPositionsInsideBox(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 9))
	for _, p := range RandomPositions(500, 30, r) {
		for d := 0; d < 3; d++ {
			if p[d] < -15 || p[d] >= 15 {
				t.Fatalf("coordinate %f outside cube", p[d])
			}
		}
	}
}
