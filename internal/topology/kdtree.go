package topology

import (
	"gonum.org/v1/gonum/spatial/kdtree"
)

// site is a position that remembers its node index through the tree's
// in-place partitioning.
type site struct {
	idx int
	pos Vec3
}

func (s site) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return s.pos[d] - c.(site).pos[d]
}

func (s site) Dims() int { return 3 }

func (s site) Distance(c kdtree.Comparable) float64 {
	return s.pos.DistSq(c.(site).pos)
}

type sites []site

func (s sites) Index(i int) kdtree.Comparable         { return s[i] }
func (s sites) Len() int                              { return len(s) }
func (s sites) Pivot(d kdtree.Dim) int                { return plane{Dim: d, sites: s}.Pivot() }
func (s sites) Slice(start, end int) kdtree.Interface { return s[start:end] }

type plane struct {
	kdtree.Dim
	sites
}

func (p plane) Less(i, j int) bool { return p.sites[i].pos[p.Dim] < p.sites[j].pos[p.Dim] }
func (p plane) Pivot() int         { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Swap(i, j int)      { p.sites[i], p.sites[j] = p.sites[j], p.sites[i] }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.sites = p.sites[start:end]
	return p
}

// BuildIndexed produces the same graph as Build, answering each k-nearest
// query through a k-d tree instead of a full scan. Results match Build
// whenever no two candidates sit at exactly the same distance.
func BuildIndexed(positions []Vec3, k int) (*Graph, error) {
	if err := checkArgs(positions, k); err != nil {
		return nil, err
	}
	n := len(positions)
	gr := newGraph(n, k)
	if k == 0 || n == 1 {
		return gr, nil
	}

	pts := make(sites, n)
	for i, p := range positions {
		pts[i] = site{idx: i, pos: p}
	}
	tree := kdtree.New(pts, false)

	want := k + 1
	if want > n {
		want = n
	}
	cands := make([]candidate, 0, want)
	for i, p := range positions {
		keep := kdtree.NewNKeeper(want)
		tree.NearestSet(keep, site{idx: i, pos: p})

		cands = cands[:0]
		for _, cd := range keep.Heap {
			if cd.Comparable == nil {
				continue
			}
			s := cd.Comparable.(site)
			if s.idx == i {
				continue
			}
			cands = append(cands, candidate{j: s.idx, d: cd.Dist})
		}
		byDistance(cands)
		gr.linkNearest(i, cands)
	}
	return gr, nil
}
