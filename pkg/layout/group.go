package layout

// GroupOverlapping partitions intervals into connected components of the
// overlap relation. A chain A-B-C joins one group even when A and C are
// disjoint. Each group lists member indices in input order and groups are
// ordered by the input index of their first member.
func GroupOverlapping(intervals []Interval) [][]int {
	if len(intervals) == 0 {
		return nil
	}

	uf := newUnionFind(len(intervals))
	for i := 0; i < len(intervals); i++ {
		for j := i + 1; j < len(intervals); j++ {
			if intervals[i].Overlaps(intervals[j]) {
				uf.union(i, j)
			}
		}
	}

	slot := make(map[int]int, len(intervals))
	groups := make([][]int, 0)
	for i := range intervals {
		root := uf.find(i)
		pos, ok := slot[root]
		if !ok {
			pos = len(groups)
			slot[root] = pos
			groups = append(groups, nil)
		}
		groups[pos] = append(groups[pos], i)
	}
	return groups
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}
