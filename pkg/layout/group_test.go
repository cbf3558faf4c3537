package layout

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupOverlappingEmpty(t *testing.T) {
	assert.Empty(t, GroupOverlapping(nil))
}

func TestGroupOverlappingSeparatesChainBreak(t *testing.T) {
	// A(09:00,60) B(09:30,60) C(10:45,30): A-B overlap, B ends before C starts.
	intervals := []Interval{{540, 600}, {570, 630}, {645, 675}}
	groups := GroupOverlapping(intervals)
	assert.Equal(t, [][]int{{0, 1}, {2}}, groups)
}

func TestGroupOverlappingMergesTransitively(t *testing.T) {
	// 0 and 2 are disjoint, 1 bridges them; 1 is listed last to force a late merge.
	intervals := []Interval{{540, 570}, {600, 630}, {560, 610}}
	groups := GroupOverlapping(intervals)
	assert.Equal(t, [][]int{{0, 1, 2}}, groups)
}

func TestGroupOverlappingOrdersGroupsByFirstMember(t *testing.T) {
	intervals := []Interval{{700, 730}, {540, 570}, {710, 740}, {545, 560}}
	groups := GroupOverlapping(intervals)
	assert.Equal(t, [][]int{{0, 2}, {1, 3}}, groups)
}

func TestGroupOverlappingPartitionAndClosure(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(40)
		intervals := make([]Interval, n)
		for i := range intervals {
			start := rng.Intn(MinutesPerDay)
			intervals[i] = Interval{Start: start, End: start + 5 + rng.Intn(120)}
		}

		groups := GroupOverlapping(intervals)

		owner := make(map[int]int, n)
		for g, members := range groups {
			for _, idx := range members {
				_, dup := owner[idx]
				require.False(t, dup, "index %d appears twice", idx)
				owner[idx] = g
			}
		}
		require.Len(t, owner, n)

		reach := reachability(intervals)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				assert.Equal(t, reach[i][j], owner[i] == owner[j], "pair %d,%d", i, j)
			}
		}
	}
}

// reachability computes the transitive closure of direct overlap with a
// plain BFS, independent of the union-find implementation.
func reachability(intervals []Interval) [][]bool {
	n := len(intervals)
	out := make([][]bool, n)
	for src := 0; src < n; src++ {
		seen := make([]bool, n)
		seen[src] = true
		queue := []int{src}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for next := 0; next < n; next++ {
				if !seen[next] && intervals[cur].Overlaps(intervals[next]) {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}
		out[src] = seen
	}
	return out
}
