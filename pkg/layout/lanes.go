package layout

import "sort"

// LaneAssignment places one interval (by input index) into a lane of its group.
type LaneAssignment struct {
	Index     int
	Lane      int
	LaneCount int
}

// AssignLanes gives every group member its own lane, ordered by start minute
// with the input index as tie-break. The lane count is the group size, not
// the chromatic number of the overlap graph: two members that never touch
// each other still get separate lanes when a third member links them.
func AssignLanes(group []int, intervals []Interval) []LaneAssignment {
	ordered := make([]int, len(group))
	copy(ordered, group)
	sort.SliceStable(ordered, func(a, b int) bool {
		ia, ib := ordered[a], ordered[b]
		if intervals[ia].Start != intervals[ib].Start {
			return intervals[ia].Start < intervals[ib].Start
		}
		return ia < ib
	})

	out := make([]LaneAssignment, len(ordered))
	for lane, idx := range ordered {
		out[lane] = LaneAssignment{Index: idx, Lane: lane, LaneCount: len(ordered)}
	}
	return out
}
