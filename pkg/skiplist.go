package dupindex

import (
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// groupContext tags every group inserted into a groupSkiplist
const groupContext = "dupes"

// groupSkiplist orders duplicate groups by key
type groupSkiplist struct {
	skiplist *zcsl.ZeroCopySkiplist[DuplicateGroup, string, string]
}

func newGroupSkiplist(maxLevels int) *groupSkiplist {
	if maxLevels < 8 {
		maxLevels = 16
	}

	getKey := func(g *DuplicateGroup) string {
		return g.Key
	}
	getSize := func(g *DuplicateGroup) int {
		return g.Count
	}

	return &groupSkiplist{
		skiplist: zcsl.MakeZeroCopySkiplist[DuplicateGroup, string, string](
			maxLevels,
			getKey,
			getSize,
			strings.Compare,
		),
	}
}

// Insert adds a group; false if a group with the same key is already present
func (gs *groupSkiplist) Insert(g *DuplicateGroup) bool {
	return gs.skiplist.Insert(g, groupContext)
}

// Groups returns the groups in key order
func (gs *groupSkiplist) Groups() []DuplicateGroup {
	out := make([]DuplicateGroup, 0, gs.skiplist.Length())
	for current := gs.skiplist.First(); current != nil; current = current.Next() {
		out = append(out, *current.Item())
	}
	return out
}

// SortDuplicateGroups returns groups ordered by key. The input is not modified.
func SortDuplicateGroups(groups []DuplicateGroup) []DuplicateGroup {
	sl := newGroupSkiplist(16)
	for i := range groups {
		g := groups[i]
		sl.Insert(&g)
	}
	return sl.Groups()
}
