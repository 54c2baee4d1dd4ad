package dupindex

// DuplicateGroup is a key shared by more than one indexed file
type DuplicateGroup struct {
	Count int          `json:"count"`
	Key   string       `json:"key"`
	Files []FileRecord `json:"files"`
}

// Paths returns the full path of every file in the group
func (g DuplicateGroup) Paths() []string {
	paths := make([]string, 0, len(g.Files))
	for _, f := range g.Files {
		paths = append(paths, f.Path())
	}
	return paths
}

// ReclaimableBytes is the size of all but the first file of the group.
// Only meaningful for digest groups, where every member has the same content.
func (g DuplicateGroup) ReclaimableBytes() int64 {
	var total int64
	for _, f := range g.Files[min(1, len(g.Files)):] {
		total += f.Size
	}
	return total
}

// DuplicateSummary totals a duplicate listing
type DuplicateSummary struct {
	Groups      int   `json:"groups"`
	Files       int   `json:"files"`
	Reclaimable int64 `json:"reclaimable_bytes"`
}

// Summarise totals groups
func Summarise(groups []DuplicateGroup) DuplicateSummary {
	var s DuplicateSummary
	for _, g := range groups {
		s.Groups++
		s.Files += g.Count
		s.Reclaimable += g.ReclaimableBytes()
	}
	return s
}
