package grades

// Update pairs the stored and freshly fetched version of one course.
type Update struct {
	Previous Grade `json:"previous"`
	Current  Grade `json:"current"`
}

// ChangeSet is the result of comparing two snapshots. Courses that vanish
// from the newer snapshot are not reported.
type ChangeSet struct {
	Added   []Grade  `json:"added"`
	Updated []Update `json:"updated"`
}

func (c ChangeSet) Empty() bool {
	return len(c.Added) == 0 && len(c.Updated) == 0
}

func (c ChangeSet) Len() int {
	return len(c.Added) + len(c.Updated)
}

// Index keys grades by course code, keeping the first occurrence.
func Index(list []Grade) map[string]Grade {
	out := make(map[string]Grade, len(list))
	for _, g := range list {
		if _, exists := out[g.CourseCode]; exists {
			continue
		}
		out[g.CourseCode] = g
	}
	return out
}

// Changed reports whether the grade label or GPA differ.
func Changed(previous, current Grade) bool {
	return previous.RawGradeLabel != current.RawGradeLabel ||
		!equalOptional(previous.GPA, current.GPA)
}

// Diff compares the previous snapshot against the current one, keyed by
// course code. The order of the result follows current.
func Diff(previous, current []Grade) ChangeSet {
	prev := Index(previous)
	seen := make(map[string]bool, len(current))

	var changes ChangeSet
	for _, g := range current {
		if seen[g.CourseCode] {
			continue
		}
		seen[g.CourseCode] = true

		old, exists := prev[g.CourseCode]
		if !exists {
			changes.Added = append(changes.Added, g)
			continue
		}
		if Changed(old, g) {
			changes.Updated = append(changes.Updated, Update{Previous: old, Current: g})
		}
	}
	return changes
}
