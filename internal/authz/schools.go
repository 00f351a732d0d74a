package authz

// SchoolSet is the set of school ids an actor may touch. It is either the
// universal set (platform roles) or a finite, possibly empty set.
type SchoolSet struct {
	all bool
	ids map[int64]struct{}
}

// AllSchools returns the universal set.
func AllSchools() SchoolSet {
	return SchoolSet{all: true}
}

// Schools returns a finite set of the given ids.
func Schools(ids ...int64) SchoolSet {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return SchoolSet{ids: set}
}

// NoSchools returns the empty set. A director with zero active grants
// resolves here; there is no home-school fallback for directors.
func NoSchools() SchoolSet {
	return SchoolSet{}
}

// Contains reports whether the set covers the given school.
func (s SchoolSet) Contains(schoolID int64) bool {
	if s.all {
		return true
	}
	_, ok := s.ids[schoolID]
	return ok
}

// All reports whether the set is universal.
func (s SchoolSet) All() bool {
	return s.all
}

// Empty reports whether no school is reachable.
func (s SchoolSet) Empty() bool {
	return !s.all && len(s.ids) == 0
}

// IDs returns the finite members, nil for the universal set. Callers use
// this to narrow listing queries.
func (s SchoolSet) IDs() []int64 {
	if s.all {
		return nil
	}
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}
