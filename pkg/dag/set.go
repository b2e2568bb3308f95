package dag

import "slices"

// NameSet is an insertion-ordered set of package names.
// Graph edges are stored as name sets rather than node pointers, so removing
// a node never leaves a dangling reference behind.
//
// The zero value is an empty set ready to use. A nil *NameSet behaves like an
// empty set for read operations.
type NameSet struct {
	names []string
	index map[string]struct{}
}

func newNameSet() *NameSet {
	return &NameSet{index: make(map[string]struct{})}
}

// Add inserts name and reports whether it was not already present.
func (s *NameSet) Add(name string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[name]; ok {
		return false
	}
	s.index[name] = struct{}{}
	s.names = append(s.names, name)
	return true
}

// Delete removes name and reports whether it was present.
func (s *NameSet) Delete(name string) bool {
	if s == nil {
		return false
	}
	if _, ok := s.index[name]; !ok {
		return false
	}
	delete(s.index, name)
	s.names = slices.DeleteFunc(s.names, func(n string) bool { return n == name })
	return true
}

// Has reports whether name is in the set.
func (s *NameSet) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

// Len returns the number of names in the set.
func (s *NameSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Values returns a copy of the names in insertion order.
func (s *NameSet) Values() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.names)
}
