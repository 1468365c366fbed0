package state

import "strings"

// Set is an ordered set of state codes. A reservation may carry several
// simultaneous states ("confirmed" and "seated" at once); insertion order
// is preserved because the front desk displays states in the order they
// were applied.
type Set struct {
	codes []string
}

// NewSet builds a Set from codes, dropping duplicates and empty strings.
func NewSet(codes ...string) Set {
	var s Set
	for _, c := range codes {
		s.add(c)
	}
	return s
}

// ParseSet parses the legacy comma-joined representation.
func ParseSet(csv string) Set {
	return NewSet(strings.Split(csv, ",")...)
}

func (s *Set) add(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" || s.Contains(code) {
		return false
	}
	s.codes = append(s.codes, code)
	return true
}

// Add appends code to the set. Returns false if it was already present.
func (s Set) Add(code string) (Set, bool) {
	out := NewSet(s.codes...)
	ok := out.add(code)
	return out, ok
}

// Remove deletes code from the set. Returns false if it was not present.
func (s Set) Remove(code string) (Set, bool) {
	code = strings.TrimSpace(code)
	if !s.Contains(code) {
		return s, false
	}
	out := Set{codes: make([]string, 0, len(s.codes)-1)}
	for _, c := range s.codes {
		if c != code {
			out.codes = append(out.codes, c)
		}
	}
	return out, true
}

// Contains reports whether code is in the set.
func (s Set) Contains(code string) bool {
	for _, c := range s.codes {
		if c == code {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the set has no states.
func (s Set) IsEmpty() bool {
	return len(s.codes) == 0
}

// Len returns the number of states in the set.
func (s Set) Len() int {
	return len(s.codes)
}

// Codes returns the codes in insertion order. The returned slice is a copy.
func (s Set) Codes() []string {
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

// String returns the comma-joined form kept in the legacy column mirror.
func (s Set) String() string {
	return strings.Join(s.codes, ",")
}
