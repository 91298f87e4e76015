package products

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// Set is a set of item names. The zero value is an empty set ready for
// reads; use [NewSet] or make before adding.
type Set map[string]struct{}

// NewSet returns a set holding items. Empty names are dropped.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		if it != "" {
			s[it] = struct{}{}
		}
	}
	return s
}

// Has reports whether item is in s.
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Len returns the number of items.
func (s Set) Len() int { return len(s) }

// Equal reports whether s and o hold the same items.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for it := range s {
		if _, ok := o[it]; !ok {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of s. The clone of a nil set is empty,
// not nil.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	maps.Copy(c, s)
	return c
}

// Sorted returns the items in ascending order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

func (s Set) String() string {
	return "{" + strings.Join(s.Sorted(), ", ") + "}"
}

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) {
	items := s.Sorted()
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}

// UnmarshalJSON decodes an array of item names.
func (s *Set) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewSet(items...)
	return nil
}

func (s Set) addAll(o Set) {
	maps.Copy(s, o)
}
