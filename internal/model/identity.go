package model

import (
	"encoding/json"
	"sort"
	"strings"
)

// NormalizeIdentity trims and lowercases an identity so set membership is
// compared on the canonical form.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// IdentitySet is a set of member identities. The zero value is an empty set.
type IdentitySet struct {
	items map[string]struct{}
}

// NewIdentitySet builds a set from identities, dropping blanks and duplicates.
func NewIdentitySet(identities ...string) IdentitySet {
	s := IdentitySet{}
	for _, identity := range identities {
		s.Add(identity)
	}
	return s
}

// Add inserts identity and reports whether it was not already present.
func (s *IdentitySet) Add(identity string) bool {
	identity = NormalizeIdentity(identity)
	if identity == "" {
		return false
	}
	if s.items == nil {
		s.items = make(map[string]struct{})
	}
	if _, ok := s.items[identity]; ok {
		return false
	}
	s.items[identity] = struct{}{}
	return true
}

// Contains reports whether identity is in the set.
func (s IdentitySet) Contains(identity string) bool {
	_, ok := s.items[NormalizeIdentity(identity)]
	return ok
}

// Len returns the number of identities.
func (s IdentitySet) Len() int {
	return len(s.items)
}

// Slice returns the identities in sorted order.
func (s IdentitySet) Slice() []string {
	out := make([]string, 0, len(s.items))
	for identity := range s.items {
		out = append(out, identity)
	}
	sort.Strings(out)
	return out
}

// Intersects reports whether s and other share any identity.
func (s IdentitySet) Intersects(other IdentitySet) bool {
	small, large := s, other
	if small.Len() > large.Len() {
		small, large = large, small
	}
	for identity := range small.items {
		if large.Contains(identity) {
			return true
		}
	}
	return false
}

// Clone returns an independent copy.
func (s IdentitySet) Clone() IdentitySet {
	return NewIdentitySet(s.Slice()...)
}

// MarshalJSON encodes the set as a sorted array.
func (s IdentitySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON decodes an array of identities.
func (s *IdentitySet) UnmarshalJSON(data []byte) error {
	var identities []string
	if err := json.Unmarshal(data, &identities); err != nil {
		return err
	}
	*s = NewIdentitySet(identities...)
	return nil
}
