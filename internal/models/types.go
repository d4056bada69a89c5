package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// IdentitySet is a sparse membership map (presence == member) stored as a
// JSON object of identity -> true. It is the column type behind both the
// post likes map and the user_likes secondary index.
type IdentitySet map[string]bool

// Has reports whether identity is a member of the set.
func (s IdentitySet) Has(identity string) bool {
	return s[identity]
}

// Toggle flips membership for identity and reports the resulting state.
func (s IdentitySet) Toggle(identity string) bool {
	if s[identity] {
		delete(s, identity)
		return false
	}
	s[identity] = true
	return true
}

// Value implements driver.Valuer.
func (s IdentitySet) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]bool(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. A NULL column scans to a nil set so callers
// can distinguish "no membership map" (legacy rows) from an empty one.
func (s *IdentitySet) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into IdentitySet", value)
	}
	if len(b) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(b, (*map[string]bool)(s))
}

// StringSet is a set of strings stored as a sorted JSON array.
type StringSet map[string]struct{}

// NewStringSet builds a set from the given values.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in lexical order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Value implements driver.Valuer.
func (s StringSet) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s.Sorted())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *StringSet) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringSet", value)
	}
	if len(b) == 0 {
		*s = nil
		return nil
	}
	var values []string
	if err := json.Unmarshal(b, &values); err != nil {
		return err
	}
	*s = NewStringSet(values...)
	return nil
}

// MarshalJSON renders the set as a sorted array for stable API payloads.
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON accepts a JSON array of strings.
func (s *StringSet) UnmarshalJSON(b []byte) error {
	var values []string
	if err := json.Unmarshal(b, &values); err != nil {
		return err
	}
	*s = NewStringSet(values...)
	return nil
}
