package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
)

// UserSet is an ordered, duplicate-free list of user IDs. It is stored as a
// JSON array (jsonb in Postgres, a BSON array in Mongo).
//
// Methods never mutate the receiver; they return a new set.
type UserSet []string

// Contains reports whether id is a member of the set.
func (s UserSet) Contains(id string) bool {
	return slices.Contains(s, id)
}

// Add returns a copy of s with id appended. Adding an existing member
// returns an unchanged copy.
func (s UserSet) Add(id string) UserSet {
	out := s.clone()
	if s.Contains(id) {
		return out
	}
	return append(out, id)
}

// Remove returns a copy of s without id.
func (s UserSet) Remove(id string) UserSet {
	out := make(UserSet, 0, len(s))
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Toggle adds id when absent and removes it when present.
func (s UserSet) Toggle(id string) UserSet {
	if s.Contains(id) {
		return s.Remove(id)
	}
	return s.Add(id)
}

func (s UserSet) clone() UserSet {
	out := make(UserSet, len(s), len(s)+1)
	copy(out, s)
	return out
}

// Normalize drops duplicates and empty IDs, keeping the first occurrence.
func (s UserSet) Normalize() UserSet {
	out := make(UserSet, 0, len(s))
	for _, v := range s {
		if v == "" || out.Contains(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// MarshalJSON encodes a nil set as [] rather than null.
func (s UserSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// Value implements driver.Valuer.
func (s UserSet) Value() (driver.Value, error) {
	b, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for jsonb columns.
func (s *UserSet) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = UserSet{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan user set: unsupported type %T", src)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("scan user set: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	*s = UserSet(ids)
	return nil
}
