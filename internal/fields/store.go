// Package fields holds the flat name/value record of an intake session.
//
// Values are stored exactly as entered. Coercion to numbers and dates is
// deferred to payload building so in-progress text stays editable.
package fields

import "sort"

// Store is the FieldStore of one intake session. It is not safe for
// concurrent use; the owning session serializes access.
type Store struct {
	defaults map[string]string
	values   map[string]string
	dirty    bool
}

// New returns a store seeded with a copy of defaults.
func New(defaults map[string]string) *Store {
	s := &Store{defaults: copyMap(defaults)}
	s.Reset()
	return s
}

// Set overwrites name with value and marks the store dirty.
func (s *Store) Set(name, value string) {
	s.values[name] = value
	s.dirty = true
}

// Get returns the value for name, or "" when unset.
func (s *Store) Get(name string) string {
	return s.values[name]
}

// Reset restores the kind defaults and clears the dirty flag.
func (s *Store) Reset() {
	s.values = copyMap(s.defaults)
	s.dirty = false
}

// Dirty reports whether any Set happened since the last Reset.
func (s *Store) Dirty() bool {
	return s.dirty
}

// Default returns the documented default for name.
func (s *Store) Default(name string) string {
	return s.defaults[name]
}

// Snapshot returns a copy of every non-empty value.
func (s *Store) Snapshot() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Defaults returns a copy of the defaults, omitting empty ones.
func (s *Store) Defaults() map[string]string {
	out := make(map[string]string, len(s.defaults))
	for k, v := range s.defaults {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Names returns the names of all non-empty values in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.values))
	for k, v := range s.values {
		if v != "" {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
