// Package attachment keeps the URI-keyed set of files picked for an intake.
package attachment

import "agency-intake/internal/model"

// Set is an ordered attachment set with unique URIs.
type Set struct {
	items []model.Attachment
}

func New() *Set {
	return &Set{}
}

// MergeAdd appends every candidate whose URI is not already present, including
// duplicates inside files itself. Existing order is preserved. It returns the
// number of attachments added.
func (s *Set) MergeAdd(files []model.Attachment) int {
	seen := make(map[string]struct{}, len(s.items)+len(files))
	for _, a := range s.items {
		seen[a.URI] = struct{}{}
	}
	added := 0
	for _, a := range files {
		if a.URI == "" {
			continue
		}
		if _, ok := seen[a.URI]; ok {
			continue
		}
		seen[a.URI] = struct{}{}
		s.items = append(s.items, a)
		added++
	}
	return added
}

// RemoveByURI removes the entry with uri and reports whether one was found.
func (s *Set) RemoveByURI(uri string) bool {
	for i := range s.items {
		if s.items[i].URI == uri {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of the attachments in insertion order.
func (s *Set) List() []model.Attachment {
	out := make([]model.Attachment, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Set) Len() int { return len(s.items) }

func (s *Set) Reset() {
	s.items = nil
}
