package engine

import (
	"context"

	"agency-intake/internal/model"
	"agency-intake/internal/refdata"
)

// LoadReferenceData fetches the company and customer lists concurrently and
// returns once both have settled. Each list is applied as soon as it arrives,
// so a slow list never holds up the other. A failed list is left empty with
// an inline message. Lists that arrive after Close are dropped.
func (s *Session) LoadReferenceData(ctx context.Context) {
	if s.loader == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.refs.Begin()
	s.mu.Unlock()

	s.loader.Load(ctx, s.tokens, func(r refdata.Result) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		s.refs.Apply(r)
	})
}

// ReferenceData returns a copy of the current reference lists.
func (s *Session) ReferenceData() refdata.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs.Clone()
}

// CompanyName resolves a company id against the loaded list.
func (s *Session) CompanyName(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lookup(s.refs.Companies.Items, id, func(c model.Company) (string, string) { return c.ID, c.Name })
}

// CustomerName resolves a customer id against the loaded list.
func (s *Session) CustomerName(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lookup(s.refs.Customers.Items, id, func(c model.Customer) (string, string) { return c.ID, c.Name })
}

func lookup[T any](items []T, id string, key func(T) (string, string)) (string, bool) {
	for _, it := range items {
		if k, name := key(it); k == id {
			return name, true
		}
	}
	return "", false
}
