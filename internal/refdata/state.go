package refdata

import "agency-intake/internal/model"

// ListState is what a picker renders for one list.
type ListState[T any] struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	Items   []T    `json:"items"`
}

// State holds every reference list of a session.
type State struct {
	Companies ListState[model.Company]  `json:"companies"`
	Customers ListState[model.Customer] `json:"customers"`
}

// Begin marks every list as loading and clears previous errors. Items loaded
// earlier stay visible until replaced.
func (s *State) Begin() {
	s.Companies.Loading, s.Companies.Error = true, ""
	s.Customers.Loading, s.Customers.Error = true, ""
}

// Apply records the outcome of one list. A failed list is emptied.
func (s *State) Apply(r Result) {
	switch r.List {
	case Companies:
		s.Companies = ListState[model.Company]{Error: r.Message, Items: nonNil(r.Companies)}
	case Customers:
		s.Customers = ListState[model.Customer]{Error: r.Message, Items: nonNil(r.Customers)}
	}
}

// Clone returns a copy that shares no slices with s.
func (s State) Clone() State {
	s.Companies.Items = append([]model.Company{}, s.Companies.Items...)
	s.Customers.Items = append([]model.Customer{}, s.Customers.Items...)
	return s
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
