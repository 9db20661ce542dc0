// Package steps implements the ordered step state machine of a wizard.
package steps

import "agency-intake/internal/model"

// Step is one page of a wizard.
type Step struct {
	Name           string   `json:"name" yaml:"name"`
	RequiredFields []string `json:"required_fields,omitempty" yaml:"required_fields,omitempty"`
}

// Gate reports the first blocking message for the step at index, or nil.
type Gate func(index int) *model.ValidationMessage

// Sequence tracks the current step. Forward moves are gated, backward moves
// are not.
type Sequence struct {
	steps []Step
	index int
	gate  Gate
}

// New returns a sequence positioned at step 0. A nil gate never blocks.
func New(steps []Step, gate Gate) *Sequence {
	if gate == nil {
		gate = func(int) *model.ValidationMessage { return nil }
	}
	return &Sequence{steps: steps, gate: gate}
}

func (s *Sequence) Current() Step { return s.steps[s.index] }

func (s *Sequence) Index() int { return s.index }

func (s *Sequence) Len() int { return len(s.steps) }

func (s *Sequence) LastIndex() int { return len(s.steps) - 1 }

func (s *Sequence) IsLast() bool { return s.index == s.LastIndex() }

// Steps returns a copy of the step list.
func (s *Sequence) Steps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Blocker returns the message that keeps the current step from advancing.
func (s *Sequence) Blocker() *model.ValidationMessage {
	return s.gate(s.index)
}

// CanAdvance delegates to the gate for the current step.
func (s *Sequence) CanAdvance() bool {
	return s.Blocker() == nil
}

// Next moves forward one step when the gate passes. On a blocked step the index
// is unchanged and the blocking message is returned for the caller to surface.
// Next on the last step is a no-op.
func (s *Sequence) Next() (*model.ValidationMessage, bool) {
	if msg := s.Blocker(); msg != nil {
		return msg, false
	}
	if s.IsLast() {
		return nil, false
	}
	s.index++
	return nil, true
}

// Previous moves back one step. At step 0 it stays put and returns true, which
// the caller forwards to navigation as an exit request.
func (s *Sequence) Previous() (exit bool) {
	if s.index == 0 {
		return true
	}
	s.index--
	return false
}

// JumpTo moves to index clamped to [0, LastIndex] without consulting the gate.
func (s *Sequence) JumpTo(index int) {
	switch {
	case index < 0:
		index = 0
	case index > s.LastIndex():
		index = s.LastIndex()
	}
	s.index = index
}

func (s *Sequence) Reset() {
	s.index = 0
}
