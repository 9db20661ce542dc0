// Package validation evaluates ordered rule tables against an intake session.
//
// Evaluation is first-failure-wins: rules run in declared order and the first
// violated rule's message is the only one reported. The message order a user
// sees therefore depends on the declaration order of the rule table.
package validation

import "agency-intake/internal/model"

// StepFinal tags rules that only run during final validation.
const StepFinal = -1

// View is the read-only session state rules are evaluated against.
type View interface {
	Field(name string) string
	Records(collection string) []model.SubRecord
}

// Rule is a pure predicate over a View.
type Rule struct {
	Step    int
	Field   string
	Code    string
	Message string
	// Check reports whether the rule is satisfied.
	Check func(View) bool
	// Explain, when set, builds the message from the failing state instead
	// of using Message.
	Explain func(View) string
}

func (r Rule) violation(v View) *model.ValidationMessage {
	msg := r.Message
	if r.Explain != nil {
		msg = r.Explain(v)
	}
	return &model.ValidationMessage{
		Code:    r.Code,
		Field:   r.Field,
		Step:    r.Step,
		Message: msg,
	}
}

// ValidateStep evaluates only the rules tagged for step and returns the first
// violation, or nil.
func ValidateStep(v View, rules []Rule, step int) *model.ValidationMessage {
	for _, r := range rules {
		if r.Step != step {
			continue
		}
		if !r.Check(v) {
			return r.violation(v)
		}
	}
	return nil
}

// ValidateFinal evaluates every step's rules in ascending step order, then the
// StepFinal rules, and returns the first violation, or nil.
func ValidateFinal(v View, rules []Rule) *model.ValidationMessage {
	last := -1
	for _, r := range rules {
		if r.Step > last {
			last = r.Step
		}
	}
	for step := 0; step <= last; step++ {
		if msg := ValidateStep(v, rules, step); msg != nil {
			return msg
		}
	}
	return ValidateStep(v, rules, StepFinal)
}
