// Package schema holds the static per-kind wizard definitions: ordered steps,
// typed fields with defaults, sub-record collections, derived fields and the
// validation rule table derived from them.
package schema

import (
	"fmt"

	"agency-intake/internal/coerce"
	"agency-intake/internal/model"
	"agency-intake/internal/steps"
	"agency-intake/internal/validation"
)

// FieldType is the semantic type of a field. Values are stored as text while
// editing and asserted against this type when the payload is built.
type FieldType string

const (
	TypeText      FieldType = "text"
	TypeNumber    FieldType = "number"
	TypeInteger   FieldType = "integer"
	TypeDate      FieldType = "date"
	TypeEnum      FieldType = "enum"
	TypeReference FieldType = "reference"
)

// Reference lists a field can point at.
const (
	RefCompanies = "companies"
	RefCustomers = "customers"
)

// Selection reports whether users pick the value rather than type it.
func (t FieldType) Selection() bool {
	return t == TypeEnum || t == TypeReference
}

type FieldSpec struct {
	Name      string    `json:"name" yaml:"name"`
	Type      FieldType `json:"type" yaml:"type"`
	Required  bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Default   string    `json:"default,omitempty" yaml:"default,omitempty"`
	Options   []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Reference string    `json:"reference,omitempty" yaml:"reference,omitempty"`
	// Min is the lowest value a number or integer field accepts.
	Min float64 `json:"min,omitempty" yaml:"min,omitempty"`
}

type StepSpec struct {
	Name       string   `json:"name" yaml:"name"`
	Fields     []string `json:"fields,omitempty" yaml:"fields,omitempty"`
	Collection string   `json:"collection,omitempty" yaml:"collection,omitempty"`
}

type CollectionSpec struct {
	Name string `json:"name" yaml:"name"`
	// Noun names one record in messages, e.g. "family member".
	Noun       string `json:"noun" yaml:"noun"`
	SumInsured bool   `json:"sum_insured,omitempty" yaml:"sum_insured,omitempty"`
}

// Derivation recomputes Target whenever one of Inputs is set.
type Derivation struct {
	Target string   `json:"target" yaml:"target"`
	Inputs []string `json:"inputs" yaml:"inputs"`
	// Compute returns the new target value, or false to leave it unchanged.
	Compute func(get func(string) string) (string, bool) `json:"-" yaml:"-"`
}

// Schema is the complete definition of one intake kind.
type Schema struct {
	Kind        model.Kind        `json:"kind" yaml:"kind"`
	Steps       []StepSpec        `json:"steps" yaml:"steps"`
	Fields      []FieldSpec       `json:"fields" yaml:"fields"`
	Collections []CollectionSpec  `json:"collections,omitempty" yaml:"collections,omitempty"`
	Derivations []Derivation      `json:"derivations,omitempty" yaml:"derivations,omitempty"`
	Rules       []validation.Rule `json:"-" yaml:"-"`

	fieldIndex map[string]int
}

// Field looks up a field definition by name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i, ok := s.fieldIndex[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.Fields[i], true
}

// Defaults returns the documented default of every field.
func (s *Schema) Defaults() map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Name] = f.Default
	}
	return out
}

// StepList returns the steps in the shape the step sequence uses.
func (s *Schema) StepList() []steps.Step {
	out := make([]steps.Step, len(s.Steps))
	for i, st := range s.Steps {
		var required []string
		for _, name := range st.Fields {
			if f, ok := s.Field(name); ok && f.Required {
				required = append(required, name)
			}
		}
		out[i] = steps.Step{Name: st.Name, RequiredFields: required}
	}
	return out
}

// CollectionNames returns the collection names in declaration order.
func (s *Schema) CollectionNames() []string {
	out := make([]string, len(s.Collections))
	for i, c := range s.Collections {
		out[i] = c.Name
	}
	return out
}

// DerivationsFor returns the derivations that depend on field.
func (s *Schema) DerivationsFor(field string) []Derivation {
	var out []Derivation
	for _, d := range s.Derivations {
		for _, in := range d.Inputs {
			if in == field {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// StepOf returns the index of the step that declares field, or -1.
func (s *Schema) StepOf(field string) int {
	for i, st := range s.Steps {
		for _, name := range st.Fields {
			if name == field {
				return i
			}
		}
		if st.Collection == field {
			return i
		}
	}
	return -1
}

// build validates the definition and derives the rule table. Field rules come
// first in step and field order, then collection rules, then extra.
func build(s *Schema, extra func(s *Schema) []validation.Rule) *Schema {
	s.fieldIndex = make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		if _, dup := s.fieldIndex[f.Name]; dup {
			panic(fmt.Sprintf("schema %s: duplicate field %q", s.Kind, f.Name))
		}
		s.fieldIndex[f.Name] = i
	}
	collections := make(map[string]CollectionSpec, len(s.Collections))
	for _, c := range s.Collections {
		collections[c.Name] = c
	}

	var rules []validation.Rule
	for stepIdx, st := range s.Steps {
		for _, name := range st.Fields {
			f, ok := s.Field(name)
			if !ok {
				panic(fmt.Sprintf("schema %s: step %q names unknown field %q", s.Kind, st.Name, name))
			}
			rules = append(rules, fieldRules(stepIdx, f)...)
		}
		if st.Collection != "" {
			c, ok := collections[st.Collection]
			if !ok {
				panic(fmt.Sprintf("schema %s: step %q names unknown collection %q", s.Kind, st.Name, st.Collection))
			}
			rules = append(rules,
				validation.AtLeastOneNamed(stepIdx, c.Name, c.Noun),
				validation.RecordsValid(stepIdx, c.Name, c.Noun, c.SumInsured),
			)
		}
	}
	for _, f := range s.Fields {
		if s.StepOf(f.Name) < 0 {
			panic(fmt.Sprintf("schema %s: field %q is not on any step", s.Kind, f.Name))
		}
	}
	if extra != nil {
		rules = append(rules, extra(s)...)
	}
	s.Rules = rules
	return s
}

func fieldRules(step int, f FieldSpec) []validation.Rule {
	var rules []validation.Rule
	if f.Required {
		rules = append(rules, validation.Required(step, f.Name, f.Type.Selection()))
	}
	switch f.Type {
	case TypeNumber:
		rules = append(rules, validation.Number(step, f.Name), validation.AtLeast(step, f.Name, f.Min))
	case TypeInteger:
		rules = append(rules, validation.Integer(step, f.Name), validation.AtLeast(step, f.Name, f.Min))
	case TypeDate:
		rules = append(rules, validation.Date(step, f.Name))
	case TypeEnum:
		rules = append(rules, validation.OneOf(step, f.Name, f.Options))
	}
	return rules
}

// premiumTotal derives the gross premium from net premium and GST percentage.
func premiumTotal(get func(string) string) (string, bool) {
	net, err := coerce.Number(get(FieldNetPremium))
	if err != nil {
		return "", false
	}
	gst, err := coerce.Number(get(FieldGSTPercentage))
	if err != nil {
		return "", false
	}
	total := net + net*gst/100
	if !coerce.Finite(total) {
		return "", false
	}
	return coerce.FormatNumber(total), true
}

var premiumDerivation = Derivation{
	Target:  FieldTotalPremium,
	Inputs:  []string{FieldNetPremium, FieldGSTPercentage},
	Compute: premiumTotal,
}
