package schema

import (
	"fmt"

	"agency-intake/internal/apperr"
	"agency-intake/internal/model"
)

var registry = map[model.Kind]*Schema{
	model.KindHealthPolicy: healthPolicy,
	model.KindLifePolicy:   lifePolicy,
	model.KindMotorPolicy:  motorPolicy,
	model.KindOtherPolicy:  otherPolicy,
	model.KindCustomer:     customer,
	model.KindLead:         lead,
}

// Get returns the schema for kind. Schemas are shared and must not be mutated.
func Get(kind model.Kind) (*Schema, bool) {
	s, ok := registry[kind]
	return s, ok
}

// Lookup is Get with an ErrUnknownKind error for unsupported kinds.
func Lookup(kind model.Kind) (*Schema, error) {
	s, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%q: %w", kind, apperr.ErrUnknownKind)
	}
	return s, nil
}
