package schema

import (
	"agency-intake/internal/model"
	"agency-intake/internal/validation"
)

var genders = []string{"Male", "Female", "Other"}

var customer = build(&Schema{
	Kind: model.KindCustomer,
	Steps: []StepSpec{
		{Name: "Personal Details", Fields: []string{FieldFullName, FieldDateOfBirth, FieldGender, FieldPANNumber}},
		{Name: "Contact", Fields: []string{FieldMobile, FieldEmail, FieldAddress, FieldCity, FieldPincode}},
		{Name: "Family Members", Collection: CollectionMembers},
		{Name: "Documents"},
	},
	Fields: []FieldSpec{
		{Name: FieldFullName, Type: TypeText, Required: true},
		{Name: FieldDateOfBirth, Type: TypeDate, Required: true},
		{Name: FieldGender, Type: TypeEnum, Required: true, Options: genders},
		{Name: FieldPANNumber, Type: TypeText},
		{Name: FieldMobile, Type: TypeText, Required: true},
		{Name: FieldEmail, Type: TypeText},
		{Name: FieldAddress, Type: TypeText, Required: true},
		{Name: FieldCity, Type: TypeText, Required: true},
		{Name: FieldPincode, Type: TypeText, Required: true},
	},
	Collections: []CollectionSpec{members},
}, func(s *Schema) []validation.Rule {
	contact := s.StepOf(FieldMobile)
	return []validation.Rule{
		validation.Mobile(contact, FieldMobile),
		validation.Email(contact, FieldEmail),
		validation.Digits(contact, FieldPincode, 6),
	}
})
