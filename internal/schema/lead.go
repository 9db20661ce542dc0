package schema

import (
	"agency-intake/internal/model"
	"agency-intake/internal/validation"
)

var (
	leadProducts = []string{"Health", "Life", "Motor", "Other"}
	leadSources  = []string{"Referral", "Walk-in", "Website", "Social Media", "Cold Call", "Other"}
)

var lead = build(&Schema{
	Kind: model.KindLead,
	Steps: []StepSpec{
		{Name: "Lead Details", Fields: []string{FieldFullName, FieldMobile, FieldEmail, FieldInterestedIn}},
		{Name: "Follow Up", Fields: []string{FieldSource, FieldExpectedPremium, FieldFollowUpDate, FieldNotes}},
	},
	Fields: []FieldSpec{
		{Name: FieldFullName, Type: TypeText, Required: true},
		{Name: FieldMobile, Type: TypeText, Required: true},
		{Name: FieldEmail, Type: TypeText},
		{Name: FieldInterestedIn, Type: TypeEnum, Required: true, Options: leadProducts},
		{Name: FieldSource, Type: TypeEnum, Required: true, Default: "Referral", Options: leadSources},
		{Name: FieldExpectedPremium, Type: TypeNumber},
		{Name: FieldFollowUpDate, Type: TypeDate},
		{Name: FieldNotes, Type: TypeText},
	},
}, func(s *Schema) []validation.Rule {
	details := s.StepOf(FieldMobile)
	return []validation.Rule{
		validation.Mobile(details, FieldMobile),
		validation.Email(details, FieldEmail),
	}
})
