package schema

import (
	"agency-intake/internal/model"
	"agency-intake/internal/validation"
)

var healthPolicyTypes = []string{
	"Individual", "Family Floater", "Senior Citizen", "Critical Illness", "Top Up", "Group",
}

var healthPolicy = build(&Schema{
	Kind: model.KindHealthPolicy,
	Steps: []StepSpec{
		{Name: "Policy Details", Fields: policyDetailNames},
		{Name: "Policy Period", Fields: []string{FieldStartDate, FieldEndDate, FieldTerm, FieldPaymentMode}},
		{Name: "Coverage", Fields: []string{FieldSumInsured}, Collection: CollectionMembers},
		{Name: "Premium", Fields: []string{FieldNetPremium, FieldGSTPercentage, FieldTotalPremium}},
		{Name: "Documents"},
	},
	Fields: concat(
		policyDetails(FieldSpec{Name: FieldPolicyType, Type: TypeEnum, Required: true, Options: healthPolicyTypes}),
		[]FieldSpec{
			{Name: FieldStartDate, Type: TypeDate, Required: true},
			{Name: FieldEndDate, Type: TypeDate, Required: true},
			{Name: FieldTerm, Type: TypeInteger, Required: true, Default: defaultTerm, Min: 1},
			{Name: FieldPaymentMode, Type: TypeEnum, Required: true, Default: defaultPaymentMode, Options: paymentModes},
			{Name: FieldSumInsured, Type: TypeNumber, Required: true},
		},
		premiumFields(defaultGST),
	),
	Collections: []CollectionSpec{{Name: CollectionMembers, Noun: members.Noun, SumInsured: true}},
	Derivations: []Derivation{premiumDerivation},
}, func(s *Schema) []validation.Rule {
	return []validation.Rule{
		validation.DateAfter(s.StepOf(FieldEndDate), FieldEndDate, FieldStartDate),
		validation.Between(s.StepOf(FieldGSTPercentage), FieldGSTPercentage, 0, 100),
		validation.NotLess(s.StepOf(FieldTotalPremium), FieldTotalPremium, FieldNetPremium),
	}
})

func concat(groups ...[]FieldSpec) []FieldSpec {
	var out []FieldSpec
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
