package schema

import (
	"agency-intake/internal/model"
	"agency-intake/internal/validation"
)

var lifePolicyTypes = []string{"Term", "Endowment", "ULIP", "Money Back", "Whole Life", "Pension"}

var lifePolicy = build(&Schema{
	Kind: model.KindLifePolicy,
	Steps: []StepSpec{
		{Name: "Policy Details", Fields: policyDetailNames},
		{Name: "Policy Period", Fields: []string{FieldStartDate, FieldEndDate, FieldTerm, FieldPremiumPayingTerm, FieldPaymentMode}},
		{Name: "Nominee", Fields: []string{FieldNomineeName, FieldNomineeRelationship}},
		{Name: "Premium", Fields: []string{FieldSumInsured, FieldNetPremium, FieldGSTPercentage, FieldTotalPremium}},
		{Name: "Documents"},
	},
	Fields: concat(
		policyDetails(FieldSpec{Name: FieldPolicyType, Type: TypeEnum, Required: true, Options: lifePolicyTypes}),
		[]FieldSpec{
			{Name: FieldStartDate, Type: TypeDate, Required: true},
			{Name: FieldEndDate, Type: TypeDate, Required: true},
			{Name: FieldTerm, Type: TypeInteger, Required: true, Min: 1},
			{Name: FieldPremiumPayingTerm, Type: TypeInteger, Required: true, Min: 1},
			{Name: FieldPaymentMode, Type: TypeEnum, Required: true, Default: defaultPaymentMode, Options: paymentModes},
			{Name: FieldNomineeName, Type: TypeText, Required: true},
			{Name: FieldNomineeRelationship, Type: TypeEnum, Required: true, Options: model.Relationships},
			{Name: FieldSumInsured, Type: TypeNumber, Required: true},
		},
		premiumFields(defaultLifeGST),
	),
	Derivations: []Derivation{premiumDerivation},
}, func(s *Schema) []validation.Rule {
	return []validation.Rule{
		validation.DateAfter(s.StepOf(FieldEndDate), FieldEndDate, FieldStartDate),
		validation.NotLess(s.StepOf(FieldTerm), FieldTerm, FieldPremiumPayingTerm),
		validation.Between(s.StepOf(FieldGSTPercentage), FieldGSTPercentage, 0, 100),
		validation.NotLess(s.StepOf(FieldTotalPremium), FieldTotalPremium, FieldNetPremium),
	}
})
