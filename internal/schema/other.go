package schema

import (
	"agency-intake/internal/model"
	"agency-intake/internal/validation"
)

// Other policies cover any line of business without a dedicated wizard, so
// the policy type is free text.
var otherPolicy = build(&Schema{
	Kind: model.KindOtherPolicy,
	Steps: []StepSpec{
		{Name: "Policy Details", Fields: policyDetailNames},
		{Name: "Policy Period", Fields: []string{FieldStartDate, FieldEndDate, FieldTerm, FieldPaymentMode}},
		{Name: "Premium", Fields: []string{FieldSumInsured, FieldNetPremium, FieldGSTPercentage, FieldTotalPremium, FieldDescription}},
		{Name: "Documents"},
	},
	Fields: concat(
		policyDetails(FieldSpec{Name: FieldPolicyType, Type: TypeText, Required: true}),
		[]FieldSpec{
			{Name: FieldStartDate, Type: TypeDate, Required: true},
			{Name: FieldEndDate, Type: TypeDate, Required: true},
			{Name: FieldTerm, Type: TypeInteger, Required: true, Default: defaultTerm, Min: 1},
			{Name: FieldPaymentMode, Type: TypeEnum, Required: true, Default: defaultPaymentMode, Options: paymentModes},
			{Name: FieldSumInsured, Type: TypeNumber, Required: true},
		},
		premiumFields(defaultGST),
		[]FieldSpec{{Name: FieldDescription, Type: TypeText}},
	),
	Derivations: []Derivation{premiumDerivation},
}, func(s *Schema) []validation.Rule {
	return []validation.Rule{
		validation.DateAfter(s.StepOf(FieldEndDate), FieldEndDate, FieldStartDate),
		validation.Between(s.StepOf(FieldGSTPercentage), FieldGSTPercentage, 0, 100),
		validation.NotLess(s.StepOf(FieldTotalPremium), FieldTotalPremium, FieldNetPremium),
	}
})
