package schema

import (
	"agency-intake/internal/model"
	"agency-intake/internal/validation"
)

var motorPolicyTypes = []string{"Comprehensive", "Third Party", "Own Damage"}

var motorPolicy = build(&Schema{
	Kind: model.KindMotorPolicy,
	Steps: []StepSpec{
		{Name: "Policy Details", Fields: policyDetailNames},
		{Name: "Vehicle", Fields: []string{FieldVehicleNumber, FieldVehicleMake, FieldVehicleModel, FieldManufacturingYear}},
		{Name: "Policy Period", Fields: []string{FieldStartDate, FieldEndDate, FieldPaymentMode}},
		{Name: "Premium", Fields: []string{FieldSumInsured, FieldNetPremium, FieldGSTPercentage, FieldTotalPremium}},
		{Name: "Documents"},
	},
	Fields: concat(
		policyDetails(FieldSpec{Name: FieldPolicyType, Type: TypeEnum, Required: true, Options: motorPolicyTypes}),
		[]FieldSpec{
			{Name: FieldVehicleNumber, Type: TypeText, Required: true},
			{Name: FieldVehicleMake, Type: TypeText, Required: true},
			{Name: FieldVehicleModel, Type: TypeText, Required: true},
			{Name: FieldManufacturingYear, Type: TypeInteger, Required: true},
			{Name: FieldStartDate, Type: TypeDate, Required: true},
			{Name: FieldEndDate, Type: TypeDate, Required: true},
			{Name: FieldPaymentMode, Type: TypeEnum, Required: true, Default: defaultPaymentMode, Options: paymentModes},
			{Name: FieldSumInsured, Type: TypeNumber, Required: true},
		},
		premiumFields(defaultGST),
	),
	Derivations: []Derivation{premiumDerivation},
}, func(s *Schema) []validation.Rule {
	return []validation.Rule{
		validation.Between(s.StepOf(FieldManufacturingYear), FieldManufacturingYear, 1950, 2100),
		validation.DateAfter(s.StepOf(FieldEndDate), FieldEndDate, FieldStartDate),
		validation.Between(s.StepOf(FieldGSTPercentage), FieldGSTPercentage, 0, 100),
		validation.NotLess(s.StepOf(FieldTotalPremium), FieldTotalPremium, FieldNetPremium),
	}
})
