package payload

import (
	"fmt"
	"strings"

	"agency-intake/internal/model"
	"agency-intake/internal/schema"
)

func buildHealth(v View) (model.Payload, error) {
	r := &reader{v: v}
	p := model.HealthPolicyPayload{
		PolicyCommon: r.policyCommon(),
		PolicyTerm:   r.integer(schema.FieldTerm),
	}
	recs := v.Records(schema.CollectionMembers)
	p.Members = make([]model.InsuredMember, 0, len(recs))
	for i, rec := range recs {
		field := fmt.Sprintf("%s[%d]", schema.CollectionMembers, i)
		// A member without its own cover shares the policy sum insured.
		sumInsured := p.SumInsured
		if strings.TrimSpace(rec.SumInsured) != "" {
			sumInsured = r.memberNumber(field+"."+model.SubFieldSumInsured, rec.SumInsured)
		}
		p.Members = append(p.Members, model.InsuredMember{
			FullName:     strings.TrimSpace(rec.FullName),
			Age:          r.age(field+"."+model.SubFieldAge, rec.Age),
			Relationship: rec.Relationship,
			SumInsured:   sumInsured,
		})
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func buildLife(v View) (model.Payload, error) {
	r := &reader{v: v}
	p := model.LifePolicyPayload{
		PolicyCommon:        r.policyCommon(),
		PolicyTerm:          r.integer(schema.FieldTerm),
		PremiumPayingTerm:   r.integer(schema.FieldPremiumPayingTerm),
		NomineeName:         r.text(schema.FieldNomineeName),
		NomineeRelationship: r.text(schema.FieldNomineeRelationship),
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func buildMotor(v View) (model.Payload, error) {
	r := &reader{v: v}
	p := model.MotorPolicyPayload{
		PolicyCommon:      r.policyCommon(),
		VehicleNumber:     strings.ToUpper(strings.ReplaceAll(r.text(schema.FieldVehicleNumber), " ", "")),
		VehicleMake:       r.text(schema.FieldVehicleMake),
		VehicleModel:      r.text(schema.FieldVehicleModel),
		ManufacturingYear: r.integer(schema.FieldManufacturingYear),
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func buildOther(v View) (model.Payload, error) {
	r := &reader{v: v}
	p := model.OtherPolicyPayload{
		PolicyCommon: r.policyCommon(),
		PolicyTerm:   r.integer(schema.FieldTerm),
		Description:  r.text(schema.FieldDescription),
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func buildCustomer(v View) (model.Payload, error) {
	r := &reader{v: v}
	p := model.CustomerPayload{
		FullName:    r.text(schema.FieldFullName),
		Mobile:      r.text(schema.FieldMobile),
		Email:       r.text(schema.FieldEmail),
		DateOfBirth: r.date(schema.FieldDateOfBirth),
		Gender:      r.text(schema.FieldGender),
		Address:     r.text(schema.FieldAddress),
		City:        r.text(schema.FieldCity),
		Pincode:     r.text(schema.FieldPincode),
		PANNumber:   strings.ToUpper(r.text(schema.FieldPANNumber)),
		Documents:   documents(v.Attachments()),
	}
	recs := v.Records(schema.CollectionMembers)
	p.FamilyMembers = make([]model.FamilyMember, 0, len(recs))
	for i, rec := range recs {
		field := fmt.Sprintf("%s[%d].%s", schema.CollectionMembers, i, model.SubFieldAge)
		p.FamilyMembers = append(p.FamilyMembers, model.FamilyMember{
			FullName:     strings.TrimSpace(rec.FullName),
			Age:          r.age(field, rec.Age),
			Relationship: rec.Relationship,
		})
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func buildLead(v View) (model.Payload, error) {
	r := &reader{v: v}
	p := model.LeadPayload{
		FullName:        r.text(schema.FieldFullName),
		Mobile:          r.text(schema.FieldMobile),
		Email:           r.text(schema.FieldEmail),
		InterestedIn:    r.text(schema.FieldInterestedIn),
		Source:          r.text(schema.FieldSource),
		ExpectedPremium: r.optNumber(schema.FieldExpectedPremium),
		FollowUpDate:    r.optDate(schema.FieldFollowUpDate),
		Notes:           r.text(schema.FieldNotes),
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}
