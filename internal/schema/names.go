package schema

// Field names shared across kinds. They double as the source of the phrases
// shown in validation messages.
const (
	FieldClientID            = "clientId"
	FieldPolicyHolderName    = "policyHolderName"
	FieldInsuranceCompany    = "insuranceCompany"
	FieldPolicyType          = "policyType"
	FieldPolicyNumber        = "policyNumber"
	FieldStartDate           = "startDate"
	FieldEndDate             = "endDate"
	FieldTerm                = "term"
	FieldPremiumPayingTerm   = "premiumPayingTerm"
	FieldPaymentMode         = "paymentMode"
	FieldSumInsured          = "sumInsured"
	FieldNetPremium          = "netPremium"
	FieldGSTPercentage       = "gstPercentage"
	FieldTotalPremium        = "totalPremium"
	FieldNomineeName         = "nomineeName"
	FieldNomineeRelationship = "nomineeRelationship"
	FieldVehicleNumber       = "vehicleNumber"
	FieldVehicleMake         = "vehicleMake"
	FieldVehicleModel        = "vehicleModel"
	FieldManufacturingYear   = "manufacturingYear"
	FieldDescription         = "description"

	FieldFullName    = "fullName"
	FieldMobile      = "mobile"
	FieldEmail       = "email"
	FieldDateOfBirth = "dateOfBirth"
	FieldGender      = "gender"
	FieldAddress     = "address"
	FieldCity        = "city"
	FieldPincode     = "pincode"
	FieldPANNumber   = "panNumber"

	FieldInterestedIn    = "interestedIn"
	FieldSource          = "source"
	FieldExpectedPremium = "expectedPremium"
	FieldFollowUpDate    = "followUpDate"
	FieldNotes           = "notes"

	// CollectionMembers is the family member collection.
	CollectionMembers = "members"
)

var paymentModes = []string{"Yearly", "Half-Yearly", "Quarterly", "Monthly", "Single"}

const (
	defaultPaymentMode = "Yearly"
	defaultGST         = "18"
	defaultLifeGST     = "4.5"
	defaultTerm        = "1"
)

var members = CollectionSpec{Name: CollectionMembers, Noun: "family member"}

// policyDetails are the fields every policy kind opens with.
func policyDetails(policyType FieldSpec) []FieldSpec {
	return []FieldSpec{
		{Name: FieldClientID, Type: TypeReference, Required: true, Reference: RefCustomers},
		{Name: FieldPolicyHolderName, Type: TypeText, Required: true},
		{Name: FieldInsuranceCompany, Type: TypeReference, Required: true, Reference: RefCompanies},
		policyType,
		{Name: FieldPolicyNumber, Type: TypeText, Required: true},
	}
}

var policyDetailNames = []string{
	FieldClientID, FieldPolicyHolderName, FieldInsuranceCompany, FieldPolicyType, FieldPolicyNumber,
}

func premiumFields(gst string) []FieldSpec {
	return []FieldSpec{
		{Name: FieldNetPremium, Type: TypeNumber, Required: true},
		{Name: FieldGSTPercentage, Type: TypeNumber, Required: true, Default: gst},
		{Name: FieldTotalPremium, Type: TypeNumber, Required: true},
	}
}
