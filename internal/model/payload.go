package model

// Payload is a server-ready record built from a validated session.
type Payload interface {
	PayloadKind() Kind
}

// Document carries attachment metadata only; file bytes travel separately.
type Document struct {
	DocumentType string `json:"document_type"`
	DocumentName string `json:"document_name"`
}

// PolicyCommon holds the fields shared by every policy payload.
type PolicyCommon struct {
	CustomerID       string     `json:"customer_id"`
	PolicyHolderName string     `json:"policy_holder_name"`
	InsuranceCompany string     `json:"insurance_company_id"`
	PolicyType       string     `json:"policy_type"`
	PolicyNumber     string     `json:"policy_number"`
	StartDate        string     `json:"start_date"`
	EndDate          string     `json:"end_date"`
	PaymentMode      string     `json:"payment_mode"`
	SumInsured       float64    `json:"sum_insured"`
	NetPremium       float64    `json:"net_premium"`
	GSTPercentage    float64    `json:"gst_percentage"`
	TotalPremium     float64    `json:"total_premium"`
	Documents        []Document `json:"documents"`
}

type InsuredMember struct {
	FullName     string  `json:"full_name"`
	Age          *int    `json:"age"`
	Relationship string  `json:"relationship"`
	SumInsured   float64 `json:"sum_insured"`
}

type HealthPolicyPayload struct {
	PolicyCommon
	PolicyTerm int             `json:"policy_term"`
	Members    []InsuredMember `json:"members"`
}

func (HealthPolicyPayload) PayloadKind() Kind { return KindHealthPolicy }

type LifePolicyPayload struct {
	PolicyCommon
	PolicyTerm          int    `json:"policy_term"`
	PremiumPayingTerm   int    `json:"premium_paying_term"`
	NomineeName         string `json:"nominee_name"`
	NomineeRelationship string `json:"nominee_relationship"`
}

func (LifePolicyPayload) PayloadKind() Kind { return KindLifePolicy }

type MotorPolicyPayload struct {
	PolicyCommon
	VehicleNumber     string `json:"vehicle_number"`
	VehicleMake       string `json:"vehicle_make"`
	VehicleModel      string `json:"vehicle_model"`
	ManufacturingYear int    `json:"manufacturing_year"`
}

func (MotorPolicyPayload) PayloadKind() Kind { return KindMotorPolicy }

type OtherPolicyPayload struct {
	PolicyCommon
	PolicyTerm  int    `json:"policy_term"`
	Description string `json:"description,omitempty"`
}

func (OtherPolicyPayload) PayloadKind() Kind { return KindOtherPolicy }

type FamilyMember struct {
	FullName     string `json:"full_name"`
	Age          *int   `json:"age"`
	Relationship string `json:"relationship"`
}

type CustomerPayload struct {
	FullName      string         `json:"full_name"`
	Mobile        string         `json:"mobile"`
	Email         string         `json:"email,omitempty"`
	DateOfBirth   string         `json:"date_of_birth"`
	Gender        string         `json:"gender"`
	Address       string         `json:"address"`
	City          string         `json:"city"`
	Pincode       string         `json:"pincode"`
	PANNumber     string         `json:"pan_number,omitempty"`
	FamilyMembers []FamilyMember `json:"family_members"`
	Documents     []Document     `json:"documents"`
}

func (CustomerPayload) PayloadKind() Kind { return KindCustomer }

type LeadPayload struct {
	FullName        string   `json:"full_name"`
	Mobile          string   `json:"mobile"`
	Email           string   `json:"email,omitempty"`
	InterestedIn    string   `json:"interested_in"`
	Source          string   `json:"source"`
	ExpectedPremium *float64 `json:"expected_premium,omitempty"`
	FollowUpDate    string   `json:"follow_up_date,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

func (LeadPayload) PayloadKind() Kind { return KindLead }
