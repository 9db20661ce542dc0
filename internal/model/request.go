package model

// SubRecord is one entry of a dynamically-sized collection such as family
// members. Every value is kept as entered text until the payload is built.
type SubRecord struct {
	LocalID      string `json:"local_id"`
	FullName     string `json:"full_name"`
	Age          string `json:"age"`
	Relationship string `json:"relationship"`
	SumInsured   string `json:"sum_insured"`
}

// Sub-record field names accepted by CollectionField updates.
const (
	SubFieldFullName     = "full_name"
	SubFieldAge          = "age"
	SubFieldRelationship = "relationship"
	SubFieldSumInsured   = "sum_insured"
)

const (
	RelationshipSelf  = "Self"
	RelationshipOther = "Other"
)

// Relationships lists the selectable member relationships.
var Relationships = []string{
	RelationshipSelf, "Spouse", "Son", "Daughter", "Father", "Mother", RelationshipOther,
}

// Attachment is a picked file. URI is the identity key.
type Attachment struct {
	URI      string `json:"uri"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

// Company is an insurance company reference entry.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Customer is a customer reference entry.
type Customer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

// SubmitResponse is the backend envelope returned by every create endpoint.
type SubmitResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    *SubmitData `json:"data,omitempty"`
}

type SubmitData struct {
	ID           string `json:"id,omitempty"`
	PolicyNumber string `json:"policy_number,omitempty"`
}
