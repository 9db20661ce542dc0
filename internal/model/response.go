package model

// Outcome tags a SubmissionResult.
type Outcome string

const (
	OutcomeOK               Outcome = "OK"
	OutcomeInvalid          Outcome = "INVALID"
	OutcomeLogicalFailure   Outcome = "LOGICAL_FAILURE"
	OutcomeTransportFailure Outcome = "TRANSPORT_FAILURE"
	OutcomeIgnored          Outcome = "IGNORED"
)

// SubmissionResult is the only value that leaves the submission controller.
// Message always holds the one user-facing text for the outcome.
type SubmissionResult struct {
	Outcome      Outcome `json:"outcome"`
	Message      string  `json:"message"`
	PolicyNumber string  `json:"policy_number,omitempty"`
	RecordID     string  `json:"record_id,omitempty"`
	// Step is the step to return to for OutcomeInvalid.
	Step int    `json:"step,omitempty"`
	Code string `json:"code,omitempty"`
}

func (r SubmissionResult) Succeeded() bool {
	return r.Outcome == OutcomeOK
}

// ErrorResponse is written by the session service on request errors.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
