package model

// ValidationMessage is the single blocking message produced by a failed rule.
type ValidationMessage struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Step    int    `json:"step"`
	Message string `json:"message"`
}

const (
	CodeRequired      = "REQUIRED"
	CodeInvalidNumber = "INVALID_NUMBER"
	CodeInvalidDate   = "INVALID_DATE"
	CodeInvalidOption = "INVALID_OPTION"
	CodeOutOfRange    = "OUT_OF_RANGE"
	CodeDateOrder     = "DATE_ORDER"
	CodeInvalidMobile = "INVALID_MOBILE"
	CodeInvalidEmail  = "INVALID_EMAIL"
	CodeNoSubRecord   = "NO_SUB_RECORD"
	CodeNotFinalStep  = "NOT_FINAL_STEP"
)
