package model

import "strings"

// Kind identifies which intake wizard a session runs.
type Kind string

const (
	KindHealthPolicy Kind = "health_policy"
	KindLifePolicy   Kind = "life_policy"
	KindMotorPolicy  Kind = "motor_policy"
	KindOtherPolicy  Kind = "other_policy"
	KindCustomer     Kind = "customer"
	KindLead         Kind = "lead"
)

var kinds = []Kind{
	KindHealthPolicy,
	KindLifePolicy,
	KindMotorPolicy,
	KindOtherPolicy,
	KindCustomer,
	KindLead,
}

// Kinds returns every supported intake kind in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind accepts the canonical name as well as the short aliases used by
// the mobile client ("health", "life", "motor", "other").
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "health":
		return KindHealthPolicy, true
	case "life":
		return KindLifePolicy, true
	case "motor":
		return KindMotorPolicy, true
	case "other":
		return KindOtherPolicy, true
	}
	for _, k := range kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// IsPolicy reports whether the kind submits a policy record.
func (k Kind) IsPolicy() bool {
	switch k {
	case KindHealthPolicy, KindLifePolicy, KindMotorPolicy, KindOtherPolicy:
		return true
	}
	return false
}

// Label is the human-readable noun used in confirmation messages.
func (k Kind) Label() string {
	switch k {
	case KindHealthPolicy:
		return "Health policy"
	case KindLifePolicy:
		return "Life policy"
	case KindMotorPolicy:
		return "Motor policy"
	case KindOtherPolicy:
		return "Policy"
	case KindCustomer:
		return "Customer"
	case KindLead:
		return "Lead"
	}
	return string(k)
}
