// Package payload maps validated intake state into the typed records the
// agency backend accepts. It performs no I/O.
package payload

import (
	"fmt"
	"strings"

	"agency-intake/internal/apperr"
	"agency-intake/internal/coerce"
	"agency-intake/internal/model"
	"agency-intake/internal/schema"
)

// View is the session state a builder reads.
type View interface {
	Field(name string) string
	Records(collection string) []model.SubRecord
	Attachments() []model.Attachment
}

// Builder turns a session view into the payload for one kind.
type Builder func(v View) (model.Payload, error)

var builders = map[model.Kind]Builder{
	model.KindHealthPolicy: buildHealth,
	model.KindLifePolicy:   buildLife,
	model.KindMotorPolicy:  buildMotor,
	model.KindOtherPolicy:  buildOther,
	model.KindCustomer:     buildCustomer,
	model.KindLead:         buildLead,
}

// Build returns the payload for kind. Text is coerced to numbers and dates
// here and nowhere earlier; a coercion error means validation let through a
// value it should have rejected.
func Build(kind model.Kind, v View) (model.Payload, error) {
	b, ok := builders[kind]
	if !ok {
		return nil, fmt.Errorf("payload %q: %w", kind, apperr.ErrUnknownKind)
	}
	p, err := b(v)
	if err != nil {
		return nil, fmt.Errorf("payload %s: %w", kind, err)
	}
	return p, nil
}

// reader coerces fields and keeps the first error, so builders can read every
// field in sequence and check once.
type reader struct {
	v   View
	err error
}

func (r *reader) fail(field string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("field %s: %w", field, err)
	}
}

func (r *reader) text(name string) string {
	return strings.TrimSpace(r.v.Field(name))
}

func (r *reader) number(name string) float64 {
	n, err := coerce.Number(r.v.Field(name))
	if err != nil {
		r.fail(name, err)
	}
	return n
}

func (r *reader) optNumber(name string) *float64 {
	if coerce.IsBlank(r.v.Field(name)) {
		return nil
	}
	n := r.number(name)
	return &n
}

func (r *reader) integer(name string) int {
	n, err := coerce.Integer(r.v.Field(name))
	if err != nil {
		r.fail(name, err)
	}
	return n
}

func (r *reader) date(name string) string {
	d, err := coerce.ISODate(r.v.Field(name))
	if err != nil {
		r.fail(name, err)
	}
	return d
}

func (r *reader) optDate(name string) string {
	if coerce.IsBlank(r.v.Field(name)) {
		return ""
	}
	return r.date(name)
}

func (r *reader) age(field, s string) *int {
	if coerce.IsBlank(s) {
		return nil
	}
	n, err := coerce.Integer(s)
	if err != nil {
		r.fail(field, err)
		return nil
	}
	return &n
}

func (r *reader) policyCommon() model.PolicyCommon {
	return model.PolicyCommon{
		CustomerID:       r.text(schema.FieldClientID),
		PolicyHolderName: r.text(schema.FieldPolicyHolderName),
		InsuranceCompany: r.text(schema.FieldInsuranceCompany),
		PolicyType:       r.text(schema.FieldPolicyType),
		PolicyNumber:     r.text(schema.FieldPolicyNumber),
		StartDate:        r.date(schema.FieldStartDate),
		EndDate:          r.date(schema.FieldEndDate),
		PaymentMode:      r.text(schema.FieldPaymentMode),
		SumInsured:       r.number(schema.FieldSumInsured),
		NetPremium:       r.number(schema.FieldNetPremium),
		GSTPercentage:    r.number(schema.FieldGSTPercentage),
		TotalPremium:     r.number(schema.FieldTotalPremium),
		Documents:        documents(r.v.Attachments()),
	}
}

// documents keeps only type and name; file content is uploaded elsewhere.
func documents(atts []model.Attachment) []model.Document {
	out := make([]model.Document, 0, len(atts))
	for _, a := range atts {
		out = append(out, model.Document{DocumentType: a.MimeType, DocumentName: a.Name})
	}
	return out
}

func (r *reader) memberNumber(field, s string) float64 {
	n, err := coerce.Number(s)
	if err != nil {
		r.fail(field, err)
	}
	return n
}
