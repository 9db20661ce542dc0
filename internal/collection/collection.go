// Package collection manages ordered, never-empty lists of sub-records such
// as the family members of a health policy or a customer.
package collection

import (
	"fmt"

	"github.com/google/uuid"

	"agency-intake/internal/apperr"
	"agency-intake/internal/model"
)

// Field is a CollectionField. The zero value is not usable; call New.
type Field struct {
	name    string
	records []model.SubRecord
	newID   func() string
}

// New returns a collection holding one blank record.
func New(name string) *Field {
	f := &Field{name: name, newID: uuid.NewString}
	f.Reset()
	return f
}

func (f *Field) Name() string { return f.name }

func (f *Field) Len() int { return len(f.records) }

// Records returns a copy of the records in insertion order.
func (f *Field) Records() []model.SubRecord {
	out := make([]model.SubRecord, len(f.records))
	copy(out, f.records)
	return out
}

// Add appends a record seeded from defaults and returns its local id. An empty
// relationship becomes "Self" for the first record and "Other" afterwards.
func (f *Field) Add(defaults model.SubRecord) string {
	rec := defaults
	rec.LocalID = f.newID()
	if rec.Relationship == "" {
		rec.Relationship = defaultRelationship(len(f.records))
	}
	f.records = append(f.records, rec)
	return rec.LocalID
}

// Update sets one field of the record identified by localID.
func (f *Field) Update(localID, field, value string) error {
	i := f.indexOf(localID)
	if i < 0 {
		return fmt.Errorf("%s %q: %w", f.name, localID, apperr.ErrUnknownRecord)
	}
	rec := &f.records[i]
	switch field {
	case model.SubFieldFullName:
		rec.FullName = value
	case model.SubFieldAge:
		rec.Age = value
	case model.SubFieldRelationship:
		rec.Relationship = value
	case model.SubFieldSumInsured:
		rec.SumInsured = value
	default:
		return fmt.Errorf("%s.%s: %w", f.name, field, apperr.ErrUnknownField)
	}
	return nil
}

// Remove deletes the record identified by localID. The sole remaining record
// is never deleted; it is reset to blank defaults and keeps its id.
func (f *Field) Remove(localID string) error {
	i := f.indexOf(localID)
	if i < 0 {
		return fmt.Errorf("%s %q: %w", f.name, localID, apperr.ErrUnknownRecord)
	}
	if len(f.records) == 1 {
		f.records[0] = blank(localID, 0)
		return nil
	}
	f.records = append(f.records[:i], f.records[i+1:]...)
	return nil
}

// Reset leaves exactly one blank record.
func (f *Field) Reset() {
	f.records = []model.SubRecord{blank(f.newID(), 0)}
}

func (f *Field) indexOf(localID string) int {
	for i := range f.records {
		if f.records[i].LocalID == localID {
			return i
		}
	}
	return -1
}

func blank(localID string, position int) model.SubRecord {
	return model.SubRecord{
		LocalID:      localID,
		Relationship: defaultRelationship(position),
	}
}

func defaultRelationship(position int) string {
	if position == 0 {
		return model.RelationshipSelf
	}
	return model.RelationshipOther
}
