package validation

import (
	"fmt"
	"regexp"
	"strings"

	"agency-intake/internal/coerce"
	"agency-intake/internal/model"
)

var (
	mobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Required fails when field is blank. Selection fields use "select" wording.
func Required(step int, field string, selection bool) Rule {
	verb := "enter"
	if selection {
		verb = "select"
	}
	return Rule{
		Step:    step,
		Field:   field,
		Code:    model.CodeRequired,
		Message: fmt.Sprintf("Please %s %s", verb, Phrase(field)),
		Check: func(v View) bool {
			return !coerce.IsBlank(v.Field(field))
		},
	}
}

// Number fails when field is present but not a number.
func Number(step int, field string) Rule {
	return Rule{
		Step:    step,
		Field:   field,
		Code:    model.CodeInvalidNumber,
		Message: fmt.Sprintf("Please enter a valid %s", Phrase(field)),
		Check: func(v View) bool {
			s := v.Field(field)
			if coerce.IsBlank(s) {
				return true
			}
			_, err := coerce.Number(s)
			return err == nil
		},
	}
}

// Integer fails when field is present but not a whole number.
func Integer(step int, field string) Rule {
	return Rule{
		Step:    step,
		Field:   field,
		Code:    model.CodeInvalidNumber,
		Message: fmt.Sprintf("Please enter a valid %s", Phrase(field)),
		Check: func(v View) bool {
			s := v.Field(field)
			if coerce.IsBlank(s) {
				return true
			}
			_, err := coerce.Integer(s)
			return err == nil
		},
	}
}

// Date fails when field is present but not a date in an accepted layout.
func Date(step int, field string) Rule {
	return Rule{
		Step:    step,
		Field:   field,
		Code:    model.CodeInvalidDate,
		Message: fmt.Sprintf("Please enter a valid %s", Phrase(field)),
		Check: func(v View) bool {
			s := v.Field(field)
			if coerce.IsBlank(s) {
				return true
			}
			_, err := coerce.Date(s)
			return err == nil
		},
	}
}

// OneOf fails when field is present but not one of options.
func OneOf(step int, field string, options []string) Rule {
	allowed := make(map[string]struct{}, len(options))
	for _, o := range options {
		allowed[o] = struct{}{}
	}
	return Rule{
		Step:    step,
		Field:   field,
		Code:    model.CodeInvalidOption,
		Message: fmt.Sprintf("Please select a valid %s", Phrase(field)),
		Check: func(v View) bool {
			s := v.Field(field)
			if coerce.IsBlank(s) {
				return true
			}
			_, ok := allowed[s]
			return ok
		},
	}
}

// Between fails when a numeric field lies outside [lo, hi]. Blank or
// non-numeric values are left to Required and Number.
func Between(step int, field string, lo, hi float64) Rule {
	msg := fmt.Sprintf("%s must be between %s and %s",
		Sentence(Phrase(field)), coerce.FormatNumber(lo), coerce.FormatNumber(hi))
	return Rule{
		Step:    step,
		Field:   field,
		Code:    model.CodeOutOfRange,
		Message: msg,
		Check: func(v View) bool {
			n, err := coerce.Number(v.Field(field))
			if err != nil {
				return true
			}
			return n >= lo && n <= hi
		},
	}
}

// AtLeast fails when a numeric field is below lo. Blank or non-numeric
// values are left to Required and Number.
func AtLeast(step int, field string, lo float64) Rule {
	msg := fmt.Sprintf("%s must be at least %s", Sentence(Phrase(field)), coerce.FormatNumber(lo))
	if lo == 0 {
		msg = fmt.Sprintf("%s cannot be negative", Sentence(Phrase(field)))
	}
	return Rule{
		Step:    step,
		Field:   field,
		Code:    model.CodeOutOfRange,
		Message: msg,
		Check: func(v View) bool {
			n, err := coerce.Number(v.Field(field))
			if err != nil {
				return true
			}
			return n >= lo
		},
	}
}

// NotLess fails when field is numerically below other.
func NotLess(step int, field, other string) Rule {
	return Rule{
		Step:    step,
		Field:   field,
		Code:    model.CodeOutOfRange,
		Message: fmt.Sprintf("%s cannot be less than %s", Sentence(Phrase(field)), Phrase(other)),
		Check: func(v View) bool {
			a, errA := coerce.Number(v.Field(field))
			b, errB := coerce.Number(v.Field(other))
			if errA != nil || errB != nil {
				return true
			}
			return a >= b
		},
	}
}

// DateAfter fails when later is not strictly after earlier.
func DateAfter(step int, later, earlier string) Rule {
	return Rule{
		Step:    step,
		Field:   later,
		Code:    model.CodeDateOrder,
		Message: fmt.Sprintf("%s must be after %s", Sentence(Phrase(later)), Phrase(earlier)),
		Check: func(v View) bool {
			a, errA := coerce.Date(v.Field(later))
			b, errB := coerce.Date(v.Field(earlier))
			if errA != nil || errB != nil {
				return true
			}
			return a.After(b)
		},
	}
}

// Mobile fails when field is present but not a 10-digit mobile number.
func Mobile(step int, field string) Rule {
	return Rule{
		Step:    step,
		Field:   field,
		Code:    model.CodeInvalidMobile,
		Message: "Please enter a valid 10-digit mobile number",
		Check: func(v View) bool {
			s := strings.TrimSpace(v.Field(field))
			if s == "" {
				return true
			}
			s = strings.TrimPrefix(strings.TrimPrefix(s, "+91"), "0")
			return mobilePattern.MatchString(strings.ReplaceAll(s, " ", ""))
		},
	}
}

// Email fails when field is present but not shaped like an address.
func Email(step int, field string) Rule {
	return Rule{
		Step:    step,
		Field:   field,
		Code:    model.CodeInvalidEmail,
		Message: "Please enter a valid email address",
		Check: func(v View) bool {
			s := strings.TrimSpace(v.Field(field))
			return s == "" || emailPattern.MatchString(s)
		},
	}
}

// AtLeastOneNamed fails unless some record of collection has a full name.
func AtLeastOneNamed(step int, collection, noun string) Rule {
	return Rule{
		Step:    step,
		Field:   collection,
		Code:    model.CodeNoSubRecord,
		Message: fmt.Sprintf("Please add at least one %s with a name", noun),
		Check: func(v View) bool {
			for _, r := range v.Records(collection) {
				if !coerce.IsBlank(r.FullName) {
					return true
				}
			}
			return false
		},
	}
}

// RecordsValid checks every record of collection in order and reports the
// first bad one with its 1-based position, e.g. "Please enter a valid age for
// family member 2".
func RecordsValid(step int, collection, noun string, withSumInsured bool) Rule {
	return Rule{
		Step:  step,
		Field: collection,
		Code:  model.CodeInvalidNumber,
		Check: func(v View) bool {
			return firstRecordProblem(v.Records(collection), noun, withSumInsured) == ""
		},
		Explain: func(v View) string {
			return firstRecordProblem(v.Records(collection), noun, withSumInsured)
		},
	}
}

func firstRecordProblem(recs []model.SubRecord, noun string, withSumInsured bool) string {
	relationships := make(map[string]struct{}, len(model.Relationships))
	for _, rel := range model.Relationships {
		relationships[rel] = struct{}{}
	}
	for i, rec := range recs {
		pos := i + 1
		if !coerce.IsBlank(rec.Age) {
			age, err := coerce.Integer(rec.Age)
			if err != nil || age < 0 || age > 120 {
				return fmt.Sprintf("Please enter a valid age for %s %d", noun, pos)
			}
		}
		if _, ok := relationships[rec.Relationship]; !ok {
			return fmt.Sprintf("Please select a valid relationship for %s %d", noun, pos)
		}
		if withSumInsured && !coerce.IsBlank(rec.SumInsured) {
			if n, err := coerce.Number(rec.SumInsured); err != nil || n < 0 {
				return fmt.Sprintf("Please enter a valid sum insured for %s %d", noun, pos)
			}
		}
	}
	return ""
}

// Digits fails when field is present but not exactly n digits.
func Digits(step int, field string, n int) Rule {
	return Rule{
		Step:    step,
		Field:   field,
		Code:    model.CodeInvalidNumber,
		Message: fmt.Sprintf("Please enter a valid %d-digit %s", n, Phrase(field)),
		Check: func(v View) bool {
			s := strings.TrimSpace(v.Field(field))
			if s == "" {
				return true
			}
			if len(s) != n {
				return false
			}
			for i := 0; i < len(s); i++ {
				if s[i] < '0' || s[i] > '9' {
					return false
				}
			}
			return true
		},
	}
}
