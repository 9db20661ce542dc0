// Package coerce turns entered text into typed values. Validation and payload
// building share it so that anything validation accepts will also coerce.
package coerce

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"agency-intake/internal/apperr"
)

// DateLayout is the canonical wire format for dates.
const DateLayout = "2006-01-02"

// Entry layouts accepted besides DateLayout, tried in order.
var entryLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
	"02.01.2006",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
}

var errEmpty = errors.New("empty value")

// Number parses plain decimal text such as "-12.5". Spaces and digit-group
// commas are ignored. Exponents, hex floats, NaN and infinities are rejected.
func Number(s string) (float64, error) {
	clean := normalizeNumber(s)
	if clean == "" {
		return 0, fmt.Errorf("number: %w: %w", apperr.ErrCoercion, errEmpty)
	}
	if !plainDecimal(clean) {
		return 0, fmt.Errorf("number %q: %w", s, apperr.ErrCoercion)
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("number %q: %w", s, apperr.ErrCoercion)
	}
	return v, nil
}

// Integer parses whole-number text with the same cleanup as Number.
func Integer(s string) (int, error) {
	clean := normalizeNumber(s)
	if clean == "" {
		return 0, fmt.Errorf("integer: %w: %w", apperr.ErrCoercion, errEmpty)
	}
	v, err := strconv.Atoi(clean)
	if err != nil {
		return 0, fmt.Errorf("integer %q: %w", s, apperr.ErrCoercion)
	}
	return v, nil
}

// Date parses any accepted entry layout and returns the date at UTC midnight.
func Date(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, ok := fastParseDate(s); ok {
		return t, nil
	}
	for _, layout := range entryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q: %w", s, apperr.ErrCoercion)
}

// ISODate normalizes an entered date to YYYY-MM-DD.
func ISODate(s string) (string, error) {
	t, err := Date(s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// FormatNumber renders v rounded to two decimals without trailing zeros.
func FormatNumber(v float64) string {
	if math.Abs(v) < 1e15 {
		v = math.Round(v*100) / 100
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Finite reports whether v is neither NaN nor an infinity.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// plainDecimal reports whether s is an optional sign, digits and at most one
// decimal point with at least one digit.
func plainDecimal(s string) bool {
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			digits++
		case s[i] == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

func normalizeNumber(s string) string {
	return strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(strings.TrimSpace(s))
}

// fastParseDate parses "YYYY-MM-DD" without layout parsing.
// Returns zero time and false on invalid input.
func fastParseDate(s string) (time.Time, bool) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return time.Time{}, false
	}
	for i := 0; i < len(s); i++ {
		if i == 4 || i == 7 {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return time.Time{}, false
		}
	}
	y := int(s[0]-'0')*1000 + int(s[1]-'0')*100 + int(s[2]-'0')*10 + int(s[3]-'0')
	m := time.Month(int(s[5]-'0')*10 + int(s[6]-'0'))
	d := int(s[8]-'0')*10 + int(s[9]-'0')
	if m < 1 || m > 12 || d < 1 || d > daysIn(m, y) {
		return time.Time{}, false
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
