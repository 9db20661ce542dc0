package coerce

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-intake/internal/apperr"
)

func TestNumber(t *testing.T) {
	cases := map[string]float64{
		"500000":    500000,
		" 5,00,000": 500000,
		"18":        18,
		"4.5":       4.5,
		"-2":        -2,
	}
	for in, want := range cases {
		got, err := Number(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{
		"", "  ", "abc", "12a", "1.2.3", "-", ".",
		"NaN", "nan", "Inf", "+Inf", "-Infinity", "0x1p4", "1e3", "1E-2", "1_000",
		"1" + strings.Repeat("0", 400),
	} {
		_, err := Number(bad)
		assert.True(t, errors.Is(err, apperr.ErrCoercion), bad)
	}
}

func TestInteger(t *testing.T) {
	v, err := Integer(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	for _, bad := range []string{"4.5", "NaN", "Inf", "0x10", "1e3"} {
		_, err = Integer(bad)
		assert.True(t, errors.Is(err, apperr.ErrCoercion), bad)
	}
}

func TestISODateAcceptsEntryLayouts(t *testing.T) {
	for _, in := range []string{
		"2024-03-05",
		"05/03/2024",
		"05-03-2024",
		"2024/03/05",
		"05.03.2024",
		"2024-03-05T00:00:00Z",
		"2024-03-05T00:00:00.000Z",
	} {
		got, err := ISODate(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2024-03-05", got, in)
	}
}

func TestISODateRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "2024-02-30", "2024-13-01", "31/02/2024", "tomorrow", "2024-0a-01"} {
		_, err := ISODate(in)
		assert.True(t, errors.Is(err, apperr.ErrCoercion), in)
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "11800", FormatNumber(11800))
	assert.Equal(t, "10450.5", FormatNumber(10450.5))
	assert.Equal(t, "1.23", FormatNumber(1.234))
	assert.Equal(t, "1000000000000000", FormatNumber(1e15))
}

func TestFinite(t *testing.T) {
	assert.True(t, Finite(1e308))
	assert.False(t, Finite(math.Inf(1)))
	assert.False(t, Finite(math.NaN()))
}
