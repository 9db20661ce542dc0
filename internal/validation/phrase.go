package validation

import (
	"strings"
	"unicode"
)

// Phrase turns a field name into the lower-case words shown to users:
// "policyHolderName" -> "policy holder name", "full_name" -> "full name",
// "IDVAmount" -> "idv amount". The output is user-visible text and must stay
// stable for a given input.
func Phrase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)
	space := func() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), " ") {
			b.WriteByte(' ')
		}
	}
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			space()
			continue
		case unicode.IsUpper(r) && i > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				space()
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.TrimSpace(b.String())
}

// Sentence upper-cases the first letter of a phrase.
func Sentence(phrase string) string {
	if phrase == "" {
		return phrase
	}
	r := []rune(phrase)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
