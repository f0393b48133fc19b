package limits

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/rhedu/adstudio-server/internal/domain"
)

// Ellipsis is appended to truncated suggestions.
const Ellipsis = "..."

// CharCount counts user-perceived characters as NFC code points, so a
// decomposed "é" counts once.
func CharCount(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Truncate cuts s to maxChars code points and appends Ellipsis.
// Strings already within the limit are returned without the suffix.
func Truncate(s string, maxChars int) string {
	s = norm.NFC.String(s)
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxChars]) + Ellipsis
}

// Check measures generated values against limit.
//
// values is keyed by field name in any spelling FieldKey normalises
// ("Primary Text", "primary_text"). A field with a single value and a single
// allowed variation is reported as a string; otherwise as a list. Results follow
// the profile's field order. Values for fields the profile does not define are
// skipped; see Unmatched.
func Check(values map[string][]string, limit domain.AdLimit) ([]domain.GeneratedField, []domain.LimitWarning) {
	byKey := make(map[string][]string, len(values))
	// Spellings of one field merge in sorted key order.
	for _, name := range slices.Sorted(maps.Keys(values)) {
		key := domain.FieldKey(name)
		byKey[key] = append(byKey[key], values[name]...)
	}

	fields := make([]domain.GeneratedField, 0, len(limit.Fields))
	warnings := make([]domain.LimitWarning, 0)

	for _, fl := range limit.Fields {
		vs, ok := byKey[fl.Key()]
		if !ok {
			continue
		}

		gf := domain.GeneratedField{
			Field:           fl.Field,
			MaxChars:        fl.MaxChars,
			MaxWords:        fl.MaxWords,
			IsDropdown:      fl.IsDropdown,
			DropdownOptions: fl.DropdownOptions,
		}

		if len(vs) == 1 && fl.Variations() == 1 {
			v := vs[0]
			gf.Value = v
			gf.CharCount = CharCount(v)
			gf.WordCount = WordCount(v)
			gf.IsOverLimit = gf.CharCount > fl.MaxChars
			if gf.IsOverLimit {
				gf.Shortened = Truncate(v, fl.MaxChars)
				warnings = append(warnings, domain.LimitWarning{
					Field:          fl.Field,
					OriginalLength: gf.CharCount,
					MaxLength:      fl.MaxChars,
					Message:        fmt.Sprintf("%s exceeds %d characters by %d", fl.Field, fl.MaxChars, gf.CharCount-fl.MaxChars),
				})
			}
		} else {
			if vs == nil {
				vs = []string{}
			}
			shortened := make([]string, len(vs))
			for i, v := range vs {
				gf.CharCount = max(gf.CharCount, CharCount(v))
				gf.WordCount = max(gf.WordCount, WordCount(v))
				shortened[i] = Truncate(v, fl.MaxChars)
			}
			gf.Value = vs
			gf.IsOverLimit = gf.CharCount > fl.MaxChars
			if gf.IsOverLimit {
				gf.Shortened = shortened
				warnings = append(warnings, domain.LimitWarning{
					Field:          fl.Field,
					OriginalLength: gf.CharCount,
					MaxLength:      fl.MaxChars,
					Message:        fmt.Sprintf("One or more %s items exceed %d characters", fl.Field, fl.MaxChars),
				})
			}
		}

		gf.IsOverWordLimit = fl.MaxWords > 0 && gf.WordCount > fl.MaxWords
		fields = append(fields, gf)
	}

	return fields, warnings
}

// Unmatched returns the value keys Check skipped because limit does not define them, sorted.
func Unmatched(values map[string][]string, limit domain.AdLimit) []string {
	out := make([]string, 0)
	for name := range values {
		if _, ok := limit.Field(name); !ok {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}
