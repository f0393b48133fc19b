// Package limits renders limit profiles for people and checks generated copy against them.
package limits

import (
	"fmt"
	"strings"

	"github.com/rhedu/adstudio-server/internal/domain"
)

// Summarize renders a one-line summary such as "headline: 40 chars, description: 90 chars (×2)".
func Summarize(limit domain.AdLimit) string {
	parts := make([]string, 0, len(limit.Fields))
	for _, f := range limit.Fields {
		s := fmt.Sprintf("%s: %d chars", f.Field, f.MaxChars)
		if n := f.Variations(); n > 1 {
			s += fmt.Sprintf(" (×%d)", n)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// FormatForDisplay renders one markdown bullet per field.
func FormatForDisplay(limit domain.AdLimit) string {
	lines := make([]string, 0, len(limit.Fields))
	for _, f := range limit.Fields {
		var b strings.Builder
		fmt.Fprintf(&b, "• **%s**: max %d characters", f.Field, f.MaxChars)
		if n := f.Variations(); n > 1 {
			fmt.Fprintf(&b, " (up to %d variations)", n)
		}
		if f.Notes != nil && *f.Notes != "" {
			fmt.Fprintf(&b, " — %s", *f.Notes)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}
