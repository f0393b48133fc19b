package schema

import (
	"fmt"
	"strings"

	domainerrors "github.com/rhedu/adstudio-server/internal/errors"
)

// Violation is one schema failure. Line is 0 when it comes from a constraint
// check on the decoded value rather than from the tree.
type Violation struct {
	Path    string `json:"path"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d)", v.Path, v.Message, v.Line)
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// ValidationError reports a document that does not match its schema.
// Source is filled in by the loader with the file name when known.
type ValidationError struct {
	Kind       Kind
	Source     string
	Violations []Violation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	name := e.Source
	if name == "" {
		name = e.Kind.String()
	}
	fmt.Fprintf(&b, "config validation failed for %s", name)

	const maxListed = 5
	for i, v := range e.Violations {
		if i == maxListed {
			fmt.Fprintf(&b, "; and %d more", len(e.Violations)-maxListed)
			break
		}
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(v.String())
	}
	return b.String()
}

// Is lets callers match with errors.Is(err, errors.ErrConfigValidation).
func (e *ValidationError) Is(target error) bool {
	return target == domainerrors.ErrConfigValidation
}

// First returns the first violation.
func (e *ValidationError) First() Violation {
	if len(e.Violations) == 0 {
		return Violation{}
	}
	return e.Violations[0]
}
