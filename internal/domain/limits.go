// Package domain holds the channel-configuration records loaded from the data files.
package domain

import (
	"slices"
	"strings"
)

// FieldLimit constrains one text field within an ad unit.
type FieldLimit struct {
	Field           string   `yaml:"field" json:"field" validate:"required"`
	MaxChars        int      `yaml:"max_chars" json:"max_chars" validate:"gte=0"`
	MaxWords        int      `yaml:"max_words" json:"max_words" validate:"gte=0"` // advisory
	EmojisAllowed   bool     `yaml:"emojis_allowed" json:"emojis_allowed"`
	Count           *int     `yaml:"count" json:"count,omitempty" validate:"omitempty,gte=1"`
	Notes           *string  `yaml:"notes" json:"notes,omitempty"`
	IsDropdown      bool     `yaml:"is_dropdown" json:"is_dropdown"`
	DropdownOptions []string `yaml:"dropdown_options" json:"dropdown_options,omitempty"`
}

// Variations returns how many variations of the field are requested.
// An absent count means one.
func (f FieldLimit) Variations() int {
	if f.Count == nil {
		return 1
	}
	return *f.Count
}

// Clone returns a deep copy of f.
func (f FieldLimit) Clone() FieldLimit {
	out := f
	out.Count = clonePtr(f.Count)
	out.Notes = clonePtr(f.Notes)
	out.DropdownOptions = slices.Clone(f.DropdownOptions)
	return out
}

// Key returns the normalised field key used to match generated copy
// ("Primary Text" and "primary_text" both become "primary_text").
func (f FieldLimit) Key() string {
	return FieldKey(f.Field)
}

// FieldKey normalises a field name.
func FieldKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// AdLimit is the limit profile for one (channel, subtype) pair.
// A nil Subtype marks the channel-wide default profile.
type AdLimit struct {
	Channel string       `yaml:"channel" json:"channel" validate:"required"`
	Subtype *string      `yaml:"subtype" json:"subtype" validate:"omitnil,min=1"`
	Fields  []FieldLimit `yaml:"fields" json:"fields" validate:"unique=Field,dive"`
}

// Clone returns a deep copy of a.
func (a AdLimit) Clone() AdLimit {
	out := a
	out.Subtype = clonePtr(a.Subtype)
	if a.Fields != nil {
		out.Fields = make([]FieldLimit, len(a.Fields))
		for i, f := range a.Fields {
			out.Fields[i] = f.Clone()
		}
	}
	return out
}

// CloneAdLimits deep-copies every profile.
func CloneAdLimits(limits []AdLimit) []AdLimit {
	if limits == nil {
		return nil
	}
	out := make([]AdLimit, len(limits))
	for i, l := range limits {
		out[i] = l.Clone()
	}
	return out
}

// IsDefault reports whether this is the channel's fallback profile.
func (a AdLimit) IsDefault() bool {
	return a.Subtype == nil
}

// Matches reports whether the record is exactly (channel, subtype).
func (a AdLimit) Matches(channel string, subtype *string) bool {
	if a.Channel != channel {
		return false
	}
	if a.Subtype == nil || subtype == nil {
		return a.Subtype == nil && subtype == nil
	}
	return *a.Subtype == *subtype
}

// Field returns the limit for a field by normalised key.
func (a AdLimit) Field(name string) (FieldLimit, bool) {
	key := FieldKey(name)
	for _, f := range a.Fields {
		if f.Key() == key {
			return f, true
		}
	}
	return FieldLimit{}, false
}

// SubtypeLabel renders the subtype for logs and messages.
func (a AdLimit) SubtypeLabel() string {
	if a.Subtype == nil {
		return "(default)"
	}
	return *a.Subtype
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
