package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rhedu/adstudio-server/internal/domain"
	"github.com/rhedu/adstudio-server/internal/validation"
)

var constraints = validation.New()

// Parse turns raw bytes into a generic YAML tree.
func Parse(data []byte) (*yaml.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return &root, nil
}

// Decode parses data and validates it as a document of the given kind.
// The result is []domain.AdLimit, []domain.AssetSpec or *domain.Taxonomies.
func Decode(kind Kind, data []byte) (any, error) {
	switch kind {
	case KindAdLimits:
		return DecodeAdLimits(data)
	case KindAssetSpecs:
		return DecodeAssetSpecs(data)
	case KindTaxonomies:
		return DecodeTaxonomies(data)
	default:
		return nil, fmt.Errorf("schema: unknown document kind %d", kind)
	}
}

// DecodeAdLimits validates an ad limits document.
func DecodeAdLimits(data []byte) ([]domain.AdLimit, error) {
	limits, err := decode[[]domain.AdLimit](KindAdLimits, data)
	if err != nil {
		return nil, err
	}

	var violations []Violation
	for i, limit := range limits {
		violations = append(violations, check(fmt.Sprintf("[%d]", i), limit)...)
	}
	violations = append(violations, duplicateProfiles(limits)...)
	if len(violations) > 0 {
		return nil, &ValidationError{Kind: KindAdLimits, Violations: violations}
	}
	return limits, nil
}

// DecodeAssetSpecs validates an asset specs document.
func DecodeAssetSpecs(data []byte) ([]domain.AssetSpec, error) {
	specs, err := decode[[]domain.AssetSpec](KindAssetSpecs, data)
	if err != nil {
		return nil, err
	}

	var violations []Violation
	for i, spec := range specs {
		violations = append(violations, check(fmt.Sprintf("[%d]", i), spec)...)
	}
	violations = append(violations, duplicatePlacements(specs)...)
	if len(violations) > 0 {
		return nil, &ValidationError{Kind: KindAssetSpecs, Violations: violations}
	}
	return specs, nil
}

// DecodeTaxonomies validates a taxonomies document.
func DecodeTaxonomies(data []byte) (*domain.Taxonomies, error) {
	tax, err := decode[domain.Taxonomies](KindTaxonomies, data)
	if err != nil {
		return nil, err
	}

	if violations := check("", tax); len(violations) > 0 {
		return nil, &ValidationError{Kind: KindTaxonomies, Violations: violations}
	}
	return &tax, nil
}

// decode runs the parse and structural phases, then decodes the tree into T.
func decode[T any](kind Kind, data []byte) (T, error) {
	var out T

	root, err := Parse(data)
	if err != nil {
		return out, &ValidationError{
			Kind:       kind,
			Violations: []Violation{{Path: "$", Message: "malformed YAML: " + err.Error()}},
		}
	}

	s, ok := kind.shape()
	if !ok {
		return out, fmt.Errorf("schema: unknown document kind %d", kind)
	}

	w := &walker{}
	w.root(root, s)
	if len(w.violations) > 0 {
		return out, &ValidationError{Kind: kind, Violations: w.violations}
	}

	if err := resolve(root).Decode(&out); err != nil {
		return out, &ValidationError{
			Kind:       kind,
			Violations: []Violation{{Path: "$", Message: err.Error()}},
		}
	}
	return out, nil
}

// check runs the validator constraints on one record.
func check(prefix string, v any) []Violation {
	fieldErrs, err := constraints.Check(v)
	if err != nil {
		return []Violation{{Path: orRoot(prefix), Message: err.Error()}}
	}

	out := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, Violation{Path: join(prefix, fe.Path), Message: fe.Message})
	}
	return out
}

// duplicateProfiles enforces one AdLimit per (channel, subtype), which also
// means one default profile per channel.
func duplicateProfiles(limits []domain.AdLimit) []Violation {
	type profileKey struct {
		channel    string
		subtype    string
		hasSubtype bool
	}

	var out []Violation
	first := make(map[profileKey]int, len(limits))
	for i, limit := range limits {
		key := profileKey{channel: limit.Channel}
		if limit.Subtype != nil {
			key.subtype, key.hasSubtype = *limit.Subtype, true
		}
		if j, dup := first[key]; dup {
			out = append(out, Violation{
				Path: fmt.Sprintf("[%d]", i),
				Message: fmt.Sprintf("duplicate profile for channel %q subtype %s (first defined at [%d])",
					limit.Channel, limit.SubtypeLabel(), j),
			})
			continue
		}
		first[key] = i
	}
	return out
}

// duplicatePlacements enforces placement_or_format uniqueness within a channel.
func duplicatePlacements(specs []domain.AssetSpec) []Violation {
	var out []Violation
	first := make(map[[2]string]int, len(specs))
	for i, spec := range specs {
		key := [2]string{spec.Channel, spec.PlacementOrFormat}
		if j, dup := first[key]; dup {
			out = append(out, Violation{
				Path: fmt.Sprintf("[%d].placement_or_format", i),
				Message: fmt.Sprintf("duplicate placement %q for channel %q (first defined at [%d])",
					spec.PlacementOrFormat, spec.Channel, j),
			})
			continue
		}
		first[key] = i
	}
	return out
}
