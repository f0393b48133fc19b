package domain

import (
	"slices"
	"strings"
)

// AssetSpec holds the technical requirements of one creative placement.
// Zero numeric values mean "not applicable".
type AssetSpec struct {
	Channel            string   `yaml:"channel" json:"channel" validate:"required"`
	PlacementOrFormat  string   `yaml:"placement_or_format" json:"placement_or_format" validate:"required"`
	AspectRatio        *string  `yaml:"aspect_ratio" json:"aspect_ratio"`
	RecommendedPx      *string  `yaml:"recommended_px" json:"recommended_px"`
	DurationSecondsMax float64  `yaml:"duration_seconds_max" json:"duration_seconds_max" validate:"gte=0"`
	FileTypes          []string `yaml:"file_types" json:"file_types" validate:"dive,required"`
	MaxFileSizeMB      float64  `yaml:"max_file_size_mb" json:"max_file_size_mb" validate:"gte=0"`
	CaptionLimitChars  int      `yaml:"caption_limit_chars" json:"caption_limit_chars" validate:"gte=0"`
	Notes              *string  `yaml:"notes" json:"notes,omitempty"`
}

// Clone returns a deep copy of s.
func (s AssetSpec) Clone() AssetSpec {
	out := s
	out.AspectRatio = clonePtr(s.AspectRatio)
	out.RecommendedPx = clonePtr(s.RecommendedPx)
	out.Notes = clonePtr(s.Notes)
	out.FileTypes = slices.Clone(s.FileTypes)
	return out
}

// IsVideo reports whether the placement carries a duration limit.
func (s AssetSpec) IsVideo() bool {
	return s.DurationSecondsMax > 0
}

// AcceptsFileType reports whether ext is one of the accepted file types.
// Matching ignores case and a leading dot.
func (s AssetSpec) AcceptsFileType(ext string) bool {
	want := normalizeExt(ext)
	for _, ft := range s.FileTypes {
		if normalizeExt(ft) == want {
			return true
		}
	}
	return false
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
