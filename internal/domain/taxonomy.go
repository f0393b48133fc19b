package domain

import (
	"maps"
	"slices"
)

// Taxonomies are the vocabularies the rest of the system may reference.
// Slice order is display order.
type Taxonomies struct {
	AllChannels      []string          `yaml:"all_channels" json:"all_channels" validate:"dive,required"`
	SocialChannels   []string          `yaml:"social_channels" json:"social_channels" validate:"dive,required"`
	NonEmojiChannels []string          `yaml:"non_emoji_channels" json:"non_emoji_channels" validate:"dive,required"`
	Tones            []string          `yaml:"tones" json:"tones"`
	Audiences        []string          `yaml:"audiences" json:"audiences"`
	Subtypes         []string          `yaml:"subtypes" json:"subtypes"`
	ToneHints        map[string]string `yaml:"tone_hints" json:"tone_hints,omitempty"`
	AudienceHints    map[string]string `yaml:"audience_hints" json:"audience_hints,omitempty"`
}

// Clone returns a deep copy of t.
func (t *Taxonomies) Clone() *Taxonomies {
	if t == nil {
		return nil
	}
	return &Taxonomies{
		AllChannels:      slices.Clone(t.AllChannels),
		SocialChannels:   slices.Clone(t.SocialChannels),
		NonEmojiChannels: slices.Clone(t.NonEmojiChannels),
		Tones:            slices.Clone(t.Tones),
		Audiences:        slices.Clone(t.Audiences),
		Subtypes:         slices.Clone(t.Subtypes),
		ToneHints:        maps.Clone(t.ToneHints),
		AudienceHints:    maps.Clone(t.AudienceHints),
	}
}

// IsSocial reports whether channel is in the social (emoji-permitted) list.
func (t *Taxonomies) IsSocial(channel string) bool {
	return slices.Contains(t.SocialChannels, channel)
}

// HasChannel reports whether channel is part of the known vocabulary.
func (t *Taxonomies) HasChannel(channel string) bool {
	return slices.Contains(t.AllChannels, channel)
}
