package resolver

import (
	"context"
	"slices"

	"github.com/rhedu/adstudio-server/internal/domain"
)

// IntegrityReport lists channels referenced by limits or specs that the
// taxonomy does not declare. Loading stays permissive; this is diagnostic only.
type IntegrityReport struct {
	UnknownAdLimitChannels   []string `json:"unknown_ad_limit_channels"`
	UnknownAssetSpecChannels []string `json:"unknown_asset_spec_channels"`
	UnknownSocialChannels    []string `json:"unknown_social_channels"`
	UnknownNonEmojiChannels  []string `json:"unknown_non_emoji_channels"`
}

// Clean reports whether no dangling references were found.
func (r *IntegrityReport) Clean() bool {
	return len(r.UnknownAdLimitChannels) == 0 &&
		len(r.UnknownAssetSpecChannels) == 0 &&
		len(r.UnknownSocialChannels) == 0 &&
		len(r.UnknownNonEmojiChannels) == 0
}

// Audit cross-checks the three sources. Any load failure is returned as is.
func (r *Resolver) Audit(ctx context.Context) (*IntegrityReport, error) {
	tax, err := r.taxonomies(ctx)
	if err != nil {
		return nil, err
	}
	limits, err := r.adLimits(ctx)
	if err != nil {
		return nil, err
	}
	specs, err := r.assetSpecs(ctx)
	if err != nil {
		return nil, err
	}

	limitChannels := make([]string, 0, len(limits))
	for _, l := range limits {
		limitChannels = append(limitChannels, l.Channel)
	}
	specChannels := make([]string, 0, len(specs))
	for _, s := range specs {
		specChannels = append(specChannels, s.Channel)
	}

	report := &IntegrityReport{
		UnknownAdLimitChannels:   unknown(limitChannels, tax),
		UnknownAssetSpecChannels: unknown(specChannels, tax),
		UnknownSocialChannels:    unknown(tax.SocialChannels, tax),
		UnknownNonEmojiChannels:  unknown(tax.NonEmojiChannels, tax),
	}
	if !report.Clean() {
		r.logger.Warn("config references undeclared channels",
			"ad_limits", report.UnknownAdLimitChannels,
			"asset_specs", report.UnknownAssetSpecChannels,
			"social", report.UnknownSocialChannels,
			"non_emoji", report.UnknownNonEmojiChannels,
		)
	}
	return report, nil
}

// unknown returns the sorted distinct values of refs the taxonomy does not declare.
func unknown(refs []string, tax *domain.Taxonomies) []string {
	out := make([]string, 0)
	for _, ref := range refs {
		if !tax.HasChannel(ref) && !slices.Contains(out, ref) {
			out = append(out, ref)
		}
	}
	slices.Sort(out)
	return out
}
