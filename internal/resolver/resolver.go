// Package resolver answers per-channel configuration queries on top of the cached sources.
package resolver

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rhedu/adstudio-server/internal/domain"
	"github.com/rhedu/adstudio-server/internal/source"
)

// Hint fallbacks used when a tone or audience has no configured hint.
const (
	DefaultToneHint     = "Clear and engaging."
	DefaultAudienceHint = "Tailor to their needs and aspirations."
)

// Resolver is the read API over the channel configuration.
// Unknown channels resolve to absent, empty or false. Only load and
// validation failures are returned as errors.
type Resolver struct {
	loader *source.Loader
	logger *slog.Logger
}

// New creates a resolver over loader. The resolver owns the loader's cache.
func New(loader *source.Loader, logger *slog.Logger) *Resolver {
	return &Resolver{
		loader: loader,
		logger: logger,
	}
}

// Close releases the cache.
func (r *Resolver) Close() {
	r.loader.Close()
}

// Loader exposes the underlying loader for diagnostics.
func (r *Resolver) Loader() *source.Loader {
	return r.loader
}

// LoadAdLimits returns a copy of every limit profile in file order.
func (r *Resolver) LoadAdLimits(ctx context.Context) ([]domain.AdLimit, error) {
	limits, err := r.adLimits(ctx)
	if err != nil {
		return nil, err
	}
	return domain.CloneAdLimits(limits), nil
}

// LoadAssetSpecs returns a copy of every asset spec in file order.
func (r *Resolver) LoadAssetSpecs(ctx context.Context) ([]domain.AssetSpec, error) {
	specs, err := r.assetSpecs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AssetSpec, len(specs))
	for i, spec := range specs {
		out[i] = spec.Clone()
	}
	return out, nil
}

// LoadTaxonomies returns a copy of the taxonomy vocabularies.
func (r *Resolver) LoadTaxonomies(ctx context.Context) (*domain.Taxonomies, error) {
	tax, err := r.taxonomies(ctx)
	if err != nil {
		return nil, err
	}
	return tax.Clone(), nil
}

// The cached values are shared across callers and must not escape uncopied.

func (r *Resolver) adLimits(ctx context.Context) ([]domain.AdLimit, error) {
	return source.Load[[]domain.AdLimit](ctx, r.loader, source.AdLimits)
}

func (r *Resolver) assetSpecs(ctx context.Context) ([]domain.AssetSpec, error) {
	return source.Load[[]domain.AssetSpec](ctx, r.loader, source.AssetSpecs)
}

func (r *Resolver) taxonomies(ctx context.Context) (*domain.Taxonomies, error) {
	return source.Load[*domain.Taxonomies](ctx, r.loader, source.Taxonomies)
}

// AdLimitsForChannel returns a copy of the profile for (channel, subtype).
//
// An exact match wins. When a subtype is given and has no profile of its own,
// the channel's default (null subtype) profile is used. A nil result with a nil
// error means the channel has no applicable profile. An empty subtype is the
// same as none.
func (r *Resolver) AdLimitsForChannel(ctx context.Context, channel string, subtype *string) (*domain.AdLimit, error) {
	limits, err := r.adLimits(ctx)
	if err != nil {
		return nil, err
	}

	if subtype != nil && *subtype == "" {
		subtype = nil
	}

	for i := range limits {
		if limits[i].Matches(channel, subtype) {
			found := limits[i].Clone()
			return &found, nil
		}
	}

	if subtype == nil {
		return nil, nil
	}

	for i := range limits {
		if limits[i].Channel == channel && limits[i].IsDefault() {
			found := limits[i].Clone()
			r.logger.Debug("ad limits fell back to channel default",
				"channel", channel,
				"subtype", *subtype,
			)
			return &found, nil
		}
	}
	return nil, nil
}

// AssetSpecsForChannel returns copies of the channel's asset specs in file order.
// The slice is empty, never nil, when the channel has none.
func (r *Resolver) AssetSpecsForChannel(ctx context.Context, channel string) ([]domain.AssetSpec, error) {
	return r.assetSpecsWhere(ctx, func(s domain.AssetSpec) bool {
		return s.Channel == channel
	})
}

// AssetSpecsForChannelFold is AssetSpecsForChannel with a case-insensitive
// channel match.
func (r *Resolver) AssetSpecsForChannelFold(ctx context.Context, channel string) ([]domain.AssetSpec, error) {
	return r.assetSpecsWhere(ctx, func(s domain.AssetSpec) bool {
		return strings.EqualFold(s.Channel, channel)
	})
}

func (r *Resolver) assetSpecsWhere(ctx context.Context, keep func(domain.AssetSpec) bool) ([]domain.AssetSpec, error) {
	specs, err := r.assetSpecs(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.AssetSpec, 0)
	for _, s := range specs {
		if keep(s) {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

// IsEmojiAllowedForChannel reports whether channel is a social channel.
// The non-emoji list is not consulted.
func (r *Resolver) IsEmojiAllowedForChannel(ctx context.Context, channel string) (bool, error) {
	tax, err := r.taxonomies(ctx)
	if err != nil {
		return false, err
	}
	return tax.IsSocial(channel), nil
}

// ToneHint returns the prompt hint for a tone, or DefaultToneHint.
func (r *Resolver) ToneHint(ctx context.Context, tone string) (string, error) {
	tax, err := r.taxonomies(ctx)
	if err != nil {
		return "", err
	}
	if hint, ok := tax.ToneHints[tone]; ok && hint != "" {
		return hint, nil
	}
	return DefaultToneHint, nil
}

// AudienceHint returns the prompt hint for an audience, or DefaultAudienceHint.
func (r *Resolver) AudienceHint(ctx context.Context, audience string) (string, error) {
	tax, err := r.taxonomies(ctx)
	if err != nil {
		return "", err
	}
	if hint, ok := tax.AudienceHints[audience]; ok && hint != "" {
		return hint, nil
	}
	return DefaultAudienceHint, nil
}

// Invalidate drops every cached source and returns the number of entries cleared.
func (r *Resolver) Invalidate() int {
	return r.loader.Invalidate()
}
