package resolver

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhedu/adstudio-server/internal/cache"
	domainerrors "github.com/rhedu/adstudio-server/internal/errors"
	"github.com/rhedu/adstudio-server/internal/source"
)

const testAdLimits = `
- channel: REDDIT
  subtype: null
  fields:
    - field: headline
      max_chars: 40
      max_words: 8
      emojis_allowed: true
- channel: META
  subtype: null
  fields:
    - field: primary_text
      max_chars: 125
      max_words: 20
      emojis_allowed: true
- channel: META
  subtype: Open Day
  fields:
    - field: primary_text
      max_chars: 90
      max_words: 15
      emojis_allowed: true
- channel: LINKEDIN
  subtype: Clearing
  fields:
    - field: intro
      max_chars: 150
      max_words: 25
      emojis_allowed: false
- channel: PODCAST
  fields: []
`

const testAssetSpecs = `
- channel: TIKTOK
  placement_or_format: In-feed video
  aspect_ratio: "9:16"
  recommended_px: 1080x1920
  duration_seconds_max: 60
  file_types: [mp4, mov]
  max_file_size_mb: 500
  caption_limit_chars: 2200
- channel: DISPLAY
  placement_or_format: Leaderboard
  aspect_ratio: null
  recommended_px: 728x90
  duration_seconds_max: 0
  file_types: [jpg, png]
  max_file_size_mb: 0.15
  caption_limit_chars: 0
- channel: TIKTOK
  placement_or_format: TopView
  aspect_ratio: "9:16"
  recommended_px: 1080x1920
  duration_seconds_max: 60
  file_types: [mp4]
  max_file_size_mb: 500
  caption_limit_chars: 0
`

const testTaxonomies = `
all_channels: [REDDIT, META, LINKEDIN, TIKTOK, DISPLAY, PODCAST]
social_channels: [REDDIT, META, TIKTOK]
non_emoji_channels: [DISPLAY, LINKEDIN]
tones: [Friendly, Professional]
audiences: [School leavers, Parents]
subtypes: [Open Day, Clearing]
tone_hints:
  Friendly: Warm and approachable.
  Professional: ""
audience_hints:
  Parents: Reassure on outcomes and support.
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"ad_limits.yaml":   {Data: []byte(testAdLimits)},
		"asset_specs.yaml": {Data: []byte(testAssetSpecs)},
		"taxonomies.yaml":  {Data: []byte(testTaxonomies)},
	}
}

func newTestResolver(t *testing.T, fsys fstest.MapFS) *Resolver {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := New(source.NewLoader(fsys, cache.NewMemory(time.Minute), logger), logger)
	t.Cleanup(r.Close)
	return r
}

func strPtr(s string) *string { return &s }

func TestAdLimitsForChannel(t *testing.T) {
	r := newTestResolver(t, testFS())
	ctx := context.Background()

	tests := []struct {
		name        string
		channel     string
		subtype     *string
		wantSubtype *string
		wantMax     int
		wantNil     bool
	}{
		{name: "default profile", channel: "REDDIT", wantMax: 40},
		{name: "exact subtype wins", channel: "META", subtype: strPtr("Open Day"), wantSubtype: strPtr("Open Day"), wantMax: 90},
		{name: "unknown subtype falls back to default", channel: "META", subtype: strPtr("Clearing"), wantMax: 125},
		{name: "empty subtype means none", channel: "META", subtype: strPtr(""), wantMax: 125},
		{name: "no subtype and no default", channel: "LINKEDIN", wantNil: true},
		{name: "subtype without default has no fallback", channel: "LINKEDIN", subtype: strPtr("Open Day"), wantNil: true},
		{name: "exact subtype without default", channel: "LINKEDIN", subtype: strPtr("Clearing"), wantSubtype: strPtr("Clearing"), wantMax: 150},
		{name: "unknown channel", channel: "FAX", wantNil: true},
		{name: "channel match is case sensitive", channel: "reddit", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.AdLimitsForChannel(ctx, tt.channel, tt.subtype)
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.channel, got.Channel)
			assert.Equal(t, tt.wantSubtype, got.Subtype)
			require.NotEmpty(t, got.Fields)
			assert.Equal(t, tt.wantMax, got.Fields[0].MaxChars)
		})
	}
}

func TestResolver_ResultsAreCopies(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(t *testing.T, r *Resolver)
		check  func(t *testing.T, r *Resolver)
	}{
		{
			name: "channel profile fields",
			mutate: func(t *testing.T, r *Resolver) {
				got, err := r.AdLimitsForChannel(ctx, "REDDIT", nil)
				require.NoError(t, err)
				got.Channel = "MUTATED"
				got.Fields[0].MaxChars = 1
				got.Fields[0].Field = "mutated"
				got.Fields = append(got.Fields, got.Fields[0])
			},
			check: func(t *testing.T, r *Resolver) {
				got, err := r.AdLimitsForChannel(ctx, "REDDIT", nil)
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, "REDDIT", got.Channel)
				require.Len(t, got.Fields, 1)
				assert.Equal(t, 40, got.Fields[0].MaxChars)
				assert.Equal(t, "headline", got.Fields[0].Field)
			},
		},
		{
			name: "fallback profile subtype",
			mutate: func(t *testing.T, r *Resolver) {
				got, err := r.AdLimitsForChannel(ctx, "META", strPtr("Open Day"))
				require.NoError(t, err)
				*got.Subtype = "Clearing"
				got.Fields[0].MaxChars = 1
			},
			check: func(t *testing.T, r *Resolver) {
				got, err := r.AdLimitsForChannel(ctx, "META", strPtr("Open Day"))
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, strPtr("Open Day"), got.Subtype)
				assert.Equal(t, 90, got.Fields[0].MaxChars)
			},
		},
		{
			name: "bulk ad limits",
			mutate: func(t *testing.T, r *Resolver) {
				all, err := r.LoadAdLimits(ctx)
				require.NoError(t, err)
				all[0].Channel = "MUTATED"
				all[0].Fields[0].MaxChars = 1
			},
			check: func(t *testing.T, r *Resolver) {
				all, err := r.LoadAdLimits(ctx)
				require.NoError(t, err)
				assert.Equal(t, "REDDIT", all[0].Channel)
				assert.Equal(t, 40, all[0].Fields[0].MaxChars)
			},
		},
		{
			name: "asset specs",
			mutate: func(t *testing.T, r *Resolver) {
				specs, err := r.AssetSpecsForChannel(ctx, "TIKTOK")
				require.NoError(t, err)
				specs[0].FileTypes[0] = "exe"
				*specs[0].AspectRatio = "1:1"

				all, err := r.LoadAssetSpecs(ctx)
				require.NoError(t, err)
				all[1].FileTypes[0] = "exe"
			},
			check: func(t *testing.T, r *Resolver) {
				all, err := r.LoadAssetSpecs(ctx)
				require.NoError(t, err)
				assert.Equal(t, []string{"mp4", "mov"}, all[0].FileTypes)
				assert.Equal(t, strPtr("9:16"), all[0].AspectRatio)
				assert.Equal(t, []string{"jpg", "png"}, all[1].FileTypes)
			},
		},
		{
			name: "taxonomies",
			mutate: func(t *testing.T, r *Resolver) {
				tax, err := r.LoadTaxonomies(ctx)
				require.NoError(t, err)
				tax.SocialChannels[0] = "DISPLAY"
				tax.AllChannels = append(tax.AllChannels[:0], "NOWHERE")
				tax.ToneHints["Friendly"] = "mutated"
				delete(tax.AudienceHints, "Parents")
			},
			check: func(t *testing.T, r *Resolver) {
				allowed, err := r.IsEmojiAllowedForChannel(ctx, "REDDIT")
				require.NoError(t, err)
				assert.True(t, allowed)

				hint, err := r.ToneHint(ctx, "Friendly")
				require.NoError(t, err)
				assert.Equal(t, "Warm and approachable.", hint)

				hint, err = r.AudienceHint(ctx, "Parents")
				require.NoError(t, err)
				assert.Equal(t, "Reassure on outcomes and support.", hint)

				tax, err := r.LoadTaxonomies(ctx)
				require.NoError(t, err)
				assert.Equal(t, "REDDIT", tax.AllChannels[0])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(t, testFS())
			tt.mutate(t, r)
			tt.check(t, r)
		})
	}
}

func TestAdLimitsForChannel_EmptyFieldsProfile(t *testing.T) {
	r := newTestResolver(t, testFS())

	got, err := r.AdLimitsForChannel(context.Background(), "PODCAST", nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Fields)
}

func TestAssetSpecsForChannel(t *testing.T) {
	r := newTestResolver(t, testFS())
	ctx := context.Background()

	specs, err := r.AssetSpecsForChannel(ctx, "TIKTOK")
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "In-feed video", specs[0].PlacementOrFormat)
	assert.Equal(t, "TopView", specs[1].PlacementOrFormat)

	specs, err = r.AssetSpecsForChannel(ctx, "REDDIT")
	require.NoError(t, err)
	assert.NotNil(t, specs)
	assert.Empty(t, specs)
}

func TestAssetSpecsForChannelFold(t *testing.T) {
	r := newTestResolver(t, testFS())
	ctx := context.Background()

	for _, channel := range []string{"TIKTOK", "tiktok", "TikTok"} {
		specs, err := r.AssetSpecsForChannelFold(ctx, channel)
		require.NoError(t, err)
		require.Len(t, specs, 2, channel)
		assert.Equal(t, "In-feed video", specs[0].PlacementOrFormat)
	}

	exact, err := r.AssetSpecsForChannel(ctx, "tiktok")
	require.NoError(t, err)
	assert.Empty(t, exact)
}

func TestIsEmojiAllowedForChannel(t *testing.T) {
	r := newTestResolver(t, testFS())
	ctx := context.Background()

	for channel, want := range map[string]bool{
		"TIKTOK":   true,
		"REDDIT":   true,
		"DISPLAY":  false,
		"LINKEDIN": false,
		"PODCAST":  false,
		"UNKNOWN":  false,
	} {
		got, err := r.IsEmojiAllowedForChannel(ctx, channel)
		require.NoError(t, err, channel)
		assert.Equal(t, want, got, channel)
	}
}

func TestHints(t *testing.T) {
	r := newTestResolver(t, testFS())
	ctx := context.Background()

	hint, err := r.ToneHint(ctx, "Friendly")
	require.NoError(t, err)
	assert.Equal(t, "Warm and approachable.", hint)

	hint, err = r.ToneHint(ctx, "Professional")
	require.NoError(t, err)
	assert.Equal(t, DefaultToneHint, hint, "blank hint falls back")

	hint, err = r.ToneHint(ctx, "Sarcastic")
	require.NoError(t, err)
	assert.Equal(t, DefaultToneHint, hint)

	hint, err = r.AudienceHint(ctx, "Parents")
	require.NoError(t, err)
	assert.Equal(t, "Reassure on outcomes and support.", hint)

	hint, err = r.AudienceHint(ctx, "School leavers")
	require.NoError(t, err)
	assert.Equal(t, DefaultAudienceHint, hint)
}

func TestResolver_SourceErrorsPropagate(t *testing.T) {
	fsys := testFS()
	delete(fsys, "asset_specs.yaml")
	fsys["taxonomies.yaml"] = &fstest.MapFile{Data: []byte("all_channels: [TIKTOK]\n")}
	r := newTestResolver(t, fsys)
	ctx := context.Background()

	_, err := r.AssetSpecsForChannel(ctx, "TIKTOK")
	assert.ErrorIs(t, err, domainerrors.ErrSourceNotFound)

	_, err = r.IsEmojiAllowedForChannel(ctx, "TIKTOK")
	assert.ErrorIs(t, err, domainerrors.ErrConfigValidation)

	_, err = r.ToneHint(ctx, "Friendly")
	assert.ErrorIs(t, err, domainerrors.ErrConfigValidation)

	// Unaffected sources keep working.
	got, err := r.AdLimitsForChannel(ctx, "REDDIT", nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestResolver_InvalidateForcesReread(t *testing.T) {
	fsys := testFS()
	r := newTestResolver(t, fsys)
	ctx := context.Background()

	ok, err := r.IsEmojiAllowedForChannel(ctx, "DISPLAY")
	require.NoError(t, err)
	require.False(t, ok)

	fsys["taxonomies.yaml"] = &fstest.MapFile{Data: []byte(`
all_channels: [DISPLAY]
social_channels: [DISPLAY]
non_emoji_channels: []
tones: []
audiences: []
subtypes: []
`)}

	ok, err = r.IsEmojiAllowedForChannel(ctx, "DISPLAY")
	require.NoError(t, err)
	assert.False(t, ok, "cached value served until invalidated")

	assert.Equal(t, 1, r.Invalidate())

	ok, err = r.IsEmojiAllowedForChannel(ctx, "DISPLAY")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, r.Loader().Loads(source.Taxonomies))
}

func TestAudit(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		r := newTestResolver(t, testFS())
		report, err := r.Audit(context.Background())
		require.NoError(t, err)
		assert.True(t, report.Clean())
		assert.NotNil(t, report.UnknownAdLimitChannels)
	})

	t.Run("dangling references", func(t *testing.T) {
		fsys := testFS()
		fsys["taxonomies.yaml"] = &fstest.MapFile{Data: []byte(`
all_channels: [REDDIT, TIKTOK]
social_channels: [TIKTOK, SNAPCHAT]
non_emoji_channels: []
tones: []
audiences: []
subtypes: []
`)}
		r := newTestResolver(t, fsys)

		report, err := r.Audit(context.Background())
		require.NoError(t, err)
		assert.False(t, report.Clean())
		assert.Equal(t, []string{"LINKEDIN", "META", "PODCAST"}, report.UnknownAdLimitChannels)
		assert.Equal(t, []string{"DISPLAY"}, report.UnknownAssetSpecChannels)
		assert.Equal(t, []string{"SNAPCHAT"}, report.UnknownSocialChannels)
		assert.Empty(t, report.UnknownNonEmojiChannels)
	})

	t.Run("load failure", func(t *testing.T) {
		fsys := testFS()
		delete(fsys, "ad_limits.yaml")
		r := newTestResolver(t, fsys)

		_, err := r.Audit(context.Background())
		assert.ErrorIs(t, err, domainerrors.ErrSourceNotFound)
	})
}

// The shipped data files must load cleanly and agree with each other.
func TestShippedDataIsValid(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := New(source.NewLoader(os.DirFS("../../data"), cache.NewMemory(time.Minute), logger), logger)
	defer r.Close()
	ctx := context.Background()

	report, err := r.Audit(ctx)
	require.NoError(t, err)
	assert.True(t, report.Clean(), "%+v", report)

	reddit, err := r.AdLimitsForChannel(ctx, "REDDIT", nil)
	require.NoError(t, err)
	require.NotNil(t, reddit)

	emoji, err := r.IsEmojiAllowedForChannel(ctx, "TIKTOK")
	require.NoError(t, err)
	assert.True(t, emoji)

	emoji, err = r.IsEmojiAllowedForChannel(ctx, "DISPLAY")
	require.NoError(t, err)
	assert.False(t, emoji)
}
