package source

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhedu/adstudio-server/internal/cache"
	"github.com/rhedu/adstudio-server/internal/domain"
	domainerrors "github.com/rhedu/adstudio-server/internal/errors"
	"github.com/rhedu/adstudio-server/internal/schema"
)

const adLimitsFile = `
- channel: REDDIT
  subtype: null
  fields:
    - field: headline
      max_chars: 40
      max_words: 8
      emojis_allowed: true
`

const taxonomiesFile = `
all_channels: [REDDIT]
social_channels: [REDDIT]
non_emoji_channels: []
tones: [Friendly]
audiences: [School leavers]
subtypes: []
`

func testLoader(t *testing.T, fsys fs.FS, ttl time.Duration) *Loader {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	l := NewLoader(fsys, cache.NewMemory(ttl), logger)
	t.Cleanup(l.Close)
	return l
}

func TestLookup(t *testing.T) {
	src, ok := Lookup(AdLimits)
	require.True(t, ok)
	assert.Equal(t, "ad_limits.yaml", src.File)
	assert.Equal(t, "yaml:ad_limits.yaml", src.CacheKey())

	_, ok = Lookup("pricing")
	assert.False(t, ok)

	assert.Len(t, All(), 3)
}

func TestLoad_CachesWithinTTL(t *testing.T) {
	fsys := fstest.MapFS{"ad_limits.yaml": {Data: []byte(adLimitsFile)}}
	l := testLoader(t, fsys, time.Minute)
	ctx := context.Background()

	first, err := Load[[]domain.AdLimit](ctx, l, AdLimits)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A change on disk is not observed while the entry is fresh.
	fsys["ad_limits.yaml"] = &fstest.MapFile{Data: []byte("[]")}

	second, err := Load[[]domain.AdLimit](ctx, l, AdLimits)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(first, second))
	assert.Equal(t, 1, l.Loads(AdLimits))
}

func TestLoad_RereadsAfterExpiry(t *testing.T) {
	fsys := fstest.MapFS{"ad_limits.yaml": {Data: []byte(adLimitsFile)}}
	l := testLoader(t, fsys, 30*time.Millisecond)
	ctx := context.Background()

	_, err := Load[[]domain.AdLimit](ctx, l, AdLimits)
	require.NoError(t, err)

	fsys["ad_limits.yaml"] = &fstest.MapFile{Data: []byte("[]")}

	assert.Eventually(t, func() bool {
		limits, err := Load[[]domain.AdLimit](ctx, l, AdLimits)
		return err == nil && len(limits) == 0
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, l.Loads(AdLimits))
}

func TestLoad_InvalidateForcesReload(t *testing.T) {
	fsys := fstest.MapFS{
		"ad_limits.yaml":  {Data: []byte(adLimitsFile)},
		"taxonomies.yaml": {Data: []byte(taxonomiesFile)},
	}
	l := testLoader(t, fsys, time.Minute)
	ctx := context.Background()

	_, err := Load[[]domain.AdLimit](ctx, l, AdLimits)
	require.NoError(t, err)
	_, err = Load[*domain.Taxonomies](ctx, l, Taxonomies)
	require.NoError(t, err)
	require.Len(t, l.Entries(), 2)

	assert.Equal(t, 2, l.Invalidate())
	assert.Empty(t, l.Entries())

	_, err = Load[[]domain.AdLimit](ctx, l, AdLimits)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Loads(AdLimits))
	assert.Equal(t, map[Name]int{AdLimits: 2, Taxonomies: 1}, l.LoadCounts())
}

func TestLoad_ReloadIsIdempotent(t *testing.T) {
	fsys := fstest.MapFS{"ad_limits.yaml": {Data: []byte(adLimitsFile)}}
	l := testLoader(t, fsys, time.Minute)
	ctx := context.Background()

	first, err := Load[[]domain.AdLimit](ctx, l, AdLimits)
	require.NoError(t, err)
	l.Invalidate()
	second, err := Load[[]domain.AdLimit](ctx, l, AdLimits)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("reload mismatch (-first +second):\n%s", diff)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	l := testLoader(t, fstest.MapFS{}, time.Minute)

	_, err := l.Load(context.Background(), AssetSpecs)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrSourceNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, AssetSpecs, nf.Source)
	assert.Equal(t, "asset_specs.yaml", nf.Path)
	assert.Empty(t, l.Entries())
	assert.Equal(t, domainerrors.CodeSourceNotFound, domainerrors.CodeOf(err))
}

func TestLoad_UnknownSource(t *testing.T) {
	l := testLoader(t, fstest.MapFS{}, time.Minute)

	_, err := l.Load(context.Background(), "pricing")
	assert.ErrorIs(t, err, domainerrors.ErrSourceNotFound)
	assert.Contains(t, err.Error(), "not registered")
}

func TestLoad_ValidationFailureIsNotCached(t *testing.T) {
	fsys := fstest.MapFS{"ad_limits.yaml": {Data: []byte(`
- channel: REDDIT
  fields:
    - field: headline
      max_chars: -1
      max_words: 8
      emojis_allowed: true
`)}}
	l := testLoader(t, fsys, time.Minute)
	ctx := context.Background()

	_, err := l.Load(ctx, AdLimits)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrConfigValidation)

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ad_limits.yaml", verr.Source)
	assert.Equal(t, "[0].fields[0].max_chars", verr.First().Path)
	assert.Empty(t, l.Entries())

	// Fixing the file is picked up on the very next call.
	fsys["ad_limits.yaml"] = &fstest.MapFile{Data: []byte(adLimitsFile)}
	limits, err := Load[[]domain.AdLimit](ctx, l, AdLimits)
	require.NoError(t, err)
	assert.Len(t, limits, 1)
	assert.Equal(t, 2, l.Loads(AdLimits))
}

func TestLoad_CancelledContextSkipsRead(t *testing.T) {
	fsys := fstest.MapFS{"ad_limits.yaml": {Data: []byte(adLimitsFile)}}
	l := testLoader(t, fsys, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Load(ctx, AdLimits)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, l.Loads(AdLimits))
}

func TestLoad_CachedValueServedWithCancelledContext(t *testing.T) {
	fsys := fstest.MapFS{"ad_limits.yaml": {Data: []byte(adLimitsFile)}}
	l := testLoader(t, fsys, time.Minute)

	_, err := l.Load(context.Background(), AdLimits)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Load(ctx, AdLimits)
	assert.NoError(t, err)
}

func TestLoad_WrongType(t *testing.T) {
	fsys := fstest.MapFS{"taxonomies.yaml": {Data: []byte(taxonomiesFile)}}
	l := testLoader(t, fsys, time.Minute)

	_, err := Load[[]domain.AdLimit](context.Background(), l, Taxonomies)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "*domain.Taxonomies")
}

func TestLoad_ConcurrentColdReads(t *testing.T) {
	fsys := fstest.MapFS{"ad_limits.yaml": {Data: []byte(adLimitsFile)}}
	l := testLoader(t, fsys, time.Minute)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Load[[]domain.AdLimit](context.Background(), l, AdLimits)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	n := l.Loads(AdLimits)
	assert.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, 10)
	assert.Len(t, l.Entries(), 1)
}

func TestFindDataDir(t *testing.T) {
	t.Run("explicit directory", func(t *testing.T) {
		dir := t.TempDir()
		got, err := FindDataDir(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, got)
	})

	t.Run("explicit directory missing", func(t *testing.T) {
		_, err := FindDataDir(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("discovers ./data", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, "data"), 0o755))
		t.Chdir(root)

		got, err := FindDataDir("")
		require.NoError(t, err)
		want, err := filepath.EvalSymlinks(filepath.Join(root, "data"))
		require.NoError(t, err)
		gotResolved, err := filepath.EvalSymlinks(got)
		require.NoError(t, err)
		assert.Equal(t, want, gotResolved)
	})

	t.Run("discovers ../data", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, "data"), 0o755))
		require.NoError(t, os.Mkdir(filepath.Join(root, "web"), 0o755))
		t.Chdir(filepath.Join(root, "web"))

		got, err := FindDataDir("")
		require.NoError(t, err)
		want, err := filepath.EvalSymlinks(filepath.Join(root, "data"))
		require.NoError(t, err)
		gotResolved, err := filepath.EvalSymlinks(got)
		require.NoError(t, err)
		assert.Equal(t, want, gotResolved)
	})
}
