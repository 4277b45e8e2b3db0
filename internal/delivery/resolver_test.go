package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jasim8799/api/internal/models"
	"github.com/jasim8799/api/internal/utils"
)

type staticStatus map[ProviderID]bool

func (s staticStatus) GetStatus(context.Context) map[ProviderID]bool {
	return s
}

type countingRecorder struct {
	dropped map[string]int
}

func (r *countingRecorder) ProbeCompleted(ProviderID, bool, time.Duration) {}
func (r *countingRecorder) CacheLookup(bool)                               {}
func (r *countingRecorder) LinksDropped(reason string, n int) {
	if r.dropped == nil {
		r.dropped = make(map[string]int)
	}
	r.dropped[reason] += n
}

type resolverFixture struct {
	resolver *Resolver
	cipher   *LinkCipher
	recorder *countingRecorder
}

func newResolverFixture(t *testing.T, status map[ProviderID]bool, policy Policy) *resolverFixture {
	t.Helper()
	c := newTestCipher(t)
	rec := &countingRecorder{}
	r := NewResolver(staticStatus(status), testClassifier(), c,
		ResolverConfig{Policy: policy, DefaultProvider: "cdnA"}, rec, utils.NewNopLogger())
	return &resolverFixture{resolver: r, cipher: c, recorder: rec}
}

func (f *resolverFixture) link(t *testing.T, quality, rawURL string) models.DeliveryLink {
	t.Helper()
	enc, err := f.cipher.Encrypt(rawURL)
	require.NoError(t, err)
	return models.DeliveryLink{Quality: quality, Language: "Hindi", URL: enc}
}

func TestResolver_FiltersDownProvider(t *testing.T) {
	f := newResolverFixture(t, map[ProviderID]bool{"cdnA": true, "cdnB": false}, PolicyPermissive)

	x := f.link(t, "720p", "https://cdn-a.example.com/x")
	y := f.link(t, "1080p", "https://cdn-b.example.com/y")
	rec := &models.MediaRecord{ID: bson.NewObjectID(), Kind: models.KindMovie, Title: "M", Links: []models.DeliveryLink{x, y}}

	out, err := f.resolver.Resolve(context.Background(), []*models.MediaRecord{rec})
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, []models.DeliveryLink{x}, out[0].Links, "kept links stay encrypted")
	assert.Equal(t, rec.ID, out[0].ID)
	assert.Equal(t, "M", out[0].Title)
	assert.Len(t, rec.Links, 2, "input records are not modified")
	assert.Equal(t, 1, f.recorder.dropped[DropProviderDown])
}

func TestResolver_PermissiveAllDown(t *testing.T) {
	f := newResolverFixture(t, map[ProviderID]bool{"cdnA": false, "cdnB": false}, PolicyPermissive)

	records := []*models.MediaRecord{
		{ID: bson.NewObjectID(), Title: "one", Links: []models.DeliveryLink{f.link(t, "720p", "https://cdn-a.example.com/1")}},
		{ID: bson.NewObjectID(), Title: "two", Links: []models.DeliveryLink{f.link(t, "720p", "https://cdn-b.example.com/2")}},
	}

	out, err := f.resolver.Resolve(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, out, 2)

	for i, r := range out {
		assert.Equal(t, records[i].Title, r.Title)
		assert.NotNil(t, r.Links)
		assert.Empty(t, r.Links)
	}
}

func TestResolver_StrictAllDown(t *testing.T) {
	f := newResolverFixture(t, map[ProviderID]bool{"cdnA": false, "cdnB": false, "archive": false, "drive": false}, PolicyStrict)

	records := []*models.MediaRecord{
		{ID: bson.NewObjectID(), Links: []models.DeliveryLink{f.link(t, "720p", "https://cdn-a.example.com/1")}},
	}

	_, err := f.resolver.Resolve(context.Background(), records)
	assert.ErrorIs(t, err, ErrAllProvidersDown)
}

func TestResolver_StrictWithOneProviderUp(t *testing.T) {
	f := newResolverFixture(t, map[ProviderID]bool{"cdnA": false, "cdnB": true}, PolicyStrict)

	records := []*models.MediaRecord{
		{ID: bson.NewObjectID(), Links: []models.DeliveryLink{f.link(t, "720p", "https://cdn-a.example.com/1")}},
	}

	out, err := f.resolver.Resolve(context.Background(), records)
	require.NoError(t, err)
	assert.Empty(t, out[0].Links)
}

func TestResolver_StrictWithoutProviders(t *testing.T) {
	c := newTestCipher(t)
	r := NewResolver(staticStatus{}, NewClassifier(nil), c, ResolverConfig{Policy: PolicyStrict}, nil, utils.NewNopLogger())

	enc, err := c.Encrypt("https://anything.example.com/v.mp4")
	require.NoError(t, err)
	link := models.DeliveryLink{Quality: "720p", Language: "Hindi", URL: enc}

	out, err := r.Resolve(context.Background(), []*models.MediaRecord{{Links: []models.DeliveryLink{link}}})
	require.NoError(t, err)
	assert.Equal(t, []models.DeliveryLink{link}, out[0].Links)
}

func TestResolver_UnknownDomainRetained(t *testing.T) {
	f := newResolverFixture(t, map[ProviderID]bool{"cdnA": false, "cdnB": false}, PolicyPermissive)

	z := f.link(t, "480p", "https://unknown.example.org/z")
	out, err := f.resolver.Resolve(context.Background(), []*models.MediaRecord{{Links: []models.DeliveryLink{z}}})
	require.NoError(t, err)
	assert.Equal(t, []models.DeliveryLink{z}, out[0].Links)
}

func TestResolver_DropsUndecryptableLinks(t *testing.T) {
	f := newResolverFixture(t, map[ProviderID]bool{"cdnA": true}, PolicyPermissive)

	good := f.link(t, "720p", "https://cdn-a.example.com/ok")
	bad := models.DeliveryLink{Quality: "1080p", Language: "Hindi", URL: "not-a-ciphertext"}

	out, err := f.resolver.Resolve(context.Background(), []*models.MediaRecord{{Links: []models.DeliveryLink{bad, good}}})
	require.NoError(t, err)
	assert.Equal(t, []models.DeliveryLink{good}, out[0].Links)
	assert.Equal(t, 1, f.recorder.dropped[DropUndecryptable])
}

func TestResolver_LegacyPlaintextLinks(t *testing.T) {
	f := newResolverFixture(t, map[ProviderID]bool{"cdnA": true, "cdnB": false}, PolicyPermissive)

	up := models.DeliveryLink{Quality: "720p", Language: "Hindi", URL: "https://cdn-a.example.com/legacy"}
	down := models.DeliveryLink{Quality: "720p", Language: "Hindi", URL: "https://cdn-b.example.com/legacy"}

	out, err := f.resolver.Resolve(context.Background(), []*models.MediaRecord{{Links: []models.DeliveryLink{up, down}}})
	require.NoError(t, err)
	assert.Equal(t, []models.DeliveryLink{up}, out[0].Links)
}

func TestResolver_ProviderHint(t *testing.T) {
	f := newResolverFixture(t, map[ProviderID]bool{"cdnA": true, "cdnB": false}, PolicyPermissive)

	opaque := f.link(t, "720p", "https://short.example.net/abc")
	classified := f.link(t, "1080p", "https://cdn-a.example.com/abc")

	t.Run("hint applies to unrecognized urls", func(t *testing.T) {
		rec := &models.MediaRecord{Provider: "cdnB", Links: []models.DeliveryLink{opaque, classified}}
		out, err := f.resolver.Resolve(context.Background(), []*models.MediaRecord{rec})
		require.NoError(t, err)
		assert.Equal(t, []models.DeliveryLink{classified}, out[0].Links)
	})

	t.Run("unknown hint is ignored", func(t *testing.T) {
		rec := &models.MediaRecord{Provider: "mystery", Links: []models.DeliveryLink{opaque}}
		out, err := f.resolver.Resolve(context.Background(), []*models.MediaRecord{rec})
		require.NoError(t, err)
		assert.Equal(t, []models.DeliveryLink{opaque}, out[0].Links)
	})

	t.Run("default provider never filters", func(t *testing.T) {
		r := NewResolver(staticStatus{"cdnA": false}, testClassifier(), f.cipher,
			ResolverConfig{DefaultProvider: "cdnA"}, nil, utils.NewNopLogger())
		out, err := r.Resolve(context.Background(), []*models.MediaRecord{{Links: []models.DeliveryLink{opaque}}})
		require.NoError(t, err)
		assert.Equal(t, []models.DeliveryLink{opaque}, out[0].Links)
		assert.Equal(t, "cdnA", r.DisplayProvider(""))
		assert.Equal(t, "cdnB", r.DisplayProvider("cdnB"))
	})
}

func TestResolver_SameSnapshotForBatch(t *testing.T) {
	clock := newFakeClock()
	prober := newCountingProber(map[ProviderID]bool{"cdnA": true, "cdnB": true})
	cache := NewHealthCache(testTargets, DefaultCacheTTL, utils.NewNopLogger(), WithClock(clock.Now), WithProber(prober))

	c := newTestCipher(t)
	r := NewResolver(cache, testClassifier(), c, ResolverConfig{}, nil, utils.NewNopLogger())

	enc, err := c.Encrypt("https://cdn-a.example.com/1")
	require.NoError(t, err)
	records := make([]*models.MediaRecord, 50)
	for i := range records {
		records[i] = &models.MediaRecord{Links: []models.DeliveryLink{{URL: enc}}}
	}

	_, err = r.Resolve(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, int64(len(testTargets)), prober.calls.Load())
	assert.Equal(t, PolicyPermissive, r.Policy())
}

func TestResolver_EncryptLinksAndReveal(t *testing.T) {
	f := newResolverFixture(t, map[ProviderID]bool{"cdnA": true}, PolicyPermissive)

	in := []models.DeliveryLink{
		{Quality: "720p", Language: "Hindi", URL: "https://cdn-a.example.com/a"},
		{Quality: "1080p", Language: "English", URL: "https://cdn-b.example.com/b"},
	}

	out, err := f.resolver.EncryptLinks(in)
	require.NoError(t, err)
	require.Len(t, out, 2)

	for i := range in {
		assert.Equal(t, in[i].Quality, out[i].Quality)
		assert.NotEqual(t, in[i].URL, out[i].URL)
		assert.False(t, IsPlainURL(out[i].URL))

		plain, err := f.resolver.RevealURL(out[i])
		require.NoError(t, err)
		assert.Equal(t, in[i].URL, plain)
	}
	assert.Equal(t, "https://cdn-a.example.com/a", in[0].URL, "input links are not modified")
}

func TestResolver_ServableURL(t *testing.T) {
	f := newResolverFixture(t, map[ProviderID]bool{"cdnA": true, "cdnB": false}, PolicyPermissive)
	ctx := context.Background()

	plain, err := f.resolver.ServableURL(ctx, f.link(t, "720p", "https://cdn-a.example.com/x"), "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn-a.example.com/x", plain)

	_, err = f.resolver.ServableURL(ctx, f.link(t, "720p", "https://cdn-b.example.com/y"), "")
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	plain, err = f.resolver.ServableURL(ctx, f.link(t, "720p", "https://elsewhere.example.org/z"), "")
	require.NoError(t, err)
	assert.Equal(t, "https://elsewhere.example.org/z", plain)

	_, err = f.resolver.ServableURL(ctx, models.DeliveryLink{URL: "garbage"}, "")
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestIsPlainURL(t *testing.T) {
	assert.True(t, IsPlainURL("https://cdn-a.example.com/x"))
	assert.True(t, IsPlainURL("http://cdn-a.example.com"))
	assert.False(t, IsPlainURL("ftp://cdn-a.example.com/x"))
	assert.False(t, IsPlainURL("dTxt++V6/LPIYa0cN81XcP/ccZbwJ5fHptrRg48/Ewa0XqlgFABQmjOCtFQ6dYvB"))
	assert.False(t, IsPlainURL("https://"))
}

func TestResolver_TargetAvailable(t *testing.T) {
	f := newResolverFixture(t, map[ProviderID]bool{"cdnA": true, "cdnB": false}, PolicyStrict)
	ctx := context.Background()

	assert.NoError(t, f.resolver.TargetAvailable(ctx, "https://cdn-a.example.com"))
	assert.ErrorIs(t, f.resolver.TargetAvailable(ctx, "https://cdn-b.example.com/videos"), ErrProviderUnavailable)
	assert.NoError(t, f.resolver.TargetAvailable(ctx, "https://elsewhere.example.net"))
}
