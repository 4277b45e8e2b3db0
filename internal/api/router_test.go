package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasim8799/api/internal/api/middleware"
	"github.com/jasim8799/api/internal/auth"
	"github.com/jasim8799/api/internal/config"
	"github.com/jasim8799/api/internal/delivery"
	"github.com/jasim8799/api/internal/services/app"
	"github.com/jasim8799/api/internal/services/app/apptest"
	"github.com/jasim8799/api/internal/services/catalog"
	"github.com/jasim8799/api/internal/services/catalog/catalogtest"
	"github.com/jasim8799/api/internal/services/system"
	"github.com/jasim8799/api/internal/utils"
	"github.com/jasim8799/api/pkg/mediaproxy"
)

const (
	testAPIKey = "test-api-key-0123456789"
	urlA       = "https://cdn-a.example.com/v/1.mp4"
	urlB       = "https://cdn-b.example.com/v/1.mp4"
)

type testServer struct {
	handler http.Handler
	cipher  *delivery.LinkCipher
	tokens  *auth.JWTProvider
}

type serverOptions struct {
	up      map[delivery.ProviderID]bool
	limiter middleware.Limiter
	admin   bool

	proxyToken  string
	apiTarget   string
	videoTarget string
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	logger := utils.NewNopLogger()

	cfg := &config.Config{}
	cfg.Auth.APIKey = testAPIKey
	cfg.Delivery.Policy = string(delivery.PolicyPermissive)
	cfg.Delivery.DefaultProvider = "cdnA"

	cipher, err := delivery.NewLinkCipher(delivery.CipherConfig{Secret: "test-secret"})
	require.NoError(t, err)

	metrics := system.NewMetricsService(logger, prometheus.NewRegistry())

	prober := delivery.ProbeFunc(func(_ context.Context, target delivery.Target) error {
		if opts.up[target.ID] {
			return nil
		}
		return errors.New("unreachable")
	})
	cache := delivery.NewHealthCache([]delivery.Target{
		{ID: "cdnA", URL: "https://cdn-a.example.com/health", Timeout: time.Second},
		{ID: "cdnB", URL: "https://cdn-b.example.com/health", Timeout: time.Second},
	}, time.Minute, logger, delivery.WithProber(prober), delivery.WithRecorder(metrics))

	classifier := delivery.NewClassifier([]delivery.Rule{
		{Provider: "cdnA", Match: "cdn-a.example.com"},
		{Provider: "cdnB", Match: "cdn-b.example.com"},
	})
	resolver := delivery.NewResolver(cache, classifier, cipher, cfg.ResolverConfig(), metrics, logger)

	store := catalogtest.NewStore()
	svc := catalog.NewService(store.Movies(), store.Series(), store.Episodes(), resolver, logger)
	health := system.NewHealthService(nil, cache, logger, system.HealthServiceConfig{Version: "test"})

	var tokens *auth.JWTProvider
	if opts.admin {
		tokens = auth.NewJWTProvider(auth.JWTConfig{Secret: "jwt-secret-0123456789", TokenDuration: time.Hour}, logger)
	}

	appSvc := app.NewService(apptest.NewStore().Repositories(), nil, logger)

	cfg.Proxy.Token = opts.proxyToken
	var proxies []*mediaproxy.Proxy
	if opts.apiTarget != "" {
		p, err := mediaproxy.New(mediaproxy.Config{Name: "api", Prefix: "/proxy/api", Target: opts.apiTarget}, logger)
		require.NoError(t, err)
		proxies = append(proxies, p)
	}
	if opts.videoTarget != "" {
		p, err := mediaproxy.New(mediaproxy.Config{Name: "video", Prefix: "/proxy/video", Target: opts.videoTarget, FlushInterval: -1}, logger,
			mediaproxy.WithGate(func(ctx context.Context) error { return resolver.TargetAvailable(ctx, opts.videoTarget) }))
		require.NoError(t, err)
		proxies = append(proxies, p)
	}

	router := NewRouter(Dependencies{
		Catalog:   svc,
		App:       appSvc,
		Providers: cache,
		Health:    health,
		Metrics:   metrics,
		Proxies:   proxies,
		Limiter:   opts.limiter,
		Tokens:    tokens,
	}, cfg, logger)
	return &testServer{handler: router, cipher: cipher, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("x-api-key", testAPIKey)
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error.Message
}

func movieBody(title string, urls ...string) map[string]any {
	links := make([]map[string]string, 0, len(urls))
	for _, u := range urls {
		links = append(links, map[string]string{"quality": "1080p", "language": "English", "url": u})
	}
	return map[string]any{
		"title":       title,
		"overview":    "A heist.",
		"posterPath":  "https://img.example.com/heat.jpg",
		"releaseDate": "1995-12-15",
		"voteAverage": 8.3,
		"category":    "Action",
		"region":      "Hollywood",
		"videoLinks":  links,
	}
}

type movieJSON struct {
	ID         string `json:"_id"`
	Title      string `json:"title"`
	Provider   string `json:"provider"`
	Views      int64  `json:"views"`
	VideoLinks []struct {
		URL string `json:"url"`
	} `json:"videoLinks"`
}

func createMovie(t *testing.T, s *testServer, headers map[string]string, urls ...string) movieJSON {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/movies", movieBody("Heat", urls...), headers)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Message string    `json:"message"`
		Movie   movieJSON `json:"movie"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Movie uploaded successfully", body.Message)
	return body.Movie
}

func TestRouter_PublicRoutes(t *testing.T) {
	s := newTestServer(t, serverOptions{up: map[delivery.ProviderID]bool{"cdnA": true}})

	rec := s.do(t, http.MethodGet, "/", nil, map[string]string{"x-api-key": ""})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API is live", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = s.do(t, http.MethodGet, "/health", nil, map[string]string{"x-api-key": ""})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status"`)

	rec = s.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `catalog_http_requests_total{method="GET",path="/health",status="200"} 1`)
}

func TestRouter_RequiresAPIKey(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	for _, key := range []string{"", "wrong-key"} {
		rec := s.do(t, http.MethodGet, "/api/movies", nil, map[string]string{"x-api-key": key})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Forbidden: Invalid or missing API key", errorMessage(t, rec))
	}

	rec := s.do(t, http.MethodGet, "/api/movies", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_MovieLifecycle(t *testing.T) {
	s := newTestServer(t, serverOptions{up: map[delivery.ProviderID]bool{"cdnA": true, "cdnB": false}})

	movie := createMovie(t, s, nil, urlA, urlB)
	require.Len(t, movie.VideoLinks, 2)
	assert.NotEqual(t, urlA, movie.VideoLinks[0].URL)

	// cdnB is down, so only the cdnA link is served.
	rec := s.do(t, http.MethodGet, "/api/movies?category=action&region=All", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Page       int64       `json:"page"`
		Limit      int64       `json:"limit"`
		Total      int64       `json:"total"`
		TotalPages int64       `json:"totalPages"`
		Movies     []movieJSON `json:"movies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Page)
	assert.Equal(t, int64(1000), page.Limit)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Movies, 1)
	require.Len(t, page.Movies[0].VideoLinks, 1)
	plain, err := s.cipher.Decrypt(page.Movies[0].VideoLinks[0].URL)
	require.NoError(t, err)
	assert.Equal(t, urlA, plain)
	assert.Equal(t, "cdnA", page.Movies[0].Provider)

	rec = s.do(t, http.MethodGet, "/api/movies/"+movie.ID+"/stream/0", nil, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, urlA, rec.Header().Get("Location"))

	rec = s.do(t, http.MethodGet, "/api/movies/"+movie.ID+"/stream/1", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/movies/"+movie.ID+"/increment-views", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Views incremented"`)
	assert.Contains(t, rec.Body.String(), `"views":1`)

	rec = s.do(t, http.MethodPut, "/api/movies/"+movie.ID+"/add-source",
		map[string]any{"videoSource": map[string]string{"quality": "480p", "language": "Hindi", "url": urlA}}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Video source added"`)

	rec = s.do(t, http.MethodGet, "/api/movies/titles", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"_id":"`+movie.ID+`","title":"Heat"}]`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/movies/search?title=hea", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Heat"`)

	rec = s.do(t, http.MethodDelete, "/api/movies/"+movie.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Movie deleted"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/movies/"+movie.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_MovieRequestErrors(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		code    int
		message string
	}{
		{"invalid id", http.MethodGet, "/api/movies/not-an-id", nil, http.StatusBadRequest, "Invalid ID format"},
		{"limit too large", http.MethodGet, "/api/movies?limit=5000", nil, http.StatusBadRequest, "limit must be between 1 and 1000"},
		{"page zero", http.MethodGet, "/api/movies?page=0", nil, http.StatusBadRequest, "page must be a positive integer"},
		{"validation", http.MethodPost, "/api/movies", map[string]any{"title": "x"}, http.StatusBadRequest, "Validation failed"},
		{"category retired", http.MethodGet, "/api/movies/category/Action", nil, http.StatusGone, catalog.DeprecatedCategoryMessage},
		{"empty search", http.MethodGet, "/api/movies/search", nil, http.StatusBadRequest, ""},
		{"episodes without series", http.MethodGet, "/api/episodes", nil, http.StatusBadRequest, "seriesId query param required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body, nil)
			assert.Equal(t, tt.code, rec.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, errorMessage(t, rec))
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/movies", strings.NewReader("{"))
	req.Header.Set("x-api-key", testAPIKey)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", errorMessage(t, rec))
}

func TestRouter_AdminGate(t *testing.T) {
	s := newTestServer(t, serverOptions{up: map[delivery.ProviderID]bool{"cdnA": true}, admin: true})

	rec := s.do(t, http.MethodPost, "/api/movies", movieBody("Heat", urlA), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/movies", movieBody("Heat", urlA), map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	viewer, err := s.tokens.GenerateToken("viewer", nil)
	require.NoError(t, err)
	rec = s.do(t, http.MethodPost, "/api/movies", movieBody("Heat", urlA), map[string]string{"Authorization": "Bearer " + viewer})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin, err := s.tokens.GenerateToken("ops", []string{auth.RoleAdmin})
	require.NoError(t, err)
	movie := createMovie(t, s, map[string]string{"Authorization": "Bearer " + admin}, urlA)

	// Reads only need the API key.
	rec = s.do(t, http.MethodGet, "/api/movies/"+movie.ID, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/providers/refresh", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/providers/refresh", nil, map[string]string{"Authorization": "Bearer " + admin})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_SeriesAndEpisodes(t *testing.T) {
	s := newTestServer(t, serverOptions{up: map[delivery.ProviderID]bool{"cdnA": true}})

	rec := s.do(t, http.MethodPost, "/api/series", map[string]any{
		"title":        "Dark",
		"overview":     "Time travel.",
		"posterPath":   "https://img.example.com/dark.jpg",
		"releaseDate":  "2017-12-01",
		"category":     "Drama",
		"region":       "Hollywood",
		"videoSources": []map[string]string{{"quality": "720p", "language": "German", "url": urlA}},
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Message string `json:"message"`
		Series  struct {
			ID string `json:"_id"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Series uploaded successfully", created.Message)
	seriesID := created.Series.ID

	rec = s.do(t, http.MethodGet, "/api/series/category/Drama?region=hollywood", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Dark"`)

	rec = s.do(t, http.MethodGet, "/api/series/category/drama", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/series/"+seriesID, map[string]any{"title": "Dark (2017)"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Dark (2017)"`)

	for _, n := range []int{2, 1} {
		rec = s.do(t, http.MethodPost, "/api/episodes", map[string]any{
			"seriesId":      seriesID,
			"episodeNumber": n,
			"title":         "Episode",
			"videoSources":  []map[string]string{{"quality": "720p", "language": "German", "url": urlA}},
		}, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"message":"Episode added"`)
	}

	rec = s.do(t, http.MethodGet, "/api/episodes?seriesId="+seriesID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var episodes []struct {
		EpisodeNumber int `json:"episodeNumber"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &episodes))
	require.Len(t, episodes, 2)
	assert.Equal(t, 1, episodes[0].EpisodeNumber)
	assert.Equal(t, 2, episodes[1].EpisodeNumber)

	rec = s.do(t, http.MethodDelete, "/api/series/"+seriesID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Series deleted"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/series/"+seriesID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ProviderStatus(t *testing.T) {
	s := newTestServer(t, serverOptions{up: map[delivery.ProviderID]bool{"cdnA": true}})

	rec := s.do(t, http.MethodGet, "/api/providers/status", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Policy   string `json:"policy"`
		Snapshot struct {
			Status map[string]bool `json:"status"`
		} `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "permissive", body.Policy)
	assert.Equal(t, map[string]bool{"cdnA": true, "cdnB": false}, body.Snapshot.Status)
}

func TestRouter_RateLimit(t *testing.T) {
	s := newTestServer(t, serverOptions{limiter: utils.NewRateLimiter(time.Minute, 2)})

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodGet, "/api/movies", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("RateLimit-Limit"))
	}

	rec := s.do(t, http.MethodGet, "/api/movies", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = s.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRouter_AppVersion(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := s.do(t, http.MethodGet, "/api/app/version", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Version not found", errorMessage(t, rec))

	rec = s.do(t, http.MethodPost, "/api/app/version", map[string]any{"version": "1.0.3", "changelog": "Bug fixes", "platform": "desktop"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/app/version", map[string]any{"version": "1.0.3", "changelog": "Bug fixes", "mandatory": true, "platform": "android"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/app/version", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var version struct {
		Version   string `json:"version"`
		Mandatory bool   `json:"mandatory"`
		Platform  string `json:"platform"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &version))
	assert.Equal(t, "1.0.3", version.Version)
	assert.True(t, version.Mandatory)
	assert.Equal(t, "android", version.Platform)

	rec = s.do(t, http.MethodGet, "/api/app/version?platform=ios", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Crashes(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	for _, msg := range []string{"first", "second"} {
		rec := s.do(t, http.MethodPost, "/api/crashes", map[string]any{"message": msg, "stackTrace": "at main", "platform": "android"}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, "/api/crashes", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var crashes []struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &crashes))
	assert.Len(t, crashes, 2)

	rec = s.do(t, http.MethodPost, "/api/crashes", nil, map[string]string{"x-api-key": ""})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_Analytics(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := s.do(t, http.MethodPost, "/api/analytics/track", map[string]any{"data": map[string]any{"movieId": "x"}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Event type is required.", errorMessage(t, rec))

	for _, event := range []string{"app_install", "movie_viewed", "movie_viewed", "movie_play"} {
		rec = s.do(t, http.MethodPost, "/api/analytics/track", map[string]any{"event": event}, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"message":"Analytics event tracked successfully."}`, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/analytics/summary", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalInstalls":1,"totalViews":2,"todayViews":2,"totalPlays":1}`, rec.Body.String())
}

func TestRouter_AppStats(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	steps := []struct {
		path    string
		message string
	}{
		{"/api/appstats/visit", "Visit recorded."},
		{"/api/appstats/visit", "Visit recorded."},
		{"/api/appstats/install", "Install recorded."},
		{"/api/appstats/play", "Movie play recorded."},
	}
	for _, step := range steps {
		rec := s.do(t, http.MethodPost, step.path, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"`+step.message+`"}`, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, "/api/appstats", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		TotalInstalls   int64 `json:"totalInstalls"`
		TotalVisits     int64 `json:"totalVisits"`
		TodayVisits     int64 `json:"todayVisits"`
		TotalMoviePlays int64 `json:"totalMoviePlays"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats.TotalInstalls)
	assert.EqualValues(t, 2, stats.TotalVisits)
	assert.EqualValues(t, 2, stats.TodayVisits)
	assert.EqualValues(t, 1, stats.TotalMoviePlays)
}

func TestRouter_ProxyAnalytics(t *testing.T) {
	t.Run("proxy token", func(t *testing.T) {
		s := newTestServer(t, serverOptions{proxyToken: "proxy-secret"})

		rec := s.do(t, http.MethodPost, "/api/proxy-analytics", map[string]any{"event": "segment_served"}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized", errorMessage(t, rec))

		bearer := map[string]string{"Authorization": "Bearer proxy-secret", "x-api-key": ""}
		rec = s.do(t, http.MethodPost, "/api/proxy-analytics", map[string]any{}, bearer)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Event type is required", errorMessage(t, rec))

		rec = s.do(t, http.MethodPost, "/api/proxy-analytics", map[string]any{"event": "segment_served"}, bearer)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"message":"Analytics event logged"}`, rec.Body.String())
	})

	t.Run("api key without proxy token", func(t *testing.T) {
		s := newTestServer(t, serverOptions{})
		rec := s.do(t, http.MethodPost, "/api/proxy-analytics", map[string]any{"event": "segment_served"}, nil)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestRouter_Proxies(t *testing.T) {
	var paths []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer upstream.Close()

	s := newTestServer(t, serverOptions{
		up:          map[delivery.ProviderID]bool{"cdnA": true},
		proxyToken:  "proxy-secret",
		apiTarget:   upstream.URL,
		videoTarget: "https://cdn-b.example.com/videos",
	})
	bearer := map[string]string{"Authorization": "Bearer proxy-secret", "x-api-key": ""}

	rec := s.do(t, http.MethodGet, "/proxy/api/users/1?full=true", nil, map[string]string{"x-api-key": ""})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", errorMessage(t, rec))

	rec = s.do(t, http.MethodGet, "/proxy/api/users/1?full=true", nil, bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/proxy/api", nil, bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"/users/1?full=true", "/"}, paths)

	// cdnB serves the video target and is down.
	rec = s.do(t, http.MethodGet, "/proxy/video/v/1.mp4", nil, bearer)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Upstream provider is currently unavailable", errorMessage(t, rec))
}
