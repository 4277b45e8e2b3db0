package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(10*time.Minute, 2)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	res, err := rl.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)

	now = now.Add(time.Minute)
	res, _ = rl.Check(ctx, "1.2.3.4")
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	res, _ = rl.Check(ctx, "1.2.3.4")
	assert.False(t, res.Allowed)
	assert.Equal(t, 9*time.Minute, res.ResetAfter)

	res, _ = rl.Check(ctx, "5.6.7.8")
	assert.True(t, res.Allowed)

	// The first request leaves the window.
	now = now.Add(9*time.Minute + time.Second)
	res, _ = rl.Check(ctx, "1.2.3.4")
	assert.True(t, res.Allowed)

	now = now.Add(time.Hour)
	rl.cleanup()
	assert.Empty(t, rl.requests)
}

func TestGetRequestIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", GetRequestIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", GetRequestIP(req))
}

func TestMatchPatterns(t *testing.T) {
	assert.Equal(t, `^Sci\.Fi\+$`, ExactMatchPattern("Sci.Fi+"))
	assert.Equal(t, `a\(b\)`, ContainsPattern("a(b)"))
}

type statusErr struct{ code int }

func (e statusErr) Error() string   { return "status" }
func (e statusErr) StatusCode() int { return e.code }

func TestStatusCodeAndAppErrorResponse(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusCode(NotFoundError("Movie not found", nil)))
	assert.Equal(t, http.StatusGone, StatusCode(statusErr{http.StatusGone}))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("boom")))

	rec := httptest.NewRecorder()
	RespondWithAppError(rec, errors.New("connection reset by peer"), "Failed to list movies")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":{"message":"Failed to list movies"}}`, rec.Body.String())
}

func TestValidate(t *testing.T) {
	type link struct {
		URL string `json:"url" validate:"required,http_url"`
	}
	type request struct {
		Region string `json:"region" validate:"required,region"`
		Date   string `json:"releaseDate" validate:"iso8601"`
		Parent string `json:"seriesId" validate:"objectid"`
		Links  []link `json:"videoLinks" validate:"required,min=1,dive"`
	}

	valid := request{Region: "Bollywood", Date: "2024-02-29", Parent: "65a1b2c3d4e5f60718293a4b", Links: []link{{URL: "https://a.example.com/x"}}}
	require.NoError(t, Validate(valid))

	invalid := request{Region: "Tollywood", Date: "29/02/2024", Parent: "nope", Links: []link{{URL: "ftp://x"}}}
	err := Validate(invalid)
	require.Error(t, err)

	rec := httptest.NewRecorder()
	RespondWithValidationError(rec, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error struct {
			Message string                `json:"message"`
			Errors  []ValidationErrorItem `json:"errors"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Validation failed", body.Error.Message)

	fields := make([]string, 0, len(body.Error.Errors))
	for _, e := range body.Error.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"region", "releaseDate", "seriesId", "videoLinks[0].url"}, fields)
}

func TestExtractBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := ExtractBearerToken(req)
	assert.ErrorIs(t, err, ErrUnauthorized)

	req.Header.Set("Authorization", "Bearer abc.def")
	token, err := ExtractBearerToken(req)
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)
}
