package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAdLimits(t *testing.T) {
	ts := setupTestServer(t, testFS())

	tests := []struct {
		name        string
		path        string
		wantSummary string
		wantSubtype *string
		wantEmoji   bool
	}{
		{
			name:        "channel default",
			path:        "/api/v1/ad-limits?channel=REDDIT",
			wantSummary: "headline: 40 chars",
			wantEmoji:   true,
		},
		{
			name:        "exact subtype",
			path:        "/api/v1/ad-limits?channel=META&subtype=Open+Day",
			wantSummary: "primary_text: 90 chars",
			wantSubtype: strPtr("Open Day"),
			wantEmoji:   true,
		},
		{
			name:        "unknown subtype falls back to default",
			path:        "/api/v1/ad-limits?channel=META&subtype=Clearing",
			wantSummary: "primary_text: 125 chars, headline: 27 chars (×3)",
			wantEmoji:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get(tt.path)
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

			var got AdLimitsResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))

			assert.Equal(t, tt.wantSummary, got.Summary)
			assert.Equal(t, tt.wantSubtype, got.Subtype)
			assert.Equal(t, tt.wantEmoji, got.EmojiAllowed)
			assert.True(t, strings.HasPrefix(got.Display, "• **"))
		})
	}
}

func TestGetAdLimits_Errors(t *testing.T) {
	ts := setupTestServer(t, testFS())

	t.Run("missing channel", func(t *testing.T) {
		resp := ts.api.Get("/api/v1/ad-limits")
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "MISSING_PARAMETER", decodeError(t, resp.Body.Bytes()).Code)
	})

	t.Run("no profile", func(t *testing.T) {
		resp := ts.api.Get("/api/v1/ad-limits?channel=TIKTOK")
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body.Bytes()).Code)
	})
}

func TestCheckLimits(t *testing.T) {
	ts := setupTestServer(t, testFS())

	longText := strings.Repeat("a", 130)
	resp := ts.api.Post("/api/v1/limits/check", map[string]any{
		"channel": "META",
		"fields": map[string][]string{
			"Primary Text": {longText},
			"headline":     {"Open Day", "Visit us", "Book now"},
			"cta":          {"Learn more"},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var got CheckLimitsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))

	assert.Equal(t, "META", got.Channel)
	assert.Equal(t, "(default)", got.Subtype)
	assert.Equal(t, []string{"cta"}, got.Unmatched)

	require.Len(t, got.Fields, 2)
	assert.Equal(t, "primary_text", got.Fields[0].Field)
	assert.Equal(t, longText, got.Fields[0].Value)
	assert.Equal(t, 130, got.Fields[0].CharCount)
	assert.True(t, got.Fields[0].IsOverLimit)
	assert.Equal(t, strings.Repeat("a", 125)+"...", got.Fields[0].Shortened)

	assert.Equal(t, "headline", got.Fields[1].Field)
	assert.Equal(t, []any{"Open Day", "Visit us", "Book now"}, got.Fields[1].Value)
	assert.False(t, got.Fields[1].IsOverLimit)

	require.Len(t, got.Warnings, 1)
	assert.Equal(t, "primary_text exceeds 125 characters by 5", got.Warnings[0].Message)
}

func TestCheckLimits_UnknownChannel(t *testing.T) {
	ts := setupTestServer(t, testFS())

	resp := ts.api.Post("/api/v1/limits/check", map[string]any{
		"channel": "FAX",
		"fields":  map[string][]string{},
	})

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCheckLimits_EmptyFieldNameRejected(t *testing.T) {
	ts := setupTestServer(t, testFS())

	resp := ts.api.Post("/api/v1/limits/check", map[string]any{
		"channel": "META",
		"fields":  map[string][]string{"": {"Visit us"}},
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	e := decodeError(t, resp.Body.Bytes())
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Equal(t, "validation failed", e.Message)
}

func strPtr(s string) *string { return &s }
