package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeWebhook_Accepted(t *testing.T) {
	ts := setupTestServer(t, testFS())

	body := `{"jobId":"job-1","options":[{"option":1,"fields":[{"field":"primary_text","value":"Hi"}]}]}`
	resp := ts.api.Post("/api/make/webhook", "Content-Type: application/json", strings.NewReader(body))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var got MakeWebhookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, "Webhook received", got.Message)
	assert.True(t, strings.HasPrefix(got.ReceiptID, "whk-"))
}

func TestMakeWebhook_Rejected(t *testing.T) {
	ts := setupTestServer(t, testFS())

	tests := []struct {
		name string
		body string
	}{
		{name: "missing options", body: `{"jobId":"job-1"}`},
		{name: "null options", body: `{"options":null}`},
		{name: "options not an array", body: `{"options":{"option":1}}`},
		{name: "not json", body: `options=1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/make/webhook", "Content-Type: application/json", strings.NewReader(tt.body))

			assert.Equal(t, http.StatusBadRequest, resp.Code)
			e := decodeError(t, resp.Body.Bytes())
			assert.Equal(t, "VALIDATION", e.Code)
			assert.Equal(t, invalidWebhookPayload, e.Message)
		})
	}
}

func TestMakeWebhook_AcceptedShapes(t *testing.T) {
	ts := setupTestServer(t, testFS())

	tests := []struct {
		name string
		body string
	}{
		{name: "empty options", body: `{"options":[]}`},
		{name: "numeric job id", body: `{"jobId":42,"options":[]}`},
		{name: "null job id", body: `{"jobId":null,"options":[{}]}`},
		{name: "object job id", body: `{"jobId":{"run":7},"options":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/make/webhook", "Content-Type: application/json", strings.NewReader(tt.body))

			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			var got MakeWebhookResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
			assert.True(t, got.Success)
		})
	}
}
