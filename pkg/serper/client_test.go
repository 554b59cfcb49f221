package serper

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sourcing-cli/internal/resilience"
)

func TestSearch(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
		wantN   int
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{"organic": [
				{"title": "Acme Dental", "link": "https://acmedental.com", "snippet": "Family dentistry in Austin"},
				{"title": "Acme Dental Reviews", "link": "https://yelp.com/biz/acme", "snippet": "Reviews"}
			]}`,
			wantN: 2,
		},
		{
			name:   "empty_results",
			status: http.StatusOK,
			body:   `{"organic": []}`,
			wantN:  0,
		},
		{
			name:    "rate_limit",
			status:  http.StatusTooManyRequests,
			body:    `{"message": "rate limit"}`,
			wantErr: "unexpected status 429",
		},
		{
			name:    "unauthorized",
			status:  http.StatusForbidden,
			body:    `{"message": "invalid key"}`,
			wantErr: "unexpected status 403",
		},
		{
			name:    "malformed_response",
			status:  http.StatusOK,
			body:    `{invalid`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/search", r.URL.Path)
				assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))

				raw, _ := io.ReadAll(r.Body)
				var payload map[string]any
				require.NoError(t, json.Unmarshal(raw, &payload))
				assert.Equal(t, "dental practice austin", payload["q"])
				assert.EqualValues(t, 5, payload["num"])

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithBaseURL(srv.URL))
			resp, err := client.Search(context.Background(), "dental practice austin", 5)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, resp)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Len(t, resp.Organic, tt.wantN)
		})
	}
}

func TestSearchRateLimitIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "query", 5)
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestSearchDefaultsNum(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var payload map[string]any
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.EqualValues(t, 5, payload["num"])
		_, _ = w.Write([]byte(`{"organic": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "query", 0)
	require.NoError(t, err)
}
