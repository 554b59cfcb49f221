package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/textsearch/json", r.URL.Path)
		assert.Equal(t, "dental practice Austin, TX", r.URL.Query().Get("query"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"name": "Bright Smiles Dental",
				"formatted_address": "100 Congress Ave, Austin, TX 78701, USA",
				"place_id": "ChIJabc123",
				"rating": 4.8,
				"user_ratings_total": 320,
				"types": ["dentist", "health"]
			}]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.TextSearch(context.Background(), "dental practice Austin, TX")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bright Smiles Dental", got[0].Name)
	assert.Equal(t, 320, got[0].UserRatingsTotal)
	assert.Equal(t, []string{"dentist", "health"}, got[0].Types)
}

func TestTextSearchZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.TextSearch(context.Background(), "unicorn ranches antarctica")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTextSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "results": []}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.TextSearch(context.Background(), "dental")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}
