package nppes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2.1", q.Get("version"))
		assert.Equal(t, "dentistry", q.Get("taxonomy_description"))
		assert.Equal(t, "NPI-2", q.Get("enumeration_type"))
		assert.Equal(t, "200", q.Get("limit"))
		assert.Equal(t, "200", q.Get("skip"))
		assert.Equal(t, "TX", q.Get("state"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"result_count": 1,
			"results": [{
				"number": "1234567890",
				"basic": {"organization_name": "AUSTIN SMILE DENTAL GROUP", "status": "A"},
				"addresses": [
					{"address_purpose": "MAILING", "city": "DALLAS", "state": "TX"},
					{"address_purpose": "LOCATION", "address_1": "100 MAIN ST", "city": "AUSTIN", "state": "TX", "postal_code": "787011234", "telephone_number": "512-555-0100"}
				],
				"taxonomies": [{"code": "122300000X", "desc": "Dentist", "primary": true}]
			}]
		}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL + "/"))
	resp, err := client.Search(context.Background(), SearchRequest{
		TaxonomyDescription: "dentistry",
		State:               "TX",
		Skip:                200,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	rec := resp.Results[0]
	assert.Equal(t, "1234567890", rec.Number)
	assert.Equal(t, "AUSTIN SMILE DENTAL GROUP", rec.Basic.OrganizationName)
	require.Len(t, rec.Addresses, 2)
	assert.Equal(t, "LOCATION", rec.Addresses[1].AddressPurpose)
	require.Len(t, rec.Taxonomies, 1)
	assert.True(t, rec.Taxonomies[0].Primary)
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL + "/"))
	_, err := client.Search(context.Background(), SearchRequest{TaxonomyDescription: "dentistry"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 503")
}
