package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sourcing-cli/internal/model"
	"github.com/sells-group/sourcing-cli/internal/source"
	"github.com/sells-group/sourcing-cli/internal/sourcing"
)

type stubConnector struct {
	name    string
	results []model.SourcedCompany
}

func (s *stubConnector) Name() string  { return s.name }
func (s *stubConnector) Trusted() bool { return false }
func (s *stubConnector) Search(context.Context, source.Query) []model.SourcedCompany {
	return s.results
}

type stubEnricher struct {
	research *model.OwnerResearch
	status   model.EnrichmentStatus
	contact  *model.Contact
	err      error
}

func (s *stubEnricher) EnrichCompany(context.Context, string) (*model.OwnerResearch, error) {
	return s.research, s.err
}

func (s *stubEnricher) Status(context.Context, string) (model.EnrichmentStatus, *model.Contact, error) {
	return s.status, s.contact, s.err
}

func newTestRouter(enricher enrichService) http.Handler {
	agg := sourcing.NewAggregator(nil, []source.Connector{&stubConnector{
		name: "QuietLight",
		results: []model.SourcedCompany{{
			Name:        "Bright Smile Dental",
			Source:      "QuietLight",
			Description: "Established dental practice for sale",
			Location:    "Austin, TX",
		}},
	}})
	return newRouter(agg, enricher, []string{"*"})
}

func TestServe_Health(t *testing.T) {
	router := newTestRouter(&stubEnricher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServe_Search(t *testing.T) {
	router := newTestRouter(&stubEnricher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sourcing/search",
		strings.NewReader(`{"sector": "dental"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count   int                    `json:"count"`
		Cached  bool                   `json:"cached"`
		Results []model.SourcedCompany `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.False(t, resp.Cached)
	assert.Equal(t, "Bright Smile Dental", resp.Results[0].Name)
	assert.NotNil(t, resp.Results[0].FitScore)

	// A repeat of the same criteria is served from cache and says so.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sourcing/search",
		strings.NewReader(`{"sector": "dental"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Cached)
	assert.Equal(t, 1, resp.Count)
}

func TestServe_SearchEmptyCriteria(t *testing.T) {
	router := newTestRouter(&stubEnricher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sourcing/search", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sourcing/search", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_Enrich(t *testing.T) {
	router := newTestRouter(&stubEnricher{research: &model.OwnerResearch{
		Status:    model.EnrichmentCompleted,
		Extracted: model.OwnerInfo{Name: "Jane Harper"},
		ContactID: "ct1",
	}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/enrichment/companies/c1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var res model.OwnerResearch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, model.EnrichmentCompleted, res.Status)
	assert.Equal(t, "Jane Harper", res.Extracted.Name)
}

func TestServe_EnrichError(t *testing.T) {
	router := newTestRouter(&stubEnricher{err: assert.AnError})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/enrichment/companies/c1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServe_Status(t *testing.T) {
	router := newTestRouter(&stubEnricher{status: model.EnrichmentNotStarted})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/enrichment/companies/c1/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"not_started","contact":null}`, rec.Body.String())
}

func TestServe_CacheClear(t *testing.T) {
	router := newTestRouter(&stubEnricher{})

	// Populate the cache, then clear it.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sourcing/search",
		strings.NewReader(`{"sector": "dental"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/cache/clear", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cleared":1}`, rec.Body.String())
}
