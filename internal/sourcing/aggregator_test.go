package sourcing

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sourcing-cli/internal/model"
	"github.com/sells-group/sourcing-cli/internal/source"
)

type stubConnector struct {
	name    string
	trusted bool
	results []model.SourcedCompany
	calls   atomic.Int32
}

func (s *stubConnector) Name() string  { return s.name }
func (s *stubConnector) Trusted() bool { return s.trusted }

func (s *stubConnector) Search(_ context.Context, _ source.Query) []model.SourcedCompany {
	s.calls.Add(1)
	return s.results
}

func activeBusiness(name, src, location string) model.SourcedCompany {
	return model.SourcedCompany{
		Name:     name,
		Source:   src,
		Location: location,
		Extra:    map[string]any{"listing_type": model.ListingTypeActiveBusiness},
	}
}

func TestAggregator_Search(t *testing.T) {
	listings := &stubConnector{name: "QuietLight", results: []model.SourcedCompany{
		{Name: "Austin Smile Dental Group", Source: "QuietLight", Location: "Austin, TX", AskingPrice: "$1.2M"},
		{Name: "Boise Dental Partners", Source: "QuietLight", Location: "Boise, ID"},
		{Name: "Gourmet Food Truck", Source: "QuietLight", Location: "Austin, TX"},
	}}
	registry := &stubConnector{name: "NPPES", trusted: true, results: []model.SourcedCompany{
		activeBusiness("Hill Country Dental", "NPPES", "Austin, TX"),
	}}

	agg := NewAggregator(NewCache(time.Minute), []source.Connector{listings, registry})
	got, _ := agg.Search(context.Background(), model.Criteria{Sector: "dental", Location: "austin"})

	require.Len(t, got, 2)
	names := []string{got[0].Name, got[1].Name}
	assert.Contains(t, names, "Austin Smile Dental Group")
	assert.Contains(t, names, "Hill Country Dental")
	for _, co := range got {
		require.NotNil(t, co.FitScore)
		assert.GreaterOrEqual(t, *co.FitScore, minScoreWithCriteria)
	}
	// Boise result dropped by the location hard-filter, food truck by the
	// sector gate.
}

func TestAggregator_SortsByScoreDescending(t *testing.T) {
	conn := &stubConnector{name: "QuietLight", results: []model.SourcedCompany{
		{Name: "Partial dental", Source: "Craigslist"},
		{Name: "Dental practice with dental lab", Source: "QuietLight", AskingPrice: "$2M", Revenue: "$900k"},
	}}
	agg := NewAggregator(nil, []source.Connector{conn})
	got, _ := agg.Search(context.Background(), model.Criteria{Sector: "dental"})

	require.Len(t, got, 2)
	assert.Equal(t, "Dental practice with dental lab", got[0].Name)
	assert.GreaterOrEqual(t, *got[0].FitScore, *got[1].FitScore)
}

func TestAggregator_DedupesByNormalizedName(t *testing.T) {
	conn := &stubConnector{name: "QuietLight", results: []model.SourcedCompany{
		{Name: "Smile Dental, LLC", Source: "QuietLight"},
		{Name: "smile dental inc", Source: "DealStream"},
		{Name: "ab"}, // too short after normalization
	}}
	agg := NewAggregator(nil, []source.Connector{conn})
	got, _ := agg.Search(context.Background(), model.Criteria{Sector: "dental"})

	require.Len(t, got, 1)
	// first occurrence wins
	assert.Equal(t, "QuietLight", got[0].Source)
}

func TestAggregator_ActiveBusinessDedupeKeepsDistinctCities(t *testing.T) {
	conn := &stubConnector{name: "NPPES", trusted: true, results: []model.SourcedCompany{
		activeBusiness("Smile Dental", "NPPES", "Austin, TX"),
		activeBusiness("Smile Dental", "NPPES", "Dallas, TX"),
		activeBusiness("Smile Dental", "NPPES", "Austin, TX"),
	}}
	agg := NewAggregator(nil, []source.Connector{conn})
	got, _ := agg.Search(context.Background(), model.Criteria{Sector: "dental"})
	assert.Len(t, got, 2)
}

func TestAggregator_CacheHitSkipsConnectors(t *testing.T) {
	conn := &stubConnector{name: "QuietLight", results: []model.SourcedCompany{
		{Name: "Smile Dental", Source: "QuietLight"},
	}}
	agg := NewAggregator(NewCache(time.Minute), []source.Connector{conn})
	criteria := model.Criteria{Sector: "dental"}

	first, cached := agg.Search(context.Background(), criteria)
	assert.False(t, cached)

	second, cached := agg.Search(context.Background(), criteria)
	assert.True(t, cached)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), conn.calls.Load())
}

func TestAggregator_SourceSubsetAndDiscoverySkip(t *testing.T) {
	ql := &stubConnector{name: "QuietLight"}
	ef := &stubConnector{name: "EmpireFlippers"}
	registry := &stubConnector{name: "NPPES", trusted: true}

	agg := NewAggregator(nil, []source.Connector{ql, ef, registry})

	// subset selects one connector
	agg.Search(context.Background(), model.Criteria{Sector: "dental", Sources: []string{"quietlight"}})
	assert.Equal(t, int32(1), ql.calls.Load())
	assert.Equal(t, int32(0), ef.calls.Load())

	// trusted connectors sit out criteria-free searches
	agg.Search(context.Background(), model.Criteria{Location: "austin"})
	assert.Equal(t, int32(0), registry.calls.Load())
	assert.Equal(t, int32(1), ef.calls.Load())
}

func TestAggregator_NoCriteriaKeepsZeroScores(t *testing.T) {
	conn := &stubConnector{name: "QuietLight", results: []model.SourcedCompany{
		{Name: "Anything Goes Listing", Source: "SomewhereElse"},
	}}
	agg := NewAggregator(nil, []source.Connector{conn})
	got, _ := agg.Search(context.Background(), model.Criteria{})

	require.Len(t, got, 1)
	assert.Equal(t, 30, *got[0].FitScore)
}

func TestAggregator_MaxResultsCap(t *testing.T) {
	var many []model.SourcedCompany
	for i := 0; i < 5; i++ {
		many = append(many, model.SourcedCompany{
			Name:   "Dental Practice " + string(rune('A'+i)),
			Source: "QuietLight",
		})
	}
	conn := &stubConnector{name: "QuietLight", results: many}
	agg := NewAggregator(nil, []source.Connector{conn}, WithMaxResults(2))
	got, _ := agg.Search(context.Background(), model.Criteria{Sector: "dental"})

	assert.Len(t, got, 2)
}

func TestCache_TTLAndClear(t *testing.T) {
	c := NewCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", []model.SourcedCompany{{Name: "A"}})
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "A", got[0].Name)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)

	// writing prunes the stale entry, so Clear reports only the new one
	c.Set("k2", nil)
	assert.Equal(t, 1, c.Clear())
	_, ok = c.Get("k2")
	assert.False(t, ok)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "smile dental", normalizeName("Smile Dental, LLC"))
	assert.Equal(t, "smile dental", normalizeName("SMILE-DENTAL Inc."))
	assert.Equal(t, "acme", normalizeName("Acme & Co"))
}
