package source

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sourcing-cli/internal/geo"
	"github.com/sells-group/sourcing-cli/internal/model"
	"github.com/sells-group/sourcing-cli/pkg/nppes"
	"github.com/sells-group/sourcing-cli/pkg/overpass"
	"github.com/sells-group/sourcing-cli/pkg/places"
)

func TestTaxonomiesFor(t *testing.T) {
	tests := []struct {
		name     string
		sector   string
		keywords string
		want     []string
	}{
		{
			// substring key matching also picks up "ent" inside "dental"
			name:   "mapped sector",
			sector: "Dental",
			want:   []string{"dentistry", "orthodontics", "oral surgery", "otolaryngology"},
		},
		{
			name:     "keyword match merges without duplicates",
			sector:   "IVF clinics",
			keywords: "fertility",
			want:     []string{"reproductive endocrinology", "reproductive medicine", "fertility", "clinic", "general practice", "family medicine"},
		},
		{
			name:     "unmapped falls back to raw terms",
			sector:   "Plumbing",
			keywords: "drain cleaning",
			want:     []string{"drain cleaning", "plumbing"},
		},
		{
			name:     "fallback skips the other sector",
			sector:   "Other",
			keywords: "widgets",
			want:     []string{"widgets"},
		},
		{
			name: "empty input",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, taxonomiesFor(tt.sector, tt.keywords))
		})
	}
}

type fakeNPPESClient struct {
	mu       sync.Mutex
	requests []nppes.SearchRequest
	pages    map[int][]nppes.Record // keyed by Skip
}

func (f *fakeNPPESClient) Search(_ context.Context, req nppes.SearchRequest) (*nppes.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	results := f.pages[req.Skip]
	return &nppes.SearchResponse{ResultCount: len(results), Results: results}, nil
}

func TestNPPES_Search(t *testing.T) {
	rec := nppes.Record{
		Number: "1234567890",
		Basic:  nppes.Basic{OrganizationName: "SMILE DENTAL GROUP LLC", Status: "A"},
		Addresses: []nppes.Address{
			{AddressPurpose: "MAILING", Address1: "PO BOX 12", City: "DALLAS", State: "TX", PostalCode: "75201"},
			{AddressPurpose: "LOCATION", Address1: "600 CONGRESS AVE", City: "AUSTIN", State: "TX", PostalCode: "787011234", TelephoneNumber: "512-555-0100"},
		},
		Taxonomies: []nppes.Taxonomy{
			{Code: "1223G0001X", Desc: "Dentist", Primary: true},
		},
	}
	client := &fakeNPPESClient{pages: map[int][]nppes.Record{
		0:   {rec},
		200: {rec}, // same NPI on the second page dedupes
	}}

	n := NewNPPES(client)
	got := n.Search(context.Background(), Query{Sector: "Dental", Location: "Austin, TX"})

	// three taxonomy terms, two pages each
	assert.Len(t, client.requests, 6)
	for _, req := range client.requests {
		assert.Equal(t, "TX", req.State)
		assert.Equal(t, 200, req.Limit)
	}

	require.Len(t, got, 1)
	co := got[0]
	assert.Equal(t, "Smile Dental Group Llc", co.Name)
	assert.Equal(t, "NPPES", co.Source)
	assert.Equal(t, "https://npiregistry.cms.hhs.gov/provider-view/1234567890", co.SourceURL)
	assert.Equal(t, "Dentist - NPI #1234567890", co.Description)
	assert.Equal(t, "Dentist", co.Sector)
	assert.Equal(t, "Austin, TX", co.Location)
	assert.Equal(t, "600 Congress Ave, Austin, TX, 78701", co.Extra["address"])
	assert.Equal(t, "512-555-0100", co.Extra["phone"])
	assert.Equal(t, model.ListingTypeActiveBusiness, co.Extra["listing_type"])
	assert.True(t, co.IsActiveBusiness())
}

func TestNPPES_SkipsShortNames(t *testing.T) {
	client := &fakeNPPESClient{pages: map[int][]nppes.Record{
		0: {{Number: "1", Basic: nppes.Basic{OrganizationName: "AB"}}},
	}}
	got := NewNPPES(client).Search(context.Background(), Query{Sector: "dental"})
	assert.Empty(t, got)
}

func TestNPPES_NoTermsNoRequests(t *testing.T) {
	client := &fakeNPPESClient{}
	got := NewNPPES(client).Search(context.Background(), Query{})
	assert.Empty(t, got)
	assert.Empty(t, client.requests)
}

type fakeOverpassClient struct {
	mu       sync.Mutex
	patterns []string
	elements []overpass.Element
}

func (f *fakeOverpassClient) SearchNames(_ context.Context, pattern string, _ overpass.Bounds, _ int) ([]overpass.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patterns = append(f.patterns, pattern)
	return f.elements, nil
}

func TestOpenStreetMap_Search(t *testing.T) {
	client := &fakeOverpassClient{elements: []overpass.Element{
		{
			Type: "node", ID: 42,
			Tags: map[string]string{
				"name":           "Hill Country Dental",
				"addr:city":      "Austin",
				"addr:state":     "TX",
				"addr:street":    "Congress Ave",
				"addr:housenumber": "600",
				"addr:postcode":  "78701",
				"phone":          "+1-512-555-0100",
				"website":        "https://hillcountrydental.com",
				"amenity":        "dentist",
			},
		},
		{
			Type: "node", ID: 43,
			Tags: map[string]string{"name": "ab"},
		},
	}}

	o := NewOpenStreetMap(client, geo.NewResolver(nil))
	got := o.Search(context.Background(), Query{
		Location:      "Austin",
		MatchKeywords: []string{"dental", "clinic"},
	})

	require.NotEmpty(t, client.patterns)
	assert.Equal(t, "dental", client.patterns[0])

	require.Len(t, got, 1)
	co := got[0]
	assert.Equal(t, "Hill Country Dental", co.Name)
	assert.Equal(t, "OpenStreetMap", co.Source)
	assert.Equal(t, "https://hillcountrydental.com", co.SourceURL)
	assert.Equal(t, "https://hillcountrydental.com", co.Website)
	assert.Equal(t, "Austin, TX", co.Location)
	assert.Equal(t, "600 Congress Ave, Austin, TX, 78701", co.Extra["address"])
	assert.Equal(t, "+1-512-555-0100", co.Extra["phone"])
	assert.Equal(t, model.ListingTypeActiveBusiness, co.Extra["listing_type"])
}

func TestOpenStreetMap_NodeURLFallback(t *testing.T) {
	client := &fakeOverpassClient{elements: []overpass.Element{
		{Type: "way", ID: 99, Tags: map[string]string{"name": "Corner Clinic", "amenity": "clinic"}},
	}}

	o := NewOpenStreetMap(client, geo.NewResolver(nil))
	got := o.Search(context.Background(), Query{
		Location:      "Austin",
		MatchKeywords: []string{"clinic"},
	})

	require.Len(t, got, 1)
	assert.Equal(t, "https://www.openstreetmap.org/way/99", got[0].SourceURL)
	assert.Equal(t, "Clinic - found via OpenStreetMap", got[0].Description)
	assert.Equal(t, "Austin", got[0].Location)
}

func TestOpenStreetMap_NoKeywordsSkips(t *testing.T) {
	client := &fakeOverpassClient{}
	got := NewOpenStreetMap(client, geo.NewResolver(nil)).Search(context.Background(), Query{Location: "Austin"})
	assert.Empty(t, got)
	assert.Empty(t, client.patterns)
}

type fakePlacesClient struct {
	mu      sync.Mutex
	queries []string
	results []places.Place
}

func (f *fakePlacesClient) TextSearch(_ context.Context, query string) ([]places.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.results, nil
}

func TestGooglePlaces_Search(t *testing.T) {
	client := &fakePlacesClient{results: []places.Place{
		{
			Name:             "Bright Smiles Dentistry",
			FormattedAddress: "600 Congress Ave, Austin, TX 78701, United States",
			PlaceID:          "pid-1",
			Rating:           4.8,
			UserRatingsTotal: 212,
			Types:            []string{"dental_clinic", "health"},
		},
	}}

	p := NewGooglePlaces(client)
	got := p.Search(context.Background(), Query{Sector: "dental", Keywords: "clinic", Location: "Austin, TX"})

	require.Len(t, client.queries, 1)
	assert.Equal(t, "dental clinic Austin, TX", client.queries[0])

	require.Len(t, got, 1)
	co := got[0]
	assert.Equal(t, "Bright Smiles Dentistry", co.Name)
	assert.Equal(t, "Google Places", co.Source)
	assert.Equal(t, "https://www.google.com/maps/place/?q=place_id:pid-1", co.SourceURL)
	assert.Equal(t, "Dental Clinic | Rating: 4.8 stars | Mid-size (100-500 reviews)", co.Description)
	assert.Equal(t, "Austin, TX 78701", co.Location)
	assert.Equal(t, model.ListingTypeActiveBusiness, co.Extra["listing_type"])
}

func TestGooglePlaces_NationwideFansOut(t *testing.T) {
	client := &fakePlacesClient{}
	NewGooglePlaces(client).Search(context.Background(), Query{Sector: "dental"})
	assert.Len(t, client.queries, len(placesNationwideRegions))
}

func TestGooglePlaces_NilClientDisabled(t *testing.T) {
	got := NewGooglePlaces(nil).Search(context.Background(), Query{Sector: "dental"})
	assert.Empty(t, got)
}
