package sourcing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sourcing-cli/internal/model"
)

func TestScoreCompany_SectorGate(t *testing.T) {
	criteria := model.Criteria{Sector: "dental"}

	score, reasons := ScoreCompany(model.SourcedCompany{
		Name:        "Austin Smile Dental Group",
		Description: "Established practice",
	}, criteria)
	// single-token sector gate scores 40
	assert.GreaterOrEqual(t, score, 40)
	require.NotEmpty(t, reasons)
	assert.Contains(t, reasons[0], "✓ Sector match (1/1): dental")

	score, reasons = ScoreCompany(model.SourcedCompany{
		Name:        "Downtown Laundromat",
		Description: "Coin-op, absentee run",
	}, criteria)
	assert.Zero(t, score)
	assert.Equal(t, []string{"✗ Sector 'dental' not found in listing"}, reasons)
}

func TestScoreCompany_MultiTokenSectorRatio(t *testing.T) {
	criteria := model.Criteria{Sector: "dental orthodontics imaging"}

	score, _ := ScoreCompany(model.SourcedCompany{
		Name: "Dental and orthodontics imaging center",
	}, criteria)
	// all three tokens matched: full 55-point gate
	assert.GreaterOrEqual(t, score, 55)

	score, reasons := ScoreCompany(model.SourcedCompany{
		Name: "Dental office",
	}, criteria)
	// one of three matched: floor of 20
	assert.GreaterOrEqual(t, score, 20)
	assert.Less(t, score, 40)
	assert.Contains(t, reasons[0], "(1/3)")
}

func TestScoreCompany_NoSectorBaseline(t *testing.T) {
	score, reasons := ScoreCompany(model.SourcedCompany{Name: "Anything At All"}, model.Criteria{})
	assert.Equal(t, 30, score)
	assert.Equal(t, []string{"△ No sector filter - showing all listings"}, reasons)
}

func TestScoreCompany_KeywordBoost(t *testing.T) {
	criteria := model.Criteria{Sector: "dental", Keywords: "sedation implants"}

	with, _ := ScoreCompany(model.SourcedCompany{
		Name:        "Smile Dental",
		Description: "Sedation dentistry and implants",
	}, criteria)
	without, reasons := ScoreCompany(model.SourcedCompany{
		Name: "Smile Dental",
	}, criteria)
	assert.Greater(t, with, without)
	assert.Contains(t, reasons, "△ Keywords not found: sedation, implants")
}

func TestScoreCompany_LocationBoost(t *testing.T) {
	criteria := model.Criteria{Sector: "dental", Location: "Austin, TX"}

	with, reasons := ScoreCompany(model.SourcedCompany{
		Name:     "Smile Dental",
		Location: "Austin, TX",
	}, criteria)
	without, _ := ScoreCompany(model.SourcedCompany{
		Name:     "Smile Dental",
		Location: "Boise, ID",
	}, criteria)
	assert.Equal(t, with, without+10)
	assert.Contains(t, reasons, "✓ Location: Austin, TX")
}

func TestScoreCompany_EmployeeRange(t *testing.T) {
	criteria := model.Criteria{MinEmployees: 10, MaxEmployees: 50}

	in, reasons := ScoreCompany(model.SourcedCompany{
		Name: "Acme Services", Employees: "25-30",
	}, criteria)
	out, outReasons := ScoreCompany(model.SourcedCompany{
		Name: "Acme Services", Employees: "1,200 employees",
	}, criteria)
	assert.Equal(t, in, out+13)
	assert.Contains(t, reasons, "✓ Employees in range (25)")
	assert.Contains(t, outReasons, "△ Employees (1,200) out of range")
}

func TestScoreCompany_RevenueRange(t *testing.T) {
	criteria := model.Criteria{MinRevenue: 1e6, MaxRevenue: 5e6}

	in, reasons := ScoreCompany(model.SourcedCompany{
		Name: "Acme", Revenue: "$2.5M",
	}, criteria)
	assert.Contains(t, reasons, "✓ Revenue/price in range ($2.5M)")

	out, outReasons := ScoreCompany(model.SourcedCompany{
		Name: "Acme", Revenue: "$500k",
	}, criteria)
	assert.Contains(t, outReasons, "△ Revenue/price out of range ($500k)")
	assert.Greater(t, in, out)

	_, minOnly := ScoreCompany(model.SourcedCompany{
		Name: "Acme", Revenue: "$2.5M",
	}, model.Criteria{MinRevenue: 1e6})
	assert.Contains(t, minOnly, "✓ Revenue ≥ min ($2.5M)")
}

func TestScoreCompany_CompletenessAndSourceBonus(t *testing.T) {
	quietlight, _ := ScoreCompany(model.SourcedCompany{
		Name: "Acme", Source: "QuietLight", AskingPrice: "$1M", Revenue: "$400k",
	}, model.Criteria{})
	craigslist, _ := ScoreCompany(model.SourcedCompany{
		Name: "Acme", Source: "Craigslist", AskingPrice: "$1M", Revenue: "$400k",
	}, model.Criteria{})
	plain, _ := ScoreCompany(model.SourcedCompany{Name: "Acme"}, model.Criteria{})

	assert.Equal(t, quietlight, craigslist+5)
	assert.Equal(t, craigslist, plain+2+2+3) // price +2, revenue +2, source bonus +3
}

func TestScoreCompany_Clamped(t *testing.T) {
	s, _ := ScoreCompany(model.SourcedCompany{
		Name:        "Dental dental",
		Source:      "QuietLight",
		Revenue:     "$2M",
		AskingPrice: "$3M",
		Location:    "Austin, TX",
	}, model.Criteria{Sector: "dental", Keywords: "dental", Location: "austin"})
	assert.LessOrEqual(t, s, 100)
}

func TestDiscoveryScore(t *testing.T) {
	co := model.SourcedCompany{
		Name:        "Hill Country Dental",
		Description: "Dentist - NPI #123",
		Sector:      "Dentist",
		Source:      "NPPES",
		SourceURL:   "https://npiregistry.cms.hhs.gov/provider-view/123",
		Location:    "Austin, TX",
		Extra:       map[string]any{"phone": "512-555-0100", "listing_type": model.ListingTypeActiveBusiness},
	}
	criteria := model.Criteria{Sector: "dental", Location: "Austin"}

	// sector 50 + location 10 + source 15 + phone 3 + url 2
	assert.Equal(t, 80, DiscoveryScore(co, criteria))
}

func TestDiscoveryScore_TrustedSourceBaseline(t *testing.T) {
	co := model.SourcedCompany{
		Name:   "Lakeside Clinic",
		Sector: "Clinic/Center",
		Source: "NPPES",
	}
	// no text match, but NPPES pre-filters by taxonomy: baseline 30 + 15
	assert.Equal(t, 45, DiscoveryScore(co, model.Criteria{Sector: "ivf"}))

	co.Source = "SomeDirectory"
	assert.Zero(t, DiscoveryScore(co, model.Criteria{Sector: "ivf"}))
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"$2.5M", 2.5e6, true},
		{"$1,200,000", 1.2e6, true},
		{"$500k", 5e5, true},
		{"$1.2B", 1.2e9, true},
		{"$3 million", 3e6, true},
		{"750000", 750000, true},
		{"$0", 0, false},
		{"contact us", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseMoney(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		if tt.wantOK {
			assert.InDelta(t, tt.want, got, 0.1, tt.in)
		}
	}
}
