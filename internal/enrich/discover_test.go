package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRegistryOrAggregator(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://npiregistry.cms.hhs.gov/provider-view/123", true},
		{"https://www.yelp.com/biz/some-clinic", true},
		{"https://m.facebook.com/some-page", true},
		{"https://brightsmile.example.com", false},
		{"https://notyelp.com", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRegistryOrAggregator(tt.url), tt.url)
	}
}

func TestCleanCompanyName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Bright Smile Dental, LLC", "Bright Smile Dental"},
		{"Acme Medical Corporation", "Acme"},
		{"Harper & Sons Inc.", "Harper & Sons"},
		{"Lakeside Orthodontics, P.C.", "Lakeside Orthodontics"},
		{"Plain Name", "Plain Name"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanCompanyName(tt.in), tt.in)
	}
}

func TestCandidateURL(t *testing.T) {
	urls := []string{
		"https://www.yelp.com/biz/bright-smile",
		"https://brightsmile.example.com/blog/2024/07/new-office",
		"https://brightsmile.example.com/about",
	}
	assert.Equal(t, "https://brightsmile.example.com", candidateURL(urls))

	// No short path anywhere: first non-aggregator domain wins.
	deep := []string{
		"https://www.linkedin.com/company/bright-smile",
		"https://brightsmile.example.com/blog/2024/07/new-office",
	}
	assert.Equal(t, "https://brightsmile.example.com", candidateURL(deep))

	assert.Equal(t, "", candidateURL([]string{"https://www.bbb.org/us/tx/austin"}))
}

func TestDiscoverWebsite(t *testing.T) {
	s := &fakeSearcher{
		urls: map[string][]string{
			"Bright Smile Dental Austin, TX official website": {
				"https://www.healthgrades.com/group/bright-smile",
				"https://brightsmile.example.com/",
			},
		},
	}
	got := DiscoverWebsite(context.Background(), s, "Bright Smile Dental, LLC", "Austin, TX")
	assert.Equal(t, "https://brightsmile.example.com", got)
}

func TestDiscoverWebsite_NothingFound(t *testing.T) {
	s := &fakeSearcher{}
	got := DiscoverWebsite(context.Background(), s, "Bright Smile Dental", "Austin, TX")
	assert.Equal(t, "", got)
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "brightsmile.example.com", domainOf("https://www.brightsmile.example.com/about"))
	assert.Equal(t, "", domainOf(""))
}
