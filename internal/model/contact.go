package model

import "time"

// EnrichmentStatus represents the terminal state of an owner enrichment run.
type EnrichmentStatus string

const (
	EnrichmentNotStarted      EnrichmentStatus = "not_started"
	EnrichmentCompleted       EnrichmentStatus = "completed"
	EnrichmentFailed          EnrichmentStatus = "failed"
	EnrichmentAlreadyEnriched EnrichmentStatus = "already_enriched"
)

// Company is a stored company record at the CRUD-store boundary. Only the
// fields the enrichment pipeline reads and writes are modeled here.
type Company struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Website  string `json:"website"`
	Source   string `json:"source,omitempty"`
}

// Contact is the persisted output of an enrichment run.
type Contact struct {
	ID               string           `json:"id"`
	CompanyID        string           `json:"company_id"`
	Name             string           `json:"name"`
	Title            string           `json:"title,omitempty"`
	Email            string           `json:"email,omitempty"`
	Phone            string           `json:"phone,omitempty"`
	LinkedInURL      string           `json:"linkedin_url,omitempty"`
	FacebookURL      string           `json:"facebook_url,omitempty"`
	IsPrincipalOwner bool             `json:"is_principal_owner"`
	EnrichmentStatus EnrichmentStatus `json:"enrichment_status"`
	EnrichmentSource string           `json:"enrichment_source,omitempty"`
	EnrichmentData   map[string]any   `json:"enrichment_data,omitempty"`
	EnrichedAt       *time.Time       `json:"enriched_at,omitempty"`
}

// OwnerInfo is the structured contact data extracted from research text.
type OwnerInfo struct {
	Name          string         `json:"name"`
	Title         string         `json:"title"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	LinkedInURL   string         `json:"linkedin_url"`
	FacebookURL   string         `json:"facebook_url"`
	Confidence    string         `json:"confidence"`
	OtherContacts []OtherContact `json:"other_contacts,omitempty"`
}

// OtherContact is an additional senior person noticed during research.
type OtherContact struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
}

// Empty reports whether extraction found neither a name nor an email.
func (o OwnerInfo) Empty() bool {
	return o.Name == "" && o.Email == ""
}

// Merge fills unset fields of o from other, leaving present values alone.
func (o *OwnerInfo) Merge(other OwnerInfo) {
	if o.Name == "" {
		o.Name = other.Name
	}
	if o.Title == "" {
		o.Title = other.Title
	}
	if o.Email == "" {
		o.Email = other.Email
	}
	if o.Phone == "" {
		o.Phone = other.Phone
	}
	if o.LinkedInURL == "" {
		o.LinkedInURL = other.LinkedInURL
	}
	if o.FacebookURL == "" {
		o.FacebookURL = other.FacebookURL
	}
}

// Personality is an observation-only profile assembled from public social
// and web content, used downstream to personalize outreach.
type Personality struct {
	ProfessionalBackground string   `json:"professional_background,omitempty"`
	Interests              []string `json:"interests_and_passions,omitempty"`
	CommunicationStyle     string   `json:"communication_style,omitempty"`
	Values                 []string `json:"values_and_priorities,omitempty"`
	PersonalDetails        string   `json:"personal_details,omitempty"`
	IceBreakers            []string `json:"ice_breakers,omitempty"`
	OutreachAngle          string   `json:"outreach_angle,omitempty"`
}

// Empty reports whether no personality fields were extracted.
func (p Personality) Empty() bool {
	return p.ProfessionalBackground == "" && len(p.Interests) == 0 &&
		p.CommunicationStyle == "" && len(p.Values) == 0 &&
		p.PersonalDetails == "" && len(p.IceBreakers) == 0 &&
		p.OutreachAngle == ""
}

// EmailDiscovery records how an email address was (or was not) found.
type EmailDiscovery struct {
	DomainSource     string `json:"domain_source,omitempty"` // stored | discovered | none
	WebsiteFound     string `json:"website_discovered,omitempty"`
	Method           string `json:"method,omitempty"` // website_scraped | smtp_verified | catch_all_guess | pattern_guess | apollo
	VerifiedEmail    string `json:"verified_email,omitempty"`
	CandidatesTested int    `json:"candidates_tested,omitempty"`
}

// OwnerResearch is the write-once working state of one enrichment run.
type OwnerResearch struct {
	Status            EnrichmentStatus  `json:"status"`
	Research          map[string]string `json:"research,omitempty"`
	Extracted         OwnerInfo         `json:"extracted"`
	SocialProfiles    map[string]string `json:"social_profiles,omitempty"`
	Personality       Personality       `json:"personality,omitempty"`
	EmailDiscovery    EmailDiscovery    `json:"email_discovery"`
	IsFallbackContact bool              `json:"is_fallback_contact"`
	EnrichmentSource  string            `json:"enrichment_source"`
	ContactID         string            `json:"contact_id,omitempty"`
}
