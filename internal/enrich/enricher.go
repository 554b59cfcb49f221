package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sourcing-cli/internal/completion"
	"github.com/sells-group/sourcing-cli/internal/extract"
	"github.com/sells-group/sourcing-cli/internal/mailver"
	"github.com/sells-group/sourcing-cli/internal/model"
	"github.com/sells-group/sourcing-cli/internal/store"
	"github.com/sells-group/sourcing-cli/pkg/apollo"
)

// enrichmentVersion tags stored enrichment_data so old rows can be told
// apart from rows produced by the current pipeline.
const enrichmentVersion = 2

// researchKeyCap bounds how much raw research text is persisted per key.
const researchKeyCap = 500

// leadershipTitles filter Apollo people search to decision-makers.
var leadershipTitles = []string{"CEO", "Owner", "President", "Founder", "Managing Partner", "Principal"}

// EmailVerifier probes candidate addresses, best first.
type EmailVerifier interface {
	Verify(ctx context.Context, candidates []string) []mailver.Result
}

// Enricher runs the owner enrichment pipeline against a contact store.
type Enricher struct {
	store     store.Store
	search    Searcher
	completer completion.Completer
	apollo    apollo.Client
	verifier  EmailVerifier
	bulkDelay time.Duration
	now       func() time.Time
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithApollo enables Apollo.io lookup when web research finds no email.
func WithApollo(c apollo.Client) Option {
	return func(e *Enricher) {
		e.apollo = c
	}
}

// WithVerifier overrides the SMTP email verifier.
func WithVerifier(v EmailVerifier) Option {
	return func(e *Enricher) {
		e.verifier = v
	}
}

// WithBulkDelay sets the pause between companies in a bulk run. Bulk runs
// hit the same search providers for every company, so pacing them keeps the
// providers from blocking us.
func WithBulkDelay(d time.Duration) Option {
	return func(e *Enricher) {
		e.bulkDelay = d
	}
}

// NewEnricher builds the pipeline.
func NewEnricher(st store.Store, search Searcher, completer completion.Completer, opts ...Option) *Enricher {
	e := &Enricher{
		store:     st,
		search:    search,
		completer: completer,
		verifier:  mailver.NewVerifier(),
		bulkDelay: 1500 * time.Millisecond,
		now:       time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// EnrichCompany runs the full pipeline for one company and persists the
// resulting principal-owner contact. A company whose principal owner is
// already enriched short-circuits with status already_enriched.
func (e *Enricher) EnrichCompany(ctx context.Context, companyID string) (*model.OwnerResearch, error) {
	company, err := e.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: load company %s", companyID)
	}

	existing, err := e.store.GetPrincipalOwner(ctx, companyID)
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: load principal owner for %s", companyID)
	}
	if existing != nil && existing.EnrichmentStatus == model.EnrichmentCompleted {
		return &model.OwnerResearch{
			Status:    model.EnrichmentAlreadyEnriched,
			ContactID: existing.ID,
			Extracted: model.OwnerInfo{Name: existing.Name, Email: existing.Email},
		}, nil
	}

	website := company.Website
	var discovery model.EmailDiscovery

	// Phase 0: website discovery. A missing website, or one pointing at the
	// registry the company was sourced from, gets replaced by the real one.
	if website == "" || IsRegistryOrAggregator(website) {
		zap.L().Info("discovering website", zap.String("company", company.Name))
		if discovered := DiscoverWebsite(ctx, e.search, company.Name, company.Location); discovered != "" {
			zap.L().Info("discovered website",
				zap.String("company", company.Name), zap.String("website", discovered))
			website = discovered
			discovery.DomainSource = "discovered"
			discovery.WebsiteFound = discovered
		} else {
			discovery.DomainSource = "none"
		}
	} else {
		discovery.DomainSource = "stored"
	}
	domain := domainOf(website)

	// Phase 1: parallel web research and extraction.
	zap.L().Info("researching owner", zap.String("company", company.Name))
	research := researchOwner(ctx, e.search, company.Name, company.Location, website)
	owner := extract.Owner(ctx, e.completer, company.Name, company.Location, website, research, false)

	isFallback := false
	source := "web"

	// Phase 2: senior employee fallback.
	if owner.Empty() {
		zap.L().Info("owner not found, searching senior employees",
			zap.String("company", company.Name))
		senior := researchSeniorEmployees(ctx, e.search, company.Name, company.Location, domain)
		if len(senior) > 0 {
			for k, v := range senior {
				research[k] = v
			}
			owner = extract.Owner(ctx, e.completer, company.Name, company.Location, website, senior, true)
			if owner.Name != "" {
				isFallback = true
				zap.L().Info("found senior contact",
					zap.String("name", owner.Name), zap.String("title", owner.Title),
					zap.String("company", company.Name))
			}
		}
	}

	// Phase 1.5: email discovery. Never guess addresses on registry domains.
	domainIsReal := domain != "" && !IsRegistryOrAggregator("https://"+domain)
	if owner.Name != "" && owner.Email == "" && domainIsReal {
		e.discoverEmail(ctx, &owner, &discovery, website, domain)
	}

	// Apollo lookup when web research and SMTP both came up dry.
	if owner.Email == "" && e.apollo != nil {
		zap.L().Info("trying apollo", zap.String("company", company.Name))
		if found := e.apolloLookup(ctx, company.Name, domain, owner.Name); !found.Empty() {
			hadEmail := found.Email != ""
			owner.Merge(found)
			if hadEmail {
				source = "apollo"
				discovery.Method = "apollo"
				discovery.VerifiedEmail = found.Email
			}
		}
	}

	if owner.Empty() {
		return e.persistFailed(ctx, company, owner, research, discovery, source)
	}

	// Phase 3: social scraping and personality. Failure here is non-fatal;
	// the contact info already in hand still gets stored.
	contactName := owner.Name
	if contactName == "" {
		contactName = "Owner of " + company.Name
	}
	var social map[string]string
	var personality model.Personality
	if owner.Name != "" {
		zap.L().Info("scraping social profiles", zap.String("person", contactName))
		social = scrapeSocialProfiles(ctx, e.search,
			owner.Name, company.Name, owner.LinkedInURL, owner.FacebookURL, company.Location)
		if len(social) > 0 {
			personality = extract.ExtractPersonality(ctx, e.completer, owner.Name, company.Name, social)
		}
	}

	data := map[string]any{
		"research":            truncateValues(research, researchKeyCap),
		"extracted":           owner,
		"email_discovery":     discovery,
		"enrichment_version":  enrichmentVersion,
		"is_fallback_contact": isFallback,
	}
	if len(social) > 0 {
		data["social_profiles"] = truncateValues(social, researchKeyCap)
	}
	if !personality.Empty() {
		data["personality"] = personality
	}

	enrichedAt := e.now().UTC()
	contactID, err := e.upsertPrincipalOwner(ctx, companyID, &model.Contact{
		Name:             contactName,
		Title:            owner.Title,
		Email:            owner.Email,
		Phone:            owner.Phone,
		LinkedInURL:      owner.LinkedInURL,
		FacebookURL:      owner.FacebookURL,
		IsPrincipalOwner: true,
		EnrichmentStatus: model.EnrichmentCompleted,
		EnrichmentSource: source,
		EnrichmentData:   data,
		EnrichedAt:       &enrichedAt,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("enrichment completed",
		zap.String("company", company.Name), zap.String("contact", contactName),
		zap.String("email", owner.Email), zap.Bool("fallback", isFallback),
		zap.Bool("personality", !personality.Empty()))

	return &model.OwnerResearch{
		Status:            model.EnrichmentCompleted,
		Research:          research,
		Extracted:         owner,
		SocialProfiles:    social,
		Personality:       personality,
		EmailDiscovery:    discovery,
		IsFallbackContact: isFallback,
		EnrichmentSource:  source,
		ContactID:         contactID,
	}, nil
}

// discoverEmail tries website scraping first, then SMTP-verified pattern
// candidates. The cheapest signal that names a mailbox wins.
func (e *Enricher) discoverEmail(ctx context.Context, owner *model.OwnerInfo, discovery *model.EmailDiscovery, website, domain string) {
	zap.L().Info("discovering email",
		zap.String("person", owner.Name), zap.String("domain", domain))

	if scraped := mailver.ScrapeWebsiteEmails(ctx, e.search, website); len(scraped) > 0 {
		owner.Email = scraped[0]
		discovery.Method = "website_scraped"
		discovery.VerifiedEmail = scraped[0]
		zap.L().Info("found email on website", zap.String("email", scraped[0]))
		return
	}

	candidates := mailver.Candidates(owner.Name, domain)
	discovery.CandidatesTested = len(candidates)
	if len(candidates) == 0 {
		return
	}

	results := e.verifier.Verify(ctx, candidates)
	var valid, catchAll []mailver.Result
	for _, r := range results {
		switch r.Status {
		case mailver.StatusValid:
			valid = append(valid, r)
		case mailver.StatusCatchAll:
			catchAll = append(catchAll, r)
		}
	}

	switch {
	case len(valid) > 0:
		owner.Email = valid[0].Email
		discovery.Method = "smtp_verified"
		discovery.VerifiedEmail = valid[0].Email
		zap.L().Info("smtp verified email", zap.String("email", owner.Email))
	case len(catchAll) > 0:
		// Catch-all domain: first.last is the best available guess.
		owner.Email = catchAll[0].Email
		discovery.Method = "catch_all_guess"
		discovery.VerifiedEmail = catchAll[0].Email
		zap.L().Info("catch-all domain, best guess", zap.String("email", owner.Email))
	default:
		// SMTP blocked or inconclusive everywhere.
		owner.Email = candidates[0]
		discovery.Method = "pattern_guess"
		discovery.VerifiedEmail = candidates[0]
		zap.L().Info("smtp inconclusive, best guess", zap.String("email", owner.Email))
	}
}

// apolloLookup resolves a contact via the Apollo.io APIs: a leadership
// people search first, then a person match when a name is already known.
func (e *Enricher) apolloLookup(ctx context.Context, companyName, domain, ownerName string) model.OwnerInfo {
	people, err := e.apollo.SearchPeople(ctx, apollo.PeopleSearchRequest{
		OrganizationName:   companyName,
		OrganizationDomain: domain,
		PersonTitles:       leadershipTitles,
		PerPage:            3,
	})
	if err != nil {
		zap.L().Warn("apollo people search failed",
			zap.String("company", companyName), zap.Error(err))
	} else if len(people) > 0 {
		return ownerInfoFromPerson(&people[0])
	}

	parts := strings.Fields(ownerName)
	if len(parts) < 2 || domain == "" {
		return model.OwnerInfo{}
	}
	person, err := e.apollo.MatchPerson(ctx, apollo.PersonMatchRequest{
		FirstName:        parts[0],
		LastName:         strings.Join(parts[1:], " "),
		OrganizationName: companyName,
		Domain:           domain,
	})
	if err != nil {
		zap.L().Warn("apollo person match failed",
			zap.String("company", companyName), zap.Error(err))
		return model.OwnerInfo{}
	}
	if person == nil || person.Email == "" {
		return model.OwnerInfo{}
	}
	info := ownerInfoFromPerson(person)
	if info.Name == "" {
		info.Name = ownerName
	}
	return info
}

func ownerInfoFromPerson(p *apollo.Person) model.OwnerInfo {
	return model.OwnerInfo{
		Name:        p.Name,
		Title:       p.Title,
		Email:       p.Email,
		Phone:       p.Phone(),
		LinkedInURL: p.LinkedInURL,
	}
}

// persistFailed stores a placeholder contact so the failure is visible and
// re-runnable, keeping the gathered research and any partial contact fields
// (a phone or profile URL found without a name or email).
func (e *Enricher) persistFailed(ctx context.Context, company *model.Company, owner model.OwnerInfo, research map[string]string, discovery model.EmailDiscovery, source string) (*model.OwnerResearch, error) {
	enrichedAt := e.now().UTC()
	contactID, err := e.upsertPrincipalOwner(ctx, company.ID, &model.Contact{
		Name:             "Owner of " + company.Name,
		Title:            owner.Title,
		Phone:            owner.Phone,
		LinkedInURL:      owner.LinkedInURL,
		FacebookURL:      owner.FacebookURL,
		IsPrincipalOwner: true,
		EnrichmentStatus: model.EnrichmentFailed,
		EnrichmentSource: source,
		EnrichmentData: map[string]any{
			"research":           truncateValues(research, researchKeyCap),
			"extracted":          owner,
			"email_discovery":    discovery,
			"enrichment_version": enrichmentVersion,
		},
		EnrichedAt: &enrichedAt,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("enrichment failed, no owner identified",
		zap.String("company", company.Name))

	return &model.OwnerResearch{
		Status:           model.EnrichmentFailed,
		Research:         research,
		Extracted:        owner,
		EmailDiscovery:   discovery,
		EnrichmentSource: source,
		ContactID:        contactID,
	}, nil
}

// upsertPrincipalOwner updates a company's existing principal-owner row or
// creates one. A retried enrichment reuses the row it wrote last time.
func (e *Enricher) upsertPrincipalOwner(ctx context.Context, companyID string, contact *model.Contact) (string, error) {
	contact.CompanyID = companyID

	existing, err := e.store.GetPrincipalOwner(ctx, companyID)
	if err != nil {
		return "", eris.Wrapf(err, "enrich: load principal owner for %s", companyID)
	}
	if existing != nil {
		contact.ID = existing.ID
		if err := e.store.UpdateContact(ctx, contact); err != nil {
			return "", eris.Wrapf(err, "enrich: update contact %s", contact.ID)
		}
		return contact.ID, nil
	}

	if err := e.store.CreateContact(ctx, contact); err != nil {
		return "", eris.Wrapf(err, "enrich: create contact for %s", companyID)
	}
	return contact.ID, nil
}

// BulkResult summarizes a bulk enrichment run.
type BulkResult struct {
	Total    int                   `json:"total"`
	Enriched int                   `json:"enriched"`
	Failed   int                   `json:"failed"`
	Skipped  int                   `json:"skipped"`
	Results  []model.OwnerResearch `json:"results"`
}

// EnrichMany enriches companies sequentially, skipping those whose
// principal owner is already enriched and pausing between companies.
func (e *Enricher) EnrichMany(ctx context.Context, companyIDs []string) (*BulkResult, error) {
	out := &BulkResult{Total: len(companyIDs)}

	var toEnrich []string
	for _, id := range companyIDs {
		existing, err := e.store.GetPrincipalOwner(ctx, id)
		if err != nil {
			return nil, eris.Wrapf(err, "enrich: load principal owner for %s", id)
		}
		if existing != nil && existing.EnrichmentStatus == model.EnrichmentCompleted {
			out.Skipped++
			continue
		}
		toEnrich = append(toEnrich, id)
	}

	for i, id := range toEnrich {
		res, err := e.EnrichCompany(ctx, id)
		if err != nil {
			zap.L().Error("bulk enrichment error", zap.String("company_id", id), zap.Error(err))
			out.Failed++
		} else {
			out.Results = append(out.Results, *res)
			if res.Status == model.EnrichmentCompleted {
				out.Enriched++
			} else {
				out.Failed++
			}
		}

		if i < len(toEnrich)-1 && e.bulkDelay > 0 {
			select {
			case <-ctx.Done():
				return out, eris.Wrap(ctx.Err(), "enrich: bulk run canceled")
			case <-time.After(e.bulkDelay):
			}
		}
	}
	return out, nil
}

// Status reports the enrichment state of a company's principal owner. A
// company with no principal-owner row is not_started with a nil contact.
func (e *Enricher) Status(ctx context.Context, companyID string) (model.EnrichmentStatus, *model.Contact, error) {
	contact, err := e.store.GetPrincipalOwner(ctx, companyID)
	if err != nil {
		return "", nil, eris.Wrapf(err, "enrich: load principal owner for %s", companyID)
	}
	if contact == nil {
		return model.EnrichmentNotStarted, nil, nil
	}
	return contact.EnrichmentStatus, contact, nil
}

// truncateValues caps each value so stored research stays readable rather
// than ballooning the contact row.
func truncateValues(m map[string]string, n int) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if len(v) > n {
			v = v[:n]
		}
		out[k] = v
	}
	return out
}
