package enrich

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Searcher is the web research surface the pipeline consumes. The websearch
// provider chain satisfies it.
type Searcher interface {
	SearchText(ctx context.Context, query string, maxChars int) string
	SearchURLs(ctx context.Context, query string, maxResults int) []string
	FetchText(ctx context.Context, url string, maxChars int) string
}

// aboutPaths are the website pages most likely to name the owner.
var aboutPaths = []string{"/about", "/team", "/leadership", "/about-us", "/our-team", "/staff"}

var stateAbbrRe = regexp.MustCompile(`\b([A-Z]{2})\b`)

type researchTask struct {
	key string
	run func(ctx context.Context) string
}

// runResearch executes tasks in parallel and merges results keyed by search
// type, in task order so identical inputs always produce identical research.
// Results shorter than minChars are dropped.
func runResearch(ctx context.Context, tasks []researchTask, minChars int) map[string]string {
	results := make([]string, len(tasks))
	g, ctx := errgroup.WithContext(ctx)
	for i, task := range tasks {
		g.Go(func() error {
			results[i] = task.run(ctx)
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	research := make(map[string]string)
	for i, task := range tasks {
		text := results[i]
		if len(text) <= minChars {
			continue
		}
		if existing, ok := research[task.key]; ok {
			research[task.key] = existing + " " + text
		} else {
			research[task.key] = text
		}
	}
	return research
}

// researchOwner runs the parallel owner searches: website about pages,
// owner/CEO search, contact search, LinkedIn, Facebook, BBB, state business
// filings, and Crunchbase. Returns research text keyed by search type.
func researchOwner(ctx context.Context, s Searcher, companyName, location, website string) map[string]string {
	// Registry URLs stored as the "website" tell us nothing about the owner.
	if website != "" {
		for _, marker := range []string{"npiregistry", "openstreetmap", "google.com/maps"} {
			if strings.Contains(website, marker) {
				website = ""
				break
			}
		}
	}
	domain := domainOf(website)

	state := ""
	if m := stateAbbrRe.FindStringSubmatch(location); m != nil {
		state = m[1]
	}

	var tasks []researchTask
	if strings.HasPrefix(website, "http") {
		base := strings.TrimRight(website, "/")
		for _, path := range aboutPaths {
			pageURL := base + path
			tasks = append(tasks, researchTask{"website_about", func(ctx context.Context) string {
				return s.FetchText(ctx, pageURL, 3000)
			}})
		}
	}

	tasks = append(tasks,
		searchTask("search_owner",
			fmt.Sprintf(`"%s" owner OR CEO OR founder OR president %s`, companyName, location), 3000, s),
		searchTask("search_contact",
			fmt.Sprintf(`"%s" owner email contact %s`, companyName, domain), 2500, s),
		searchTask("search_linkedin",
			fmt.Sprintf(`site:linkedin.com/in "%s" owner OR CEO OR founder`, companyName), 2000, s),
		searchTask("search_facebook",
			fmt.Sprintf(`site:facebook.com "%s" %s`, companyName, location), 1500, s),
		searchTask("search_bbb",
			fmt.Sprintf(`site:bbb.org "%s" %s`, companyName, location), 2000, s),
	)
	if state != "" {
		tasks = append(tasks, searchTask("search_filings",
			fmt.Sprintf(`"%s" "registered agent" OR "registered owner" OR "principal" %s`, companyName, state), 2000, s))
	}
	tasks = append(tasks, searchTask("search_crunchbase",
		fmt.Sprintf(`site:crunchbase.com "%s"`, companyName), 1500, s))

	return runResearch(ctx, tasks, 0)
}

// researchSeniorEmployees is the fallback when no owner surfaced: VP,
// Director, COO, CFO, and team-page searches.
func researchSeniorEmployees(ctx context.Context, s Searcher, companyName, location, domain string) map[string]string {
	tasks := []researchTask{
		searchTask("search_senior",
			fmt.Sprintf(`"%s" VP OR "Vice President" OR Director OR COO OR CFO OR "Managing Director" %s`, companyName, location), 3000, s),
		searchTask("search_linkedin_mgmt",
			fmt.Sprintf(`site:linkedin.com/in "%s" "Vice President" OR Director OR Manager`, companyName), 2500, s),
		searchTask("search_team",
			fmt.Sprintf(`"%s" "our team" OR "meet the team" OR "leadership team" %s`, companyName, domain), 2000, s),
	}
	return runResearch(ctx, tasks, 0)
}

// scrapeSocialProfiles gathers personality raw material: LinkedIn profile
// and posts, Facebook, interviews, and bio searches. Snippets of 50 chars
// or less carry no signal and are dropped.
func scrapeSocialProfiles(ctx context.Context, s Searcher, personName, companyName, linkedinURL, facebookURL, location string) map[string]string {
	tasks := []researchTask{
		{"linkedin_profile", func(ctx context.Context) string {
			if linkedinURL != "" {
				return s.FetchText(ctx, linkedinURL, 4000)
			}
			query := fmt.Sprintf(`site:linkedin.com/in "%s" "%s"`, personName, companyName)
			for _, u := range s.SearchURLs(ctx, query, 3) {
				if strings.Contains(u, "/in/") {
					if text := s.FetchText(ctx, u, 4000); len(text) > 100 {
						return text
					}
				}
			}
			return ""
		}},
		searchTask("linkedin_posts",
			fmt.Sprintf(`site:linkedin.com/posts "%s" OR site:linkedin.com/pulse "%s"`, personName, personName), 2000, s),
		{"facebook", func(ctx context.Context) string {
			if facebookURL != "" {
				return s.FetchText(ctx, facebookURL, 3000)
			}
			query := fmt.Sprintf(`site:facebook.com "%s" "%s" %s`, personName, companyName, location)
			for _, u := range s.SearchURLs(ctx, query, 3) {
				if strings.Contains(u, "facebook.com") && !strings.Contains(u, "/search") {
					if text := s.FetchText(ctx, u, 3000); len(text) > 100 {
						return text
					}
				}
			}
			return ""
		}},
		searchTask("interviews",
			fmt.Sprintf(`"%s" interview OR podcast OR speaking OR keynote "%s"`, personName, companyName), 2500, s),
		searchTask("bio",
			fmt.Sprintf(`"%s" "%s" bio OR about OR background OR profile`, personName, companyName), 2000, s),
	}
	return runResearch(ctx, tasks, 50)
}

func searchTask(key, query string, maxChars int, s Searcher) researchTask {
	return researchTask{key, func(ctx context.Context) string {
		return s.SearchText(ctx, query, maxChars)
	}}
}
