package sourcing

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/sourcing-cli/internal/geo"
	"github.com/sells-group/sourcing-cli/internal/model"
	"github.com/sells-group/sourcing-cli/internal/source"
)

// defaultMaxResults caps one search's combined result set.
const defaultMaxResults = 300

// minScoreWithCriteria is the relevance floor applied when any sector or
// keyword tokens were given. Without criteria everything passes.
const minScoreWithCriteria = 20

var (
	nonWordRe     = regexp.MustCompile(`\W+`)
	legalSuffixRe = regexp.MustCompile(`\b(llc|inc|corp|ltd|co|pllc|lp)\b`)
)

// Aggregator fans a search out over every connector, then dedupes, scores,
// filters, and ranks the combined results. Finished result sets are cached
// per criteria.
type Aggregator struct {
	connectors       []source.Connector
	cache            *Cache
	maxResults       int
	connectorTimeout time.Duration
}

// Option adjusts aggregator behavior.
type Option func(*Aggregator)

// WithMaxResults caps how many ranked results one search returns.
func WithMaxResults(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxResults = n
		}
	}
}

// WithConnectorTimeout bounds each connector's search so one slow or hung
// source cannot stall the whole fan-out.
func WithConnectorTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		a.connectorTimeout = d
	}
}

// NewAggregator wires the connectors behind one search entry point.
func NewAggregator(cache *Cache, connectors []source.Connector, opts ...Option) *Aggregator {
	if cache == nil {
		cache = NewCache(0)
	}
	a := &Aggregator{
		connectors: connectors,
		cache:      cache,
		maxResults: defaultMaxResults,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Cache exposes the underlying cache for the admin clear endpoint.
func (a *Aggregator) Cache() *Cache {
	return a.cache
}

// Search runs every eligible connector in parallel and returns the ranked
// result set. The second return reports whether the set came from cache.
func (a *Aggregator) Search(ctx context.Context, criteria model.Criteria) ([]model.SourcedCompany, bool) {
	key := criteria.CacheKey()
	if cached, ok := a.cache.Get(key); ok {
		zap.L().Info("sourcing cache hit", zap.String("key", key), zap.Int("results", len(cached)))
		return cached, true
	}

	q := source.NewQuery(criteria)
	zap.L().Info("sourcing search",
		zap.String("sector", q.Sector),
		zap.String("keywords", q.Keywords),
		zap.String("location", q.Location),
		zap.Strings("match_kws", q.MatchKeywords))

	var active []source.Connector
	for _, conn := range a.connectors {
		if !criteria.WantsSource(conn.Name()) {
			continue
		}
		// Registry discovery is pointless without sector or keyword
		// context; it would return arbitrary businesses.
		if conn.Trusted() && len(q.MatchKeywords) == 0 {
			continue
		}
		active = append(active, conn)
	}

	collected := make([][]model.SourcedCompany, len(active))
	g, gctx := errgroup.WithContext(ctx)
	for i, conn := range active {
		i, conn := i, conn
		g.Go(func() error {
			cctx := gctx
			if a.connectorTimeout > 0 {
				var cancel context.CancelFunc
				cctx, cancel = context.WithTimeout(gctx, a.connectorTimeout)
				defer cancel()
			}
			collected[i] = conn.Search(cctx, q)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // connectors self-report failures

	var all []model.SourcedCompany
	for _, batch := range collected {
		all = append(all, batch...)
	}

	deduped := dedupe(all)

	var scored []model.SourcedCompany
	for _, co := range deduped {
		if co.IsActiveBusiness() {
			s := DiscoveryScore(co, criteria)
			if s == 0 {
				continue
			}
			loc := co.Location
			if loc == "" {
				loc = "US"
			}
			co.FitScore = &s
			co.FitReasons = []string{"Active business - " + co.Source, loc}
		} else {
			s, reasons := ScoreCompany(co, criteria)
			co.FitScore = &s
			co.FitReasons = reasons
		}
		scored = append(scored, co)
	}

	sortByScoreDesc(scored)

	minScore := 0
	if len(q.MatchKeywords) > 0 {
		minScore = minScoreWithCriteria
	}
	var relevant []model.SourcedCompany
	for _, co := range scored {
		if *co.FitScore >= minScore {
			relevant = append(relevant, co)
		}
	}

	// Location hard-filter: "Houston" means Houston, not brokerage
	// listings from across the country.
	if terms := geo.FilterTerms(criteria.Location); len(terms) > 0 {
		before := len(relevant)
		var kept []model.SourcedCompany
		for _, co := range relevant {
			if geo.MatchesLocation(co.Location, terms) {
				kept = append(kept, co)
			}
		}
		relevant = kept
		zap.L().Info("location filter applied",
			zap.String("location", criteria.Location),
			zap.Int("before", before),
			zap.Int("after", len(relevant)))
	}

	if len(relevant) > a.maxResults {
		relevant = relevant[:a.maxResults]
	}

	listings, discoveries := 0, 0
	for _, co := range relevant {
		if co.IsActiveBusiness() {
			discoveries++
		} else {
			listings++
		}
	}
	zap.L().Info("sourcing search complete",
		zap.Int("unique", len(deduped)),
		zap.Int("listings", listings),
		zap.Int("active_businesses", discoveries))

	a.cache.Set(key, relevant)
	return relevant, false
}

// dedupe drops repeated companies by normalized name. Active businesses
// include the location in the key so same-named offices in different
// cities survive. First occurrence wins.
func dedupe(companies []model.SourcedCompany) []model.SourcedCompany {
	seen := make(map[string]bool, len(companies))
	var out []model.SourcedCompany
	for _, co := range companies {
		nameNorm := normalizeName(co.Name)
		if len(nameNorm) <= 2 {
			continue
		}
		key := nameNorm
		if co.IsActiveBusiness() {
			key = nameNorm + "|" + strings.TrimSpace(nonWordRe.ReplaceAllString(strings.ToLower(co.Location), " "))
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, co)
	}
	return out
}

func normalizeName(name string) string {
	n := strings.TrimSpace(nonWordRe.ReplaceAllString(strings.ToLower(name), " "))
	return strings.TrimSpace(legalSuffixRe.ReplaceAllString(n, ""))
}

func sortByScoreDesc(companies []model.SourcedCompany) {
	sort.SliceStable(companies, func(i, j int) bool {
		return *companies[i].FitScore > *companies[j].FitScore
	})
}
