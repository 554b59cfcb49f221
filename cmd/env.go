package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sourcing-cli/internal/completion"
	"github.com/sells-group/sourcing-cli/internal/enrich"
	"github.com/sells-group/sourcing-cli/internal/geo"
	"github.com/sells-group/sourcing-cli/internal/mailver"
	"github.com/sells-group/sourcing-cli/internal/source"
	"github.com/sells-group/sourcing-cli/internal/sourcing"
	"github.com/sells-group/sourcing-cli/internal/store"
	"github.com/sells-group/sourcing-cli/internal/websearch"
	"github.com/sells-group/sourcing-cli/pkg/anthropic"
	"github.com/sells-group/sourcing-cli/pkg/apollo"
	"github.com/sells-group/sourcing-cli/pkg/nominatim"
	"github.com/sells-group/sourcing-cli/pkg/nppes"
	"github.com/sells-group/sourcing-cli/pkg/overpass"
	"github.com/sells-group/sourcing-cli/pkg/places"
	"github.com/sells-group/sourcing-cli/pkg/serper"
	"github.com/sells-group/sourcing-cli/pkg/tavily"
)

// env bundles the wired application services for a command run.
type env struct {
	store      store.Store
	aggregator *sourcing.Aggregator
	enricher   *enrich.Enricher
	search     *websearch.Chain
}

// initEnv wires config into the service graph. Connectors and providers
// missing credentials are left out rather than failing the run.
func initEnv(ctx context.Context) (*env, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	var searchOpts []websearch.Option
	if cfg.Serper.Key != "" {
		searchOpts = append(searchOpts,
			websearch.WithSerper(serper.NewClient(cfg.Serper.Key, serper.WithBaseURL(cfg.Serper.BaseURL))))
	}
	if cfg.Tavily.Key != "" {
		searchOpts = append(searchOpts,
			websearch.WithTavily(tavily.NewClient(cfg.Tavily.Key, tavily.WithBaseURL(cfg.Tavily.BaseURL))))
	}
	chain := websearch.NewChain(searchOpts...)

	var anthropicClient anthropic.Client
	if cfg.Anthropic.Key != "" {
		anthropicClient = anthropic.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Warn("no anthropic key configured, extraction falls back to rules")
	}
	completer := completion.NewChain(anthropicClient, cfg.Anthropic.Models)

	aggregator := sourcing.NewAggregator(
		sourcing.NewCache(time.Duration(cfg.Sourcing.CacheTTLMins)*time.Minute),
		buildConnectors(),
		sourcing.WithMaxResults(cfg.Sourcing.MaxResults),
		sourcing.WithConnectorTimeout(time.Duration(cfg.Sourcing.ConnectorTimeout)*time.Second),
	)

	enrichOpts := []enrich.Option{
		enrich.WithVerifier(mailver.NewVerifier(
			mailver.WithTimeout(time.Duration(cfg.Enrich.SMTPTimeoutSecs) * time.Second))),
		enrich.WithBulkDelay(time.Duration(cfg.Enrich.BulkDelayMillis) * time.Millisecond),
	}
	if cfg.Apollo.Key != "" {
		enrichOpts = append(enrichOpts,
			enrich.WithApollo(apollo.NewClient(cfg.Apollo.Key, apollo.WithBaseURL(cfg.Apollo.BaseURL))))
	}
	enricher := enrich.NewEnricher(st, chain, completer, enrichOpts...)

	return &env{
		store:      st,
		aggregator: aggregator,
		enricher:   enricher,
		search:     chain,
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.Path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func buildConnectors() []source.Connector {
	connectors := []source.Connector{
		source.NewDealStream(),
		source.NewCraigslist(),
		source.NewQuietLight(),
		source.NewEmpireFlippers(),
		source.NewFEInternational(),
		source.NewAxial(),
		source.NewNPPES(nppes.NewClient()),
		source.NewOpenStreetMap(
			overpass.NewClient(
				overpass.WithEndpoints(cfg.Overpass.Endpoints),
				overpass.WithQueryTimeout(time.Duration(cfg.Overpass.QueryTimeoutSecs)*time.Second),
			),
			geo.NewResolver(nominatim.NewClient(
				nominatim.WithBaseURL(cfg.Nominatim.BaseURL),
				nominatim.WithUserAgent(cfg.Nominatim.UserAgent),
			)),
			source.WithMaxAreas(cfg.Overpass.MaxParallel),
		),
	}
	if cfg.Places.Key != "" {
		connectors = append(connectors, source.NewGooglePlaces(
			places.NewClient(cfg.Places.Key,
				places.WithBaseURL(cfg.Places.BaseURL),
				places.WithRateLimit(cfg.Places.RateLimit)),
		))
	} else {
		zap.L().Debug("no places key configured, skipping google places connector")
	}
	return connectors
}
