package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sourcing-cli/internal/model"
	"github.com/sells-group/sourcing-cli/internal/sourcing"
)

// enrichService is the slice of the enricher the HTTP surface needs.
type enrichService interface {
	EnrichCompany(ctx context.Context, companyID string) (*model.OwnerResearch, error)
	Status(ctx context.Context, companyID string) (model.EnrichmentStatus, *model.Contact, error)
}

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sourcing and enrichment HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env.aggregator, env.enricher, cfg.Server.AllowedOrigins),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background()) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func newRouter(agg *sourcing.Aggregator, enricher enrichService, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/sourcing/search", func(w http.ResponseWriter, req *http.Request) {
		var criteria model.Criteria
		if err := json.NewDecoder(req.Body).Decode(&criteria); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if criteria.IsZero() {
			writeError(w, http.StatusBadRequest, "at least one search criterion is required")
			return
		}

		results, cached := agg.Search(req.Context(), criteria)
		writeJSON(w, http.StatusOK, map[string]any{
			"count":   len(results),
			"cached":  cached,
			"results": results,
		})
	})

	r.Post("/api/enrichment/companies/{id}", func(w http.ResponseWriter, req *http.Request) {
		res, err := enricher.EnrichCompany(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			zap.L().Error("enrichment request failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "enrichment failed")
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	r.Get("/api/enrichment/companies/{id}/status", func(w http.ResponseWriter, req *http.Request) {
		status, contact, err := enricher.Status(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			zap.L().Error("status request failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "status lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": status, "contact": contact})
	})

	r.Post("/api/admin/cache/clear", func(w http.ResponseWriter, _ *http.Request) {
		cleared := agg.Cache().Clear()
		writeJSON(w, http.StatusOK, map[string]int{"cleared": cleared})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
