package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verdant-bio/taxon-cli/internal/resolver"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve on-demand taxon resolution over HTTP",
	Long:  "Exposes the tier ladder as an HTTP API, backed by the same query cache and rate gate as the batch resolve command.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		res, _, err := initResolver("")
		if err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET"},
		}))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Get("/resolve", handleResolve(res))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// resolveResponse is the JSON body for a /resolve hit.
type resolveResponse struct {
	Term            string `json:"term"`
	Status          string `json:"status"`
	Accession       string `json:"accession,omitempty"`
	AnnotationLevel int    `json:"annotation_level,omitempty"`
	DownloadMethod  string `json:"download_method,omitempty"`
	HasAnnotation   bool   `json:"has_annotation"`
	AssemblyLevel   string `json:"assembly_level,omitempty"`
}

func handleResolve(res *resolver.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		term := strings.TrimSpace(r.URL.Query().Get("term"))
		if term == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "term is required"})
			return
		}

		out, err := res.ResolveTerm(r.Context(), term)
		if err != nil {
			zap.L().Error("resolve request failed", zap.String("term", term), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "resolution failed"})
			return
		}

		resp := resolveResponse{
			Term:          term,
			Status:        out.Status,
			HasAnnotation: out.HasAnnotation,
		}
		if out.Found() {
			resp.Accession = out.Accession
			resp.AnnotationLevel = out.Tier.Level
			resp.DownloadMethod = string(out.Tier.Download)
			resp.AssemblyLevel = out.AssemblyLevel
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
