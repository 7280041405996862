package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verdant-bio/taxon-cli/internal/ncbi"
	"github.com/verdant-bio/taxon-cli/internal/querycache"
	"github.com/verdant-bio/taxon-cli/internal/ratelimit"
	"github.com/verdant-bio/taxon-cli/internal/report"
	"github.com/verdant-bio/taxon-cli/internal/resilience"
	"github.com/verdant-bio/taxon-cli/internal/resolver"
	"github.com/verdant-bio/taxon-cli/internal/runner"
	"github.com/verdant-bio/taxon-cli/internal/species"
	"github.com/verdant-bio/taxon-cli/internal/store"
)

var (
	resolveSpeciesPath  string
	resolveStatusPath   string
	resolveAccPath      string
	resolveDownloadPath string
	resolveWorkers      int
	resolveCacheDir     string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve species names to genome accessions",
	Long: `Resolve each species to a genome assembly accession by querying NCBI
datasets across four tiers (annotated reference, annotated, reference, any
genome), falling back from Accepted name to Legacy Name to Genus.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		startedAt := time.Now()

		records, err := species.Load(resolveSpeciesPath)
		if err != nil {
			return err
		}

		for _, dir := range outputDirs() {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return eris.Wrapf(err, "resolve: create output dir %s", dir)
			}
		}

		res, gate, err := initResolver(resolveCacheDir)
		if err != nil {
			return err
		}

		workers := resolveWorkers
		if workers <= 0 {
			workers = cfg.Resolve.MaxWorkers
		}

		results, err := runner.New(res, workers).Run(ctx, records)
		if err != nil {
			return eris.Wrap(err, "resolve: run pool")
		}

		if err := report.WriteStatus(resolveStatusPath, results); err != nil {
			return err
		}
		if err := report.WriteAccessions(resolveAccPath, results); err != nil {
			return err
		}
		if err := report.WriteDownloadInfo(resolveDownloadPath, results); err != nil {
			return err
		}

		manifest := report.BuildManifest(results)
		manifest.StartedAt = startedAt.UTC()
		manifest.FinishedAt = time.Now().UTC()
		manifest.Workers = workers
		manifest.RateInterval = gate.Interval().String()
		manifest.CacheDir = resolveCacheDir
		manifest.Outputs = report.ManifestOutputs{
			Status:       resolveStatusPath,
			Accessions:   resolveAccPath,
			DownloadInfo: resolveDownloadPath,
		}
		manifest.RunID = recordRun(ctx, manifest, startedAt, workers, gate.Interval())

		manifestPath := filepath.Join(filepath.Dir(resolveStatusPath), "run_manifest.yaml")
		if err := report.WriteManifest(manifestPath, manifest); err != nil {
			return err
		}

		zap.L().Info("resolve complete",
			zap.String("run_id", manifest.RunID),
			zap.Int("species", manifest.Species),
			zap.Int("resolved", manifest.Resolved),
			zap.Int("annotated", manifest.Annotated),
		)
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveSpeciesPath, "species", "", "input CSV with species names (required)")
	resolveCmd.Flags().StringVar(&resolveStatusPath, "status", "results/resolution_status.csv", "output CSV with per-species status")
	resolveCmd.Flags().StringVar(&resolveAccPath, "accessions", "results/accessions.txt", "output TXT with one accession per line")
	resolveCmd.Flags().StringVar(&resolveDownloadPath, "download-info", "results/download_info.csv", "output CSV with download method information")
	resolveCmd.Flags().IntVar(&resolveWorkers, "max-workers", 0, "maximum number of parallel workers (default from config)")
	resolveCmd.Flags().StringVar(&resolveCacheDir, "cache-dir", "", "query cache directory (default from config)")
	_ = resolveCmd.MarkFlagRequired("species")
	rootCmd.AddCommand(resolveCmd)
}

// outputDirs lists every directory the stage must be able to create before
// any species is processed. proteomes/ is consumed by the download stage.
func outputDirs() []string {
	dirs := []string{cfg.Resolve.ResultsDir, "proteomes"}
	for _, path := range []string{resolveStatusPath, resolveAccPath, resolveDownloadPath} {
		if dir := filepath.Dir(path); dir != "." {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// initResolver wires the shared cache, rate gate, and datasets client into
// a resolver. The rate interval is fixed from API-key presence at startup.
func initResolver(cacheDir string) (*resolver.Resolver, *ratelimit.Gate, error) {
	if cacheDir == "" {
		cacheDir = cfg.Resolve.CacheDir
	}
	resolveCacheDir = cacheDir

	cache, err := querycache.New(cacheDir)
	if err != nil {
		return nil, nil, err
	}

	gate := ratelimit.ForCredential(cfg.NCBI.APIKey)
	client := ncbi.NewClient(
		ncbi.NewExecRunner(cfg.NCBI.Binary, cfg.NCBI.Timeout()),
		cfg.NCBI.APIKey,
	)

	zap.L().Info("resolver initialized",
		zap.String("cache_dir", cacheDir),
		zap.Duration("rate_interval", gate.Interval()),
		zap.Bool("api_key", cfg.NCBI.APIKey != ""),
	)

	return resolver.New(client, cache, gate, resilience.DefaultRetryConfig()), gate, nil
}

// recordRun writes the run to the history store. History is bookkeeping:
// failures are logged and the run still succeeds.
func recordRun(ctx context.Context, m report.Manifest, startedAt time.Time, workers int, interval time.Duration) string {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		zap.L().Warn("run history unavailable", zap.Error(err))
		return ""
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		zap.L().Warn("run history migrate failed", zap.Error(err))
		return ""
	}

	id, err := st.RecordRun(ctx, store.Run{
		StartedAt:    startedAt,
		FinishedAt:   time.Now(),
		Species:      m.Species,
		Resolved:     m.Resolved,
		Unresolved:   m.Unresolved,
		Annotated:    m.Annotated,
		Workers:      workers,
		RateInterval: interval,
		CacheDir:     resolveCacheDir,
		StatusPath:   resolveStatusPath,
	})
	if err != nil {
		zap.L().Warn("run history record failed", zap.Error(err))
		return ""
	}
	return id
}
