// Package resolver walks the tiered query ladder for a search term and the
// three-field fallback for a species record.
package resolver

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/verdant-bio/taxon-cli/internal/model"
	"github.com/verdant-bio/taxon-cli/internal/ncbi"
	"github.com/verdant-bio/taxon-cli/internal/querycache"
	"github.com/verdant-bio/taxon-cli/internal/ratelimit"
	"github.com/verdant-bio/taxon-cli/internal/resilience"
)

// TermOutcome is the result of the full tier ladder for one search term.
// Found outcomes carry the winning tier's metadata; unfound outcomes carry
// the status of whatever ended the ladder.
type TermOutcome struct {
	Accession     string
	Tier          model.SearchTier
	HasAnnotation bool
	AssemblyLevel string
	Status        string
}

// Found reports whether the ladder produced an accession.
func (o TermOutcome) Found() bool {
	return o.Accession != ""
}

// Resolver resolves taxon terms to accessions. The cache and gate are
// shared across all workers; both are internally synchronized.
type Resolver struct {
	client *ncbi.Client
	cache  *querycache.Cache
	gate   *ratelimit.Gate
	retry  resilience.RetryConfig
}

// New builds a Resolver around the shared client, cache, and rate gate.
func New(client *ncbi.Client, cache *querycache.Cache, gate *ratelimit.Gate, retry resilience.RetryConfig) *Resolver {
	if retry.ShouldRetry == nil {
		retry.ShouldRetry = func(err error) bool {
			var qe *ncbi.QueryError
			return errors.As(err, &qe) && ncbi.IsTransient(qe.Stderr)
		}
	}
	return &Resolver{client: client, cache: cache, gate: gate, retry: retry}
}

// ResolveTerm walks tiers 1-4 in order, short-circuiting on the first
// accession or on a terminal taxonomy error. Cache hits skip the rate gate
// and the external call entirely. The returned error is non-nil only for
// context cancellation or other non-query failures.
func (r *Resolver) ResolveTerm(ctx context.Context, term string) (TermOutcome, error) {
	log := zap.L().With(zap.String("term", term))

	for _, tier := range model.Tiers {
		last := tier.Level == len(model.Tiers)

		entry, cached := r.cache.Get(term, tier)
		if !cached {
			fresh, err := r.query(ctx, term, tier)
			if err != nil {
				return TermOutcome{}, err
			}
			entry = fresh
		} else {
			log.Debug("cache hit", zap.Int("tier", tier.Level))
		}

		if entry.Failed() {
			category := ncbi.Classify(entry.Error)
			if category.TerminalForTerm() {
				log.Info("taxonomy error, abandoning term",
					zap.Int("tier", tier.Level),
					zap.String("status", category.Status()),
				)
				return TermOutcome{Status: category.Status()}, nil
			}
			if last {
				return TermOutcome{Status: category.Status()}, nil
			}
			continue
		}

		report, ok := ncbi.ParseSummary(entry.Stdout)
		if !ok {
			// A success with no extractable accession behaves like a
			// failure at this tier.
			if last {
				return TermOutcome{Status: model.StatusLadderExhausted}, nil
			}
			continue
		}

		log.Info("accession found",
			zap.String("accession", report.Accession),
			zap.Int("tier", tier.Level),
			zap.Bool("annotated", report.HasAnnotation),
		)
		return TermOutcome{
			Accession:     report.Accession,
			Tier:          tier,
			HasAnnotation: report.HasAnnotation,
			AssemblyLevel: report.AssemblyLevel,
			Status:        tier.Status,
		}, nil
	}

	return TermOutcome{Status: model.StatusLadderExhausted}, nil
}

// query executes one (term, tier) call through the rate gate and retry
// policy, and caches whichever outcome comes back before interpreting it.
func (r *Resolver) query(ctx context.Context, term string, tier model.SearchTier) (querycache.Entry, error) {
	retry := r.retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("summary genome taxon", term)
	}

	stdout, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (string, error) {
		if err := r.gate.Wait(ctx); err != nil {
			return "", err
		}
		return r.client.SummarizeGenome(ctx, term, tier)
	})
	if err != nil {
		var qe *ncbi.QueryError
		if !errors.As(err, &qe) {
			return querycache.Entry{}, err
		}
		status := ncbi.Classify(qe.Stderr).Status()
		r.cache.PutFailure(term, tier, qe.Stderr, status)
		return querycache.Entry{Error: qe.Stderr, Status: status}, nil
	}

	r.cache.PutSuccess(term, tier, stdout, "")
	return querycache.Entry{Stdout: stdout}, nil
}

// ResolveSpecies tries the record's name fields in priority order and stops
// at the first one that yields an accession. Blank fields are skipped
// without consuming a query. When nothing resolves, the species keeps the
// final ladder status, defaulting to "No Reference Proteome Found".
func (r *Resolver) ResolveSpecies(ctx context.Context, rec model.SpeciesRecord) (model.ResolutionResult, error) {
	var lastStatus string

	for _, cand := range rec.SearchFields() {
		if cand.Value == "" {
			continue
		}

		out, err := r.ResolveTerm(ctx, cand.Value)
		if err != nil {
			return model.ResolutionResult{}, err
		}
		lastStatus = out.Status

		if out.Found() {
			return model.ResolutionResult{
				AcceptedName:    rec.AcceptedName,
				Status:          out.Status,
				Accession:       out.Accession,
				NameUsed:        cand.Field,
				PriorityLevel:   cand.Priority,
				AnnotationLevel: out.Tier.Level,
				DownloadMethod:  out.Tier.Download,
				HasAnnotation:   out.HasAnnotation,
				AssemblyLevel:   out.AssemblyLevel,
			}, nil
		}
	}

	return model.Unresolved(rec.AcceptedName, lastStatus), nil
}
