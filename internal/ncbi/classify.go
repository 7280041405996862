package ncbi

import (
	"strings"

	"github.com/verdant-bio/taxon-cli/internal/model"
)

// Category is the closed set of failure classifications for a datasets
// query. Every failed invocation maps to exactly one category.
type Category string

const (
	CategoryInvalidTaxonomy Category = "invalid_taxonomy"
	CategoryNotExact        Category = "taxonomy_not_exact"
	CategoryNoGenomeData    Category = "no_genome_data"
	CategoryGeneric         Category = "generic_error"
)

// Classify maps raw stderr text from a failed datasets call to a Category.
// Matching is substring-based and case-sensitive, checked in fixed priority
// order; anything unmatched is a generic query error.
func Classify(stderr string) Category {
	stderr = strings.TrimSpace(stderr)
	switch {
	case strings.Contains(stderr, "not recognized"):
		return CategoryInvalidTaxonomy
	case strings.Contains(stderr, "not exact"):
		return CategoryNotExact
	case strings.Contains(stderr, "no genome data is currently available"):
		return CategoryNoGenomeData
	default:
		return CategoryGeneric
	}
}

// Status returns the status-table wording for the category.
func (c Category) Status() string {
	switch c {
	case CategoryInvalidTaxonomy:
		return model.StatusInvalidTaxonomy
	case CategoryNotExact:
		return model.StatusTaxonomyNotExact
	case CategoryNoGenomeData:
		return model.StatusNoGenomeData
	default:
		return model.StatusQueryError
	}
}

// TerminalForTerm reports whether the category aborts the whole tier ladder
// for the current search term. A name the taxonomy service rejects will not
// become valid at a looser tier.
func (c Category) TerminalForTerm() bool {
	return c == CategoryInvalidTaxonomy || c == CategoryNotExact
}

// transientMarkers are matched against lowercased stderr text. They cover
// network flakes, server-side errors, and rate limiting.
var transientMarkers = []string{
	"timeout",
	"timed out",
	"deadline exceeded",
	"connection reset",
	"connection refused",
	"broken pipe",
	"tls handshake",
	"temporary failure",
	"rate limit",
	"too many requests",
	"429",
	"500",
	"502",
	"503",
	"504",
}

// IsTransient reports whether a failure looks retryable. Transience is
// independent of Classify: the retry executor consults it before the
// four-category classification ever runs.
func IsTransient(stderr string) bool {
	msg := strings.ToLower(stderr)
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
