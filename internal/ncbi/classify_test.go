package ncbi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verdant-bio/taxon-cli/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   Category
	}{
		{
			name:   "not recognized",
			stderr: `Error: The taxonomy name 'Ficus religioso' is not recognized`,
			want:   CategoryInvalidTaxonomy,
		},
		{
			name:   "not exact",
			stderr: `Error: The taxonomy name 'ficus' is not exact. Did you mean one of the following?`,
			want:   CategoryNotExact,
		},
		{
			name:   "no genome data",
			stderr: `Error: The taxonomy name is valid, but no genome data is currently available for this taxon`,
			want:   CategoryNoGenomeData,
		},
		{
			name:   "anything else",
			stderr: `Error: internal server error`,
			want:   CategoryGeneric,
		},
		{
			name:   "empty",
			stderr: "",
			want:   CategoryGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.stderr))
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// "not recognized" wins over "no genome data" when both appear.
	stderr := "name not recognized; no genome data is currently available"
	assert.Equal(t, CategoryInvalidTaxonomy, Classify(stderr))
}

func TestClassify_CaseSensitive(t *testing.T) {
	assert.Equal(t, CategoryGeneric, Classify("Not Recognized"))
}

func TestCategory_Status(t *testing.T) {
	assert.Equal(t, model.StatusInvalidTaxonomy, CategoryInvalidTaxonomy.Status())
	assert.Equal(t, model.StatusTaxonomyNotExact, CategoryNotExact.Status())
	assert.Equal(t, model.StatusNoGenomeData, CategoryNoGenomeData.Status())
	assert.Equal(t, model.StatusQueryError, CategoryGeneric.Status())
}

func TestCategory_TerminalForTerm(t *testing.T) {
	assert.True(t, CategoryInvalidTaxonomy.TerminalForTerm())
	assert.True(t, CategoryNotExact.TerminalForTerm())
	assert.False(t, CategoryNoGenomeData.TerminalForTerm())
	assert.False(t, CategoryGeneric.TerminalForTerm())
}

func TestIsTransient(t *testing.T) {
	transient := []string{
		"Error: request timed out",
		"Get https://api.ncbi.nlm.nih.gov: connection reset by peer",
		"HTTP 503 Service Unavailable",
		"Too Many Requests",
		"error 429",
		"TLS handshake failed",
		"rate limit exceeded",
	}
	for _, s := range transient {
		assert.True(t, IsTransient(s), "expected transient: %q", s)
	}

	terminal := []string{
		"The taxonomy name 'x' is not recognized",
		"no genome data is currently available",
		"",
		"permission denied",
	}
	for _, s := range terminal {
		assert.False(t, IsTransient(s), "expected non-transient: %q", s)
	}
}
