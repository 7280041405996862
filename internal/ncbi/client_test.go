package ncbi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-bio/taxon-cli/internal/model"
)

type stubRunner struct {
	stdout string
	stderr string
	err    error
	args   [][]string
}

func (s *stubRunner) Run(_ context.Context, args []string) (string, string, error) {
	s.args = append(s.args, args)
	return s.stdout, s.stderr, s.err
}

func TestClient_Args(t *testing.T) {
	client := NewClient(&stubRunner{}, "")
	args := client.Args("Ficus religiosa", model.Tiers[0])
	assert.Equal(t, []string{
		"summary", "genome", "taxon", "Ficus religiosa",
		"--reference", "--annotated", "--as-json-lines",
	}, args)

	args = client.Args("Ficus", model.Tiers[3])
	assert.Equal(t, []string{
		"summary", "genome", "taxon", "Ficus", "--as-json-lines",
	}, args)
}

func TestClient_Args_WithAPIKey(t *testing.T) {
	client := NewClient(&stubRunner{}, "secret")
	args := client.Args("Ficus", model.Tiers[1])
	assert.Equal(t, []string{
		"summary", "genome", "taxon", "Ficus",
		"--annotated", "--as-json-lines", "--api-key", "secret",
	}, args)
}

func TestClient_SummarizeGenome_Success(t *testing.T) {
	runner := &stubRunner{stdout: `{"accession":"GCF_1"}`}
	client := NewClient(runner, "")

	stdout, err := client.SummarizeGenome(context.Background(), "Ficus", model.Tiers[0])
	require.NoError(t, err)
	assert.Equal(t, `{"accession":"GCF_1"}`, stdout)
	require.Len(t, runner.args, 1)
}

func TestClient_SummarizeGenome_FailureCarriesStderr(t *testing.T) {
	runner := &stubRunner{stderr: "name not recognized", err: errors.New("exit status 1")}
	client := NewClient(runner, "")

	_, err := client.SummarizeGenome(context.Background(), "Bogus", model.Tiers[0])
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "name not recognized", qe.Stderr)
}

func TestClient_SummarizeGenome_SpawnFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("exec: datasets: not found")}
	client := NewClient(runner, "")

	_, err := client.SummarizeGenome(context.Background(), "Ficus", model.Tiers[0])
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "exec: datasets: not found", qe.Stderr)
}
