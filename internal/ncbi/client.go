// Package ncbi wraps the NCBI `datasets` command-line tool: building
// per-tier genome summary queries, parsing their JSON-lines output, and
// classifying their failures.
package ncbi

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/verdant-bio/taxon-cli/internal/model"
)

// QueryError is a failed datasets invocation. Stderr carries the raw tool
// output used by Classify and IsTransient.
type QueryError struct {
	Stderr string
}

func (e *QueryError) Error() string {
	if e.Stderr == "" {
		return "ncbi: datasets query failed"
	}
	return "ncbi: datasets query failed: " + e.Stderr
}

// Runner executes one datasets invocation. It exists so tests and the retry
// layer can substitute the real subprocess.
type Runner interface {
	Run(ctx context.Context, args []string) (stdout, stderr string, err error)
}

// ExecRunner invokes the datasets binary as a subprocess.
type ExecRunner struct {
	Binary  string
	Timeout time.Duration
}

// NewExecRunner returns a runner for the given binary with a per-call
// timeout. Zero timeout means no limit beyond the caller's context.
func NewExecRunner(binary string, timeout time.Duration) *ExecRunner {
	if binary == "" {
		binary = "datasets"
	}
	return &ExecRunner{Binary: binary, Timeout: timeout}
}

func (r *ExecRunner) Run(ctx context.Context, args []string) (string, string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Client issues genome summary queries for taxon terms.
type Client struct {
	runner Runner
	apiKey string
}

// NewClient builds a Client. apiKey may be empty; when set it is passed to
// every invocation and raises the allowed request rate upstream.
func NewClient(runner Runner, apiKey string) *Client {
	return &Client{runner: runner, apiKey: apiKey}
}

// Args builds the full argument list for one (term, tier) query.
func (c *Client) Args(term string, tier model.SearchTier) []string {
	args := []string{"summary", "genome", "taxon", term}
	args = append(args, tier.Flags...)
	args = append(args, "--as-json-lines")
	if c.apiKey != "" {
		args = append(args, "--api-key", c.apiKey)
	}
	return args
}

// SummarizeGenome runs one (term, tier) query and returns raw stdout.
// Any failure is surfaced as a *QueryError whose Stderr holds the tool's
// stderr, or the spawn error text when the tool never produced any.
func (c *Client) SummarizeGenome(ctx context.Context, term string, tier model.SearchTier) (string, error) {
	stdout, stderr, err := c.runner.Run(ctx, c.Args(term, tier))
	if err != nil {
		if stderr == "" {
			stderr = err.Error()
		}
		return "", &QueryError{Stderr: stderr}
	}
	return stdout, nil
}
