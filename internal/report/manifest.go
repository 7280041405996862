package report

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/verdant-bio/taxon-cli/internal/model"
)

// Manifest summarizes one resolve run. It is written next to the status
// table so downstream stages can pick up counts and paths without parsing
// the CSVs.
type Manifest struct {
	RunID      string    `yaml:"run_id"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`

	Workers      int    `yaml:"workers"`
	RateInterval string `yaml:"rate_interval"`
	CacheDir     string `yaml:"cache_dir"`

	Species    int `yaml:"species"`
	Resolved   int `yaml:"resolved"`
	Unresolved int `yaml:"unresolved"`
	Annotated  int `yaml:"annotated"`

	StatusCounts map[string]int `yaml:"status_counts"`

	Outputs ManifestOutputs `yaml:"outputs"`
}

// ManifestOutputs records where each output landed.
type ManifestOutputs struct {
	Status       string `yaml:"status"`
	Accessions   string `yaml:"accessions"`
	DownloadInfo string `yaml:"download_info"`
}

// BuildManifest derives counts from the result set.
func BuildManifest(results []model.ResolutionResult) Manifest {
	m := Manifest{
		Species:      len(results),
		StatusCounts: make(map[string]int),
	}
	for _, res := range results {
		m.StatusCounts[res.Status]++
		if res.Resolved() {
			m.Resolved++
			if res.HasAnnotation {
				m.Annotated++
			}
		} else {
			m.Unresolved++
		}
	}
	return m
}

// WriteManifest writes the manifest as YAML.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return eris.Wrap(err, "report: marshal manifest")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "report: write manifest %s", path)
	}
	return nil
}
