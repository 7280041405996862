// Package report writes the resolution outputs: the per-species status
// table, the annotated-accession list, the download-info table, and the
// run manifest.
package report

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/verdant-bio/taxon-cli/internal/model"
)

var statusHeader = []string{
	"Accepted name", "Status", "Accession", "Name Used", "Priority Level",
	"Annotation Level", "Download Method", "Has Annotation", "Assembly Level",
}

var downloadHeader = []string{
	"Accession", "Annotation Level", "Download Method", "Species",
	"Has Annotation", "Assembly Level",
}

// WriteStatus writes one status row per species, resolved or not.
func WriteStatus(path string, results []model.ResolutionResult) error {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, statusRow(res))
	}
	return writeCSV(path, statusHeader, rows)
}

func statusRow(res model.ResolutionResult) []string {
	if !res.Resolved() {
		return []string{
			res.AcceptedName, res.Status, model.Sentinel, model.Sentinel,
			model.Sentinel, model.Sentinel, model.Sentinel, model.Sentinel,
			model.Sentinel,
		}
	}
	return []string{
		res.AcceptedName,
		res.Status,
		res.Accession,
		string(res.NameUsed),
		strconv.Itoa(res.PriorityLevel),
		strconv.Itoa(res.AnnotationLevel),
		string(res.DownloadMethod),
		formatBool(res.HasAnnotation),
		orSentinel(res.AssemblyLevel),
	}
}

// WriteAccessions writes the plain accession list, one per line. Only
// annotated winners qualify: an accession without annotation is recorded
// in the status table but is not useful to annotation-dependent stages.
func WriteAccessions(path string, results []model.ResolutionResult) error {
	var b strings.Builder
	for _, res := range results {
		if res.Resolved() && res.HasAnnotation {
			b.WriteString(res.Accession)
			b.WriteByte('\n')
		}
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return eris.Wrapf(err, "report: write accessions %s", path)
	}
	return nil
}

// WriteDownloadInfo writes one row per species that produced any accession
// with a recognized download method, annotated or not. The file is still
// emitted header-only when no species qualifies.
func WriteDownloadInfo(path string, results []model.ResolutionResult) error {
	var rows [][]string
	for _, res := range results {
		if !res.Resolved() || res.DownloadMethod == "" {
			continue
		}
		rows = append(rows, []string{
			res.Accession,
			strconv.Itoa(res.AnnotationLevel),
			string(res.DownloadMethod),
			res.AcceptedName,
			formatBool(res.HasAnnotation),
			orSentinel(res.AssemblyLevel),
		})
	}
	return writeCSV(path, downloadHeader, rows)
}

// WriteSpeciesNames writes the unique non-blank accepted names, sorted,
// with a leading blank line. The format matches what the coverage tooling
// downstream expects.
func WriteSpeciesNames(path string, records []model.SpeciesRecord) (int, error) {
	seen := make(map[string]struct{})
	var names []string
	for _, rec := range records {
		name := strings.TrimSpace(rec.AcceptedName)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteByte('\n')
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return 0, eris.Wrapf(err, "report: write species names %s", path)
	}
	return len(names), nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return eris.Wrapf(err, "report: write header %s", path)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return eris.Wrapf(err, "report: write row %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return eris.Wrapf(err, "report: flush %s", path)
	}
	return eris.Wrapf(f.Close(), "report: close %s", path)
}

// formatBool matches the tabular convention used by the rest of the
// workflow ("True"/"False").
func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func orSentinel(s string) string {
	if strings.TrimSpace(s) == "" {
		return model.Sentinel
	}
	return s
}
