package ncbi

import (
	"encoding/json"
	"strings"
)

// SummaryReport is the subset of a datasets genome summary the resolver
// cares about.
type SummaryReport struct {
	Accession     string
	HasAnnotation bool
	AssemblyLevel string
}

type summaryEntry struct {
	Accession      string          `json:"accession"`
	AnnotationInfo json.RawMessage `json:"annotation_info"`
	AssemblyInfo   struct {
		AssemblyLevel string `json:"assembly_level"`
	} `json:"assembly_info"`
}

type summaryLine struct {
	summaryEntry
	Reports []summaryEntry `json:"reports"`
}

// ParseSummary scans the JSON-lines output of `datasets summary genome
// taxon` and returns the first report carrying an accession. The accession
// may sit at the top level of a line or inside a nested reports list.
// Malformed lines are skipped; ok is false when no accession is found.
func ParseSummary(stdout string) (SummaryReport, bool) {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var parsed summaryLine
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			continue
		}

		if parsed.Accession != "" {
			return reportFrom(parsed.summaryEntry), true
		}
		for _, entry := range parsed.Reports {
			if entry.Accession != "" {
				return reportFrom(entry), true
			}
		}
	}
	return SummaryReport{}, false
}

func reportFrom(e summaryEntry) SummaryReport {
	return SummaryReport{
		Accession:     e.Accession,
		HasAnnotation: hasAnnotation(e.AnnotationInfo),
		AssemblyLevel: e.AssemblyInfo.AssemblyLevel,
	}
}

// hasAnnotation treats any non-null annotation_info object as annotated.
func hasAnnotation(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null"
}
