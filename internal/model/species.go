// Package model defines the species records, search tiers, and resolution
// results shared across the accession pipeline.
package model

import "strings"

// Sentinel is written for any status-table field that has no value.
const Sentinel = "N/A"

// SpeciesRecord is one input row from the species table. Records are read
// once and never mutated; resolution works on copies of the name fields.
type SpeciesRecord struct {
	AcceptedName string
	LegacyName   string
	Genus        string
}

// SearchField identifies which name field produced a hit.
type SearchField string

const (
	FieldAcceptedName SearchField = "Accepted name"
	FieldLegacyName   SearchField = "Legacy Name"
	FieldGenus        SearchField = "Genus"
)

// FieldCandidate pairs a name field with its value and search priority.
type FieldCandidate struct {
	Field    SearchField
	Value    string
	Priority int // 1 = Accepted name, 2 = Legacy Name, 3 = Genus
}

// SearchFields returns the record's name fields in fixed priority order.
// Blank fields are included; callers skip them without consuming a query.
func (r SpeciesRecord) SearchFields() []FieldCandidate {
	return []FieldCandidate{
		{Field: FieldAcceptedName, Value: strings.TrimSpace(r.AcceptedName), Priority: 1},
		{Field: FieldLegacyName, Value: strings.TrimSpace(r.LegacyName), Priority: 2},
		{Field: FieldGenus, Value: strings.TrimSpace(r.Genus), Priority: 3},
	}
}

// Status strings for the per-species status table. The wording is fixed:
// downstream tooling matches on these exact values.
const (
	StatusInvalidTaxonomy   = "Invalid Taxonomy Name - Not Recognized"
	StatusTaxonomyNotExact  = "Taxonomy Name Not Exact - Suggestions Available"
	StatusNoGenomeData      = "Valid Taxonomy - No Genome Data Available"
	StatusQueryError        = "Error Querying Genome Database"
	StatusNoProteomeFound   = "No Reference Proteome Found"
	StatusLadderExhausted   = "No Genome Data Available"
	StatusAnnotatedRefFound = "Annotated Reference Genome Available"
	StatusAnnotatedFound    = "Annotated Genome Available (Non-Reference)"
	StatusReferenceFound    = "Reference Genome Available (Not Annotated)"
	StatusAnyGenomeFound    = "Genome Available (Not Annotated)"
)

// ResolutionResult is the per-species outcome. Exactly one is produced for
// every input record, resolved or not.
type ResolutionResult struct {
	AcceptedName    string
	Status          string
	Accession       string
	NameUsed        SearchField
	PriorityLevel   int // 1-3, field that produced the hit
	AnnotationLevel int // 1-4, tier that produced the hit
	DownloadMethod  DownloadMethod
	HasAnnotation   bool
	AssemblyLevel   string
}

// Resolved reports whether an accession was found for the species.
func (r ResolutionResult) Resolved() bool {
	return r.Accession != ""
}

// Unresolved builds the default result for a species that produced no
// accession. Status falls back to StatusNoProteomeFound when the ladder
// never reached a classified terminal status.
func Unresolved(acceptedName, status string) ResolutionResult {
	if status == "" {
		status = StatusNoProteomeFound
	}
	return ResolutionResult{
		AcceptedName: acceptedName,
		Status:       status,
	}
}
