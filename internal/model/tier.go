package model

// DownloadMethod classifies how a genome should be fetched downstream.
type DownloadMethod string

const (
	// DownloadFull fetches the genome with annotation artifacts.
	DownloadFull DownloadMethod = "datasets_download"
	// DownloadGenomeOnly fetches sequence data only.
	DownloadGenomeOnly DownloadMethod = "datasets_download_genome_only"
)

// SearchTier is one rung of the query ladder, ordered by decreasing
// genome-quality guarantee. Tiers are tried strictly in ascending Level
// order and the first tier producing an accession wins.
type SearchTier struct {
	Level    int    // 1-4
	Slug     string // stable identifier, also part of the cache key
	Flags    []string
	Status   string // status-table wording when this tier hits
	Download DownloadMethod
}

// Tiers is the fixed ladder walked for every search term.
var Tiers = []SearchTier{
	{
		Level:    1,
		Slug:     "annotated_reference",
		Flags:    []string{"--reference", "--annotated"},
		Status:   StatusAnnotatedRefFound,
		Download: DownloadFull,
	},
	{
		Level:    2,
		Slug:     "annotated",
		Flags:    []string{"--annotated"},
		Status:   StatusAnnotatedFound,
		Download: DownloadFull,
	},
	{
		Level:    3,
		Slug:     "reference",
		Flags:    []string{"--reference"},
		Status:   StatusReferenceFound,
		Download: DownloadGenomeOnly,
	},
	{
		Level:    4,
		Slug:     "any",
		Flags:    nil,
		Status:   StatusAnyGenomeFound,
		Download: DownloadGenomeOnly,
	},
}
