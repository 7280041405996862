// Package species loads the input species table.
package species

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/verdant-bio/taxon-cli/internal/model"
)

// requiredColumns must all be present in the input header. Their absence
// is fatal before any species is processed.
var requiredColumns = []string{"Accepted name", "Legacy Name", "Genus"}

// Load reads the species CSV at path. Name fields are NFC-normalized and
// trimmed; species lists exported from spreadsheets routinely carry
// combining-character variants that would defeat cache keying.
func Load(path string) ([]model.SpeciesRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "species: open %s", path)
	}
	defer f.Close()

	return Read(f)
}

// Read parses species records from CSV data.
func Read(r io.Reader) ([]model.SpeciesRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("species: input is empty")
	}
	if err != nil {
		return nil, eris.Wrap(err, "species: read header")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[cleanField(name)] = i
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, eris.Errorf("species: missing required column %q", required)
		}
	}

	var records []model.SpeciesRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "species: read row")
		}

		records = append(records, model.SpeciesRecord{
			AcceptedName: field(row, cols[requiredColumns[0]]),
			LegacyName:   field(row, cols[requiredColumns[1]]),
			Genus:        field(row, cols[requiredColumns[2]]),
		})
	}

	return records, nil
}

func field(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return cleanField(row[idx])
}

func cleanField(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
