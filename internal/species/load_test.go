package species

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_Basic(t *testing.T) {
	input := `Accepted name,Legacy Name,Genus
Ficus religiosa,Urostigma religiosum,Ficus
Arabidopsis thaliana,,Arabidopsis
`
	records, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Ficus religiosa", records[0].AcceptedName)
	assert.Equal(t, "Urostigma religiosum", records[0].LegacyName)
	assert.Equal(t, "Ficus", records[0].Genus)
	assert.Equal(t, "", records[1].LegacyName)
}

func TestRead_ExtraColumnsIgnored(t *testing.T) {
	input := `Family,Accepted name,Legacy Name,Genus,Notes
Moraceae,Ficus religiosa,,Ficus,sacred fig
`
	records, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ficus religiosa", records[0].AcceptedName)
	assert.Equal(t, "Ficus", records[0].Genus)
}

func TestRead_MissingRequiredColumn(t *testing.T) {
	input := `Accepted name,Genus
Ficus religiosa,Ficus
`
	_, err := Read(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Legacy Name")
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.Error(t, err)
}

func TestRead_TrimsAndNormalizes(t *testing.T) {
	// "é" as e + combining acute must normalize to the precomposed form so
	// cache keys match across input variants.
	input := "Accepted name,Legacy Name,Genus\n  Hernández plant  , x ,\n"
	records, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Hernández plant", records[0].AcceptedName)
	assert.Equal(t, "x", records[0].LegacyName)
}

func TestRead_ShortRows(t *testing.T) {
	input := "Accepted name,Legacy Name,Genus\nFicus religiosa\n"
	records, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ficus religiosa", records[0].AcceptedName)
	assert.Equal(t, "", records[0].Genus)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "species.csv")
	require.NoError(t, os.WriteFile(path, []byte("Accepted name,Legacy Name,Genus\nA,B,C\n"), 0o644))

	records, err := Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].AcceptedName)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
