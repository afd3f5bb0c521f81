package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var sample = []models.BookRecord{
	{ISBN: "9780441013593", Title: "Dune", Author: "Frank Herbert", Genre: "Science fiction, Deserts"},
	{ISBN: "9780060853983", Title: "Good Omens", Author: "Terry Pratchett, Neil Gaiman", Genre: models.Unknown},
	{ISBN: "9780441013593", Title: "Dune", Author: "Frank Herbert", Genre: "Science fiction, Deserts"},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{"yml", FormatYAML, false},
		{"parquet", FormatParquet, false},
		{"xlsx", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownFormat, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatDownloadNames(t *testing.T) {
	assert.Equal(t, "library.csv", FormatCSV.Filename())
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
	assert.Equal(t, "library.parquet", FormatParquet.Filename())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sample))

	expected := "ISBN,Title,Author,Genre\n" +
		"9780441013593,Dune,Frank Herbert,\"Science fiction, Deserts\"\n" +
		"9780060853983,Good Omens,\"Terry Pratchett, Neil Gaiman\",Unknown\n" +
		"9780441013593,Dune,Frank Herbert,\"Science fiction, Deserts\"\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteCSVEmptyLibraryHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "ISBN,Title,Author,Genre\n", buf.String())
}

func TestCSVRoundTripPreservesOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestReadCSVRejectsForeignHeader(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Title,ISBN,Author,Genre\nDune,1,A,B\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected CSV header")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sample))

	var doc Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 3, doc.Count)
	assert.NotEmpty(t, doc.Generated)
	assert.Equal(t, sample, doc.Books)
}

func TestParquetRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatParquet, sample))

	data := buf.Bytes()
	got, err := ReadParquet(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("xml"), sample)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
