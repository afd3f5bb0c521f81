// Package export writes a library out as CSV, YAML or Parquet and reads
// CSV and Parquet exports back in.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for export formats other than csv, yaml and parquet
var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	FormatCSV     Format = "csv"
	FormatYAML    Format = "yaml"
	FormatParquet Format = "parquet"
)

// Header is the fixed CSV header row
var Header = []string{"ISBN", "Title", "Author", "Genre"}

// ParseFormat accepts a format name case-insensitively; empty means csv
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	default:
		return "text/csv"
	}
}

// Filename is the suggested download name
func (f Format) Filename() string {
	return "library." + string(f)
}

// Write encodes records in the given format, preserving their order
func Write(w io.Writer, format Format, records []models.BookRecord) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatYAML:
		return WriteYAML(w, records)
	case FormatParquet:
		return WriteParquet(w, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteCSV writes the header row followed by one row per record
func WriteCSV(w io.Writer, records []models.BookRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{r.ISBN, r.Title, r.Author, r.Genre}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Document is the YAML export layout
type Document struct {
	Generated string              `yaml:"generated"`
	Count     int                 `yaml:"count"`
	Books     []models.BookRecord `yaml:"books"`
}

func WriteYAML(w io.Writer, records []models.BookRecord) error {
	doc := Document{
		Generated: time.Now().Format(time.RFC3339),
		Count:     len(records),
		Books:     records,
	}
	if doc.Books == nil {
		doc.Books = []models.BookRecord{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

func WriteParquet(w io.Writer, records []models.BookRecord) error {
	pw := parquet.NewGenericWriter[models.BookRecord](w)
	if _, err := pw.Write(records); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ReadCSV loads a CSV export. The header row must match Header exactly.
func ReadCSV(r io.Reader) ([]models.BookRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, h := range Header {
		if header[i] != h {
			return nil, fmt.Errorf("unexpected CSV header %v, want %v", header, Header)
		}
	}

	records := []models.BookRecord{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		records = append(records, models.BookRecord{ISBN: row[0], Title: row[1], Author: row[2], Genre: row[3]})
	}
	return records, nil
}

// ReadParquet loads a Parquet export
func ReadParquet(r io.ReaderAt, size int64) ([]models.BookRecord, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[models.BookRecord](pf)
	defer reader.Close()

	records := make([]models.BookRecord, 0, pf.NumRows())
	rows := make([]models.BookRecord, 128)
	for {
		n, err := reader.Read(rows)
		records = append(records, rows[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return records, nil
}
