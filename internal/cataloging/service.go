package cataloging

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/lehigh-university-libraries/shelfscan/internal/barcode"
	"github.com/lehigh-university-libraries/shelfscan/internal/images"
	"github.com/lehigh-university-libraries/shelfscan/internal/isbn"
	"github.com/lehigh-university-libraries/shelfscan/internal/models"
	"github.com/lehigh-university-libraries/shelfscan/internal/providers"
)

// Status is the result category of a single scan
type Status string

const (
	StatusAdded        Status = "added"
	StatusNoBarcode    Status = "no_barcode"
	StatusNotFound     Status = "not_found"
	StatusLookupError  Status = "lookup_error"
	StatusInvalidImage Status = "invalid_image"
)

// Level tells the UI how to present the message
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Outcome describes what happened to one uploaded image
type Outcome struct {
	Status  Status             `json:"status"`
	Level   Level              `json:"level"`
	Message string             `json:"message"`
	ISBN    string             `json:"isbn,omitempty"`
	Record  *models.BookRecord `json:"record,omitempty"`
	Count   int                `json:"count"`
}

// Detector finds a barcode in a decoded image
type Detector interface {
	Detect(img image.Image) (string, error)
}

type Service struct {
	detector Detector
	provider providers.Provider
}

func NewService(detector Detector, provider providers.Provider) *Service {
	return &Service{
		detector: detector,
		provider: provider,
	}
}

// Scan runs one image through decode, barcode detection and metadata lookup,
// appending a record to lib on success. Every failure becomes a message on the
// returned Outcome; nothing is retried and lib is left untouched.
func (s *Service) Scan(ctx context.Context, lib *models.Library, filename string, r io.Reader) Outcome {
	logger := slog.With("session_id", lib.ID, "filename", filename)

	img, err := images.Decode(r, filename)
	if err != nil {
		logger.Warn("Failed to decode uploaded image", "error", err)
		return s.outcome(lib, Outcome{
			Status:  StatusInvalidImage,
			Level:   LevelError,
			Message: fmt.Sprintf("Could not read image: %v", err),
		})
	}

	raw, err := s.detector.Detect(img)
	if err != nil {
		if !errors.Is(err, barcode.ErrNoBarcode) {
			logger.Warn("Barcode detection failed", "error", err)
		}
		logger.Info("No barcode detected")
		return s.outcome(lib, Outcome{
			Status:  StatusNoBarcode,
			Level:   LevelWarning,
			Message: "No barcode detected in the image.",
		})
	}

	code := isbn.Clean(raw)
	switch {
	case !isbn.Valid(code):
		logger.Warn("Detected barcode does not carry a valid ISBN checksum", "isbn", code)
	case len(code) == 10:
		// records always carry the 13-digit form
		if isbn13, err := isbn.ToISBN13(code); err == nil {
			logger.Debug("Normalised ISBN-10", "isbn10", code, "isbn13", isbn13)
			code = isbn13
		}
	}
	logger = logger.With("isbn", code)
	logger.Info("Detected ISBN", "provider", s.provider.Name())

	md, err := s.provider.Lookup(ctx, code)
	switch {
	case errors.Is(err, providers.ErrNotFound):
		logger.Warn("No metadata found")
		return s.outcome(lib, Outcome{
			Status:  StatusNotFound,
			Level:   LevelWarning,
			ISBN:    code,
			Message: fmt.Sprintf("No details found for ISBN: %s", code),
		})
	case err != nil:
		logger.Error("Metadata lookup failed", "error", err)
		return s.outcome(lib, Outcome{
			Status:  StatusLookupError,
			Level:   LevelError,
			ISBN:    code,
			Message: fmt.Sprintf("Error fetching details: %v", err),
		})
	}

	record := models.NewBookRecord(code, md.Title, md.Authors, md.Subjects)
	lib.Append(record)
	logger.Info("Added book", "title", record.Title, "author", record.Author, "count", lib.Len())

	return s.outcome(lib, Outcome{
		Status:  StatusAdded,
		Level:   LevelSuccess,
		ISBN:    code,
		Record:  &record,
		Message: fmt.Sprintf("Added: %s by %s", record.Title, record.Author),
	})
}

func (s *Service) outcome(lib *models.Library, o Outcome) Outcome {
	o.Count = lib.Len()
	return o
}
