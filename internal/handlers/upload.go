package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/shelfscan/internal/cataloging"
	"github.com/lehigh-university-libraries/shelfscan/internal/images"
)

// UploadResponse carries the scan outcome plus the refreshed table
type UploadResponse struct {
	Outcome cataloging.Outcome `json:"outcome"`
	LibraryResponse
}

// HandleUpload scans one uploaded barcode photo into the caller's library.
// Scan failures are reported in the outcome with a 200; only malformed
// requests get an HTTP error.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	// leave room for multipart framing around the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1024*1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, fmt.Sprintf("File too large (max %dMB)", h.maxUploadBytes/1024/1024), http.StatusRequestEntityTooLarge)
			return
		}
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !images.AllowedExtension(header.Filename) {
		h.writeError(w, "Unsupported file type. Allowed: "+strings.Join(images.AllowedExtensions(), ", "), http.StatusBadRequest)
		return
	}

	fileData, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if int64(len(fileData)) > h.maxUploadBytes {
		h.writeError(w, fmt.Sprintf("File too large (max %dMB)", h.maxUploadBytes/1024/1024), http.StatusRequestEntityTooLarge)
		return
	}

	lib, err := h.ensureLibrary(w, r)
	if err != nil {
		h.writeError(w, "Failed to start session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	outcome := h.catalogingService.Scan(r.Context(), lib, header.Filename, bytes.NewReader(fileData))

	h.writeJSON(w, UploadResponse{
		Outcome:         outcome,
		LibraryResponse: libraryResponse(lib),
	})
}
