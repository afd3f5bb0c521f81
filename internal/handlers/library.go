package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/export"
	"github.com/lehigh-university-libraries/shelfscan/internal/models"
)

func (h *Handler) HandleLibrary(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, libraryResponse(h.currentLibrary(r)))
}

// HandleEndSession discards the caller's library
func (h *Handler) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	if lib := h.currentLibrary(r); lib != nil {
		h.sessionStore.Delete(lib.ID)
		slog.Info("Session ended", "session_id", lib.ID, "records", lib.Len(), "age", time.Since(lib.CreatedAt()).Round(time.Second))
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleExport downloads the library as csv (default), yaml or parquet
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		if errors.Is(err, export.ErrUnknownFormat) {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var records []models.BookRecord
	if lib := h.currentLibrary(r); lib != nil {
		records = lib.Records()
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, records); err != nil {
		h.writeError(w, "Failed to export library: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("Unable to write export", "err", err)
	}
}
