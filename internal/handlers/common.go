package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lehigh-university-libraries/shelfscan/internal/cataloging"
	"github.com/lehigh-university-libraries/shelfscan/internal/models"
	"github.com/lehigh-university-libraries/shelfscan/internal/storage"
)

const sessionCookie = "shelfscan_session"

type Handler struct {
	sessionStore      *storage.SessionStore
	catalogingService *cataloging.Service
	maxUploadBytes    int64
}

func New(store *storage.SessionStore, service *cataloging.Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 * 1024 * 1024
	}
	return &Handler{
		sessionStore:      store,
		catalogingService: service,
		maxUploadBytes:    maxUploadBytes,
	}
}

// LibraryResponse is the table view sent to the page
type LibraryResponse struct {
	SessionID string              `json:"session_id,omitempty"`
	StartedAt *time.Time          `json:"started_at,omitempty"`
	Count     int                 `json:"count"`
	Records   []models.BookRecord `json:"records"`
}

func libraryResponse(lib *models.Library) LibraryResponse {
	if lib == nil {
		return LibraryResponse{Records: []models.BookRecord{}}
	}
	records := lib.Records()
	started := lib.CreatedAt()
	return LibraryResponse{SessionID: lib.ID, StartedAt: &started, Count: len(records), Records: records}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	http.Error(w, message, code)
}

// Session helpers

// currentLibrary returns the caller's library, or nil when they have none yet
func (h *Handler) currentLibrary(r *http.Request) *models.Library {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	lib, ok := h.sessionStore.Get(c.Value)
	if !ok {
		return nil
	}
	lib.Touch()
	return lib
}

// ensureLibrary returns the caller's library, starting a session and setting the cookie if needed
func (h *Handler) ensureLibrary(w http.ResponseWriter, r *http.Request) (*models.Library, error) {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	lib, created, err := h.sessionStore.GetOrCreate(id)
	if err != nil {
		return nil, err
	}
	if created {
		slog.Info("Session started", "session_id", lib.ID)
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    lib.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return lib, nil
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// requestLogger logs one line per request through slog
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
