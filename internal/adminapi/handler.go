// Package adminapi exposes curriculum synchronization and teardown over HTTP.
package adminapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/p-n-ai/pai-curriculum/internal/curriculum"
	"github.com/p-n-ai/pai-curriculum/internal/report"
	"github.com/p-n-ai/pai-curriculum/internal/seeder"
)

// XLSXContentType is the media type of the spreadsheet report. Send it in
// Accept to receive the run report instead of JSON.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Engine is the subset of *seeder.Engine the handlers need.
type Engine interface {
	Validate(doc *curriculum.SubjectDocument) error
	Synchronize(ctx context.Context, doc *curriculum.SubjectDocument) (*seeder.SeedResult, error)
	Teardown(ctx context.Context) (*seeder.TeardownResult, error)
}

// Handler serves the admin curriculum endpoints.
type Handler struct {
	engine   Engine
	maxBytes int64
}

// New creates a handler accepting documents of at most maxBytes.
func New(engine Engine, maxBytes int64) *Handler {
	return &Handler{engine: engine, maxBytes: maxBytes}
}

// Register mounts the endpoints on mux, each wrapped by guard.
func (h *Handler) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}
	mux.Handle("POST /admin/curriculum/sync", guard(http.HandlerFunc(h.handleSync)))
	mux.Handle("POST /admin/curriculum/teardown", guard(http.HandlerFunc(h.handleTeardown)))
}

type dryRunResponse struct {
	Valid   bool   `json:"valid"`
	Subject string `json:"subject"`
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "document exceeds "+strconv.FormatInt(h.maxBytes, 10)+" bytes")
			return
		}
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	doc, err := curriculum.Parse(body, curriculum.FormatFromContentType(r.Header.Get("Content-Type")))
	if err != nil {
		h.fail(w, "parse", err)
		return
	}

	if dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dryRun")); dryRun {
		if err := h.engine.Validate(doc); err != nil {
			h.fail(w, "validate", err)
			return
		}
		writeJSON(w, http.StatusOK, dryRunResponse{Valid: true, Subject: doc.Slug})
		return
	}

	res, err := h.engine.Synchronize(r.Context(), doc)
	if err != nil {
		h.fail(w, "synchronize", err)
		return
	}

	if wantsXLSX(r) {
		w.Header().Set("Content-Type", XLSXContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Slug+`-seed.xlsx"`)
		if err := report.WriteSeedReport(w, res); err != nil {
			slog.Error("failed to write seed report", "subject", doc.Slug, "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleTeardown(w http.ResponseWriter, r *http.Request) {
	if confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); !confirm {
		writeError(w, http.StatusBadRequest, "teardown deletes every subject; repeat with ?confirm=true")
		return
	}

	res, err := h.engine.Teardown(r.Context())
	if err != nil {
		h.fail(w, "teardown", err)
		return
	}

	if wantsXLSX(r) {
		w.Header().Set("Content-Type", XLSXContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="curriculum-teardown.xlsx"`)
		if err := report.WriteTeardownReport(w, res); err != nil {
			slog.Error("failed to write teardown report", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type errorResponse struct {
	Error      string                 `json:"error"`
	Violations []curriculum.Violation `json:"violations,omitempty"`
}

// fail maps engine errors onto status codes.
func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	var verr *curriculum.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid document", Violations: verr.Violations})
	case errors.Is(err, seeder.ErrRunInProgress):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("admin request failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func wantsXLSX(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), XLSXContentType)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
