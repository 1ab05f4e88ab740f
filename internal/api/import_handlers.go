package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/skillang/leadg-crm/internal/domain"
	"github.com/skillang/leadg-crm/internal/repository/postgres"
)

// HandleListImports returns recent drop-folder import jobs, newest
// first.
// GET /api/imports
func (h *Handlers) HandleListImports(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	jobs, total, err := h.imports.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list imports")
		return
	}
	if jobs == nil {
		jobs = []domain.ImportJob{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"imports": jobs,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// HandleGetImport returns one import job by id.
// GET /api/imports/{importID}
func (h *Handlers) HandleGetImport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "importID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid import id")
		return
	}

	job, err := h.imports.Get(r.Context(), id)
	if errors.Is(err, postgres.ErrNotFound) {
		respondError(w, http.StatusNotFound, "import not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load import")
		return
	}
	respondJSON(w, http.StatusOK, job)
}

// HandleTriggerScan kicks off a drop-folder scan outside the schedule.
// POST /api/imports/scan
func (h *Handlers) HandleTriggerScan(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		respondError(w, http.StatusServiceUnavailable, "drop folder importer not enabled")
		return
	}
	if h.importer.IsRunning() {
		respondJSON(w, http.StatusOK, map[string]string{"status": "already_running"})
		return
	}
	// Detached from the request context so the scan survives the
	// response.
	go h.importer.RunOnce(context.Background())
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
}

// HandleImportProgress returns live progress for one drop-folder file.
// GET /api/imports/progress?key=<original_key>
func (h *Handlers) HandleImportProgress(w http.ResponseWriter, r *http.Request) {
	if h.progress == nil {
		respondError(w, http.StatusServiceUnavailable, "progress tracking not enabled")
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		respondError(w, http.StatusBadRequest, "key is required")
		return
	}

	prog, err := h.progress.Load(r.Context(), key)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}
	if prog == nil {
		respondError(w, http.StatusNotFound, "no progress recorded for key")
		return
	}
	respondJSON(w, http.StatusOK, prog)
}
