package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/skillang/leadg-crm/internal/leadimport"
)

// HandleBulkCreate ingests one CSV of leads.
// POST /api/leads/bulk takes multipart/form-data with a "file" field
// and an optional "force_create" flag.
func (h *Handlers) HandleBulkCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, leadimport.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(leadimport.MaxFileSize); err != nil {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("file too large, maximum size is %dMB", leadimport.MaxFileSize/(1<<20)))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	forceCreate := strings.EqualFold(r.FormValue("force_create"), "true")

	summary, err := h.pipeline.Run(r.Context(), header.Filename, header.Size, file, forceCreate)
	if err != nil {
		var missing *leadimport.MissingHeaderError
		switch {
		case errors.As(err, &missing):
			respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":           err.Error(),
				"missing_headers": missing.Missing,
			})
		case summary == nil:
			// Precondition or parse failure, nothing was submitted.
			respondError(w, http.StatusBadRequest, err.Error())
		case summary.ValidRows == 0:
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":   err.Error(),
				"summary": summary,
			})
		default:
			respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error":   "bulk lead creation failed",
				"detail":  err.Error(),
				"summary": summary,
			})
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": summary.Result.Message,
		"summary": summary,
	})
}

// HandleTemplate serves the downloadable CSV template.
// GET /api/leads/bulk/template
func (h *Handlers) HandleTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", leadimport.TemplateFileName))
	w.Write(leadimport.Template())
}
