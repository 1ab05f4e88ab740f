package api

import (
	"encoding/json"
	"net/http"

	"github.com/skillang/leadg-crm/internal/leadimport"
	"github.com/skillang/leadg-crm/internal/repository/postgres"
	"github.com/skillang/leadg-crm/internal/worker"
)

// Handlers bundles everything the HTTP layer needs. The drop-folder
// importer and progress tracker are optional; their endpoints answer
// 503 when not wired.
type Handlers struct {
	pipeline   *leadimport.Pipeline
	activities *postgres.ActivityRepo
	imports    *postgres.ImportLogRepo
	importer   *worker.DropFolderImporter
	progress   *worker.ProgressTracker
}

func NewHandlers(
	pipeline *leadimport.Pipeline,
	activities *postgres.ActivityRepo,
	imports *postgres.ImportLogRepo,
	importer *worker.DropFolderImporter,
	progress *worker.ProgressTracker,
) *Handlers {
	return &Handlers{
		pipeline:   pipeline,
		activities: activities,
		imports:    imports,
		importer:   importer,
		progress:   progress,
	}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
