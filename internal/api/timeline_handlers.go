package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/skillang/leadg-crm/internal/domain"
	"github.com/skillang/leadg-crm/internal/repository/postgres"
	"github.com/skillang/leadg-crm/internal/timeline"
)

// HandleTimeline returns one page of a lead's activity history with
// display config and formatted metadata resolved.
// GET /api/leads/{leadID}/timeline
func (h *Handlers) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	if leadID == "" {
		respondError(w, http.StatusBadRequest, "lead id is required")
		return
	}

	q := parseTimelineQuery(r)
	page, err := h.activities.Timeline(r.Context(), leadID, q)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load timeline")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"activities":  timeline.RenderPage(page),
		"total":       page.Total,
		"page":        page.Page,
		"limit":       q.Limit,
		"total_pages": page.TotalPages,
		"has_next":    page.HasNext,
		"has_prev":    page.HasPrev,
	})
}

// HandleActivityTypes returns the distinct activity types present on a
// lead's timeline, decorated for the filter dropdown.
// GET /api/leads/{leadID}/activity-types
func (h *Handlers) HandleActivityTypes(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	if leadID == "" {
		respondError(w, http.StatusBadRequest, "lead id is required")
		return
	}

	facets, err := h.activities.Facets(r.Context(), leadID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load activity types")
		return
	}

	decorated := make([]domain.ActivityFacet, 0, len(facets))
	for _, f := range facets {
		decorated = append(decorated, timeline.DecorateFacet(f.Value, f.Count))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"activity_types": decorated,
	})
}

// parseTimelineQuery reads filter and pagination params, clamping to
// sane bounds. Date filters pass through as strings; the store layer
// casts them.
func parseTimelineQuery(r *http.Request) postgres.ActivityQuery {
	q := postgres.ActivityQuery{
		Page:         1,
		Limit:        timeline.DefaultLimit,
		ActivityType: r.URL.Query().Get("activity_type"),
		DateFrom:     r.URL.Query().Get("date_from"),
		DateTo:       r.URL.Query().Get("date_to"),
		Search:       r.URL.Query().Get("search"),
	}

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			q.Page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 100 {
			q.Limit = n
		}
	}
	return q
}
