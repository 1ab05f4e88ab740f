package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skillang/leadg-crm/internal/domain"
)

// ActivityQuery filters one timeline page request.
type ActivityQuery struct {
	Page         int
	Limit        int
	ActivityType string
	DateFrom     string // inclusive, YYYY-MM-DD or RFC3339
	DateTo       string // inclusive
	Search       string // matched against title and description
}

// FacetCount is one distinct activity type and its occurrence count for
// a lead. Display decoration happens in the timeline package.
type FacetCount struct {
	Value string
	Count int
}

// ActivityRepo implements activity persistence against PostgreSQL.
type ActivityRepo struct{ db *sql.DB }

// NewActivityRepo creates a Postgres-backed activity repository.
func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

// Timeline returns one filtered, paginated page of a lead's activities,
// newest first. Pagination metadata is computed from the filtered count.
func (r *ActivityRepo) Timeline(ctx context.Context, leadID string, q ActivityQuery) (*domain.TimelinePage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"lead_id = $1"}
	args := []interface{}{leadID}
	idx := 2

	if q.ActivityType != "" {
		where = append(where, fmt.Sprintf("activity_type = $%d", idx))
		args = append(args, q.ActivityType)
		idx++
	}
	if q.DateFrom != "" {
		where = append(where, fmt.Sprintf("created_at >= $%d::timestamptz", idx))
		args = append(args, q.DateFrom)
		idx++
	}
	if q.DateTo != "" {
		where = append(where, fmt.Sprintf("created_at < $%d::timestamptz + INTERVAL '1 day'", idx))
		args = append(args, q.DateTo)
		idx++
	}
	if q.Search != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", idx, idx))
		args = append(args, "%"+q.Search+"%")
		idx++
	}

	whereSQL := strings.Join(where, " AND ")

	var total int
	countQ := `SELECT COUNT(*) FROM lead_activities WHERE ` + whereSQL
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count activities: %w", err)
	}

	listQ := `
		SELECT id, lead_id, activity_type, title, COALESCE(description,''),
		       COALESCE(performed_by_name,''), metadata, created_at
		FROM lead_activities
		WHERE ` + whereSQL +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, listQ, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	activities := []domain.Activity{}
	for rows.Next() {
		var a domain.Activity
		var metaBytes []byte
		if err := rows.Scan(&a.ID, &a.LeadID, &a.ActivityType, &a.Title,
			&a.Description, &a.PerformedByName, &metaBytes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if len(metaBytes) > 0 {
			_ = json.Unmarshal(metaBytes, &a.Metadata)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	return &domain.TimelinePage{
		Activities: activities,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

// Facets returns the distinct activity types on a lead with counts,
// most frequent first.
func (r *ActivityRepo) Facets(ctx context.Context, leadID string) ([]FacetCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT activity_type, COUNT(*)
		FROM lead_activities
		WHERE lead_id = $1
		GROUP BY activity_type
		ORDER BY COUNT(*) DESC, activity_type ASC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("facets: %w", err)
	}
	defer rows.Close()

	var facets []FacetCount
	for rows.Next() {
		var f FacetCount
		if err := rows.Scan(&f.Value, &f.Count); err != nil {
			return nil, fmt.Errorf("scan facet: %w", err)
		}
		facets = append(facets, f)
	}
	return facets, rows.Err()
}

// Record inserts a single activity.
func (r *ActivityRepo) Record(ctx context.Context, a domain.Activity) error {
	return r.RecordBatch(ctx, []domain.Activity{a})
}

const recordBatchSize = 500

// RecordBatch inserts activities in multi-row batches.
func (r *ActivityRepo) RecordBatch(ctx context.Context, activities []domain.Activity) error {
	if len(activities) == 0 {
		return nil
	}

	for i := 0; i < len(activities); i += recordBatchSize {
		end := i + recordBatchSize
		if end > len(activities) {
			end = len(activities)
		}
		if err := r.insertBatch(ctx, activities[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *ActivityRepo) insertBatch(ctx context.Context, batch []domain.Activity) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO lead_activities (id, lead_id, activity_type, title, description, performed_by_name, metadata, created_at) VALUES `)

	args := make([]interface{}, 0, len(batch)*7)
	for i, a := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 7
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, NOW())",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)

		id := a.ID
		if id == "" {
			id = uuid.New().String()
		}
		metaJSON, err := json.Marshal(a.Metadata)
		if err != nil || a.Metadata == nil {
			metaJSON = []byte("{}")
		}
		args = append(args, id, a.LeadID, a.ActivityType, a.Title, a.Description, a.PerformedByName, metaJSON)
	}

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert activities: %w", err)
	}
	return nil
}
