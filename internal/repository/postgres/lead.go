package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/skillang/leadg-crm/internal/domain"
	"github.com/skillang/leadg-crm/internal/pkg/logger"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// LeadRepo implements lead persistence against PostgreSQL.
type LeadRepo struct {
	db         *sql.DB
	activities *ActivityRepo
}

// NewLeadRepo creates a Postgres-backed lead repository. The activity
// repo may be nil when callers don't want creation activities recorded.
func NewLeadRepo(db *sql.DB, activities *ActivityRepo) *LeadRepo {
	return &LeadRepo{db: db, activities: activities}
}

// CreateBulk inserts one batch of leads in a single transaction.
// When forceCreate is false, emails already present are skipped and
// counted; when true they are upserted. Each created lead gets a
// lead_created activity (bulk_import source) after commit.
func (r *LeadRepo) CreateBulk(ctx context.Context, leads []domain.Lead, forceCreate bool) (domain.BulkResult, error) {
	var result domain.BulkResult
	if len(leads) == 0 {
		result.Message = "no leads to create"
		return result, nil
	}

	// Known emails either get skipped (default) or counted as updates
	// (force), so the pre-check runs in both modes.
	existing := make(map[string]bool)
	emails := make([]string, len(leads))
	for i, l := range leads {
		emails[i] = strings.ToLower(l.Email)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT LOWER(email) FROM leads WHERE LOWER(email) = ANY($1)`,
		pq.Array(emails))
	if err != nil {
		return result, fmt.Errorf("check existing emails: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err == nil {
			existing[e] = true
		}
	}
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("check existing emails: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin bulk create: %w", err)
	}
	defer tx.Rollback()

	var created []domain.Lead
	for _, lead := range leads {
		known := existing[strings.ToLower(lead.Email)]
		if known && !forceCreate {
			result.SkippedExisting++
			continue
		}

		lead.ID = uuid.New().String()

		// A failed statement aborts the whole transaction in Postgres,
		// so each insert runs inside its own savepoint.
		if _, err = tx.ExecContext(ctx, "SAVEPOINT bulk_sp"); err != nil {
			result.Failed++
			continue
		}

		var res sql.Result
		if forceCreate {
			res, err = tx.ExecContext(ctx,
				`INSERT INTO leads
					(id, name, email, contact_number, source, country_of_interest, course_level, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
				ON CONFLICT (LOWER(email)) DO UPDATE SET
					name = COALESCE(NULLIF(EXCLUDED.name, ''), leads.name),
					contact_number = COALESCE(NULLIF(EXCLUDED.contact_number, ''), leads.contact_number),
					country_of_interest = COALESCE(NULLIF(EXCLUDED.country_of_interest, ''), leads.country_of_interest),
					course_level = COALESCE(NULLIF(EXCLUDED.course_level, ''), leads.course_level),
					updated_at = NOW()`,
				lead.ID, lead.Name, lead.Email, lead.ContactNumber,
				lead.Source, lead.CountryOfInterest, lead.CourseLevel)
		} else {
			res, err = tx.ExecContext(ctx,
				`INSERT INTO leads
					(id, name, email, contact_number, source, country_of_interest, course_level, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
				ON CONFLICT (LOWER(email)) DO NOTHING`,
				lead.ID, lead.Name, lead.Email, lead.ContactNumber,
				lead.Source, lead.CountryOfInterest, lead.CourseLevel)
		}
		if err != nil {
			tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT bulk_sp")
			result.Failed++
			continue
		}
		tx.ExecContext(ctx, "RELEASE SAVEPOINT bulk_sp")

		if n, _ := res.RowsAffected(); n > 0 {
			if known {
				// Upserted over an existing row; no creation activity.
				result.Updated++
			} else {
				result.Created++
				created = append(created, lead)
			}
		} else {
			// ON CONFLICT DO NOTHING hit a race with a concurrent insert.
			result.SkippedExisting++
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.BulkResult{}, fmt.Errorf("commit bulk create: %w", err)
	}

	result.Message = fmt.Sprintf("successfully created %d leads", result.Created)
	if result.Updated > 0 {
		result.Message = fmt.Sprintf("successfully created %d and updated %d leads",
			result.Created, result.Updated)
	}

	if r.activities != nil && len(created) > 0 {
		activities := make([]domain.Activity, len(created))
		for i, lead := range created {
			activities[i] = domain.Activity{
				LeadID:          lead.ID,
				ActivityType:    domain.ActivityLeadCreated,
				Title:           "Lead created",
				Description:     "Created via bulk import",
				PerformedByName: "Bulk Import",
				Metadata: map[string]any{
					"source": lead.Source,
					"status": "new",
				},
			}
		}
		if err := r.activities.RecordBatch(ctx, activities); err != nil {
			// Activity history is best-effort relative to the leads themselves.
			logger.Warn("record bulk-create activities failed", "error", err)
		}
	}

	return result, nil
}

// GetByEmail fetches one lead by email, case-insensitively.
func (r *LeadRepo) GetByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	l := &domain.Lead{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, contact_number, source, country_of_interest, course_level, created_at, updated_at
		FROM leads
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(
		&l.ID, &l.Name, &l.Email, &l.ContactNumber,
		&l.Source, &l.CountryOfInterest, &l.CourseLevel,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lead by email: %w", err)
	}
	return l, nil
}

// Get fetches one lead by id.
func (r *LeadRepo) Get(ctx context.Context, id string) (*domain.Lead, error) {
	l := &domain.Lead{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, contact_number, source, country_of_interest, course_level, created_at, updated_at
		FROM leads
		WHERE id = $1
	`, id).Scan(
		&l.ID, &l.Name, &l.Email, &l.ContactNumber,
		&l.Source, &l.CountryOfInterest, &l.CourseLevel,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return l, nil
}
