package domain

import "time"

// Default values applied when an import row carries no explicit value.
const (
	DefaultLeadSource      = "website"
	DefaultLeadCourseLevel = "bachelor's_degree"
)

// Lead represents a single CRM lead. Email is the natural key within an
// organization; CreateBulk dedupes on it.
type Lead struct {
	ID                string    `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Email             string    `json:"email" db:"email"`
	ContactNumber     string    `json:"contact_number" db:"contact_number"`
	Source            string    `json:"source" db:"source"`
	CountryOfInterest string    `json:"country_of_interest" db:"country_of_interest"`
	CourseLevel       string    `json:"course_level" db:"course_level"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// BulkResult reports what a bulk create actually did.
type BulkResult struct {
	Created         int    `json:"created"`
	Updated         int    `json:"updated"`
	SkippedExisting int    `json:"skipped_existing"`
	Failed          int    `json:"failed"`
	Message         string `json:"message"`
}
