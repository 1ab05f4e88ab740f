package domain

import "time"

// Well-known activity type tags. The set is open: the backend may emit
// tags not listed here and the timeline must render them anyway.
const (
	ActivityLeadCreated      = "lead_created"
	ActivityBulkImport       = "bulk_import"
	ActivityStageChange      = "stage_change"
	ActivityStatusChange     = "status_change"
	ActivityCallLogged       = "call_logged"
	ActivityEmailSent        = "email_sent"
	ActivityWhatsAppSent     = "whatsapp_sent"
	ActivityNoteAdded        = "note_added"
	ActivityTaskCreated      = "task_created"
	ActivityTaskCompleted    = "task_completed"
	ActivityDocumentUploaded = "document_uploaded"
	ActivityLeadReassigned   = "lead_reassigned"
)

// Activity is one timeline event on a lead. ActivityType is an open
// string tag, not an enum. Activities are immutable once written.
type Activity struct {
	ID              string         `json:"id" db:"id"`
	LeadID          string         `json:"lead_id" db:"lead_id"`
	ActivityType    string         `json:"activity_type" db:"activity_type"`
	Title           string         `json:"title" db:"title"`
	Description     string         `json:"description" db:"description"`
	PerformedByName string         `json:"performed_by_name" db:"performed_by_name"`
	Metadata        map[string]any `json:"metadata" db:"metadata"`
	CreatedAt       time.Time      `json:"timestamp" db:"created_at"`
}

// ActivityFacet is one distinct activity type on a lead, annotated for
// the filter UI. Count is display-only.
type ActivityFacet struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// TimelinePage is one page of a lead's timeline.
type TimelinePage struct {
	Activities []Activity `json:"activities"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	HasNext    bool       `json:"has_next"`
	HasPrev    bool       `json:"has_prev"`
}
