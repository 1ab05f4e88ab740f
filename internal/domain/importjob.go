package domain

import "time"

// ImportJobStatus enumerates the states of a drop-folder import.
type ImportJobStatus string

const (
	ImportPending    ImportJobStatus = "pending"
	ImportProcessing ImportJobStatus = "processing"
	ImportCompleted  ImportJobStatus = "completed"
	ImportFailed     ImportJobStatus = "failed"
)

// ImportJob is one discovered drop-folder file and its processing
// outcome. OriginalKey is unique: a file is imported at most once.
type ImportJob struct {
	ID           int64           `json:"id" db:"id"`
	OriginalKey  string          `json:"original_key" db:"original_key"`
	RenamedKey   string          `json:"renamed_key,omitempty" db:"renamed_key"`
	Status       ImportJobStatus `json:"status" db:"status"`
	FileSize     int64           `json:"file_size" db:"file_size"`
	RecordCount  int             `json:"record_count" db:"record_count"`
	ErrorCount   int             `json:"error_count" db:"error_count"`
	ErrorMessage string          `json:"error_message,omitempty" db:"error_message"`
	RetryCount   int             `json:"retry_count" db:"retry_count"`
	StartedAt    *time.Time      `json:"started_at,omitempty" db:"started_at"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}
