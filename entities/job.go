package entities

import "time"

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool { return s == JobCompleted || s == JobFailed }

// Job tracks one ingestion run over an uploaded file set. Mutated only
// by the ingestion pipeline; read by status polling and chat gating.
type Job struct {
	JobID          string    `json:"job_id"`
	Status         JobStatus `json:"status"`
	Progress       int       `json:"progress"`
	Message        string    `json:"message"`
	FilesProcessed int       `json:"files_processed"`
	TotalFiles     int       `json:"total_files"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// IncomingFile is an upload as handed over by the transport layer.
type IncomingFile struct {
	Filename string
	Content  []byte
}

// UploadedFile is the persisted record of a stored upload.
type UploadedFile struct {
	FileID     uint   `gorm:"primaryKey" json:"file_id"`
	JobID      string `gorm:"index" json:"job_id"`
	Filename   string `json:"filename"`
	Path       string `json:"path"`
	SizeBytes  int64  `json:"size"`
	UploadedAt time.Time
}

// JobMetadata is the diagnostics record written once ingestion
// completes. Chat correctness does not depend on it.
type JobMetadata struct {
	JobID       string `gorm:"primaryKey" json:"job_id"`
	ChunkCount  int    `json:"chunks_count"`
	FilesJSON   string `json:"-"`
	ProcessedAt time.Time
}
