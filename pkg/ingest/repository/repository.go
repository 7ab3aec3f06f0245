package repository

import "ragchat/entities"

// IngestRepository persists uploaded file bytes and per-job metadata.
// The metadata is diagnostic only; chat depends solely on the vector
// index.
type IngestRepository interface {
	// SaveFile writes the file bytes to upload storage and records it.
	// The returned record carries the on-disk path.
	SaveFile(jobID string, file entities.IncomingFile) (*entities.UploadedFile, error)

	FilesByJob(jobID string) ([]entities.UploadedFile, error)

	// SaveMetadata records the completion summary for a job.
	SaveMetadata(m *entities.JobMetadata) error

	// DeleteJob removes the job's stored files and records.
	DeleteJob(jobID string) error
}
