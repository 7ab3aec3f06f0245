package service

import (
	"context"

	"ragchat/entities"
)

// IngestService accepts uploaded file sets and tracks their ingestion
// into the vector index as asynchronous jobs.
type IngestService interface {
	// Submit validates the batch, stores the files and enqueues an
	// ingestion job. It returns the job id immediately; processing
	// happens in the background.
	Submit(ctx context.Context, files []entities.IncomingFile) (string, error)

	// Status returns a snapshot of the job.
	Status(jobID string) (*entities.Job, error)

	// Delete removes the job, its indexed vectors and its stored files.
	Delete(ctx context.Context, jobID string) error

	// ActiveJobs reports how many jobs the registry currently holds.
	ActiveJobs() int
}
