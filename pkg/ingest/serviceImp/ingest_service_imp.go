package serviceImp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"ragchat/entities"
	"ragchat/pkg/chunker"
	"ragchat/pkg/embedder"
	"ragchat/pkg/extract"
	"ragchat/pkg/ingest/repository"
	"ragchat/pkg/ingest/service"
	"ragchat/pkg/registry"
	"ragchat/pkg/vectorindex"
)

// Config holds the ingestion pipeline's runtime parameters.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	Workers      int
	QueueDepth   int
	MaxFiles     int
	MaxFileBytes int64
	// FileTimeout bounds the external calls for one file end to end.
	FileTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.ChunkSize == 0 {
		c.ChunkSize = chunker.DefaultChunkSize
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = chunker.DefaultOverlap
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = 32
	}
	if c.MaxFiles <= 0 {
		c.MaxFiles = 15
	}
	if c.MaxFileBytes <= 0 {
		c.MaxFileBytes = 10 << 20
	}
	if c.FileTimeout <= 0 {
		c.FileTimeout = 2 * time.Minute
	}
}

type task struct {
	jobID string
	files []entities.UploadedFile
}

// Svc runs ingestion jobs on a bounded worker pool. Submission never
// blocks on processing; job state flows through the shared registry so
// polls observe each file's completion immediately.
type Svc struct {
	repo      repository.IngestRepository
	extractor extract.Extractor
	emb       embedder.Embedder
	idx       vectorindex.Index
	jobs      *registry.Store[entities.Job]
	cfg       Config
	queue     chan task
}

func New(
	repo repository.IngestRepository,
	extractor extract.Extractor,
	emb embedder.Embedder,
	idx vectorindex.Index,
	jobs *registry.Store[entities.Job],
	cfg Config,
) *Svc {
	cfg.applyDefaults()
	s := &Svc{
		repo:      repo,
		extractor: extractor,
		emb:       emb,
		idx:       idx,
		jobs:      jobs,
		cfg:       cfg,
		queue:     make(chan task, cfg.QueueDepth),
	}
	for i := 0; i < cfg.Workers; i++ {
		go s.worker()
	}
	return s
}

var _ service.IngestService = (*Svc)(nil)

// Close stops the worker pool once queued jobs drain.
func (s *Svc) Close() { close(s.queue) }

func (s *Svc) Submit(_ context.Context, files []entities.IncomingFile) (string, error) {
	if err := s.validate(files); err != nil {
		return "", err
	}

	jobID := uuid.NewString()
	stored := make([]entities.UploadedFile, 0, len(files))
	for _, f := range files {
		rec, err := s.repo.SaveFile(jobID, f)
		if err != nil {
			return "", fmt.Errorf("store %s: %w", f.Filename, err)
		}
		stored = append(stored, *rec)
	}

	s.jobs.Put(jobID, entities.Job{
		JobID:      jobID,
		Status:     entities.JobPending,
		Message:    "Files uploaded, processing started",
		TotalFiles: len(files),
		CreatedAt:  time.Now(),
	})
	s.queue <- task{jobID: jobID, files: stored}
	return jobID, nil
}

func (s *Svc) validate(files []entities.IncomingFile) error {
	if len(files) == 0 {
		return &entities.ValidationError{Reason: "no files provided"}
	}
	if len(files) > s.cfg.MaxFiles {
		return &entities.ValidationError{Reason: fmt.Sprintf("maximum %d files allowed", s.cfg.MaxFiles)}
	}
	for _, f := range files {
		if !strings.HasSuffix(strings.ToLower(f.Filename), ".pdf") {
			return &entities.ValidationError{Reason: "only PDF files allowed: " + f.Filename}
		}
		if int64(len(f.Content)) > s.cfg.MaxFileBytes {
			return &entities.ValidationError{Reason: "file too large: " + f.Filename}
		}
		if !bytes.HasPrefix(f.Content, []byte("%PDF")) {
			return &entities.ValidationError{Reason: "not a PDF document: " + f.Filename}
		}
	}
	return nil
}

func (s *Svc) Status(jobID string) (*entities.Job, error) {
	job, ok := s.jobs.Get(jobID)
	if !ok {
		return nil, &entities.NotFoundError{Kind: "job", ID: jobID}
	}
	return &job, nil
}

func (s *Svc) Delete(ctx context.Context, jobID string) error {
	if !s.jobs.Exists(jobID) {
		return &entities.NotFoundError{Kind: "job", ID: jobID}
	}
	if err := s.idx.DeleteNamespace(ctx, jobID); err != nil {
		return err
	}
	if err := s.repo.DeleteJob(jobID); err != nil {
		return err
	}
	s.jobs.Delete(jobID)
	return nil
}

func (s *Svc) ActiveJobs() int { return s.jobs.Len() }

func (s *Svc) worker() {
	for t := range s.queue {
		s.process(t)
	}
}

func (s *Svc) process(t task) {
	s.jobs.Update(t.jobID, func(j *entities.Job) {
		j.Status = entities.JobProcessing
		j.Message = "Extracting text from PDFs"
	})

	totalChunks := 0
	for i, f := range t.files {
		n, err := s.processFile(t.jobID, f)
		if err != nil {
			s.fail(t.jobID, f.Filename, err)
			return
		}
		totalChunks += n
		done := i + 1
		s.jobs.Update(t.jobID, func(j *entities.Job) {
			j.FilesProcessed = done
			j.Progress = done * 100 / len(t.files)
			j.Message = "Processed " + f.Filename
		})
	}

	filesJSON, _ := json.Marshal(t.files)
	meta := &entities.JobMetadata{
		JobID:       t.jobID,
		ChunkCount:  totalChunks,
		FilesJSON:   string(filesJSON),
		ProcessedAt: time.Now(),
	}
	if err := s.repo.SaveMetadata(meta); err != nil {
		// Diagnostics only; the index is already complete.
		log.Printf("[ingest] job %s: save metadata: %v", t.jobID, err)
	}

	s.jobs.Update(t.jobID, func(j *entities.Job) {
		j.Status = entities.JobCompleted
		j.Progress = 100
		j.Message = "Processing completed successfully"
	})
	log.Printf("[ingest] job %s completed: %d files, %d chunks", t.jobID, len(t.files), totalChunks)
}

func (s *Svc) processFile(jobID string, f entities.UploadedFile) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.FileTimeout)
	defer cancel()

	text, err := s.extractor.Text(ctx, f.Path)
	if err != nil {
		return 0, err
	}
	text = chunker.CleanText(text)

	chunks, err := chunker.Chunk(jobID, f.Filename, text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	vectors, err := s.emb.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, err
	}

	embedded := make([]entities.EmbeddedChunk, len(chunks))
	for i := range chunks {
		embedded[i] = entities.EmbeddedChunk{Chunk: chunks[i], Vector: vectors[i]}
	}
	if err := s.idx.Upsert(ctx, jobID, embedded); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func (s *Svc) fail(jobID, filename string, err error) {
	perr := &entities.ProcessingError{Filename: filename, Err: err}
	s.jobs.Update(jobID, func(j *entities.Job) {
		j.Status = entities.JobFailed
		j.ErrorMessage = perr.Error()
		j.Message = "Error: " + perr.Error()
	})
	log.Printf("[ingest] job %s failed: %v", jobID, perr)
}
