package repositoryImp

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"ragchat/entities"
	"ragchat/pkg/ingest/repository"
)

type repo struct {
	db        *gorm.DB
	uploadDir string
}

func New(db *gorm.DB, uploadDir string) repository.IngestRepository {
	return &repo{db: db, uploadDir: uploadDir}
}

func (r *repo) SaveFile(jobID string, file entities.IncomingFile) (*entities.UploadedFile, error) {
	if err := os.MkdirAll(r.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(r.uploadDir, fmt.Sprintf("%s_%s", jobID, file.Filename))
	if err := os.WriteFile(path, file.Content, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}
	rec := &entities.UploadedFile{
		JobID:      jobID,
		Filename:   file.Filename,
		Path:       path,
		SizeBytes:  int64(len(file.Content)),
		UploadedAt: time.Now(),
	}
	if err := r.db.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("record upload: %w", err)
	}
	return rec, nil
}

func (r *repo) FilesByJob(jobID string) ([]entities.UploadedFile, error) {
	var files []entities.UploadedFile
	err := r.db.Where("job_id = ?", jobID).Order("file_id").Find(&files).Error
	return files, err
}

func (r *repo) SaveMetadata(m *entities.JobMetadata) error {
	return r.db.Save(m).Error
}

func (r *repo) DeleteJob(jobID string) error {
	files, err := r.FilesByJob(jobID)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", f.Path, err)
		}
	}
	if err := r.db.Where("job_id = ?", jobID).Delete(&entities.UploadedFile{}).Error; err != nil {
		return err
	}
	return r.db.Where("job_id = ?", jobID).Delete(&entities.JobMetadata{}).Error
}
