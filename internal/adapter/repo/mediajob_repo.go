package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyhall/internal/domain"
)

// MediaJobRepositoryPG implements domain.MediaJobRepository.
type MediaJobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewMediaJobRepository creates a new media-job repository backed by PostgreSQL.
func NewMediaJobRepository(pool *pgxpool.Pool) *MediaJobRepositoryPG {
	return &MediaJobRepositoryPG{pool: pool}
}

const mediaJobColumns = `id, owner_id, kind, source_ref, display_name, locale, status,
COALESCE(extracted_text, ''), COALESCE(extraction_method, ''), generated, COALESCE(error_message, ''),
created_at, updated_at`

// Create inserts a new pending job record.
func (r *MediaJobRepositoryPG) Create(ctx context.Context, job *domain.MediaJob) error {
	query := `
INSERT INTO media_jobs (id, owner_id, kind, source_ref, display_name, locale, status)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.OwnerID,
		job.Kind,
		job.SourceRef,
		job.DisplayName,
		job.Locale,
		job.Status,
	)
	return err
}

// GetByID fetches a job by its identifier.
func (r *MediaJobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.MediaJob, error) {
	query := `SELECT ` + mediaJobColumns + ` FROM media_jobs WHERE id = $1;`
	return scanMediaJob(r.pool.QueryRow(ctx, query, jobID))
}

// ListCompletedByOwner returns the owner's completed jobs that produced
// content, newest first.
func (r *MediaJobRepositoryPG) ListCompletedByOwner(ctx context.Context, ownerID string) ([]domain.MediaJob, error) {
	query := `
SELECT ` + mediaJobColumns + `
FROM media_jobs
WHERE owner_id = $1
  AND status = 'completed'
  AND generated IS NOT NULL
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.MediaJob
	for rows.Next() {
		job, err := scanMediaJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// ClaimNext atomically moves the oldest pending job to processing and returns
// it. Concurrent workers skip rows each other hold, so a job is claimed at
// most once.
func (r *MediaJobRepositoryPG) ClaimNext(ctx context.Context) (*domain.MediaJob, error) {
	query := `
WITH next_job AS (
    SELECT id
    FROM media_jobs
    WHERE status = 'pending'
    ORDER BY created_at ASC
    FOR UPDATE SKIP LOCKED
    LIMIT 1
)
UPDATE media_jobs j
SET status = 'processing',
    updated_at = NOW()
FROM next_job
WHERE j.id = next_job.id
  AND j.status = 'pending'
RETURNING j.id, j.owner_id, j.kind, j.source_ref, j.display_name, j.locale, j.status,
    COALESCE(j.extracted_text, ''), COALESCE(j.extraction_method, ''), j.generated, COALESCE(j.error_message, ''),
    j.created_at, j.updated_at;
`
	return scanMediaJob(r.pool.QueryRow(ctx, query))
}

// SetExtraction records the extracted text and its provenance on a processing
// job.
func (r *MediaJobRepositoryPG) SetExtraction(ctx context.Context, jobID string, text string, method domain.ExtractionMethod) error {
	query := `
UPDATE media_jobs
SET extracted_text = $2,
    extraction_method = $3,
    updated_at = NOW()
WHERE id = $1
  AND status = 'processing';
`
	tag, err := r.pool.Exec(ctx, query, jobID, text, method)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// SetResult persists the generated content and marks the job completed. Only
// a processing job may be completed.
func (r *MediaJobRepositoryPG) SetResult(ctx context.Context, jobID string, content *domain.GeneratedContent) error {
	payload, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode generated content: %w", err)
	}
	query := `
UPDATE media_jobs
SET status = 'completed',
    generated = $2,
    error_message = NULL,
    updated_at = NOW()
WHERE id = $1
  AND status = 'processing';
`
	tag, err := r.pool.Exec(ctx, query, jobID, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// MarkFailed moves a non-terminal job to failed. Extraction fields already
// persisted are kept for diagnostics.
func (r *MediaJobRepositoryPG) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	query := `
UPDATE media_jobs
SET status = 'failed',
    error_message = $2,
    updated_at = NOW()
WHERE id = $1
  AND status IN ('pending', 'processing');
`
	tag, err := r.pool.Exec(ctx, query, jobID, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// UpdateNotes replaces the notes inside the generated payload of a completed
// job.
func (r *MediaJobRepositoryPG) UpdateNotes(ctx context.Context, jobID string, notes string) error {
	query := `
UPDATE media_jobs
SET generated = jsonb_set(generated, '{notes}', to_jsonb($2::text)),
    updated_at = NOW()
WHERE id = $1
  AND status = 'completed'
  AND generated IS NOT NULL;
`
	tag, err := r.pool.Exec(ctx, query, jobID, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMediaJob(row rowScanner) (*domain.MediaJob, error) {
	var (
		job       domain.MediaJob
		generated []byte
	)
	if err := row.Scan(
		&job.ID,
		&job.OwnerID,
		&job.Kind,
		&job.SourceRef,
		&job.DisplayName,
		&job.Locale,
		&job.Status,
		&job.ExtractedText,
		&job.ExtractionMethod,
		&generated,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(generated) > 0 {
		var content domain.GeneratedContent
		if err := json.Unmarshal(generated, &content); err != nil {
			return nil, fmt.Errorf("decode generated content: %w", err)
		}
		job.Generated = &content
	}
	return &job, nil
}
