package domain

import "context"

// MediaJobRepository defines persistence for media jobs.
type MediaJobRepository interface {
	Create(ctx context.Context, job *MediaJob) error
	GetByID(ctx context.Context, jobID string) (*MediaJob, error)
	// ListCompletedByOwner returns the owner's completed jobs that carry
	// non-empty generated content, newest first.
	ListCompletedByOwner(ctx context.Context, ownerID string) ([]MediaJob, error)
	// ClaimNext atomically moves the oldest pending job to processing and
	// returns it. ErrNotFound means no job is available.
	ClaimNext(ctx context.Context) (*MediaJob, error)
	// SetExtraction records the extracted text and its provenance while the
	// job is still processing.
	SetExtraction(ctx context.Context, jobID string, text string, method ExtractionMethod) error
	// SetResult persists the generated content and marks the job completed.
	// Only a processing job may be completed.
	SetResult(ctx context.Context, jobID string, content *GeneratedContent) error
	// MarkFailed moves a non-terminal job to failed, keeping any extraction
	// fields already persisted for diagnostics.
	MarkFailed(ctx context.Context, jobID string, errMsg string) error
	// UpdateNotes replaces the notes of a completed job.
	UpdateNotes(ctx context.Context, jobID string, notes string) error
}

// SessionRepository defines persistence for study sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *StudySession) error
	GetByID(ctx context.Context, sessionID string) (*StudySession, error)
	ListByOwner(ctx context.Context, ownerID string) ([]StudySession, error)
	Update(ctx context.Context, session *StudySession) error
	Delete(ctx context.Context, sessionID string) error
}
