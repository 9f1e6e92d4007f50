package pipeline

import (
	"context"
	"fmt"

	"studyhall/internal/blob"
	"studyhall/internal/domain"
	"studyhall/internal/extract"
	"studyhall/internal/infra"
)

// TextExtractor turns a claimed job's source into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, job *domain.MediaJob) (extract.Result, error)
}

// NotesSynthesizer turns extracted text into study notes in the given
// language.
type NotesSynthesizer interface {
	Synthesize(ctx context.Context, text, locale string) (string, error)
}

// Runner drives one claimed job through extraction, note synthesis, and
// persistence. Jobs arrive already in the processing state; the runner moves
// each to exactly one terminal state.
type Runner struct {
	jobs      domain.MediaJobRepository
	extractor TextExtractor
	synth     NotesSynthesizer
	blobs     blob.Store
	logger    infra.Logger
}

// NewRunner wires a Runner from its collaborators.
func NewRunner(jobs domain.MediaJobRepository, extractor TextExtractor, synth NotesSynthesizer, blobs blob.Store, logger infra.Logger) *Runner {
	return &Runner{jobs: jobs, extractor: extractor, synth: synth, blobs: blobs, logger: logger}
}

// Process runs the pipeline for one job. The returned error reflects what was
// also recorded on the job; callers log it, they do not retry.
func (r *Runner) Process(ctx context.Context, job *domain.MediaJob) error {
	result, err := r.extractor.Extract(ctx, job)
	if err != nil {
		return r.fail(ctx, job.ID, fmt.Errorf("extract: %w", err))
	}

	// Persist extraction before synthesis so a later failure still leaves
	// the text available for diagnostics and reprocessing.
	if err := r.jobs.SetExtraction(ctx, job.ID, result.Text, result.Method); err != nil {
		return r.fail(ctx, job.ID, fmt.Errorf("persist extraction: %w", err))
	}

	text := result.Text
	if result.Method == domain.ExtractionUnsupported {
		// The stored text is the unsupported-type placeholder; there is
		// nothing to synthesize from.
		text = ""
	}

	notes, err := r.synth.Synthesize(ctx, text, job.Locale)
	if err != nil {
		return r.fail(ctx, job.ID, fmt.Errorf("synthesize notes: %w", err))
	}

	content := &domain.GeneratedContent{Notes: notes}
	if err := r.jobs.SetResult(ctx, job.ID, content); err != nil {
		return r.fail(ctx, job.ID, fmt.Errorf("persist result: %w", err))
	}

	r.cleanupSource(ctx, job)

	r.logger.Info().
		Str("job_id", job.ID).
		Str("method", string(result.Method)).
		Msg("pipeline: job completed")
	return nil
}

// cleanupSource deletes the uploaded blob of a completed file job. Failure is
// logged and swallowed: the job outcome never depends on cleanup.
func (r *Runner) cleanupSource(ctx context.Context, job *domain.MediaJob) {
	if job.Kind != domain.JobKindFile {
		return
	}
	if err := r.blobs.Delete(ctx, job.SourceRef); err != nil {
		r.logger.Warn().Err(err).
			Str("job_id", job.ID).
			Msg("pipeline: source blob cleanup failed")
	}
}

func (r *Runner) fail(ctx context.Context, jobID string, cause error) error {
	if err := r.jobs.MarkFailed(ctx, jobID, cause.Error()); err != nil {
		r.logger.Error().Err(err).
			Str("job_id", jobID).
			Msg("pipeline: mark failed errored")
	}
	return cause
}
