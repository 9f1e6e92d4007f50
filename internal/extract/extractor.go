package extract

import (
	"context"
	"fmt"
	"mime"
	"strings"

	"studyhall/internal/blob"
	"studyhall/internal/domain"
	"studyhall/internal/infra"
)

// Transcriber converts raw audio/video bytes into text.
type Transcriber interface {
	Transcribe(ctx context.Context, data []byte, mimeType string) (string, error)
}

// AudioFetcher validates remote video URLs and downloads their audio track.
type AudioFetcher interface {
	ValidateURL(url string) bool
	FetchAudio(ctx context.Context, url string) (data []byte, mimeType string, err error)
}

// Result is the outcome of one extraction: the plain text and how it was
// obtained.
type Result struct {
	Text   string
	Method domain.ExtractionMethod
}

// Extractor turns a media job's source into plain text. It is strictly
// one-shot per invocation; every failure surfaces to the orchestrator.
type Extractor struct {
	blobs       blob.Store
	transcriber Transcriber
	videos      AudioFetcher
	logger      infra.Logger
}

// NewExtractor wires an Extractor from its collaborators.
func NewExtractor(blobs blob.Store, transcriber Transcriber, videos AudioFetcher, logger infra.Logger) *Extractor {
	return &Extractor{blobs: blobs, transcriber: transcriber, videos: videos, logger: logger}
}

// Extract produces (text, method) for the given job.
func (e *Extractor) Extract(ctx context.Context, job *domain.MediaJob) (Result, error) {
	switch job.Kind {
	case domain.JobKindFile:
		return e.extractFile(ctx, job)
	case domain.JobKindRemoteVideo:
		return e.extractRemoteVideo(ctx, job)
	default:
		return Result{}, fmt.Errorf("extract: unsupported job kind %q", job.Kind)
	}
}

func (e *Extractor) extractFile(ctx context.Context, job *domain.MediaJob) (Result, error) {
	data, contentType, err := e.blobs.Fetch(ctx, job.SourceRef)
	if err != nil {
		return Result{}, fmt.Errorf("extract: fetch source: %w", err)
	}

	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	switch {
	case mediaType == "application/pdf":
		text, err := pdfText(data)
		if err != nil {
			return Result{}, err
		}
		return Result{Text: text, Method: domain.ExtractionDocumentParse}, nil

	case strings.HasPrefix(mediaType, "audio/"):
		text, err := e.transcriber.Transcribe(ctx, data, mediaType)
		if err != nil {
			return Result{}, fmt.Errorf("extract: transcribe audio: %w", err)
		}
		return Result{Text: text, Method: domain.ExtractionAudioTranscription}, nil

	case strings.HasPrefix(mediaType, "video/"):
		text, err := e.transcriber.Transcribe(ctx, data, mediaType)
		if err != nil {
			return Result{}, fmt.Errorf("extract: transcribe video: %w", err)
		}
		return Result{Text: text, Method: domain.ExtractionVideoTranscription}, nil

	default:
		// Unknown media degrades instead of failing; the job can still
		// complete with placeholder notes.
		e.logger.Warn().
			Str("job_id", job.ID).
			Str("content_type", mediaType).
			Msg("extract: unsupported file type")
		return Result{
			Text:   UnsupportedTypeText(mediaType),
			Method: domain.ExtractionUnsupported,
		}, nil
	}
}

func (e *Extractor) extractRemoteVideo(ctx context.Context, job *domain.MediaJob) (Result, error) {
	// Validation precedes any network fetch.
	if !e.videos.ValidateURL(job.SourceRef) {
		return Result{}, fmt.Errorf("extract: %w: %s", domain.ErrInvalidSource, job.SourceRef)
	}
	data, mimeType, err := e.videos.FetchAudio(ctx, job.SourceRef)
	if err != nil {
		return Result{}, fmt.Errorf("extract: fetch audio stream: %w", err)
	}
	text, err := e.transcriber.Transcribe(ctx, data, mimeType)
	if err != nil {
		return Result{}, fmt.Errorf("extract: transcribe video: %w", err)
	}
	return Result{Text: text, Method: domain.ExtractionVideoTranscription}, nil
}

// UnsupportedTypeText is the placeholder stored when a file's content type has
// no extraction path.
func UnsupportedTypeText(mediaType string) string {
	return fmt.Sprintf("Could not extract text from file type: %s.", mediaType)
}
