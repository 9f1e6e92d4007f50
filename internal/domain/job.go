package domain

import "time"

// JobKind enumerates supported media-job input kinds.
type JobKind string

const (
	JobKindFile        JobKind = "file"
	JobKindRemoteVideo JobKind = "remote_video"
)

// Valid reports whether the kind is one of the supported enum values.
func (k JobKind) Valid() bool {
	switch k {
	case JobKindFile, JobKindRemoteVideo:
		return true
	default:
		return false
	}
}

// JobStatus enumerates media-job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions may occur.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo enforces the forward-only job state machine:
// pending -> processing -> completed|failed.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	if s == next {
		return false
	}
	switch s {
	case JobStatusPending:
		return next == JobStatusProcessing
	case JobStatusProcessing:
		return next == JobStatusCompleted || next == JobStatusFailed
	default:
		return false
	}
}

// ExtractionMethod records the provenance of a job's extracted text.
type ExtractionMethod string

const (
	ExtractionDocumentParse      ExtractionMethod = "document-parse"
	ExtractionAudioTranscription ExtractionMethod = "audio-transcription"
	ExtractionVideoTranscription ExtractionMethod = "video-transcription"
	ExtractionUnsupported        ExtractionMethod = "unsupported"
)

// QuizQuestion is one multiple-choice question derived from extracted text.
type QuizQuestion struct {
	QuestionText       string   `json:"question_text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
	Explanation        string   `json:"explanation"`
}

// Flashcard is one front/back study card.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// GeneratedContent bundles the study artifacts derived from a job. Each part
// is independently optional until populated.
type GeneratedContent struct {
	Notes         string         `json:"notes"`
	QuizQuestions []QuizQuestion `json:"quiz_questions"`
	Flashcards    []Flashcard    `json:"flashcards"`
}

// Empty reports whether no artifact has been produced at all.
func (g GeneratedContent) Empty() bool {
	return g.Notes == "" && len(g.QuizQuestions) == 0 && len(g.Flashcards) == 0
}

// MediaJob encapsulates the lifecycle of one media-ingestion request: an
// uploaded file or a remote video URL processed into extracted text and
// synthesized study notes.
type MediaJob struct {
	ID               string
	OwnerID          string
	Kind             JobKind
	SourceRef        string
	DisplayName      string
	// Locale is the BCP 47 language the owner was served in when the job
	// was created; generated notes follow it.
	Locale           string
	Status           JobStatus
	ExtractedText    string
	ExtractionMethod ExtractionMethod
	Generated        *GeneratedContent
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Owned reports whether the job belongs to the given user.
func (j *MediaJob) Owned(userID string) bool {
	return j != nil && userID != "" && j.OwnerID == userID
}
