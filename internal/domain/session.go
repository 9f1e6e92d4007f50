package domain

import "time"

// StudySession persists per-user study artifacts for one source document:
// the extracted text, its detected categories, and any flashcards the user
// has generated so far.
type StudySession struct {
	ID             string
	OwnerID        string
	FileName       string
	SourceText     string
	Categories     []string
	LastDifficulty string
	Flashcards     []Flashcard
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DefaultDifficulty is applied when a session is created without one.
const DefaultDifficulty = "medium"
