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

// SessionRepositoryPG implements domain.SessionRepository.
type SessionRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new study-session repository backed by
// PostgreSQL.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepositoryPG {
	return &SessionRepositoryPG{pool: pool}
}

// Create inserts a new session record.
func (r *SessionRepositoryPG) Create(ctx context.Context, session *domain.StudySession) error {
	flashcards, err := json.Marshal(session.Flashcards)
	if err != nil {
		return fmt.Errorf("encode flashcards: %w", err)
	}
	query := `
INSERT INTO study_sessions (id, owner_id, file_name, source_text, categories, last_difficulty, flashcards)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err = r.pool.Exec(ctx, query,
		session.ID,
		session.OwnerID,
		session.FileName,
		session.SourceText,
		session.Categories,
		session.LastDifficulty,
		flashcards,
	)
	return err
}

// GetByID fetches a session by its identifier.
func (r *SessionRepositoryPG) GetByID(ctx context.Context, sessionID string) (*domain.StudySession, error) {
	query := `
SELECT id, owner_id, file_name, source_text, categories, last_difficulty, flashcards, created_at, updated_at
FROM study_sessions
WHERE id = $1;
`
	return scanSession(r.pool.QueryRow(ctx, query, sessionID))
}

// ListByOwner returns the owner's sessions, newest first.
func (r *SessionRepositoryPG) ListByOwner(ctx context.Context, ownerID string) ([]domain.StudySession, error) {
	query := `
SELECT id, owner_id, file_name, source_text, categories, last_difficulty, flashcards, created_at, updated_at
FROM study_sessions
WHERE owner_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.StudySession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// Update replaces the mutable fields of a session.
func (r *SessionRepositoryPG) Update(ctx context.Context, session *domain.StudySession) error {
	flashcards, err := json.Marshal(session.Flashcards)
	if err != nil {
		return fmt.Errorf("encode flashcards: %w", err)
	}
	query := `
UPDATE study_sessions
SET file_name = $2,
    source_text = $3,
    categories = $4,
    last_difficulty = $5,
    flashcards = $6,
    updated_at = NOW()
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query,
		session.ID,
		session.FileName,
		session.SourceText,
		session.Categories,
		session.LastDifficulty,
		flashcards,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a session.
func (r *SessionRepositoryPG) Delete(ctx context.Context, sessionID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM study_sessions WHERE id = $1;`, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSession(row rowScanner) (*domain.StudySession, error) {
	var (
		session    domain.StudySession
		flashcards []byte
	)
	if err := row.Scan(
		&session.ID,
		&session.OwnerID,
		&session.FileName,
		&session.SourceText,
		&session.Categories,
		&session.LastDifficulty,
		&flashcards,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(flashcards) > 0 {
		if err := json.Unmarshal(flashcards, &session.Flashcards); err != nil {
			return nil, fmt.Errorf("decode flashcards: %w", err)
		}
	}
	return &session, nil
}
