package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studyhall/internal/domain"
)

type sessionCreateRequest struct {
	FileName   string   `json:"file_name"`
	SourceText string   `json:"source_text"`
	Categories []string `json:"categories"`
}

type sessionUpdateRequest struct {
	Categories     []string          `json:"categories"`
	LastDifficulty string            `json:"last_difficulty"`
	Flashcards     []domain.Flashcard `json:"flashcards"`
}

type sessionView struct {
	ID             string             `json:"id"`
	FileName       string             `json:"file_name"`
	SourceText     string             `json:"source_text"`
	Categories     []string           `json:"categories"`
	LastDifficulty string             `json:"last_difficulty"`
	Flashcards     []domain.Flashcard `json:"flashcards"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func viewSession(s *domain.StudySession) sessionView {
	v := sessionView{
		ID:             s.ID,
		FileName:       s.FileName,
		SourceText:     s.SourceText,
		Categories:     s.Categories,
		LastDifficulty: s.LastDifficulty,
		Flashcards:     s.Flashcards,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	if v.Categories == nil {
		v.Categories = []string{}
	}
	if v.Flashcards == nil {
		v.Flashcards = []domain.Flashcard{}
	}
	return v
}

// SessionCreate starts a study session around a block of source text.
func (a *App) SessionCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req sessionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.FileName) == "" || strings.TrimSpace(req.SourceText) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "file_name and source_text required")
		return
	}
	session := &domain.StudySession{
		ID:             uuid.NewString(),
		OwnerID:        userID,
		FileName:       req.FileName,
		SourceText:     req.SourceText,
		Categories:     req.Categories,
		LastDifficulty: domain.DefaultDifficulty,
	}
	if err := a.Sessions.Create(r.Context(), session); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, viewSession(session))
}

// SessionsList returns the caller's sessions, newest first.
func (a *App) SessionsList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	sessions, err := a.Sessions.ListByOwner(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	items := make([]sessionView, 0, len(sessions))
	for i := range sessions {
		items = append(items, viewSession(&sessions[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// SessionGet returns one owned session.
func (a *App) SessionGet(w http.ResponseWriter, r *http.Request) {
	session, ok := a.loadOwnedSession(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, viewSession(session))
}

// SessionUpdate persists the artifacts generated during a study run: the
// category list, the last difficulty used, and accumulated flashcards.
func (a *App) SessionUpdate(w http.ResponseWriter, r *http.Request) {
	session, ok := a.loadOwnedSession(w, r)
	if !ok {
		return
	}
	var req sessionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Categories != nil {
		session.Categories = req.Categories
	}
	if req.LastDifficulty != "" {
		session.LastDifficulty = req.LastDifficulty
	}
	if req.Flashcards != nil {
		session.Flashcards = req.Flashcards
	}
	if err := a.Sessions.Update(r.Context(), session); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, viewSession(session))
}

// SessionDelete removes one owned session.
func (a *App) SessionDelete(w http.ResponseWriter, r *http.Request) {
	session, ok := a.loadOwnedSession(w, r)
	if !ok {
		return
	}
	if err := a.Sessions.Delete(r.Context(), session.ID); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (a *App) loadOwnedSession(w http.ResponseWriter, r *http.Request) (*domain.StudySession, bool) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return nil, false
	}
	sessionID := chi.URLParam(r, "session_id")
	if sessionID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "session_id required")
		return nil, false
	}
	session, err := a.Sessions.GetByID(r.Context(), sessionID)
	if err != nil {
		a.domainError(w, err)
		return nil, false
	}
	if session.OwnerID != userID {
		a.error(w, http.StatusForbidden, "forbidden", "not the session owner")
		return nil, false
	}
	return session, true
}
