package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"studyhall/internal/domain"
)

type categoriesRequest struct {
	Text string `json:"text"`
}

// AICategories identifies the main topics of a block of extracted text.
func (a *App) AICategories(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req categoriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "text required")
		return
	}
	categories, err := a.Studygen.Categories(r.Context(), req.Text)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: category generation failed")
		a.error(w, http.StatusBadGateway, "upstream", "category generation failed")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"categories": categories})
}

type mcqRequest struct {
	Text       string `json:"text"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// AIMCQs generates multiple-choice questions for one category of the text.
func (a *App) AIMCQs(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req mcqRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Text) == "" || strings.TrimSpace(req.Category) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "text and category required")
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = domain.DefaultDifficulty
	}
	questions, err := a.Studygen.QuizQuestions(r.Context(), req.Text, req.Category, req.Difficulty, req.Count)
	if err != nil {
		a.Logger.Error().Err(err).Str("category", req.Category).Msg("handlers: mcq generation failed")
		a.error(w, http.StatusBadGateway, "upstream", "question generation failed")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"questions": questions})
}

type flashcardsRequest struct {
	Text string `json:"text"`
}

// AIFlashcards generates flashcards over the whole text, reporting partial
// success when some chunks failed.
func (a *App) AIFlashcards(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req flashcardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "text required")
		return
	}
	batch, err := a.Studygen.Flashcards(r.Context(), req.Text)
	if err != nil {
		a.Logger.Error().Err(err).
			Int("chunks_failed", batch.ChunksFailed).
			Msg("handlers: flashcard generation aborted")
		a.error(w, http.StatusBadGateway, "upstream", "flashcard generation failed")
		return
	}
	flashcards := batch.Cards
	if flashcards == nil {
		flashcards = []domain.Flashcard{}
	}
	a.json(w, http.StatusOK, map[string]any{
		"flashcards":    flashcards,
		"chunks_total":  batch.ChunksTotal,
		"chunks_failed": batch.ChunksFailed,
	})
}
