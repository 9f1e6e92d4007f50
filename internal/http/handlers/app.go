package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"studyhall/internal/domain"
	"studyhall/internal/infra"
	"studyhall/internal/middleware"
	"studyhall/internal/studygen"
)

// StudyGenerator produces on-demand study artifacts from extracted text.
type StudyGenerator interface {
	Categories(ctx context.Context, text string) ([]string, error)
	QuizQuestions(ctx context.Context, text, category, difficulty string, count int) ([]domain.QuizQuestion, error)
	Flashcards(ctx context.Context, text string) (studygen.FlashcardBatch, error)
}

// App bundles the dependencies every handler needs.
type App struct {
	Jobs     domain.MediaJobRepository
	Sessions domain.SessionRepository
	Studygen StudyGenerator
	Logger   infra.Logger
}

func NewApp(jobs domain.MediaJobRepository, sessions domain.SessionRepository, gen StudyGenerator, logger infra.Logger) *App {
	return &App{Jobs: jobs, Sessions: sessions, Studygen: gen, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

// domainError maps repository and domain sentinels onto HTTP responses.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", "not the resource owner")
	case errors.Is(err, domain.ErrConflict):
		a.error(w, http.StatusConflict, "conflict", "resource is not in the required state")
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidSource):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("handlers: internal error")
		a.error(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
