package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"studyhall/internal/domain"
	"studyhall/internal/middleware"
)

type mediaJobCreateRequest struct {
	Kind        string `json:"kind"`
	SourceRef   string `json:"source_ref"`
	DisplayName string `json:"display_name"`
}

type mediaJobCreateResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type mediaJobStatusResponse struct {
	Status string                   `json:"status"`
	Data   *domain.GeneratedContent `json:"data"`
}

type mediaJobView struct {
	ID               string                   `json:"id"`
	Kind             string                   `json:"kind"`
	DisplayName      string                   `json:"display_name"`
	Status           string                   `json:"status"`
	ExtractedText    string                   `json:"extracted_text,omitempty"`
	ExtractionMethod string                   `json:"extraction_method,omitempty"`
	Generated        *domain.GeneratedContent `json:"generated,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

func jobView(job *domain.MediaJob) mediaJobView {
	return mediaJobView{
		ID:               job.ID,
		Kind:             string(job.Kind),
		DisplayName:      job.DisplayName,
		Status:           string(job.Status),
		ExtractedText:    job.ExtractedText,
		ExtractionMethod: string(job.ExtractionMethod),
		Generated:        job.Generated,
		CreatedAt:        job.CreatedAt,
		UpdatedAt:        job.UpdatedAt,
	}
}

// MediaJobCreate accepts a new ingestion job and returns its identifier
// immediately; the worker picks the job up asynchronously.
func (a *App) MediaJobCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req mediaJobCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	kind := domain.JobKind(req.Kind)
	if !kind.Valid() {
		a.error(w, http.StatusBadRequest, "bad_request", "kind must be \"file\" or \"remote_video\"")
		return
	}
	if strings.TrimSpace(req.SourceRef) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "source_ref required")
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = displayNameFromSource(req.SourceRef)
	}

	job := &domain.MediaJob{
		ID:          uuid.NewString(),
		OwnerID:     userID,
		Kind:        kind,
		SourceRef:   req.SourceRef,
		DisplayName: displayName,
		Locale:      middleware.LocaleFromContext(r.Context()),
		Status:      domain.JobStatusPending,
	}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, mediaJobCreateResponse{JobID: job.ID, Status: string(job.Status)})
}

// MediaJobStatus is the polling endpoint: {status, data}, where data carries
// the generated bundle only once the job has completed.
func (a *App) MediaJobStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := a.loadOwnedJob(w, r)
	if !ok {
		return
	}
	resp := mediaJobStatusResponse{Status: string(job.Status)}
	if job.Status == domain.JobStatusCompleted {
		resp.Data = job.Generated
	}
	a.json(w, http.StatusOK, resp)
}

// MediaJobGet returns the full owned record.
func (a *App) MediaJobGet(w http.ResponseWriter, r *http.Request) {
	job, ok := a.loadOwnedJob(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, jobView(job))
}

// MediaJobsList returns the owner's completed jobs with generated content,
// newest first.
func (a *App) MediaJobsList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobs, err := a.Jobs.ListCompletedByOwner(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	items := make([]mediaJobView, 0, len(jobs))
	for i := range jobs {
		items = append(items, jobView(&jobs[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

type updateNotesRequest struct {
	Notes string `json:"notes"`
}

// MediaJobUpdateNotes replaces the notes of a completed job with the owner's
// edited version.
func (a *App) MediaJobUpdateNotes(w http.ResponseWriter, r *http.Request) {
	job, ok := a.loadOwnedJob(w, r)
	if !ok {
		return
	}
	var req updateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if job.Status != domain.JobStatusCompleted {
		a.error(w, http.StatusConflict, "conflict", "notes can only be edited on a completed job")
		return
	}
	if err := a.Jobs.UpdateNotes(r.Context(), job.ID, req.Notes); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "updated"})
}

// loadOwnedJob resolves {job_id}, enforcing authentication and ownership.
// Missing jobs are 404; someone else's job is 403, which deliberately
// confirms existence but never leaks content.
func (a *App) loadOwnedJob(w http.ResponseWriter, r *http.Request) (*domain.MediaJob, bool) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return nil, false
	}
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return nil, false
	}
	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		a.domainError(w, err)
		return nil, false
	}
	if !job.Owned(userID) {
		a.error(w, http.StatusForbidden, "forbidden", "not the job owner")
		return nil, false
	}
	return job, true
}

var titleCaser = cases.Title(language.English)

// displayNameFromSource derives a readable label from the last path segment
// of the source reference.
func displayNameFromSource(sourceRef string) string {
	segment := sourceRef
	if u, err := url.Parse(sourceRef); err == nil && u.Path != "" {
		segment = path.Base(u.Path)
	}
	if i := strings.LastIndex(segment, "."); i > 0 {
		segment = segment[:i]
	}
	segment = strings.NewReplacer("-", " ", "_", " ").Replace(segment)
	segment = strings.TrimSpace(segment)
	if segment == "" || segment == "/" {
		return "Untitled upload"
	}
	return titleCaser.String(segment)
}
