package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"studyhall/internal/domain"
)

func sessionApp(sessions *memSessions) *App {
	return NewApp(newMemJobs(), sessions, &fakeStudyGen{}, zerolog.New(io.Discard))
}

func TestSessionCreateAndGet(t *testing.T) {
	sessions := newMemSessions()
	app := sessionApp(sessions)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/v1/sessions",
		`{"file_name":"notes.pdf","source_text":"Chapter 1: Sets","categories":["Sets"]}`,
		"user-1", nil)
	app.SessionCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var created sessionView
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.LastDifficulty != domain.DefaultDifficulty {
		t.Fatalf("difficulty = %q, want default", created.LastDifficulty)
	}

	rec = httptest.NewRecorder()
	app.SessionGet(rec, authedRequest(http.MethodGet, "/v1/sessions/"+created.ID, "", "user-1", map[string]string{"session_id": created.ID}))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
}

func TestSessionCreateValidation(t *testing.T) {
	app := sessionApp(newMemSessions())
	rec := httptest.NewRecorder()
	app.SessionCreate(rec, authedRequest(http.MethodPost, "/v1/sessions", `{"file_name":"","source_text":""}`, "user-1", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSessionUpdatePersistsStudyRun(t *testing.T) {
	sessions := newMemSessions()
	sessions.sessions["s-1"] = &domain.StudySession{
		ID: "s-1", OwnerID: "user-1", FileName: "notes.pdf",
		SourceText: "text", LastDifficulty: domain.DefaultDifficulty,
	}
	app := sessionApp(sessions)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPut, "/v1/sessions/s-1",
		`{"last_difficulty":"ministerial","flashcards":[{"front":"f","back":"b"}],"categories":["Sets"]}`,
		"user-1", map[string]string{"session_id": "s-1"})
	app.SessionUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := sessions.sessions["s-1"]
	if got.LastDifficulty != "ministerial" {
		t.Fatalf("difficulty = %q", got.LastDifficulty)
	}
	if len(got.Flashcards) != 1 || len(got.Categories) != 1 {
		t.Fatalf("artifacts not persisted: %+v", got)
	}
}

func TestSessionOwnership(t *testing.T) {
	sessions := newMemSessions()
	sessions.sessions["s-1"] = &domain.StudySession{ID: "s-1", OwnerID: "user-1"}
	app := sessionApp(sessions)

	rec := httptest.NewRecorder()
	app.SessionGet(rec, authedRequest(http.MethodGet, "/v1/sessions/s-1", "", "user-2", map[string]string{"session_id": "s-1"}))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	rec = httptest.NewRecorder()
	app.SessionDelete(rec, authedRequest(http.MethodDelete, "/v1/sessions/s-1", "", "user-2", map[string]string{"session_id": "s-1"}))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("delete status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if _, ok := sessions.sessions["s-1"]; !ok {
		t.Fatal("session deleted by non-owner")
	}
}

func TestSessionDelete(t *testing.T) {
	sessions := newMemSessions()
	sessions.sessions["s-1"] = &domain.StudySession{ID: "s-1", OwnerID: "user-1"}
	app := sessionApp(sessions)

	rec := httptest.NewRecorder()
	app.SessionDelete(rec, authedRequest(http.MethodDelete, "/v1/sessions/s-1", "", "user-1", map[string]string{"session_id": "s-1"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, ok := sessions.sessions["s-1"]; ok {
		t.Fatal("session not deleted")
	}
}
