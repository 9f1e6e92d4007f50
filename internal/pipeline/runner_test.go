package pipeline

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"studyhall/internal/domain"
	"studyhall/internal/extract"
	"studyhall/internal/infra"
	"studyhall/internal/notes"
)

// memJobs is an in-memory MediaJobRepository that enforces the same state
// conditions as the SQL implementation.
type memJobs struct {
	mu   sync.Mutex
	jobs map[string]*domain.MediaJob
}

func newMemJobs(seed ...*domain.MediaJob) *memJobs {
	m := &memJobs{jobs: make(map[string]*domain.MediaJob)}
	for _, j := range seed {
		c := *j
		m.jobs[j.ID] = &c
	}
	return m
}

func (m *memJobs) Create(ctx context.Context, job *domain.MediaJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *job
	m.jobs[job.ID] = &c
	return nil
}

func (m *memJobs) GetByID(ctx context.Context, jobID string) (*domain.MediaJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *job
	return &c, nil
}

func (m *memJobs) ListCompletedByOwner(ctx context.Context, ownerID string) ([]domain.MediaJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.MediaJob
	for _, job := range m.jobs {
		if job.OwnerID == ownerID && job.Status == domain.JobStatusCompleted && job.Generated != nil {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *memJobs) ClaimNext(ctx context.Context) (*domain.MediaJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		if job.Status == domain.JobStatusPending {
			job.Status = domain.JobStatusProcessing
			c := *job
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memJobs) SetExtraction(ctx context.Context, jobID string, text string, method domain.ExtractionMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok || job.Status != domain.JobStatusProcessing {
		return domain.ErrConflict
	}
	job.ExtractedText = text
	job.ExtractionMethod = method
	return nil
}

func (m *memJobs) SetResult(ctx context.Context, jobID string, content *domain.GeneratedContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok || job.Status != domain.JobStatusProcessing {
		return domain.ErrConflict
	}
	job.Status = domain.JobStatusCompleted
	c := *content
	job.Generated = &c
	job.ErrorMessage = ""
	return nil
}

func (m *memJobs) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok || job.Status.Terminal() {
		return domain.ErrConflict
	}
	job.Status = domain.JobStatusFailed
	job.ErrorMessage = errMsg
	return nil
}

func (m *memJobs) UpdateNotes(ctx context.Context, jobID string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok || job.Status != domain.JobStatusCompleted || job.Generated == nil {
		return domain.ErrConflict
	}
	job.Generated.Notes = text
	return nil
}

type fakeExtractor struct {
	result extract.Result
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(ctx context.Context, job *domain.MediaJob) (extract.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeTextGen struct {
	text  string
	err   error
	calls int
}

func (f *fakeTextGen) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeBlobs struct {
	deletes   []string
	deleteErr error
}

func (f *fakeBlobs) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	return nil, "", errors.New("not used")
}

func (f *fakeBlobs) Delete(ctx context.Context, url string) error {
	f.deletes = append(f.deletes, url)
	return f.deleteErr
}

func testLogger() infra.Logger {
	return zerolog.New(io.Discard)
}

func processingJob(kind domain.JobKind) *domain.MediaJob {
	return &domain.MediaJob{
		ID:        "job-1",
		OwnerID:   "user-1",
		Kind:      kind,
		SourceRef: "https://blobs.example/uploads/doc",
		Locale:    "en",
		Status:    domain.JobStatusProcessing,
	}
}

func TestProcessCompletesFileJob(t *testing.T) {
	job := processingJob(domain.JobKindFile)
	repo := newMemJobs(job)
	ex := &fakeExtractor{result: extract.Result{Text: "Chapter 1: Sets", Method: domain.ExtractionDocumentParse}}
	gen := &fakeTextGen{text: "# Notes\n- sets are collections"}
	blobs := &fakeBlobs{}

	r := NewRunner(repo, ex, notes.NewSynthesizer(gen), blobs, testLogger())
	if err := r.Process(context.Background(), job); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), job.ID)
	if got.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %s, want completed", got.Status)
	}
	if got.ExtractedText != "Chapter 1: Sets" || got.ExtractionMethod != domain.ExtractionDocumentParse {
		t.Fatalf("extraction = %q/%s", got.ExtractedText, got.ExtractionMethod)
	}
	if got.Generated == nil || got.Generated.Notes != "# Notes\n- sets are collections" {
		t.Fatalf("generated = %+v", got.Generated)
	}
	if len(got.Generated.QuizQuestions) != 0 || len(got.Generated.Flashcards) != 0 {
		t.Fatal("quiz/flashcards should stay empty after the pipeline run")
	}
	if len(blobs.deletes) != 1 || blobs.deletes[0] != job.SourceRef {
		t.Fatalf("blob deletes = %v, want the source blob", blobs.deletes)
	}
}

func TestProcessExtractionFailure(t *testing.T) {
	job := processingJob(domain.JobKindFile)
	repo := newMemJobs(job)
	ex := &fakeExtractor{err: errors.New("blob unreachable")}
	gen := &fakeTextGen{text: "unused"}
	blobs := &fakeBlobs{}

	r := NewRunner(repo, ex, notes.NewSynthesizer(gen), blobs, testLogger())
	if err := r.Process(context.Background(), job); err == nil {
		t.Fatal("expected error")
	}

	got, _ := repo.GetByID(context.Background(), job.ID)
	if got.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if got.Generated != nil {
		t.Fatal("generated content should stay unset on extraction failure")
	}
	if gen.calls != 0 {
		t.Fatal("synthesis must not run after extraction failure")
	}
	if len(blobs.deletes) != 0 {
		t.Fatal("source blob must survive a failed job")
	}
}

func TestProcessSynthesisFailureKeepsExtraction(t *testing.T) {
	job := processingJob(domain.JobKindFile)
	repo := newMemJobs(job)
	ex := &fakeExtractor{result: extract.Result{Text: "important text", Method: domain.ExtractionDocumentParse}}
	gen := &fakeTextGen{err: errors.New("model overloaded")}

	r := NewRunner(repo, ex, notes.NewSynthesizer(gen), &fakeBlobs{}, testLogger())
	if err := r.Process(context.Background(), job); err == nil {
		t.Fatal("expected error")
	}

	got, _ := repo.GetByID(context.Background(), job.ID)
	if got.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if got.ExtractedText != "important text" {
		t.Fatalf("extracted text lost: %q", got.ExtractedText)
	}
	if got.ErrorMessage == "" {
		t.Fatal("error message should be recorded")
	}
}

func TestProcessUnsupportedTypeCompletesWithPlaceholder(t *testing.T) {
	job := processingJob(domain.JobKindFile)
	repo := newMemJobs(job)
	ex := &fakeExtractor{result: extract.Result{
		Text:   extract.UnsupportedTypeText("image/png"),
		Method: domain.ExtractionUnsupported,
	}}
	gen := &fakeTextGen{text: "unused"}

	r := NewRunner(repo, ex, notes.NewSynthesizer(gen), &fakeBlobs{}, testLogger())
	if err := r.Process(context.Background(), job); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), job.ID)
	if got.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %s, want completed", got.Status)
	}
	if got.ExtractionMethod != domain.ExtractionUnsupported {
		t.Fatalf("method = %s, want unsupported", got.ExtractionMethod)
	}
	if got.Generated == nil || got.Generated.Notes != notes.PlaceholderNotes {
		t.Fatalf("notes = %+v, want fixed placeholder", got.Generated)
	}
	if gen.calls != 0 {
		t.Fatal("placeholder path must not call the generator")
	}
}

func TestProcessCleanupFailureKeepsCompleted(t *testing.T) {
	job := processingJob(domain.JobKindFile)
	repo := newMemJobs(job)
	ex := &fakeExtractor{result: extract.Result{Text: "text", Method: domain.ExtractionDocumentParse}}
	gen := &fakeTextGen{text: "notes"}
	blobs := &fakeBlobs{deleteErr: errors.New("storage down")}

	r := NewRunner(repo, ex, notes.NewSynthesizer(gen), blobs, testLogger())
	if err := r.Process(context.Background(), job); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), job.ID)
	if got.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %s, want completed despite cleanup failure", got.Status)
	}
}

func TestProcessRemoteVideoSkipsCleanup(t *testing.T) {
	job := processingJob(domain.JobKindRemoteVideo)
	job.SourceRef = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	repo := newMemJobs(job)
	ex := &fakeExtractor{result: extract.Result{Text: "transcript", Method: domain.ExtractionVideoTranscription}}
	gen := &fakeTextGen{text: "notes"}
	blobs := &fakeBlobs{}

	r := NewRunner(repo, ex, notes.NewSynthesizer(gen), blobs, testLogger())
	if err := r.Process(context.Background(), job); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(blobs.deletes) != 0 {
		t.Fatalf("no blob deletion expected for remote video, got %v", blobs.deletes)
	}
}

func TestWorkerClaimsAndDrains(t *testing.T) {
	pending := &domain.MediaJob{
		ID:        "job-queue-1",
		OwnerID:   "user-1",
		Kind:      domain.JobKindFile,
		SourceRef: "https://blobs.example/uploads/doc",
		Locale:    "en",
		Status:    domain.JobStatusPending,
	}
	repo := newMemJobs(pending)
	ex := &fakeExtractor{result: extract.Result{Text: "text", Method: domain.ExtractionDocumentParse}}
	gen := &fakeTextGen{text: "notes"}
	runner := NewRunner(repo, ex, notes.NewSynthesizer(gen), &fakeBlobs{}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	w := NewWorker(repo, runner, testLogger(), 2, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		got, _ := repo.GetByID(context.Background(), pending.ID)
		if got.Status.Terminal() {
			break
		}
		select {
		case <-deadline:
			t.Fatal("job never reached a terminal state")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	got, _ := repo.GetByID(context.Background(), pending.ID)
	if got.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %s, want completed", got.Status)
	}
}
