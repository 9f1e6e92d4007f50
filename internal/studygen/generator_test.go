package studygen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"studyhall/internal/infra"
)

type fakeStructured struct {
	calls     int
	responses []json.RawMessage
	errs      []error
	prompts   []string
}

func (f *fakeStructured) GenerateStructured(ctx context.Context, prompt string, schema json.RawMessage) (json.RawMessage, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return json.RawMessage(`[]`), nil
}

func testLogger() infra.Logger {
	return zerolog.New(io.Discard)
}

func TestCategories(t *testing.T) {
	client := &fakeStructured{responses: []json.RawMessage{
		json.RawMessage(`["Sets", "Functions"]`),
	}}
	g := NewGenerator(client, testLogger())

	got, err := g.Categories(context.Background(), "Chapter 1: Sets. Chapter 2: Functions.")
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(got) != 2 || got[0] != "Sets" || got[1] != "Functions" {
		t.Fatalf("categories = %v, want [Sets Functions]", got)
	}
}

func TestQuizQuestions(t *testing.T) {
	client := &fakeStructured{responses: []json.RawMessage{
		json.RawMessage(`[{"question_text":"What is a set?","options":["a","b","c","d"],"correct_option_index":1,"explanation":"def"}]`),
	}}
	g := NewGenerator(client, testLogger())

	got, err := g.QuizQuestions(context.Background(), "text", "Sets", "ministerial", 3)
	if err != nil {
		t.Fatalf("QuizQuestions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d questions, want 1", len(got))
	}
	if got[0].CorrectOptionIndex != 1 {
		t.Fatalf("correct index = %d, want 1", got[0].CorrectOptionIndex)
	}
	if !strings.Contains(client.prompts[0], "ministry exam") {
		t.Fatalf("prompt missing ministerial difficulty wording: %q", client.prompts[0])
	}
}

func TestQuizQuestionsRejectsMalformed(t *testing.T) {
	client := &fakeStructured{responses: []json.RawMessage{
		json.RawMessage(`[{"question_text":"q","options":["a","b"],"correct_option_index":5,"explanation":"e"}]`),
	}}
	g := NewGenerator(client, testLogger())

	if _, err := g.QuizQuestions(context.Background(), "text", "Sets", "easy", 1); err == nil {
		t.Fatal("expected error for malformed question")
	}
}

func TestFlashcardsSingleChunk(t *testing.T) {
	client := &fakeStructured{responses: []json.RawMessage{
		json.RawMessage(`[{"front":"term","back":"definition"}]`),
	}}
	g := NewGenerator(client, testLogger())

	batch, err := g.Flashcards(context.Background(), "some source text")
	if err != nil {
		t.Fatalf("Flashcards: %v", err)
	}
	if batch.ChunksTotal != 1 || batch.ChunksFailed != 0 {
		t.Fatalf("chunks = %d/%d failed, want 1/0", batch.ChunksTotal, batch.ChunksFailed)
	}
	if len(batch.Cards) != 1 || batch.Cards[0].Front != "term" {
		t.Fatalf("cards = %+v", batch.Cards)
	}
}

func TestFlashcardsContinuesPastFailedChunk(t *testing.T) {
	boom := errors.New("upstream 500")
	// chunk 1 fails twice (initial + retry), chunk 2 and 3 succeed
	client := &fakeStructured{
		errs: []error{boom, boom, nil, nil},
		responses: []json.RawMessage{
			nil, nil,
			json.RawMessage(`[{"front":"f2","back":"b2"}]`),
			json.RawMessage(`[{"front":"f3","back":"b3"}]`),
		},
	}
	g := NewGenerator(client, testLogger())
	g.chunkWords = 2

	batch, err := g.Flashcards(context.Background(), "one two three four five six")
	if err != nil {
		t.Fatalf("Flashcards: %v", err)
	}
	if batch.ChunksTotal != 3 || batch.ChunksFailed != 1 {
		t.Fatalf("chunks = %d total / %d failed, want 3/1", batch.ChunksTotal, batch.ChunksFailed)
	}
	if len(batch.Cards) != 2 {
		t.Fatalf("got %d cards, want 2", len(batch.Cards))
	}
	if client.calls != 4 {
		t.Fatalf("client calls = %d, want 4 (one retry)", client.calls)
	}
}

func TestFlashcardsAbortsAfterFailedChunkCap(t *testing.T) {
	boom := errors.New("upstream 500")
	client := &fakeStructured{
		errs: []error{boom, boom, boom, boom, boom, boom, boom, boom},
	}
	g := NewGenerator(client, testLogger())
	g.chunkWords = 1

	batch, err := g.Flashcards(context.Background(), "a b c d e f g h")
	if err == nil {
		t.Fatal("expected abort error")
	}
	if batch.ChunksFailed != maxFailedChunks {
		t.Fatalf("failed chunks = %d, want %d", batch.ChunksFailed, maxFailedChunks)
	}
	// 3 failed chunks, 2 attempts each, then abort
	if client.calls != 6 {
		t.Fatalf("client calls = %d, want 6", client.calls)
	}
}

func TestChunkText(t *testing.T) {
	chunks := chunkText("a b c d e", 2)
	want := []string{"a b", "c d", "e"}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Fatalf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}
	if got := chunkText("   ", 2); len(got) != 1 || got[0] != "" {
		t.Fatalf("blank input chunks = %v, want one empty chunk", got)
	}
}
