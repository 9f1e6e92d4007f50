package studygen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"studyhall/internal/domain"
	"studyhall/internal/infra"
)

// StructuredGenerator is the slice of the generative client used here: JSON
// output constrained by a response schema.
type StructuredGenerator interface {
	GenerateStructured(ctx context.Context, prompt string, schema json.RawMessage) (json.RawMessage, error)
}

const (
	// defaultChunkWords is the word budget per flashcard generation call.
	defaultChunkWords = 3000
	// maxFailedChunks aborts a flashcard run once this many chunks have
	// failed; past this point the outage is assumed systemic.
	maxFailedChunks = 3
	// maxQuestionCount caps one quiz generation request.
	maxQuestionCount = 10
)

var (
	categoriesSchema = json.RawMessage(`{"type":"ARRAY","items":{"type":"STRING"}}`)

	quizSchema = json.RawMessage(`{
  "type": "ARRAY",
  "items": {
    "type": "OBJECT",
    "properties": {
      "question_text": {"type": "STRING"},
      "options": {"type": "ARRAY", "items": {"type": "STRING"}, "minItems": 4, "maxItems": 4},
      "correct_option_index": {"type": "INTEGER", "minimum": 0, "maximum": 3},
      "explanation": {"type": "STRING"}
    },
    "required": ["question_text", "options", "correct_option_index", "explanation"]
  }
}`)

	flashcardSchema = json.RawMessage(`{
  "type": "ARRAY",
  "items": {
    "type": "OBJECT",
    "properties": {
      "front": {"type": "STRING"},
      "back": {"type": "STRING"}
    },
    "required": ["front", "back"]
  }
}`)
)

// FlashcardBatch is the outcome of a chunked flashcard run. ChunksFailed
// makes partial success visible to the caller instead of silently dropping
// failed segments.
type FlashcardBatch struct {
	Cards        []domain.Flashcard
	ChunksTotal  int
	ChunksFailed int
}

// Generator produces on-demand study artifacts from previously extracted
// text.
type Generator struct {
	client     StructuredGenerator
	logger     infra.Logger
	chunkWords int
}

// NewGenerator wires a Generator to the shared generative client.
func NewGenerator(client StructuredGenerator, logger infra.Logger) *Generator {
	return &Generator{client: client, logger: logger, chunkWords: defaultChunkWords}
}

// Categories identifies the main topics of the text.
func (g *Generator) Categories(ctx context.Context, text string) ([]string, error) {
	prompt := fmt.Sprintf(
		"Analyze the following text extracted from class notes and identify the main topics or chapters. "+
			"Return these topics as a JSON array of strings. Only return the JSON array. Text:\n\n%s", text)
	raw, err := g.client.GenerateStructured(ctx, prompt, categoriesSchema)
	if err != nil {
		return nil, fmt.Errorf("studygen: categories: %w", err)
	}
	var categories []string
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, fmt.Errorf("studygen: decode categories: %w", err)
	}
	return categories, nil
}

// QuizQuestions generates count multiple-choice questions for one category at
// the requested difficulty.
func (g *Generator) QuizQuestions(ctx context.Context, text, category, difficulty string, count int) ([]domain.QuizQuestion, error) {
	if count <= 0 {
		count = 3
	}
	if count > maxQuestionCount {
		count = maxQuestionCount
	}
	prompt := fmt.Sprintf(
		"Based on the provided text (use only information found in the text, never invent facts) and focusing on "+
			"the category %q, generate %d multiple-choice questions of %s difficulty. Each question must be a JSON "+
			"object with the fields \"question_text\" (string), \"options\" (array of exactly 4 strings), "+
			"\"correct_option_index\" (number from 0 to 3), and \"explanation\" (a brief explanation of the correct "+
			"answer grounded in the text). Return only the JSON array of %d question objects.\n\nText context:\n---\n%s\n---",
		category, count, difficultyPrompt(difficulty), count, text)
	raw, err := g.client.GenerateStructured(ctx, prompt, quizSchema)
	if err != nil {
		return nil, fmt.Errorf("studygen: quiz: %w", err)
	}
	var questions []domain.QuizQuestion
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("studygen: decode quiz: %w", err)
	}
	for i, q := range questions {
		if len(q.Options) != 4 || q.CorrectOptionIndex < 0 || q.CorrectOptionIndex > 3 {
			return nil, fmt.Errorf("studygen: question %d is malformed", i)
		}
	}
	return questions, nil
}

// Flashcards generates cards for the whole text, one generation call per
// chunk. A failed chunk is retried once, then counted and skipped; the run
// aborts once maxFailedChunks is reached.
func (g *Generator) Flashcards(ctx context.Context, text string) (FlashcardBatch, error) {
	chunks := chunkText(text, g.chunkWords)
	batch := FlashcardBatch{ChunksTotal: len(chunks)}

	for i, chunk := range chunks {
		cards, err := g.flashcardsForChunk(ctx, chunk)
		if err != nil {
			// one retry per chunk, no backoff: calls are already
			// timeout-bounded by the HTTP client
			cards, err = g.flashcardsForChunk(ctx, chunk)
		}
		if err != nil {
			batch.ChunksFailed++
			g.logger.Warn().Err(err).
				Int("chunk", i+1).
				Int("chunks_total", batch.ChunksTotal).
				Msg("studygen: flashcard chunk failed")
			if batch.ChunksFailed >= maxFailedChunks {
				return batch, fmt.Errorf("studygen: aborting after %d failed chunks: %w", batch.ChunksFailed, err)
			}
			continue
		}
		batch.Cards = append(batch.Cards, cards...)
	}
	return batch, nil
}

func (g *Generator) flashcardsForChunk(ctx context.Context, chunk string) ([]domain.Flashcard, error) {
	prompt := fmt.Sprintf(
		"You create concise study flashcards from a given text segment. Generate as many high-quality flashcards "+
			"as needed to cover all key concepts, definitions, and important facts in this segment. Each flashcard is "+
			"a JSON object with a \"front\" (concise question or term) and a \"back\" (accurate answer or definition "+
			"supported by the segment). Use only information from the segment. Return only the JSON array of "+
			"flashcard objects.\n\nText context (segment of a larger document):\n---\n%s\n---", chunk)
	raw, err := g.client.GenerateStructured(ctx, prompt, flashcardSchema)
	if err != nil {
		return nil, err
	}
	var cards []domain.Flashcard
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, fmt.Errorf("decode flashcards: %w", err)
	}
	return cards, nil
}

// difficultyPrompt maps an API difficulty value to its prompt wording.
func difficultyPrompt(difficulty string) string {
	switch strings.ToLower(difficulty) {
	case "easy":
		return "easy"
	case "hard":
		return "hard"
	case "ministerial":
		return "very hard, mimicking the style and complexity of ministry exam questions, analytical of the given text"
	default:
		return "medium"
	}
}

// chunkText splits text into segments of at most maxWords whitespace-separated
// words. Empty input yields a single empty chunk so callers still produce a
// well-formed (if empty) result.
func chunkText(text string, maxWords int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var chunks []string
	for start := 0; start < len(words); start += maxWords {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
