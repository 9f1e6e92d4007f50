package notes

import (
	"context"
	"fmt"
	"strings"
)

// PlaceholderNotes is stored when extraction yielded no usable text. The job
// still completes; this is a deliberate degrade-not-fail policy.
const PlaceholderNotes = "No original content text was available for note generation."

// Generator is the slice of the generative client the synthesizer needs.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Synthesizer turns extracted text into markdown study notes.
type Synthesizer struct {
	generator Generator
}

// NewSynthesizer wires a Synthesizer to a text generator.
func NewSynthesizer(generator Generator) *Synthesizer {
	return &Synthesizer{generator: generator}
}

// Synthesize requests study notes for the extracted text in the given
// language. Empty input short-circuits to the placeholder without touching
// the generation service; generation failures propagate to the caller.
func (s *Synthesizer) Synthesize(ctx context.Context, text, locale string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return PlaceholderNotes, nil
	}
	result, err := s.generator.GenerateText(ctx, notesPrompt(text, locale))
	if err != nil {
		return "", fmt.Errorf("notes: generate: %w", err)
	}
	return result, nil
}

func notesPrompt(text, locale string) string {
	var sb strings.Builder
	sb.WriteString("Based on the following text, generate detailed notes, formatted in markdown.")
	if locale != "" && locale != "en" {
		fmt.Fprintf(&sb, " Write the notes in the language with ISO 639-1 code %q.", locale)
	}
	sb.WriteString("\n\n")
	sb.WriteString(text)
	return sb.String()
}
