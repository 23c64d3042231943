package script

import (
	"context"
	"fmt"
	"strings"

	"deckcast/pkg/model"
)

// JSONGenerator is the LLM surface the generator needs. GeminiClient
// implements it; tests substitute a canned fake.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, name, prompt string, target any) error
}

// Generator produces podcast scripts from a topic.
type Generator struct {
	llm JSONGenerator
}

// NewGenerator creates a script generator.
func NewGenerator(llm JSONGenerator) *Generator {
	return &Generator{llm: llm}
}

const scriptPrompt = `You are writing a two-host podcast episode about the topic below.

Topic: %s
%s
Return a single JSON object with this shape:
{
  "title": "episode title",
  "slides": [
    {"slide_type": "title", "title": "...", "subtitle": "...", "image_search": "...", "duration_seconds": 8},
    {"slide_type": "bullets", "title": "...", "content": ["...", "..."], "image_search": "...", "duration_seconds": 12},
    {"slide_type": "quote", "content": "one memorable quote", "image_search": "...", "duration_seconds": 8}
  ],
  "dialogue": [
    {"speaker": "Host", "text": "..."},
    {"speaker": "Guest", "text": "..."}
  ]
}

Rules:
- 5 to 8 slides. The first slide_type must be "title", the rest mostly "bullets" with at most one "quote".
- Each image_search is a short, concrete photo query (two or three words).
- The dialogue alternates between exactly two speakers and, read aloud, should roughly match the total slide duration.
- Output JSON only, no commentary.`

// Generate asks the LLM for a complete episode script. The description is
// optional context; pass "" when there is none.
func (g *Generator) Generate(ctx context.Context, topic, description string) (*model.Script, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}

	extra := ""
	if strings.TrimSpace(description) != "" {
		extra = fmt.Sprintf("Context: %s\n", description)
	}
	prompt := fmt.Sprintf(scriptPrompt, topic, extra)

	var script model.Script
	if err := g.llm.GenerateJSON(ctx, "script", prompt, &script); err != nil {
		return nil, fmt.Errorf("script generation: %w", err)
	}

	if err := validateScript(&script); err != nil {
		return nil, fmt.Errorf("script generation: %w", err)
	}

	for i := range script.Slides {
		script.Slides[i].Normalize()
	}
	return &script, nil
}

func validateScript(s *model.Script) error {
	if len(s.Slides) == 0 {
		return fmt.Errorf("model returned no slides")
	}
	if len(s.Dialogue) == 0 {
		return fmt.Errorf("model returned no dialogue")
	}
	for i, turn := range s.Dialogue {
		if strings.TrimSpace(turn.Text) == "" {
			return fmt.Errorf("dialogue turn %d is empty", i)
		}
	}
	return nil
}
