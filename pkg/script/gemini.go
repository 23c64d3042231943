// Package script generates podcast episodes (slides plus dialogue) from a
// topic using an LLM.
package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/iterator"
	"google.golang.org/genai"

	"deckcast/pkg/config"
	"deckcast/pkg/tracker"
)

// GeminiClient wraps google/genai for JSON-mode generation.
type GeminiClient struct {
	genaiClient *genai.Client
	apiKey      string
	modelName   string
	tracker     *tracker.Tracker
	logPath     string

	mu sync.RWMutex
}

// NewGeminiClient creates a new Gemini client. With an empty key the client
// is created unconfigured and generation calls fail.
func NewGeminiClient(cfg config.LLMConfig, logPath string, t *tracker.Tracker) (*GeminiClient, error) {
	c := &GeminiClient{tracker: t, logPath: logPath}
	if err := c.Configure(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure updates the client with new settings.
func (c *GeminiClient) Configure(cfg config.LLMConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.apiKey = cfg.Key
	c.modelName = cfg.Model

	if c.modelName == "" {
		c.modelName = "gemini-2.0-flash"
	}

	if c.apiKey == "" {
		// Can't initialize without key.
		c.genaiClient = nil
		return nil
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: c.apiKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create genai client: %w", err)
	}
	c.genaiClient = client

	// Validate Model Availability
	if err := c.validateModel(context.Background()); err != nil {
		slog.Warn("Gemini model validation failed (proceeding anyway)", "error", err)
		// Startup should survive a flaky or rate-limited API; a truly bad
		// key/model fails on the first generation call instead.
	}

	return nil
}

// Close cleans up resources.
func (c *GeminiClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.genaiClient = nil
}

// GenerateJSON sends a prompt in JSON mode and unmarshals the response into
// the target struct.
func (c *GeminiClient) GenerateJSON(ctx context.Context, name, prompt string, target any) error {
	c.mu.RLock()
	client := c.genaiClient
	modelName := c.modelName
	c.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("gemini client not configured")
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	resp, err := client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), cfg)
	if err != nil {
		c.logPrompt(name, prompt, fmt.Sprintf("ERROR: %v", err))
		if c.tracker != nil {
			c.tracker.TrackAPIFailure("gemini")
		}
		return fmt.Errorf("generate json error: %w", err)
	}

	text, err := getResponseText(resp)
	if err != nil {
		c.logPrompt(name, prompt, fmt.Sprintf("TEXT_PARSE_ERROR: %v", err))
		if c.tracker != nil {
			c.tracker.TrackAPIFailure("gemini")
		}
		return err
	}

	// Sanitize Markdown JSON blocks if present
	cleaned := cleanJSONBlock(text)
	c.logPrompt(name, prompt, cleaned)

	if err := json.Unmarshal([]byte(cleaned), target); err != nil {
		if c.tracker != nil {
			c.tracker.TrackAPIFailure("gemini")
		}
		return fmt.Errorf("failed to unmarshal JSON response: %w. Response: %s", err, cleaned)
	}

	if c.tracker != nil {
		c.tracker.TrackAPISuccess("gemini")
	}
	return nil
}

func (c *GeminiClient) logPrompt(name, prompt, response string) {
	if c.logPath == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(c.logPath), 0o755); err != nil {
		return
	}

	f, err := os.OpenFile(c.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	entry := fmt.Sprintf("[%s] PROMPT: %s\nPROMPT_TEXT:\n%s\n\nRESPONSE:\n%s\n%s\n",
		timestamp, name, prompt, response, strings.Repeat("-", 80))

	_, _ = f.WriteString(entry)
}

func getResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

// validateModel checks if the configured model is available for the API key.
func (c *GeminiClient) validateModel(ctx context.Context) error {
	// Ensure model name has 'models/' prefix
	name := c.modelName
	if !strings.HasPrefix(name, "models/") {
		name = "models/" + name
	}

	// Try to get the specific model (1 API call)
	_, err := c.genaiClient.Models.Get(ctx, name, nil)
	if err == nil {
		slog.Debug("Gemini model validation success", "model", c.modelName)
		return nil
	}

	slog.Warn("Gemini model validation failed, fetching available models...", "model", c.modelName, "error", err)

	// Fetch available models for recovery
	iter, listErr := c.genaiClient.Models.List(ctx, nil)
	if listErr != nil {
		slog.Warn("Failed to list models for recovery", "error", listErr)
		return nil // Proceed anyway
	}

	var availableModels []string
	for {
		resp, nextErr := iter.Next(ctx)
		if nextErr == iterator.Done {
			break
		}
		if nextErr != nil {
			break
		}
		if strings.Contains(strings.ToLower(resp.Name), "gemini") {
			availableModels = append(availableModels, resp.Name)
		}
	}

	slog.Error("Configured model not found", "configured", c.modelName)
	slog.Error("Available 'gemini' models for this key:")
	for _, m := range availableModels {
		slog.Error("- " + m)
	}

	return nil // Proceed anyway (lazy validation on generation)
}
