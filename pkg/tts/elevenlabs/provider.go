// Package elevenlabs implements tts.Provider on the ElevenLabs
// text-to-dialogue API, which renders a whole multi-speaker conversation in
// one call.
package elevenlabs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"deckcast/pkg/config"
	"deckcast/pkg/model"
	"deckcast/pkg/request"
	"deckcast/pkg/tts"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io"
	defaultModel   = "eleven_v3"
	outputFormat   = "mp3_44100_128"
)

// defaultVoiceIDs are assigned to speakers in order of first appearance when
// no explicit mapping is configured.
var defaultVoiceIDs = []string{
	"21m00Tcm4TlvDq8ikWAM", // Rachel
	"TxGEqnHWrfWFTfGW9XjX", // Josh
	"EXAVITQu4vr4xnSDxMaL", // Bella
	"VR6AewLTigWG4xSOukaG", // Arnold
}

// Provider implements tts.Provider for ElevenLabs.
type Provider struct {
	client  *request.Client
	key     string
	baseURL string
	model   string
}

// NewProvider creates a new ElevenLabs provider.
func NewProvider(cfg config.ElevenLabsConfig, rc *request.Client) *Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	mdl := cfg.Model
	if mdl == "" {
		mdl = defaultModel
	}
	return &Provider{
		client:  rc,
		key:     cfg.Key,
		baseURL: baseURL,
		model:   mdl,
	}
}

type dialogueInput struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

type dialogueRequest struct {
	Inputs  []dialogueInput `json:"inputs"`
	ModelID string          `json:"model_id"`
}

// SynthesizeDialogue renders the dialogue to an .mp3 at outputPath.
// Speakers are mapped to voices in order of first appearance.
func (p *Provider) SynthesizeDialogue(ctx context.Context, turns []model.DialogueTurn, outputPath string) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("dialogue is empty")
	}
	if p.key == "" {
		return "", tts.NewFatalError(401, "elevenlabs: no API key configured")
	}

	voices := assignVoices(turns)
	req := dialogueRequest{ModelID: p.model}
	for _, turn := range turns {
		req.Inputs = append(req.Inputs, dialogueInput{
			Text:    tts.StripSpeakerLabels(turn.Text),
			VoiceID: voices[turn.Speaker],
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal dialogue request: %w", err)
	}

	u := fmt.Sprintf("%s/v1/text-to-dialogue?output_format=%s", p.baseURL, outputFormat)
	headers := map[string]string{
		"xi-api-key":   p.key,
		"Content-Type": "application/json",
	}

	audio, err := p.client.PostWithHeaders(ctx, u, body, headers)
	tts.Log("ELEVENLABS", dialogueSummary(turns), statusFromErr(err), err)
	if err != nil {
		return "", fmt.Errorf("elevenlabs dialogue: %w", err)
	}
	if len(audio) < tts.MinAudioSize {
		return "", fmt.Errorf("elevenlabs dialogue: response too small (%d bytes), likely failed synthesis", len(audio))
	}

	fullPath := outputPath
	if !strings.HasSuffix(strings.ToLower(fullPath), ".mp3") {
		fullPath += ".mp3"
	}
	if err := os.WriteFile(fullPath, audio, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	slog.Info("Dialogue synthesized", "turns", len(turns), "bytes", len(audio), "path", fullPath)
	return "mp3", nil
}

// assignVoices maps each distinct speaker to a voice ID, in order of first
// appearance, cycling through the default pool.
func assignVoices(turns []model.DialogueTurn) map[string]string {
	voices := make(map[string]string)
	next := 0
	for _, turn := range turns {
		if _, ok := voices[turn.Speaker]; !ok {
			voices[turn.Speaker] = defaultVoiceIDs[next%len(defaultVoiceIDs)]
			next++
		}
	}
	return voices
}

func dialogueSummary(turns []model.DialogueTurn) string {
	var b strings.Builder
	for _, turn := range turns {
		fmt.Fprintf(&b, "%s: %s\n", turn.Speaker, turn.Text)
	}
	return b.String()
}

func statusFromErr(err error) int {
	if err == nil {
		return 200
	}
	return 0
}

// Voices returns a subset of the standard premade voices.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Language: "en-US", IsNeural: true},
		{ID: "TxGEqnHWrfWFTfGW9XjX", Name: "Josh", Language: "en-US", IsNeural: true},
		{ID: "EXAVITQu4vr4xnSDxMaL", Name: "Bella", Language: "en-US", IsNeural: true},
		{ID: "VR6AewLTigWG4xSOukaG", Name: "Arnold", Language: "en-US", IsNeural: true},
	}, nil
}
