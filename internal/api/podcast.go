package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"deckcast/pkg/model"
	"deckcast/pkg/store"
)

// VideoRunner executes a video job to completion.
type VideoRunner interface {
	Run(ctx context.Context, job *model.VideoJob) model.VideoResult
}

// DialogueSynthesizer renders dialogue audio to a file.
type DialogueSynthesizer interface {
	SynthesizeDialogue(ctx context.Context, turns []model.DialogueTurn, outputPath string) (string, error)
}

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error)
}

// ScriptGenerator produces an episode script from a topic.
type ScriptGenerator interface {
	Generate(ctx context.Context, topic, description string) (*model.Script, error)
}

// PodcastHandler handles the podcast production endpoints.
type PodcastHandler struct {
	runner   VideoRunner
	tts      DialogueSynthesizer
	uploader Uploader
	scripts  ScriptGenerator
	podcasts store.PodcastStore
}

// NewPodcastHandler creates a new PodcastHandler. scripts may be nil when no
// LLM is configured; the endpoint then reports an error.
func NewPodcastHandler(runner VideoRunner, tts DialogueSynthesizer, uploader Uploader, scripts ScriptGenerator, podcasts store.PodcastStore) *PodcastHandler {
	return &PodcastHandler{
		runner:   runner,
		tts:      tts,
		uploader: uploader,
		scripts:  scripts,
		podcasts: podcasts,
	}
}

// errorResponse is the failure envelope shared by all podcast endpoints.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

// HandleGenerateVideo handles POST /api/generate-video.
// The job runs synchronously; the response carries the terminal result either
// way, with the success flag distinguishing outcomes.
func (h *PodcastHandler) HandleGenerateVideo(w http.ResponseWriter, r *http.Request) {
	var job model.VideoJob
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		slog.Error("API: generate-video decode error", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slog.Info("API: video job accepted", "podcast_id", job.PodcastID, "slides", len(job.Slides))

	result := h.runner.Run(r.Context(), &job)
	writeJSON(w, http.StatusOK, result)
}

// DialogueRequest is the payload for POST /api/generate-dialogue.
type DialogueRequest struct {
	PodcastID string               `json:"podcast_id"`
	Dialogue  []model.DialogueTurn `json:"dialogue"`
}

// DialogueResponse reports the stored audio for a synthesized dialogue.
type DialogueResponse struct {
	Success   bool   `json:"success"`
	AudioURL  string `json:"audio_url"`
	SizeBytes int    `json:"size_bytes"`
}

// HandleGenerateDialogue handles POST /api/generate-dialogue: synthesizes the
// dialogue, uploads the audio, and returns its public URL.
func (h *PodcastHandler) HandleGenerateDialogue(w http.ResponseWriter, r *http.Request) {
	var req DialogueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("API: generate-dialogue decode error", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PodcastID == "" || len(req.Dialogue) == 0 {
		writeError(w, http.StatusBadRequest, "podcast_id and dialogue required")
		return
	}

	workDir, err := os.MkdirTemp("", "deckcast_dialogue_*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("work dir: %v", err))
		return
	}
	defer os.RemoveAll(workDir)

	audioPath := filepath.Join(workDir, "dialogue.mp3")
	format, err := h.tts.SynthesizeDialogue(r.Context(), req.Dialogue, audioPath)
	if err != nil {
		slog.Error("API: dialogue synthesis failed", "podcast_id", req.PodcastID, "error", err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("synthesis: %v", err))
		return
	}

	data, err := os.ReadFile(audioPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("read audio: %v", err))
		return
	}

	filename := fmt.Sprintf("podcast_%s.%s", req.PodcastID, format)
	audioURL, err := h.uploader.Upload(r.Context(), filename, data, "audio/mpeg")
	if err != nil {
		slog.Error("API: dialogue upload failed", "podcast_id", req.PodcastID, "error", err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("upload: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, DialogueResponse{
		Success:   true,
		AudioURL:  audioURL,
		SizeBytes: len(data),
	})
}

// ScriptRequest is the payload for POST /api/generate-script.
type ScriptRequest struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
}

// ScriptResponse wraps a generated script.
type ScriptResponse struct {
	Success bool          `json:"success"`
	Script  *model.Script `json:"script"`
}

// HandleGenerateScript handles POST /api/generate-script.
func (h *PodcastHandler) HandleGenerateScript(w http.ResponseWriter, r *http.Request) {
	if h.scripts == nil {
		writeError(w, http.StatusServiceUnavailable, "script generation not configured")
		return
	}

	var req ScriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	script, err := h.scripts.Generate(r.Context(), req.Topic, req.Description)
	if err != nil {
		slog.Error("API: script generation failed", "topic", req.Topic, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ScriptResponse{Success: true, Script: script})
}

// PodcastResponse is the status record returned by GET /api/podcasts/{id}.
type PodcastResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	VideoURL    string `json:"video_url,omitempty"`
	VideoStatus string `json:"video_status"`
	Error       string `json:"error,omitempty"`
}

// HandleGetPodcast handles GET /api/podcasts/{id}.
func (h *PodcastHandler) HandleGetPodcast(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	p, err := h.podcasts.GetPodcast(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "podcast not found")
		return
	}

	writeJSON(w, http.StatusOK, PodcastResponse{
		ID:          p.ID,
		Title:       p.Title,
		VideoURL:    p.VideoURL,
		VideoStatus: p.VideoStatus,
		Error:       p.Error,
	})
}
