package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckcast/pkg/model"
	"deckcast/pkg/store"
	"deckcast/pkg/tracker"
)

type mockRunner struct {
	job    *model.VideoJob
	result model.VideoResult
}

func (m *mockRunner) Run(ctx context.Context, job *model.VideoJob) model.VideoResult {
	m.job = job
	return m.result
}

type mockSynth struct {
	turns []model.DialogueTurn
	err   error
}

func (m *mockSynth) SynthesizeDialogue(ctx context.Context, turns []model.DialogueTurn, outputPath string) (string, error) {
	m.turns = turns
	if m.err != nil {
		return "", m.err
	}
	if err := os.WriteFile(outputPath, []byte("mp3-bytes"), 0o644); err != nil {
		return "", err
	}
	return "mp3", nil
}

type mockUploader struct {
	filename string
	err      error
}

func (m *mockUploader) Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	m.filename = filename
	if m.err != nil {
		return "", m.err
	}
	return "https://cdn.example.com/" + filename, nil
}

type mockScripts struct {
	script *model.Script
	err    error
}

func (m *mockScripts) Generate(ctx context.Context, topic, description string) (*model.Script, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.script, nil
}

type mockPodcasts struct {
	record *store.Podcast
	err    error
}

func (m *mockPodcasts) GetPodcast(ctx context.Context, id string) (*store.Podcast, error) {
	return m.record, m.err
}

func (m *mockPodcasts) UpdateVideoStatus(ctx context.Context, id, videoURL, status, errMsg string) error {
	return nil
}

func testServer(runner *mockRunner, synth *mockSynth, up *mockUploader, scripts ScriptGenerator, pods *mockPodcasts) *httptest.Server {
	h := NewPodcastHandler(runner, synth, up, scripts, pods)
	srv := NewServer(":0", h, NewStatsHandler(tracker.New()), func() {})
	return httptest.NewServer(srv.Handler)
}

func TestHandleGenerateVideo(t *testing.T) {
	runner := &mockRunner{result: model.VideoResult{Success: true, VideoURL: "https://cdn/x.mp4", SizeMB: 1.5}}
	srv := testServer(runner, &mockSynth{}, &mockUploader{}, &mockScripts{}, &mockPodcasts{})
	defer srv.Close()

	body := `{"podcast_id":"ep1","audio_url":"http://a/x.mp3","slides":[{"slide_type":"title","title":"Hi"}]}`
	resp, err := http.Post(srv.URL+"/api/generate-video", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.VideoResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, "https://cdn/x.mp4", result.VideoURL)

	require.NotNil(t, runner.job)
	assert.Equal(t, "ep1", runner.job.PodcastID)
	require.Len(t, runner.job.Slides, 1)
	assert.Equal(t, model.SlideTypeTitle, runner.job.Slides[0].SlideType)
}

func TestHandleGenerateVideoFailureEnvelope(t *testing.T) {
	runner := &mockRunner{result: model.VideoResult{Success: false, Error: "assembly: boom", Traceback: "stack"}}
	srv := testServer(runner, &mockSynth{}, &mockUploader{}, &mockScripts{}, &mockPodcasts{})
	defer srv.Close()

	body := `{"podcast_id":"ep1","audio_url":"http://a/x.mp3","slides":[{}]}`
	resp, err := http.Post(srv.URL+"/api/generate-video", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	// Terminal job failures still travel in a 200 envelope
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.VideoResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Success)
	assert.Equal(t, "assembly: boom", result.Error)
	assert.NotEmpty(t, result.Traceback)
}

func TestHandleGenerateVideoBadJSON(t *testing.T) {
	srv := testServer(&mockRunner{}, &mockSynth{}, &mockUploader{}, &mockScripts{}, &mockPodcasts{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/generate-video", "application/json", strings.NewReader("{broken"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleGenerateDialogue(t *testing.T) {
	synth := &mockSynth{}
	up := &mockUploader{}
	srv := testServer(&mockRunner{}, synth, up, &mockScripts{}, &mockPodcasts{})
	defer srv.Close()

	body := `{"podcast_id":"ep1","dialogue":[{"speaker":"Host","text":"hello"},{"speaker":"Guest","text":"hi"}]}`
	resp, err := http.Post(srv.URL+"/api/generate-dialogue", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out DialogueResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
	assert.Equal(t, "https://cdn.example.com/podcast_ep1.mp3", out.AudioURL)
	assert.Equal(t, len("mp3-bytes"), out.SizeBytes)

	require.Len(t, synth.turns, 2)
	assert.Equal(t, "Host", synth.turns[0].Speaker)
	assert.Equal(t, "podcast_ep1.mp3", up.filename)
}

func TestHandleGenerateDialogueMissingFields(t *testing.T) {
	srv := testServer(&mockRunner{}, &mockSynth{}, &mockUploader{}, &mockScripts{}, &mockPodcasts{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/generate-dialogue", "application/json", strings.NewReader(`{"podcast_id":"ep1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleGenerateDialogueSynthesisError(t *testing.T) {
	synth := &mockSynth{err: errors.New("voice service down")}
	srv := testServer(&mockRunner{}, synth, &mockUploader{}, &mockScripts{}, &mockPodcasts{})
	defer srv.Close()

	body := `{"podcast_id":"ep1","dialogue":[{"speaker":"A","text":"x"}]}`
	resp, err := http.Post(srv.URL+"/api/generate-dialogue", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var out errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "voice service down")
}

func TestHandleGenerateScript(t *testing.T) {
	scripts := &mockScripts{script: &model.Script{
		Title:    "Coffee",
		Slides:   []model.Slide{{SlideType: model.SlideTypeTitle, Title: "Coffee"}},
		Dialogue: []model.DialogueTurn{{Speaker: "Host", Text: "hi"}},
	}}
	srv := testServer(&mockRunner{}, &mockSynth{}, &mockUploader{}, scripts, &mockPodcasts{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/generate-script", "application/json", strings.NewReader(`{"topic":"coffee"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out ScriptResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
	require.NotNil(t, out.Script)
	assert.Equal(t, "Coffee", out.Script.Title)
}

func TestHandleGenerateScriptUnconfigured(t *testing.T) {
	srv := testServer(&mockRunner{}, &mockSynth{}, &mockUploader{}, nil, &mockPodcasts{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/generate-script", "application/json", strings.NewReader(`{"topic":"coffee"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandleGetPodcast(t *testing.T) {
	pods := &mockPodcasts{record: &store.Podcast{
		ID:          "ep1",
		Title:       "Coffee",
		VideoURL:    "https://cdn/x.mp4",
		VideoStatus: store.StatusReady,
	}}
	srv := testServer(&mockRunner{}, &mockSynth{}, &mockUploader{}, &mockScripts{}, pods)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/podcasts/ep1")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out PodcastResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ep1", out.ID)
	assert.Equal(t, store.StatusReady, out.VideoStatus)
}

func TestHandleGetPodcastNotFound(t *testing.T) {
	srv := testServer(&mockRunner{}, &mockSynth{}, &mockUploader{}, &mockScripts{}, &mockPodcasts{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/podcasts/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndVersion(t *testing.T) {
	srv := testServer(&mockRunner{}, &mockSynth{}, &mockUploader{}, &mockScripts{}, &mockPodcasts{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/version")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out["version"])
}
