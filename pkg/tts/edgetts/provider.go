// Package edgetts implements tts.Provider for Microsoft Edge's readaloud
// websocket service. Dialogue turns are synthesized one at a time and
// concatenated into a single stream.
package edgetts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"deckcast/pkg/config"
	"deckcast/pkg/model"
	"deckcast/pkg/tracker"
	"deckcast/pkg/tts"
)

// Well-known readaloud service constants, overridable via environment for
// testing or when Microsoft rotates them.
const (
	defaultBaseURL            = "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"
	defaultTrustedClientToken = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"
	defaultSecMSGecVersion    = "1-130.0.2849.68"
	defaultOrigin             = "chrome-extension://jdiccldimpdaibmpdkjnbmckianbfold"
	defaultUserAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36 Edg/130.0.0.0"
)

// voicePool is assigned to dialogue speakers in order of first appearance.
var voicePool = []string{
	"en-US-AvaMultilingualNeural",
	"en-US-AndrewMultilingualNeural",
	"en-GB-SoniaNeural",
	"fr-FR-VivienneNeural",
}

// Provider implements tts.Provider for Microsoft Edge TTS.
type Provider struct {
	cfg     config.EdgeTTSConfig
	tracker *tracker.Tracker
}

// NewProvider creates a new Edge TTS provider.
func NewProvider(cfg config.EdgeTTSConfig, t *tracker.Tracker) *Provider {
	return &Provider{cfg: cfg, tracker: t}
}

// SynthesizeDialogue renders each turn over its own websocket connection and
// appends the audio to one .mp3 file. MP3 frames concatenate cleanly, so the
// result plays as a continuous conversation.
func (p *Provider) SynthesizeDialogue(ctx context.Context, turns []model.DialogueTurn, outputPath string) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("dialogue is empty")
	}

	fullPath := outputPath
	if !strings.HasSuffix(strings.ToLower(fullPath), ".mp3") {
		fullPath += ".mp3"
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	voices := p.assignVoices(turns)
	for i, turn := range turns {
		if err := p.synthesizeTurn(ctx, voices[turn.Speaker], turn.Text, file); err != nil {
			if p.tracker != nil {
				p.tracker.TrackAPIFailure("edge-tts")
			}
			return "", fmt.Errorf("turn %d (%s): %w", i, turn.Speaker, err)
		}
	}

	if p.tracker != nil {
		p.tracker.TrackAPISuccess("edge-tts")
	}

	info, err := file.Stat()
	if err == nil && info.Size() < tts.MinAudioSize {
		return "", fmt.Errorf("synthesized audio too small (%d bytes)", info.Size())
	}

	slog.Info("Dialogue synthesized", "engine", "edge-tts", "turns", len(turns), "path", fullPath)
	return "mp3", nil
}

func (p *Provider) assignVoices(turns []model.DialogueTurn) map[string]string {
	pool := voicePool
	if p.cfg.VoiceID != "" {
		pool = append([]string{p.cfg.VoiceID}, voicePool...)
	}

	voices := make(map[string]string)
	next := 0
	for _, turn := range turns {
		if _, ok := voices[turn.Speaker]; !ok {
			voices[turn.Speaker] = pool[next%len(pool)]
			next++
		}
	}
	return voices
}

func (p *Provider) synthesizeTurn(ctx context.Context, voice, text string, file *os.File) error {
	text = tts.StripSpeakerLabels(text)

	conn, err := p.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := p.sendConfig(conn); err != nil {
		return err
	}

	requestID := strings.ReplaceAll(uuid.New().String(), "-", "")
	if err := p.sendSSML(conn, voice, text, requestID); err != nil {
		return err
	}

	return p.consumeResponses(ctx, conn, file)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (p *Provider) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Origin", envOr("EDGE_TTS_ORIGIN", defaultOrigin))
	header.Set("Pragma", "no-cache")
	header.Set("Cache-Control", "no-cache")
	header.Set("User-Agent", envOr("EDGE_TTS_USER_AGENT", defaultUserAgent))
	header.Set("Accept-Encoding", "gzip, deflate, br, zstd")
	header.Set("Accept-Language", "en-US,en;q=0.9")

	// MUID Cookie
	muid := strings.ReplaceAll(uuid.New().String(), "-", "")
	header.Set("Cookie", fmt.Sprintf("muid=%s", muid))

	trustedClientToken := envOr("EDGE_TTS_TRUSTED_CLIENT_TOKEN", defaultTrustedClientToken)
	token := p.generateSecMSGec(trustedClientToken)
	version := envOr("EDGE_TTS_SEC_MS_GEC_VERSION", defaultSecMSGecVersion)
	baseURL := envOr("EDGE_TTS_BASE_URL", defaultBaseURL)

	url := fmt.Sprintf("%s?TrustedClientToken=%s&Sec-MS-GEC=%s&Sec-MS-GEC-Version=%s",
		baseURL, trustedClientToken, token, version)

	var conn *websocket.Conn
	var dialErr error
	for i := 0; i < 3; i++ {
		var resp *http.Response
		conn, resp, dialErr = websocket.DefaultDialer.DialContext(ctx, url, header)
		if dialErr == nil {
			return conn, nil
		}
		if resp != nil {
			slog.Warn("EdgeTTS: specific handshake failure", "status", resp.Status, "status_code", resp.StatusCode)
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("websocket dial failed after retries: %w", dialErr)
}

func (p *Provider) generateSecMSGec(trustedClientToken string) string {
	// ticks = unix_timestamp + 11644473600, floored to 5 minutes, in 100ns units
	nowSec := float64(time.Now().Unix())

	ticks := nowSec + 11644473600
	ticks -= float64(int64(ticks) % 300)
	ticks *= 1e7

	strToHash := fmt.Sprintf("%.0f%s", ticks, trustedClientToken)

	hash := sha256.Sum256([]byte(strToHash))
	return strings.ToUpper(hex.EncodeToString(hash[:]))
}

func (p *Provider) sendConfig(conn *websocket.Conn) error {
	configMsg := "Content-Type:application/json; charset=utf-8\r\nPath:speech.config\r\n\r\n{\"context\":{\"synthesis\":{\"audio\":{\"metadataoptions\":{\"sentenceBoundaryEnabled\":\"false\",\"wordBoundaryEnabled\":\"false\"},\"outputFormat\":\"audio-24khz-48kbitrate-mono-mp3\"}}}}"
	if err := conn.WriteMessage(websocket.TextMessage, []byte(configMsg)); err != nil {
		return fmt.Errorf("failed to send speech.config: %w", err)
	}
	return nil
}

func (p *Provider) sendSSML(conn *websocket.Conn, voice, text, requestID string) error {
	ssml := buildSSML(voice, text)
	tts.Log("EDGETTS", ssml, 0, nil)

	ssmlMsg := fmt.Sprintf("X-RequestId:%s\r\nContent-Type:application/ssml+xml\r\nPath:ssml\r\n\r\n%s", requestID, ssml)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(ssmlMsg)); err != nil {
		return fmt.Errorf("failed to send ssml: %w", err)
	}
	return nil
}

func buildSSML(voice, text string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	)
	escapedText := replacer.Replace(text)
	return fmt.Sprintf("<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'><voice name='%s'>%s</voice></speak>", voice, escapedText)
}

// readTimeout bounds the wait for a single websocket frame. Audio frames
// stream steadily during synthesis, so a quiet connection is a dead one.
const readTimeout = 30 * time.Second

func (p *Provider) consumeResponses(ctx context.Context, conn *websocket.Conn, file *os.File) error {
	// ReadMessage has no context support, so a watcher closes the connection
	// on cancellation to unblock it.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return fmt.Errorf("set read deadline failed: %w", err)
		}

		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read message failed: %w", err)
		}

		if msgType == websocket.TextMessage {
			if strings.Contains(string(data), "Path:turn.end") {
				return nil
			}
		} else if msgType == websocket.BinaryMessage {
			if err := p.handleBinaryMessage(data, file); err != nil {
				return err
			}
		}
	}
}

func (p *Provider) handleBinaryMessage(data []byte, file *os.File) error {
	if len(data) < 2 {
		return nil
	}
	headerLength := int(uint16(data[0])<<8 | uint16(data[1]))
	if len(data) < 2+headerLength {
		return nil
	}
	audioData := data[2+headerLength:]
	if len(audioData) > 0 {
		if _, err := file.Write(audioData); err != nil {
			return fmt.Errorf("write audio data failed: %w", err)
		}
	}
	return nil
}

// Voices returns a list of high-quality neural voices.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{ID: "en-US-AvaMultilingualNeural", Name: "Ava (Multilingual)", Language: "en-US", IsNeural: true},
		{ID: "en-US-AndrewMultilingualNeural", Name: "Andrew (Multilingual)", Language: "en-US", IsNeural: true},
		{ID: "en-GB-SoniaNeural", Name: "Sonia (UK)", Language: "en-GB", IsNeural: true},
		{ID: "fr-FR-VivienneNeural", Name: "Vivienne (France)", Language: "fr-FR", IsNeural: true},
		{ID: "de-DE-SeraphinaNeural", Name: "Seraphina (Germany)", Language: "de-DE", IsNeural: true},
	}, nil
}
