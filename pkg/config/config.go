package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Request     RequestConfig     `yaml:"request"`
	TTS         TTSConfig         `yaml:"tts"`
	ImageSearch ImageSearchConfig `yaml:"image_search"`
	Storage     StorageConfig     `yaml:"storage"`
	DB          DBConfig          `yaml:"db"`
	Video       VideoConfig       `yaml:"video"`
	LLM         LLMConfig         `yaml:"llm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// RequestConfig holds outbound HTTP request settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// ElevenLabsConfig holds settings for the ElevenLabs dialogue API.
type ElevenLabsConfig struct {
	Key     string `yaml:"key"`      // API Key
	BaseURL string `yaml:"base_url"` // Override for testing
	Model   string `yaml:"model"`    // e.g. "eleven_v3"
}

// EdgeTTSConfig holds settings for the websocket Edge TTS provider.
type EdgeTTSConfig struct {
	VoiceID string `yaml:"voice"` // e.g. "en-US-AvaMultilingualNeural"
}

// TTSConfig holds Text-To-Speech settings.
type TTSConfig struct {
	Engine     string           `yaml:"engine"` // "elevenlabs", "edge-tts"
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	EdgeTTS    EdgeTTSConfig    `yaml:"edge_tts"`
}

// ImageSearchConfig holds settings for the background image search API.
type ImageSearchConfig struct {
	Key     string `yaml:"key"`      // Unsplash access key
	BaseURL string `yaml:"base_url"` // Override for testing
}

// StorageConfig holds settings for the object storage collaborator.
type StorageConfig struct {
	URL    string `yaml:"url"`    // Project base URL
	Key    string `yaml:"key"`    // Service key
	Bucket string `yaml:"bucket"` // e.g. "podcast-audio"
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// VideoConfig holds video rendering and assembly settings.
type VideoConfig struct {
	FrameRate int    `yaml:"frame_rate"`
	FontDir   string `yaml:"font_dir"` // Optional truetype font directory
	FFmpeg    string `yaml:"ffmpeg"`   // ffmpeg binary, default "ffmpeg"
	FFprobe   string `yaml:"ffprobe"`  // ffprobe binary, default "ffprobe"
	WorkDir   string `yaml:"work_dir"` // Base for per-job temp dirs ("" = os temp)
}

// LLMConfig holds settings for the script generation model.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "gemini", "mock"
	Model    string `yaml:"model"`    // e.g. "gemini-2.0-flash"
	Key      string `yaml:"key"`      // API Key
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8787",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(60 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(30 * time.Second),
			},
		},
		TTS: TTSConfig{
			Engine: "elevenlabs",
			ElevenLabs: ElevenLabsConfig{
				Model: "eleven_v3",
			},
			EdgeTTS: EdgeTTSConfig{
				VoiceID: "en-US-AvaMultilingualNeural",
			},
		},
		Storage: StorageConfig{
			Bucket: "podcast-audio",
		},
		DB: DBConfig{
			Path: "./data/deckcast.db",
		},
		Video: VideoConfig{
			FrameRate: 30,
			FFmpeg:    "ffmpeg",
			FFprobe:   "ffprobe",
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		applyEnvFallbacks(cfg)
		return cfg, nil
	}

	// If file does not exist, save defaults
	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnvFallbacks(cfg)
	return cfg, nil
}

// applyEnvFallbacks fills empty secrets from the environment.
// Keys are never written back to the config file.
func applyEnvFallbacks(cfg *Config) {
	if cfg.TTS.ElevenLabs.Key == "" {
		cfg.TTS.ElevenLabs.Key = os.Getenv("ELEVENLABS_API_KEY")
	}
	if cfg.ImageSearch.Key == "" {
		cfg.ImageSearch.Key = os.Getenv("UNSPLASH_ACCESS_KEY")
	}
	if cfg.Storage.URL == "" {
		cfg.Storage.URL = os.Getenv("SUPABASE_URL")
	}
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = os.Getenv("SUPABASE_SERVICE_KEY")
	}
	if cfg.LLM.Key == "" {
		cfg.LLM.Key = os.Getenv("GEMINI_API_KEY")
	}
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Deckcast Configuration
# ---------------------
# API keys may be left empty here and provided via environment variables:
#   ELEVENLABS_API_KEY, UNSPLASH_ACCESS_KEY, SUPABASE_URL,
#   SUPABASE_SERVICE_KEY, GEMINI_API_KEY

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
