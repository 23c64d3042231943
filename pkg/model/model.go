package model

import (
	"encoding/json"
)

// SlideType selects the layout used when rasterizing a slide.
type SlideType string

const (
	SlideTypeTitle   SlideType = "title"
	SlideTypeBullets SlideType = "bullets"
	SlideTypeQuote   SlideType = "quote"
)

// Slide is one content unit of a slide deck. Content carries the bullet
// strings for bullets-type slides and the body text (first element) for
// quote and unrecognized types.
type Slide struct {
	SlideType       SlideType  `json:"slide_type"`
	Title           string     `json:"title"`
	Subtitle        string     `json:"subtitle,omitempty"` // title-type only
	Content         StringList `json:"content,omitempty"`
	ImageSearch     string     `json:"image_search"`
	DurationSeconds float64    `json:"duration_seconds"`
}

// StringList accepts either a JSON string or an array of strings. Decks
// authored upstream use a bare string for quote and free-form slides.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = StringList(many)
	return nil
}

// Defaults applied when a request omits slide fields.
const (
	DefaultImageSearch   = "abstract"
	DefaultSlideDuration = 10.0
)

// Normalize fills in defaults for omitted fields.
func (s *Slide) Normalize() {
	if s.SlideType == "" {
		s.SlideType = SlideTypeBullets
	}
	if s.ImageSearch == "" {
		s.ImageSearch = DefaultImageSearch
	}
	if s.DurationSeconds <= 0 {
		s.DurationSeconds = DefaultSlideDuration
	}
}

// DialogueTurn is one speaker-attributed line sent to audio synthesis.
// The core passes turns through to the TTS collaborator untouched.
type DialogueTurn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Script is a generated episode: the slide deck and the dialogue narrating it.
type Script struct {
	Title    string         `json:"title"`
	Slides   []Slide        `json:"slides"`
	Dialogue []DialogueTurn `json:"dialogue"`
}

// VideoJob is the unit of work for the pipeline: an ordered slide deck, an
// audio source, and the podcast id used for output naming and status updates.
type VideoJob struct {
	PodcastID string  `json:"podcast_id"`
	Slides    []Slide `json:"slides"`
	AudioURL  string  `json:"audio_url"`
}

// VideoResult is the terminal outcome of a VideoJob.
type VideoResult struct {
	Success   bool    `json:"success"`
	VideoURL  string  `json:"video_url,omitempty"`
	SizeMB    float64 `json:"size_mb,omitempty"`
	Error     string  `json:"error,omitempty"`
	Traceback string  `json:"traceback,omitempty"`
}
