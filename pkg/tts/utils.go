package tts

import (
	"fmt"
	"os"
	"regexp"
)

var speakerLabelRegex = regexp.MustCompile(`(?m)^[A-Za-z]+(\s*\([^)]+\))?:\s*`)

// StripSpeakerLabels removes speaker labels like "Luna:" or "Aria (female):" from scripts.
func StripSpeakerLabels(script string) string {
	return speakerLabelRegex.ReplaceAllString(script, "")
}

// VerifyAudioFile checks that the file at path exists and is plausibly real
// audio rather than a truncated or failed synthesis.
func VerifyAudioFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("audio file missing: %w", err)
	}
	if info.Size() < MinAudioSize {
		return fmt.Errorf("audio file too small: %d bytes (min %d)", info.Size(), MinAudioSize)
	}
	return nil
}
