// Package media inspects downloaded audio files.
package media

import (
	"log/slog"
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// AudioDuration returns the playable length of the audio file at path.
// The schedule for the whole video hangs off this number, so a decode
// failure is a hard error, not something to guess around.
func AudioDuration(path string) (time.Duration, error) {
	streamer, format, err := decodeStreamer(path)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

func decodeStreamer(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("Failed to open audio file", "path", path, "error", err)
		return nil, beep.Format{}, err
	}

	// Try MP3 first
	streamer, format, err := mp3.Decode(f)
	if err == nil {
		return streamer, format, nil
	}

	// Reopen file for WAV attempt (MP3 decode failure might leave file state uncertain)
	f.Close()
	f, err = os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	defer func() {
		if err != nil {
			f.Close()
		}
	}()

	streamer, format, err = wav.Decode(f)
	if err != nil {
		slog.Error("Failed to decode audio file", "path", path, "error", err)
		return nil, beep.Format{}, err
	}

	return streamer, format, nil
}
