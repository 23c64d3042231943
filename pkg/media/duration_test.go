package media

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWAV writes a silent 16-bit mono PCM WAV file of the given length.
func writeWAV(t *testing.T, path string, sampleRate int, d time.Duration) {
	t.Helper()

	numSamples := int(float64(sampleRate) * d.Seconds())
	dataSize := numSamples * 2 // 16-bit mono

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))            // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))           // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestAudioDurationWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeWAV(t, path, 8000, 2*time.Second)

	d, err := AudioDuration(path)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d.Seconds(), 0.05)
}

func TestAudioDurationFractional(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.wav")
	writeWAV(t, path, 44100, 1500*time.Millisecond)

	d, err := AudioDuration(path)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, d.Seconds(), 0.05)
}

func TestAudioDurationMissingFile(t *testing.T) {
	_, err := AudioDuration(filepath.Join(t.TempDir(), "nope.mp3"))
	assert.Error(t, err)
}

func TestAudioDurationGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.mp3")
	require.NoError(t, os.WriteFile(path, []byte("definitely not audio"), 0o644))

	_, err := AudioDuration(path)
	assert.Error(t, err)
}
