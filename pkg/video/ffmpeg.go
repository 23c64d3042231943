// Package video assembles rendered frames and dialogue audio into an H.264
// MP4 using ffmpeg.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// Runner abstracts the ffmpeg binaries so the assembler can be tested
// without them installed.
type Runner interface {
	// Concat muxes the image sequence described by the concat list with the
	// audio track into outputPath.
	Concat(ctx context.Context, listPath, audioPath, outputPath string, frameRate int) error

	// Probe returns the duration in seconds of a media file.
	Probe(ctx context.Context, path string) (float64, error)
}

// ExecRunner shells out to the real ffmpeg/ffprobe binaries.
type ExecRunner struct {
	ffmpeg  string
	ffprobe string
}

// NewExecRunner creates a runner for the given binary names or paths.
// Empty values default to the binaries on PATH.
func NewExecRunner(ffmpeg, ffprobe string) *ExecRunner {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return &ExecRunner{ffmpeg: ffmpeg, ffprobe: ffprobe}
}

// Concat runs ffmpeg with the concat demuxer. -shortest trims the video to
// the audio track, absorbing sub-frame rounding drift in the schedule.
func (r *ExecRunner) Concat(ctx context.Context, listPath, audioPath, outputPath string, frameRate int) error {
	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-i", audioPath,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(frameRate),
		"-shortest",
		"-y",
		outputPath,
	}

	slog.Debug("Running ffmpeg", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, r.ffmpeg, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w: %s", err, tailOf(stderr.String()))
	}
	return nil
}

// Probe returns the container duration via ffprobe.
func (r *ExecRunner) Probe(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	}

	cmd := exec.CommandContext(ctx, r.ffprobe, args...)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var result struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		return 0, fmt.Errorf("ffprobe output parse: %w", err)
	}

	d, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration parse: %w", err)
	}
	return d, nil
}

// tailOf keeps the last few lines of ffmpeg stderr, where the actual error
// lives, instead of the full banner-heavy transcript.
func tailOf(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, " | ")
}
