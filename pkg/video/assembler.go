package video

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// Assembler turns scheduled frames plus an audio track into an MP4.
type Assembler struct {
	runner    Runner
	frameRate int
}

// NewAssembler creates an Assembler on top of a Runner.
func NewAssembler(runner Runner, frameRate int) *Assembler {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &Assembler{runner: runner, frameRate: frameRate}
}

// Assemble writes each frame as a PNG into workDir, builds a concat demuxer
// list pairing every frame with its scheduled duration, and muxes the result
// with the audio track into outputPath.
func (a *Assembler) Assemble(ctx context.Context, frames []image.Image, durations []float64, audioPath, workDir, outputPath string) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to assemble")
	}
	if len(frames) != len(durations) {
		return fmt.Errorf("frame/duration mismatch: %d frames, %d durations", len(frames), len(durations))
	}

	framePaths := make([]string, len(frames))
	for i, frame := range frames {
		path := filepath.Join(workDir, fmt.Sprintf("slide_%03d.png", i))
		if err := writePNG(path, frame); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		framePaths[i] = path
	}

	listPath := filepath.Join(workDir, "concat.txt")
	if err := os.WriteFile(listPath, []byte(concatList(framePaths, durations)), 0o644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}

	return a.runner.Concat(ctx, listPath, audioPath, outputPath, a.frameRate)
}

// concatList renders the ffmpeg concat demuxer input. The demuxer ignores the
// duration of the final entry, so the last file is repeated without one to
// make its scheduled duration stick.
func concatList(paths []string, durations []float64) string {
	var b strings.Builder
	for i, path := range paths {
		fmt.Fprintf(&b, "file '%s'\n", path)
		fmt.Fprintf(&b, "duration %.3f\n", durations[i])
	}
	fmt.Fprintf(&b, "file '%s'\n", paths[len(paths)-1])
	return b.String()
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	return nil
}
