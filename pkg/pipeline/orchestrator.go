package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"deckcast/pkg/media"
	"deckcast/pkg/model"
	"deckcast/pkg/render"
	"deckcast/pkg/request"
	"deckcast/pkg/schedule"
	"deckcast/pkg/store"
	"deckcast/pkg/tracker"
	"deckcast/pkg/tts"
	"deckcast/pkg/video"
)

// Orchestrator runs video jobs end to end. All collaborators are injected so
// tests can run the whole pipeline against fakes.
type Orchestrator struct {
	backgrounds *render.BackgroundResolver
	renderer    *render.Renderer
	assembler   *video.Assembler
	uploader    Uploader
	podcasts    store.PodcastStore
	client      *request.Client
	tracker     *tracker.Tracker
	workBase    string

	// audioDuration is swappable in tests to avoid real codec fixtures.
	audioDuration func(path string) (time.Duration, error)
}

// Uploader stores the finished video and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error)
}

// New creates an Orchestrator.
func New(
	backgrounds *render.BackgroundResolver,
	renderer *render.Renderer,
	assembler *video.Assembler,
	uploader Uploader,
	podcasts store.PodcastStore,
	client *request.Client,
	trk *tracker.Tracker,
	workBase string,
) *Orchestrator {
	return &Orchestrator{
		backgrounds:   backgrounds,
		renderer:      renderer,
		assembler:     assembler,
		uploader:      uploader,
		podcasts:      podcasts,
		client:        client,
		tracker:       trk,
		workBase:      workBase,
		audioDuration: media.AudioDuration,
	}
}

// Run executes one job and always returns a terminal result. Failures are
// reported in the result rather than as an error return, mirroring the
// success/error envelope the API sends back.
func (o *Orchestrator) Run(ctx context.Context, job *model.VideoJob) model.VideoResult {
	start := time.Now()

	videoURL, sizeMB, err := o.run(ctx, job)
	if err != nil {
		slog.Error("Video job failed", "podcast_id", job.PodcastID, "stage", StageOf(err), "error", err, "elapsed", time.Since(start))
		if o.tracker != nil {
			o.tracker.TrackJob(false)
		}
		// An invalid request is rejected before anything ran, so there is
		// nothing to record; only jobs that got past validation mark the row.
		if StageOf(err) != StageInput {
			o.markFailed(ctx, job.PodcastID, err)
		}
		return model.VideoResult{
			Success:   false,
			Error:     envelopeMessage(err),
			Traceback: string(debug.Stack()),
		}
	}

	slog.Info("Video job complete", "podcast_id", job.PodcastID, "video_url", videoURL, "size_mb", sizeMB, "elapsed", time.Since(start))
	if o.tracker != nil {
		o.tracker.TrackJob(true)
	}
	return model.VideoResult{
		Success:  true,
		VideoURL: videoURL,
		SizeMB:   sizeMB,
	}
}

func (o *Orchestrator) run(ctx context.Context, job *model.VideoJob) (string, float64, error) {
	if err := validate(job); err != nil {
		return "", 0, err
	}

	workDir, err := os.MkdirTemp(o.workBase, "deckcast_job_*")
	if err != nil {
		return "", 0, stageErrf(StageAssembly, "failed to create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Audio first: its length drives the whole schedule, and a dead audio
	// URL should fail the job before any rendering happens.
	audioPath, audioSeconds, err := o.fetchAudio(ctx, job.AudioURL, workDir)
	if err != nil {
		return "", 0, err
	}

	frames, nominal := o.renderSlides(ctx, job.Slides)

	durations, err := schedule.Fit(nominal, audioSeconds)
	if err != nil {
		return "", 0, stageErr(StageSchedule, err)
	}

	outputPath := filepath.Join(workDir, fmt.Sprintf("podcast_%s.mp4", job.PodcastID))
	if err := o.assembler.Assemble(ctx, frames, durations, audioPath, workDir, outputPath); err != nil {
		return "", 0, stageErr(StageAssembly, err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return "", 0, stageErrf(StageAssembly, "failed to read output: %w", err)
	}

	filename := fmt.Sprintf("podcast_%s.mp4", job.PodcastID)
	videoURL, err := o.uploader.Upload(ctx, filename, data, "video/mp4")
	if err != nil {
		return "", 0, stageErr(StageUpload, err)
	}

	if err := o.podcasts.UpdateVideoStatus(ctx, job.PodcastID, videoURL, store.StatusReady, ""); err != nil {
		return "", 0, stageErrf(StageUpload, "status update: %w", err)
	}

	sizeMB := math.Round(float64(len(data))/1024/1024*100) / 100
	return videoURL, sizeMB, nil
}

func validate(job *model.VideoJob) error {
	if job.PodcastID == "" || job.AudioURL == "" || len(job.Slides) == 0 {
		return stageErr(StageInput, ErrMissingFields)
	}
	return nil
}

// fetchAudio downloads the dialogue track and measures its length.
func (o *Orchestrator) fetchAudio(ctx context.Context, audioURL, workDir string) (string, float64, error) {
	data, err := o.client.Get(ctx, audioURL, "")
	if err != nil {
		return "", 0, stageErrf(StageAudio, "audio download: %w", err)
	}

	audioPath := filepath.Join(workDir, "audio.mp3")
	if err := os.WriteFile(audioPath, data, 0o644); err != nil {
		return "", 0, stageErrf(StageAudio, "audio write: %w", err)
	}
	if err := tts.VerifyAudioFile(audioPath); err != nil {
		return "", 0, stageErr(StageAudio, err)
	}

	d, err := o.audioDuration(audioPath)
	if err != nil {
		return "", 0, stageErrf(StageAudio, "audio duration: %w", err)
	}
	return audioPath, d.Seconds(), nil
}

// renderSlides produces one frame per slide plus the nominal durations the
// scheduler scales. Background trouble degrades to solid color inside the
// resolver, so this step never fails the job.
func (o *Orchestrator) renderSlides(ctx context.Context, slides []model.Slide) ([]image.Image, []float64) {
	frames := make([]image.Image, len(slides))
	nominal := make([]float64, len(slides))

	for i := range slides {
		slide := slides[i]
		slide.Normalize()

		bg := o.backgrounds.Resolve(ctx, slide.ImageSearch)
		frames[i] = o.renderer.Render(&slide, bg)
		nominal[i] = slide.DurationSeconds
	}
	return frames, nominal
}

// markFailed best-effort records the failure so the owning row doesn't stay
// in a processing state forever. Skipped when the job never identified a
// podcast row to update.
func (o *Orchestrator) markFailed(ctx context.Context, podcastID string, jobErr error) {
	if podcastID == "" || o.podcasts == nil {
		return
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := o.podcasts.UpdateVideoStatus(wctx, podcastID, "", store.StatusFailed, jobErr.Error()); err != nil {
		slog.Error("Failed to record job failure", "podcast_id", podcastID, "error", err)
	}
}
