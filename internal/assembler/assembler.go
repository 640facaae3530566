// Package assembler runs the per-job media pipeline: fetch remote assets,
// budget the duration across clips, concatenate, synthesize the audio
// track, and export the finished video.
package assembler

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/bobarin/vidstitch/internal/audio"
	"github.com/bobarin/vidstitch/internal/fetch"
	"github.com/bobarin/vidstitch/internal/media"
	"github.com/bobarin/vidstitch/internal/models"
	"github.com/bobarin/vidstitch/internal/timeline"
	"github.com/bobarin/vidstitch/internal/workspace"
)

// Stage identifies where in the pipeline a failure happened.
type Stage string

const (
	StageWorkspace Stage = "workspace"
	StageFetch     Stage = "fetch"
	StageProbe     Stage = "probe"
	StageTrim      Stage = "trim"
	StageConcat    Stage = "concat"
	StageAudio     Stage = "audio"
	StageExport    Stage = "export"
)

// Error wraps a pipeline failure with the stage it happened in.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("assembly failed at %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Request is the resolved input for one assembly job.
type Request struct {
	VideoURLs          []string
	BackgroundAudioURL string
	NarrationURL       string

	// NarrationPath points at an already uploaded narration file. It is
	// adopted into the job workspace and takes precedence over NarrationURL.
	NarrationPath string

	// MaxDuration is the output cap in seconds.
	MaxDuration float64
}

// FromModel maps the API payload onto the assembler's input.
func FromModel(req models.CombineRequest) Request {
	return Request{
		VideoURLs:          req.Videos,
		BackgroundAudioURL: req.BackgroundAudio,
		NarrationURL:       req.Narration,
		NarrationPath:      req.NarrationFile,
		MaxDuration:        float64(req.MaxDuration),
	}
}

// Assembler turns a combine request into a single exported video file.
// Each job gets its own workspace; the engine is driven strictly
// sequentially within a job, only the independent downloads overlap.
type Assembler struct {
	fetcher    *fetch.Fetcher
	engine     media.Engine
	synth      *audio.Synthesizer
	workRoot   string
	outputDir  string
	fetchLimit int
}

func New(fetcher *fetch.Fetcher, engine media.Engine, synth *audio.Synthesizer, workRoot, outputDir string, fetchConcurrency int) *Assembler {
	if fetchConcurrency < 1 {
		fetchConcurrency = 1
	}
	return &Assembler{
		fetcher:    fetcher,
		engine:     engine,
		synth:      synth,
		workRoot:   workRoot,
		outputDir:  outputDir,
		fetchLimit: fetchConcurrency,
	}
}

// OutputPath returns where the finished video for a job is exported.
func (a *Assembler) OutputPath(jobID string) string {
	return filepath.Join(a.outputDir, jobID+".mp4")
}

// Assemble runs the full pipeline for one job and returns the exported
// video path. The job workspace is released on every exit path, and a
// partial output file never survives a failure.
func (a *Assembler) Assemble(ctx context.Context, jobID string, req Request) (outPath string, err error) {
	if req.BackgroundAudioURL == "" && req.NarrationURL == "" && req.NarrationPath == "" {
		return "", &Error{Stage: StageAudio, Err: audio.ErrNoAudioSource}
	}

	ws, wsErr := workspace.Open(a.workRoot, jobID)
	if wsErr != nil {
		// An uploaded narration file has no workspace to be adopted into,
		// so it must be removed here or it outlives the job.
		if req.NarrationPath != "" {
			if rmErr := os.Remove(req.NarrationPath); rmErr != nil && !os.IsNotExist(rmErr) {
				log.Printf("[Assembler] Warning: failed to remove narration upload %s: %v", req.NarrationPath, rmErr)
			}
		}
		return "", &Error{Stage: StageWorkspace, Err: wsErr}
	}
	defer ws.Release()

	finalPath := a.OutputPath(jobID)
	defer func() {
		if err == nil {
			return
		}
		// The caller must never observe a truncated output file
		if rmErr := os.Remove(finalPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("[Assembler] Warning: failed to remove partial output %s: %v", finalPath, rmErr)
		}
	}()

	clips, bgPath, narrPath, err := a.fetchAssets(ctx, ws, req)
	if err != nil {
		return "", &Error{Stage: StageFetch, Err: err}
	}

	log.Printf("[Assembler] Job %s: %d clips fetched, probing durations...", jobID, len(clips))

	durations := make([]float64, len(clips))
	for i, clip := range clips {
		d, probeErr := a.engine.ProbeDuration(ctx, clip.Path)
		if probeErr != nil {
			return "", &Error{Stage: StageProbe, Err: probeErr}
		}
		durations[i] = d
	}

	plan := timeline.Plan(durations, req.MaxDuration)
	if len(plan) == 0 {
		return "", &Error{Stage: StageTrim, Err: fmt.Errorf("no clip content fits within the %gs budget", req.MaxDuration)}
	}

	log.Printf("[Assembler] Job %s: keeping %d/%d clips, %.1fs of %.1fs budget", jobID, len(plan), len(clips), timeline.Total(plan), req.MaxDuration)

	// Trim every kept clip to its allotment. This also normalizes the
	// heterogeneous sources to one codec so the concat step can stream-copy.
	segments := make([]string, len(plan))
	for i, keep := range plan {
		segment := ws.Path(fmt.Sprintf("segment_%03d.mp4", keep.Index))
		if trimErr := a.engine.TrimVideo(ctx, clips[keep.Index].Path, segment, keep.Duration); trimErr != nil {
			return "", &Error{Stage: StageTrim, Err: trimErr}
		}
		segments[i] = segment
	}

	concatPath := ws.Path("concat.mp4")
	if concatErr := a.engine.Concat(ctx, segments, concatPath); concatErr != nil {
		return "", &Error{Stage: StageConcat, Err: concatErr}
	}

	videoDur, probeErr := a.engine.ProbeDuration(ctx, concatPath)
	if probeErr != nil {
		return "", &Error{Stage: StageProbe, Err: probeErr}
	}

	// Floating-point accumulation across segments can push the concat
	// past the budget; hard-truncate the tail when it does.
	if videoDur > req.MaxDuration {
		capped := ws.Path("capped.mp4")
		if trimErr := a.engine.TrimVideo(ctx, concatPath, capped, req.MaxDuration); trimErr != nil {
			return "", &Error{Stage: StageTrim, Err: trimErr}
		}
		concatPath = capped
		videoDur = req.MaxDuration
	}

	audioPath, audioErr := a.synthesizeAudio(ctx, ws, bgPath, narrPath, videoDur)
	if audioErr != nil {
		return "", &Error{Stage: StageAudio, Err: audioErr}
	}

	log.Printf("[Assembler] Job %s: exporting %.1fs video to %s", jobID, videoDur, finalPath)

	if exportErr := a.engine.ReplaceAudio(ctx, concatPath, audioPath, finalPath, videoDur); exportErr != nil {
		return "", &Error{Stage: StageExport, Err: exportErr}
	}

	return finalPath, nil
}

// fetchAssets materializes every remote input inside the workspace. Clip
// downloads are independent I/O and run concurrently, bounded by the fetch
// limit; the audio sources join the same group. An uploaded narration file
// is adopted into the workspace instead of fetched.
func (a *Assembler) fetchAssets(ctx context.Context, ws *workspace.Workspace, req Request) (clips []*fetch.Asset, bgPath, narrPath string, err error) {
	clips = make([]*fetch.Asset, len(req.VideoURLs))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, a.fetchLimit)

	for i, rawURL := range req.VideoURLs {
		i, rawURL := i, rawURL
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			asset, fetchErr := a.fetcher.Fetch(gctx, rawURL, ws.Dir())
			if fetchErr != nil {
				return fetchErr
			}
			clips[i] = asset
			return nil
		})
	}

	if req.BackgroundAudioURL != "" {
		g.Go(func() error {
			asset, fetchErr := a.fetcher.Fetch(gctx, req.BackgroundAudioURL, ws.Dir())
			if fetchErr != nil {
				return fetchErr
			}
			bgPath = asset.Path
			return nil
		})
	}

	switch {
	case req.NarrationPath != "":
		adopted, adoptErr := ws.Adopt(req.NarrationPath)
		if adoptErr != nil {
			// Drain the group before reporting so no download outlives us
			gErr := g.Wait()
			if gErr != nil {
				return nil, "", "", gErr
			}
			return nil, "", "", adoptErr
		}
		narrPath = adopted
	case req.NarrationURL != "":
		g.Go(func() error {
			asset, fetchErr := a.fetcher.Fetch(gctx, req.NarrationURL, ws.Dir())
			if fetchErr != nil {
				return fetchErr
			}
			narrPath = asset.Path
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, "", "", err
	}

	return clips, bgPath, narrPath, nil
}

// synthesizeAudio probes whichever sources are present, plans the track,
// and renders it to exactly target seconds.
func (a *Assembler) synthesizeAudio(ctx context.Context, ws *workspace.Workspace, bgPath, narrPath string, target float64) (string, error) {
	var bgDur, narrDur *float64

	if bgPath != "" {
		d, err := a.engine.ProbeDuration(ctx, bgPath)
		if err != nil {
			return "", fmt.Errorf("failed to probe background audio: %w", err)
		}
		bgDur = &d
	}

	if narrPath != "" {
		d, err := a.engine.ProbeDuration(ctx, narrPath)
		if err != nil {
			return "", fmt.Errorf("failed to probe narration: %w", err)
		}
		narrDur = &d
	}

	plan, err := audio.BuildPlan(bgDur, narrDur, target)
	if err != nil {
		return "", err
	}

	return a.synth.Synthesize(ctx, plan, bgPath, narrPath, ws.Dir())
}
