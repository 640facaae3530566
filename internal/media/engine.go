// Package media is the boundary to the external media-processing engine.
// The assembler drives it with probe/trim/concatenate/mix/export operations
// and never reaches into pixels or samples itself.
package media

import "context"

// Engine is the set of operations the pipeline needs from a media backend.
// Implementations are not assumed reentrant for a single job: callers keep
// trim, concatenation and export strictly sequential per job.
type Engine interface {
	// ProbeDuration returns the duration of a media file in seconds.
	ProbeDuration(ctx context.Context, path string) (float64, error)

	// TrimVideo writes the first duration seconds of the input video,
	// re-encoded to the engine's uniform output codec so trimmed segments
	// can later be concatenated without another encode pass.
	TrimVideo(ctx context.Context, inputPath, outputPath string, duration float64) error

	// Concat joins the inputs back to back with hard cuts, in order.
	Concat(ctx context.Context, inputPaths []string, outputPath string) error

	// LoopAudio repeats the input from the start, concatenating copies and
	// trimming the final one, until the output is exactly duration seconds.
	LoopAudio(ctx context.Context, inputPath, outputPath string, duration float64) error

	// TrimAudio writes the first duration seconds of the input audio.
	TrimAudio(ctx context.Context, inputPath, outputPath string, duration float64) error

	// MixAudio lays musicPath under voicePath at musicVolume (0..1, voice
	// stays at full volume) and writes duration seconds of the additive mix.
	MixAudio(ctx context.Context, voicePath, musicPath, outputPath string, musicVolume, duration float64) error

	// ReplaceAudio attaches audioPath as the video's sole audio track,
	// discarding any audio embedded in the video, and exports duration
	// seconds to outputPath in a standard playback container.
	ReplaceAudio(ctx context.Context, videoPath, audioPath, outputPath string, duration float64) error
}
