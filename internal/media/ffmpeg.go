package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// FFmpegEngine implements Engine by shelling out to ffmpeg/ffprobe.
type FFmpegEngine struct{}

func NewFFmpegEngine() *FFmpegEngine {
	return &FFmpegEngine{}
}

func (e *FFmpegEngine) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// ProbeDuration returns the duration of a media file in seconds using ffprobe.
func (e *FFmpegEngine) ProbeDuration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	cmd := exec.CommandContext(ctx, "ffprobe", args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	var durationSec float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(output)), "%f", &durationSec); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return durationSec, nil
}

// TrimVideo keeps the first duration seconds of the input. The segment is
// re-encoded with the uniform output codec (h264/aac) so heterogeneous
// source clips all come out concat-compatible.
func (e *FFmpegEngine) TrimVideo(ctx context.Context, inputPath, outputPath string, duration float64) error {
	args := []string{
		"-i", inputPath,
		"-t", formatSeconds(duration),
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:a", "192k",
		"-pix_fmt", "yuv420p",
		"-y",
		outputPath,
	}

	if err := e.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg trim failed: %w", err)
	}

	return nil
}

// Concat combines the inputs into one continuous video with hard cuts,
// via the concat demuxer. Inputs must share codec parameters, which
// TrimVideo guarantees for segments it produced.
func (e *FFmpegEngine) Concat(ctx context.Context, inputPaths []string, outputPath string) error {
	if len(inputPaths) == 0 {
		return fmt.Errorf("no clips to concatenate")
	}

	// Concat list file next to the output, removed when ffmpeg is done
	listPath := outputPath + ".list.txt"
	f, err := os.Create(listPath)
	if err != nil {
		return fmt.Errorf("failed to create concat list: %w", err)
	}

	for _, path := range inputPaths {
		fmt.Fprintf(f, "file '%s'\n", path)
	}
	f.Close()
	defer os.Remove(listPath)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y",
		outputPath,
	}

	if err := e.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg concatenate failed: %w", err)
	}

	return nil
}

// LoopAudio repeats the input from its start until duration seconds are
// covered, trimming whatever sticks out of the last copy.
func (e *FFmpegEngine) LoopAudio(ctx context.Context, inputPath, outputPath string, duration float64) error {
	args := []string{
		"-stream_loop", "-1",
		"-i", inputPath,
		"-t", formatSeconds(duration),
		"-c:a", "aac",
		"-b:a", "192k",
		"-y",
		outputPath,
	}

	if err := e.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg loop audio failed: %w", err)
	}

	return nil
}

// TrimAudio keeps the first duration seconds of the input audio.
func (e *FFmpegEngine) TrimAudio(ctx context.Context, inputPath, outputPath string, duration float64) error {
	args := []string{
		"-i", inputPath,
		"-t", formatSeconds(duration),
		"-c:a", "aac",
		"-b:a", "192k",
		"-y",
		outputPath,
	}

	if err := e.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg trim audio failed: %w", err)
	}

	return nil
}

// MixAudio mixes the music track under the voice track.
//
// [0:a] = voice, kept at full volume
// [1:a] = music, attenuated to musicVolume
// amix with normalize=0 keeps the mix additive so the voice is not
// scaled down by the number of inputs; duration=longest plus -t cuts
// the mix to exactly the requested length.
func (e *FFmpegEngine) MixAudio(ctx context.Context, voicePath, musicPath, outputPath string, musicVolume, duration float64) error {
	filterComplex := fmt.Sprintf(
		"[0:a]volume=1.0[voice];[1:a]volume=%.2f[music];[voice][music]amix=inputs=2:duration=longest:normalize=0[aout]",
		musicVolume,
	)

	args := []string{
		"-i", voicePath,
		"-i", musicPath,
		"-filter_complex", filterComplex,
		"-map", "[aout]",
		"-c:a", "aac",
		"-b:a", "192k",
		"-t", formatSeconds(duration),
		"-y",
		outputPath,
	}

	if err := e.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg mix audio failed: %w", err)
	}

	return nil
}

// ReplaceAudio attaches the synthesized track as the video's sole audio
// channel, discarding any audio the source clips carried. The video stream
// is copied without re-encoding; apad fills trailing silence when the audio
// track is shorter than the video.
func (e *FFmpegEngine) ReplaceAudio(ctx context.Context, videoPath, audioPath, outputPath string, duration float64) error {
	args := []string{
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-af", "apad",
		"-t", formatSeconds(duration),
		"-y",
		outputPath,
	}

	if err := e.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg replace audio failed: %w", err)
	}

	return nil
}

func formatSeconds(d float64) string {
	return fmt.Sprintf("%.3f", d)
}
