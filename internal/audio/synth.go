package audio

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bobarin/vidstitch/internal/media"
)

// Synthesizer renders audio plans by driving the media engine. All
// intermediate files land in the caller's workspace directory.
type Synthesizer struct {
	engine media.Engine
}

func NewSynthesizer(engine media.Engine) *Synthesizer {
	return &Synthesizer{engine: engine}
}

// Synthesize produces the final audio file for the plan in workDir and
// returns its path. Ducking is volume-only: the mix never changes the
// background's own loop/trim result.
func (s *Synthesizer) Synthesize(ctx context.Context, plan *Plan, backgroundPath, narrationPath, workDir string) (string, error) {
	var bgPath, voicePath string

	if plan.Background != nil {
		bgPath = backgroundPath
		if plan.Background.Loop {
			out := filepath.Join(workDir, "background_looped.m4a")
			if err := s.engine.LoopAudio(ctx, bgPath, out, plan.Target); err != nil {
				return "", fmt.Errorf("failed to loop background: %w", err)
			}
			bgPath = out
		} else {
			out := filepath.Join(workDir, "background_trimmed.m4a")
			if err := s.engine.TrimAudio(ctx, bgPath, out, plan.Background.TrimTo); err != nil {
				return "", fmt.Errorf("failed to trim background: %w", err)
			}
			bgPath = out
		}
	}

	if plan.Narration != nil {
		voicePath = narrationPath
		if plan.Narration.TrimTo > 0 {
			out := filepath.Join(workDir, "narration_trimmed.m4a")
			if err := s.engine.TrimAudio(ctx, voicePath, out, plan.Narration.TrimTo); err != nil {
				return "", fmt.Errorf("failed to trim narration: %w", err)
			}
			voicePath = out
		}
	}

	switch {
	case plan.Mixed():
		out := filepath.Join(workDir, "audio_mix.m4a")
		if err := s.engine.MixAudio(ctx, voicePath, bgPath, out, plan.BackgroundVolume, plan.Target); err != nil {
			return "", fmt.Errorf("failed to mix audio: %w", err)
		}
		return out, nil
	case bgPath != "":
		return bgPath, nil
	default:
		return voicePath, nil
	}
}
