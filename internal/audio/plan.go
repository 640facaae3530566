// Package audio builds the final audio track for an assembled video from
// a background track, a narration track, or both.
package audio

import "errors"

// ErrNoAudioSource means neither a background track nor a narration track
// was supplied. The request cannot produce any audio.
var ErrNoAudioSource = errors.New("no audio provided: supply background_audio or narration")

// DuckedBackgroundVolume is the fraction of its original amplitude the
// background track is attenuated to when narration is mixed on top.
const DuckedBackgroundVolume = 0.3

// Segment describes how one source track is fitted to the target duration.
type Segment struct {
	// SourceDuration is the probed length of the source in seconds.
	SourceDuration float64

	// Loop repeats the track from its start until the target is covered,
	// trimming the final copy. Only background tracks ever loop.
	Loop bool

	// TrimTo cuts the track to this many seconds from its start.
	// Zero means the track is used whole.
	TrimTo float64
}

// Plan captures how a single audio track of exactly Target seconds is
// produced from the available sources.
type Plan struct {
	Target     float64
	Background *Segment
	Narration  *Segment

	// BackgroundVolume is the amplitude applied to the background when it
	// is mixed under narration; 1.0 when the background plays alone.
	BackgroundVolume float64
}

// Mixed reports whether both sources are present and must be mixed.
func (p *Plan) Mixed() bool {
	return p.Background != nil && p.Narration != nil
}

// BuildPlan derives the synthesis plan from the probed source durations.
// Pass nil for a source that was not supplied.
//
// Background: looped up to and trimmed to exactly the target, or trimmed
// to the target when already long enough.
// Narration: trimmed when longer than the target, never looped — a short
// narration leaves silence for the remainder, since looped speech would
// be semantically wrong.
// Both: background ducked to DuckedBackgroundVolume under the narration.
func BuildPlan(backgroundDur, narrationDur *float64, target float64) (*Plan, error) {
	if backgroundDur == nil && narrationDur == nil {
		return nil, ErrNoAudioSource
	}

	plan := &Plan{Target: target, BackgroundVolume: 1.0}

	if backgroundDur != nil {
		plan.Background = &Segment{
			SourceDuration: *backgroundDur,
			Loop:           *backgroundDur < target,
			TrimTo:         target,
		}
	}

	if narrationDur != nil {
		seg := &Segment{SourceDuration: *narrationDur}
		if *narrationDur > target {
			seg.TrimTo = target
		}
		plan.Narration = seg
	}

	if plan.Mixed() {
		plan.BackgroundVolume = DuckedBackgroundVolume
	}

	return plan, nil
}
