package audio

import (
	"errors"
	"testing"
)

func f64(v float64) *float64 { return &v }

func TestBuildPlanBackgroundShorterLoops(t *testing.T) {
	// 3s source against a 10s target: three full repeats plus a trimmed 1s copy
	plan, err := BuildPlan(f64(3), nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Background == nil {
		t.Fatal("expected a background segment")
	}
	if !plan.Background.Loop {
		t.Error("short background must loop")
	}
	if plan.Background.TrimTo != 10 {
		t.Errorf("background must trim to exactly target, got %g", plan.Background.TrimTo)
	}
	if plan.Narration != nil {
		t.Error("no narration was supplied")
	}
	if plan.BackgroundVolume != 1.0 {
		t.Errorf("background playing alone must stay at full volume, got %g", plan.BackgroundVolume)
	}
}

func TestBuildPlanBackgroundLongerTrims(t *testing.T) {
	plan, err := BuildPlan(f64(20), nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Background.Loop {
		t.Error("background longer than target must not loop")
	}
	if plan.Background.TrimTo != 10 {
		t.Errorf("expected trim to 10, got %g", plan.Background.TrimTo)
	}
}

func TestBuildPlanNarrationNeverLoops(t *testing.T) {
	// Narration shorter than the target leaves silence for the remainder
	plan, err := BuildPlan(nil, f64(3), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Narration == nil {
		t.Fatal("expected a narration segment")
	}
	if plan.Narration.Loop {
		t.Error("narration must never loop")
	}
	if plan.Narration.TrimTo != 0 {
		t.Errorf("short narration must be used whole, got trim %g", plan.Narration.TrimTo)
	}
}

func TestBuildPlanNarrationLongerTrims(t *testing.T) {
	plan, err := BuildPlan(nil, f64(12), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Narration.TrimTo != 10 {
		t.Errorf("long narration must trim to target, got %g", plan.Narration.TrimTo)
	}
	if plan.Narration.Loop {
		t.Error("narration must never loop")
	}
}

func TestBuildPlanMixedDucksBackground(t *testing.T) {
	// Background 4s loops to the 6s target; narration 6s plays whole
	plan, err := BuildPlan(f64(4), f64(6), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !plan.Mixed() {
		t.Fatal("expected a mixed plan")
	}
	if !plan.Background.Loop {
		t.Error("4s background must loop to fill 6s")
	}
	if plan.Background.TrimTo != 6 {
		t.Errorf("background must trim to 6, got %g", plan.Background.TrimTo)
	}
	if plan.Narration.TrimTo != 0 {
		t.Errorf("6s narration at 6s target plays whole, got trim %g", plan.Narration.TrimTo)
	}
	if plan.BackgroundVolume != DuckedBackgroundVolume {
		t.Errorf("mixed background must duck to %g, got %g", DuckedBackgroundVolume, plan.BackgroundVolume)
	}
}

func TestBuildPlanNoSources(t *testing.T) {
	_, err := BuildPlan(nil, nil, 10)
	if !errors.Is(err, ErrNoAudioSource) {
		t.Fatalf("expected ErrNoAudioSource, got %v", err)
	}
}
