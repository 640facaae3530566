package models

import "testing"

func TestValidateAppliesDefaultDuration(t *testing.T) {
	req := CombineRequest{
		Videos:          []string{"https://cdn.example.com/a.mp4"},
		BackgroundAudio: "https://cdn.example.com/music.mp3",
	}

	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.MaxDuration != DefaultMaxDurationSeconds {
		t.Errorf("expected default %d, got %d", DefaultMaxDurationSeconds, req.MaxDuration)
	}
}

func TestValidateRejectsNoVideos(t *testing.T) {
	req := CombineRequest{
		BackgroundAudio: "https://cdn.example.com/music.mp3",
	}

	if err := req.Validate(); err == nil {
		t.Fatal("expected an error for a request without videos")
	}
}

func TestValidateRejectsNoAudio(t *testing.T) {
	req := CombineRequest{
		Videos: []string{"https://cdn.example.com/a.mp4"},
	}

	if err := req.Validate(); err == nil {
		t.Fatal("expected an error for a request without any audio source")
	}
}

func TestValidateRejectsNegativeDuration(t *testing.T) {
	req := CombineRequest{
		Videos:          []string{"https://cdn.example.com/a.mp4"},
		BackgroundAudio: "https://cdn.example.com/music.mp3",
		MaxDuration:     -5,
	}

	if err := req.Validate(); err == nil {
		t.Fatal("expected an error for a negative max_duration")
	}
}

func TestValidateAcceptsAnySingleAudioSource(t *testing.T) {
	cases := []CombineRequest{
		{Videos: []string{"u"}, BackgroundAudio: "https://cdn.example.com/music.mp3"},
		{Videos: []string{"u"}, Narration: "https://cdn.example.com/voice.mp3"},
		{Videos: []string{"u"}, NarrationFile: "/tmp/uploads/voice.mp3"},
	}

	for i, req := range cases {
		if err := req.Validate(); err != nil {
			t.Errorf("case %d: unexpected error: %v", i, err)
		}
	}
}
