package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// DefaultMaxDurationSeconds caps the combined output at 10 minutes when
// the caller does not say otherwise.
const DefaultMaxDurationSeconds = 600

// CombineRequest is the inbound payload for both combine endpoints.
type CombineRequest struct {
	// Videos are the ordered source clip URLs; order is preserved in the output.
	Videos []string `json:"videos"`

	// BackgroundAudio is the URL of the music track, looped or trimmed to
	// the output length.
	BackgroundAudio string `json:"background_audio,omitempty"`

	// Narration is the URL of the voice track, trimmed but never looped.
	Narration string `json:"narration,omitempty"`

	// NarrationFile is the spill path of a narration track that arrived as
	// a multipart upload instead of a URL. Set by the upload handler only,
	// never taken from caller JSON; it rides along in queue payloads so
	// detached jobs can pick the file up.
	NarrationFile string `json:"narration_file,omitempty"`

	// MaxDuration is the output cap in seconds; 0 means the default.
	MaxDuration int `json:"max_duration,omitempty"`
}

// Validate applies defaults and rejects requests that cannot produce
// output, before any fetch or assembly work begins.
func (r *CombineRequest) Validate() error {
	if len(r.Videos) == 0 {
		return errors.New("at least one video URL is required")
	}
	if r.BackgroundAudio == "" && r.Narration == "" && r.NarrationFile == "" {
		return errors.New("no audio provided: supply background_audio or narration")
	}
	if r.MaxDuration == 0 {
		r.MaxDuration = DefaultMaxDurationSeconds
	}
	if r.MaxDuration < 0 {
		return errors.New("max_duration must be a positive number of seconds")
	}
	return nil
}

type Job struct {
	ID         uuid.UUID      `json:"id"`
	Request    CombineRequest `json:"request"`
	Status     JobStatus      `json:"status"`
	OutputPath string         `json:"output_path,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// CombineAsyncResponse is returned immediately by the detached endpoint;
// the caller polls the download endpoint with the job id.
type CombineAsyncResponse struct {
	JobID      uuid.UUID `json:"job_id"`
	Status     string    `json:"status"`
	OutputFile string    `json:"output_file"`
}
