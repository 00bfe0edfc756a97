package api

import "time"

const (
	// PrmAudio is the multipart form field holding the audio bytes
	PrmAudio = "audio"
)

// Recording is the persisted record shape returned to callers
type Recording struct {
	ID         string    `json:"id"`
	Created    time.Time `json:"created_at"`
	AudioPath  string    `json:"audio_path"`
	MimeType   string    `json:"mime_type"`
	Status     string    `json:"status"`
	Transcript string    `json:"transcript,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Failure is returned when the pipeline fails after the row was created.
// It still carries the recording ID so the row can be inspected
type Failure struct {
	Error       string `json:"error"`
	RecordingID string `json:"recordingId"`
	Details     string `json:"details"`
}
