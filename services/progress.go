package services

import "time"

// Stage names reported while a quiz is being built.
const (
	StageNormalized  = "normalized"
	StageChecked     = "checked"
	StageDownloaded  = "downloaded"
	StageTranscribed = "transcribed"
	StageGenerated   = "generated"
	StagePersisted   = "persisted"
	StageFailed      = "failed"
)

type ProgressEvent struct {
	Stage    string    `json:"stage"`
	VideoURL string    `json:"video_url,omitempty"`
	QuizID   uint      `json:"quiz_id,omitempty"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

// ProgressNotifier receives pipeline stage transitions for a user. Notify
// must not block and cannot affect the pipeline result.
type ProgressNotifier interface {
	Notify(userID uint, event ProgressEvent)
}

type noopNotifier struct{}

func (noopNotifier) Notify(uint, ProgressEvent) {}
