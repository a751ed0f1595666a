package model

import "time"

// InterviewRecord is one persisted voice exchange: the caller's audio and
// transcript plus the generated reply text and its synthesized audio.
// Records are created once, after every pipeline stage has succeeded,
// and never mutated afterwards. ID and CreatedAt are assigned by the
// repository at persistence time.
type InterviewRecord struct {
	ID             string
	UserAudioURL   string
	UserText       string
	AIResponseText string
	AIAudioURL     string
	CreatedAt      time.Time
}

func NewInterviewRecord(userAudioURL, userText, aiResponseText, aiAudioURL string) *InterviewRecord {
	return &InterviewRecord{
		UserAudioURL:   userAudioURL,
		UserText:       userText,
		AIResponseText: aiResponseText,
		AIAudioURL:     aiAudioURL,
	}
}

// TaskStatus is the state of a remote transcription task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
	// TaskTimedOut is a local classification assigned when the poll
	// budget is exhausted; the remote service never returns it.
	TaskTimedOut TaskStatus = "timed_out"
)

// Terminal reports whether no further polling is meaningful.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskSucceeded, TaskFailed, TaskTimedOut:
		return true
	}
	return false
}

// TranscriptionJob is one in-flight remote speech-to-text request. It is
// transient: owned by the speech-to-text client for the duration of a
// single poll loop and discarded once a terminal status is reached.
type TranscriptionJob struct {
	TaskID string
	Status TaskStatus
}
