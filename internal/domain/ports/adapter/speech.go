package adapter

import "context"

// SpeechToText transcribes remote audio by URL. Implementations may run
// an internal submit/poll protocol; the call blocks until a terminal
// result or ctx cancellation.
type SpeechToText interface {
	Transcribe(ctx context.Context, audioURL string) (text string, err error)
}

// SpeechSynthesizer renders text to encoded audio bytes with a fixed
// voice/model configuration.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (audio []byte, err error)
}
