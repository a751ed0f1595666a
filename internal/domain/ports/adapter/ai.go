package adapter

import "context"

// TextGenerator produces a single-turn reply to one user utterance.
// There is no multi-turn memory across calls.
type TextGenerator interface {
	Generate(ctx context.Context, userText string) (reply string, err error)
}
