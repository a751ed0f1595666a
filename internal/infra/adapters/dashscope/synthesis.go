package dashscope

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"ai-interview-service/internal/domain"
	"ai-interview-service/internal/domain/ports/adapter"
)

const synthesisPath = "/api/v1/services/audio/tts/synthesis"

var _ adapter.SpeechSynthesizer = (*Synthesizer)(nil)

// Synthesizer renders text with a fixed CosyVoice model/voice in one
// blocking call. The response body is the encoded audio itself, written
// verbatim by the caller.
type Synthesizer struct {
	client *Client
	model  string
	voice  string
	log    *zerolog.Logger
}

func NewSynthesizer(client *Client, model, voice string, logger *zerolog.Logger) *Synthesizer {
	l := logger.With().Str("component", "Synthesizer").Logger()
	return &Synthesizer{client: client, model: model, voice: voice, log: &l}
}

type synthesisRequest struct {
	Model string `json:"model"`
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Parameters struct {
		Voice      string `json:"voice"`
		Format     string `json:"format"`
		SampleRate int    `json:"sample_rate"`
	} `json:"parameters"`
}

func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	var req synthesisRequest
	req.Model = s.model
	req.Input.Text = text
	req.Parameters.Voice = s.voice
	req.Parameters.Format = "wav"
	req.Parameters.SampleRate = 16000

	resp, err := s.client.postJSON(ctx, synthesisPath, req, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, decodeAPIError(resp))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrSynthesisFailed, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio response", domain.ErrSynthesisFailed)
	}
	s.log.Debug().Int("bytes", len(audio)).Msg("synthesized")
	return audio, nil
}
