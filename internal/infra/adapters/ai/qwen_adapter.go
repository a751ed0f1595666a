package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"ai-interview-service/internal/domain/ports/adapter"
	"ai-interview-service/internal/infra/metrics"
)

// interviewerPersona frames every generation call. There is no multi-turn
// memory: each call carries the persona plus one user utterance.
const interviewerPersona = "你是一个专业的面试官，请用专业、友好的语气进行面试。"

// maxPromptTokens bounds the transcript portion of the prompt. Paraformer
// output for a short voice answer is far below this; the guard protects
// against pathological transcripts.
const maxPromptTokens = 2048

var _ adapter.TextGenerator = (*QwenAdapter)(nil)

// QwenAdapter generates interviewer replies through DashScope's
// OpenAI-compatible chat endpoint.
type QwenAdapter struct {
	client  openai.Client
	model   string
	encoder *tiktoken.Tiktoken
	log     *zerolog.Logger
}

// NewQwenAdapter builds the adapter. baseURL is the compatible-mode
// endpoint (https://dashscope.aliyuncs.com/compatible-mode/v1 in
// production, an httptest server in tests).
func NewQwenAdapter(apiKey, baseURL, model string, logger *zerolog.Logger) (*QwenAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("qwen: api key is empty")
	}
	// cl100k_base approximates qwen tokenization closely enough for a
	// budget guard and usage metrics.
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	l := logger.With().Str("component", "QwenAdapter").Logger()
	return &QwenAdapter{
		client:  openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL)),
		model:   model,
		encoder: enc,
		log:     &l,
	}, nil
}

func (g *QwenAdapter) Generate(ctx context.Context, userText string) (string, error) {
	userText = g.clampPrompt(userText)

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(interviewerPersona),
			openai.UserMessage(userText),
		},
	})
	metrics.ObserveGenerationLatency(g.model, err == nil, time.Since(start))
	if err != nil {
		return "", err
	}

	metrics.AddGenerationTokens(g.model, int(resp.Usage.PromptTokens), int(resp.Usage.CompletionTokens))
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("qwen: no choice content")
}

// clampPrompt truncates the transcript to maxPromptTokens.
func (g *QwenAdapter) clampPrompt(text string) string {
	tokens := g.encoder.Encode(text, nil, nil)
	if len(tokens) <= maxPromptTokens {
		return text
	}
	g.log.Warn().Int("tokens", len(tokens)).Msg("transcript over prompt budget, truncating")
	return strings.TrimSpace(g.encoder.Decode(tokens[:maxPromptTokens]))
}
