package ai

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v2"
	"github.com/rs/zerolog"

	"ai-interview-service/internal/domain/ports/adapter"
	"ai-interview-service/internal/infra/i18n"
	"ai-interview-service/internal/infra/metrics"
)

var _ adapter.TextGenerator = (*fallbackGenerator)(nil)

// fallbackGenerator makes the composed text generator non-failing: a
// flaky generation backend must never abort an otherwise-successful
// transcription. Remote rejections and transport faults are absorbed
// into distinct localized apology replies. Every absorbed failure still
// emits a counter and a warn log, so a systemic outage stays visible to
// monitoring even though no pipeline run fails because of it.
type fallbackGenerator struct {
	inner adapter.TextGenerator
	tr    *i18n.Translator
	log   *zerolog.Logger
}

func NewFallbackGenerator(inner adapter.TextGenerator, tr *i18n.Translator, logger *zerolog.Logger) adapter.TextGenerator {
	l := logger.With().Str("component", "FallbackGenerator").Logger()
	return &fallbackGenerator{inner: inner, tr: tr, log: &l}
}

func (f *fallbackGenerator) Generate(ctx context.Context, userText string) (string, error) {
	reply, err := f.inner.Generate(ctx, userText)
	if err == nil && reply != "" {
		return reply, nil
	}

	cause := "transport"
	apology := f.tr.T("fallback_system_error")
	var apiErr *openai.Error
	switch {
	case err == nil:
		cause = "empty"
		apology = f.tr.T("fallback_unavailable")
	case errors.As(err, &apiErr):
		cause = "remote"
		apology = f.tr.T("fallback_unavailable")
	}

	metrics.IncGenerationFallback(cause)
	f.log.Warn().Err(err).Str("cause", cause).Msg("generation failed, serving fallback reply")
	return apology, nil
}
