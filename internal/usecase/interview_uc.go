package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ai-interview-service/internal/domain"
	"ai-interview-service/internal/domain/model"
	"ai-interview-service/internal/domain/ports/adapter"
	"ai-interview-service/internal/domain/ports/repository"
	"ai-interview-service/internal/infra/logging"
	"ai-interview-service/internal/infra/metrics"
)

// Compile-time check
var _ InterviewUseCase = (*interviewUC)(nil)

// Upload is one incoming audio submission.
type Upload struct {
	Filename string
	Content  io.Reader
}

// InterviewResult is the outcome of one completed interview turn.
type InterviewResult struct {
	RecordID   string
	UserText   string
	AIResponse string
	AIAudioURL string
}

type InterviewUseCase interface {
	// Run executes the full interview turn: normalize the upload,
	// transcribe it, generate a reply, synthesize it, and persist the
	// exchange. The record is stored only after every stage succeeds.
	Run(ctx context.Context, up Upload) (*InterviewResult, error)
	// History returns all stored exchanges, newest first.
	History(ctx context.Context) ([]*model.InterviewRecord, error)
}

// StagingStore is the slice of local staging behavior the pipeline needs.
// Satisfied by *staging.Store.
type StagingStore interface {
	SaveUpload(r io.Reader, ext string) (string, error)
	SaveBytes(b []byte, ext string) (string, error)
	Remove(paths ...string) error
}

type interviewUC struct {
	staging     StagingStore
	normalizer  adapter.AudioNormalizer
	store       adapter.ObjectStore
	stt         adapter.SpeechToText
	generator   adapter.TextGenerator
	synthesizer adapter.SpeechSynthesizer
	records     repository.InterviewRepository

	allowedExts map[string]struct{}
	log         *zerolog.Logger
}

// Normalized output below this size carries no usable speech.
const minNormalizedBytes = 1024

func NewInterviewUseCase(
	stg StagingStore,
	normalizer adapter.AudioNormalizer,
	store adapter.ObjectStore,
	stt adapter.SpeechToText,
	generator adapter.TextGenerator,
	synthesizer adapter.SpeechSynthesizer,
	records repository.InterviewRepository,
	allowedExts []string,
	logger *zerolog.Logger,
) *interviewUC {
	exts := make(map[string]struct{}, len(allowedExts))
	for _, e := range allowedExts {
		exts[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}
	l := logger.With().Str("component", "InterviewUseCase").Logger()
	return &interviewUC{
		staging:     stg,
		normalizer:  normalizer,
		store:       store,
		stt:         stt,
		generator:   generator,
		synthesizer: synthesizer,
		records:     records,
		allowedExts: exts,
		log:         &l,
	}
}

func (u *interviewUC) Run(ctx context.Context, up Upload) (res *InterviewResult, err error) {
	log := logging.With(ctx, u.log)
	defer func() {
		metrics.IncPipelineRun(err == nil)
		if err != nil {
			stage := string(domain.StageOf(err))
			metrics.IncStageFailure(stage)
			log.Warn().Err(err).Str("stage", stage).Msg("interview pipeline failed")
		}
	}()

	// Extension check happens before anything touches disk.
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(up.Filename), "."))
	if _, ok := u.allowedExts[ext]; !ok {
		return nil, domain.NewStageError(domain.StageValidate,
			fmt.Errorf("%w: unsupported extension %q", domain.ErrInvalidUpload, ext))
	}

	var staged []string
	defer func() {
		if cleanupErr := u.staging.Remove(staged...); cleanupErr != nil {
			metrics.IncStagingCleanupFailure()
		}
	}()

	rawPath, err := runStage(domain.StageStaging, func() (string, error) {
		return u.staging.SaveUpload(up.Content, ext)
	})
	if err != nil {
		return nil, err
	}
	staged = append(staged, rawPath)

	normPath, err := runStage(domain.StageNormalize, func() (string, error) {
		return u.normalizer.Normalize(ctx, rawPath)
	})
	if err != nil {
		return nil, err
	}
	staged = append(staged, normPath)

	if err := u.checkNormalizedSize(normPath); err != nil {
		return nil, domain.NewStageError(domain.StageSizeCheck, err)
	}

	userAudioURL, err := runStage(domain.StageUpload, func() (string, error) {
		return u.store.Upload(ctx, normPath)
	})
	if err != nil {
		return nil, err
	}

	userText, err := runStage(domain.StageTranscribe, func() (string, error) {
		return u.stt.Transcribe(ctx, userAudioURL)
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(userText) == "" {
		return nil, domain.NewStageError(domain.StageTranscribe, domain.ErrNoTranscript)
	}
	log.Info().Int("transcript_chars", len(userText)).Msg("transcription complete")

	reply, err := runStage(domain.StageGenerate, func() (string, error) {
		return u.generator.Generate(ctx, userText)
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(reply) == "" {
		return nil, domain.NewStageError(domain.StageGenerate, domain.ErrEmptyReply)
	}

	replyAudio, err := runStage(domain.StageSynthesize, func() ([]byte, error) {
		return u.synthesizer.Synthesize(ctx, reply)
	})
	if err != nil {
		return nil, err
	}

	replyPath, err := u.staging.SaveBytes(replyAudio, "wav")
	if err != nil {
		return nil, domain.NewStageError(domain.StageStaging, err)
	}
	staged = append(staged, replyPath)

	aiAudioURL, err := runStage(domain.StageUpload, func() (string, error) {
		return u.store.Upload(ctx, replyPath)
	})
	if err != nil {
		return nil, err
	}

	rec := model.NewInterviewRecord(userAudioURL, userText, reply, aiAudioURL)
	recordID, err := runStage(domain.StagePersist, func() (string, error) {
		return u.records.Save(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("interview_id", recordID).Msg("interview turn stored")
	return &InterviewResult{
		RecordID:   recordID,
		UserText:   userText,
		AIResponse: reply,
		AIAudioURL: aiAudioURL,
	}, nil
}

func (u *interviewUC) History(ctx context.Context) ([]*model.InterviewRecord, error) {
	return u.records.ListAll(ctx)
}

func (u *interviewUC) checkNormalizedSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() < minNormalizedBytes {
		return fmt.Errorf("%w: %d bytes after normalization", domain.ErrAudioTooSmall, info.Size())
	}
	return nil
}

// runStage runs one pipeline stage, records its latency, and wraps
// failures with the stage name.
func runStage[T any](stage domain.Stage, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	metrics.ObserveStageLatency(string(stage), time.Since(start))
	if err != nil {
		var zero T
		return zero, domain.NewStageError(stage, err)
	}
	return out, nil
}
