package dashscope

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"ai-interview-service/internal/domain"
	"ai-interview-service/internal/domain/model"
	"ai-interview-service/internal/domain/ports/adapter"
)

const (
	transcriptionPath = "/api/v1/services/audio/asr/transcription"
	taskPathPrefix    = "/api/v1/tasks/"
)

var _ adapter.SpeechToText = (*Transcriber)(nil)

// Transcriber drives the asynchronous paraformer transcription protocol:
// submit a job by audio URL, poll the task until terminal, then fetch the
// transcript document the task points at. The result lives behind a
// second hop: the task response carries transcription URLs, and the
// actual text must be fetched from each of them.
type Transcriber struct {
	client        *Client
	model         string
	languageHints []string
	pollAttempts  int
	pollInterval  time.Duration
	log           *zerolog.Logger
}

type TranscriberConfig struct {
	Model         string
	LanguageHints []string
	PollAttempts  int
	PollInterval  time.Duration
}

func NewTranscriber(client *Client, cfg TranscriberConfig, logger *zerolog.Logger) *Transcriber {
	l := logger.With().Str("component", "Transcriber").Logger()
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 30
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Transcriber{
		client:        client,
		model:         cfg.Model,
		languageHints: cfg.LanguageHints,
		pollAttempts:  cfg.PollAttempts,
		pollInterval:  cfg.PollInterval,
		log:           &l,
	}
}

func (t *Transcriber) Transcribe(ctx context.Context, audioURL string) (string, error) {
	job, err := t.submit(ctx, audioURL)
	if err != nil {
		return "", err
	}
	t.log.Debug().Str("task_id", job.TaskID).Msg("transcription submitted")
	return t.await(ctx, job)
}

type submitRequest struct {
	Model string `json:"model"`
	Input struct {
		FileURLs []string `json:"file_urls"`
	} `json:"input"`
	Parameters struct {
		LanguageHints []string `json:"language_hints,omitempty"`
	} `json:"parameters"`
}

type taskEnvelope struct {
	RequestID string `json:"request_id"`
	Output    *struct {
		TaskID     string `json:"task_id"`
		TaskStatus string `json:"task_status"`
		Results    []struct {
			FileURL          string `json:"file_url"`
			TranscriptionURL string `json:"transcription_url"`
			SubtaskStatus    string `json:"subtask_status"`
		} `json:"results"`
	} `json:"output"`
}

// submit starts a remote job. Submission failure (non-OK status or a
// missing task id) is immediately fatal for the whole call.
func (t *Transcriber) submit(ctx context.Context, audioURL string) (*model.TranscriptionJob, error) {
	var req submitRequest
	req.Model = t.model
	req.Input.FileURLs = []string{audioURL}
	req.Parameters.LanguageHints = t.languageHints

	resp, err := t.client.postJSON(ctx, transcriptionPath, req, true)
	if err != nil {
		return nil, fmt.Errorf("%w: submit: %v", domain.ErrTranscriptionFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: submit: %v", domain.ErrTranscriptionFailed, decodeAPIError(resp))
	}

	var env taskEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: submit: %v", domain.ErrTranscriptionFailed, err)
	}
	if env.Output == nil || env.Output.TaskID == "" {
		return nil, fmt.Errorf("%w: submit response carries no task id", domain.ErrTranscriptionFailed)
	}
	return &model.TranscriptionJob{TaskID: env.Output.TaskID, Status: model.TaskPending}, nil
}

// await polls the task until a terminal status or until the attempt
// budget is exhausted. A malformed or failed fetch consumes an attempt
// like any non-terminal poll. Each wait is a ticker/ctx select, so caller
// cancellation aborts the loop instead of leaking a sleeping goroutine.
func (t *Transcriber) await(ctx context.Context, job *model.TranscriptionJob) (string, error) {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < t.pollAttempts; attempt++ {
		var env taskEnvelope
		err := t.client.getJSON(ctx, taskPathPrefix+job.TaskID, &env)
		if err != nil || env.Output == nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			t.log.Debug().Err(err).Int("attempt", attempt).Msg("malformed poll response, retrying")
			if err := t.wait(ctx, ticker); err != nil {
				return "", err
			}
			continue
		}

		switch env.Output.TaskStatus {
		case "SUCCEEDED":
			job.Status = model.TaskSucceeded
			return t.fetchTranscript(ctx, env)
		case "FAILED":
			job.Status = model.TaskFailed
			return "", fmt.Errorf("%w: task %s reported FAILED", domain.ErrTranscriptionFailed, job.TaskID)
		case "PENDING":
			job.Status = model.TaskPending
		case "RUNNING":
			job.Status = model.TaskRunning
		default:
			return "", fmt.Errorf("%w: %q", domain.ErrUnknownTaskStatus, env.Output.TaskStatus)
		}

		if err := t.wait(ctx, ticker); err != nil {
			return "", err
		}
	}

	job.Status = model.TaskTimedOut
	return "", fmt.Errorf("%w: task %s after %d attempts", domain.ErrTranscriptionTimeout, job.TaskID, t.pollAttempts)
}

func (t *Transcriber) wait(ctx context.Context, ticker *time.Ticker) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ticker.C:
		return nil
	}
}

// transcriptDocument is the JSON body behind a transcription_url.
type transcriptDocument struct {
	Transcripts []struct {
		Text      string `json:"text"`
		Sentences []struct {
			Text string `json:"text"`
		} `json:"sentences"`
	} `json:"transcripts"`
}

// fetchTranscript resolves the result-by-reference protocol: each result
// entry points at a JSON document holding the sentences. The first
// non-empty sentence text wins.
func (t *Transcriber) fetchTranscript(ctx context.Context, env taskEnvelope) (string, error) {
	for _, res := range env.Output.Results {
		if res.TranscriptionURL == "" {
			continue
		}
		text, err := t.fetchDocument(ctx, res.TranscriptionURL)
		if err != nil {
			t.log.Warn().Err(err).Str("url", res.TranscriptionURL).Msg("transcript fetch failed")
			continue
		}
		if text != "" {
			return text, nil
		}
	}
	return "", domain.ErrNoTranscript
}

func (t *Transcriber) fetchDocument(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := t.client.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript document: http %d", resp.StatusCode)
	}

	var doc transcriptDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", err
	}
	for _, tr := range doc.Transcripts {
		for _, s := range tr.Sentences {
			if s.Text != "" {
				return s.Text, nil
			}
		}
	}
	return "", nil
}
