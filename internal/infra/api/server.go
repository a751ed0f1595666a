package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ai-interview-service/internal/domain"
	"ai-interview-service/internal/infra/i18n"
	"ai-interview-service/internal/infra/logging"
	"ai-interview-service/internal/infra/redis"
	"ai-interview-service/internal/usecase"
)

// ServerConfig carries the knobs the HTTP layer needs from config.
type ServerConfig struct {
	RequestTimeout    time.Duration
	MaxConcurrentRuns int
	MaxUploadBytes    int64
	RatePerMinute     int
}

// Server exposes the interview pipeline over HTTP.
type Server struct {
	uc      usecase.InterviewUseCase
	tr      *i18n.Translator
	limiter *redis.RateLimiter
	cfg     ServerConfig
	log     *zerolog.Logger
}

func NewServer(uc usecase.InterviewUseCase, tr *i18n.Translator, limiter *redis.RateLimiter, cfg ServerConfig, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "HTTPServer").Logger()
	return &Server{uc: uc, tr: tr, limiter: limiter, cfg: cfg, log: &l}
}

// Router builds the chi router with the middleware stack applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(TraceID(), Recover(s.log), RequestLog(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(
			Timeout(s.cfg.RequestTimeout),
			ConcurrencyLimit(s.cfg.MaxConcurrentRuns),
			RateLimit(s.limiter, s.cfg.RatePerMinute, s.log),
		).Post("/interview", s.handleInterview)
		r.Get("/history", s.handleHistory)
	})

	return r
}

type interviewResponse struct {
	UserText   string `json:"user_text"`
	AIResponse string `json:"ai_response"`
	AIAudioURL string `json:"ai_audio_url"`
}

type historyItem struct {
	ID         string    `json:"id"`
	UserText   string    `json:"user_text"`
	AIResponse string    `json:"ai_response"`
	AIAudioURL string    `json:"ai_audio_url"`
	CreatedAt  time.Time `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleInterview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, s.tr.T("err_invalid_upload"))
		return
	}
	defer file.Close()

	res, err := s.uc.Run(r.Context(), usecase.Upload{Filename: header.Filename, Content: file})
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, interviewResponse{
		UserText:   res.UserText,
		AIResponse: res.AIResponse,
		AIAudioURL: res.AIAudioURL,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.uc.History(r.Context())
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("history lookup failed")
		s.writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]historyItem, 0, len(records))
	for _, rec := range records {
		items = append(items, historyItem{
			ID:         rec.ID,
			UserText:   rec.UserText,
			AIResponse: rec.AIResponseText,
			AIAudioURL: rec.AIAudioURL,
			CreatedAt:  rec.CreatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, items)
}

// writePipelineError maps pipeline failures to HTTP statuses. Client
// mistakes (bad file, silent audio) come back 400 with a localized
// message; everything else is an opaque 500.
func (s *Server) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidUpload):
		s.writeError(w, r, http.StatusBadRequest, s.tr.T("err_invalid_upload"))
	case errors.Is(err, domain.ErrAudioTooSmall):
		s.writeError(w, r, http.StatusBadRequest, s.tr.T("err_too_small"))
	case errors.Is(err, domain.ErrConversionFailed):
		s.writeError(w, r, http.StatusBadRequest, s.tr.T("err_conversion"))
	default:
		logging.With(r.Context(), s.log).Error().Err(err).
			Str("stage", string(domain.StageOf(err))).Msg("interview failed")
		s.writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("write response failed")
	}
}
